package client

import "strings"

// SubscriberFilter narrows a subscriber listing client-side. Query matches
// name or email, case-insensitively; Status "all" or "" keeps every row.
type SubscriberFilter struct {
	Query  string
	Status string
}

// FilterSubscribers applies the filter without touching the input slice.
func FilterSubscribers(subscribers []Subscriber, filter SubscriberFilter) []Subscriber {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	status := filter.Status

	out := make([]Subscriber, 0, len(subscribers))
	for _, sub := range subscribers {
		if query != "" &&
			!strings.Contains(strings.ToLower(sub.Name), query) &&
			!strings.Contains(strings.ToLower(sub.Email), query) {
			continue
		}
		if status != "" && status != "all" && subscriberStatus(sub) != status {
			continue
		}
		out = append(out, sub)
	}
	return out
}

func subscriberStatus(sub Subscriber) string {
	if sub.Subscription == nil {
		return ""
	}
	return sub.Subscription.Status
}
