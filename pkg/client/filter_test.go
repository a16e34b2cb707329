package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleSubscribers() []Subscriber {
	return []Subscriber{
		{ID: "1", Name: "Alice Carter", Email: "alice@example.com", Subscription: &Subscription{Status: SubscriptionActive}},
		{ID: "2", Name: "Bob Martin", Email: "bob@corp.io", Subscription: &Subscription{Status: SubscriptionTrial}},
		{ID: "3", Name: "Carol Danvers", Email: "carol@example.com", Subscription: &Subscription{Status: SubscriptionPastDue}},
		{ID: "4", Name: "Dave Lister", Email: "dave@reddwarf.tv", Subscription: nil},
	}
}

func TestFilterSubscribers(t *testing.T) {
	subs := sampleSubscribers()

	tests := []struct {
		name    string
		filter  SubscriberFilter
		wantIDs []string
	}{
		{"no filter keeps everything", SubscriberFilter{}, []string{"1", "2", "3", "4"}},
		{"status all keeps everything", SubscriberFilter{Status: "all"}, []string{"1", "2", "3", "4"}},
		{"query matches name case-insensitively", SubscriberFilter{Query: "aLiCe"}, []string{"1"}},
		{"query matches email substring", SubscriberFilter{Query: "corp.io"}, []string{"2"}},
		{"query matches across rows", SubscriberFilter{Query: "example.com"}, []string{"1", "3"}},
		{"status narrows to one", SubscriberFilter{Status: SubscriptionTrial}, []string{"2"}},
		{"query and status combine", SubscriberFilter{Query: "example", Status: SubscriptionPastDue}, []string{"3"}},
		{"no match yields empty", SubscriberFilter{Query: "zebra"}, []string{}},
		{"whitespace query is ignored", SubscriberFilter{Query: "   "}, []string{"1", "2", "3", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterSubscribers(subs, tt.filter)
			ids := make([]string, 0, len(got))
			for _, s := range got {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestFilterSubscribersDoesNotMutateInput(t *testing.T) {
	subs := sampleSubscribers()
	_ = FilterSubscribers(subs, SubscriberFilter{Query: "alice"})
	assert.Len(t, subs, 4)
	assert.Equal(t, "1", subs[0].ID)
}
