package client

import (
	"context"
	"net/url"
	"strconv"
)

// DashboardStats returns the admin dashboard headline numbers.
func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := c.get(ctx, "/admin/dashboard/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

type subscriberList struct {
	Data []Subscriber `json:"data"`
}

// ListSubscribers returns every customer with their subscription summary.
func (c *Client) ListSubscribers(ctx context.Context) ([]Subscriber, error) {
	var list subscriberList
	if err := c.get(ctx, "/admin/subscribers", &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// SubscriberDetail is a single customer with their subscription and recent
// transactions.
type SubscriberDetail struct {
	User         User          `json:"user"`
	Subscription *Subscription `json:"subscription,omitempty"`
	Transactions []Transaction `json:"transactions"`
}

func (c *Client) GetSubscriber(ctx context.Context, id string) (*SubscriberDetail, error) {
	var detail SubscriberDetail
	if err := c.get(ctx, "/admin/subscribers/"+id, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// AdminTransactionQuery filters the cross-customer transaction listing.
// Status "all" or "" skips the status filter; Search matches invoice number,
// customer name and email.
type AdminTransactionQuery struct {
	Status string
	Search string
	Page   int
	Limit  int
}

func (q AdminTransactionQuery) values() url.Values {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// AdminTransactionPage is one page of the cross-customer listing. The
// customer is embedded on each transaction under "user".
type AdminTransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Pagination   Pagination    `json:"pagination"`
}

func (c *Client) AdminListTransactions(ctx context.Context, q AdminTransactionQuery) (*AdminTransactionPage, error) {
	var page AdminTransactionPage
	if err := c.get(ctx, queryPath("/admin/transactions", q.values()), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) AdminGetTransaction(ctx context.Context, id string) (*Transaction, error) {
	var txn Transaction
	if err := c.get(ctx, "/admin/transactions/"+id, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}
