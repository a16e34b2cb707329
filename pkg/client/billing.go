package client

import (
	"context"
	"net/url"
	"strconv"
)

// ListPlans returns the plan catalog. Customers only see active plans;
// admins see everything.
func (c *Client) ListPlans(ctx context.Context) ([]Plan, error) {
	var plans []Plan
	if err := c.get(ctx, "/plans", &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// PlanInput creates or replaces a plan. Admin only.
type PlanInput struct {
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Price           float64            `json:"price"`
	Currency        string             `json:"currency"`
	BillingCycle    string             `json:"billingCycle"`
	TrialPeriodDays int                `json:"trialPeriodDays"`
	IsActive        bool               `json:"isActive"`
	Features        []PlanFeatureInput `json:"features,omitempty"`
}

// PlanFeatureInput attaches an existing feature to a plan.
type PlanFeatureInput struct {
	FeatureID  string `json:"featureId"`
	LimitValue string `json:"limitValue"`
}

func (c *Client) CreatePlan(ctx context.Context, in PlanInput) (*Plan, error) {
	var plan Plan
	if err := c.post(ctx, "/plans", in, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *Client) UpdatePlan(ctx context.Context, id string, in PlanInput) (*Plan, error) {
	var plan Plan
	if err := c.put(ctx, "/plans/"+id, in, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *Client) DeletePlan(ctx context.Context, id string) error {
	return c.delete(ctx, "/plans/"+id)
}

// ListFeatures returns the feature catalog.
func (c *Client) ListFeatures(ctx context.Context) ([]Feature, error) {
	var features []Feature
	if err := c.get(ctx, "/features", &features); err != nil {
		return nil, err
	}
	return features, nil
}

// FeatureInput creates a new catalog feature. Admin only.
type FeatureInput struct {
	Name              string `json:"name"`
	Key               string `json:"key"`
	Description       string `json:"description"`
	LimitType         string `json:"limitType"`
	DefaultLimitValue string `json:"defaultLimitValue"`
}

func (c *Client) CreateFeature(ctx context.Context, in FeatureInput) (*Feature, error) {
	var feature Feature
	if err := c.post(ctx, "/features", in, &feature); err != nil {
		return nil, err
	}
	return &feature, nil
}

// CurrentSubscription returns the caller's entitling subscription, or an
// *APIError with code 40400 when none exists.
func (c *Client) CurrentSubscription(ctx context.Context) (*Subscription, error) {
	var sub Subscription
	if err := c.get(ctx, "/subscription/current", &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// SubscribeRequest starts a subscription to a plan using a stored payment
// method.
type SubscribeRequest struct {
	PlanID          string `json:"planId"`
	PaymentMethodID string `json:"paymentMethodId"`
}

func (c *Client) Subscribe(ctx context.Context, req SubscribeRequest) (*Subscription, error) {
	var sub Subscription
	if err := c.post(ctx, "/subscription", req, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// CancelSubscription requests cancellation at the end of the current period.
func (c *Client) CancelSubscription(ctx context.Context, id string) (*Subscription, error) {
	var sub Subscription
	if err := c.post(ctx, "/subscription/"+id+"/cancel", nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListPaymentMethods returns the caller's stored payment instruments.
func (c *Client) ListPaymentMethods(ctx context.Context) ([]PaymentMethod, error) {
	var methods []PaymentMethod
	if err := c.get(ctx, "/payment-methods", &methods); err != nil {
		return nil, err
	}
	return methods, nil
}

// AddPaymentMethodRequest stores a new card. The number is used to derive
// the last four digits and is never persisted.
type AddPaymentMethodRequest struct {
	Details struct {
		Brand       string `json:"type"`
		CardNumber  string `json:"cardNumber"`
		ExpiryMonth int    `json:"expiryMonth"`
		ExpiryYear  int    `json:"expiryYear"`
	} `json:"details"`
	IsDefault bool `json:"isDefault"`
}

func (c *Client) AddPaymentMethod(ctx context.Context, req AddPaymentMethodRequest) (*PaymentMethod, error) {
	var pm PaymentMethod
	if err := c.post(ctx, "/payment-methods", req, &pm); err != nil {
		return nil, err
	}
	return &pm, nil
}

func (c *Client) SetDefaultPaymentMethod(ctx context.Context, id string) (*PaymentMethod, error) {
	var pm PaymentMethod
	if err := c.post(ctx, "/payment-methods/"+id+"/default", nil, &pm); err != nil {
		return nil, err
	}
	return &pm, nil
}

// TransactionQuery pages through the caller's billing history.
type TransactionQuery struct {
	Page  int
	Limit int
}

func (q TransactionQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func (c *Client) ListTransactions(ctx context.Context, q TransactionQuery) ([]Transaction, error) {
	var txns []Transaction
	if err := c.get(ctx, queryPath("/transactions", q.values()), &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	var txn Transaction
	if err := c.get(ctx, "/transactions/"+id, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}
