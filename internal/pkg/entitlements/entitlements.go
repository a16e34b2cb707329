package entitlements

import (
	"strconv"

	"github.com/walleyjs/threls-billing/app/models"
)

// UnlimitedValue is the sentinel a numeric limit may carry instead of a number.
const UnlimitedValue = "unlimited"

// Entitlement is the resolved grant for one feature on a plan: the plan's
// override when set, the feature default otherwise.
type Entitlement struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	LimitType  string `json:"limitType"`
	LimitValue string `json:"limitValue"`
}

// Set maps feature keys to resolved entitlements.
type Set map[string]Entitlement

// Resolve computes the effective entitlement set for a plan. Plan features
// with an empty limit value fall back to the feature's default.
func Resolve(plan *models.Plan) Set {
	if plan == nil {
		return Set{}
	}
	out := make(Set, len(plan.Features))
	for _, pf := range plan.Features {
		if pf.Feature == nil {
			continue
		}
		value := pf.LimitValue
		if value == "" {
			value = pf.Feature.DefaultLimitValue
		}
		out[pf.Feature.Key] = Entitlement{
			Key:        pf.Feature.Key,
			Name:       pf.Feature.Name,
			LimitType:  pf.Feature.LimitType,
			LimitValue: value,
		}
	}
	return out
}

// Enabled reports whether a boolean feature is granted.
func (s Set) Enabled(key string) bool {
	e, ok := s[key]
	if !ok || e.LimitType != models.LimitTypeBoolean {
		return false
	}
	return e.LimitValue == "true"
}

// Limit returns the numeric limit for a feature. The second return is false
// when the feature is absent, not numeric, or its value does not parse.
// Unlimited is reported as -1.
func (s Set) Limit(key string) (int64, bool) {
	e, ok := s[key]
	if !ok || e.LimitType != models.LimitTypeNumber {
		return 0, false
	}
	if e.LimitValue == UnlimitedValue {
		return -1, true
	}
	n, err := strconv.ParseInt(e.LimitValue, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Value returns the raw limit value for a feature of any type.
func (s Set) Value(key string) (string, bool) {
	e, ok := s[key]
	if !ok {
		return "", false
	}
	return e.LimitValue, true
}
