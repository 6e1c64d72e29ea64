package service

import (
	"fmt"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
)

// Default reward thresholds; overridable through config.
const (
	DefaultFreqThreshold     = 15
	DefaultMonetaryThreshold = 30000
)

// RewardPolicy applies deterministic threshold rules to decide reward
// eligibility and compose the customer-facing message. Pure: no state
// beyond its two thresholds.
type RewardPolicy struct {
	FreqThreshold     int
	MonetaryThreshold float64
}

// NewRewardPolicy builds a policy, falling back to defaults for
// non-positive thresholds.
func NewRewardPolicy(freqThreshold int, monetaryThreshold float64) RewardPolicy {
	if freqThreshold <= 0 {
		freqThreshold = DefaultFreqThreshold
	}
	if monetaryThreshold <= 0 {
		monetaryThreshold = DefaultMonetaryThreshold
	}
	return RewardPolicy{FreqThreshold: freqThreshold, MonetaryThreshold: monetaryThreshold}
}

// Apply resolves the final loyalty/reward/message fields for one row.
// Eligible customers keep the tier and reward assigned by segmentation;
// everyone else is downgraded to "No tier" with a progress message.
func (p RewardPolicy) Apply(c *domain.SegmentedCustomer) {
	if c.Frequency >= p.FreqThreshold || c.Monetary >= p.MonetaryThreshold {
		c.ProgressMessage = fmt.Sprintf(
			"Congrats Customer %s! As a %s member, enjoy your reward: %s. We appreciate your loyalty!",
			c.CustomerID, c.Loyalty, c.AssignedReward,
		)
		return
	}

	purchaseGap := p.FreqThreshold - c.Frequency
	if purchaseGap < 0 {
		purchaseGap = 0
	}
	moneyGap := p.MonetaryThreshold - c.Monetary
	if moneyGap < 0 {
		moneyGap = 0
	}

	c.Loyalty = domain.TierNone
	c.AssignedReward = domain.RewardNone
	c.ProgressMessage = fmt.Sprintf(
		"Hi Customer %s! You currently have no loyalty tier. Make %d more purchases or spend %.0f more to unlock exciting rewards!",
		c.CustomerID, purchaseGap, moneyGap,
	)
}
