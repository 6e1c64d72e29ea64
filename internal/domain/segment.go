package domain

// ============================================================
// Loyalty tiers
// ============================================================

// Loyalty tier labels, most senior first. Clusters are ranked by unit
// price (total monetary / total frequency) and assigned labels in order.
var LoyaltyLabels = []string{"Platinum", "Gold", "Silver", "Bronze"}

// TierStandard is the overflow tier used when the model yields more
// clusters than there are labels.
const TierStandard = "Standard"

// Sentinel tier/reward for customers that fail the reward thresholds.
const (
	TierNone   = "No tier"
	RewardNone = "No reward"
)

// RewardForTier maps a loyalty tier to its fixed reward string.
var RewardForTier = map[string]string{
	"Platinum":   "25% discount + VIP concierge access",
	"Gold":       "20% discount + free shipping",
	"Silver":     "15% discount or birthday bonus",
	"Bronze":     "Points-based rewards or 10% discount",
	TierStandard: "Points-based rewards",
}

// ClusterTier is one entry of the global cluster -> loyalty mapping,
// derived from per-cluster aggregate spend.
type ClusterTier struct {
	Cluster        int     `json:"cluster"`
	TotalMonetary  float64 `json:"total_monetary"`
	TotalFrequency int     `json:"total_frequency"`
	UnitPrice      float64 `json:"unit_price"`
	Loyalty        string  `json:"loyalty"`
	AssignedReward string  `json:"assigned_reward"`
}
