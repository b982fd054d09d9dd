package domain

// PlanInfo describes one purchasable plan for the public catalogue.
type PlanInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PriceUSD      int    `json:"priceUsd"` // monthly price in USD cents
	AnnualUSD     int    `json:"annualUsd"`
	AIGenerations int    `json:"aiGenerations"` // recommendation refreshes per day
	Popular       bool   `json:"popular"`
}

// AvailablePlans returns the public plan catalogue.
func AvailablePlans() []PlanInfo {
	return []PlanInfo{
		{
			ID:            PlanFree,
			Name:          "Free",
			PriceUSD:      0,
			AnnualUSD:     0,
			AIGenerations: 1,
		},
		{
			ID:            PlanPremium,
			Name:          "Premium",
			PriceUSD:      900, // $9/mo
			AnnualUSD:     9000,
			AIGenerations: 10,
			Popular:       true,
		},
		{
			ID:            PlanUniversity,
			Name:          "University",
			PriceUSD:      0, // licensed per seat, not self-serve
			AnnualUSD:     0,
			AIGenerations: 10,
		},
	}
}
