package policies

import "gowaay/internal/domain/pricing"

// CommissionRules picks the commission rule for each room origin.
type CommissionRules struct {
	HostRoom  pricing.Rule
	AdminRoom pricing.Rule
}

func (r CommissionRules) ForHostRoom() pricing.Rule {
	if r.HostRoom == nil {
		return pricing.TieredRule{}
	}
	return r.HostRoom
}

func (r CommissionRules) ForAdminRoom() pricing.Rule {
	if r.AdminRoom == nil {
		return pricing.FlatRateRule{Rate: pricing.AdminRoomCommissionRate}
	}
	return r.AdminRoom
}
