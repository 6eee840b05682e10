package payment

import "github.com/pictoria/pictoria/internal/model"

// Plans purchasable through checkout. Amounts are in the smallest
// currency unit (paise for INR).
var Plans = []model.Plan{
	{ID: "pro-monthly", Name: "Pro Monthly", Amount: 79900, Currency: "INR", Interval: "month"},
	{ID: "pro-yearly", Name: "Pro Yearly", Amount: 799900, Currency: "INR", Interval: "year"},
}

// PlanByID looks up a plan by its identifier.
func PlanByID(id string) (model.Plan, bool) {
	for _, p := range Plans {
		if p.ID == id {
			return p, true
		}
	}
	return model.Plan{}, false
}
