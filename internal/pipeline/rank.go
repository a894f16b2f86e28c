package pipeline

import (
	"strings"

	"github.com/kafuicharbeleklu/SmartProcure/internal"
	"github.com/kafuicharbeleklu/SmartProcure/internal/util"
)

// NotApplicable is returned when there is nothing to rank. Callers treat it
// as "no recommendation available", not as an error.
const NotApplicable = "N/A"

type Weights struct {
	Price      float64
	Technical  float64
	Compliance float64
	Delivery   float64
}

// WeightsFor resolves the priority hint to its profile. Delivery carries no
// weight outside the deadline profile.
func WeightsFor(priority internal.Priority) Weights {
	switch priority {
	case internal.PriorityDeadline:
		return Weights{Price: 0.20, Technical: 0.25, Compliance: 0.15, Delivery: 0.40}
	case internal.PriorityQuality:
		return Weights{Price: 0.25, Technical: 0.45, Compliance: 0.30, Delivery: 0.00}
	default:
		return Weights{Price: 0.55, Technical: 0.30, Compliance: 0.15, Delivery: 0.00}
	}
}

// BestOption ranks the offers under the priority profile and returns the
// winning supplier name. Price and delivery sub-scores are relative to the
// best value in the set; the first offer with the strictly highest composite
// wins, so ties keep the earlier offer.
func BestOption(offers []internal.Offer, priority internal.Priority) string {
	if len(offers) == 0 {
		return NotApplicable
	}

	minPrice := flooredPrice(offers[0])
	minDelivery := flooredDelivery(offers[0])
	for _, offer := range offers[1:] {
		if p := flooredPrice(offer); p < minPrice {
			minPrice = p
		}
		if d := flooredDelivery(offer); d < minDelivery {
			minDelivery = d
		}
	}

	weights := WeightsFor(priority)
	best := offers[0]
	bestScore := -1.0

	for _, offer := range offers {
		priceScore := minPrice / flooredPrice(offer) * 100
		deliveryScore := minDelivery / flooredDelivery(offer) * 100
		composite := priceScore*weights.Price +
			float64(offer.TechnicalScore)*weights.Technical +
			float64(offer.ComplianceScore)*weights.Compliance +
			deliveryScore*weights.Delivery
		if composite > bestScore {
			best = offer
			bestScore = composite
		}
	}

	return best.SupplierName
}

func flooredPrice(offer internal.Offer) float64 {
	if offer.PriceInclTax < 1 {
		return 1
	}
	return offer.PriceInclTax
}

func flooredDelivery(offer internal.Offer) float64 {
	if offer.DeliveryDays < 1 {
		return 1
	}
	return float64(offer.DeliveryDays)
}

// IsRecommended is the looser display-layer policy for highlighting the
// recommended offer: substring containment either way, once names are
// cleaned. Distinct from the persisted best-option policy, which is exact
// match or full recomputation.
func IsRecommended(supplierName, bestOption string) bool {
	name := strings.ToLower(util.CleanText(supplierName, ""))
	best := strings.ToLower(util.CleanText(bestOption, ""))
	if name == "" || best == "" || best == strings.ToLower(NotApplicable) {
		return false
	}
	if name == best {
		return true
	}
	return (len(best) > 3 && strings.Contains(name, best)) ||
		(len(name) > 3 && strings.Contains(best, name))
}
