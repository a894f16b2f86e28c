package pipeline

import (
	"math"
	"strconv"
	"strings"

	"github.com/kafuicharbeleklu/SmartProcure/internal"
	"github.com/kafuicharbeleklu/SmartProcure/internal/i18n"
	"github.com/kafuicharbeleklu/SmartProcure/internal/util"
)

// RawOffer is one untrusted offer-like record from the extraction payload.
// It never flows past the normalizer.
type RawOffer map[string]any

// assumedVAT is applied when only one of the HT/TTC amounts is present.
const assumedVAT = 1.18

// NormalizeOffer turns one raw record into a well-formed offer. Malformed
// fields are absorbed via fallbacks; this function cannot fail.
func NormalizeOffer(raw RawOffer, index int, targetCurrency string, msgs i18n.Messages) internal.Offer {
	name := util.CleanText(raw["supplierName"], "")
	if name == "" {
		name = msgs.SupplierFallback + " " + strconv.Itoa(index+1)
	}

	priceExcl := math.Max(0, util.FiniteNumber(raw["totalPriceHT"], 0))
	priceIncl := math.Max(0, util.FiniteNumber(raw["totalPriceTTC"], 0))

	if priceExcl > 0 && priceIncl <= 0 {
		priceIncl = math.Round(priceExcl * assumedVAT)
	}
	if priceIncl > 0 && priceExcl <= 0 {
		priceExcl = math.Round(priceIncl / assumedVAT)
	}
	// TTC below HT is impossible; force the invariant rather than guess.
	if priceIncl < priceExcl {
		priceIncl = priceExcl
	}

	return internal.Offer{
		SupplierName: name,
		TaxID:        util.CleanText(raw["nif"], ""),
		Email:        util.CleanText(raw["email"], ""),
		Phone:        util.CleanText(raw["phone"], ""),
		Address:      util.CleanText(raw["address"], ""),

		PriceExclTax: priceExcl,
		PriceInclTax: priceIncl,
		Currency:     util.NormalizeCurrency(raw["currency"], targetCurrency),

		OriginalPriceExclTax: math.Max(0, util.FiniteNumber(raw["originalTotalPriceHT"], 0)),
		OriginalPriceInclTax: math.Max(0, util.FiniteNumber(raw["originalTotalPriceTTC"], 0)),
		OriginalCurrency:     util.CleanText(raw["originalCurrency"], ""),

		WarrantyMonths:  util.ClampInt(util.FiniteNumber(raw["warrantyMonths"], 0), 0, 120),
		DeliveryDays:    util.ClampInt(util.FiniteNumber(raw["deliveryDays"], 0), 0, 365),
		TechnicalScore:  util.ClampInt(util.FiniteNumber(raw["technicalScore"], 60), 0, 100),
		ComplianceScore: util.ClampInt(util.FiniteNumber(raw["complianceScore"], 60), 0, 100),

		Strengths:      util.SanitizeStringList(raw["strengths"], []string{msgs.UsableOffer}),
		Weaknesses:     util.SanitizeStringList(raw["weaknesses"], []string{msgs.NoMajorRisk}),
		Recommendation: util.CleanText(raw["recommendation"], msgs.RecommendationUnavailable),
		MainSpecs:      util.CleanText(raw["mainSpecs"], msgs.SpecsNotDetailed),
	}
}

// DedupeOffers keeps at most one offer per case-insensitive supplier name,
// preferring the cheaper all-tax price. Offers whose name sanitizes to empty
// are dropped. Survivors keep the first-encounter order of their winning
// representative.
func DedupeOffers(offers []internal.Offer) []internal.Offer {
	out := make([]internal.Offer, 0, len(offers))
	position := map[string]int{}
	for _, offer := range offers {
		key := strings.ToLower(util.CleanText(offer.SupplierName, ""))
		if key == "" {
			continue
		}
		if idx, seen := position[key]; seen {
			if offer.PriceInclTax < out[idx].PriceInclTax {
				out[idx] = offer
			}
			continue
		}
		position[key] = len(out)
		out = append(out, offer)
	}
	return out
}
