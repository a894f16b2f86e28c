package pipeline

import (
	"errors"
	"strings"

	"github.com/kafuicharbeleklu/SmartProcure/internal"
	"github.com/kafuicharbeleklu/SmartProcure/internal/i18n"
	"github.com/kafuicharbeleklu/SmartProcure/internal/util"
)

// ErrNoUsableOffers is the one assembler failure that is not absorbed: an
// empty comparison must not be cached or persisted as a success.
var ErrNoUsableOffers = errors.New("pipeline: no usable offers after normalization")

// RawPayload is the whole untrusted extraction response.
type RawPayload map[string]any

func (p RawPayload) rawOffers() []RawOffer {
	list, ok := p["offers"].([]any)
	if !ok {
		return nil
	}
	out := make([]RawOffer, 0, len(list))
	for _, entry := range list {
		if record, ok := entry.(map[string]any); ok {
			out = append(out, RawOffer(record))
		}
	}
	return out
}

type AssembleOptions struct {
	Title          string
	NeedsText      string
	TargetCurrency string
	Language       internal.Language
	Priority       internal.Priority
}

// AssembleResult normalizes and deduplicates the raw offers, reconciles the
// proposed best option against the final offer set, and fills descriptive
// fields with localized fallbacks. The proposed best option is kept only on
// an exact case-insensitive name match; otherwise it is recomputed from the
// ranker so it always references a real offer.
func AssembleResult(raw RawPayload, opts AssembleOptions) (internal.AnalysisBody, error) {
	msgs := i18n.For(opts.Language)

	rawOffers := raw.rawOffers()
	offers := make([]internal.Offer, 0, len(rawOffers))
	for i, record := range rawOffers {
		offers = append(offers, NormalizeOffer(record, i, opts.TargetCurrency, msgs))
	}
	offers = DedupeOffers(offers)

	if len(offers) == 0 {
		return internal.AnalysisBody{}, ErrNoUsableOffers
	}

	proposed := strings.ToLower(util.CleanText(raw["bestOption"], ""))
	bestOption := ""
	for _, offer := range offers {
		if strings.ToLower(offer.SupplierName) == proposed && proposed != "" {
			bestOption = offer.SupplierName
			break
		}
	}
	if bestOption == "" {
		bestOption = BestOption(offers, opts.Priority)
	}

	return internal.AnalysisBody{
		Title:          opts.Title,
		NeedsSummary:   util.CleanText(raw["needsSummary"], opts.NeedsText),
		MarketAnalysis: util.CleanText(raw["marketAnalysis"], msgs.MarketAnalysisFallback),
		BestOption:     bestOption,
		Offers:         offers,
	}, nil
}
