package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/kafuicharbeleklu/SmartProcure/internal"
	"github.com/kafuicharbeleklu/SmartProcure/internal/cache"
	"github.com/kafuicharbeleklu/SmartProcure/internal/extraction"
	"github.com/kafuicharbeleklu/SmartProcure/internal/i18n"
)

// Extractor is the external document-understanding collaborator.
type Extractor interface {
	ExtractOffers(ctx context.Context, in extraction.Input) (map[string]any, error)
}

// AnalysisService runs one comparison request end to end: cache lookup,
// attachment preparation, extraction, assembly, cache fill.
type AnalysisService struct {
	extractor Extractor
	results   *cache.ResultCache
}

func NewAnalysisService(extractor Extractor, results *cache.ResultCache) *AnalysisService {
	return &AnalysisService{extractor: extractor, results: results}
}

// UserError carries a localized message for the caller while wrapping the
// underlying cause for errors.Is checks.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string { return e.Message }
func (e *UserError) Unwrap() error { return e.Err }

func (s *AnalysisService) Analyze(ctx context.Context, req internal.AnalysisRequest) (internal.AnalysisResult, error) {
	msgs := i18n.For(req.Language)

	key, err := CacheKey(req)
	if err != nil {
		return internal.AnalysisResult{}, &UserError{Message: msgs.UnreadableOffers, Err: err}
	}

	if body, ok := s.results.Get(key); ok {
		log.Printf("[analysis] cache hit %s", key[:8])
		return stampResult(body, req.Language), nil
	}
	log.Printf("[analysis] cache miss %s", key[:8])

	requirementDocs, err := PrepareDocuments(req.RequirementFiles)
	if err != nil {
		return internal.AnalysisResult{}, &UserError{Message: msgs.UnreadableOffers, Err: err}
	}
	offerDocs, err := PrepareDocuments(req.OfferFiles)
	if err != nil {
		return internal.AnalysisResult{}, &UserError{Message: msgs.UnreadableOffers, Err: err}
	}

	raw, err := s.extractor.ExtractOffers(ctx, extraction.Input{
		Title:           req.Title,
		NeedsText:       req.NeedsText,
		ManualSpecs:     req.ManualSpecsText,
		RequirementDocs: requirementDocs,
		OfferDocs:       offerDocs,
		Rates:           req.ExchangeRates,
		TargetCurrency:  req.TargetCurrency,
		Language:        req.Language,
		Priority:        req.Priority,
	})
	if err != nil {
		return internal.AnalysisResult{}, &UserError{Message: extraction.UserMessage(err, msgs), Err: err}
	}

	body, err := AssembleResult(RawPayload(raw), AssembleOptions{
		Title:          req.Title,
		NeedsText:      req.NeedsText,
		TargetCurrency: req.TargetCurrency,
		Language:       req.Language,
		Priority:       req.Priority,
	})
	if err != nil {
		if errors.Is(err, ErrNoUsableOffers) {
			return internal.AnalysisResult{}, &UserError{Message: msgs.NoUsableOffer, Err: err}
		}
		return internal.AnalysisResult{}, fmt.Errorf("assemble result: %w", err)
	}

	s.results.Put(key, body)
	return stampResult(body, req.Language), nil
}

// stampResult attaches a fresh identity to a result body. Cached bodies get
// a new id and date on every hit; identity fields are never reused.
func stampResult(body internal.AnalysisBody, lang internal.Language) internal.AnalysisResult {
	layout := "02/01/2006"
	if lang == internal.LangEN {
		layout = "1/2/2006"
	}
	return internal.AnalysisResult{
		ID:           strconv.FormatInt(time.Now().UnixMilli(), 10),
		Date:         time.Now().Format(layout),
		AnalysisBody: body,
		Status:       internal.StatusPending,
	}
}
