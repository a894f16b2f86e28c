package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/kafuicharbeleklu/SmartProcure/internal"
	"github.com/kafuicharbeleklu/SmartProcure/internal/cache"
	"github.com/kafuicharbeleklu/SmartProcure/internal/extraction"
	"github.com/kafuicharbeleklu/SmartProcure/internal/i18n"
)

type fakeExtractor struct {
	calls   int
	payload map[string]any
	err     error
}

func (f *fakeExtractor) ExtractOffers(ctx context.Context, in extraction.Input) (map[string]any, error) {
	f.calls++
	return f.payload, f.err
}

func textRequest() internal.AnalysisRequest {
	return internal.AnalysisRequest{
		Title:          "Laptops",
		NeedsText:      "10 laptops",
		TargetCurrency: "XOF",
		Language:       internal.LangFR,
		Priority:       internal.PriorityPrice,
		OfferFiles: []internal.Attachment{
			{Name: "offer.txt", MediaType: "text/plain", Content: []byte("Acme: 118000 FCFA TTC")},
		},
	}
}

func newService(t *testing.T, extractor Extractor) *AnalysisService {
	t.Helper()
	results, err := cache.New(4)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	return NewAnalysisService(extractor, results)
}

func TestAnalyzeCachesByContent(t *testing.T) {
	extractor := &fakeExtractor{payload: map[string]any{
		"bestOption": "Acme",
		"offers":     []any{map[string]any{"supplierName": "Acme", "totalPriceTTC": 118000.0}},
	}}
	svc := newService(t, extractor)

	first, err := svc.Analyze(context.Background(), textRequest())
	if err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	second, err := svc.Analyze(context.Background(), textRequest())
	if err != nil {
		t.Fatalf("second analyze: %v", err)
	}

	if extractor.calls != 1 {
		t.Fatalf("extractor called %d times, want 1", extractor.calls)
	}
	if len(second.Offers) != len(first.Offers) || second.BestOption != first.BestOption {
		t.Fatalf("cached body differs: %+v vs %+v", second.AnalysisBody, first.AnalysisBody)
	}
	if second.ID == "" || second.Date == "" {
		t.Fatalf("cached hit missing fresh identity: %+v", second)
	}
	if second.Status != internal.StatusPending {
		t.Fatalf("status: got %q want pending", second.Status)
	}
}

func TestAnalyzeNoUsableOffers(t *testing.T) {
	extractor := &fakeExtractor{payload: map[string]any{"offers": []any{}}}
	svc := newService(t, extractor)

	_, err := svc.Analyze(context.Background(), textRequest())
	if !errors.Is(err, ErrNoUsableOffers) {
		t.Fatalf("got %v want ErrNoUsableOffers", err)
	}
	var userErr *UserError
	if !errors.As(err, &userErr) {
		t.Fatalf("expected a user error, got %T", err)
	}
	if userErr.Message != i18n.For(internal.LangFR).NoUsableOffer {
		t.Fatalf("message: got %q", userErr.Message)
	}
}

func TestAnalyzeFailedExtractionNotCached(t *testing.T) {
	extractor := &fakeExtractor{err: errors.New("boom")}
	svc := newService(t, extractor)

	if _, err := svc.Analyze(context.Background(), textRequest()); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := svc.Analyze(context.Background(), textRequest()); err == nil {
		t.Fatalf("expected error")
	}
	if extractor.calls != 2 {
		t.Fatalf("failures must not populate the cache, extractor called %d times", extractor.calls)
	}
}

func TestAnalyzeRejectsEmptyAttachment(t *testing.T) {
	extractor := &fakeExtractor{}
	svc := newService(t, extractor)

	req := textRequest()
	req.OfferFiles[0].Content = nil
	_, err := svc.Analyze(context.Background(), req)
	if err == nil {
		t.Fatalf("expected error")
	}
	if extractor.calls != 0 {
		t.Fatalf("extractor must not be called for unreadable input")
	}
}
