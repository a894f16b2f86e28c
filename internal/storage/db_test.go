package storage

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/kafuicharbeleklu/SmartProcure/internal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "smartprocure.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleResult(id string) internal.AnalysisResult {
	return internal.AnalysisResult{
		ID:   id,
		Date: "15/03/2026",
		AnalysisBody: internal.AnalysisBody{
			Title:          "Laptops",
			NeedsSummary:   "10 laptops",
			MarketAnalysis: "Deux offres comparables.",
			BestOption:     "Acme Corp",
			Offers: []internal.Offer{
				{SupplierName: "Acme Corp", PriceExclTax: 100000, PriceInclTax: 118000, Currency: "XOF",
					Strengths: []string{"Offre exploitable."}, Weaknesses: []string{"Aucun risque majeur détecté."}},
				{SupplierName: "Globex", PriceExclTax: 90000, PriceInclTax: 106200, Currency: "XOF",
					Strengths: []string{"Prix bas"}, Weaknesses: []string{"Délai long"}},
			},
		},
		Status: internal.StatusPending,
	}
}

func TestAnalysisRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if err := db.InsertAnalysis(sampleResult("a1")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := db.GetAnalysis("a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatalf("analysis not found")
	}
	if got.Title != "Laptops" || got.BestOption != "Acme Corp" || len(got.Offers) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.Status != internal.StatusPending {
		t.Fatalf("status: got %q", got.Status)
	}
	if got.Offers[0].PriceInclTax != 118000 {
		t.Fatalf("offers not decoded: %+v", got.Offers[0])
	}

	missing, err := db.GetAnalysis("nope")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing analysis")
	}
}

func TestListAnalyses(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < 3; i++ {
		if err := db.InsertAnalysis(sampleResult(fmt.Sprintf("a%d", i))); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	results, err := db.ListAnalyses()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results want 3", len(results))
	}
}

func TestCloseAnalysisOnce(t *testing.T) {
	db := openTestDB(t)
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected: %v", err)
		}
	}

	must(db.InsertAnalysis(sampleResult("a1")))
	ids := 0
	newID := func() string { ids++; return fmt.Sprintf("s%d", ids) }
	_, err := db.RegisterSuppliers(sampleResult("a1").Offers, "15/03/2026", newID)
	must(err)

	criteria := internal.EvaluationCriteria{Cost: 4, Quality: 5, Deadlines: 4, Technical: 5, Management: 3, Innovation: 2}
	eval := internal.SupplierEvaluation{
		AnalysisID:   "a1",
		SupplierName: "Acme Corp",
		Criteria:     criteria,
		GlobalScore:  criteria.GlobalScore(),
		Comment:      "RAS",
	}
	must(db.CloseAnalysis("a1", eval))

	got, err := db.GetAnalysis("a1")
	must(err)
	if got.Status != internal.StatusCompleted {
		t.Fatalf("status: got %q", got.Status)
	}
	if got.WinningSupplier != "Acme Corp" {
		t.Fatalf("winningSupplier: got %q", got.WinningSupplier)
	}
	if got.Evaluation == nil || got.Evaluation.Criteria.Quality != 5 {
		t.Fatalf("evaluation not persisted: %+v", got.Evaluation)
	}

	if err := db.CloseAnalysis("a1", eval); !errors.Is(err, ErrAlreadyClosed) {
		t.Fatalf("second close: got %v want ErrAlreadyClosed", err)
	}
	if err := db.CloseAnalysis("ghost", eval); err == nil || errors.Is(err, ErrAlreadyClosed) {
		t.Fatalf("missing analysis: got %v", err)
	}
}

func TestCloseAnalysisUpdatesSupplierRating(t *testing.T) {
	db := openTestDB(t)

	offers := []internal.Offer{{SupplierName: "Acme Corp", PriceInclTax: 100}}
	if _, err := db.RegisterSuppliers(offers, "15/03/2026", func() string { return "s1" }); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := db.InsertAnalysis(sampleResult("a1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	eval := internal.SupplierEvaluation{SupplierName: "acme  corp", GlobalScore: 5}
	if err := db.CloseAnalysis("a1", eval); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err := db.GetSupplierByName("Acme Corp")
	if err != nil {
		t.Fatalf("get supplier: %v", err)
	}
	if s == nil {
		t.Fatalf("supplier not found")
	}
	// running mean over (3*0 + 5) / 1
	if math.Abs(s.Rating-5) > 1e-9 || s.RatingCount != 1 {
		t.Fatalf("rating %v count %d, want 5 and 1", s.Rating, s.RatingCount)
	}
}

func TestRegisterSuppliers(t *testing.T) {
	db := openTestDB(t)

	offers := []internal.Offer{
		{SupplierName: "Acme Corp", TaxID: "NIF123", Email: "contact@acme.test"},
		{SupplierName: "ACME  CORP"},
		{SupplierName: "Globex"},
		{SupplierName: "   "},
	}
	ids := 0
	newID := func() string { ids++; return fmt.Sprintf("s%d", ids) }

	added, err := db.RegisterSuppliers(offers, "15/03/2026", newID)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if added != 2 {
		t.Fatalf("added %d want 2", added)
	}

	suppliers, err := db.ListSuppliers()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(suppliers) != 2 {
		t.Fatalf("got %d suppliers want 2", len(suppliers))
	}
	acme := suppliers[0]
	if acme.Name != "Acme Corp" || acme.TaxID != "NIF123" {
		t.Fatalf("got %+v", acme)
	}
	if acme.Rating != 3 || acme.RatingCount != 0 || acme.Category != "Général" || acme.Status != internal.SupplierActive {
		t.Fatalf("defaults wrong: %+v", acme)
	}

	added, err = db.RegisterSuppliers(offers[:1], "16/03/2026", newID)
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if added != 0 {
		t.Fatalf("re-register added %d want 0", added)
	}
	s, err := db.GetSupplierByName("acme corp")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.LastActiveDate != "16/03/2026" {
		t.Fatalf("lastActiveDate not refreshed: %q", s.LastActiveDate)
	}
}

func TestSupplierCRUD(t *testing.T) {
	db := openTestDB(t)

	s := internal.Supplier{ID: "s1", Name: "Acme Corp", Category: "Informatique", Rating: 4, Status: internal.SupplierActive}
	if err := db.InsertSupplier(s); err != nil {
		t.Fatalf("insert: %v", err)
	}

	s.Phone = "+228 90 00 00 00"
	s.Status = internal.SupplierInactive
	if err := db.UpdateSupplier(s); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := db.GetSupplierByName("acme corp")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Phone != s.Phone || got.Status != internal.SupplierInactive {
		t.Fatalf("got %+v", got)
	}

	if err := db.UpdateSupplier(internal.Supplier{ID: "ghost", Name: "X"}); err == nil {
		t.Fatalf("expected error for unknown supplier")
	}

	if err := db.DeleteSupplier("s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = db.GetSupplierByName("Acme Corp")
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Fatalf("supplier still present after delete")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	db := openTestDB(t)

	defaults := internal.Settings{
		BaseCurrency:  "XOF",
		ExchangeRates: internal.ExchangeRates{EUR: 655.96, USD: 600},
		Language:      internal.LangFR,
	}

	got, err := db.GetSettings(defaults)
	if err != nil {
		t.Fatalf("get defaults: %v", err)
	}
	if got.BaseCurrency != "XOF" || got.ExchangeRates.EUR != 655.96 {
		t.Fatalf("got %+v", got)
	}

	got.ExchangeRates.USD = 610
	got.Language = internal.LangEN
	if err := db.SaveSettings(got); err != nil {
		t.Fatalf("save: %v", err)
	}

	reread, err := db.GetSettings(defaults)
	if err != nil {
		t.Fatalf("reread: %v", err)
	}
	if reread.ExchangeRates.USD != 610 || reread.Language != internal.LangEN {
		t.Fatalf("got %+v", reread)
	}

	// a corrupt blob falls back to defaults instead of failing
	if err := db.SetMetadata("settings", "{not json"); err != nil {
		t.Fatalf("set: %v", err)
	}
	fallback, err := db.GetSettings(defaults)
	if err != nil {
		t.Fatalf("get corrupt: %v", err)
	}
	if fallback.BaseCurrency != "XOF" || fallback.Language != internal.LangFR {
		t.Fatalf("got %+v", fallback)
	}
}

func TestDocumentDedupByHash(t *testing.T) {
	db := openTestDB(t)

	doc := internal.DocumentRow{
		Provider: "imap", MessageID: "m1", Sender: "a@b.test", Subject: "Devis",
		ReceivedAt: "2026-03-15T10:00:00Z", Filename: "devis.pdf",
		MediaType: "application/pdf", Hash: "deadbeef", Path: "/tmp/deadbeef.pdf",
	}
	if _, err := db.InsertDocument(doc); err != nil {
		t.Fatalf("insert: %v", err)
	}
	doc.MessageID = "m2"
	if _, err := db.InsertDocument(doc); err != nil {
		t.Fatalf("duplicate insert should be a no-op, got %v", err)
	}

	docs, err := db.ListDocumentsByStatus(internal.DocumentNew, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents want 1", len(docs))
	}

	if err := db.UpdateDocumentStatus(docs[0].ID, internal.DocumentAnalyzed); err != nil {
		t.Fatalf("update status: %v", err)
	}
	docs, err = db.ListDocumentsByStatus(internal.DocumentNew, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("document still listed as new")
	}
}
