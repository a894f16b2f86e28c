package pipeline

import (
	"testing"

	"github.com/kafuicharbeleklu/SmartProcure/internal"
)

func TestBuildWorkbook(t *testing.T) {
	result := internal.AnalysisResult{
		ID:   "a1",
		Date: "15/03/2026",
		AnalysisBody: internal.AnalysisBody{
			Title:      "Laptops",
			BestOption: "Acme Corp",
			Offers: []internal.Offer{
				{SupplierName: "Acme Corp", PriceExclTax: 100000, PriceInclTax: 118000, Currency: "XOF",
					Strengths: []string{"Prix", "Garantie"}, Weaknesses: []string{"Délai"}},
				{SupplierName: "Globex", PriceExclTax: 110000, PriceInclTax: 129800, Currency: "XOF"},
			},
		},
		Status:          internal.StatusCompleted,
		WinningSupplier: "Globex",
	}

	f := BuildWorkbook(result)
	defer f.Close()
	sheet := f.GetSheetName(0)

	cell := func(ref string) string {
		t.Helper()
		v, err := f.GetCellValue(sheet, ref)
		if err != nil {
			t.Fatalf("cell %s: %v", ref, err)
		}
		return v
	}

	if cell("A1") != "supplier" {
		t.Fatalf("header A1: got %q", cell("A1"))
	}
	if cell("A2") != "Acme Corp" || cell("A3") != "Globex" {
		t.Fatalf("supplier rows: %q, %q", cell("A2"), cell("A3"))
	}
	if cell("D2") != "118000" {
		t.Fatalf("price_incl_tax: got %q", cell("D2"))
	}
	if cell("O2") != "Prix; Garantie" {
		t.Fatalf("strengths: got %q", cell("O2"))
	}
	if cell("L2") != "TRUE" {
		t.Fatalf("recommended flag: got %q", cell("L2"))
	}
	if cell("M3") != "TRUE" || cell("M2") != "FALSE" {
		t.Fatalf("winner flags: %q / %q", cell("M3"), cell("M2"))
	}
}
