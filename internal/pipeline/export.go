package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kafuicharbeleklu/SmartProcure/internal"
)

// BuildWorkbook renders a stored comparison as a spreadsheet, one offer per
// row. The recommended flag uses the display-layer substring policy.
func BuildWorkbook(result internal.AnalysisResult) *excelize.File {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"supplier", "nif", "price_excl_tax", "price_incl_tax", "currency",
		"original_price_incl_tax", "original_currency",
		"warranty_months", "delivery_days", "technical_score", "compliance_score",
		"recommended", "winner", "main_specs", "strengths", "weaknesses", "recommendation",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, offer := range result.Offers {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, offer.SupplierName)
		set(2, offer.TaxID)
		set(3, offer.PriceExclTax)
		set(4, offer.PriceInclTax)
		set(5, offer.Currency)
		set(6, emptyIfZero(offer.OriginalPriceInclTax))
		set(7, offer.OriginalCurrency)
		set(8, offer.WarrantyMonths)
		set(9, offer.DeliveryDays)
		set(10, offer.TechnicalScore)
		set(11, offer.ComplianceScore)
		set(12, IsRecommended(offer.SupplierName, result.BestOption))
		set(13, result.WinningSupplier != "" && strings.EqualFold(offer.SupplierName, result.WinningSupplier))
		set(14, offer.MainSpecs)
		set(15, strings.Join(offer.Strengths, "; "))
		set(16, strings.Join(offer.Weaknesses, "; "))
		set(17, offer.Recommendation)
	}

	return f
}

func ExportResultToXLSX(result internal.AnalysisResult, outputPath string) error {
	f := BuildWorkbook(result)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func emptyIfZero(v float64) any {
	if v == 0 {
		return ""
	}
	return v
}
