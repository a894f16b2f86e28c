package extraction

import (
	"fmt"

	genai "google.golang.org/genai"

	"github.com/kafuicharbeleklu/SmartProcure/internal"
)

const systemInstruction = `You are a Senior Procurement and Financial Auditor.
Objective: extract reliable supplier data and compare offers with strict financial and technical checks.

RULES:
1) Return ONLY JSON and strictly follow the schema.
2) Extract supplier identity: company name, NIF, email, phone, address.
3) Financial extraction:
   - Distinguish HT (without tax) and TTC (with tax).
   - If only one amount is present, infer the missing one from context (use 18% VAT only when needed).
   - Normalize currency aliases: FCFA/CFA/XOF => XOF.
4) Technical extraction:
   - Build a concise mainSpecs summary.
   - technicalScore and complianceScore must remain within [0,100].
5) Recommendation quality:
   - strengths and weaknesses must be concise and specific.
   - bestOption must exactly match one supplierName from offers.`

func buildPrompt(in Input) string {
	outputLanguage := "FRENCH"
	if in.Language == internal.LangEN {
		outputLanguage = "ENGLISH"
	}
	return fmt.Sprintf(`[CONTEXT]
Project: %q
Needs: %q
Specs: %q
Target Currency: %q
Rates: 1 EUR=%g, 1 USD=%g
Priority Hint: %q

[INSTRUCTIONS]
1. Compare each supplier offer against buyer needs.
2. Extract normalized supplier details and financial values.
3. Provide consistent scoring and justified recommendations.
4. Write marketAnalysis, strengths and weaknesses in %s.

Generate JSON conforming to the schema.`,
		in.Title, in.NeedsText, in.ManualSpecs, in.TargetCurrency,
		in.Rates.EUR, in.Rates.USD, string(in.Priority), outputLanguage)
}

func responseSchema() *genai.Schema {
	offerSchema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"supplierName":          {Type: genai.TypeString},
			"nif":                   {Type: genai.TypeString},
			"email":                 {Type: genai.TypeString},
			"phone":                 {Type: genai.TypeString},
			"address":               {Type: genai.TypeString},
			"totalPriceHT":          {Type: genai.TypeNumber},
			"totalPriceTTC":         {Type: genai.TypeNumber},
			"currency":              {Type: genai.TypeString},
			"originalTotalPriceHT":  {Type: genai.TypeNumber},
			"originalTotalPriceTTC": {Type: genai.TypeNumber},
			"originalCurrency":      {Type: genai.TypeString},
			"warrantyMonths":        {Type: genai.TypeInteger},
			"deliveryDays":          {Type: genai.TypeInteger},
			"mainSpecs":             {Type: genai.TypeString},
			"technicalScore":        {Type: genai.TypeNumber},
			"complianceScore":       {Type: genai.TypeNumber},
			"strengths":             {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"weaknesses":            {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"recommendation":        {Type: genai.TypeString},
		},
		Required: []string{"supplierName", "totalPriceHT", "totalPriceTTC", "currency", "technicalScore", "complianceScore"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"analysisTitle":  {Type: genai.TypeString},
			"needsSummary":   {Type: genai.TypeString},
			"marketAnalysis": {Type: genai.TypeString},
			"bestOption":     {Type: genai.TypeString},
			"offers":         {Type: genai.TypeArray, Items: offerSchema},
		},
		Required: []string{"offers", "bestOption", "marketAnalysis"},
	}
}
