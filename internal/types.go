package internal

import "math"

type Language string

const (
	LangFR Language = "fr"
	LangEN Language = "en"
)

// Priority selects which weight profile the ranker applies.
type Priority string

const (
	PriorityPrice    Priority = "price"
	PriorityQuality  Priority = "quality"
	PriorityDeadline Priority = "deadline"
)

type AnalysisStatus string

const (
	StatusPending   AnalysisStatus = "pending"
	StatusCompleted AnalysisStatus = "completed"
)

// Offer is one supplier bid after normalization. JSON tags follow the
// extraction schema so the same shape round-trips through persistence.
type Offer struct {
	SupplierName string `json:"supplierName"`
	TaxID        string `json:"nif,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`

	PriceExclTax float64 `json:"totalPriceHT"`
	PriceInclTax float64 `json:"totalPriceTTC"`
	Currency     string  `json:"currency"`

	OriginalPriceExclTax float64 `json:"originalTotalPriceHT,omitempty"`
	OriginalPriceInclTax float64 `json:"originalTotalPriceTTC,omitempty"`
	OriginalCurrency     string  `json:"originalCurrency,omitempty"`

	WarrantyMonths  int `json:"warrantyMonths"`
	DeliveryDays    int `json:"deliveryDays"`
	TechnicalScore  int `json:"technicalScore"`
	ComplianceScore int `json:"complianceScore"`

	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	Recommendation string   `json:"recommendation"`
	MainSpecs      string   `json:"mainSpecs"`
}

// AnalysisBody is the pre-persistence outcome of one comparison: everything
// except the identity and lifecycle fields assigned at store time.
type AnalysisBody struct {
	Title          string  `json:"title"`
	NeedsSummary   string  `json:"needsSummary"`
	MarketAnalysis string  `json:"marketAnalysis"`
	BestOption     string  `json:"bestOption"`
	Offers         []Offer `json:"offers"`
}

type AnalysisResult struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	AnalysisBody

	Status          AnalysisStatus      `json:"status"`
	WinningSupplier string              `json:"winningSupplier,omitempty"`
	Evaluation      *SupplierEvaluation `json:"evaluation,omitempty"`
}

type ExchangeRates struct {
	EUR float64 `json:"EUR"`
	USD float64 `json:"USD"`
}

// Attachment is one uploaded (or mail-collected) document, content in memory.
type Attachment struct {
	Name      string
	MediaType string
	Content   []byte
}

// AnalysisRequest carries the full context of one comparison request.
type AnalysisRequest struct {
	Title            string
	NeedsText        string
	ManualSpecsText  string
	RequirementFiles []Attachment
	OfferFiles       []Attachment
	ExchangeRates    ExchangeRates
	TargetCurrency   string
	Language         Language
	Priority         Priority
}

type SupplierStatus string

const (
	SupplierActive   SupplierStatus = "active"
	SupplierInactive SupplierStatus = "inactive"
)

type Supplier struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	TaxID          string         `json:"nif,omitempty"`
	Category       string         `json:"category"`
	Email          string         `json:"email,omitempty"`
	Phone          string         `json:"phone,omitempty"`
	Address        string         `json:"address,omitempty"`
	Rating         float64        `json:"rating"`
	RatingCount    int            `json:"ratingCount"`
	Status         SupplierStatus `json:"status"`
	LastActiveDate string         `json:"lastActiveDate,omitempty"`
}

// EvaluationCriteria are the closure scores, each on a 0-5 scale.
type EvaluationCriteria struct {
	Cost       int `json:"cost"`
	Quality    int `json:"quality"`
	Deadlines  int `json:"deadlines"`
	Technical  int `json:"technical"`
	Management int `json:"management"`
	Innovation int `json:"innovation"`
}

// GlobalScore is the weighted mean of the closure criteria on the 0-5
// scale: cost 35%, quality 20%, deadlines 15%, technical 15%, management
// 10%, innovation 5%. Rounded to two decimals.
func (c EvaluationCriteria) GlobalScore() float64 {
	total := float64(c.Cost)*0.35 +
		float64(c.Quality)*0.20 +
		float64(c.Deadlines)*0.15 +
		float64(c.Technical)*0.15 +
		float64(c.Management)*0.10 +
		float64(c.Innovation)*0.05
	return math.Round(total*100) / 100
}

type SupplierEvaluation struct {
	AnalysisID   string             `json:"analysisId,omitempty"`
	SupplierName string             `json:"supplierName"`
	Criteria     EvaluationCriteria `json:"criteria"`
	GlobalScore  float64            `json:"globalScore"`
	Comment      string             `json:"comment,omitempty"`
}

type Settings struct {
	OrganizationName string        `json:"organizationName"`
	BaseCurrency     string        `json:"baseCurrency"`
	ExchangeRates    ExchangeRates `json:"exchangeRates"`
	Language         Language      `json:"language"`
}

type DocumentStatus string

const (
	DocumentNew      DocumentStatus = "new"
	DocumentAnalyzed DocumentStatus = "analyzed"
)

// DocumentRow tracks one offer document collected by the mail intake.
type DocumentRow struct {
	ID         int
	Provider   string
	MessageID  string
	Sender     string
	Subject    string
	ReceivedAt string
	Filename   string
	MediaType  string
	Hash       string
	Path       string
	Status     DocumentStatus
}

// FetchedMail is a raw message pulled from a mailbox, before MIME parsing.
type FetchedMail struct {
	Provider   string
	MessageID  string
	ReceivedAt string
	Raw        []byte
}
