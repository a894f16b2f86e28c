package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kafuicharbeleklu/SmartProcure/internal"
	"github.com/kafuicharbeleklu/SmartProcure/internal/config"
	"github.com/kafuicharbeleklu/SmartProcure/internal/extraction"
	"github.com/kafuicharbeleklu/SmartProcure/internal/pipeline"
	"github.com/kafuicharbeleklu/SmartProcure/internal/storage"
	"github.com/kafuicharbeleklu/SmartProcure/internal/util"
)

type Handler struct {
	cfg      config.Config
	db       *storage.DB
	analysis *pipeline.AnalysisService
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateAnalysis runs the full pipeline on a multipart upload and persists
// the outcome. Newly seen suppliers are registered as a side effect.
func (h *Handler) CreateAnalysis(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	settings, err := h.db.GetSettings(h.defaultSettings())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	req := internal.AnalysisRequest{
		Title:           formValue(form, "title"),
		NeedsText:       formValue(form, "needs"),
		ManualSpecsText: formValue(form, "specs"),
		TargetCurrency:  util.NormalizeCurrency(formValue(form, "currency"), settings.BaseCurrency),
		Language:        parseLanguage(formValue(form, "language"), settings.Language),
		Priority:        parsePriority(formValue(form, "priority")),
		ExchangeRates:   settings.ExchangeRates,
	}
	if rate := util.FiniteNumber(formValue(form, "rateEur"), 0); rate > 0 {
		req.ExchangeRates.EUR = rate
	}
	if rate := util.FiniteNumber(formValue(form, "rateUsd"), 0); rate > 0 {
		req.ExchangeRates.USD = rate
	}

	if req.RequirementFiles, err = readFiles(form.File["requirements"]); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.OfferFiles, err = readFiles(form.File["offers"]); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.OfferFiles) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one offer document is required"})
		return
	}

	result, err := h.analysis.Analyze(c.Request.Context(), req)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, pipeline.ErrNoUsableOffers) || errors.Is(err, extraction.ErrInvalidResponse) {
			status = http.StatusUnprocessableEntity
		}
		var userErr *pipeline.UserError
		if errors.As(err, &userErr) {
			c.JSON(status, gin.H{"error": userErr.Message})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.InsertAnalysis(result); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.db.RegisterSuppliers(result.Offers, result.Date, uuid.NewString); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *Handler) ListAnalyses(c *gin.Context) {
	results, err := h.db.ListAnalyses()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if results == nil {
		results = []internal.AnalysisResult{}
	}
	c.JSON(http.StatusOK, results)
}

func (h *Handler) GetAnalysis(c *gin.Context) {
	result, err := h.db.GetAnalysis(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
		return
	}
	c.JSON(http.StatusOK, result)
}

type closeRequest struct {
	SupplierName string                      `json:"supplierName" binding:"required"`
	Criteria     internal.EvaluationCriteria `json:"criteria"`
	Comment      string                      `json:"comment"`
}

// CloseAnalysis records the human decision on a pending case. The weighted
// global score is computed here, not trusted from the client.
func (h *Handler) CloseAnalysis(c *gin.Context) {
	var body closeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	eval := internal.SupplierEvaluation{
		AnalysisID:   id,
		SupplierName: strings.TrimSpace(body.SupplierName),
		Criteria:     body.Criteria,
		GlobalScore:  body.Criteria.GlobalScore(),
		Comment:      strings.TrimSpace(body.Comment),
	}

	if err := h.db.CloseAnalysis(id, eval); err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyClosed):
			c.JSON(http.StatusConflict, gin.H{"error": "analysis already closed"})
		case strings.Contains(err.Error(), "not found"):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	result, err := h.db.GetAnalysis(id)
	if err != nil || result == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "closed but could not reload analysis"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ExportAnalysis(c *gin.Context) {
	result, err := h.db.GetAnalysis(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
		return
	}

	f := pipeline.BuildWorkbook(*result)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=analysis-%s.xlsx", result.ID))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

func (h *Handler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.db.ListSuppliers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if suppliers == nil {
		suppliers = []internal.Supplier{}
	}
	c.JSON(http.StatusOK, suppliers)
}

func (h *Handler) CreateSupplier(c *gin.Context) {
	var s internal.Supplier
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(s.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "supplier name is required"})
		return
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = internal.SupplierActive
	}
	if s.Category == "" {
		s.Category = "Général"
	}
	if err := h.db.InsertSupplier(s); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *Handler) UpdateSupplier(c *gin.Context) {
	var s internal.Supplier
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.ID = c.Param("id")
	if err := h.db.UpdateSupplier(s); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) DeleteSupplier(c *gin.Context) {
	if err := h.db.DeleteSupplier(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.db.GetSettings(h.defaultSettings())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handler) SaveSettings(c *gin.Context) {
	var s internal.Settings
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if s.BaseCurrency == "" {
		s.BaseCurrency = h.cfg.DefaultCurrency
	}
	if s.Language != internal.LangFR && s.Language != internal.LangEN {
		s.Language = internal.Language(h.cfg.DefaultLanguage)
	}
	if err := h.db.SaveSettings(s); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) defaultSettings() internal.Settings {
	return internal.Settings{
		OrganizationName: "",
		BaseCurrency:     h.cfg.DefaultCurrency,
		ExchangeRates:    internal.ExchangeRates{EUR: h.cfg.RateEUR, USD: h.cfg.RateUSD},
		Language:         internal.Language(h.cfg.DefaultLanguage),
	}
}

func formValue(form *multipart.Form, key string) string {
	values := form.Value[key]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func readFiles(headers []*multipart.FileHeader) ([]internal.Attachment, error) {
	out := make([]internal.Attachment, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %s: %w", header.Filename, err)
		}
		content, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return nil, fmt.Errorf("read upload %s: %w", header.Filename, err)
		}
		out = append(out, internal.Attachment{
			Name:      header.Filename,
			MediaType: header.Header.Get("Content-Type"),
			Content:   content,
		})
	}
	return out, nil
}

func parseLanguage(value string, fallback internal.Language) internal.Language {
	switch strings.ToLower(value) {
	case "fr":
		return internal.LangFR
	case "en":
		return internal.LangEN
	}
	if fallback == internal.LangEN {
		return internal.LangEN
	}
	return internal.LangFR
}

func parsePriority(value string) internal.Priority {
	switch strings.ToLower(value) {
	case string(internal.PriorityQuality):
		return internal.PriorityQuality
	case string(internal.PriorityDeadline):
		return internal.PriorityDeadline
	default:
		return internal.PriorityPrice
	}
}
