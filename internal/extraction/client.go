// Package extraction wraps the external document-understanding service. The
// model output is untrusted by contract; callers must pass it through the
// pipeline normalizer before using any field.
package extraction

import (
	"context"
	"encoding/json"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	genai "google.golang.org/genai"

	"github.com/kafuicharbeleklu/SmartProcure/internal"
	"github.com/kafuicharbeleklu/SmartProcure/internal/config"
)

// Document is one inline attachment sent alongside the prompt.
type Document struct {
	Data     []byte
	MIMEType string
}

// Input is the full extraction context for one comparison request.
type Input struct {
	Title           string
	NeedsText       string
	ManualSpecs     string
	RequirementDocs []Document
	OfferDocs       []Document
	Rates           internal.ExchangeRates
	TargetCurrency  string
	Language        internal.Language
	Priority        internal.Priority
}

type Client struct {
	cli       *genai.Client
	model     string
	limiter   *requestLimiter
	attempts  int
	baseDelay time.Duration
}

func NewClient(ctx context.Context, cfg config.Config) (*Client, error) {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Client{
		cli:       cli,
		model:     cfg.GeminiModel,
		limiter:   newRequestLimiter(cfg.GeminiRPS),
		attempts:  cfg.AnalyzeRetries,
		baseDelay: time.Duration(cfg.AnalyzeRetryDelayMs) * time.Millisecond,
	}, nil
}

func (c *Client) Name() string { return "Gemini:" + c.model }

// ExtractOffers sends the request documents and context to the model and
// returns the raw decoded payload. The network call is retried with backoff;
// a JSON parse failure is terminal.
func (c *Client) ExtractOffers(ctx context.Context, in Input) (map[string]any, error) {
	parts := make([]*genai.Part, 0, 2*(len(in.RequirementDocs)+len(in.OfferDocs))+1)
	for i, doc := range in.RequirementDocs {
		parts = append(parts,
			genai.NewPartFromText("[BUYER_REQUEST_"+strconv.Itoa(i+1)+"]"),
			genai.NewPartFromBytes(doc.Data, doc.MIMEType),
		)
	}
	for i, doc := range in.OfferDocs {
		parts = append(parts,
			genai.NewPartFromText("[SUPPLIER_OFFER_"+strconv.Itoa(i+1)+"]"),
			genai.NewPartFromBytes(doc.Data, doc.MIMEType),
		)
	}
	parts = append(parts, genai.NewPartFromText(buildPrompt(in)))

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.2),
		TopP:              genai.Ptr[float32](0.8),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema(),
	}

	text, err := Retry(ctx, c.attempts, c.baseDelay, "gemini-analysis", func(ctx context.Context) (string, error) {
		c.limiter.WaitTurn()
		resp, err := c.cli.Models.GenerateContent(ctx, c.model,
			[]*genai.Content{{Parts: parts}}, cfg)
		if err != nil {
			return "", err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return "", ErrEmptyResponse
		}
		out := resp.Candidates[0].Content.Parts[0].Text
		if strings.TrimSpace(out) == "" {
			return "", ErrEmptyResponse
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(stripJSONFences(text)), &payload); err != nil {
		log.Printf("[gemini-analysis] unparsable response (%d bytes)", len(text))
		return nil, ErrInvalidResponse
	}
	return payload, nil
}

var (
	reFenceOpen  = regexp.MustCompile("^```[a-z]*\n?")
	reFenceClose = regexp.MustCompile("\n?```$")
)

// stripJSONFences drops a markdown code fence the model sometimes wraps
// around its JSON despite the response MIME type.
func stripJSONFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = reFenceOpen.ReplaceAllString(cleaned, "")
		cleaned = reFenceClose.ReplaceAllString(cleaned, "")
	}
	return cleaned
}

