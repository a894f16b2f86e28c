package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kafuicharbeleklu/SmartProcure/internal"
	"github.com/kafuicharbeleklu/SmartProcure/internal/cache"
	"github.com/kafuicharbeleklu/SmartProcure/internal/config"
	"github.com/kafuicharbeleklu/SmartProcure/internal/extraction"
	"github.com/kafuicharbeleklu/SmartProcure/internal/intake"
	"github.com/kafuicharbeleklu/SmartProcure/internal/pipeline"
	"github.com/kafuicharbeleklu/SmartProcure/internal/server"
	"github.com/kafuicharbeleklu/SmartProcure/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "serve":
		svc, err := newAnalysisService(cfg)
		must(err)
		router := server.New(cfg, db, svc)
		fmt.Printf("listening on %s\n", cfg.HTTPAddr)
		must(router.Run(cfg.HTTPAddr))

	case "analyze":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		title := fs.String("title", "", "analysis title")
		needs := fs.String("needs", "", "buyer needs description")
		specs := fs.String("specs", "", "manual technical specs")
		reqFiles := fs.String("req", "", "comma-separated requirement document paths")
		offerFiles := fs.String("offers", "", "comma-separated offer document paths")
		currency := fs.String("currency", cfg.DefaultCurrency, "target currency")
		lang := fs.String("lang", cfg.DefaultLanguage, "fr|en")
		priority := fs.String("priority", "price", "price|quality|deadline")
		out := fs.String("out", "", "optional xlsx output path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*offerFiles) == "" {
			must(fmt.Errorf("--offers is required"))
		}

		svc, err := newAnalysisService(cfg)
		must(err)

		settings, err := db.GetSettings(internal.Settings{
			BaseCurrency:  cfg.DefaultCurrency,
			ExchangeRates: internal.ExchangeRates{EUR: cfg.RateEUR, USD: cfg.RateUSD},
			Language:      internal.Language(cfg.DefaultLanguage),
		})
		must(err)

		req := internal.AnalysisRequest{
			Title:           *title,
			NeedsText:       *needs,
			ManualSpecsText: *specs,
			TargetCurrency:  *currency,
			Language:        internal.Language(*lang),
			Priority:        internal.Priority(*priority),
			ExchangeRates:   settings.ExchangeRates,
		}
		req.RequirementFiles, err = loadAttachments(*reqFiles)
		must(err)
		req.OfferFiles, err = loadAttachments(*offerFiles)
		must(err)

		result, err := svc.Analyze(context.Background(), req)
		must(err)
		must(db.InsertAnalysis(result))
		_, err = db.RegisterSuppliers(result.Offers, result.Date, uuid.NewString)
		must(err)

		fmt.Printf("analysis %s: %d offers, best option %s\n", result.ID, len(result.Offers), result.BestOption)
		if strings.TrimSpace(*out) != "" {
			must(pipeline.ExportResultToXLSX(result, *out))
			fmt.Printf("exported to %s\n", *out)
		}

	case "history:list":
		results, err := db.ListAnalyses()
		must(err)
		for _, r := range results {
			fmt.Printf("%s  %s  offers=%d  best=%s  status=%s\n", r.ID, r.Title, len(r.Offers), r.BestOption, r.Status)
		}

	case "history:close":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("id", "", "analysis id")
		supplier := fs.String("supplier", "", "winning supplier name")
		cost := fs.Int("cost", 3, "cost score 0-5")
		quality := fs.Int("quality", 3, "quality score 0-5")
		deadlines := fs.Int("deadlines", 3, "deadlines score 0-5")
		technical := fs.Int("technical", 3, "technical score 0-5")
		management := fs.Int("management", 3, "management score 0-5")
		innovation := fs.Int("innovation", 3, "innovation score 0-5")
		comment := fs.String("comment", "", "evaluation comment")
		_ = fs.Parse(os.Args[2:])
		if *id == "" || strings.TrimSpace(*supplier) == "" {
			must(fmt.Errorf("--id and --supplier are required"))
		}

		criteria := internal.EvaluationCriteria{
			Cost: *cost, Quality: *quality, Deadlines: *deadlines,
			Technical: *technical, Management: *management, Innovation: *innovation,
		}
		eval := internal.SupplierEvaluation{
			AnalysisID:   *id,
			SupplierName: *supplier,
			Criteria:     criteria,
			GlobalScore:  criteria.GlobalScore(),
			Comment:      *comment,
		}
		must(db.CloseAnalysis(*id, eval))
		fmt.Printf("closed %s: winner=%s score=%.2f/5\n", *id, *supplier, eval.GlobalScore)

	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("id", "", "analysis id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *id == "" || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--id and --out are required"))
		}
		result, err := db.GetAnalysis(*id)
		must(err)
		if result == nil {
			must(fmt.Errorf("analysis not found: %s", *id))
		}
		must(pipeline.ExportResultToXLSX(*result, *out))
		fmt.Printf("exported %d offers to %s\n", len(result.Offers), *out)

	case "suppliers:list":
		suppliers, err := db.ListSuppliers()
		must(err)
		for _, s := range suppliers {
			fmt.Printf("%s  %s  rating=%.1f (%d)  status=%s\n", s.ID, s.Name, s.Rating, s.RatingCount, s.Status)
		}

	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", cfg.IntakeProvider, "imap|gmail")
		label := fs.String("label", cfg.IntakeLabel, "mailbox/label")
		max := fs.Int("max", cfg.IntakeFetchMax, "max messages")
		_ = fs.Parse(os.Args[2:])

		connector, err := intake.MakeConnector(cfg, *provider)
		must(err)
		svc := intake.NewService(db, cfg.DocsDir, connector)
		result, err := svc.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d documents=%d\n", *provider, result.Fetched, result.Documents)

	default:
		usage()
		os.Exit(1)
	}
}

func newAnalysisService(cfg config.Config) (*pipeline.AnalysisService, error) {
	client, err := extraction.NewClient(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	results, err := cache.New(cfg.CacheCapacity)
	if err != nil {
		return nil, err
	}
	return pipeline.NewAnalysisService(client, results), nil
}

func loadAttachments(paths string) ([]internal.Attachment, error) {
	if strings.TrimSpace(paths) == "" {
		return nil, nil
	}
	out := []internal.Attachment{}
	for _, path := range strings.Split(paths, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, internal.Attachment{
			Name:      filepath.Base(path),
			MediaType: mediaTypeForPath(path),
			Content:   content,
		})
	}
	return out, nil
}

func mediaTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

func usage() {
	fmt.Println(`usage: smartprocure <command> [flags]

commands:
  serve            start the HTTP API
  analyze          run one comparison from local documents
  history:list     list stored analyses
  history:close    close an analysis with an evaluation
  export:xlsx      export a stored analysis to xlsx
  suppliers:list   list known suppliers
  mail:fetch       fetch quotation documents from the mailbox once`)
}

func must(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
