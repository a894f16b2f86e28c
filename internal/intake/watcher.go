package intake

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kafuicharbeleklu/SmartProcure/internal/config"
	"github.com/kafuicharbeleklu/SmartProcure/internal/intake/gmail"
	imapconnector "github.com/kafuicharbeleklu/SmartProcure/internal/intake/imap"
	"github.com/kafuicharbeleklu/SmartProcure/internal/storage"
)

// Watcher polls the configured mailbox and files away incoming quotation
// documents until the context is cancelled.
type Watcher struct {
	db  *storage.DB
	cfg config.Config
}

func NewWatcher(db *storage.DB, cfg config.Config) *Watcher {
	return &Watcher{db: db, cfg: cfg}
}

func (w *Watcher) Run(ctx context.Context) error {
	for {
		if err := w.runCycle(); err != nil {
			log.Printf("intake cycle error: %v", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(w.cfg.IntakeIntervalSec) * time.Second):
		}
	}
}

func (w *Watcher) runCycle() error {
	connector, err := MakeConnector(w.cfg, w.cfg.IntakeProvider)
	if err != nil {
		return err
	}

	svc := NewService(w.db, w.cfg.DocsDir, connector)
	result, err := svc.FetchAndStore(w.cfg.IntakeLabel, w.cfg.IntakeFetchMax)
	if err != nil {
		return err
	}
	if result.Fetched > 0 {
		log.Printf("intake: fetched=%d documents=%d", result.Fetched, result.Documents)
	}
	return nil
}

func MakeConnector(cfg config.Config, provider string) (MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "imap":
		return imapconnector.NewConnector(cfg)
	case "gmail":
		return gmail.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported intake provider: %s", provider)
	}
}
