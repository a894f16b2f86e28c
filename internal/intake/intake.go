// Package intake collects supplier quotation documents from a mailbox so
// they can later feed a comparison. It stores attachments (and HTML bodies
// reduced to text) on disk and tracks them in the database; it does not
// interpret their content.
package intake

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"

	"github.com/kafuicharbeleklu/SmartProcure/internal"
	"github.com/kafuicharbeleklu/SmartProcure/internal/storage"
)

// MailConnector pulls raw messages from one mailbox provider.
type MailConnector interface {
	FetchInbox(label string, max int) ([]internal.FetchedMail, error)
}

type Service struct {
	db        *storage.DB
	docsDir   string
	connector MailConnector
}

type FetchResult struct {
	Fetched   int
	Documents int
}

func NewService(db *storage.DB, docsDir string, connector MailConnector) *Service {
	return &Service{db: db, docsDir: docsDir, connector: connector}
}

// FetchAndStore pulls up to max messages and files away every usable
// document they carry. Duplicate documents (same content hash) are skipped
// by the storage layer.
func (s *Service) FetchAndStore(label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(label, max)
	if err != nil {
		return FetchResult{}, err
	}

	result := FetchResult{Fetched: len(messages)}
	for _, msg := range messages {
		stored, err := s.storeMessage(msg)
		if err != nil {
			return result, err
		}
		result.Documents += stored
	}
	return result, nil
}

func (s *Service) storeMessage(msg internal.FetchedMail) (int, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(msg.Raw))
	if err != nil {
		return 0, fmt.Errorf("parse message %s: %w", msg.MessageID, err)
	}

	sender := env.GetHeader("From")
	subject := env.GetHeader("Subject")

	stored := 0
	for _, att := range env.Attachments {
		mediaType := documentMediaType(att.FileName, att.ContentType)
		if mediaType == "" {
			continue
		}
		ok, err := s.storeDocument(msg, sender, subject, att.FileName, mediaType, att.Content)
		if err != nil {
			return stored, err
		}
		if ok {
			stored++
		}
	}

	// A quotation pasted straight into the mail body is still a document.
	if stored == 0 {
		if text := bodyText(env); text != "" {
			ok, err := s.storeDocument(msg, sender, subject, "body.txt", "text/plain", []byte(text))
			if err != nil {
				return stored, err
			}
			if ok {
				stored++
			}
		}
	}

	return stored, nil
}

func (s *Service) storeDocument(msg internal.FetchedMail, sender, subject, filename, mediaType string, content []byte) (bool, error) {
	if len(content) == 0 {
		return false, nil
	}
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	if err := os.MkdirAll(s.docsDir, 0o755); err != nil {
		return false, err
	}
	path := filepath.Join(s.docsDir, hash+filepath.Ext(filename))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return false, err
		}
	}

	id, err := s.db.InsertDocument(internal.DocumentRow{
		Provider:   msg.Provider,
		MessageID:  msg.MessageID,
		Sender:     sender,
		Subject:    subject,
		ReceivedAt: msg.ReceivedAt,
		Filename:   filename,
		MediaType:  mediaType,
		Hash:       hash,
		Path:       path,
	})
	if err != nil {
		return false, err
	}
	return id != 0, nil
}

// documentMediaType maps an attachment to a media type the analysis
// pipeline accepts, or "" when the attachment is not a candidate document.
func documentMediaType(filename, contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "application/pdf" || strings.HasPrefix(ct, "image/") {
		return ct
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	}
	return ""
}

// bodyText prefers the plain part; HTML bodies are reduced to their text
// content.
func bodyText(env *enmime.Envelope) string {
	if text := strings.TrimSpace(env.Text); text != "" {
		return text
	}
	if env.HTML == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(env.HTML))
	if err != nil {
		return ""
	}
	doc.Find("script,style").Remove()
	return strings.TrimSpace(doc.Text())
}
