package intake

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kafuicharbeleklu/SmartProcure/internal"
	"github.com/kafuicharbeleklu/SmartProcure/internal/storage"
)

type fakeConnector struct {
	messages []internal.FetchedMail
}

func (f *fakeConnector) FetchInbox(label string, max int) ([]internal.FetchedMail, error) {
	return f.messages, nil
}

func rawMessage(t *testing.T, body string, attachmentName string, attachmentType string, attachment []byte) []byte {
	t.Helper()
	var b strings.Builder
	b.WriteString("From: supplier@acme.test\r\n")
	b.WriteString("Subject: Devis laptops\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: multipart/mixed; boundary=XYZ\r\n\r\n")
	b.WriteString("--XYZ\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(body + "\r\n")
	if attachmentName != "" {
		b.WriteString("--XYZ\r\n")
		b.WriteString("Content-Type: " + attachmentType + "\r\n")
		b.WriteString("Content-Disposition: attachment; filename=\"" + attachmentName + "\"\r\n")
		b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
		b.WriteString(base64.StdEncoding.EncodeToString(attachment) + "\r\n")
	}
	b.WriteString("--XYZ--\r\n")
	return []byte(b.String())
}

func newTestService(t *testing.T) (*Service, *storage.DB, string, *fakeConnector) {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	connector := &fakeConnector{}
	docsDir := filepath.Join(dir, "docs")
	return NewService(db, docsDir, connector), db, docsDir, connector
}

func TestFetchAndStoreAttachment(t *testing.T) {
	svc, db, docsDir, connector := newTestService(t)
	connector.messages = []internal.FetchedMail{{
		Provider:   "imap",
		MessageID:  "m1",
		ReceivedAt: "2026-03-15T10:00:00Z",
		Raw:        rawMessage(t, "Voir devis ci-joint.", "devis.pdf", "application/pdf", []byte("%PDF-1.4 fake")),
	}}

	result, err := svc.FetchAndStore("INBOX", 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if result.Fetched != 1 || result.Documents != 1 {
		t.Fatalf("got %+v want 1 fetched, 1 document", result)
	}

	docs, err := db.ListDocumentsByStatus(internal.DocumentNew, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents", len(docs))
	}
	doc := docs[0]
	if doc.Filename != "devis.pdf" || doc.MediaType != "application/pdf" || doc.Sender == "" {
		t.Fatalf("got %+v", doc)
	}
	content, err := os.ReadFile(doc.Path)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(content) != "%PDF-1.4 fake" {
		t.Fatalf("stored content mismatch")
	}
	if filepath.Dir(doc.Path) != docsDir {
		t.Fatalf("document stored outside docs dir: %s", doc.Path)
	}

	// the same message again is a no-op
	result, err = svc.FetchAndStore("INBOX", 10)
	if err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if result.Documents != 0 {
		t.Fatalf("duplicate stored %d documents, want 0", result.Documents)
	}
}

func TestFetchAndStoreBodyFallback(t *testing.T) {
	svc, db, _, connector := newTestService(t)
	connector.messages = []internal.FetchedMail{{
		Provider:  "imap",
		MessageID: "m2",
		Raw:       rawMessage(t, "Acme Corp vous propose 10 laptops a 118000 XOF TTC.", "", "", nil),
	}}

	result, err := svc.FetchAndStore("INBOX", 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if result.Documents != 1 {
		t.Fatalf("got %d documents want 1 (body fallback)", result.Documents)
	}
	docs, _ := db.ListDocumentsByStatus(internal.DocumentNew, 10)
	if len(docs) != 1 || docs[0].MediaType != "text/plain" || docs[0].Filename != "body.txt" {
		t.Fatalf("got %+v", docs)
	}
}

func TestDocumentMediaType(t *testing.T) {
	cases := []struct {
		name        string
		filename    string
		contentType string
		want        string
	}{
		{name: "pdf by type", filename: "x.bin", contentType: "application/pdf", want: "application/pdf"},
		{name: "image by type", filename: "x", contentType: "image/jpeg", want: "image/jpeg"},
		{name: "pdf by extension", filename: "devis.PDF", contentType: "application/octet-stream", want: "application/pdf"},
		{name: "png by extension", filename: "scan.png", contentType: "", want: "image/png"},
		{name: "rejected", filename: "virus.exe", contentType: "application/octet-stream", want: ""},
		{name: "office doc rejected", filename: "devis.docx", contentType: "application/vnd.ms-word", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := documentMediaType(tc.filename, tc.contentType); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}
