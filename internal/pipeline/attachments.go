package pipeline

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	pdf "github.com/ledongthuc/pdf"

	"github.com/kafuicharbeleklu/SmartProcure/internal"
	"github.com/kafuicharbeleklu/SmartProcure/internal/extraction"
)

// PrepareDocuments validates every attachment and converts it to the inline
// form the extraction call expects. Validation fans out per file; nothing is
// shared between conversions. A PDF that the reader cannot open is rejected
// here so a doomed request never reaches the external service.
func PrepareDocuments(files []internal.Attachment) ([]extraction.Document, error) {
	docs := make([]extraction.Document, len(files))
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func(i int, file internal.Attachment) {
			defer wg.Done()
			doc, err := prepareDocument(file)
			docs[i], errs[i] = doc, err
		}(i, file)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func prepareDocument(file internal.Attachment) (extraction.Document, error) {
	mediaType := strings.ToLower(strings.TrimSpace(file.MediaType))
	switch {
	case mediaType == "application/pdf":
		if err := validatePDF(file.Content); err != nil {
			return extraction.Document{}, fmt.Errorf("attachment %s: %w", file.Name, err)
		}
	case strings.HasPrefix(mediaType, "image/"):
		if len(file.Content) == 0 {
			return extraction.Document{}, fmt.Errorf("attachment %s: empty image", file.Name)
		}
	case mediaType == "text/plain":
		if len(bytes.TrimSpace(file.Content)) == 0 {
			return extraction.Document{}, fmt.Errorf("attachment %s: empty document", file.Name)
		}
	default:
		return extraction.Document{}, fmt.Errorf("attachment %s: unsupported media type %q", file.Name, file.MediaType)
	}
	return extraction.Document{Data: file.Content, MIMEType: mediaType}, nil
}

func validatePDF(content []byte) error {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return fmt.Errorf("unreadable pdf: %w", err)
	}
	if reader.NumPage() == 0 {
		return fmt.Errorf("pdf has no pages")
	}
	return nil
}
