package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kafuicharbeleklu/SmartProcure/internal"
)

// cacheKeyPayload is the canonical serialization the content key is derived
// from. Field order is fixed by the struct, so identical requests always
// produce identical bytes.
type cacheKeyPayload struct {
	Title    string                 `json:"title"`
	Needs    string                 `json:"needs"`
	Specs    string                 `json:"specs"`
	Req      string                 `json:"req"`
	Off      string                 `json:"off"`
	Rates    internal.ExchangeRates `json:"rates"`
	Currency string                 `json:"curr"`
	Language string                 `json:"lang"`
	Priority string                 `json:"priority"`
}

// CacheKey derives the content-addressed identity of a comparison request.
// Per-file digest lists are sorted before hashing so upload order does not
// affect the key. An unreadable attachment fails here, before any external
// call is made.
func CacheKey(req internal.AnalysisRequest) (string, error) {
	reqHashes, err := hashAttachments(req.RequirementFiles)
	if err != nil {
		return "", err
	}
	offHashes, err := hashAttachments(req.OfferFiles)
	if err != nil {
		return "", err
	}
	sort.Strings(reqHashes)
	sort.Strings(offHashes)

	priority := req.Priority
	if priority == "" {
		priority = internal.PriorityPrice
	}

	payload, err := json.Marshal(cacheKeyPayload{
		Title:    req.Title,
		Needs:    req.NeedsText,
		Specs:    req.ManualSpecsText,
		Req:      strings.Join(reqHashes, "|"),
		Off:      strings.Join(offHashes, "|"),
		Rates:    req.ExchangeRates,
		Currency: req.TargetCurrency,
		Language: string(req.Language),
		Priority: string(priority),
	})
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// hashAttachments digests every file concurrently; per-file hashing shares
// no state, so a plain fan-out/fan-in is enough.
func hashAttachments(files []internal.Attachment) ([]string, error) {
	hashes := make([]string, len(files))
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func(i int, file internal.Attachment) {
			defer wg.Done()
			if len(file.Content) == 0 {
				errs[i] = fmt.Errorf("unreadable attachment: %s", file.Name)
				return
			}
			sum := sha256.Sum256(file.Content)
			hashes[i] = hex.EncodeToString(sum[:])
		}(i, file)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return hashes, nil
}
