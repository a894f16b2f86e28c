// Package cache memoizes finished comparison bodies keyed by the content
// hash of the request. Bounded, in-memory only; entries do not survive a
// process restart.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kafuicharbeleklu/SmartProcure/internal"
)

type ResultCache struct {
	entries *lru.Cache[string, internal.AnalysisBody]
}

func New(capacity int) (*ResultCache, error) {
	if capacity <= 0 {
		capacity = 24
	}
	entries, err := lru.New[string, internal.AnalysisBody](capacity)
	if err != nil {
		return nil, err
	}
	return &ResultCache{entries: entries}, nil
}

func (c *ResultCache) Get(key string) (internal.AnalysisBody, bool) {
	return c.entries.Get(key)
}

func (c *ResultCache) Put(key string, body internal.AnalysisBody) {
	c.entries.Add(key, body)
}

func (c *ResultCache) Len() int {
	return c.entries.Len()
}
