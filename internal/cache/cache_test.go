package cache

import (
	"fmt"
	"testing"

	"github.com/kafuicharbeleklu/SmartProcure/internal"
)

func TestResultCacheRoundTrip(t *testing.T) {
	c, err := New(4)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	body := internal.AnalysisBody{Title: "Laptops", BestOption: "Acme"}
	c.Put("k1", body)

	got, ok := c.Get("k1")
	if !ok {
		t.Fatalf("expected hit")
	}
	if got.Title != "Laptops" || got.BestOption != "Acme" {
		t.Fatalf("got %+v", got)
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatalf("unexpected hit")
	}
}

func TestResultCacheBounded(t *testing.T) {
	c, err := New(3)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	for i := 0; i < 10; i++ {
		c.Put(fmt.Sprintf("k%d", i), internal.AnalysisBody{Title: fmt.Sprintf("t%d", i)})
	}
	if c.Len() != 3 {
		t.Fatalf("len %d want 3", c.Len())
	}
	if _, ok := c.Get("k0"); ok {
		t.Fatalf("oldest entry should have been evicted")
	}
	if _, ok := c.Get("k9"); !ok {
		t.Fatalf("newest entry should survive")
	}
}

func TestResultCacheDefaultCapacity(t *testing.T) {
	c, err := New(0)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for i := 0; i < 30; i++ {
		c.Put(fmt.Sprintf("k%d", i), internal.AnalysisBody{})
	}
	if c.Len() != 24 {
		t.Fatalf("len %d want 24", c.Len())
	}
}
