package cache

import (
	"testing"
	"time"

	"wikiscope/pkg/sparql"
)

// fakeClock is a manually advanced clock for expiry tests.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func bindings(val string) []sparql.Binding {
	return []sparql.Binding{{"x": sparql.Value{Value: val}}}
}

func TestGetPut(t *testing.T) {
	clk := newFakeClock()
	c := New()
	c.Now = clk.Now

	const query = "SELECT ?x WHERE { ?x wdt:P575 ?d }"

	if _, ok := c.Get(query, time.Hour); ok {
		t.Fatal("Get on empty cache returned a hit")
	}

	c.Put(query, bindings("a"))

	got, ok := c.Get(query, time.Hour)
	if !ok {
		t.Fatal("Get after Put missed")
	}
	if got[0]["x"].Value != "a" {
		t.Errorf("got %q, want a", got[0]["x"].Value)
	}
}

func TestExpiry(t *testing.T) {
	clk := newFakeClock()
	c := New()
	c.Now = clk.Now

	c.Put("q", bindings("a"))

	clk.Advance(59 * time.Minute)
	if _, ok := c.Get("q", time.Hour); !ok {
		t.Error("entry expired before its TTL")
	}

	// Validity is strict: age == ttl is already expired.
	clk.Advance(time.Minute)
	if _, ok := c.Get("q", time.Hour); ok {
		t.Error("entry still live at exactly its TTL")
	}

	// The expired entry stays in place until the next Put.
	if c.Len() != 1 {
		t.Errorf("Len() = %d after expiry, want 1", c.Len())
	}

	c.Put("q", bindings("b"))
	got, ok := c.Get("q", time.Hour)
	if !ok || got[0]["x"].Value != "b" {
		t.Errorf("overwrite not visible: got %v, %v", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d after overwrite, want 1", c.Len())
	}
}

func TestPerLookupTTL(t *testing.T) {
	clk := newFakeClock()
	c := New()
	c.Now = clk.Now

	c.Put("q", bindings("a"))
	clk.Advance(10 * time.Minute)

	// The same entry is live or expired depending on the ttl the caller
	// brings to the lookup.
	if _, ok := c.Get("q", time.Hour); !ok {
		t.Error("miss with 1h ttl at age 10m")
	}
	if _, ok := c.Get("q", 5*time.Minute); ok {
		t.Error("hit with 5m ttl at age 10m")
	}
}

func TestZeroTTLAlwaysMisses(t *testing.T) {
	clk := newFakeClock()
	c := New()
	c.Now = clk.Now

	c.Put("q", bindings("a"))
	if _, ok := c.Get("q", 0); ok {
		t.Error("zero ttl returned a hit")
	}
}

func TestVerbatimKeys(t *testing.T) {
	clk := newFakeClock()
	c := New()
	c.Now = clk.Now

	// Whitespace variants are distinct keys.
	c.Put("SELECT ?x WHERE {}", bindings("a"))
	c.Put("SELECT  ?x WHERE {}", bindings("b"))

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	got, ok := c.Get("SELECT ?x WHERE {}", time.Hour)
	if !ok || got[0]["x"].Value != "a" {
		t.Errorf("first variant: got %v, %v", got, ok)
	}
	got, ok = c.Get("SELECT  ?x WHERE {}", time.Hour)
	if !ok || got[0]["x"].Value != "b" {
		t.Errorf("second variant: got %v, %v", got, ok)
	}
}

func TestClear(t *testing.T) {
	c := New()
	c.Put("a", nil)
	c.Put("b", nil)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", c.Len())
	}
}
