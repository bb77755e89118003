package matchcache

import "testing"

func TestSetGet(t *testing.T) {
	c := New(2)
	c.Set("a", true)
	if v, ok := c.Get("a"); !ok || !v {
		t.Errorf("Get(a) = %v, %v; want true, true", v, ok)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2)
	c.Set("a", true)
	c.Set("b", false)
	c.Get("a") // touch a, making b the LRU entry
	c.Set("c", true)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should still be cached")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should be cached")
	}
}

func TestZeroCapacityDisablesCaching(t *testing.T) {
	c := New(0)
	c.Set("a", true)
	if _, ok := c.Get("a"); ok {
		t.Error("zero-capacity cache must never hit")
	}
}
