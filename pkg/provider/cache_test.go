package provider

import "testing"

func TestCacheFor_ReusesClientForSameCredential(t *testing.T) {
	cache := NewCache("https://api.v0.dev/v1", 0)

	first := cache.For("key-a")
	second := cache.For("key-a")

	if first != second {
		t.Error("expected the same client for an unchanged credential")
	}
}

func TestCacheFor_RebuildsOnCredentialChange(t *testing.T) {
	cache := NewCache("https://api.v0.dev/v1", 0)

	first := cache.For("key-a")
	second := cache.For("key-b")

	if first == second {
		t.Error("expected a fresh client after the credential changed")
	}
	if second.apiKey != "key-b" {
		t.Errorf("expected new client bound to key-b, got %q", second.apiKey)
	}
}

func TestCacheInvalidate(t *testing.T) {
	cache := NewCache("https://api.v0.dev/v1", 0)

	first := cache.For("key-a")
	cache.Invalidate()
	second := cache.For("key-a")

	if first == second {
		t.Error("expected a fresh client after invalidation")
	}
}

func TestCacheInvalidate_Empty(t *testing.T) {
	cache := NewCache("https://api.v0.dev/v1", 0)
	// Invalidating an empty cache is a no-op.
	cache.Invalidate()
}
