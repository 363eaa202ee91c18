package auth

import (
	"context"
	"net/http"
	"testing"
	"time"
)

// mockAuthn is a test authenticator with configurable behavior.
type mockAuthn struct {
	result Result
}

func (m *mockAuthn) Authenticate(_ context.Context, _ *http.Request) Result {
	return m.result
}

func TestChain_FirstYesStops(t *testing.T) {
	chain := &Chain{
		Authenticators: []Authenticator{
			&mockAuthn{result: Result{Decision: Yes, Identity: &Identity{Subject: "alice"}}},
			&mockAuthn{result: Result{Decision: No, Err: ErrUnauthenticated}},
		},
		DefaultDecision: No,
	}

	r, _ := http.NewRequest("GET", "/", nil)
	result := chain.Authenticate(context.Background(), r)

	if result.Decision != Yes {
		t.Errorf("Decision = %d, want Yes", result.Decision)
	}
	if result.Identity.Subject != "alice" {
		t.Errorf("Subject = %q, want %q", result.Identity.Subject, "alice")
	}
}

func TestChain_FirstNoStops(t *testing.T) {
	chain := &Chain{
		Authenticators: []Authenticator{
			&mockAuthn{result: Result{Decision: No, Err: ErrUnauthenticated}},
			&mockAuthn{result: Result{Decision: Yes, Identity: &Identity{Subject: "bob"}}},
		},
		DefaultDecision: No,
	}

	r, _ := http.NewRequest("GET", "/", nil)
	result := chain.Authenticate(context.Background(), r)

	if result.Decision != No {
		t.Errorf("Decision = %d, want No", result.Decision)
	}
}

func TestChain_AllAbstain_DefaultReject(t *testing.T) {
	chain := &Chain{
		Authenticators: []Authenticator{
			&mockAuthn{result: Result{Decision: Abstain}},
			&mockAuthn{result: Result{Decision: Abstain}},
		},
		DefaultDecision: No,
	}

	r, _ := http.NewRequest("GET", "/", nil)
	result := chain.Authenticate(context.Background(), r)

	if result.Decision != No {
		t.Errorf("Decision = %d, want No (default reject)", result.Decision)
	}
}

func TestChain_AllAbstain_DefaultAccept(t *testing.T) {
	chain := &Chain{
		Authenticators: []Authenticator{
			&mockAuthn{result: Result{Decision: Abstain}},
		},
		DefaultDecision: Yes,
	}

	r, _ := http.NewRequest("GET", "/", nil)
	result := chain.Authenticate(context.Background(), r)

	if result.Decision != Yes {
		t.Errorf("Decision = %d, want Yes (default accept)", result.Decision)
	}
	if result.Identity.Subject != "anonymous" {
		t.Errorf("Subject = %q, want %q", result.Identity.Subject, "anonymous")
	}
}

func TestChain_Empty_DefaultReject(t *testing.T) {
	chain := &Chain{DefaultDecision: No}

	r, _ := http.NewRequest("GET", "/", nil)
	result := chain.Authenticate(context.Background(), r)

	if result.Decision != No {
		t.Errorf("Decision = %d, want No (empty chain)", result.Decision)
	}
}

func TestChain_AbstainThenYes(t *testing.T) {
	chain := &Chain{
		Authenticators: []Authenticator{
			&mockAuthn{result: Result{Decision: Abstain}},
			&mockAuthn{result: Result{Decision: Yes, Identity: &Identity{Subject: "jwt-user"}}},
		},
		DefaultDecision: No,
	}

	r, _ := http.NewRequest("GET", "/", nil)
	result := chain.Authenticate(context.Background(), r)

	if result.Decision != Yes {
		t.Errorf("Decision = %d, want Yes", result.Decision)
	}
	if result.Identity.Subject != "jwt-user" {
		t.Errorf("Subject = %q, want %q", result.Identity.Subject, "jwt-user")
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()

	// No identity set.
	if IdentityFromContext(ctx) != nil {
		t.Error("expected nil identity from empty context")
	}

	// Set and retrieve.
	id := &Identity{Subject: "alice"}
	ctx = SetIdentity(ctx, id)
	got := IdentityFromContext(ctx)
	if got == nil || got.Subject != "alice" {
		t.Errorf("got %v, want alice", got)
	}
}

func TestInProcessLimiter_WithinLimit(t *testing.T) {
	limiter := NewInProcessLimiter(nil, 3)
	id := &Identity{Subject: "alice", ServiceTier: "default"}

	for i := 0; i < 3; i++ {
		if err := limiter.Allow(context.Background(), id); err != nil {
			t.Fatalf("request %d: unexpected error %v", i+1, err)
		}
	}
	if err := limiter.Allow(context.Background(), id); err != ErrTooManyRequests {
		t.Errorf("request 4: err = %v, want ErrTooManyRequests", err)
	}
}

func TestInProcessLimiter_TierOverride(t *testing.T) {
	limiter := NewInProcessLimiter(map[string]int{"premium": 5}, 1)

	premium := &Identity{Subject: "alice", ServiceTier: "premium"}
	for i := 0; i < 5; i++ {
		if err := limiter.Allow(context.Background(), premium); err != nil {
			t.Fatalf("premium request %d: unexpected error %v", i+1, err)
		}
	}
	if err := limiter.Allow(context.Background(), premium); err != ErrTooManyRequests {
		t.Errorf("premium request 6: err = %v, want ErrTooManyRequests", err)
	}

	// A different tier falls back to the default limit.
	basic := &Identity{Subject: "bob", ServiceTier: "basic"}
	if err := limiter.Allow(context.Background(), basic); err != nil {
		t.Fatalf("basic request 1: unexpected error %v", err)
	}
	if err := limiter.Allow(context.Background(), basic); err != ErrTooManyRequests {
		t.Errorf("basic request 2: err = %v, want ErrTooManyRequests", err)
	}
}

func TestInProcessLimiter_ZeroDisables(t *testing.T) {
	limiter := NewInProcessLimiter(map[string]int{"unlimited": 0}, 1)
	id := &Identity{Subject: "alice", ServiceTier: "unlimited"}

	for i := 0; i < 50; i++ {
		if err := limiter.Allow(context.Background(), id); err != nil {
			t.Fatalf("request %d: unexpected error %v", i+1, err)
		}
	}
}

func TestInProcessLimiter_SubjectsIsolated(t *testing.T) {
	limiter := NewInProcessLimiter(nil, 1)

	alice := &Identity{Subject: "alice"}
	bob := &Identity{Subject: "bob"}

	if err := limiter.Allow(context.Background(), alice); err != nil {
		t.Fatalf("alice: unexpected error %v", err)
	}
	if err := limiter.Allow(context.Background(), bob); err != nil {
		t.Fatalf("bob: unexpected error %v", err)
	}
	if err := limiter.Allow(context.Background(), alice); err != ErrTooManyRequests {
		t.Errorf("alice second request: err = %v, want ErrTooManyRequests", err)
	}
}

func TestInProcessLimiter_WindowResets(t *testing.T) {
	limiter := NewInProcessLimiter(nil, 1)
	id := &Identity{Subject: "alice"}

	if err := limiter.Allow(context.Background(), id); err != nil {
		t.Fatalf("first request: unexpected error %v", err)
	}
	if err := limiter.Allow(context.Background(), id); err != ErrTooManyRequests {
		t.Fatalf("second request: err = %v, want ErrTooManyRequests", err)
	}

	// Age the window past a minute and the counter resets.
	limiter.mu.Lock()
	limiter.counters["alice:default"].windowAt = time.Now().Add(-2 * time.Minute)
	limiter.mu.Unlock()

	if err := limiter.Allow(context.Background(), id); err != nil {
		t.Errorf("after window reset: unexpected error %v", err)
	}
}
