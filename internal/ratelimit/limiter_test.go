package ratelimit

import (
	"errors"
	"testing"
	"time"
)

func newTestLimiter(start time.Time) (*Limiter, *time.Time) {
	cur := start
	l := NewLimiter()
	l.now = func() time.Time { return cur }
	return l, &cur
}

func TestLimiter_Check_UnderLimit(t *testing.T) {
	l, _ := newTestLimiter(time.Now())
	for i := 0; i < 5; i++ {
		if err := l.Check("1.2.3.4", EndpointLogin, 5, time.Minute); err != nil {
			t.Fatalf("request %d should be admitted, got %v", i+1, err)
		}
	}
}

func TestLimiter_Check_ExceedsLimit(t *testing.T) {
	l, _ := newTestLimiter(time.Now())
	for i := 0; i < 5; i++ {
		if err := l.Check("1.2.3.4", EndpointLogin, 5, time.Minute); err != nil {
			t.Fatalf("request %d should be admitted, got %v", i+1, err)
		}
	}

	err := l.Check("1.2.3.4", EndpointLogin, 5, time.Minute)
	if err == nil {
		t.Fatal("6th request should be rejected")
	}
	var limitErr *LimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected *LimitError, got %T", err)
	}
	if limitErr.RetryAfter < 1 || limitErr.RetryAfter > 60 {
		t.Errorf("retry-after should be within the window, got %d", limitErr.RetryAfter)
	}
}

func TestLimiter_Check_RetryAfterMinimumOne(t *testing.T) {
	start := time.Now()
	l, cur := newTestLimiter(start)

	if err := l.Check("k", EndpointAPI, 1, time.Minute); err != nil {
		t.Fatalf("first request should be admitted, got %v", err)
	}

	// 59.9s into the window less than a second remains.
	*cur = start.Add(59*time.Second + 900*time.Millisecond)
	err := l.Check("k", EndpointAPI, 1, time.Minute)
	var limitErr *LimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected *LimitError, got %v", err)
	}
	if limitErr.RetryAfter != 1 {
		t.Errorf("retry-after should round up to 1, got %d", limitErr.RetryAfter)
	}
}

func TestLimiter_Check_WindowReset(t *testing.T) {
	start := time.Now()
	l, cur := newTestLimiter(start)

	for i := 0; i < 3; i++ {
		if err := l.Check("k", EndpointLogin, 3, time.Minute); err != nil {
			t.Fatalf("request %d should be admitted, got %v", i+1, err)
		}
	}
	if err := l.Check("k", EndpointLogin, 3, time.Minute); err == nil {
		t.Fatal("full window should reject")
	}

	*cur = start.Add(61 * time.Second)
	if err := l.Check("k", EndpointLogin, 3, time.Minute); err != nil {
		t.Fatalf("elapsed window should reset the counter, got %v", err)
	}
}

func TestLimiter_Check_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(time.Now())

	for i := 0; i < 5; i++ {
		if err := l.Check("1.2.3.4", EndpointLogin, 5, time.Minute); err != nil {
			t.Fatalf("request %d should be admitted, got %v", i+1, err)
		}
	}
	if err := l.Check("1.2.3.4", EndpointLogin, 5, time.Minute); err == nil {
		t.Fatal("saturated key should reject")
	}

	// Different identity, same endpoint.
	if err := l.Check("5.6.7.8", EndpointLogin, 5, time.Minute); err != nil {
		t.Errorf("other identity should have its own window, got %v", err)
	}
	// Same identity, different endpoint.
	if err := l.Check("1.2.3.4", EndpointRefresh, 10, time.Minute); err != nil {
		t.Errorf("other endpoint should have its own window, got %v", err)
	}
}

func TestLimiter_Check_StaleWindowsSwept(t *testing.T) {
	start := time.Now()
	l, cur := newTestLimiter(start)

	if err := l.Check("old", EndpointAPI, 100, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	*cur = start.Add(staleAfter + time.Second)
	if err := l.Check("fresh", EndpointAPI, 100, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.mu.Lock()
	_, exists := l.windows["old:"+EndpointAPI]
	l.mu.Unlock()
	if exists {
		t.Error("stale window should have been swept")
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Login.MaxRequests != 5 || cfg.Login.WindowSeconds != 60 {
		t.Errorf("unexpected login rule: %+v", cfg.Login)
	}
	if cfg.Refresh.MaxRequests != 10 {
		t.Errorf("unexpected refresh rule: %+v", cfg.Refresh)
	}
	if cfg.ClientAuth.MaxRequests != 20 {
		t.Errorf("unexpected client_auth rule: %+v", cfg.ClientAuth)
	}
	if cfg.API.MaxRequests != 100 {
		t.Errorf("unexpected api rule: %+v", cfg.API)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestConfig_Validate_RejectsZeroWindow(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	cfg.API.WindowSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero window should fail validation")
	}
}
