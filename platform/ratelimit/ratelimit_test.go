package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestAdmitAllowsUpToLimitWithinWindow(t *testing.T) {
	limiter := NewWindowLimiter(3, time.Hour)
	now := time.Now()

	for i := 0; i < 3; i++ {
		if d := limiter.Admit("u1", now); !d.Allowed {
			t.Fatalf("admission %d unexpectedly rejected", i+1)
		}
	}

	d := limiter.Admit("u1", now.Add(time.Minute))
	if d.Allowed {
		t.Fatal("expected fourth admission to be rejected")
	}
	if d.RetryAfter <= 0 || d.RetryAfter > time.Hour {
		t.Fatalf("unexpected retry-after %v", d.RetryAfter)
	}
}

func TestAdmitResetsAfterWindowElapsed(t *testing.T) {
	limiter := NewWindowLimiter(1, time.Hour)
	start := time.Now()

	if d := limiter.Admit("u1", start); !d.Allowed {
		t.Fatal("first admission rejected")
	}
	if d := limiter.Admit("u1", start.Add(30*time.Minute)); d.Allowed {
		t.Fatal("expected rejection inside window")
	}
	if d := limiter.Admit("u1", start.Add(time.Hour+time.Second)); !d.Allowed {
		t.Fatal("expected fresh window after expiry")
	}
}

func TestAdmitTracksKeysIndependently(t *testing.T) {
	limiter := NewWindowLimiter(1, time.Hour)
	now := time.Now()

	if d := limiter.Admit("u1", now); !d.Allowed {
		t.Fatal("u1 first admission rejected")
	}
	if d := limiter.Admit("u2", now); !d.Allowed {
		t.Fatal("u2 should not share u1's counter")
	}
	if d := limiter.Admit("u1", now); d.Allowed {
		t.Fatal("u1 second admission should be rejected")
	}
}

func TestAdmitRetryAfterShrinksOverTime(t *testing.T) {
	limiter := NewWindowLimiter(1, time.Hour)
	start := time.Now()

	limiter.Admit("u1", start)

	early := limiter.Admit("u1", start.Add(10*time.Minute))
	late := limiter.Admit("u1", start.Add(50*time.Minute))
	if early.Allowed || late.Allowed {
		t.Fatal("expected both attempts rejected")
	}
	if late.RetryAfter >= early.RetryAfter {
		t.Fatalf("retry-after should shrink: early=%v late=%v", early.RetryAfter, late.RetryAfter)
	}
}

func TestAdmitConcurrentCallersNeverExceedLimit(t *testing.T) {
	const limit = 50
	limiter := NewWindowLimiter(limit, time.Hour)
	now := time.Now()

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Admit("shared", now).Allowed {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != limit {
		t.Fatalf("expected exactly %d admissions, got %d", limit, admitted)
	}
}
