package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"marketplace-portal/backend/internal/session/domain"
	"marketplace-portal/backend/internal/session/repository"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestService(t *testing.T) (*Service, *repository.MemoryRepository, *clock) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	svc := NewService(repo, time.Hour, time.Minute, zerolog.Nop())
	c := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc.SetClock(c.Now)
	return svc, repo, c
}

var params = CreateParams{ProfileID: "prof-1", DeviceFingerprint: "fp-1", IPAddress: "10.0.0.1", UserAgent: "test"}

func TestCreateSession(t *testing.T) {
	svc, _, c := newTestService(t)
	ctx := context.Background()

	sess, token, err := svc.CreateSession(ctx, params)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if token == "" || token != sess.SessionToken || len(token) != 64 {
		t.Fatalf("token = %q, want 64 hex chars equal to session token", token)
	}
	if !sess.IsActive {
		t.Error("new session should be active")
	}
	if want := c.Now().Add(time.Hour); !sess.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", sess.ExpiresAt, want)
	}
	if _, _, err := svc.CreateSession(ctx, params); !errors.Is(err, repository.ErrActiveSessionExists) {
		t.Errorf("second CreateSession err = %v, want ErrActiveSessionExists", err)
	}
}

func TestCreateSession_RequiresProfile(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, _, err := svc.CreateSession(context.Background(), CreateParams{}); err == nil {
		t.Fatal("CreateSession without profile should fail")
	}
}

func TestReplaceSessions_SingleActive(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	a, tokenA, _, err := svc.ReplaceSessions(ctx, params, domain.ReasonNewLogin)
	if err != nil {
		t.Fatalf("ReplaceSessions A: %v", err)
	}
	b, tokenB, n, err := svc.ReplaceSessions(ctx, params, domain.ReasonNewLogin)
	if err != nil {
		t.Fatalf("ReplaceSessions B: %v", err)
	}
	if n != 1 {
		t.Errorf("invalidated = %d, want 1", n)
	}
	if tokenA == tokenB {
		t.Fatal("tokens must differ")
	}

	all := repo.All("prof-1")
	if len(all) != 2 {
		t.Fatalf("sessions = %d, want 2", len(all))
	}
	for _, s := range all {
		switch s.ID {
		case a.ID:
			if s.IsActive || s.InvalidationReason != domain.ReasonNewLogin || s.InvalidatedAt == nil {
				t.Errorf("session A = %+v, want inactive NEW_LOGIN", s)
			}
		case b.ID:
			if !s.IsActive {
				t.Error("session B should be active")
			}
		}
	}
}

func TestReplaceSessions_ConcurrentLoginsLeaveOneActive(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, _, err := svc.ReplaceSessions(ctx, params, domain.ReasonNewLogin); err != nil {
				t.Errorf("ReplaceSessions: %v", err)
			}
		}()
	}
	wg.Wait()

	active, _ := repo.ListActiveByProfile(ctx, "prof-1")
	if len(active) != 1 {
		t.Fatalf("active sessions = %d, want 1", len(active))
	}
	if len(repo.All("prof-1")) != 20 {
		t.Errorf("rows = %d, want 20 (never deleted)", len(repo.All("prof-1")))
	}
}

func TestInvalidateSession_Idempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, token, _ := svc.CreateSession(ctx, params)

	first, changed, err := svc.InvalidateSession(ctx, token, domain.ReasonLogout)
	if err != nil {
		t.Fatalf("InvalidateSession: %v", err)
	}
	if !changed || first == nil || first.IsActive || first.InvalidationReason != domain.ReasonLogout {
		t.Fatalf("first invalidate = %+v, changed = %v", first, changed)
	}
	second, changed, err := svc.InvalidateSession(ctx, token, domain.ReasonAdminReset)
	if err != nil {
		t.Fatalf("second InvalidateSession: %v", err)
	}
	if changed {
		t.Error("second invalidate should report no change")
	}
	if second == nil || second.InvalidationReason != domain.ReasonLogout {
		t.Errorf("second invalidate should keep original reason, got %+v", second)
	}
	unknown, changed, err := svc.InvalidateSession(ctx, "no-such-token", domain.ReasonLogout)
	if err != nil || unknown != nil || changed {
		t.Errorf("unknown token = %v, %v, %v; want nil, false, nil", unknown, changed, err)
	}
}

func TestInvalidateAllSessions(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	_, _, _ = svc.CreateSession(ctx, params)

	n, err := svc.InvalidateAllSessions(ctx, "prof-1", domain.ReasonDeviceReset)
	if err != nil || n != 1 {
		t.Fatalf("InvalidateAllSessions = %d, %v; want 1, nil", n, err)
	}
	if active, _ := repo.ListActiveByProfile(ctx, "prof-1"); len(active) != 0 {
		t.Errorf("active = %d, want 0", len(active))
	}
	if n, _ := svc.InvalidateAllSessions(ctx, "prof-1", domain.ReasonDeviceReset); n != 0 {
		t.Errorf("second call changed %d rows, want 0", n)
	}
}

func TestValidateSession_TouchThrottled(t *testing.T) {
	svc, repo, c := newTestService(t)
	ctx := context.Background()
	created, token, _ := svc.CreateSession(ctx, params)

	c.Advance(30 * time.Second)
	if s, err := svc.ValidateSession(ctx, token); err != nil || s == nil {
		t.Fatalf("ValidateSession = %v, %v", s, err)
	}
	stored, _ := repo.GetByToken(ctx, token)
	if !stored.LastActivityAt.Equal(created.LastActivityAt) {
		t.Errorf("last activity written within touch interval: %v", stored.LastActivityAt)
	}

	c.Advance(time.Minute)
	if _, err := svc.ValidateSession(ctx, token); err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	stored, _ = repo.GetByToken(ctx, token)
	if !stored.LastActivityAt.Equal(c.Now()) {
		t.Errorf("LastActivityAt = %v, want %v", stored.LastActivityAt, c.Now())
	}
}

func TestValidateSession_ExpirySelfHealsOnce(t *testing.T) {
	svc, repo, c := newTestService(t)
	ctx := context.Background()
	_, token, _ := svc.CreateSession(ctx, params)

	c.Advance(2 * time.Hour)
	expiredAt := c.Now()
	s, err := svc.ValidateSession(ctx, token)
	if err != nil || s != nil {
		t.Fatalf("ValidateSession on expired = %v, %v; want nil, nil", s, err)
	}
	stored, _ := repo.GetByToken(ctx, token)
	if stored.IsActive || stored.InvalidationReason != domain.ReasonExpired {
		t.Fatalf("stored = %+v, want inactive EXPIRED", stored)
	}

	c.Advance(time.Hour)
	if s, _ := svc.ValidateSession(ctx, token); s != nil {
		t.Error("repeat validate should still fail")
	}
	stored, _ = repo.GetByToken(ctx, token)
	if !stored.InvalidatedAt.Equal(expiredAt) {
		t.Errorf("InvalidatedAt moved to %v; expiry must be recorded once at %v", stored.InvalidatedAt, expiredAt)
	}
}

func TestValidateSession_InactiveOrUnknown(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, token, _ := svc.CreateSession(ctx, params)
	_, _, _ = svc.InvalidateSession(ctx, token, domain.ReasonLogout)

	for _, tok := range []string{token, "", "unknown"} {
		if s, err := svc.ValidateSession(ctx, tok); err != nil || s != nil {
			t.Errorf("ValidateSession(%q) = %v, %v; want nil, nil", tok, s, err)
		}
	}
}

func TestUpdateSessionToken(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	sess, oldToken, _ := svc.CreateSession(ctx, params)

	newToken, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if err := svc.UpdateSessionToken(ctx, "prof-1", oldToken, newToken, "hint"); err != nil {
		t.Fatalf("UpdateSessionToken: %v", err)
	}
	rotated, _ := repo.GetByToken(ctx, newToken)
	if rotated == nil || rotated.ID != sess.ID || rotated.RefreshTokenHint != "hint" {
		t.Fatalf("rotation should update the same row in place, got %+v", rotated)
	}
	if old, _ := svc.ValidateSession(ctx, oldToken); old != nil {
		t.Error("old token should no longer validate")
	}
	if len(repo.All("prof-1")) != 1 {
		t.Error("rotation must not create a second row")
	}

	again, _ := NewSessionToken()
	if err := svc.UpdateSessionToken(ctx, "prof-1", oldToken, again, ""); !errors.Is(err, ErrSessionNotActive) {
		t.Errorf("rotating a stale token err = %v, want ErrSessionNotActive", err)
	}
	if err := svc.UpdateSessionToken(ctx, "other-profile", newToken, again, ""); !errors.Is(err, ErrSessionNotActive) {
		t.Errorf("rotating another profile's session err = %v, want ErrSessionNotActive", err)
	}
}

func TestUpdateSessionToken_NeverRevivesRevoked(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, token, _ := svc.CreateSession(ctx, params)
	_, _, _ = svc.InvalidateSession(ctx, token, domain.ReasonLogout)

	next, _ := NewSessionToken()
	if err := svc.UpdateSessionToken(ctx, "prof-1", token, next, ""); !errors.Is(err, ErrSessionNotActive) {
		t.Fatalf("err = %v, want ErrSessionNotActive", err)
	}
	if s, _ := svc.ValidateSession(ctx, next); s != nil {
		t.Error("no session may be valid under the new token")
	}
}
