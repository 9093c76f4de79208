package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"marketplace-portal/backend/internal/ratelimit/domain"
	"marketplace-portal/backend/internal/ratelimit/repository"
)

// tickingClock advances by one second on every call so consecutive attempts are strictly ordered.
type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newStoreService(t *testing.T, max int) (*Service, *repository.MemoryRepository, *tickingClock) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	clock := &tickingClock{t: time.Now().UTC()}
	counter := NewStoreCounter(repo, 15*time.Minute)
	counter.now = clock.Now
	svc := NewService(repo, counter, Config{MaxFailedAttempts: max, Window: 15 * time.Minute}, zerolog.Nop())
	svc.SetClock(clock.Now)
	return svc, repo, clock
}

func fail(email string, reason domain.FailureReason) AttemptParams {
	return AttemptParams{Email: email, FailureReason: reason, IPAddress: "10.0.0.1"}
}

func TestCheckLoginAttempts_LocksAtThreshold(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newStoreService(t, 5)

	for i := 0; i < 4; i++ {
		if err := svc.LogLoginAttempt(ctx, fail("carol@example.com", domain.FailureInvalidCredentials)); err != nil {
			t.Fatalf("LogLoginAttempt: %v", err)
		}
		if err := svc.CheckLoginAttempts(ctx, "carol@example.com"); err != nil {
			t.Fatalf("after %d failures CheckLoginAttempts = %v, want nil", i+1, err)
		}
	}
	if err := svc.LogLoginAttempt(ctx, fail("carol@example.com", domain.FailureInvalidCredentials)); err != nil {
		t.Fatalf("LogLoginAttempt: %v", err)
	}
	if err := svc.CheckLoginAttempts(ctx, "Carol@Example.com "); !errors.Is(err, ErrRateLimited) {
		t.Errorf("CheckLoginAttempts = %v, want ErrRateLimited", err)
	}
	if err := svc.CheckLoginAttempts(ctx, "dave@example.com"); err != nil {
		t.Errorf("other identifier CheckLoginAttempts = %v, want nil", err)
	}
}

func TestCheckLoginAttempts_RateLimitedRowsDoNotExtendLockout(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newStoreService(t, 2)

	_ = svc.LogLoginAttempt(ctx, fail("a@example.com", domain.FailureInvalidCredentials))
	for i := 0; i < 5; i++ {
		_ = svc.LogLoginAttempt(ctx, fail("a@example.com", domain.FailureRateLimited))
	}
	if err := svc.CheckLoginAttempts(ctx, "a@example.com"); err != nil {
		t.Errorf("CheckLoginAttempts = %v, want nil (RATE_LIMITED rows are not counted)", err)
	}
}

func TestCheckLoginAttempts_SuccessResets(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newStoreService(t, 3)

	for i := 0; i < 2; i++ {
		_ = svc.LogLoginAttempt(ctx, fail("b@example.com", domain.FailureInvalidCredentials))
	}
	_ = svc.LogLoginAttempt(ctx, AttemptParams{Email: "b@example.com", Success: true, FailureReason: domain.FailureDeviceMismatch})
	_ = svc.LogLoginAttempt(ctx, fail("b@example.com", domain.FailureInvalidCredentials))
	if err := svc.CheckLoginAttempts(ctx, "b@example.com"); err != nil {
		t.Errorf("CheckLoginAttempts = %v, want nil after success reset", err)
	}
}

func TestCheckLoginAttempts_WindowExpires(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository()
	now := time.Now().UTC()
	counter := NewStoreCounter(repo, 15*time.Minute)
	counter.now = func() time.Time { return now }
	svc := NewService(repo, counter, Config{MaxFailedAttempts: 1, Window: 15 * time.Minute}, zerolog.Nop())
	svc.SetClock(func() time.Time { return now.Add(-20 * time.Minute) })

	_ = svc.LogLoginAttempt(ctx, fail("old@example.com", domain.FailureInvalidCredentials))
	if err := svc.CheckLoginAttempts(ctx, "old@example.com"); err != nil {
		t.Errorf("CheckLoginAttempts = %v, want nil for failures outside the window", err)
	}
}

func TestLogLoginAttempt_RecordsRow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc, repo, _ := newStoreService(t, 5)
	cancel()

	err := svc.LogLoginAttempt(ctx, AttemptParams{
		ProfileID:         "p1",
		Email:             " Bob@Example.com",
		Success:           true,
		FailureReason:     domain.FailureInvalidCredentials,
		DeviceFingerprint: "fp",
		IPAddress:         "10.0.0.9",
		UserAgent:         "ua",
		IPMismatchWarning: true,
	})
	if err != nil {
		t.Fatalf("LogLoginAttempt on cancelled context: %v", err)
	}
	all := repo.All()
	if len(all) != 1 {
		t.Fatalf("attempts = %d, want 1", len(all))
	}
	a := all[0]
	if a.ID == "" {
		t.Error("attempt ID should be set")
	}
	if a.Email != "bob@example.com" {
		t.Errorf("Email = %q, want %q", a.Email, "bob@example.com")
	}
	if a.FailureReason != "" {
		t.Errorf("FailureReason = %q, want empty on success", a.FailureReason)
	}
	if !a.IPMismatchWarning || a.ProfileID != "p1" || a.DeviceFingerprint != "fp" {
		t.Errorf("attempt fields not copied: %+v", a)
	}

	recent, err := svc.RecentAttempts(context.Background(), "bob@example.com", 10)
	if err != nil || len(recent) != 1 {
		t.Errorf("RecentAttempts = %v, %v; want 1 row", recent, err)
	}
}

func newRedisService(t *testing.T, max int) (*Service, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	counter := NewRedisCounter(client, "customer", 15*time.Minute)
	svc := NewService(repository.NewMemoryRepository(), counter, Config{MaxFailedAttempts: max, Window: 15 * time.Minute}, zerolog.Nop())
	return svc, mr, client
}

func TestRedisCounter_LockoutAndTTL(t *testing.T) {
	ctx := context.Background()
	svc, mr, _ := newRedisService(t, 3)

	for i := 0; i < 3; i++ {
		if err := svc.LogLoginAttempt(ctx, fail("carol@example.com", domain.FailureInvalidCredentials)); err != nil {
			t.Fatalf("LogLoginAttempt: %v", err)
		}
	}
	if err := svc.CheckLoginAttempts(ctx, "carol@example.com"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("CheckLoginAttempts = %v, want ErrRateLimited", err)
	}
	key := "login:fail:customer:carol@example.com"
	if ttl := mr.TTL(key); ttl <= 0 || ttl > 15*time.Minute {
		t.Errorf("TTL(%s) = %v, want within window", key, ttl)
	}

	mr.FastForward(16 * time.Minute)
	if err := svc.CheckLoginAttempts(ctx, "carol@example.com"); err != nil {
		t.Errorf("after window CheckLoginAttempts = %v, want nil", err)
	}
}

func TestRedisCounter_FailureAlwaysLeavesTTL(t *testing.T) {
	ctx := context.Background()
	svc, mr, _ := newRedisService(t, 5)
	key := "login:fail:customer:dan@example.com"

	// A counter stranded without a TTL must not lock the identifier out forever.
	if err := mr.Set(key, "4"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := svc.LogLoginAttempt(ctx, fail("dan@example.com", domain.FailureInvalidCredentials)); err != nil {
		t.Fatalf("LogLoginAttempt: %v", err)
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > 15*time.Minute {
		t.Fatalf("TTL(%s) = %v, want within window", key, ttl)
	}

	// Later failures keep the window anchored at the first one.
	mr.FastForward(5 * time.Minute)
	if err := svc.LogLoginAttempt(ctx, fail("dan@example.com", domain.FailureInvalidCredentials)); err != nil {
		t.Fatalf("LogLoginAttempt: %v", err)
	}
	if ttl := mr.TTL(key); ttl > 10*time.Minute {
		t.Errorf("TTL after second failure = %v, want <= 10m", ttl)
	}

	mr.FastForward(11 * time.Minute)
	if err := svc.CheckLoginAttempts(ctx, "dan@example.com"); err != nil {
		t.Errorf("after window CheckLoginAttempts = %v, want nil", err)
	}
}

func TestRedisCounter_SuccessClearsAndRateLimitedIgnored(t *testing.T) {
	ctx := context.Background()
	svc, mr, _ := newRedisService(t, 2)

	_ = svc.LogLoginAttempt(ctx, fail("x@example.com", domain.FailureInvalidCredentials))
	_ = svc.LogLoginAttempt(ctx, fail("x@example.com", domain.FailureRateLimited))
	if err := svc.CheckLoginAttempts(ctx, "x@example.com"); err != nil {
		t.Errorf("CheckLoginAttempts = %v, want nil", err)
	}
	_ = svc.LogLoginAttempt(ctx, AttemptParams{Email: "x@example.com", Success: true})
	if mr.Exists("login:fail:customer:x@example.com") {
		t.Error("success should delete the failure counter")
	}
}

func TestRedisCounter_Unavailable(t *testing.T) {
	ctx := context.Background()
	svc, mr, _ := newRedisService(t, 2)
	mr.Close()

	if err := svc.CheckLoginAttempts(ctx, "y@example.com"); err == nil || errors.Is(err, ErrRateLimited) {
		t.Errorf("CheckLoginAttempts = %v, want counter error", err)
	}
	// The attempt row is still appended; counter errors are logged only.
	if err := svc.LogLoginAttempt(ctx, fail("y@example.com", domain.FailureInvalidCredentials)); err != nil {
		t.Errorf("LogLoginAttempt = %v, want nil", err)
	}
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	client, err := ConnectRedis(context.Background(), addr, 0)
	if err != nil {
		t.Fatalf("ConnectRedis: %v", err)
	}
	_ = client.Close()

	mr.Close()
	if _, err := ConnectRedis(context.Background(), addr, 0); err == nil {
		t.Error("ConnectRedis to closed server should fail")
	}
}
