package health

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type fakePinger struct{ err error }

func (f *fakePinger) PingContext(context.Context) error { return f.err }

type fakePolicy struct{ err error }

func (f *fakePolicy) HealthCheck(context.Context) error { return f.err }

func TestCheck(t *testing.T) {
	testCases := []struct {
		name    string
		checker Checker
		wantErr string
	}{
		{"no probes", Checker{}, ""},
		{"all healthy", Checker{DB: &fakePinger{}, Policy: &fakePolicy{}, Redis: &fakePinger{}}, ""},
		{"db down", Checker{DB: &fakePinger{err: errors.New("connection refused")}}, "database"},
		{"policy broken", Checker{DB: &fakePinger{}, Policy: &fakePolicy{err: errors.New("undefined decision")}}, "policy"},
		{"redis down", Checker{Redis: PingFunc(func(context.Context) error { return errors.New("i/o timeout") })}, "redis"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.checker.Check(context.Background())
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("Check = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.HasPrefix(err.Error(), tc.wantErr) {
				t.Errorf("Check = %v, want prefix %q", err, tc.wantErr)
			}
		})
	}
}

func TestUpdate_SetsServingStatus(t *testing.T) {
	hs := health.NewServer()
	c := &Checker{DB: &fakePinger{err: errors.New("down")}}

	c.Update(context.Background(), hs, zerolog.Nop())
	resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("status = %v, want NOT_SERVING", resp.GetStatus())
	}

	c.DB = &fakePinger{}
	c.Update(context.Background(), hs, zerolog.Nop())
	resp, _ = hs.Check(context.Background(), &healthpb.HealthCheckRequest{})
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("status = %v, want SERVING", resp.GetStatus())
	}
}
