package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct{ err error }

func (m *mockPinger) PingContext(_ context.Context) error { return m.err }

type mockChecker struct{ err error }

func (m *mockChecker) HealthCheck(_ context.Context) error { return m.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockChecker{}, &mockChecker{})

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("Status = %q, want %q", report.Status, Healthy)
	}
	for _, name := range []string{"catalog", "embedding", "generation"} {
		if report.Checks[name] != CheckOK {
			t.Errorf("Checks[%q] = %q, want %q", name, report.Checks[name], CheckOK)
		}
	}
}

func TestCheck_SingleFailureDegrades(t *testing.T) {
	svc := New(&mockPinger{}, &mockChecker{err: errors.New("provider down")}, &mockChecker{})

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("Status = %q, want %q", report.Status, Degraded)
	}
	if report.Checks["embedding"] != CheckError {
		t.Errorf("Checks[embedding] = %q, want %q", report.Checks["embedding"], CheckError)
	}
	if report.Checks["catalog"] != CheckOK || report.Checks["generation"] != CheckOK {
		t.Error("healthy components must still report ok")
	}
}

func TestCheck_NilProvidersSkipped(t *testing.T) {
	svc := New(&mockPinger{}, nil, nil)

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("Status = %q, want %q", report.Status, Healthy)
	}
	if len(report.Checks) != 1 {
		t.Errorf("len(Checks) = %d, want 1 (catalog only)", len(report.Checks))
	}
}

func TestCheck_CatalogDown(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("database locked")}, nil, nil)

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("Status = %q, want %q", report.Status, Degraded)
	}
	if report.Checks["catalog"] != CheckError {
		t.Errorf("Checks[catalog] = %q, want %q", report.Checks["catalog"], CheckError)
	}
}
