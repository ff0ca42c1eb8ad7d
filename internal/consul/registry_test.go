package consul

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"bookmarks/internal/config"

	consulapi "github.com/hashicorp/consul/api"
)

type fakeAgent struct {
	registered    *consulapi.AgentServiceRegistration
	deregistered  string
	err           error
	deregisterErr error
}

func (f *fakeAgent) ServiceRegister(service *consulapi.AgentServiceRegistration) error {
	f.registered = service
	return f.err
}

func (f *fakeAgent) ServiceDeregister(serviceID string) error {
	f.deregistered = serviceID
	if f.deregisterErr != nil {
		return f.deregisterErr
	}
	return f.err
}

func testConfig() *config.Config {
	return &config.Config{
		Env:         "development",
		ServiceName: "auth-api",
		Server:      config.ServerConfig{Host: "api.local", Port: 3333},
	}
}

func TestNewRegistration(t *testing.T) {
	reg := NewRegistration(testConfig())

	if reg.ID != "auth-api-api.local-3333" {
		t.Errorf("Unexpected id %q", reg.ID)
	}
	if reg.HealthURL != "http://api.local:3333/health" {
		t.Errorf("Unexpected health url %q", reg.HealthURL)
	}
	if reg.Name != "auth-api" || reg.Port != 3333 {
		t.Errorf("Unexpected registration %+v", reg)
	}
}

func TestRegister(t *testing.T) {
	fa := &fakeAgent{}
	c := &Client{agent: fa}

	if err := c.Register(NewRegistration(testConfig())); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	got := fa.registered
	if got == nil {
		t.Fatal("Expected service registration")
	}
	if got.Check == nil || got.Check.HTTP != "http://api.local:3333/health" {
		t.Fatalf("Expected HTTP health check, got %+v", got.Check)
	}
	if got.Check.Interval != "10s" || got.Check.Timeout != "3s" {
		t.Errorf("Unexpected check timings: %s / %s", got.Check.Interval, got.Check.Timeout)
	}
	if got.Check.DeregisterCriticalServiceAfter != "1m0s" {
		t.Errorf("Unexpected deregister-after %q", got.Check.DeregisterCriticalServiceAfter)
	}
}

func TestRegister_WithoutHealthCheck(t *testing.T) {
	fa := &fakeAgent{}
	c := &Client{agent: fa}

	if err := c.Register(Registration{ID: "x", Name: "x"}); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if fa.registered.Check != nil {
		t.Error("Expected no health check")
	}
}

func TestRegisterAndDeregister_Errors(t *testing.T) {
	fa := &fakeAgent{err: errors.New("agent unreachable")}
	c := &Client{agent: fa}

	if err := c.Register(Registration{ID: "x"}); err == nil {
		t.Error("Expected register error")
	}
	if err := c.Deregister("x"); err == nil {
		t.Error("Expected deregister error")
	}
	if fa.deregistered != "x" {
		t.Errorf("Expected deregister call for x, got %q", fa.deregistered)
	}
}

func TestReregister_LogsFailedCleanup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fa := &fakeAgent{deregisterErr: errors.New("ACL not found")}
	c := &Client{agent: fa}
	reg := NewRegistration(testConfig())

	if err := c.Reregister(reg, logger); err != nil {
		t.Fatalf("Reregister error: %v", err)
	}

	if fa.deregistered != reg.ID {
		t.Errorf("Expected stale entry %q to be cleared, got %q", reg.ID, fa.deregistered)
	}
	if fa.registered == nil || fa.registered.ID != reg.ID {
		t.Fatalf("Expected %q to be registered, got %+v", reg.ID, fa.registered)
	}

	out := buf.String()
	if !strings.Contains(out, "level=DEBUG") || !strings.Contains(out, "ACL not found") {
		t.Errorf("Expected debug log with cleanup error, got %q", out)
	}
}

func TestReregister_RegisterFailure(t *testing.T) {
	fa := &fakeAgent{err: errors.New("agent unreachable")}
	c := &Client{agent: fa}

	if err := c.Reregister(Registration{ID: "x"}, nil); err == nil {
		t.Error("Expected register error")
	}
}
