// Package consul registers the service with a Consul agent so that it can be
// discovered and health-checked.
package consul

import (
	"fmt"
	"log/slog"
	"time"

	"bookmarks/internal/config"

	consulapi "github.com/hashicorp/consul/api"
)

// Registration describes one service instance
type Registration struct {
	ID              string
	Name            string
	Address         string
	Port            int
	Tags            []string
	HealthURL       string
	Interval        time.Duration
	Timeout         time.Duration
	DeregisterAfter time.Duration
}

// agent is the subset of *consulapi.Agent used for registration.
type agent interface {
	ServiceRegister(service *consulapi.AgentServiceRegistration) error
	ServiceDeregister(serviceID string) error
}

// Client wraps the Consul agent API
type Client struct {
	agent agent
}

// NewClient creates a new Consul client with optional ACL token authentication
func NewClient(addr, token string) (*Client, error) {
	cfg := consulapi.DefaultConfig()
	cfg.Address = addr
	if token != "" {
		cfg.Token = token
	}

	api, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}

	return &Client{agent: api.Agent()}, nil
}

// NewRegistration derives the instance registration from service configuration.
// The id is stable per host and port so restarts replace the previous entry.
func NewRegistration(cfg *config.Config) Registration {
	host := cfg.Server.Host
	port := cfg.Server.Port

	return Registration{
		ID:              fmt.Sprintf("%s-%s-%d", cfg.ServiceName, host, port),
		Name:            cfg.ServiceName,
		Address:         host,
		Port:            port,
		Tags:            []string{"auth", "users", cfg.Env},
		HealthURL:       fmt.Sprintf("http://%s:%d/health", host, port),
		Interval:        10 * time.Second,
		Timeout:         3 * time.Second,
		DeregisterAfter: time.Minute,
	}
}

// Register registers a service instance with its HTTP health check
func (c *Client) Register(reg Registration) error {
	registration := &consulapi.AgentServiceRegistration{
		ID:      reg.ID,
		Name:    reg.Name,
		Address: reg.Address,
		Port:    reg.Port,
		Tags:    reg.Tags,
	}

	if reg.HealthURL != "" {
		check := &consulapi.AgentServiceCheck{
			HTTP:     reg.HealthURL,
			Interval: reg.Interval.String(),
			Timeout:  reg.Timeout.String(),
		}
		if reg.DeregisterAfter > 0 {
			check.DeregisterCriticalServiceAfter = reg.DeregisterAfter.String()
		}
		registration.Check = check
	}

	if err := c.agent.ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	return nil
}

// Reregister clears a stale entry with the same id, left by a previous crash,
// then registers reg. A failed cleanup is only logged.
func (c *Client) Reregister(reg Registration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if err := c.Deregister(reg.ID); err != nil {
		logger.Debug("Stale Consul registration not removed", "service_id", reg.ID, "error", err)
	}
	return c.Register(reg)
}

// Deregister removes a service instance from Consul
func (c *Client) Deregister(serviceID string) error {
	if err := c.agent.ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}

	return nil
}
