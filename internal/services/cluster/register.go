package cluster

import (
	"fmt"
	"os"

	consul "github.com/hashicorp/consul/api"
)

// Registration describes the table server to the Consul agent.
type Registration struct {
	Name       string
	Port       int
	HealthPort int
	Tags       []string
}

// ServiceID derives a per-host ID for the service.
func (r Registration) ServiceID() string {
	hostname := os.Getenv("HOSTNAME")
	if hostname == "" {
		hostname, _ = os.Hostname()
	}
	return fmt.Sprintf("%s-%s", r.Name, hostname)
}

// Register announces the service with an HTTP health check against the
// admin API and returns the service ID.
func Register(client *consul.Client, r Registration) (string, error) {
	id := r.ServiceID()
	hostname, _ := os.Hostname()
	registration := &consul.AgentServiceRegistration{
		ID:   id,
		Name: r.Name,
		Port: r.Port,
		Tags: r.Tags,
		Check: &consul.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", hostname, r.HealthPort),
			Timeout:                        "5s",
			Interval:                       "10s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}
	if err := client.Agent().ServiceRegister(registration); err != nil {
		return "", fmt.Errorf("register %s: %w", id, err)
	}
	return id, nil
}

func Deregister(client *consul.Client, id string) error {
	if err := client.Agent().ServiceDeregister(id); err != nil {
		return fmt.Errorf("deregister %s: %w", id, err)
	}
	return nil
}
