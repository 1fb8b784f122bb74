// Package cluster registers the table server with Consul and aggregates its
// health checks.
package cluster

import (
	"fmt"
	"strings"

	consul "github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

// NewConsulClient tries each comma-separated agent address until one
// reports a leader.
func NewConsulClient(addrs string, log *zap.Logger) (*consul.Client, error) {
	for _, node := range strings.Split(addrs, ",") {
		node = strings.TrimSpace(node)
		if node == "" {
			continue
		}
		cfg := consul.DefaultConfig()
		cfg.Address = node

		client, err := consul.NewClient(cfg)
		if err != nil {
			log.Warn("consul client failed", zap.String("node", node), zap.Error(err))
			continue
		}
		if _, err := client.Status().Leader(); err != nil {
			log.Warn("consul node unhealthy", zap.String("node", node), zap.Error(err))
			continue
		}
		log.Info("connected to consul", zap.String("node", node))
		return client, nil
	}
	return nil, fmt.Errorf("no consul agent available in %q", addrs)
}
