package node_test

import (
	"context"
	"testing"

	"github.com/chainrequest/blockchain-api/node"
	"github.com/chainrequest/blockchain-api/utils"
	"github.com/stretchr/testify/require"
)

// Create a new node with all services enabled.
func TestNewNode(t *testing.T) {
	config := &node.Config{
		LogLevel:    utils.INFO,
		HTTP:        true,
		HTTPHost:    "127.0.0.1",
		HTTPPort:    0,
		Metrics:     true,
		MetricsHost: "127.0.0.1",
		MetricsPort: 0,
		DBDriver:    node.DriverPebble,
		DBPath:      t.TempDir(),
		Chains:      []string{"11155111=http://localhost:8545"},

		DecoratorCacheSize: 16,
		StatusCacheSize:    16,
	}

	n, err := node.New(config, "v0.1.0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n.Run(ctx)
}

func TestNewNodeErrors(t *testing.T) {
	tests := map[string]struct {
		config    node.Config
		errString string
	}{
		"unknown driver": {
			config:    node.Config{DBDriver: "badger", DecoratorCacheSize: 1, StatusCacheSize: 1},
			errString: `unknown db driver "badger"`,
		},
		"postgres without dsn": {
			config:    node.Config{DBDriver: node.DriverPostgres, DecoratorCacheSize: 1, StatusCacheSize: 1},
			errString: "db-dsn is required",
		},
		"malformed chain": {
			config:    node.Config{DBDriver: node.DriverMemory, Chains: []string{"sepolia"}},
			errString: "sepolia",
		},
		"empty decorator cache": {
			config:    node.Config{DBDriver: node.DriverMemory, StatusCacheSize: 1},
			errString: "size",
		},
	}

	for description, test := range tests {
		t.Run(description, func(t *testing.T) {
			_, err := node.New(&test.config, "v0.1.0")
			require.ErrorContains(t, err, test.errString)
		})
	}
}
