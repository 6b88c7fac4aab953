package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/chainrequest/blockchain-api/blockchain"
	"github.com/chainrequest/blockchain-api/db"
	"github.com/chainrequest/blockchain-api/db/memory"
	"github.com/chainrequest/blockchain-api/db/pebble"
	"github.com/chainrequest/blockchain-api/db/postgres"
	"github.com/chainrequest/blockchain-api/jsonrpc"
	"github.com/chainrequest/blockchain-api/rpc"
	"github.com/chainrequest/blockchain-api/service"
	"github.com/chainrequest/blockchain-api/store"
	"github.com/chainrequest/blockchain-api/utils"
	"github.com/chainrequest/blockchain-api/validator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc"
)

const (
	DriverPebble   = "pebble"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the top-level blockchain-api configuration.
type Config struct {
	LogLevel utils.LogLevel `mapstructure:"log-level"`
	Colour   bool           `mapstructure:"colour"`

	HTTP        bool     `mapstructure:"http"`
	HTTPHost    string   `mapstructure:"http-host"`
	HTTPPort    uint16   `mapstructure:"http-port"`
	CORSOrigins []string `mapstructure:"cors-origins"`

	Metrics     bool   `mapstructure:"metrics"`
	MetricsHost string `mapstructure:"metrics-host"`
	MetricsPort uint16 `mapstructure:"metrics-port"`

	DBDriver       string        `mapstructure:"db-driver"`
	DBPath         string        `mapstructure:"db-path"`
	DBCacheSize    uint          `mapstructure:"db-cache-size"`
	DBMaxHandles   int           `mapstructure:"db-max-handles"`
	DBDSN          string        `mapstructure:"db-dsn"`
	DBMaxConns     int32         `mapstructure:"db-max-conns"`
	DBQueryTimeout time.Duration `mapstructure:"db-query-timeout"`

	Chains []string `mapstructure:"chains"`

	RPCMaxGoroutines   int `mapstructure:"rpc-max-goroutines"`
	DecoratorCacheSize int `mapstructure:"decorator-cache-size"`
	StatusCacheSize    int `mapstructure:"status-cache-size"`
}

// Service is a long running component of the node.
type Service interface {
	Run(ctx context.Context) error
}

type Node struct {
	cfg      *Config
	db       db.DB
	chains   *blockchain.Registry
	services []Service
	log      utils.Logger

	version string
}

// New builds every component described by cfg. The database is opened here and
// closed when Run returns.
func New(cfg *Config, version string) (*Node, error) { //nolint:funlen
	log, err := utils.NewZapLogger(cfg.LogLevel, cfg.Colour)
	if err != nil {
		return nil, err
	}

	if _, err = semver.NewVersion(version); err != nil {
		log.Warnw("Failed to parse version, api_version will report it without numeric parts", "version", version)
	}

	chainURLs, err := blockchain.ParseChainURLs(cfg.Chains)
	if err != nil {
		return nil, err
	}
	if len(chainURLs) == 0 {
		log.Warnw("No chains configured; only projects with a custom RPC url can create requests")
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("open DB: %w", err)
	}

	registry := prometheus.NewRegistry()
	chainListener := blockchain.EventListener(&blockchain.SelectiveListener{})
	if cfg.Metrics {
		makeProcessMetrics(registry, version)
		database.WithListener(makeDBMetrics(registry))
		makePebbleMetrics(registry, database)
		chainListener = makeChainMetrics(registry)
	}

	st, err := store.New(database, cfg.DecoratorCacheSize, log.Named("store"))
	if err != nil {
		return nil, closeOnError(database, err)
	}
	chains := blockchain.NewRegistry(chainURLs, blockchain.EthereumDialer(chainListener), log.Named("chains"))
	svc, err := service.New(st, chains, cfg.StatusCacheSize, log.Named("service"))
	if err != nil {
		return nil, closeOnError(database, err)
	}

	maxGoroutines := cfg.RPCMaxGoroutines
	if maxGoroutines <= 0 {
		// to improve RPC throughput we double GOMAXPROCS
		maxGoroutines = 2 * runtime.GOMAXPROCS(0)
	}
	jsonrpcServer := jsonrpc.NewServer(maxGoroutines, log).WithValidator(validator.Validator())
	if err = jsonrpcServer.RegisterMethods(rpc.New(svc, version, log.Named("rpc")).Methods()...); err != nil {
		return nil, closeOnError(database, err)
	}

	var services []Service
	if cfg.HTTP {
		listener, err := net.Listen("tcp", net.JoinHostPort(cfg.HTTPHost, strconv.Itoa(int(cfg.HTTPPort))))
		if err != nil {
			return nil, closeOnError(database, fmt.Errorf("listen on http port: %w", err))
		}
		var httpListener jsonrpc.HTTPListener
		if cfg.Metrics {
			jsonrpcServer.WithListener(makeRPCMetrics(registry))
			httpListener = makeHTTPMetrics(registry)
		}
		services = append(services, makeRPCOverHTTP(listener, jsonrpcServer, httpListener, cfg.CORSOrigins, log))
		log.Infow("Serving JSON-RPC over HTTP", "addr", listener.Addr().String())
	}
	if cfg.Metrics {
		listener, err := net.Listen("tcp", net.JoinHostPort(cfg.MetricsHost, strconv.Itoa(int(cfg.MetricsPort))))
		if err != nil {
			return nil, closeOnError(database, fmt.Errorf("listen on metrics port: %w", err))
		}
		services = append(services, makeMetrics(listener, registry))
	}

	return &Node{
		cfg:      cfg,
		db:       database,
		chains:   chains,
		services: services,
		log:      log,
		version:  version,
	}, nil
}

// DefaultDBPath is where the pebble database lives when no db-path is configured.
func DefaultDBPath() (string, error) {
	dataDir, err := utils.DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "pebble"), nil
}

func openDatabase(cfg *Config) (db.DB, error) {
	switch cfg.DBDriver {
	case DriverPebble, "":
		path := cfg.DBPath
		if path == "" {
			var err error
			if path, err = DefaultDBPath(); err != nil {
				return nil, err
			}
		}
		return pebble.New(path,
			pebble.WithCacheSize(cfg.DBCacheSize),
			pebble.WithMaxOpenFiles(cfg.DBMaxHandles),
			pebble.WithLogger(cfg.Colour),
		)
	case DriverPostgres:
		if cfg.DBDSN == "" {
			return nil, errors.New("db-dsn is required for the postgres driver")
		}
		return postgres.New(context.Background(), postgres.Config{
			URL:      cfg.DBDSN,
			MaxConns: cfg.DBMaxConns,
			Timeout:  cfg.DBQueryTimeout,
		})
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.DBDriver)
	}
}

func closeOnError(database db.DB, err error) error {
	return db.RunAndWrapOnError(database.Close, err)
}

// Run starts every service and blocks until ctx is cancelled or a service fails.
// Run waits for all services to return, then releases the chain clients and the DB.
func (n *Node) Run(ctx context.Context) {
	defer func() {
		n.chains.Close()
		if closeErr := n.db.Close(); closeErr != nil {
			n.log.Errorw("Error while closing the DB", "err", closeErr)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	wg := conc.NewWaitGroup()
	for _, s := range n.services {
		wg.Go(func() {
			if err := s.Run(ctx); err != nil {
				n.log.Errorw("Service error", "name", reflect.TypeOf(s), "err", err)
				cancel()
			}
		})
	}
	defer wg.Wait()

	n.log.Infow("Started blockchain-api", "version", n.version)
	<-ctx.Done()
	cancel()
	n.log.Infow("Shutting down blockchain-api...")
}

func (n *Node) Config() Config {
	return *n.cfg
}
