package node

import (
	"math"
	"strconv"
	"time"

	"github.com/chainrequest/blockchain-api/blockchain"
	"github.com/chainrequest/blockchain-api/db"
	"github.com/chainrequest/blockchain-api/jsonrpc"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func makeDBMetrics(registry prometheus.Registerer) db.EventListener {
	latencyBuckets := []float64{
		25,
		50,
		75,
		100,
		250,
		500,
		1000, // 1ms
		2000,
		3000,
		4000,
		5000,
		10000,
		50000,
		500000,
		math.Inf(0),
	}
	readLatencyHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "db",
		Name:      "read_latency",
		Buckets:   latencyBuckets,
	})
	writeLatencyHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "db",
		Name:      "write_latency",
		Buckets:   latencyBuckets,
	})
	commitLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "db",
		Name:      "commit_latency",
		Buckets: []float64{
			5000,
			10000,
			20000,
			30000,
			40000,
			50000,
			100000, // 100ms
			200000,
			300000,
			500000,
			1000000,
			math.Inf(0),
		},
	})

	registry.MustRegister(readLatencyHistogram, writeLatencyHistogram, commitLatency)
	return &db.SelectiveListener{
		OnIOCb: func(write bool, duration time.Duration) {
			if write {
				writeLatencyHistogram.Observe(float64(duration.Microseconds()))
			} else {
				readLatencyHistogram.Observe(float64(duration.Microseconds()))
			}
		},
		OnCommitCb: func(duration time.Duration) {
			commitLatency.Observe(float64(duration.Microseconds()))
		},
	}
}

func makeHTTPMetrics(registry prometheus.Registerer) jsonrpc.HTTPListener {
	reqCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rpc",
		Subsystem: "http",
		Name:      "requests",
	}, []string{"api_key"})
	registry.MustRegister(reqCounter)

	return &jsonrpc.SelectiveListener{
		OnHTTPRequestCb: func(withAPIKey bool) {
			reqCounter.WithLabelValues(strconv.FormatBool(withAPIKey)).Inc()
		},
	}
}

func makeRPCMetrics(registry prometheus.Registerer) jsonrpc.EventListener {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rpc",
		Subsystem: "server",
		Name:      "requests",
	}, []string{"method"})
	failedRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rpc",
		Subsystem: "server",
		Name:      "failed_requests",
	}, []string{"method", "error_code"})
	requestLatencies := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rpc",
		Subsystem: "server",
		Name:      "requests_latency",
	}, []string{"method"})
	unknownMethods := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rpc",
		Subsystem: "server",
		Name:      "unknown_method_requests",
	})
	registry.MustRegister(requests, failedRequests, requestLatencies, unknownMethods)

	return &jsonrpc.SelectiveListener{
		OnNewRequestCb: func(method string) {
			requests.WithLabelValues(method).Inc()
		},
		OnRequestHandledCb: func(method string, took time.Duration) {
			requestLatencies.WithLabelValues(method).Observe(took.Seconds())
		},
		OnRequestFailedCb: func(method string, err *jsonrpc.Error) {
			failedRequests.WithLabelValues(method, strconv.Itoa(err.Code)).Inc()
		},
		OnMethodNotFoundCb: func(string) {
			unknownMethods.Inc()
		},
	}
}

func makeChainMetrics(registry prometheus.Registerer) blockchain.EventListener {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chain",
		Subsystem: "client",
		Name:      "calls",
	}, []string{"method", "failed"})
	latencies := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chain",
		Subsystem: "client",
		Name:      "call_latency",
	}, []string{"method"})
	registry.MustRegister(calls, latencies)

	return &blockchain.SelectiveListener{
		OnCallCb: func(method string, took time.Duration, failed bool) {
			calls.WithLabelValues(method, strconv.FormatBool(failed)).Inc()
			latencies.WithLabelValues(method).Observe(took.Seconds())
		},
	}
}

func makeProcessMetrics(registry prometheus.Registerer, version string) {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "blockchain_api",
			Name:        "info",
			Help:        "Information about the blockchain-api binary",
			ConstLabels: prometheus.Labels{"version": version},
		}),
	)
}

func makePebbleMetrics(registry prometheus.Registerer, nodeDB db.DB) {
	pebbleDB, ok := nodeDB.Impl().(*pebble.DB)
	if !ok {
		return
	}

	blockCacheSize := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "pebble",
		Subsystem: "block_cache",
		Name:      "size",
	}, func() float64 {
		return float64(pebbleDB.Metrics().BlockCache.Size)
	})
	blockHitRate := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "pebble",
		Subsystem: "block_cache",
		Name:      "hit_rate",
	}, func() float64 {
		metrics := pebbleDB.Metrics()
		return hitRate(metrics.BlockCache.Hits, metrics.BlockCache.Misses)
	})
	tableCacheSize := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "pebble",
		Subsystem: "table_cache",
		Name:      "size",
	}, func() float64 {
		return float64(pebbleDB.Metrics().TableCache.Size)
	})
	tableHitRate := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "pebble",
		Subsystem: "table_cache",
		Name:      "hit_rate",
	}, func() float64 {
		metrics := pebbleDB.Metrics()
		return hitRate(metrics.TableCache.Hits, metrics.TableCache.Misses)
	})
	registry.MustRegister(blockCacheSize, blockHitRate, tableCacheSize, tableHitRate)
}

func hitRate(hits, misses int64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}
