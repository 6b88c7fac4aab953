package jsonrpc_test

import (
	"sync"
	"time"

	"github.com/chainrequest/blockchain-api/jsonrpc"
)

type handledCall struct {
	method string
	took   time.Duration
}

type failedCall struct {
	method string
	code   int
}

type recordingListener struct {
	mu       sync.Mutex
	requests []string
	handled  []handledCall
	failed   []failedCall
	notFound []string
}

func (l *recordingListener) OnNewRequest(method string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requests = append(l.requests, method)
}

func (l *recordingListener) OnRequestHandled(method string, took time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handled = append(l.handled, handledCall{method: method, took: took})
}

func (l *recordingListener) OnRequestFailed(method string, err *jsonrpc.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failed = append(l.failed, failedCall{method: method, code: err.Code})
}

func (l *recordingListener) OnMethodNotFound(method string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notFound = append(l.notFound, method)
}
