package jsonrpc

import "time"

// EventListener observes the requests the server dispatches. Only registered method
// names are reported to the per-method callbacks; anything else goes to
// OnMethodNotFound, which keeps metric label sets bounded.
type EventListener interface {
	OnNewRequest(method string)
	OnRequestHandled(method string, took time.Duration)
	OnRequestFailed(method string, err *Error)
	OnMethodNotFound(method string)
}

// HTTPListener observes requests reaching the HTTP transport.
type HTTPListener interface {
	OnHTTPRequest(withAPIKey bool)
}

type SelectiveListener struct {
	OnNewRequestCb     func(method string)
	OnRequestHandledCb func(method string, took time.Duration)
	OnRequestFailedCb  func(method string, err *Error)
	OnMethodNotFoundCb func(method string)
	OnHTTPRequestCb    func(withAPIKey bool)
}

var (
	_ EventListener = (*SelectiveListener)(nil)
	_ HTTPListener  = (*SelectiveListener)(nil)
)

func (l *SelectiveListener) OnNewRequest(method string) {
	if l.OnNewRequestCb != nil {
		l.OnNewRequestCb(method)
	}
}

func (l *SelectiveListener) OnRequestHandled(method string, took time.Duration) {
	if l.OnRequestHandledCb != nil {
		l.OnRequestHandledCb(method, took)
	}
}

func (l *SelectiveListener) OnRequestFailed(method string, err *Error) {
	if l.OnRequestFailedCb != nil {
		l.OnRequestFailedCb(method, err)
	}
}

func (l *SelectiveListener) OnMethodNotFound(method string) {
	if l.OnMethodNotFoundCb != nil {
		l.OnMethodNotFoundCb(method)
	}
}

func (l *SelectiveListener) OnHTTPRequest(withAPIKey bool) {
	if l.OnHTTPRequestCb != nil {
		l.OnHTTPRequestCb(withAPIKey)
	}
}
