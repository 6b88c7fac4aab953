package blockchain

import "time"

type EventListener interface {
	OnCall(method string, took time.Duration, failed bool)
}

type SelectiveListener struct {
	OnCallCb func(method string, took time.Duration, failed bool)
}

func (l *SelectiveListener) OnCall(method string, took time.Duration, failed bool) {
	if l.OnCallCb != nil {
		l.OnCallCb(method, took, failed)
	}
}
