package gateways

import (
	"context"
	"sync"
)

type SubmitLockMemory struct {
	mutex    sync.Mutex
	inFlight map[string]bool
}

func NewSubmitLockMemory() *SubmitLockMemory {
	return &SubmitLockMemory{
		inFlight: make(map[string]bool),
	}
}

func (l *SubmitLockMemory) Acquire(ctx context.Context, sessionID string) (bool, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.inFlight[sessionID] {
		return false, nil
	}
	l.inFlight[sessionID] = true
	return true, nil
}

func (l *SubmitLockMemory) Release(ctx context.Context, sessionID string) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	delete(l.inFlight, sessionID)
	return nil
}
