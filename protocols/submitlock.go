package protocols

import "context"

// SubmitLockGateway guards a session against concurrent order
// submissions. Acquire returns false when a submission is already in
// flight for the session.
type SubmitLockGateway interface {
	Acquire(ctx context.Context, sessionID string) (bool, error)
	Release(ctx context.Context, sessionID string) error
}
