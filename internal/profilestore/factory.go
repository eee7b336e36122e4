package profilestore

import (
	"sync"

	"go.uber.org/zap"
)

// Factory hands out per-user stores. Stores for the same user share a lock,
// so read-modify-write sequences are serialised across requests.
type Factory struct {
	open   func(userID int64) Backend
	logger *zap.Logger
	locks  sync.Map // int64 -> *sync.Mutex
}

// NewFactory creates a factory; open returns the backend for a user
func NewFactory(open func(userID int64) Backend, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{open: open, logger: logger}
}

// ForUser returns the store for userID
func (f *Factory) ForUser(userID int64) *Store {
	mu, _ := f.locks.LoadOrStore(userID, &sync.Mutex{})
	return New(f.open(userID),
		withMutex(mu.(*sync.Mutex)),
		WithLogger(f.logger.With(zap.Int64("user_id", userID))),
	)
}
