package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"candy-bianca-backend/internal/entry"
	"candy-bianca-backend/internal/programs"
	"candy-bianca-backend/internal/status"
	"candy-bianca-backend/internal/store"
)

// Fetcher reads one status snapshot from the washer.
type Fetcher interface {
	FetchStatus(ctx context.Context) (status.Raw, error)
}

// Subscriber is called after every successful poll, in registration order.
type Subscriber interface {
	OnStatus(ctx context.Context, deviceID string, raw status.Raw)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, deviceID string, raw status.Raw)

func (f SubscriberFunc) OnStatus(ctx context.Context, deviceID string, raw status.Raw) {
	f(ctx, deviceID, raw)
}

// Service polls one washer on a fixed interval and fans the result out to
// the entry, the store and the subscribers.
type Service struct {
	entry       *entry.Entry
	fetcher     Fetcher
	store       store.Store
	interval    time.Duration
	subscribers []Subscriber
	logger      *zap.Logger
	now         func() time.Time

	// Serializes scheduled polls with refresh requests.
	mu sync.Mutex
}

// NewService creates a poller. s may be nil when nothing is persisted.
func NewService(e *entry.Entry, f Fetcher, s store.Store, interval time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		entry:    e,
		fetcher:  f,
		store:    s,
		interval: interval,
		logger:   logger.With(zap.String("device", e.ID)),
		now:      time.Now,
	}
}

// Subscribe adds a consumer of poll results. Call before Run.
func (s *Service) Subscribe(sub Subscriber) {
	s.subscribers = append(s.subscribers, sub)
}

// Run polls until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	s.logger.Info("Starting poller", zap.Duration("interval", s.interval))

	_ = s.PollOnce(ctx)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Poller shutting down")
			return
		case <-timer.C:
			_ = s.PollOnce(ctx)
			timer.Reset(s.interval)
		}
	}
}

// PollOnce performs a single poll. A failed poll keeps the last known
// status and is not passed to subscribers.
func (s *Service) PollOnce(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	raw, err := s.fetcher.FetchStatus(ctx)
	if err != nil {
		s.logger.Warn("Poll failed", zap.Error(err))
		s.entry.SetPollError(err, now)
		return err
	}
	s.entry.SetStatus(raw, now)

	if s.store != nil {
		remaining, _ := status.RemainingSeconds(raw)
		obs := store.CycleObservation{
			DeviceID:         s.entry.ID,
			Mode:             status.Mode(raw),
			Program:          programs.Name(raw),
			RemainingSeconds: remaining,
		}
		if err := s.store.RecordCycle(ctx, now, obs); err != nil {
			s.logger.Error("Error recording cycle", zap.Error(err))
		}
	}

	for _, sub := range s.subscribers {
		sub.OnStatus(ctx, s.entry.ID, raw)
	}

	s.logger.Debug("Poll finished", zap.Int("mode", status.Mode(raw)))
	return nil
}
