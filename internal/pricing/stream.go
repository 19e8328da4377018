package pricing

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogStream is a replayable multicast view of one category scan.
//
// The store scan starts the moment the stream is opened, before any
// consumer exists, so catalog I/O overlaps with whatever the caller does
// next (the "warm" step of a query). Matching products accumulate in a
// private buffer; every consumer, whenever it attaches, receives the full
// filtered sequence from the first element and then live arrivals.
//
// A stream belongs to exactly one request and must not be shared across
// requests.
type CatalogStream struct {
	id     string
	cancel context.CancelFunc
	log    *zap.Logger

	mu        sync.Mutex
	buf       []Product
	done      bool
	err       error
	abandoned bool
	attached  bool
	waiters   []chan struct{}
}

// OpenCatalogStream begins scanning the store for products of the given
// kind. The caller must eventually Attach a consumer or Cancel the stream;
// either way the scan stops when ctx is cancelled.
func OpenCatalogStream(ctx context.Context, store Store, kind string, log *zap.Logger) *CatalogStream {
	ctx, cancel := context.WithCancel(ctx)
	s := &CatalogStream{
		id:     uuid.NewString(),
		cancel: cancel,
		log:    log,
	}

	go s.scan(ctx, store, kind)
	return s
}

func (s *CatalogStream) scan(ctx context.Context, store Store, kind string) {
	err := store.ScanProducts(ctx, func(p Product) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.Kind != kind {
			return nil
		}

		s.mu.Lock()
		s.buf = append(s.buf, p)
		s.wakeLocked()
		s.mu.Unlock()
		return nil
	})

	s.mu.Lock()
	s.done = true
	if err != nil && !errors.Is(err, context.Canceled) {
		s.err = err
	}
	s.wakeLocked()
	s.mu.Unlock()

	if s.err != nil && s.log != nil {
		s.log.Error("catalog scan failed",
			zap.String("stream_id", s.id),
			zap.String("kind", kind),
			zap.Error(s.err),
		)
	}
}

func (s *CatalogStream) wakeLocked() {
	for _, w := range s.waiters {
		close(w)
	}
	s.waiters = nil
}

// Attach registers a consumer. The returned channel replays every buffered
// product from the start, then forwards live arrivals until the scan ends;
// it is closed afterwards. The bool is false when the stream was already
// cancelled: a cancel committed before any attach always wins, and such a
// stream delivers nothing.
func (s *CatalogStream) Attach(ctx context.Context) (<-chan Product, bool) {
	s.mu.Lock()
	if s.abandoned {
		s.mu.Unlock()
		return nil, false
	}
	s.attached = true
	s.mu.Unlock()

	out := make(chan Product)
	go s.deliver(ctx, out)
	return out, true
}

func (s *CatalogStream) deliver(ctx context.Context, out chan<- Product) {
	defer close(out)

	next := 0
	for {
		s.mu.Lock()
		for next >= len(s.buf) && !s.done {
			w := make(chan struct{})
			s.waiters = append(s.waiters, w)
			s.mu.Unlock()

			select {
			case <-w:
			case <-ctx.Done():
				return
			}
			s.mu.Lock()
		}
		if next >= len(s.buf) {
			s.mu.Unlock()
			// Scan finished and the buffer is drained; the scan context
			// is spent, release it.
			s.cancel()
			return
		}
		p := s.buf[next]
		s.mu.Unlock()

		next++
		select {
		case out <- p:
		case <-ctx.Done():
			return
		}
	}
}

// Cancel abandons the warm-up: it stops the underlying scan and releases
// the buffer, provided no consumer has attached. Once a consumer is
// attached, or the scan already ran to completion for one, Cancel is a
// no-op so committed deliveries are never clawed back.
func (s *CatalogStream) Cancel() {
	s.mu.Lock()
	if s.attached {
		s.mu.Unlock()
		return
	}
	s.abandoned = true
	s.buf = nil
	s.mu.Unlock()

	s.cancel()
	if s.log != nil {
		s.log.Debug("catalog stream cancelled", zap.String("stream_id", s.id))
	}
}

// Err reports a store failure that ended the scan early. It is meaningful
// once an attached channel has been closed; cancellation is not an error.
func (s *CatalogStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
