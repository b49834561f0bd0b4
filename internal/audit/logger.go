package audit

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/production-manager/internal/logging"
	"github.com/iliyamo/production-manager/internal/metrics"
	"github.com/iliyamo/production-manager/internal/model"
)

// Sink receives entries in the background.  Publish errors are logged and
// otherwise ignored.
type Sink interface {
	Publish(ctx context.Context, e Entry) error
}

// DefaultBuffer is the sink queue size used when New is given 0.
const DefaultBuffer = 256

const publishTimeout = 5 * time.Second

// Logger is the audit recorder shared by all handlers.
type Logger struct {
	log  zerolog.Logger
	sink Sink
	now  func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan Entry
	done   chan struct{}
}

// New returns a Logger writing to log.  sink may be nil.  buffer bounds the
// number of entries waiting for the sink; when it is full new entries are
// still logged but not forwarded.
func New(log zerolog.Logger, sink Sink, buffer int) *Logger {
	l := &Logger{
		log:  log.With().Str("component", "audit").Logger(),
		sink: sink,
		now:  time.Now,
		done: make(chan struct{}),
	}
	if sink == nil {
		close(l.done)
		return l
	}
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	l.queue = make(chan Entry, buffer)
	go l.run()
	return l
}

// NewDefault is New with the global logger.
func NewDefault(sink Sink) *Logger {
	return New(logging.Logger(), sink, 0)
}

func (l *Logger) run() {
	defer close(l.done)
	for e := range l.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := l.sink.Publish(ctx, e); err != nil {
			l.log.Warn().Err(err).Str("audit_id", e.ID).Msg("audit sink publish failed")
		}
		cancel()
	}
}

// LogOperation records that id performed action on method+endpoint.  The
// optional details are joined with "; ".  The entry is returned for
// callers that want to reference its id.
func (l *Logger) LogOperation(ctx context.Context, method, endpoint string, id model.Identity, action string, details ...string) Entry {
	e := Entry{
		ID:        uuid.NewString(),
		Timestamp: l.now().UTC(),
		Method:    method,
		Endpoint:  endpoint,
		UserID:    id.UserID,
		Email:     id.Email,
		Role:      id.Role,
		Action:    action,
		Details:   strings.Join(details, "; "),
	}

	ev := l.log.Info().
		Str("audit_id", e.ID).
		Str("method", e.Method).
		Str("endpoint", e.Endpoint).
		Uint64("user_id", e.UserID).
		Str("email", e.Email).
		Str("role", string(e.Role)).
		Str("action", e.Action)
	if e.Details != "" {
		ev = ev.Str("details", e.Details)
	}
	if rid := logging.RequestIDFrom(ctx); rid != "" {
		ev = ev.Str("request_id", rid)
	}
	ev.Msg("audit")

	l.enqueue(e)
	return e
}

// Record is LogOperation for the current echo request.
func (l *Logger) Record(c echo.Context, id model.Identity, action string, details ...string) Entry {
	r := c.Request()
	return l.LogOperation(r.Context(), r.Method, r.URL.Path, id, action, details...)
}

func (l *Logger) enqueue(e Entry) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.queue == nil || l.closed {
		return
	}
	select {
	case l.queue <- e:
	default:
		metrics.RecordAuditDropped()
		l.log.Warn().Str("audit_id", e.ID).Msg("audit queue full; entry not forwarded")
	}
}

// Close stops accepting entries for the sink and waits until the queued
// ones are published or ctx is done.
func (l *Logger) Close(ctx context.Context) error {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		if l.queue != nil {
			close(l.queue)
		}
	}
	l.mu.Unlock()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
