package lookup

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kjstillabower/weather-lookup/internal/client"
	"github.com/kjstillabower/weather-lookup/internal/models"
	"go.uber.org/zap"
)

// ErrClosed is the cause carried by lookups started after Close.
var ErrClosed = errors.New("lookup executor closed")

// URLBuilder turns a lookup request into a query URL.
type URLBuilder interface {
	Build(req models.LookupRequest) (*url.URL, error)
}

// Completion receives the outcome of one fetch. It is called exactly once per
// Fetch, on a background goroutine.
type Completion func(token models.Token, payload []byte, err error)

// ExecutorConfig holds executor behavior.
type ExecutorConfig struct {
	// Timeout bounds each network call. Zero means 5s.
	Timeout time.Duration
	// CancelSuperseded cancels the transport context of older calls when a
	// newer fetch starts.
	CancelSuperseded bool
}

// Executor issues network calls and owns the current token.
type Executor struct {
	builder   URLBuilder
	transport client.Transport
	cfg       ExecutorConfig
	logger    *zap.Logger

	current  atomic.Uint64
	inflight inFlightTracker

	mu     sync.Mutex
	calls  map[models.Token]context.CancelFunc
	closed bool
}

// NewExecutor creates an Executor over builder and transport.
func NewExecutor(builder URLBuilder, transport client.Transport, cfg ExecutorConfig, logger *zap.Logger) *Executor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		builder:   builder,
		transport: transport,
		cfg:       cfg,
		logger:    logger.Named("lookup"),
		calls:     make(map[models.Token]context.CancelFunc),
	}
}

// IsCurrent reports whether token is the most recently minted one.
func (e *Executor) IsCurrent(token models.Token) bool {
	return uint64(token) == e.current.Load()
}

// Current returns the most recently minted token; zero before the first fetch.
func (e *Executor) Current() models.Token {
	return models.Token(e.current.Load())
}

// InFlight returns the number of calls whose completion has not run yet.
func (e *Executor) InFlight() int64 {
	return e.inflight.Count()
}

// Fetch mints a token, records it as current and starts one network call for
// req. done runs exactly once with the token, the raw body or the error.
// The call outlives ctx cancellation but keeps its values (correlation id).
func (e *Executor) Fetch(ctx context.Context, req models.LookupRequest, done Completion) models.Token {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.Timeout)

	e.mu.Lock()
	token := models.Token(e.current.Add(1))
	closed := e.closed
	if !closed {
		if e.cfg.CancelSuperseded {
			for prev, prevCancel := range e.calls {
				prevCancel()
				delete(e.calls, prev)
			}
		}
		e.calls[token] = cancel
	}
	e.inflight.start()
	e.mu.Unlock()

	log := e.logger.With(zap.Uint64("token", uint64(token)), zap.Stringer("request", req))

	var u *url.URL
	var err error
	if closed {
		err = models.TransportError("fetch weather", ErrClosed)
	} else {
		u, err = e.builder.Build(req)
	}

	go func() {
		defer e.inflight.finish()
		defer e.release(token, cancel)

		if err != nil {
			log.Debug("lookup rejected", zap.Error(err))
			done(token, nil, err)
			return
		}
		start := time.Now()
		payload, ferr := e.transport.Fetch(callCtx, u)
		log.Debug("lookup completed",
			zap.Duration("duration", time.Since(start)),
			zap.Bool("ok", ferr == nil),
		)
		done(token, payload, ferr)
	}()
	return token
}

func (e *Executor) release(token models.Token, cancel context.CancelFunc) {
	cancel()
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.calls, token)
}

// Close cancels every in-flight call and waits for their completions to run
// or for ctx to end. Later fetches fail with ErrClosed.
func (e *Executor) Close(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	for token, cancel := range e.calls {
		cancel()
		delete(e.calls, token)
	}
	e.mu.Unlock()
	return e.inflight.WaitForZero(ctx)
}
