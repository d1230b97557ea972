package streaming

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
)

// Sentinel errors for streaming operations.
var (
	// ErrWriteTimeout indicates that a single write did not complete in time.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrIdleTimeout indicates that no bytes were written for too long.
	ErrIdleTimeout = errors.New("stream idle timeout exceeded")

	// ErrClientGone indicates that the request context ended before the
	// stream completed.
	ErrClientGone = errors.New("client disconnected")

	// ErrStreamClosed is returned by writes after Close.
	ErrStreamClosed = errors.New("stream closed")
)

// Config bounds how long a download may stall.
type Config struct {
	// WriteTimeout is the maximum time to wait for a single write.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum time between successful writes.
	IdleTimeout time.Duration
	// ChunkSize splits large writes and flushes after each chunk (0 = off).
	ChunkSize int
}

// DefaultConfig returns the download defaults.
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ChunkSize:    64 * 1024,
	}
}

// Writer wraps an io.Writer with per-write and idle timeouts. When the
// destination is an http.ResponseWriter whose connection accepts write
// deadlines, writes run synchronously under a deadline. Otherwise each
// write runs in a goroutine and Close waits for it to return.
type Writer struct {
	w        io.Writer
	flusher  http.Flusher
	rc       *http.ResponseController
	ctx      context.Context
	cancel   context.CancelCauseFunc
	config   Config
	inflight sync.WaitGroup

	mu        sync.Mutex
	start     time.Time
	lastWrite time.Time
	written   int64
	closed    bool
}

// NewWriter creates a timeout-protected writer bound to ctx. The caller
// must Close it.
func NewWriter(ctx context.Context, w io.Writer, config Config) *Writer {
	writerCtx, cancel := context.WithCancelCause(ctx)
	now := time.Now()

	tw := &Writer{
		w:         w,
		ctx:       writerCtx,
		cancel:    cancel,
		config:    config,
		start:     now,
		lastWrite: now,
	}
	if flusher, ok := w.(http.Flusher); ok {
		tw.flusher = flusher
	}
	if rw, ok := w.(http.ResponseWriter); ok && config.WriteTimeout > 0 {
		rc := http.NewResponseController(rw)
		if err := rc.SetWriteDeadline(time.Time{}); err == nil {
			tw.rc = rc
		}
	}

	go tw.idleChecker()

	return tw
}

// Write implements io.Writer.
func (tw *Writer) Write(p []byte) (int, error) {
	tw.mu.Lock()
	closed := tw.closed
	tw.mu.Unlock()
	if closed {
		return 0, ErrStreamClosed
	}

	if err := tw.ctxErr(); err != nil {
		return 0, err
	}

	if tw.config.ChunkSize <= 0 || len(p) <= tw.config.ChunkSize {
		return tw.writeWithTimeout(p)
	}

	total := 0
	for len(p) > 0 {
		if err := tw.ctxErr(); err != nil {
			return total, err
		}

		size := min(tw.config.ChunkSize, len(p))
		n, err := tw.writeWithTimeout(p[:size])
		total += n
		if err != nil {
			return total, err
		}
		p = p[size:]

		if err := tw.flush(); err != nil {
			return total, err
		}
	}
	return total, nil
}

func (tw *Writer) flush() error {
	if tw.rc != nil {
		deadline := time.Now().Add(tw.config.WriteTimeout)
		if err := tw.rc.SetWriteDeadline(deadline); err != nil {
			return err
		}
		err := tw.rc.Flush()
		if errors.Is(err, http.ErrNotSupported) {
			return nil
		}
		return tw.writeErr(err, deadline)
	}
	if tw.flusher != nil {
		tw.flusher.Flush()
	}
	return nil
}

func (tw *Writer) writeWithTimeout(p []byte) (int, error) {
	if tw.config.WriteTimeout <= 0 {
		n, err := tw.w.Write(p)
		tw.recordWrite(n)
		return n, err
	}
	if tw.rc != nil {
		return tw.writeWithDeadline(p)
	}

	type result struct {
		n   int
		err error
	}
	resultCh := make(chan result, 1)

	tw.inflight.Add(1)
	go func() {
		defer tw.inflight.Done()
		n, err := tw.w.Write(p)
		resultCh <- result{n, err}
	}()

	timer := time.NewTimer(tw.config.WriteTimeout)
	defer timer.Stop()

	select {
	case res := <-resultCh:
		tw.recordWrite(res.n)
		return res.n, res.err
	case <-timer.C:
		tw.cancel(ErrWriteTimeout)
		return 0, ErrWriteTimeout
	case <-tw.ctx.Done():
		return 0, tw.ctxErr()
	}
}

// writeWithDeadline writes on the caller's goroutine; the connection
// deadline unblocks a write to a client that stopped reading.
func (tw *Writer) writeWithDeadline(p []byte) (int, error) {
	deadline := time.Now().Add(tw.config.WriteTimeout)
	if err := tw.rc.SetWriteDeadline(deadline); err != nil {
		return 0, err
	}

	n, err := tw.w.Write(p)
	tw.recordWrite(n)
	return n, tw.writeErr(err, deadline)
}

// writeErr maps a failed write past its deadline to ErrWriteTimeout and
// poisons the writer so later writes fail the same way.
func (tw *Writer) writeErr(err error, deadline time.Time) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrDeadlineExceeded) || !time.Now().Before(deadline) {
		tw.cancel(ErrWriteTimeout)
		return ErrWriteTimeout
	}
	if ctxErr := tw.ctxErr(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func (tw *Writer) recordWrite(n int) {
	if n <= 0 {
		return
	}
	tw.mu.Lock()
	tw.written += int64(n)
	tw.lastWrite = time.Now()
	tw.mu.Unlock()
}

func (tw *Writer) idleChecker() {
	if tw.config.IdleTimeout <= 0 {
		return
	}

	ticker := time.NewTicker(tw.config.IdleTimeout / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tw.mu.Lock()
			idle := time.Since(tw.lastWrite)
			tw.mu.Unlock()

			if idle > tw.config.IdleTimeout {
				logging.Warn("Stream idle timeout exceeded: %v", idle)
				tw.cancel(ErrIdleTimeout)
				return
			}
		case <-tw.ctx.Done():
			return
		}
	}
}

// ctxErr maps the writer context state to a streaming error.
func (tw *Writer) ctxErr() error {
	if tw.ctx.Err() == nil {
		return nil
	}
	cause := context.Cause(tw.ctx)
	switch {
	case errors.Is(cause, ErrWriteTimeout), errors.Is(cause, ErrIdleTimeout), errors.Is(cause, ErrStreamClosed):
		return cause
	default:
		return ErrClientGone
	}
}

// Close stops the idle checker and waits for any write still running in a
// goroutine to return. Further writes fail with ErrStreamClosed.
func (tw *Writer) Close() error {
	tw.mu.Lock()
	if tw.closed {
		tw.mu.Unlock()
		return nil
	}
	tw.closed = true
	tw.mu.Unlock()

	tw.cancel(ErrStreamClosed)
	tw.inflight.Wait()

	if tw.rc != nil {
		return tw.rc.SetWriteDeadline(time.Time{})
	}
	return nil
}

// Stats returns the bytes written and the time since the writer was created.
func (tw *Writer) Stats() (written int64, elapsed time.Duration) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.written, time.Since(tw.start)
}

// Copy streams r to w under the timeouts in config and returns the number
// of bytes delivered. Delivered bytes are added to the served-bytes metric
// even when the copy fails part way.
func Copy(ctx context.Context, w io.Writer, r io.Reader, config Config) (int64, error) {
	tw := NewWriter(ctx, w, config)
	defer func() {
		if err := tw.Close(); err != nil {
			logging.Warn("Failed to close stream writer: %v", err)
		}
	}()

	_, err := io.Copy(tw, r)

	written, elapsed := tw.Stats()
	metrics.AssetBytesServed.Add(float64(written))
	logging.Debug("Stream completed: %d bytes in %v", written, elapsed)

	return written, err
}
