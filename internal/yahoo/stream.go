package yahoo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"yfgo/client"
)

// StreamMethod selects how Stream feeds its receiver (spec §4.13).
type StreamMethod int

const (
	StreamWebSocket StreamMethod = iota
	StreamPolling
	StreamWebSocketWithFallback
)

// QuoteUpdate is the stream's output record (spec §3).
type QuoteUpdate struct {
	Symbol        string
	LastPrice     *float64
	PreviousClose *float64
	Currency      string
	Ts            int64
}

// StreamConfig configures a Stream (spec §4.13).
type StreamConfig struct {
	Symbols    []string
	Method     StreamMethod
	Interval   time.Duration
	DiffOnly   bool
	// FallbackGrace bounds how long WebSocketWithFallback waits for the
	// first frame before downgrading to polling (spec §4.13.3: "the first
	// N seconds yield no frames").
	FallbackGrace time.Duration
}

// StreamHandle is the caller-facing control surface: stop() drains
// cooperatively, abort() cancels immediately (spec §4.13.4).
type StreamHandle struct {
	cancel   context.CancelFunc
	stopOnce chan struct{}
	done     chan struct{}
	stopped  sync.Once
}

// Stop signals a cooperative shutdown and blocks until the background task
// has exited.
func (h *StreamHandle) Stop() {
	h.stopped.Do(func() { close(h.stopOnce) })
	<-h.done
}

// Abort cancels the background task immediately, which may drop an
// in-flight frame or tick.
func (h *StreamHandle) Abort() {
	h.cancel()
	<-h.done
}

// Stream implements C16: starts a single background task that feeds
// QuoteUpdates onto a bounded, single-consumer channel until stopped,
// aborted, or the parent context is cancelled.
func Stream(ctx context.Context, c *client.Client, cfg StreamConfig) (*StreamHandle, <-chan QuoteUpdate, error) {
	if len(cfg.Symbols) == 0 {
		return nil, nil, fmt.Errorf("%w: no symbols", client.ErrInvalidParams)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.FallbackGrace <= 0 {
		cfg.FallbackGrace = 5 * time.Second
	}

	runCtx, cancel := context.WithCancel(ctx)
	out := make(chan QuoteUpdate, 256)
	handle := &StreamHandle{
		cancel:   cancel,
		stopOnce: make(chan struct{}),
		done:     make(chan struct{}),
	}

	memo := newDiffMemo()

	go func() {
		defer close(handle.done)
		defer close(out)
		defer cancel()

		switch cfg.Method {
		case StreamPolling:
			runPolling(runCtx, c, cfg, memo, out, handle.stopOnce)
		case StreamWebSocket:
			runWebSocket(runCtx, c, cfg, memo, out, handle.stopOnce)
		default:
			runWebSocketWithFallback(runCtx, c, cfg, memo, out, handle.stopOnce)
		}
	}()

	return handle, out, nil
}

// diffMemo is the per-symbol last-observed-price memo behind diff_only
// filtering (spec §4.13.1 step 2), shared by the polling and WebSocket paths.
type diffMemo struct {
	mu   sync.Mutex
	last map[string]float64
}

func newDiffMemo() *diffMemo {
	return &diffMemo{last: make(map[string]float64)}
}

// shouldEmit reports whether lp is a new value for symbol under diff_only
// semantics, and records it either way it's worth remembering.
func (m *diffMemo) shouldEmit(diffOnly bool, symbol string, lp float64) bool {
	if !diffOnly {
		return true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.last[symbol]
	if ok && prev == lp {
		return false
	}
	m.last[symbol] = lp
	return true
}

func runPolling(ctx context.Context, c *client.Client, cfg StreamConfig, memo *diffMemo, out chan<- QuoteUpdate, stop <-chan struct{}) {
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			quotes, err := GetQuotes(ctx, c, cfg.Symbols)
			if err != nil {
				if debugEnabled() {
					debugLog("stream: poll fetch failed: %v", err)
				}
				continue
			}
			now := time.Now().Unix()
			for _, symbol := range cfg.Symbols {
				q, ok := quotes[symbol]
				if !ok {
					continue
				}
				lp, ok := lastPriceOf(q)
				if !ok {
					continue
				}
				if !memo.shouldEmit(cfg.DiffOnly, q.Symbol, lp) {
					continue
				}
				update := quoteUpdateFromSnapshot(q, now)
				select {
				case out <- update:
				case <-ctx.Done():
					return
				case <-stop:
					return
				}
			}
		}
	}
}

func lastPriceOf(q QuoteSnapshot) (float64, bool) {
	if q.Price != nil {
		f, _ := q.Price.Amount.Float64()
		return f, true
	}
	if q.PreviousClose != nil {
		f, _ := q.PreviousClose.Amount.Float64()
		return f, true
	}
	return 0, false
}

func quoteUpdateFromSnapshot(q QuoteSnapshot, ts int64) QuoteUpdate {
	var last, prev *float64
	if q.Price != nil {
		f, _ := q.Price.Amount.Float64()
		last = &f
	}
	if q.PreviousClose != nil {
		f, _ := q.PreviousClose.Amount.Float64()
		prev = &f
	}
	return QuoteUpdate{
		Symbol:        q.Symbol,
		LastPrice:     last,
		PreviousClose: prev,
		Currency:      q.Currency,
		Ts:            ts,
	}
}

// subscribeFrame is the spec §4.13.2 step 2 wire shape: a JSON object
// enumerating symbols under "subscribe".
type subscribeFrame struct {
	Subscribe []string `json:"subscribe"`
}

func runWebSocket(ctx context.Context, c *client.Client, cfg StreamConfig, memo *diffMemo, out chan<- QuoteUpdate, stop <-chan struct{}) {
	conn, err := dialStream(ctx, c)
	if err != nil {
		if debugEnabled() {
			debugLog("stream: websocket dial failed: %v", err)
		}
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(subscribeFrame{Subscribe: cfg.Symbols}); err != nil {
		if debugEnabled() {
			debugLog("stream: websocket subscribe failed: %v", err)
		}
		return
	}

	readWebSocketFrames(ctx, conn, cfg, memo, out, stop, nil)
}

// readWebSocketFrames is the shared frame-reading loop for both the
// WebSocket-only and WebSocketWithFallback paths. firstFrame, when non-nil,
// is signaled exactly once on the first successfully decoded frame so the
// fallback path knows the handshake is alive.
func readWebSocketFrames(ctx context.Context, conn *websocket.Conn, cfg StreamConfig, memo *diffMemo, out chan<- QuoteUpdate, stop <-chan struct{}, firstFrame chan<- struct{}) {
	msgCh := make(chan []byte)
	errCh := make(chan error, 1)

	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				errCh <- err
				return
			}
			select {
			case msgCh <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	signaledFirst := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case err := <-errCh:
			if debugEnabled() {
				debugLog("stream: websocket read error: %v", err)
			}
			return
		case msg := <-msgCh:
			update, ok := decodeStreamFrame(msg)
			if !ok {
				continue
			}
			if firstFrame != nil && !signaledFirst {
				signaledFirst = true
				close(firstFrame)
			}
			if !memo.shouldEmit(cfg.DiffOnly, update.Symbol, dereferencedLast(update)) {
				continue
			}
			select {
			case out <- update:
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}
}

func dereferencedLast(u QuoteUpdate) float64 {
	if u.LastPrice != nil {
		return *u.LastPrice
	}
	if u.PreviousClose != nil {
		return *u.PreviousClose
	}
	return 0
}

func runWebSocketWithFallback(ctx context.Context, c *client.Client, cfg StreamConfig, memo *diffMemo, out chan<- QuoteUpdate, stop <-chan struct{}) {
	conn, err := dialStream(ctx, c)
	if err != nil {
		if debugEnabled() {
			debugLog("stream: websocket dial failed, falling back to polling: %v", err)
		}
		runPolling(ctx, c, cfg, memo, out, stop)
		return
	}

	if err := conn.WriteJSON(subscribeFrame{Subscribe: cfg.Symbols}); err != nil {
		conn.Close()
		if debugEnabled() {
			debugLog("stream: websocket subscribe failed, falling back to polling: %v", err)
		}
		runPolling(ctx, c, cfg, memo, out, stop)
		return
	}

	wsCtx, wsCancel := context.WithCancel(ctx)
	firstFrame := make(chan struct{})
	wsDone := make(chan struct{})

	go func() {
		defer close(wsDone)
		readWebSocketFrames(wsCtx, conn, cfg, memo, out, stop, firstFrame)
	}()

	select {
	case <-firstFrame:
		// Frames are flowing; stay on WebSocket for the rest of the run.
		<-wsDone
		conn.Close()
	case <-time.After(cfg.FallbackGrace):
		if debugEnabled() {
			debugLog("stream: no frames within %s, downgrading to polling", cfg.FallbackGrace)
		}
		wsCancel()
		<-wsDone
		conn.Close()
		runPolling(ctx, c, cfg, memo, out, stop)
	case <-wsDone:
		conn.Close()
	case <-ctx.Done():
		wsCancel()
		<-wsDone
		conn.Close()
	case <-stop:
		wsCancel()
		<-wsDone
		conn.Close()
	}
}

func dialStream(ctx context.Context, c *client.Client) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	header := make(map[string][]string)
	header["User-Agent"] = []string{c.UserAgent()}
	conn, _, err := dialer.DialContext(ctx, c.Endpoints().Stream, header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", client.ErrAPI, err)
	}
	return conn, nil
}
