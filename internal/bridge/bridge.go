package bridge

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"stockadvisor/internal/metrics"
	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

// Config controls how the tool server is launched and called.
type Config struct {
	Command string
	Args    []string
	// Env is appended to the parent environment.
	Env            []string
	StartupTimeout time.Duration
	// CallTimeout bounds one tool round trip; 0 means only the caller's context applies.
	CallTimeout   time.Duration
	ClientName    string
	ClientVersion string
}

type state int

const (
	stateIdle state = iota
	stateStarting
	stateRunning
	stateClosed
)

type request struct {
	ctx   context.Context
	name  string
	args  map[string]any
	reply chan reply
}

type reply struct {
	result *mcp.CallToolResult
	err    error
}

// Bridge connects blocking callers to the MCP tool server. A single worker
// goroutine owns the client; calls are queued FIFO on a channel.
type Bridge struct {
	cfg     Config
	dial    Dialer
	log     *logger.Logger
	tracker errors.Tracker

	mu          sync.RWMutex
	state       state
	descriptors map[string]Descriptor
	order       []string
	cancelStart context.CancelFunc

	requests  chan request
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// Option customises a Bridge.
type Option func(*Bridge)

// WithDialer replaces the stdio subprocess dialer, e.g. with an in-process client.
func WithDialer(d Dialer) Option {
	return func(b *Bridge) { b.dial = d }
}

// WithTracker reports tool failures as breadcrumbs.
func WithTracker(t errors.Tracker) Option {
	return func(b *Bridge) { b.tracker = t }
}

// New creates an idle bridge. Nothing is launched until Start.
func New(cfg Config, log *logger.Logger, opts ...Option) *Bridge {
	if cfg.StartupTimeout <= 0 {
		cfg.StartupTimeout = 10 * time.Second
	}
	if cfg.ClientName == "" {
		cfg.ClientName = "stockadvisor"
	}
	if cfg.ClientVersion == "" {
		cfg.ClientVersion = "dev"
	}

	b := &Bridge{
		cfg:         cfg,
		log:         log.With("component", "bridge"),
		descriptors: map[string]Descriptor{},
		requests:    make(chan request),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
	b.dial = StdioDialer(cfg.Command, cfg.Args, cfg.Env, b.log)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start launches the tool server, performs the handshake and records the
// catalog. It may be called once; a failed start leaves the bridge closed.
// The lock is not held during the handshake, and Close cancels a start in
// progress.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.state != stateIdle {
		b.mu.Unlock()
		return errors.ErrAlreadyStarted
	}
	ctx, cancel := context.WithTimeout(ctx, b.cfg.StartupTimeout)
	defer cancel()
	b.state = stateStarting
	b.cancelStart = cancel
	b.mu.Unlock()

	c, descriptors, err := b.handshake(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelStart = nil

	if err == nil && b.state != stateStarting {
		abort(c)
		err = errors.New("bridge closed during startup")
	}
	if err != nil {
		b.state = stateClosed
		b.closeOnce.Do(func() {
			close(b.done)
			close(b.stopped)
		})
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = errors.Join(errors.ErrTimeout, err)
		}
		return &errors.StartupError{Command: b.command(), Err: err}
	}

	for _, d := range descriptors {
		b.descriptors[d.Name] = d
		b.order = append(b.order, d.Name)
	}
	b.state = stateRunning
	go b.worker(c)

	b.log.Infow("Tool bridge started", "command", b.command(), "tools", b.order)
	return nil
}

func (b *Bridge) handshake(ctx context.Context) (MCPClient, []Descriptor, error) {
	c, err := b.dial(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "launch")
	}

	init := mcp.InitializeRequest{}
	init.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	init.Params.ClientInfo = mcp.Implementation{Name: b.cfg.ClientName, Version: b.cfg.ClientVersion}
	if _, err := c.Initialize(ctx, init); err != nil {
		abort(c)
		return nil, nil, errors.Wrap(err, "initialize")
	}

	listed, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		abort(c)
		return nil, nil, errors.Wrap(err, "list tools")
	}

	descriptors := make([]Descriptor, 0, len(listed.Tools))
	seen := map[string]bool{}
	for _, t := range listed.Tools {
		if seen[t.Name] {
			abort(c)
			return nil, nil, errors.Newf("duplicate tool %q", t.Name)
		}
		seen[t.Name] = true
		descriptors = append(descriptors, describe(t))
	}
	return c, descriptors, nil
}

func (b *Bridge) worker(c MCPClient) {
	defer close(b.stopped)
	for {
		select {
		case <-b.done:
			if err := c.Close(); err != nil {
				b.log.Warnw("Failed to close tool server client", "error", err)
			}
			return
		case req := <-b.requests:
			call := mcp.CallToolRequest{}
			call.Params.Name = req.name
			call.Params.Arguments = req.args
			res, err := c.CallTool(req.ctx, call)
			req.reply <- reply{result: res, err: err}
		}
	}
}

// Call invokes a tool by name and returns its concatenated text output.
func (b *Bridge) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	start := time.Now()
	text, err := b.call(ctx, name, args)

	status := "success"
	var notStarted *errors.NotStartedError
	switch {
	case errors.As(err, &notStarted):
		status = "not_started"
	case err != nil:
		status = "error"
	}
	metrics.RecordToolCall(name, status, time.Since(start))

	if err != nil && b.tracker != nil {
		b.tracker.AddBreadcrumb(ctx, err.Error(), "tool", errors.LevelWarning, map[string]interface{}{"tool": name})
	}
	return text, err
}

func (b *Bridge) call(ctx context.Context, name string, args map[string]any) (string, error) {
	b.mu.RLock()
	st := b.state
	_, known := b.descriptors[name]
	b.mu.RUnlock()

	if st != stateRunning {
		return "", &errors.NotStartedError{Tool: name}
	}
	if !known {
		return "", &errors.ToolInvocationError{Tool: name, Message: "unknown tool", Err: errors.ErrUnknownTool}
	}

	if b.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.CallTimeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return "", &errors.ToolInvocationError{Tool: name, Message: err.Error(), Err: err}
	}

	req := request{ctx: ctx, name: name, args: args, reply: make(chan reply, 1)}
	select {
	case b.requests <- req:
	case <-ctx.Done():
		return "", &errors.ToolInvocationError{Tool: name, Message: ctx.Err().Error(), Err: ctx.Err()}
	case <-b.done:
		return "", &errors.NotStartedError{Tool: name}
	}

	var rep reply
	select {
	case rep = <-req.reply:
	case <-ctx.Done():
		return "", &errors.ToolInvocationError{Tool: name, Message: ctx.Err().Error(), Err: ctx.Err()}
	}

	if rep.err != nil {
		return "", &errors.ToolInvocationError{Tool: name, Message: rep.err.Error(), Err: rep.err}
	}
	text := resultText(rep.result)
	if rep.result.IsError {
		return "", &errors.ToolInvocationError{Tool: name, Message: text}
	}
	return text, nil
}

func resultText(res *mcp.CallToolResult) string {
	if res == nil {
		return ""
	}
	parts := make([]string, 0, len(res.Content))
	for _, c := range res.Content {
		switch tc := c.(type) {
		case mcp.TextContent:
			parts = append(parts, tc.Text)
		case *mcp.TextContent:
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// Descriptors returns the discovered catalog in listing order.
func (b *Bridge) Descriptors() []Descriptor {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Descriptor, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, b.descriptors[name])
	}
	return out
}

// Has reports whether the catalog contains name.
func (b *Bridge) Has(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.descriptors[name]
	return ok
}

// Size is the number of discovered tools.
func (b *Bridge) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.descriptors)
}

// Started reports whether the bridge is accepting calls.
func (b *Bridge) Started() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state == stateRunning
}

// Close stops the worker and terminates the tool server. Safe to call repeatedly.
func (b *Bridge) Close() error {
	b.mu.Lock()
	wasRunning := b.state == stateRunning
	b.state = stateClosed
	if b.cancelStart != nil {
		b.cancelStart()
	}
	b.mu.Unlock()

	b.closeOnce.Do(func() {
		close(b.done)
		if !wasRunning {
			close(b.stopped)
		}
	})
	<-b.stopped
	return nil
}

func (b *Bridge) command() string {
	return strings.TrimSpace(b.cfg.Command + " " + strings.Join(b.cfg.Args, " "))
}
