package bridge

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

// MCPClient is the subset of the mcp-go client the bridge drives.
type MCPClient interface {
	Initialize(ctx context.Context, request mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, request mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// Dialer opens a connection to the tool server.
type Dialer func(ctx context.Context) (MCPClient, error)

// killer is implemented by clients that own a subprocess.
type killer interface {
	Kill() error
}

// defaultCloseGrace is how long a closing tool server may take to exit on
// its own after stdin is closed.
const defaultCloseGrace = 2 * time.Second

// StdioDialer launches command as a subprocess and talks MCP over its stdio.
// The child inherits the environment plus env. Its stderr is relayed to log.
func StdioDialer(command string, args, env []string, log *logger.Logger) Dialer {
	return func(ctx context.Context) (MCPClient, error) {
		pc := &processClient{grace: defaultCloseGrace}

		c, err := client.NewStdioMCPClientWithOptions(command, append(os.Environ(), env...), args,
			transport.WithCommandFunc(func(_ context.Context, command string, env []string, args []string) (*exec.Cmd, error) {
				cmd := exec.Command(command, args...)
				cmd.Env = env
				pc.setCmd(cmd)
				return cmd, nil
			}),
		)
		if err != nil {
			return nil, err
		}
		pc.Client = c

		if stderr, ok := client.GetStderr(c); ok {
			go func() {
				scanner := bufio.NewScanner(stderr)
				for scanner.Scan() {
					log.Debugw("tool server", "line", scanner.Text())
				}
			}()
		}
		return pc, nil
	}
}

// processClient is a stdio client that can terminate its tool server. The
// mcp-go transport waits for the child on Close, so a child that ignores
// stdin would otherwise hang the caller.
type processClient struct {
	*client.Client
	grace time.Duration

	mu     sync.Mutex
	cmd    *exec.Cmd
	killed bool
}

func (p *processClient) setCmd(cmd *exec.Cmd) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cmd = cmd
}

// Kill terminates the tool server immediately.
func (p *processClient) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}
	p.killed = true
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return errors.Wrap(err, "kill tool server")
	}
	return nil
}

// Close closes stdin and waits up to the grace period for the tool server
// to exit, then kills it.
func (p *processClient) Close() error {
	done := make(chan error, 1)
	go func() { done <- p.Client.Close() }()

	var err error
	select {
	case err = <-done:
	case <-time.After(p.grace):
		if kerr := p.Kill(); kerr != nil {
			return kerr
		}
		err = <-done
	}

	p.mu.Lock()
	killed := p.killed
	p.mu.Unlock()
	if killed {
		return nil
	}
	return err
}

// abort tears a client down without waiting on a tool server that may
// never answer.
func abort(c MCPClient) {
	if k, ok := c.(killer); ok {
		_ = k.Kill()
	}
	_ = c.Close()
}
