// Package launch starts the helper processes the library suites depend on
// (the fixture server, WebDriver services, a Playwright browser server, an X
// frame buffer) and waits until each of them is ready to be used.
package launch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
)

// newExecCommand is replaced in tests.
var newExecCommand = exec.Command

// DefaultStartTimeout bounds how long FixtureProcess and PlaywrightServer
// wait for their process to announce itself when ctx has no deadline.
const DefaultStartTimeout = 30 * time.Second

var (
	// fixtureBanner matches the line printed by the fixture server, and by the
	// Flask development server it imitates.
	fixtureBanner = regexp.MustCompile(`^.* Running on (http://[\d.:]+/).*$`)
	// wsEndpoint matches the endpoint printed by Playwright's launchServer.
	wsEndpoint = regexp.MustCompile(`^(wss?://\S+)$`)
)

// Process is a subprocess started by WaitForOutput. Its remaining output is
// drained in the background so that the process never blocks on a full pipe.
type Process struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

// Pid returns the operating system process ID.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Done is closed once the process has exited.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Stop kills the process and waits for it to exit.
func (p *Process) Stop() error {
	select {
	case <-p.done:
		return p.exitErr()
	default:
	}
	if err := p.cmd.Process.Kill(); err != nil {
		return err
	}
	<-p.done
	return p.exitErr()
}

func (p *Process) exitErr() error {
	if p.err != nil && p.err.Error() != "signal: killed" {
		return p.err
	}
	return nil
}

// WaitForOutput starts cmd and reads its standard output and standard error
// line by line until a line matches pattern. It returns the first
// parenthesized submatch of that line (or the whole match if the pattern has
// no groups) together with the running process.
//
// If the process exits or ctx is done before a matching line is printed, the
// process is killed and an error is returned.
func WaitForOutput(ctx context.Context, cmd *exec.Cmd, pattern *regexp.Regexp) (string, *Process, error) {
	name := filepath.Base(cmd.Path)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", nil, err
	}
	if err := cmd.Start(); err != nil {
		return "", nil, fmt.Errorf("starting %s: %v", name, err)
	}

	lines := make(chan string)
	var wg sync.WaitGroup
	for _, r := range []io.Reader{stdout, stderr} {
		wg.Add(1)
		go func(r io.Reader) {
			defer wg.Done()
			// ReadString keeps draining the pipe whatever the line length.
			br := bufio.NewReader(r)
			for {
				l, err := br.ReadString('\n')
				if l != "" {
					lines <- strings.TrimRight(l, "\r\n")
				}
				if err != nil {
					return
				}
			}
		}(r)
	}
	go func() {
		wg.Wait()
		close(lines)
	}()

	p := &Process{cmd: cmd, done: make(chan struct{})}
	reap := func() {
		for l := range lines {
			glog.V(2).Infof("%s: %s", name, l)
		}
		p.err = cmd.Wait()
		close(p.done)
	}

	for {
		select {
		case l, ok := <-lines:
			if !ok {
				err := cmd.Wait()
				return "", nil, fmt.Errorf("%s exited before printing a line matching %q: %v", name, pattern, err)
			}
			glog.V(1).Infof("%s: %s", name, l)
			m := pattern.FindStringSubmatch(l)
			if m == nil {
				continue
			}
			go reap()
			if len(m) > 1 {
				return m[1], p, nil
			}
			return m[0], p, nil
		case <-ctx.Done():
			cmd.Process.Kill()
			go reap()
			<-p.done
			return "", nil, fmt.Errorf("waiting for %s to print a line matching %q: %w", name, pattern, ctx.Err())
		}
	}
}

func withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, DefaultStartTimeout)
}

// FixtureProcess runs the fixture server binary and returns the URL it
// announces, including the trailing slash.
func FixtureProcess(ctx context.Context, binary string, args ...string) (string, *Process, error) {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()
	return WaitForOutput(ctx, newExecCommand(binary, args...), fixtureBanner)
}

// PlaywrightServer runs a Node.js script that calls launchServer on one of
// Playwright's browser types and prints the resulting WebSocket endpoint.
func PlaywrightServer(ctx context.Context, node, script string) (string, *Process, error) {
	if node == "" {
		return "", nil, errors.New("no node binary given")
	}
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()
	return WaitForOutput(ctx, newExecCommand(node, script), wsEndpoint)
}
