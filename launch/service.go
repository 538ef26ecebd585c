package launch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
)

// ServiceOption adjusts a driver Service before its process starts.
type ServiceOption func(*Service) error

// claimDisplay fails when an earlier option already chose where the browser
// draws.
func (s *Service) claimDisplay() error {
	switch {
	case s.display != "":
		return fmt.Errorf("driver display already set to :%s", s.display)
	case s.xauthPath != "":
		return fmt.Errorf("driver xauth file already set to %s", s.xauthPath)
	case s.xvfb != nil:
		return errors.New("driver already owns an Xvfb")
	}
	return nil
}

// Display points the browser at an existing X server. xauthPath may be empty
// when the server needs no cookie.
func Display(d, xauthPath string) ServiceOption {
	return func(s *Service) error {
		if err := s.claimDisplay(); err != nil {
			return err
		}
		if !isDisplay(d) {
			return fmt.Errorf("display %q is not of the form N or N.M", d)
		}
		s.display, s.xauthPath = d, xauthPath
		return nil
	}
}

// isDisplay reports whether disp looks like "N" or "N.M".
func isDisplay(disp string) bool {
	parts := strings.Split(disp, ".")
	if len(parts) > 2 {
		return false
	}
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err != nil {
			return false
		}
	}
	return true
}

// StartFrameBuffer runs the browser inside a private Xvfb with its default
// screen. Stop tears the Xvfb down with the driver.
func StartFrameBuffer() ServiceOption {
	return StartFrameBufferWithOptions(FrameBufferOptions{})
}

// FrameBufferOptions tunes the Xvfb started for a headed browser run.
type FrameBufferOptions struct {
	// ScreenSize is "WxH" or "WxHxD", e.g. "1024x768x24".
	ScreenSize string
}

// StartFrameBufferWithOptions is StartFrameBuffer with a chosen screen.
func StartFrameBufferWithOptions(options FrameBufferOptions) ServiceOption {
	return func(s *Service) error {
		if err := s.claimDisplay(); err != nil {
			return err
		}
		fb, err := NewFrameBufferWithOptions(options)
		if err != nil {
			return fmt.Errorf("starting Xvfb: %v", err)
		}
		s.xvfb = fb
		s.display, s.xauthPath = fb.Display, fb.AuthPath
		return nil
	}
}

// Output copies the driver's stdout and stderr to w.
func Output(w io.Writer) ServiceOption {
	return func(s *Service) error {
		s.output = w
		return nil
	}
}

// Service is a geckodriver or ChromeDriver process the selenium suite talks
// to over HTTP.
type Service struct {
	addr string
	cmd  *exec.Cmd
	// shutdownPath is requested on Stop when the driver has one. An empty
	// path means the process is killed.
	shutdownPath string

	display, xauthPath string
	xvfb               *FrameBuffer

	output io.Writer
}

// Addr is the base URL a WebDriver client should dial.
func (s *Service) Addr() string {
	return s.addr
}

// FrameBuffer is the Xvfb the service started, or nil.
func (s *Service) FrameBuffer() *FrameBuffer {
	return s.xvfb
}

// NewChromeDriverService runs the chromedriver binary at path on port and
// returns once it answers /status. Its endpoints live under /wd/hub.
func NewChromeDriverService(path string, port int, opts ...ServiceOption) (*Service, error) {
	cmd := newExecCommand(path, "--port="+strconv.Itoa(port), "--url-base=wd/hub", "--verbose")
	return launchDriver(cmd, fmt.Sprintf("http://localhost:%d/wd/hub", port), "/shutdown", opts)
}

// NewGeckoDriverService runs the geckodriver binary at path on port and
// returns once it answers /status.
func NewGeckoDriverService(path string, port int, opts ...ServiceOption) (*Service, error) {
	cmd := newExecCommand(path, "--port", strconv.Itoa(port))
	return launchDriver(cmd, fmt.Sprintf("http://localhost:%d", port), "", opts)
}

func launchDriver(cmd *exec.Cmd, addr, shutdownPath string, opts []ServiceOption) (*Service, error) {
	s := &Service{addr: addr, shutdownPath: shutdownPath}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.stopFrameBuffer()
			return nil, err
		}
	}
	cmd.Stdout, cmd.Stderr = s.output, s.output
	cmd.Env = append(os.Environ(), cmd.Env...)
	if s.display != "" {
		cmd.Env = append(cmd.Env, "DISPLAY=:"+s.display)
	}
	if s.xauthPath != "" {
		cmd.Env = append(cmd.Env, "XAUTHORITY="+s.xauthPath)
	}
	s.cmd = cmd

	if err := cmd.Start(); err != nil {
		s.stopFrameBuffer()
		return nil, err
	}
	if err := s.waitReady(); err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		s.stopFrameBuffer()
		return nil, err
	}
	glog.V(1).Infof("driver ready at %s", s.addr)
	return s, nil
}

// statusPollInterval is how often waitReady asks the driver for /status.
var statusPollInterval = 250 * time.Millisecond

// shutdownTimeout bounds both the shutdown request and the wait for the
// driver to exit before it is killed.
var shutdownTimeout = 5 * time.Second

func (s *Service) waitReady() error {
	client := &http.Client{Timeout: statusPollInterval}
	for deadline := time.Now().Add(DefaultStartTimeout); time.Now().Before(deadline); {
		time.Sleep(statusPollInterval)
		resp, err := client.Get(s.addr + "/status")
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return nil
		}
	}
	return fmt.Errorf("driver at %s did not answer /status within %v", s.addr, DefaultStartTimeout)
}

func (s *Service) stopFrameBuffer() {
	if s.xvfb == nil {
		return
	}
	if err := s.xvfb.Stop(); err != nil {
		glog.Warningf("stopping Xvfb on :%s: %v", s.xvfb.Display, err)
	}
}

// askShutdown requests the driver's shutdown endpoint and reports whether
// the driver accepted it.
func (s *Service) askShutdown() bool {
	if s.shutdownPath == "" {
		return false
	}
	client := &http.Client{Timeout: shutdownTimeout}
	resp, err := client.Get(s.addr + s.shutdownPath)
	if err != nil {
		glog.Warningf("driver shutdown request: %v", err)
		return false
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		glog.Warningf("driver shutdown request returned %s", resp.Status)
		return false
	}
	return true
}

// Stop ends the driver process and the Xvfb it started. A driver that
// refuses the shutdown request or lingers after it is killed.
func (s *Service) Stop() error {
	exited := make(chan error, 1)
	go func() { exited <- s.cmd.Wait() }()

	if !s.askShutdown() {
		s.cmd.Process.Kill()
	}
	var err error
	select {
	case err = <-exited:
	case <-time.After(shutdownTimeout):
		glog.Warningf("driver at %s still running after %v; killing it", s.addr, shutdownTimeout)
		s.cmd.Process.Kill()
		err = <-exited
	}
	if err != nil && !isKilled(err) {
		return err
	}
	if s.xvfb != nil {
		return s.xvfb.Stop()
	}
	return nil
}

func isKilled(err error) bool {
	return err.Error() == "signal: killed"
}

// FrameBuffer is an Xvfb process that headed browser runs draw into.
type FrameBuffer struct {
	// Display is the display number without its leading colon.
	Display string
	// AuthPath is the Xauthority file holding the cookie for Display.
	AuthPath string

	cmd *exec.Cmd
}

// NewFrameBuffer starts an Xvfb with its default screen.
func NewFrameBuffer() (*FrameBuffer, error) {
	return NewFrameBufferWithOptions(FrameBufferOptions{})
}

var screenSizeExpression = regexp.MustCompile(`^\d+x\d+(?:x\d+)?$`)

// xvfbDisplayTimeout bounds how long Xvfb may take to pick a display.
const xvfbDisplayTimeout = 3 * time.Second

// NewFrameBufferWithOptions starts an Xvfb, waits for it to report its
// display and writes a trusted cookie for that display with xauth.
func NewFrameBufferWithOptions(options FrameBufferOptions) (*FrameBuffer, error) {
	if options.ScreenSize != "" && !screenSizeExpression.MatchString(options.ScreenSize) {
		return nil, fmt.Errorf("screen size %q is not of the form WxH or WxHxD", options.ScreenSize)
	}

	auth, err := os.CreateTemp("", "browsercompare-xvfb")
	if err != nil {
		return nil, err
	}
	fb := &FrameBuffer{AuthPath: auth.Name()}
	if err := auth.Close(); err != nil {
		return nil, err
	}

	display, err := fb.startXvfb(options)
	if err != nil {
		os.Remove(fb.AuthPath)
		return nil, err
	}
	fb.Display = display

	xauth := newExecCommand("xauth", "generate", ":"+display, ".", "trusted")
	xauth.Stdout, xauth.Stderr = os.Stdout, os.Stderr
	xauth.Env = append(xauth.Env, "XAUTHORITY="+fb.AuthPath)
	if err := xauth.Run(); err != nil {
		fb.Stop()
		return nil, fmt.Errorf("xauth for :%s: %v", display, err)
	}
	return fb, nil
}

// startXvfb runs Xvfb with -displayfd pointed at a pipe and returns the
// display number it writes there.
func (f *FrameBuffer) startXvfb(options FrameBufferOptions) (string, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}
	defer r.Close()

	args := []string{"-displayfd", "3", "-nolisten", "tcp"}
	if options.ScreenSize != "" {
		args = append(args, "-screen", "0", options.ScreenSize)
	}
	f.cmd = newExecCommand("Xvfb", args...)
	f.cmd.ExtraFiles = []*os.File{w}
	f.cmd.Env = append(f.cmd.Env, "XAUTHORITY="+f.AuthPath)
	err = f.cmd.Start()
	w.Close()
	if err != nil {
		return "", err
	}

	type line struct {
		s   string
		err error
	}
	got := make(chan line, 1)
	go func() {
		s, err := bufio.NewReader(r).ReadString('\n')
		got <- line{strings.TrimSpace(s), err}
	}()

	select {
	case l := <-got:
		if l.err != nil {
			f.kill()
			return "", l.err
		}
		if _, err := strconv.Atoi(l.s); err != nil {
			f.kill()
			return "", fmt.Errorf("Xvfb wrote %q instead of a display number", l.s)
		}
		return l.s, nil
	case <-time.After(xvfbDisplayTimeout):
		f.kill()
		return "", fmt.Errorf("Xvfb reported no display within %v", xvfbDisplayTimeout)
	}
}

func (f *FrameBuffer) kill() {
	f.cmd.Process.Kill()
	f.cmd.Wait()
}

// Stop kills Xvfb and removes its Xauthority file.
func (f FrameBuffer) Stop() error {
	if err := f.cmd.Process.Kill(); err != nil {
		return err
	}
	os.Remove(f.AuthPath)
	if err := f.cmd.Wait(); err != nil && !isKilled(err) {
		return err
	}
	return nil
}
