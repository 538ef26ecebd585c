// Package withplaywright runs the comparison scenarios through
// github.com/playwright-community/playwright-go, driving Playwright's own
// Firefox build. The RemoteBrowser scenario connects to a Chromium server
// started by testdata/playwright-server.js.
package withplaywright

import (
	"fmt"
	"testing"

	"github.com/golang/glog"
	"github.com/playwright-community/playwright-go"

	"github.com/browsercompare/browsercompare/internal/harness"
)

// Fixture manages the Playwright driver and a launched Firefox.
type Fixture struct {
	PW      *playwright.Playwright
	Browser playwright.Browser

	wait float64
}

// LaunchOptions returns the Firefox launch options for c.
func LaunchOptions(c harness.Config) playwright.BrowserTypeLaunchOptions {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(c.Headless),
	}
	if c.Binary != "" {
		opts.ExecutablePath = playwright.String(c.Binary)
	}
	return opts
}

// WithSOCKSProxy adds the SOCKS5 proxy at addr to opts, including requests
// for localhost.
func WithSOCKSProxy(opts playwright.BrowserTypeLaunchOptions, addr string) playwright.BrowserTypeLaunchOptions {
	opts.Proxy = &playwright.Proxy{Server: "socks5://" + addr}
	if opts.FirefoxUserPrefs == nil {
		opts.FirefoxUserPrefs = make(map[string]interface{})
	}
	for k, v := range harness.FirefoxProxyPrefs() {
		opts.FirefoxUserPrefs[k] = v
	}
	return opts
}

// NewFixture starts the Playwright driver and launches Firefox. Browsers are
// installed first unless skipInstall is set.
func NewFixture(c harness.Config, skipInstall bool) (*Fixture, error) {
	pw, err := playwright.Run(&playwright.RunOptions{
		Browsers:            []string{"firefox"},
		SkipInstallBrowsers: skipInstall,
		Verbose:             testing.Verbose(),
	})
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %v", err)
	}
	browser, err := pw.Firefox.Launch(LaunchOptions(c))
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launching firefox: %v", err)
	}
	glog.Infof("Playwright launched Firefox %s", browser.Version())
	return &Fixture{PW: pw, Browser: browser, wait: float64(c.Wait.Milliseconds())}, nil
}

// NewContext creates a browser context with isolated cookies and storage. It
// is closed when t finishes.
func (f *Fixture) NewContext(t testing.TB, opts ...playwright.BrowserNewContextOptions) playwright.BrowserContext {
	t.Helper()
	return newContext(t, f.Browser, f.wait, opts...)
}

// NewPage opens a page in a fresh context.
func (f *Fixture) NewPage(t testing.TB, opts ...playwright.BrowserNewContextOptions) playwright.Page {
	t.Helper()
	return newPage(t, f.NewContext(t, opts...))
}

// Close releases all Playwright resources.
func (f *Fixture) Close() error {
	if err := f.Browser.Close(); err != nil {
		glog.Warningf("Error closing the browser: %v", err)
	}
	return f.PW.Stop()
}

func newContext(t testing.TB, b playwright.Browser, wait float64, opts ...playwright.BrowserNewContextOptions) playwright.BrowserContext {
	t.Helper()
	ctx, err := b.NewContext(opts...)
	if err != nil {
		t.Fatalf("browser.NewContext() returned error: %v", err)
	}
	ctx.SetDefaultTimeout(wait)
	t.Cleanup(func() {
		if err := ctx.Close(); err != nil {
			t.Errorf("context.Close() returned error: %v", err)
		}
	})
	return ctx
}

func newPage(t testing.TB, ctx playwright.BrowserContext) playwright.Page {
	t.Helper()
	page, err := ctx.NewPage()
	if err != nil {
		t.Fatalf("context.NewPage() returned error: %v", err)
	}
	return page
}

// Dialog is what a dialog handler saw.
type Dialog struct {
	Type, Message string
}

// HandleDialogs answers every dialog of page, accepting or dismissing it, and
// reports each one on the returned channel.
func HandleDialogs(page playwright.Page, accept bool) <-chan Dialog {
	seen := make(chan Dialog, 16)
	page.OnDialog(func(d playwright.Dialog) {
		var err error
		if accept {
			err = d.Accept()
		} else {
			err = d.Dismiss()
		}
		if err != nil {
			glog.Warningf("Error answering %s dialog: %v", d.Type(), err)
		}
		select {
		case seen <- Dialog{d.Type(), d.Message()}:
		default:
		}
	})
	return seen
}
