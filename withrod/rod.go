// Package withrod runs the comparison scenarios through github.com/go-rod/rod,
// driving Chromium over the DevTools protocol with rod's fluent Must API.
package withrod

import (
	"fmt"
	"testing"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/golang/glog"
	"github.com/ysmood/gson"

	"github.com/browsercompare/browsercompare/internal/harness"
)

// NewLauncher returns a Chromium launcher for c. If proxyAddr is not empty all
// traffic, including to loopback addresses, goes through the SOCKS5 proxy
// listening there.
func NewLauncher(c harness.Config, proxyAddr string) *launcher.Launcher {
	l := launcher.New().
		Headless(c.Headless).
		NoSandbox(true).
		Leakless(false)
	if c.Binary != "" {
		l = l.Bin(c.Binary)
	}
	if proxyAddr != "" {
		l = l.Proxy("socks5://"+proxyAddr).Set("proxy-bypass-list", "<-loopback>")
	}
	return l
}

// Open launches Chromium and connects to it. The browser is closed and the
// process killed when t finishes.
func Open(t testing.TB, c harness.Config, proxyAddr string) *rod.Browser {
	t.Helper()
	l := NewLauncher(c, proxyAddr)
	u, err := l.Launch()
	if err != nil {
		t.Fatalf("launching Chromium returned error: %v", err)
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		t.Fatalf("connecting to Chromium at %s returned error: %v", u, err)
	}
	t.Cleanup(func() {
		if err := b.Close(); err != nil {
			glog.Warningf("Error closing Chromium: %v", err)
		}
		l.Kill()
		l.Cleanup()
	})
	return b
}

// HandleNextDialog answers the next dialog page opens and reports it on the
// returned channel. It has to be called before the action that opens the
// dialog, which blocks until the dialog is answered.
func HandleNextDialog(page *rod.Page, accept bool) <-chan *proto.PageJavascriptDialogOpening {
	wait, handle := page.HandleDialog()
	seen := make(chan *proto.PageJavascriptDialogOpening, 1)
	go func() {
		e := wait()
		if err := handle(&proto.PageHandleJavaScriptDialog{Accept: accept}); err != nil {
			glog.Warningf("Error answering %s dialog: %v", e.Type, err)
		}
		seen <- e
	}()
	return seen
}

// Eval runs the JavaScript function js in page and returns its value.
func Eval(page *rod.Page, js string, args ...interface{}) (gson.JSON, error) {
	res, err := page.Eval(js, args...)
	if err != nil {
		return gson.New(nil), fmt.Errorf("evaluating %q: %v", js, err)
	}
	return res.Value, nil
}

// Value returns the live value property of el.
func Value(el *rod.Element) (string, error) {
	v, err := el.Property("value")
	if err != nil {
		return "", err
	}
	return v.Str(), nil
}
