// Package withchromedp runs the comparison scenarios through
// github.com/chromedp/chromedp, driving Chromium over the DevTools protocol
// with lists of actions.
package withchromedp

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/golang/glog"

	"github.com/browsercompare/browsercompare/internal/harness"
)

// BrowserTimeout bounds the lifetime of a browser started by NewBrowser.
const BrowserTimeout = time.Minute

// AllocatorOptions returns the Chromium options for c. If proxyAddr is not
// empty all traffic, including to loopback addresses, goes through the
// SOCKS5 proxy listening there.
func AllocatorOptions(c harness.Config, proxyAddr string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.NoSandbox,
		chromedp.WindowSize(1280, 1024),
		chromedp.Flag("headless", c.Headless),
	)
	if c.Binary != "" {
		opts = append(opts, chromedp.ExecPath(c.Binary))
	}
	if proxyAddr != "" {
		opts = append(opts,
			chromedp.ProxyServer("socks5://"+proxyAddr),
			chromedp.Flag("proxy-bypass-list", "<-loopback>"),
		)
	}
	return opts
}

// NewBrowser starts a fresh Chromium and returns a context for its first
// tab. Every browser has its own profile, so browsers share no state. The
// browser is shut down when t finishes.
func NewBrowser(t testing.TB, c harness.Config, proxyAddr string) context.Context {
	t.Helper()
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), AllocatorOptions(c, proxyAddr)...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(glog.V(1).Infof), chromedp.WithErrorf(glog.Errorf))
	ctx, cancelTimeout := context.WithTimeout(ctx, BrowserTimeout)
	t.Cleanup(func() {
		cancelTimeout()
		cancelCtx()
		cancelAlloc()
	})
	if err := chromedp.Run(ctx); err != nil {
		t.Fatalf("starting Chromium returned error: %v", err)
	}
	return ctx
}

// ElementByJS selects the nodes a JavaScript expression evaluates to.
func ElementByJS(js string, nodes *[]*cdp.Node) chromedp.QueryAction {
	return chromedp.Nodes(js, nodes, chromedp.ByJSPath)
}

// HandleDialogs answers every dialog of the tab behind ctx, accepting or
// dismissing it, and reports each one on the returned channel.
func HandleDialogs(ctx context.Context, accept bool) <-chan *page.EventJavascriptDialogOpening {
	seen := make(chan *page.EventJavascriptDialogOpening, 16)
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		e, ok := ev.(*page.EventJavascriptDialogOpening)
		if !ok {
			return
		}
		// The listener must not block, and answering is a round trip.
		go func() {
			if err := chromedp.Run(ctx, page.HandleJavaScriptDialog(accept)); err != nil {
				glog.Warningf("Error answering %s dialog: %v", e.Type, err)
			}
			select {
			case seen <- e:
			default:
			}
		}()
	})
	return seen
}

// DismissDialogs dismisses every dialog of the tab behind ctx.
func DismissDialogs(ctx context.Context) {
	HandleDialogs(ctx, false)
}

func basicAuthHeader(user, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}

// BasicAuth sends HTTP basic auth credentials with every following request.
func BasicAuth(user, password string) chromedp.Tasks {
	return chromedp.Tasks{
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{
			"Authorization": basicAuthHeader(user, password),
		}),
	}
}
