// Package withagouti runs the comparison scenarios through
// github.com/sclevine/agouti, driving Chrome with ChromeDriver. Assertions
// use gomega and the agouti matchers, which retry lazily evaluated
// selections.
package withagouti

import (
	"testing"

	"github.com/sclevine/agouti"

	"github.com/browsercompare/browsercompare/internal/harness"
)

// chromeArgs returns the Chrome command line for c followed by extra.
func chromeArgs(c harness.Config, extra ...string) []string {
	args := []string{
		// Needed for Chrome binaries that are not the default installation.
		// The sandbox requires a setuid binary.
		"--no-sandbox",
		"--window-size=1280,1024",
	}
	if c.Headless {
		args = append(args, "--headless=new")
	}
	return append(args, extra...)
}

// capabilities returns the desired capabilities shared by every page.
func capabilities() agouti.Capabilities {
	caps := agouti.NewCapabilities().Browser("chrome")
	// Capture console.log(), not just console.error().
	caps["loggingPrefs"] = map[string]string{"browser": "INFO"}
	return caps
}

// NewDriver returns an unstarted agouti WebDriver that runs the ChromeDriver
// at c.DriverPath and starts Chrome as configured by c. extraArgs are
// appended to the Chrome command line.
func NewDriver(c harness.Config, extraArgs ...string) *agouti.WebDriver {
	opts := []agouti.Option{
		agouti.Desired(capabilities()),
		agouti.ChromeOptions("args", chromeArgs(c, extraArgs...)),
	}
	if c.Binary != "" {
		opts = append(opts, agouti.ChromeOptions("binary", c.Binary))
	}
	if testing.Verbose() {
		opts = append(opts, agouti.Debug)
	}
	command := []string{c.DriverPath, "--port={{.Port}}"}
	return agouti.NewWebDriver("http://{{.Address}}", command, opts...)
}

// NewProxyDriver is NewDriver with Chrome sending all traffic, loopback
// included, through the SOCKS5 proxy at addr.
func NewProxyDriver(c harness.Config, addr string) *agouti.WebDriver {
	return NewDriver(c, harness.ChromeProxyArgs(addr)...)
}

// Open returns a new page of d with an implicit wait of c.Wait. The page is
// destroyed when t finishes.
func Open(t testing.TB, d *agouti.WebDriver, c harness.Config) *agouti.Page {
	t.Helper()
	page, err := d.NewPage()
	if err != nil {
		t.Fatalf("NewPage() returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := page.Destroy(); err != nil {
			t.Errorf("page.Destroy() returned error: %v", err)
		}
	})
	if err := page.SetImplicitWait(int(c.Wait.Milliseconds())); err != nil {
		t.Fatalf("page.SetImplicitWait(%v) returned error: %v", c.Wait, err)
	}
	return page
}

// Navigate opens u in page, failing t on error.
func Navigate(t testing.TB, page *agouti.Page, u string) {
	t.Helper()
	if err := page.Navigate(u); err != nil {
		t.Fatalf("page.Navigate(%q) returned error: %v", u, err)
	}
}

// Script runs body with the given arguments and returns its result as a
// string.
func Script(page *agouti.Page, body string, args map[string]interface{}) (string, error) {
	var result string
	if err := page.RunScript(body, args, &result); err != nil {
		return "", err
	}
	return result, nil
}

// PopupPresent reports whether an alert, confirm or prompt is open.
func PopupPresent(page *agouti.Page) bool {
	_, err := page.PopupText()
	return err == nil
}
