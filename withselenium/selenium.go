// Package withselenium runs the comparison scenarios through
// github.com/tebeka/selenium, driving Firefox with geckodriver.
//
// The WebDriver API only knows about a current window and single-strategy
// element lookups, so this file collects the helpers the scenarios need on
// top of it.
package withselenium

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/firefox"

	"github.com/browsercompare/browsercompare/internal/harness"
	"github.com/browsercompare/browsercompare/xpath"
)

// Locator pairs a lookup strategy such as selenium.ByXPATH with its value.
type Locator struct {
	By, Value string
}

func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.By, l.Value)
}

// ByLabel locates the input labelled by text.
func ByLabel(text string) Locator {
	return Locator{selenium.ByXPATH, xpath.ByLabel(text)}
}

// Find looks up l below f, which is either a selenium.WebDriver or a
// selenium.WebElement.
func Find(f Finder, l Locator) (selenium.WebElement, error) {
	e, err := f.FindElement(l.By, l.Value)
	if err != nil {
		return nil, fmt.Errorf("finding %s: %v", l, err)
	}
	return e, nil
}

// Finder is implemented by selenium.WebDriver and selenium.WebElement.
type Finder interface {
	FindElement(by, value string) (selenium.WebElement, error)
}

// NestedSearch returns a condition that looks up every locator inside the
// element found by the previous one. The condition holds once the whole chain
// resolves; the innermost element is then stored in found.
func NestedSearch(found *selenium.WebElement, locators ...Locator) selenium.Condition {
	return func(wd selenium.WebDriver) (bool, error) {
		var current Finder = wd
		var e selenium.WebElement
		for _, l := range locators {
			var err error
			if e, err = current.FindElement(l.By, l.Value); err != nil {
				return false, nil
			}
			current = e
		}
		*found = e
		return true, nil
	}
}

// Until waits up to timeout for condition. The implicit wait is switched off
// while polling so that every attempt fails fast, and set back to implicit
// afterwards.
func Until(wd selenium.WebDriver, condition selenium.Condition, timeout, implicit time.Duration) error {
	if err := wd.SetImplicitWaitTimeout(0); err != nil {
		return err
	}
	defer wd.SetImplicitWaitTimeout(implicit)
	return wd.WaitWithTimeout(condition, timeout)
}

// ElementByJS runs script and decodes the element it returns. ExecuteScript
// would turn the element into a map.
func ElementByJS(wd selenium.WebDriver, script string, args ...interface{}) (selenium.WebElement, error) {
	raw, err := wd.ExecuteScriptRaw(script, args)
	if err != nil {
		return nil, err
	}
	return wd.DecodeElement(raw)
}

// Property reads a DOM property of e. GetAttribute only sees the HTML
// attribute, which for "value" is the initial value.
func Property(wd selenium.WebDriver, e selenium.WebElement, name string) (string, error) {
	v, err := wd.ExecuteScript("return arguments[0][arguments[1]];", []interface{}{e, name})
	if err != nil {
		return "", err
	}
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return fmt.Sprint(v), nil
	}
}

// SetValue replaces the contents of an input.
func SetValue(e selenium.WebElement, value string) error {
	if err := e.Clear(); err != nil {
		return err
	}
	return e.SendKeys(value)
}

// WithWindow switches to the window handle, runs f and switches back to the
// window that was current before.
func WithWindow(wd selenium.WebDriver, handle string, f func() error) (err error) {
	current, err := wd.CurrentWindowHandle()
	if err != nil {
		return err
	}
	if err := wd.SwitchWindow(handle); err != nil {
		return err
	}
	defer func() {
		if serr := wd.SwitchWindow(current); serr != nil && err == nil {
			err = serr
		}
	}()
	return f()
}

// WindowOpenedBy runs f and returns the handle of the single window it
// opened.
func WindowOpenedBy(wd selenium.WebDriver, f func() error) (string, error) {
	before, err := wd.WindowHandles()
	if err != nil {
		return "", err
	}
	if err := f(); err != nil {
		return "", err
	}
	after, err := wd.WindowHandles()
	if err != nil {
		return "", err
	}
	known := make(map[string]bool)
	for _, h := range before {
		known[h] = true
	}
	var opened []string
	for _, h := range after {
		if !known[h] {
			opened = append(opened, h)
		}
	}
	if len(opened) != 1 {
		return "", fmt.Errorf("%d windows opened, want exactly one", len(opened))
	}
	return opened[0], nil
}

// AlertPresent reports whether a user prompt is currently open.
func AlertPresent(wd selenium.WebDriver) bool {
	_, err := wd.AlertText()
	return err == nil
}

// Capabilities returns the capabilities for a Firefox session configured by c.
func Capabilities(c harness.Config) (selenium.Capabilities, error) {
	caps := selenium.Capabilities{"browserName": "firefox"}
	f := firefox.Capabilities{
		Prefs: map[string]interface{}{
			// Marionette suppresses beforeunload prompts unless told otherwise.
			"dom.disable_beforeunload": false,
			// Allows user:password@ URLs without a confirmation.
			"network.http.phishy-userpass-length": 255,
		},
	}
	if c.Binary != "" {
		p, err := filepath.Abs(c.Binary)
		if err != nil {
			return nil, err
		}
		f.Binary = p
	}
	if c.Headless {
		f.Args = append(f.Args, "-headless")
	}
	caps.AddFirefox(f)
	return caps, nil
}

// AddSOCKSProxy routes the session through the SOCKS5 proxy at addr,
// including requests for localhost.
func AddSOCKSProxy(caps selenium.Capabilities, addr string) {
	caps.AddProxy(selenium.Proxy{
		Type:         selenium.Manual,
		SOCKS:        addr,
		SOCKSVersion: 5,
	})
	f := caps[firefox.CapabilitiesKey].(firefox.Capabilities)
	if f.Prefs == nil {
		f.Prefs = make(map[string]interface{})
	}
	for k, v := range harness.FirefoxProxyPrefs() {
		f.Prefs[k] = v
	}
	caps.AddFirefox(f)
}
