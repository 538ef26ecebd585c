package withrod

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/go-cmp/cmp"

	"github.com/browsercompare/browsercompare"
	"github.com/browsercompare/browsercompare/fixture"
	"github.com/browsercompare/browsercompare/internal/harness"
	"github.com/browsercompare/browsercompare/xpath"
)

var (
	chromiumBinary = flag.String("chromium_binary", "", "The path to the Chromium binary. If empty, drivers/, the PATH and well known install locations are searched.")

	serverURL string
)

// scenarioTimeout bounds every query of a scenario, since rod waits for
// elements forever by default.
const scenarioTimeout = time.Minute

func TestMain(m *testing.M) {
	flag.Parse()
	if *chromiumBinary == "" {
		*chromiumBinary = harness.FindChromium()
	}
	if *chromiumBinary == "" {
		if p, ok := launcher.LookPath(); ok {
			*chromiumBinary = p
		}
	}

	u, stop, err := harness.StartFixture()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Exiting early: unable to start the fixture server: %v\n", err)
		os.Exit(1)
	}
	serverURL = u
	code := m.Run()
	stop()
	os.Exit(code)
}

var scenarios = harness.Scenarios{
	browsercompare.Google:                    must(testGoogle),
	browsercompare.NestedSelectWithRetry:     must(testNestedSelectWithRetry),
	browsercompare.FillForm:                  must(testFillForm),
	browsercompare.FallbackToJS:              must(testFallbackToJS),
	browsercompare.SelectByDifferentCriteria: must(testSelectByDifferentCriteria),
	browsercompare.DebuggingSupport:          must(testDebuggingSupport),
	browsercompare.Isolation:                 must(testIsolation),
	browsercompare.Dialogs:                   must(testDialogs),
	browsercompare.MultipleWindows:           must(testMultipleWindows),
	browsercompare.BasicAuth:                 must(testBasicAuth),
	browsercompare.HiddenElements:            must(testHiddenElements),
	browsercompare.ShadowDOM:                 must(testShadowDOM),
	browsercompare.Proxy:                     must(testProxy),
}

// must turns the panics of rod's Must API into test failures.
func must(f func(*testing.T, harness.Config)) func(*testing.T, harness.Config) {
	return func(t *testing.T, c harness.Config) {
		t.Helper()
		if err := rod.Try(func() { f(t, c) }); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCatalog(t *testing.T) {
	harness.CheckCatalog(t, "rod", scenarios)
}

func TestNewLauncher(t *testing.T) {
	l := NewLauncher(harness.Config{Headless: true, Binary: "/opt/chromium/chrome"}, "127.0.0.1:1080")
	got := map[string]string{
		"bin":               l.Get(flags.Bin),
		"proxy-server":      l.Get(flags.ProxyServer),
		"proxy-bypass-list": l.Get("proxy-bypass-list"),
	}
	want := map[string]string{
		"bin":               "/opt/chromium/chrome",
		"proxy-server":      "socks5://127.0.0.1:1080",
		"proxy-bypass-list": "<-loopback>",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NewLauncher() returned diff (-want/+got):\n%s", diff)
	}
	if !l.Has(flags.Headless) {
		t.Error("NewLauncher() is not headless")
	}
	if l := NewLauncher(harness.Config{}, ""); l.Has(flags.ProxyServer) || l.Has(flags.Headless) {
		t.Errorf("NewLauncher(headed, no proxy) has flags %v", l.FormatArgs())
	}
}

func TestChromium(t *testing.T) {
	if *chromiumBinary == "" {
		t.Skip("Skipping Chromium tests because no Chromium binary was found")
	}
	c := harness.NewConfig("chromium", serverURL)
	c.Binary = *chromiumBinary
	harness.RunScenarios(t, "rod", scenarios, c)
}

// open starts a browser and returns an empty page in it.
func open(t *testing.T, c harness.Config) (*rod.Browser, *rod.Page) {
	b := Open(t, c, "")
	return b, b.MustPage().Timeout(scenarioTimeout)
}

func value(t *testing.T, el *rod.Element) string {
	t.Helper()
	v, err := Value(el)
	if err != nil {
		t.Fatalf("reading the value of %s returned error: %v", el, err)
	}
	return v
}

func testGoogle(t *testing.T, c harness.Config) {
	harness.SkipExternal(t, c)
	_, page := open(t, c)

	page.MustNavigate("https://www.google.com/").MustWaitLoad()
	// The consent dialog only shows up in some regions.
	if has, consent, _ := page.HasR("button", "Accept all"); has {
		consent.MustClick()
	}
	page.MustElement(`[name="q"]`).MustInput("go-rod").MustType(input.Enter)
	page.MustWait(`() => document.querySelectorAll(".g").length >= 10`)
	if got := page.MustElement(".g").MustText(); !strings.Contains(strings.ToLower(got), "rod") {
		t.Errorf("first result = %q, want it to mention rod", got)
	}
}

func testNestedSelectWithRetry(t *testing.T, c harness.Config) {
	_, page := open(t, c)
	page.MustNavigate(c.URL(fixture.DynamicDisclosePath))

	page.MustElementR("button", "Trigger").MustClick()
	// The container is replaced, so the whole chain has to be retried.
	inner := page.MustElementR("#outer #inner", "fnord")
	if got := inner.MustText(); got != "fnord" {
		t.Errorf("#inner text = %q, want %q", got, "fnord")
	}
}

func testFillForm(t *testing.T, c harness.Config) {
	_, page := open(t, c)
	page.MustNavigate(c.URL(fixture.FormPath))

	page.MustElementX(xpath.ByLabel("First name")).MustInput("Martin")
	page.MustElementX(xpath.ByLabel("Last name")).MustInput("Häcker")
	page.MustElement(`[placeholder="your@email"]`).MustInput("foo@bar.org")

	got := map[string]string{}
	for _, id := range []string{"first_name", "last_name", "email"} {
		got[id] = value(t, page.MustElement("#"+id))
	}
	want := map[string]string{
		"first_name": "Martin",
		"last_name":  "Häcker",
		"email":      "foo@bar.org",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("form values returned diff (-want/+got):\n%s", diff)
	}
}

func testFallbackToJS(t *testing.T, c harness.Config) {
	_, page := open(t, c)
	page.MustNavigate(c.URL(fixture.FormPath))

	sum, err := Eval(page, `(a, b) => a + b`, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Int() != 2 {
		t.Errorf("1 + 1 = %v, want 2", sum)
	}

	field := page.MustElement("#first_name")
	if got := field.MustEval(`() => this.parentElement.tagName.toLowerCase()`).Str(); got != "form" {
		t.Errorf("parent tag = %q, want %q", got, "form")
	}
	parent := page.MustElementByJS(`() => document.getElementById("first_name").parentElement`)
	if !parent.MustHas("#first_name") {
		t.Error("the parent returned by JavaScript does not contain #first_name")
	}
}

func testSelectByDifferentCriteria(t *testing.T, c harness.Config) {
	_, page := open(t, c)
	page.MustNavigate(c.URL(fixture.SelectorPlaygroundPath))

	for desc, find := range map[string]func() *rod.Element{
		"class":       func() *rod.Element { return page.MustElement(".input_class") },
		"id":          func() *rod.Element { return page.MustElement("#input_id") },
		"name":        func() *rod.Element { return page.MustElement("[name=input_name]") },
		"tag":         func() *rod.Element { return page.MustElement("input") },
		"xpath":       func() *rod.Element { return page.MustElementX(`//*[@placeholder="input_placeholder"]`) },
		"label":       func() *rod.Element { return page.MustElementX(xpath.ByLabel("input_label")) },
		"js":          func() *rod.Element { return page.MustElementByJS(`() => document.getElementsByName("input_name")[0]`) },
		"css and":     func() *rod.Element { return page.MustElement("[placeholder=input_placeholder][name=input_name]") },
		"xpath and":   func() *rod.Element { return page.MustElementX(`//*[@placeholder="input_placeholder"][@name="input_name"]`) },
		"xpath field": func() *rod.Element { return page.MustElementX(xpath.Field("input_label")) },
	} {
		if got := value(t, find()); got != "input_value" {
			t.Errorf("%s: value = %q, want %q", desc, got, "input_value")
		}
	}
}

func testDebuggingSupport(t *testing.T, c harness.Config) {
	_, page := open(t, c)
	console := make(chan string, 1)
	go page.EachEvent(func(e *proto.RuntimeConsoleAPICalled) bool {
		if len(e.Args) > 0 {
			select {
			case console <- e.Args[0].Value.Str():
			default:
			}
		}
		return true
	})()
	page.MustNavigate(c.URL(fixture.SelectorPlaygroundPath))

	if html := page.MustHTML(); !strings.Contains(html, "<label for") {
		t.Errorf("page HTML does not contain %q:\n%s", "<label for", html)
	}
	if outer := page.MustElementX("//input").MustHTML(); !strings.HasPrefix(outer, "<input id=") {
		t.Errorf("input outerHTML = %q, want prefix %q", outer, "<input id=")
	}

	path := filepath.Join(t.TempDir(), "full_screenshot.png")
	page.MustScreenshotFullPage(path)
	harness.AssertIsPNG(t, path)

	page.MustEval(`() => console.log("fnord")`)
	select {
	case msg := <-console:
		if msg != "fnord" {
			t.Errorf("console message = %q, want %q", msg, "fnord")
		}
	case <-time.After(c.Wait):
		t.Error("console message was not reported")
	}
}

func testIsolation(t *testing.T, c harness.Config) {
	b := Open(t, c, "")

	first := b.MustIncognito().MustPage(c.URL(fixture.IndexPath)).Timeout(scenarioTimeout)
	first.MustSetCookies(&proto.NetworkCookieParam{Name: "visited", Value: "yes", URL: c.URL(fixture.IndexPath)})
	first.MustEval(`() => localStorage.setItem("visited", "yes")`)
	if got := first.MustCookies(); len(got) != 1 {
		t.Fatalf("first session has %d cookies, want 1", len(got))
	}

	second := b.MustIncognito().MustPage(c.URL(fixture.IndexPath)).Timeout(scenarioTimeout)
	if got := second.MustCookies(); len(got) != 0 {
		t.Errorf("second session has cookies %v", got)
	}
	if got := second.MustEval(`() => localStorage.getItem("visited")`); !got.Nil() {
		t.Errorf("second session has localStorage value %v", got)
	}
}

func testDialogs(t *testing.T, c harness.Config) {
	_, page := open(t, c)
	page.MustNavigate(c.URL(fixture.IndexPath))

	seen := HandleNextDialog(page, true)
	if got := page.MustEval(`() => confirm("fnord")`); !got.Bool() {
		t.Errorf("confirm() = %v, want true", got)
	}
	if e := <-seen; e.Type != proto.PageDialogTypeConfirm || e.Message != "fnord" {
		t.Errorf("dialog = %s %q, want confirm %q", e.Type, e.Message, "fnord")
	}

	seen = HandleNextDialog(page, false)
	if got := page.MustEval(`() => confirm("really?")`); got.Bool() {
		t.Errorf("dismissed confirm() = %v, want false", got)
	}
	<-seen

	// beforeunload only fires after the user interacted with the page.
	page.MustEval(`() => {` + harness.AskToLeaveScript + `}`)
	page.MustElement("#input_id").MustInput("fnord")
	seen = HandleNextDialog(page, true)
	page.MustNavigate(c.URL(fixture.FormPath)).MustWaitLoad()
	select {
	case e := <-seen:
		if e.Type != proto.PageDialogTypeBeforeunload {
			t.Errorf("dialog type = %s, want %s", e.Type, proto.PageDialogTypeBeforeunload)
		}
	case <-time.After(c.Wait):
		t.Error("no beforeunload dialog")
	}
}

func testMultipleWindows(t *testing.T, c harness.Config) {
	_, page := open(t, c)
	page.MustNavigate(c.URL(fixture.IndexPath))
	page.MustElement("#input_id").MustInput("first window")

	wait := page.MustWaitOpen()
	page.MustEval(`() => { window.open() }`)
	second := wait().Timeout(scenarioTimeout)
	second.MustNavigate(c.URL(fixture.IndexPath))
	second.MustElement("#input_id").MustInput("second window")

	if got := value(t, second.MustElement("#input_id")); got != "second window" {
		t.Errorf("second window value = %q", got)
	}
	if got := value(t, page.MustElement("#input_id")); got != "first window" {
		t.Errorf("first window value = %q", got)
	}
}

func testBasicAuth(t *testing.T, c harness.Config) {
	b, page := open(t, c)

	page.MustNavigate(c.URL(fixture.BasicAuthPath))
	if got := page.MustElement("body").MustText(); got != fixture.UnauthenticatedBody {
		t.Errorf("unauthenticated body = %q, want %q", got, fixture.UnauthenticatedBody)
	}

	go b.MustHandleAuth(fixture.Username, fixture.Password)()
	page.MustNavigate(c.URL(fixture.BasicAuthPath))
	if got := page.MustElement("body").MustText(); got != fixture.AuthenticatedBody {
		t.Errorf("authenticated body = %q, want %q", got, fixture.AuthenticatedBody)
	}
}

func testHiddenElements(t *testing.T, c harness.Config) {
	_, page := open(t, c)
	page.MustNavigate(c.URL(fixture.HiddenPath))

	got := map[string]bool{}
	for _, id := range []string{"visible", "hidden", "hidden_input"} {
		got[id] = page.MustElement("#" + id).MustVisible()
	}
	want := map[string]bool{"visible": true, "hidden": false, "hidden_input": false}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("visibility returned diff (-want/+got):\n%s", diff)
	}
	if got := value(t, page.MustElement("#hidden_input")); got != "secret" {
		t.Errorf("#hidden_input value = %q, want %q", got, "secret")
	}

	page.MustElementR("button", "Reveal").MustClick()
	page.MustElement("#hidden").MustWaitVisible()
}

func testShadowDOM(t *testing.T, c harness.Config) {
	_, page := open(t, c)
	page.MustNavigate(c.URL(fixture.ShadowPath))

	root := page.MustElement("#shadow_host").MustShadowRoot()
	if got := root.MustElement("#shadow_content").MustText(); got != "Inside the shadow" {
		t.Errorf("#shadow_content text = %q", got)
	}
	if got := value(t, root.MustElement("#shadow_input")); got != "shadow_value" {
		t.Errorf("#shadow_input value = %q", got)
	}
	if page.MustHas("#shadow_content") {
		t.Error("document query found an element inside the shadow root")
	}
}

func testProxy(t *testing.T, c harness.Config) {
	addr := harness.StartSOCKSProxy(t, harness.StartProxiedServer(t))
	b := Open(t, c, addr)
	page := b.MustPage(c.URL(fixture.IndexPath)).Timeout(scenarioTimeout)
	page.MustWaitLoad()
	if html := page.MustHTML(); !strings.Contains(html, harness.ProxiedPageContents) {
		t.Errorf("page HTML does not contain %q:\n%s", harness.ProxiedPageContents, html)
	}
}
