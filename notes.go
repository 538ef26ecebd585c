package browsercompare

var selenium = Library{
	Name:       "selenium",
	ImportPath: "github.com/tebeka/selenium",
	Package:    "withselenium",
	Browser:    "firefox",
	Notes: map[Scenario][]string{
		Google: {
			"FindElement waits implicitly once SetImplicitWaitTimeout is set.",
			"Only single selectors; compound criteria such as class plus text need XPath.",
			"Verbose: every call returns an error that has to be checked.",
		},
		NestedSelectWithRetry: {
			"Nested searching is possible with a small helper over WebElement.FindElement.",
			"Wait takes a Condition func, so retrying the whole chain is easy once written.",
		},
		FillForm: {
			"No way to find an input by its label; an XPath expression has to do it.",
			"At that point the xpath package is rebuilding a selector library.",
		},
		FallbackToJS: {
			"ExecuteScript decodes elements into maps; ExecuteScriptRaw plus DecodeElement is needed to get a WebElement back.",
		},
		SelectByDifferentCriteria: {
			"By constants cover id, name, class, tag, CSS and XPath; no ARIA support.",
			"XPath expressions from the xpath package plug straight in.",
		},
		DebuggingSupport: {
			"PageSource, outerHTML through GetAttribute and Screenshot bytes; nothing unexpected.",
			"Browser console logs are not available from geckodriver.",
		},
		Isolation: {
			"No reset; every scenario starts a new session with a fresh profile.",
			"Effective but slow.",
		},
		Dialogs: {
			"AcceptAlert, DismissAlert and AlertText are easy to use.",
			"Presence of an alert is detected through the error of AlertText.",
			"beforeunload prompts are handled like any other alert once dom.disable_beforeunload is off.",
		},
		MultipleWindows: {
			"There is only a current window, no object per window.",
			"A helper that switches and switches back makes it bearable.",
		},
		BasicAuth: {
			"The auth prompt can be dismissed like an alert but not answered.",
			"Credentials in the URL work.",
		},
		HiddenElements: {
			"IsDisplayed distinguishes hidden elements; FindElement still finds them.",
			"Text of a hidden element is empty.",
		},
		ShadowDOM: {
			"The version used predates shadow root commands; the shadow root is reached through JavaScript.",
		},
		Proxy: {
			"Proxies are capabilities; SOCKS5 works with geckodriver.",
		},
	},
	Unsupported: map[Scenario]string{
		RemoteBrowser: "Talking to a remote WebDriver endpoint is the default mode; there is no separate browser server to connect to.",
	},
}

var agouti = Library{
	Name:       "agouti",
	ImportPath: "github.com/sclevine/agouti",
	Package:    "withagouti",
	Browser:    "chrome",
	Notes: map[Scenario][]string{
		Google: {
			"Selections are lazy and chain nicely: Find, FindByButton, FindByLabel.",
			"Waiting is left to gomega's Eventually with the agouti matchers.",
		},
		NestedSelectWithRetry: {
			"Selections are re-evaluated on every call, so Eventually retries the whole chain.",
			"Nested selection mixes with matchers without any helper.",
		},
		FillForm: {
			"FindByLabel finds inputs by label text; placeholders need CSS.",
		},
		FallbackToJS: {
			"RunScript only returns JSON values, so elements cannot come back from JavaScript.",
		},
		SelectByDifferentCriteria: {
			"FindByID, FindByName, FindByClass, FindByLabel, FindByXPath and CSS.",
			"XPath expressions from the xpath package plug straight in.",
		},
		DebuggingSupport: {
			"HTML of the page; outerHTML needs RunScript.",
			"Screenshot writes a file directly.",
			"ReadAllLogs returns the browser console log.",
		},
		Isolation: {
			"Page.Reset clears cookies and storage without a new browser.",
		},
		Dialogs: {
			"ConfirmPopup, CancelPopup and PopupText are straightforward.",
			"Presence is detected through the error of PopupText.",
			"Leave prompts show up as popups with Chrome's own text.",
		},
		MultipleWindows: {
			"NextWindow and SwitchToWindow switch the page; no object per window.",
		},
		BasicAuth: {
			"No access to auth prompts; credentials in the URL work in Chrome.",
		},
		HiddenElements: {
			"Visible() and the BeVisible matcher; Eventually waits for a reveal.",
		},
		ShadowDOM: {
			"No shadow DOM support; RunScript has to read it.",
		},
		Proxy: {
			"No proxy helper; Chrome's --proxy-server flag goes in through ChromeOptions.",
			"SOCKS5 works, but the proxy is fixed per WebDriver so it needs its own ChromeDriver.",
		},
	},
	Unsupported: map[Scenario]string{
		RemoteBrowser: "agouti.NewPage can talk to a remote WebDriver but there is no browser server to connect to.",
	},
}

var playwright = Library{
	Name:       "playwright",
	ImportPath: "github.com/playwright-community/playwright-go",
	Package:    "withplaywright",
	Browser:    "firefox",
	Notes: map[Scenario][]string{
		Google: {
			"Downloads its own patched browsers; nicely self contained.",
			"Not based on Selenium or WebDriver.",
		},
		NestedSelectWithRetry: {
			"Locators chain and auto-wait; Filter with HasText expresses text conditions.",
		},
		FillForm: {
			"GetByLabel and GetByPlaceholder are built in.",
		},
		FallbackToJS: {
			"Evaluate on a locator passes the element into JavaScript; EvaluateHandle keeps the result as an element.",
		},
		SelectByDifferentCriteria: {
			"Role, label, placeholder, CSS and XPath locators; the richest set of criteria.",
			"XPath expressions need the xpath= prefix.",
		},
		DebuggingSupport: {
			"Content, InnerHTML and Screenshot with an explicit path.",
			"Console messages are delivered as events.",
		},
		Isolation: {
			"Browser contexts are cheap and fully isolated.",
		},
		Dialogs: {
			"Dialogs are events; they are dismissed automatically unless a handler is registered.",
			"beforeunload requires RunBeforeUnload on Close.",
		},
		MultipleWindows: {
			"Every page is its own object; no switching at all.",
			"ExpectPage captures a page opened by an action.",
		},
		BasicAuth: {
			"HttpCredentials on the context; no prompt ever appears.",
		},
		HiddenElements: {
			"IsVisible and WaitFor with a state make hidden content explicit.",
		},
		ShadowDOM: {
			"CSS locators pierce open shadow roots by default.",
		},
		Proxy: {
			"Proxy is a launch option; SOCKS5 works.",
		},
		RemoteBrowser: {
			"Connect attaches to a server started with launchServer; the Node.js and Go client versions have to match.",
		},
	},
}

var rod = Library{
	Name:       "rod",
	ImportPath: "github.com/go-rod/rod",
	Package:    "withrod",
	Browser:    "chromium",
	Notes: map[Scenario][]string{
		Google: {
			"Fluent Must API reads nicely in tests; errors become panics.",
			"Element queries wait by default.",
		},
		NestedSelectWithRetry: {
			"ElementR matches CSS and text in one call and retries until found.",
		},
		FillForm: {
			"No label lookup; XPath via ElementX.",
		},
		FallbackToJS: {
			"Element.Eval runs a function with this bound to the element; ElementByJS returns elements.",
		},
		SelectByDifferentCriteria: {
			"CSS, XPath, regex on text and JavaScript selectors.",
		},
		DebuggingSupport: {
			"HTML of page and element, screenshots as bytes or files.",
			"Trace and SlowMotion options help when watching a run.",
		},
		Isolation: {
			"Incognito browser contexts give isolated sessions cheaply.",
		},
		Dialogs: {
			"HandleDialog returns a wait function and a handler; the dance has to start before the dialog opens.",
		},
		MultipleWindows: {
			"Pages are separate objects; WaitOpen captures a page opened by an action.",
		},
		BasicAuth: {
			"HandleAuth answers the challenge for the next request.",
		},
		HiddenElements: {
			"Visible and WaitVisible; queries find hidden elements too.",
		},
		ShadowDOM: {
			"ShadowRoot returns the root as an element to search from.",
		},
		Proxy: {
			"The launcher takes a proxy flag; SOCKS5 works.",
		},
	},
	Unsupported: map[Scenario]string{
		RemoteBrowser: "Connecting to a DevTools URL is how rod always works; there is no separate server protocol.",
	},
}

var chromedp = Library{
	Name:       "chromedp",
	ImportPath: "github.com/chromedp/chromedp",
	Package:    "withchromedp",
	Browser:    "chromium",
	Notes: map[Scenario][]string{
		Google: {
			"Short: a list of actions passed to Run.",
			"Queries wait for their nodes by default.",
		},
		NestedSelectWithRetry: {
			"FromNode scopes a query to a parent, but matchers cannot be mixed in.",
			"Complex matchers have to be written as XPath.",
		},
		FillForm: {
			"No label lookup; the xpath package fills the gap.",
		},
		FallbackToJS: {
			"Evaluate returns values only; ByJSPath selects nodes through a JavaScript expression.",
		},
		SelectByDifferentCriteria: {
			"ByQuery, ByID, BySearch and ByJSPath; very basic.",
			"XPath through BySearch works with the xpath package.",
		},
		DebuggingSupport: {
			"OuterHTML and FullScreenshot into byte slices; writing files is up to the caller.",
		},
		Isolation: {
			"A new allocator context means a new browser; slow but clean.",
		},
		Dialogs: {
			"Dialogs arrive as DevTools events and must be answered with HandleJavaScriptDialog from another goroutine.",
		},
		MultipleWindows: {
			"A new tab is a child context; actions are bound to their context.",
		},
		BasicAuth: {
			"No auth API; an Authorization header through the network domain works.",
		},
		HiddenElements: {
			"WaitVisible and WaitNotVisible; NodeVisible queries.",
		},
		ShadowDOM: {
			"ByJSPath reaches into the shadow root.",
		},
		Proxy: {
			"ProxyServer is an allocator option; SOCKS5 works.",
		},
	},
	Unsupported: map[Scenario]string{
		RemoteBrowser: "NewRemoteAllocator connects to a DevTools URL; there is no separate server protocol.",
	},
}
