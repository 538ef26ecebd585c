/*
Package browsercompare catalogs a side-by-side comparison of Go
browser-automation libraries.

The same scenarios (filling a form by label, waiting for content that
appears later, juggling windows, dialogs, basic auth, shadow DOM and so on)
are written once per library against a small fixture web application, so
that the ergonomics of each API can be read and compared directly:

	withselenium    github.com/tebeka/selenium, Firefox through geckodriver
	withagouti      github.com/sclevine/agouti, Chrome through ChromeDriver
	withplaywright  github.com/playwright-community/playwright-go, Firefox
	withrod         github.com/go-rod/rod, Chromium
	withchromedp    github.com/chromedp/chromedp, Chromium

The fixture server lives in package fixture and can be run on its own with

	go run ./cmd/browsercompare serve

This package records which scenarios each library covers together with the
observations made while writing them. RenderTable prints the resulting
matrix.

Browsers and drivers that are not installed can be fetched into drivers/
with

	go run ./cmd/browsercompare fetch

Suites whose browser or driver cannot be found skip themselves.
*/
package browsercompare
