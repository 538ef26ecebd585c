package browsercompare

import (
	"fmt"
	"sort"
	"strings"
)

// Scenario names one task every suite attempts. The names double as the
// subtest names of the suites.
type Scenario string

const (
	// Google searches on the live google.com; it only runs with -external.
	Google                    Scenario = "Google"
	NestedSelectWithRetry     Scenario = "NestedSelectWithRetry"
	FillForm                  Scenario = "FillForm"
	FallbackToJS              Scenario = "FallbackToJS"
	SelectByDifferentCriteria Scenario = "SelectByDifferentCriteria"
	DebuggingSupport          Scenario = "DebuggingSupport"
	Isolation                 Scenario = "Isolation"
	Dialogs                   Scenario = "Dialogs"
	MultipleWindows           Scenario = "MultipleWindows"
	BasicAuth                 Scenario = "BasicAuth"
	HiddenElements            Scenario = "HiddenElements"
	ShadowDOM                 Scenario = "ShadowDOM"
	Proxy                     Scenario = "Proxy"
	// RemoteBrowser connects to a browser server started out of process.
	RemoteBrowser Scenario = "RemoteBrowser"
)

// Scenarios returns every scenario in the order the suites run them.
func Scenarios() []Scenario {
	return []Scenario{
		Google,
		NestedSelectWithRetry,
		FillForm,
		FallbackToJS,
		SelectByDifferentCriteria,
		DebuggingSupport,
		Isolation,
		Dialogs,
		MultipleWindows,
		BasicAuth,
		HiddenElements,
		ShadowDOM,
		Proxy,
		RemoteBrowser,
	}
}

// Library describes one browser-automation library under comparison.
type Library struct {
	// Name is the short name used on the command line, e.g. "selenium".
	Name string
	// ImportPath is the Go import path of the library.
	ImportPath string
	// Package is the directory of this module holding the library's suite.
	Package string
	// Browser is the browser the suite drives.
	Browser string
	// Notes holds the observations per covered scenario.
	Notes map[Scenario][]string
	// Unsupported explains why a scenario is not covered.
	Unsupported map[Scenario]string
}

// Covers reports whether the library's suite implements s.
func (l Library) Covers(s Scenario) bool {
	_, ok := l.Notes[s]
	return ok
}

// Note returns the observations recorded for s, or the reason s is not
// covered.
func (l Library) Note(s Scenario) []string {
	if n, ok := l.Notes[s]; ok {
		return n
	}
	if reason, ok := l.Unsupported[s]; ok {
		return []string{reason}
	}
	return nil
}

// Coverage returns the number of scenarios the library covers.
func (l Library) Coverage() int {
	n := 0
	for _, s := range Scenarios() {
		if l.Covers(s) {
			n++
		}
	}
	return n
}

// Libraries returns every library under comparison.
func Libraries() []Library {
	return []Library{selenium, agouti, playwright, rod, chromedp}
}

// Lookup finds a library by name, case-insensitively.
func Lookup(name string) (Library, error) {
	var names []string
	for _, l := range Libraries() {
		if strings.EqualFold(l.Name, name) {
			return l, nil
		}
		names = append(names, l.Name)
	}
	sort.Strings(names)
	return Library{}, fmt.Errorf("unknown library %q, want one of %s", name, strings.Join(names, ", "))
}
