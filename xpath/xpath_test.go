package xpath

import (
	"sort"
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/browsercompare/browsercompare/fixture"
)

func TestLiteral(t *testing.T) {
	for _, tc := range []struct {
		in, want string
	}{
		{in: "", want: `""`},
		{in: "plain", want: `"plain"`},
		{in: `say "hi"`, want: `'say "hi"'`},
		{in: "it's", want: `"it's"`},
		{in: `it's "quoted"`, want: `concat("it's ", '"', "quoted", '"')`},
		{in: `"'`, want: `concat('"', "'")`},
	} {
		if got := Literal(tc.in); got != tc.want {
			t.Errorf("Literal(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

// TestLiteralEvaluates checks the quoting with an XPath engine rather than by
// string comparison.
func TestLiteralEvaluates(t *testing.T) {
	for _, s := range []string{"plain", `say "hi"`, "it's", `it's "quoted"`, `"'`, `a"b'c"d`} {
		doc, err := htmlquery.Parse(strings.NewReader(`<html><body><p title='` + html.EscapeString(s) + `'>x</p></body></html>`))
		if err != nil {
			t.Fatal(err)
		}
		expr := "//p[@title = " + Literal(s) + "]"
		nodes, err := htmlquery.QueryAll(doc, expr)
		if err != nil {
			t.Errorf("htmlquery.QueryAll(%q) returned error: %v", expr, err)
			continue
		}
		if len(nodes) != 1 {
			t.Errorf("htmlquery.QueryAll(%q) found %d nodes, want 1", expr, len(nodes))
		}
	}
}

func load(t *testing.T, path string) *html.Node {
	t.Helper()
	s := fixture.NewServer()
	t.Cleanup(s.Close)
	doc, err := htmlquery.LoadURL(s.URL + path)
	if err != nil {
		t.Fatalf("htmlquery.LoadURL(%q) returned error: %v", path, err)
	}
	return doc
}

// ids evaluates expr against doc and returns the sorted id attributes of
// every match.
func ids(t *testing.T, doc *html.Node, expr string) []string {
	t.Helper()
	nodes, err := htmlquery.QueryAll(doc, expr)
	if err != nil {
		t.Fatalf("htmlquery.QueryAll(%q) returned error: %v", expr, err)
	}
	var ids []string
	for _, n := range nodes {
		ids = append(ids, htmlquery.SelectAttr(n, "id"))
	}
	// Union results are not guaranteed to come back in document order.
	sort.Strings(ids)
	return ids
}

func TestByLabel(t *testing.T) {
	form := load(t, fixture.FormPath)
	playground := load(t, fixture.SelectorPlaygroundPath)

	for _, tc := range []struct {
		desc  string
		doc   *html.Node
		label string
		want  []string
	}{
		{desc: "label for", doc: form, label: "First name", want: []string{"first_name"}},
		{desc: "nested in label", doc: form, label: "Last name", want: []string{"last_name"}},
		{desc: "partial label text", doc: form, label: "First", want: []string{"first_name"}},
		{desc: "playground", doc: playground, label: "input_label", want: []string{"input_id"}},
		{desc: "no such label", doc: form, label: "Middle name", want: nil},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, ids(t, tc.doc, ByLabel(tc.label))); diff != "" {
				t.Errorf("ByLabel(%q) returned diff (-want/+got):\n%s", tc.label, diff)
			}
		})
	}
}

func TestField(t *testing.T) {
	form := load(t, fixture.FormPath)
	playground := load(t, fixture.SelectorPlaygroundPath)
	hidden := load(t, fixture.HiddenPath)

	for _, tc := range []struct {
		desc    string
		doc     *html.Node
		locator string
		want    []string
	}{
		{desc: "by label", doc: playground, locator: "input_label", want: []string{"input_id"}},
		{desc: "by id", doc: playground, locator: "input_id", want: []string{"input_id"}},
		{desc: "by name", doc: playground, locator: "input_name", want: []string{"input_id"}},
		{desc: "by placeholder", doc: form, locator: "your@email", want: []string{"email"}},
		{desc: "by nesting label", doc: form, locator: "Last name", want: []string{"last_name"}},
		{desc: "hidden inputs are not fields", doc: hidden, locator: "hidden_input", want: nil},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, ids(t, tc.doc, Field(tc.locator))); diff != "" {
				t.Errorf("Field(%q) returned diff (-want/+got):\n%s", tc.locator, diff)
			}
		})
	}
}

func TestFillableField(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(`<html><body>
		<label for="a">Name</label><input id="a">
		<label for="b">Name check</label><input id="b" type="checkbox">
		<textarea id="c" name="Name"></textarea>
		<select id="d" name="Name"></select>
	</body></html>`))
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"a", "c"}, ids(t, doc, FillableField("Name"))); diff != "" {
		t.Errorf("FillableField returned diff (-want/+got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, ids(t, doc, Field("Name"))); diff != "" {
		t.Errorf("Field returned diff (-want/+got):\n%s", diff)
	}
}

func TestButton(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(`<html><body>
		<button id="caption">Press  me</button>
		<input id="submit" type="submit" value="Press me">
		<input id="text" type="text" value="Press me">
		<button id="titled" title="Press me">?</button>
	</body></html>`))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"caption", "submit", "titled"}, ids(t, doc, Button("Press me"))); diff != "" {
		t.Errorf("Button returned diff (-want/+got):\n%s", diff)
	}

	form := load(t, fixture.FormPath)
	nodes, err := htmlquery.QueryAll(form, Button("Submit"))
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 1 {
		t.Errorf("Button(%q) found %d nodes on the form page, want 1", "Submit", len(nodes))
	}
}

func TestLink(t *testing.T) {
	index := load(t, fixture.IndexPath)
	n, err := htmlquery.Query(index, Link("selector playground"))
	if err != nil {
		t.Fatal(err)
	}
	if n == nil {
		t.Fatal("Link(selector playground) found nothing")
	}
	if got := htmlquery.SelectAttr(n, "href"); got != fixture.SelectorPlaygroundPath {
		t.Errorf("href = %q, want %q", got, fixture.SelectorPlaygroundPath)
	}
}

func TestText(t *testing.T) {
	page := load(t, fixture.DynamicDisclosePath)

	n, err := htmlquery.Query(page, Text("Trigger"))
	if err != nil {
		t.Fatal(err)
	}
	if n == nil || n.Data != "button" {
		t.Fatalf("Text(%q) = %v, want the button", "Trigger", n)
	}

	if diff := cmp.Diff([]string{"outer"}, ids(t, page, ContainsText("Container"))); diff != "" {
		t.Errorf("ContainsText returned diff (-want/+got):\n%s", diff)
	}
	if got := ids(t, page, Text("Contain")); len(got) != 0 {
		t.Errorf("Text matched a partial string: %v", got)
	}
}
