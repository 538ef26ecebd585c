// Package xpath builds XPath 1.0 expressions that locate elements the way a
// user describes them: by label, placeholder, button caption or link text.
//
// Every browser library under comparison can find elements by XPath, so
// these expressions are the common denominator when a library has no native
// way to express a locator.
package xpath

import (
	"fmt"
	"strings"
)

// Literal quotes s as an XPath string literal. XPath 1.0 has no escape
// sequences, so a string containing both quote characters is assembled with
// concat().
func Literal(s string) string {
	switch {
	case !strings.Contains(s, `"`):
		return `"` + s + `"`
	case !strings.Contains(s, `'`):
		return `'` + s + `'`
	}
	var parts []string
	for i, p := range strings.Split(s, `"`) {
		if i > 0 {
			parts = append(parts, `'"'`)
		}
		if p != "" {
			parts = append(parts, `"`+p+`"`)
		}
	}
	return "concat(" + strings.Join(parts, ", ") + ")"
}

func union(exprs ...string) string {
	return strings.Join(exprs, " | ")
}

// labelContaining matches label elements whose text contains text.
func labelContaining(lit string) string {
	return fmt.Sprintf(`//label[contains(normalize-space(string(.)), %s)]`, lit)
}

// ByLabel matches inputs labelled by a label containing text, either through
// the label's for attribute or by being nested inside the label.
func ByLabel(text string) string {
	lit := Literal(text)
	return union(
		fmt.Sprintf(`//input[@id = //label[contains(string(.), %s)]/@for]`, lit),
		fmt.Sprintf(`//label[contains(string(.), %s)]//input`, lit),
	)
}

const (
	fieldTags         = `self::input or self::textarea or self::select`
	fillableFieldTags = `self::input or self::textarea`
	nonFieldTypes     = `@type = "submit" or @type = "image" or @type = "hidden"`
	nonFillableTypes  = nonFieldTypes + ` or @type = "radio" or @type = "checkbox" or @type = "file" or @type = "button" or @type = "reset"`
)

func locateField(tags, excludedTypes, locator string) string {
	lit := Literal(locator)
	node := fmt.Sprintf(`*[%s][not(%s)]`, tags, excludedTypes)
	return union(
		fmt.Sprintf(`//%s[@id = %s or @name = %s or @placeholder = %s or @id = %s/@for]`,
			node, lit, lit, lit, labelContaining(lit)),
		fmt.Sprintf(`%s//%s`, labelContaining(lit), node),
	)
}

// Field matches form fields (input, textarea and select elements, excluding
// submit, image and hidden inputs) by id, name, placeholder or label text.
func Field(locator string) string {
	return locateField(fieldTags, nonFieldTypes, locator)
}

// FillableField is like Field but only matches fields a user can type into.
func FillableField(locator string) string {
	return locateField(fillableFieldTags, nonFillableTypes, locator)
}

// Button matches buttons and button-like inputs by id, name, value, title or
// caption.
func Button(locator string) string {
	lit := Literal(locator)
	return union(
		fmt.Sprintf(`//input[@type = "submit" or @type = "reset" or @type = "button" or @type = "image"][@id = %s or @name = %s or @value = %s or @title = %s]`,
			lit, lit, lit, lit),
		fmt.Sprintf(`//button[@id = %s or @name = %s or @value = %s or @title = %s or contains(normalize-space(string(.)), %s)]`,
			lit, lit, lit, lit, lit),
	)
}

// Link matches anchors with an href by id, title or text.
func Link(locator string) string {
	lit := Literal(locator)
	return fmt.Sprintf(`//a[@href][@id = %s or @title = %s or contains(normalize-space(string(.)), %s)]`, lit, lit, lit)
}

// Text matches elements that directly own a text node equal to text,
// ignoring surrounding whitespace.
func Text(text string) string {
	return fmt.Sprintf(`//*[text()[normalize-space(.) = %s]]`, Literal(text))
}

// ContainsText matches elements that directly own a text node containing
// text.
func ContainsText(text string) string {
	return fmt.Sprintf(`//*[text()[contains(., %s)]]`, Literal(text))
}
