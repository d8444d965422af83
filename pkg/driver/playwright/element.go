package playwright

import (
	pw "github.com/playwright-community/playwright-go"
)

// Element is a resolved locator.
type Element struct {
	loc pw.Locator
}

// Click clicks the element.
func (e *Element) Click() error {
	return e.loc.Click()
}

// Clear empties an input or contenteditable element.
func (e *Element) Clear() error {
	return e.loc.Clear()
}

// Type types text key by key, as a user would.
func (e *Element) Type(text string) error {
	return e.loc.PressSequentially(text)
}

// SetFiles attaches files to a file input.
func (e *Element) SetFiles(paths ...string) error {
	return e.loc.SetInputFiles(paths)
}

// Text returns the text content of the element.
func (e *Element) Text() (string, error) {
	return e.loc.TextContent()
}
