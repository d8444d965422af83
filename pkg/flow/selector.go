// Package flow holds the pure data of a publishing run: locators, selector
// candidate lists and pipeline step definitions.
package flow

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Strategy names the locator engine used to evaluate a Locator.
type Strategy string

// Locator strategies.
const (
	StrategyXPath Strategy = "xpath"
	StrategyCSS   Strategy = "css"
	StrategyText  Strategy = "text"
)

// Locator is one element-locating expression.
type Locator struct {
	Strategy Strategy
	Value    string
}

// XPath creates an xpath Locator.
func XPath(expr string) Locator { return Locator{Strategy: StrategyXPath, Value: expr} }

// CSS creates a css Locator.
func CSS(expr string) Locator { return Locator{Strategy: StrategyCSS, Value: expr} }

// Text creates a text-content Locator.
func Text(s string) Locator { return Locator{Strategy: StrategyText, Value: s} }

// ParseLocator parses "xpath=...", "css=..." or "text=..." expressions.
// A bare expression is xpath when it starts with "/" or "(" and css otherwise.
func ParseLocator(s string) Locator {
	s = strings.TrimSpace(s)
	for _, strategy := range []Strategy{StrategyXPath, StrategyCSS, StrategyText} {
		prefix := string(strategy) + "="
		if strings.HasPrefix(s, prefix) {
			return Locator{Strategy: strategy, Value: strings.TrimPrefix(s, prefix)}
		}
	}
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "(") {
		return XPath(s)
	}
	return CSS(s)
}

// Query returns the engine-prefixed query string, e.g. "xpath=//button".
func (l Locator) Query() string {
	strategy := l.Strategy
	if strategy == "" {
		strategy = StrategyCSS
	}
	return string(strategy) + "=" + l.Value
}

// String implements fmt.Stringer.
func (l Locator) String() string { return l.Query() }

// IsEmpty returns true if the locator has no expression.
func (l Locator) IsEmpty() bool { return strings.TrimSpace(l.Value) == "" }

// UnmarshalYAML allows Locator to be unmarshaled from a string or a
// single-key mapping such as {xpath: "//button"}.
func (l *Locator) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*l = ParseLocator(node.Value)
		return nil
	}

	var raw struct {
		XPath string `yaml:"xpath"`
		CSS   string `yaml:"css"`
		Text  string `yaml:"text"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	switch {
	case raw.XPath != "":
		*l = XPath(raw.XPath)
	case raw.CSS != "":
		*l = CSS(raw.CSS)
	case raw.Text != "":
		*l = Text(raw.Text)
	default:
		return fmt.Errorf("line %d: locator needs one of xpath, css or text", node.Line)
	}
	return nil
}

// MarshalYAML writes the locator in its prefixed scalar form.
func (l Locator) MarshalYAML() (interface{}, error) {
	return l.Query(), nil
}

// Selector is an ordered list of locator candidates for one logical element.
// Candidates are ranked from most specific to most general; first match wins.
type Selector struct {
	Label      string    `yaml:"label"`
	Candidates []Locator `yaml:"candidates"`
}

// NewSelector builds a Selector from query strings parsed with ParseLocator.
func NewSelector(label string, queries ...string) Selector {
	s := Selector{Label: label}
	for _, q := range queries {
		s.Candidates = append(s.Candidates, ParseLocator(q))
	}
	return s
}

// selectorRaw is used for YAML parsing of the mapping form.
type selectorRaw struct {
	Label      string    `yaml:"label"`
	Candidates []Locator `yaml:"candidates"`
}

// UnmarshalYAML allows Selector to be unmarshaled from a single locator
// string, a list of locators or a {label, candidates} mapping.
func (s *Selector) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		s.Candidates = []Locator{ParseLocator(node.Value)}
		return nil
	case yaml.SequenceNode:
		var list []Locator
		if err := node.Decode(&list); err != nil {
			return err
		}
		s.Candidates = list
		return nil
	}

	var raw selectorRaw
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Label != "" {
		s.Label = raw.Label
	}
	s.Candidates = raw.Candidates
	return nil
}

// IsEmpty returns true if no candidate is set.
func (s *Selector) IsEmpty() bool {
	for _, c := range s.Candidates {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Len returns the number of candidates.
func (s *Selector) Len() int { return len(s.Candidates) }

// Validate checks that the selector holds at least one usable candidate.
func (s *Selector) Validate() error {
	if len(s.Candidates) == 0 {
		return fmt.Errorf("selector %q has no candidates", s.Describe())
	}
	for i, c := range s.Candidates {
		if c.IsEmpty() {
			return fmt.Errorf("selector %q: candidate %d is empty", s.Describe(), i+1)
		}
		switch c.Strategy {
		case StrategyXPath, StrategyCSS, StrategyText:
		default:
			return fmt.Errorf("selector %q: candidate %d has unknown strategy %q", s.Describe(), i+1, c.Strategy)
		}
	}
	return nil
}

// Describe returns a human-readable description.
func (s *Selector) Describe() string {
	if s.Label != "" {
		return s.Label
	}
	if len(s.Candidates) > 0 {
		return s.Candidates[0].Query()
	}
	return ""
}
