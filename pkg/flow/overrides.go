package flow

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseError represents a parsing error with location info.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// StepOverride replaces the built-in settings of one pipeline step.
// Nil fields keep the built-in value.
type StepOverride struct {
	Label           *string `yaml:"label"`
	Timeout         *int    `yaml:"timeout"` // Per-candidate wait, ms
	FailureArtifact *string `yaml:"failureArtifact"`
	SuccessArtifact *string `yaml:"successArtifact"` // "" disables the screenshot
	Settle          *int    `yaml:"settle"`
	ConfirmTimeout  *int    `yaml:"confirmTimeout"`
}

// StepOverrides is the steps section of config.yaml, keyed by step type:
//
//	steps:
//	  uploadMedia:
//	    confirmTimeout: 300000
//	  finish:
//	    successArtifact: ""
type StepOverrides map[StepType]StepOverride

// UnmarshalYAML validates step names and keys before decoding, so a typo
// fails the config load instead of being ignored.
func (o *StepOverrides) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return &ParseError{Path: "steps", Line: node.Line, Message: "steps must be a mapping of step type to settings"}
	}

	out := make(StepOverrides, len(node.Content)/2)
	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		stepType := StepType(keyNode.Value)
		if !isStepType(stepType) {
			return &ParseError{
				Path:    "steps",
				Line:    keyNode.Line,
				Message: fmt.Sprintf("unknown step type: %s", keyNode.Value),
			}
		}
		path := "steps." + keyNode.Value

		if valueNode.Kind != yaml.MappingNode {
			return &ParseError{Path: path, Line: valueNode.Line, Message: "step settings must be a mapping"}
		}
		allowed := overrideKeys(stepType)
		for j := 0; j < len(valueNode.Content)-1; j += 2 {
			k := valueNode.Content[j]
			if !allowed[k.Value] {
				return &ParseError{
					Path:    path,
					Line:    k.Line,
					Message: fmt.Sprintf("unknown setting %q (allowed: %s)", k.Value, joinKeys(allowed)),
				}
			}
		}

		var s StepOverride
		if err := valueNode.Decode(&s); err != nil {
			return &ParseError{Path: path, Line: valueNode.Line, Message: err.Error()}
		}
		for name, v := range map[string]*int{"timeout": s.Timeout, "settle": s.Settle, "confirmTimeout": s.ConfirmTimeout} {
			if v != nil && *v < 0 {
				return &ParseError{Path: path, Line: valueNode.Line, Message: name + " must not be negative"}
			}
		}
		out[stepType] = s
	}

	*o = out
	return nil
}

// Apply writes the overrides into the matching steps of f.
func (o StepOverrides) Apply(f *Flow) {
	for _, step := range f.Steps {
		s, ok := o[step.Type()]
		if !ok {
			continue
		}
		switch st := step.(type) {
		case *OpenComposerStep:
			s.applyBase(&st.BaseStep)
			setInt(&st.SettleMs, s.Settle)
			setInt(&st.ConfirmTimeoutMs, s.ConfirmTimeout)
		case *UploadMediaStep:
			s.applyBase(&st.BaseStep)
			setInt(&st.SettleMs, s.Settle)
			setInt(&st.ConfirmTimeoutMs, s.ConfirmTimeout)
		case *InputTextStep:
			s.applyBase(&st.BaseStep)
		case *ClickStep:
			s.applyBase(&st.BaseStep)
		case *FinishStep:
			s.applyBase(&st.BaseStep)
			setInt(&st.ConfirmTimeoutMs, s.ConfirmTimeout)
		}
	}
}

func (s StepOverride) applyBase(b *BaseStep) {
	if s.Label != nil {
		b.StepLabel = *s.Label
	}
	setInt(&b.TimeoutMs, s.Timeout)
	if s.FailureArtifact != nil {
		b.FailureArtifact = *s.FailureArtifact
	}
	if s.SuccessArtifact != nil {
		b.SuccessArtifact = *s.SuccessArtifact
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func isStepType(t StepType) bool {
	switch t {
	case StepOpenComposer, StepUploadMedia, StepEnterCaption, StepOpenCustomization,
		StepFocusNetworkText, StepEnterNetworkTag, StepOpenOptionMenu, StepSelectOption,
		StepFinish:
		return true
	}
	return false
}

// overrideKeys returns the settings a step type accepts.
func overrideKeys(t StepType) map[string]bool {
	keys := map[string]bool{"label": true, "timeout": true, "failureArtifact": true, "successArtifact": true}
	switch t {
	case StepOpenComposer, StepUploadMedia:
		keys["settle"] = true
		keys["confirmTimeout"] = true
	case StepFinish:
		keys["confirmTimeout"] = true
	}
	return keys
}

func joinKeys(keys map[string]bool) string {
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
