package flow

import "fmt"

// StepType represents the type of step.
type StepType string

// Pipeline step types, in execution order.
const (
	StepOpenComposer      StepType = "openComposer"
	StepUploadMedia       StepType = "uploadMedia"
	StepEnterCaption      StepType = "enterCaption"
	StepOpenCustomization StepType = "openCustomization"
	StepFocusNetworkText  StepType = "focusNetworkText"
	StepEnterNetworkTag   StepType = "enterNetworkTag"
	StepOpenOptionMenu    StepType = "openOptionMenu"
	StepSelectOption      StepType = "selectOption"
	StepFinish            StepType = "finish"
)

// Step is the interface for all pipeline steps.
type Step interface {
	Type() StepType
	Label() string
	Describe() string
	Artifacts() ArtifactNames
}

// ArtifactNames are the screenshot names a step writes on failure and on success.
// An empty name disables that screenshot.
type ArtifactNames struct {
	Failure string
	Success string
}

// BaseStep contains common fields for all steps.
type BaseStep struct {
	StepType        StepType
	StepLabel       string
	TimeoutMs       int // Per-candidate wait
	FailureArtifact string
	SuccessArtifact string
}

// Type returns the step type.
func (b *BaseStep) Type() StepType { return b.StepType }

// Label returns the step label.
func (b *BaseStep) Label() string { return b.StepLabel }

// Describe returns a human-readable description.
func (b *BaseStep) Describe() string { return string(b.StepType) }

// Artifacts returns the screenshot names of the step.
func (b *BaseStep) Artifacts() ArtifactNames {
	return ArtifactNames{Failure: b.FailureArtifact, Success: b.SuccessArtifact}
}

// OpenComposerStep clicks the New Post button and waits for the composer.
type OpenComposerStep struct {
	BaseStep
	Button           Selector
	Marker           Selector
	SettleMs         int
	ConfirmTimeoutMs int
}

// Describe returns a human-readable description.
func (s *OpenComposerStep) Describe() string {
	return fmt.Sprintf("%s %q", s.StepType, s.Button.Describe())
}

// UploadMediaStep attaches the media file to the composer's file input and
// waits for the upload to settle.
type UploadMediaStep struct {
	BaseStep
	Input            Selector
	Progress         Selector
	Complete         Selector
	SettleMs         int
	ConfirmTimeoutMs int
}

// Describe returns a human-readable description.
func (s *UploadMediaStep) Describe() string {
	return fmt.Sprintf("%s %q", s.StepType, s.Input.Describe())
}

// InputTextStep clicks, clears and types text into a present element.
type InputTextStep struct {
	BaseStep
	Target Selector
	Text   string
}

// Describe returns a human-readable description.
func (s *InputTextStep) Describe() string {
	return fmt.Sprintf("%s %q into %q", s.StepType, s.Text, s.Target.Describe())
}

// ClickStep clicks a clickable element.
type ClickStep struct {
	BaseStep
	Target Selector
}

// Describe returns a human-readable description.
func (s *ClickStep) Describe() string {
	return fmt.Sprintf("%s %q", s.StepType, s.Target.Describe())
}

// FinishStep confirms the composer is still showing once every option is set.
type FinishStep struct {
	BaseStep
	Marker           Selector
	ConfirmTimeoutMs int
}
