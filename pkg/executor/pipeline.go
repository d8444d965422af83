// Package executor drives the composer pipeline: a linear state machine that
// runs each flow step against the browser, in order, stopping at the first
// fatal failure.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/devicelab-dev/reel-publisher/pkg/core"
	"github.com/devicelab-dev/reel-publisher/pkg/flow"
	"github.com/devicelab-dev/reel-publisher/pkg/logger"
)

// Config configures a Pipeline.
type Config struct {
	Media       MediaSource       // Supplies the upload step's file
	Diagnostics *core.Diagnostics // nil disables screenshots

	// Live progress callbacks
	OnStepStart    func(idx, total int, step flow.Step)
	OnStepComplete func(idx, total int, result *core.StepResult)
}

// Pipeline executes a composer flow against an authenticated browser.
// A Pipeline runs once; it never resumes a partial run.
type Pipeline struct {
	browser core.Browser
	flow    *flow.Flow
	config  Config

	state   State
	history []State
	media   string

	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Pipeline in the Idle state.
func New(b core.Browser, f *flow.Flow, cfg Config) *Pipeline {
	return &Pipeline{
		browser: b,
		flow:    f,
		config:  cfg,
		state:   StateIdle,
		history: []State{StateIdle},
		sleep:   sleepContext,
	}
}

// State returns the current state.
func (p *Pipeline) State() State { return p.state }

// History returns every state entered, starting with Idle.
func (p *Pipeline) History() []State {
	return append([]State(nil), p.history...)
}

// Media returns the file attached by the upload step, if it ran.
func (p *Pipeline) Media() string { return p.media }

// Run executes the steps in order. A step that fails moves the pipeline to
// Failed and every later step is reported as skipped without running.
func (p *Pipeline) Run(ctx context.Context) *core.FlowResult {
	start := time.Now()
	total := len(p.flow.Steps)
	result := &core.FlowResult{
		Name:      p.flow.Name,
		StartTime: start,
		Steps:     make([]core.StepResult, 0, total),
	}
	logger.Info("pipeline %q: %d steps", p.flow.Name, total)

	for i, step := range p.flow.Steps {
		if p.state.IsTerminal() {
			result.Steps = append(result.Steps, skippedResult(i, step))
			continue
		}

		if err := ctx.Err(); err != nil {
			sr := skippedResult(i, step)
			sr.Error = err.Error()
			result.Steps = append(result.Steps, sr)
			p.fail(result, step, fmt.Errorf("run cancelled: %w", err))
			continue
		}

		next, err := p.precondition(step)
		if err != nil {
			sr := core.StepResult{
				Step:      step,
				Index:     i,
				Command:   string(step.Type()),
				Label:     step.Label(),
				Status:    core.StatusErrored,
				Category:  core.ErrCategoryConfig,
				StartTime: time.Now(),
				Error:     err.Error(),
			}
			result.Steps = append(result.Steps, sr)
			p.fail(result, step, err)
			continue
		}

		if p.config.OnStepStart != nil {
			p.config.OnStepStart(i, total, step)
		}

		sr, stepErr := p.executeStep(ctx, i, step)
		result.Steps = append(result.Steps, sr)

		if p.config.OnStepComplete != nil {
			p.config.OnStepComplete(i, total, &result.Steps[len(result.Steps)-1])
		}

		if stepErr != nil {
			p.fail(result, step, stepErr)
			continue
		}
		p.enter(next)
	}

	result.FinalState = string(p.state)
	result.Duration = time.Since(start)
	result.ComputeSummary()
	result.Status = result.AggregateStatus()
	if p.state == StateFailed {
		result.Status = core.StatusFailed
	}

	logger.Info("pipeline %q finished in state %s (%s)", p.flow.Name, p.state, result.Status)
	return result
}

// precondition returns the state step enters on success, or an error when
// the step cannot run from the current state.
func (p *Pipeline) precondition(step flow.Step) (State, error) {
	next, ok := StateAfter(step.Type())
	if !ok {
		return "", core.ErrInvalidConfig.WithMessagef("unsupported step %q", step.Type())
	}
	if err := Transition(p.state, next); err != nil {
		return "", core.ErrInvalidConfig.WithMessagef("step %q out of order", step.Type()).WithCause(err)
	}
	return next, nil
}

func (p *Pipeline) enter(s State) {
	logger.Debug("state %s -> %s", p.state, s)
	p.state = s
	p.history = append(p.history, s)
}

func (p *Pipeline) fail(result *core.FlowResult, step flow.Step, err error) {
	logger.Error("step %s failed: %v", step.Type(), err)
	p.enter(StateFailed)
	result.FailedStep = string(step.Type())
	result.Error = err.Error()
	result.Message = fmt.Sprintf("%s failed", step.Label())
}

// executeStep runs one step and captures its screenshot. It returns the
// step error when the step is fatal to the pipeline.
func (p *Pipeline) executeStep(ctx context.Context, idx int, step flow.Step) (core.StepResult, error) {
	sr := core.StepResult{
		Step:      step,
		Index:     idx,
		Command:   string(step.Type()),
		Label:     step.Label(),
		Status:    core.StatusRunning,
		StartTime: time.Now(),
	}
	logger.Info("[%d/%d] %s", idx+1, len(p.flow.Steps), step.Describe())

	var res *core.CommandResult
	switch s := step.(type) {
	case *flow.OpenComposerStep:
		res = p.openComposer(ctx, s)
	case *flow.UploadMediaStep:
		res = p.uploadMedia(ctx, s)
	case *flow.InputTextStep:
		res = p.inputText(ctx, s)
	case *flow.ClickStep:
		res = p.click(ctx, s)
	case *flow.FinishStep:
		res = p.finish(ctx, s)
	default:
		res = errorResult(core.ErrInvalidConfig.WithMessagef("unsupported step %q", step.Type()))
	}

	sr.Duration = time.Since(sr.StartTime)
	sr.Message = res.Message
	sr.Warning = res.Warning
	sr.Element = res.Element

	var stepErr error
	if res.Success {
		sr.Status = core.StatusPassed
		if res.Warning != "" {
			sr.Status = core.StatusWarned
		}
	} else {
		stepErr = res.Error
		if stepErr == nil {
			stepErr = core.ErrInteraction.WithMessage(res.Message)
		}
		sr.Category = core.CategoryOf(stepErr)
		sr.Status = core.StatusFor(sr.Category)
		sr.Error = stepErr.Error()
	}

	if att := p.capture(step, sr.Status); att != nil {
		sr.Attachments = append(sr.Attachments, *att)
	}

	logger.Info("[%d/%d] %s %s (%dms)", idx+1, len(p.flow.Steps), step.Type(), sr.Status, sr.Duration.Milliseconds())
	return sr, stepErr
}

// capture writes the step's failure or milestone screenshot.
func (p *Pipeline) capture(step flow.Step, status core.StepStatus) *core.Attachment {
	names := step.Artifacts()
	name := names.Success
	if !status.IsSuccess() {
		name = names.Failure
	}
	if name == "" {
		return nil
	}
	att, err := p.config.Diagnostics.Capture(p.browser, name, status)
	if err != nil {
		logger.Warn("screenshot for %s not saved: %v", step.Type(), err)
		return nil
	}
	return att
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func skippedResult(idx int, step flow.Step) core.StepResult {
	return core.StepResult{
		Step:    step,
		Index:   idx,
		Command: string(step.Type()),
		Label:   step.Label(),
		Status:  core.StatusSkipped,
		Message: "previous step failed",
	}
}
