package executor

import (
	"context"
	"path/filepath"
	"time"

	"github.com/devicelab-dev/reel-publisher/pkg/core"
	"github.com/devicelab-dev/reel-publisher/pkg/flow"
	"github.com/devicelab-dev/reel-publisher/pkg/logger"
	"github.com/devicelab-dev/reel-publisher/pkg/resolver"
)

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func (p *Pipeline) openComposer(ctx context.Context, s *flow.OpenComposerStep) *core.CommandResult {
	match, err := resolver.Clickable(ctx, p.browser, s.Button, ms(s.TimeoutMs))
	if err != nil {
		return errorResult(err)
	}
	if err := match.Element.Click(); err != nil {
		return interactionError("click", s.Button, err)
	}
	if err := p.sleep(ctx, ms(s.SettleMs)); err != nil {
		return errorResult(err)
	}

	res := successResult(match, "composer opened")
	if !s.Marker.IsEmpty() {
		if err := resolver.WaitAny(ctx, p.browser, s.Marker, ms(s.ConfirmTimeoutMs)); err != nil {
			if ctx.Err() != nil {
				return errorResult(ctx.Err())
			}
			res.Warning = unobserved(s, s.Marker)
		}
	}
	return res
}

func (p *Pipeline) uploadMedia(ctx context.Context, s *flow.UploadMediaStep) *core.CommandResult {
	if p.config.Media == nil {
		return errorResult(core.ErrNoMedia.WithMessage("no media source configured"))
	}
	path, err := p.config.Media.Select()
	if err != nil {
		return errorResult(err)
	}

	match, err := resolver.Present(ctx, p.browser, s.Input, ms(s.TimeoutMs))
	if err != nil {
		return errorResult(err)
	}
	if err := match.Element.SetFiles(path); err != nil {
		return interactionError("attach media to", s.Input, err)
	}
	p.media = path
	logger.Info("attached %s", path)

	if err := p.sleep(ctx, ms(s.SettleMs)); err != nil {
		return errorResult(err)
	}

	res := successResult(match, "uploaded "+filepath.Base(path))
	if !p.awaitUpload(ctx, s) {
		if ctx.Err() != nil {
			return errorResult(ctx.Err())
		}
		res.Warning = unobserved(s, s.Complete)
	}
	return res
}

// awaitUpload waits for the progress indicator to go away, then falls back
// to the completion marker. It reports whether either was observed.
func (p *Pipeline) awaitUpload(ctx context.Context, s *flow.UploadMediaStep) bool {
	if !s.Progress.IsEmpty() {
		err := resolver.WaitGone(ctx, p.browser, s.Progress, ms(s.ConfirmTimeoutMs))
		if err == nil {
			return true
		}
		logger.Debug("upload progress still visible: %v", err)
	}
	if s.Complete.IsEmpty() || ctx.Err() != nil {
		return false
	}
	return resolver.WaitAny(ctx, p.browser, s.Complete, ms(s.TimeoutMs)) == nil
}

func (p *Pipeline) inputText(ctx context.Context, s *flow.InputTextStep) *core.CommandResult {
	match, err := resolver.Present(ctx, p.browser, s.Target, ms(s.TimeoutMs))
	if err != nil {
		return errorResult(err)
	}
	if err := match.Element.Click(); err != nil {
		return interactionError("focus", s.Target, err)
	}
	if err := match.Element.Clear(); err != nil {
		return interactionError("clear", s.Target, err)
	}
	if err := match.Element.Type(s.Text); err != nil {
		return interactionError("type into", s.Target, err)
	}
	return successResult(match, "typed "+s.Text)
}

func (p *Pipeline) click(ctx context.Context, s *flow.ClickStep) *core.CommandResult {
	match, err := resolver.Clickable(ctx, p.browser, s.Target, ms(s.TimeoutMs))
	if err != nil {
		return errorResult(err)
	}
	if err := match.Element.Click(); err != nil {
		return interactionError("click", s.Target, err)
	}
	return successResult(match, "clicked "+s.Target.Describe())
}

func (p *Pipeline) finish(ctx context.Context, s *flow.FinishStep) *core.CommandResult {
	res := &core.CommandResult{Success: true, Message: "post ready"}
	if s.Marker.IsEmpty() {
		return res
	}
	if err := resolver.WaitAny(ctx, p.browser, s.Marker, ms(s.ConfirmTimeoutMs)); err != nil {
		if ctx.Err() != nil {
			return errorResult(ctx.Err())
		}
		res.Warning = unobserved(s, s.Marker)
	}
	return res
}

func successResult(m *resolver.Match, msg string) *core.CommandResult {
	return &core.CommandResult{
		Success: true,
		Message: msg,
		Element: m.Info(),
	}
}

func errorResult(err error) *core.CommandResult {
	return &core.CommandResult{
		Success: false,
		Error:   err,
		Message: err.Error(),
	}
}

func interactionError(action string, sel flow.Selector, err error) *core.CommandResult {
	return errorResult(core.ErrInteraction.
		WithMessagef("cannot %s %s", action, sel.Describe()).
		WithCause(err))
}

// unobserved logs a confirmation that did not show up and returns the
// warning recorded on the step.
func unobserved(step flow.Step, marker flow.Selector) string {
	w := core.ErrConfirmationUnobserved.WithMessagef("%s not observed", marker.Describe())
	logger.Warn("%s: %v, continuing", step.Type(), w)
	return w.Error()
}
