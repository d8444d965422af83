package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/devicelab-dev/reel-publisher/pkg/core"
	"github.com/devicelab-dev/reel-publisher/pkg/driver/mock"
	"github.com/devicelab-dev/reel-publisher/pkg/flow"
)

const composerURL = "https://publish.buffer.com/all-channels"

// composer is a fully mocked composer UI holding an element for the first
// candidate of every selector.
type composer struct {
	browser  *mock.Browser
	page     *mock.Page
	sel      flow.ComposerSelectors
	elements map[string]*mock.Element // by selector yaml name
	media    string
	dir      string
}

func newComposer(t *testing.T) *composer {
	t.Helper()
	c := &composer{
		page:     mock.NewPage("Buffer"),
		sel:      flow.DefaultComposerSelectors(),
		elements: map[string]*mock.Element{},
		dir:      t.TempDir(),
	}
	for _, name := range []string{
		"newPost", "composerMarker", "fileInput", "caption", "customize",
		"networkText", "networkTag", "optionMenu", "optionItem",
	} {
		el := &mock.Element{}
		c.elements[name] = el
		c.page.Add(c.sel.Selectors()[name].Candidates[0].Query(), el)
	}

	mediaDir := t.TempDir()
	c.media = filepath.Join(mediaDir, "clip.mp4")
	touch(t, c.media)

	c.browser = mock.New(mock.Config{Pages: map[string]*mock.Page{composerURL: c.page}})
	if err := c.browser.Navigate(composerURL); err != nil {
		t.Fatal(err)
	}
	return c
}

// remove deletes every candidate of the named selector from the page.
func (c *composer) remove(name string) {
	for _, l := range c.sel.Selectors()[name].Candidates {
		delete(c.page.Elements, l.Query())
	}
}

func testParams() flow.Params {
	p := flow.DefaultParams()
	p.CandidateTimeoutMs = 20
	p.OpenSettleMs = 0
	p.ComposerConfirmMs = 40
	p.UploadSettleMs = 0
	p.UploadConfirmMs = 40
	return p
}

func (c *composer) pipeline(media MediaSource) *Pipeline {
	if media == nil {
		media = StaticSource(c.media)
	}
	f := flow.ComposerFlow(c.sel, testParams())
	return New(c.browser, f, Config{
		Media:       media,
		Diagnostics: core.NewDiagnostics(c.dir, core.DefaultArtifactConfig()),
	})
}

func TestPipeline_FullRunReachesDone(t *testing.T) {
	c := newComposer(t)

	var started []flow.StepType
	p := c.pipeline(nil)
	p.config.OnStepStart = func(idx, total int, step flow.Step) {
		if total != 9 || idx != len(started) {
			t.Errorf("OnStepStart(%d, %d)", idx, total)
		}
		started = append(started, step.Type())
	}

	result := p.Run(context.Background())

	if p.State() != StateDone {
		t.Fatalf("State() = %s, want Done (error: %s)", p.State(), result.Error)
	}
	if result.FinalState != string(StateDone) || result.Status != core.StatusPassed {
		t.Errorf("FinalState/Status = %s/%s", result.FinalState, result.Status)
	}
	if result.TotalSteps != 9 || result.PassedSteps != 9 {
		t.Errorf("TotalSteps/PassedSteps = %d/%d, want 9/9", result.TotalSteps, result.PassedSteps)
	}

	history := p.History()
	if len(history) != len(sequence) {
		t.Fatalf("History() = %v", history)
	}
	for i := range sequence {
		if history[i] != sequence[i] {
			t.Errorf("History()[%d] = %s, want %s", i, history[i], sequence[i])
		}
	}

	wantOrder := []flow.StepType{
		flow.StepOpenComposer, flow.StepUploadMedia, flow.StepEnterCaption,
		flow.StepOpenCustomization, flow.StepFocusNetworkText, flow.StepEnterNetworkTag,
		flow.StepOpenOptionMenu, flow.StepSelectOption, flow.StepFinish,
	}
	for i, st := range wantOrder {
		if result.Steps[i].Command != string(st) || started[i] != st {
			t.Errorf("step %d = %s (started %s), want %s", i, result.Steps[i].Command, started[i], st)
		}
	}

	for _, name := range []string{"newPost", "customize", "networkText", "optionMenu", "optionItem"} {
		if n := c.elements[name].Clicks(); n != 1 {
			t.Errorf("%s clicked %d times, want 1", name, n)
		}
	}
	if files := c.elements["fileInput"].Files(); len(files) != 1 || files[0] != c.media {
		t.Errorf("fileInput files = %v", files)
	}
	if got := c.elements["caption"].Content; got != "#viral #Reels" {
		t.Errorf("caption = %q", got)
	}
	if got := c.elements["networkTag"].Content; got != "#reels" {
		t.Errorf("network tag = %q", got)
	}
	if p.Media() != c.media {
		t.Errorf("Media() = %s", p.Media())
	}

	for _, name := range []string{"new_post_opened", "video_uploaded", "content_typed", "post_ready"} {
		if _, err := os.Stat(filepath.Join(c.dir, name+".png")); err != nil {
			t.Errorf("milestone %s missing: %v", name, err)
		}
	}
	if c.browser.Screenshots() != 9 {
		t.Errorf("Screenshots() = %d, want 9", c.browser.Screenshots())
	}
}

func TestPipeline_FailureStopsLaterSteps(t *testing.T) {
	tests := []struct {
		remove   string
		failedAt int
		artifact string
	}{
		{"newPost", 0, "new_post_error"},
		{"fileInput", 1, "video_upload_error"},
		{"caption", 2, "content_type_error"},
		{"customize", 3, "customize_error"},
		{"networkText", 4, "second_text_area_error"},
		{"networkTag", 5, "reels_input_error"},
		{"optionMenu", 6, "section_button_error"},
		{"optionItem", 7, "list_item_error"},
	}

	for _, tt := range tests {
		t.Run(tt.remove, func(t *testing.T) {
			c := newComposer(t)
			c.remove(tt.remove)

			p := c.pipeline(nil)
			result := p.Run(context.Background())

			if p.State() != StateFailed {
				t.Fatalf("State() = %s, want Failed", p.State())
			}
			if result.Success() {
				t.Error("Success() = true")
			}
			failed := result.Steps[tt.failedAt]
			if result.FailedStep != failed.Command {
				t.Errorf("FailedStep = %s, want %s", result.FailedStep, failed.Command)
			}
			if failed.Status != core.StatusFailed || failed.Category != core.ErrCategoryNotFound {
				t.Errorf("failed step status/category = %s/%s", failed.Status, failed.Category)
			}
			for i, sr := range result.Steps {
				if i > tt.failedAt && sr.Status != core.StatusSkipped {
					t.Errorf("step %d status = %s, want skipped", i, sr.Status)
				}
				if i < tt.failedAt && !sr.Status.IsSuccess() {
					t.Errorf("step %d status = %s, want success", i, sr.Status)
				}
			}
			if result.SkippedSteps != 8-tt.failedAt {
				t.Errorf("SkippedSteps = %d, want %d", result.SkippedSteps, 8-tt.failedAt)
			}

			history := p.History()
			if len(history) != tt.failedAt+2 || history[len(history)-1] != StateFailed {
				t.Errorf("History() = %v", history)
			}
			if _, err := os.Stat(filepath.Join(c.dir, tt.artifact+".png")); err != nil {
				t.Errorf("failure screenshot missing: %v", err)
			}
			if c.elements["optionItem"].Clicks() != 0 && tt.failedAt < 7 {
				t.Error("a step after the failure ran")
			}
		})
	}
}

func TestPipeline_NoMediaFailsAtUpload(t *testing.T) {
	c := newComposer(t)
	p := c.pipeline(DirSource{Dir: t.TempDir(), Pattern: "*.mp4"})

	result := p.Run(context.Background())

	if result.FailedStep != string(flow.StepUploadMedia) {
		t.Fatalf("FailedStep = %q, want uploadMedia", result.FailedStep)
	}
	for _, s := range p.History() {
		if s == StateMediaUploaded {
			t.Error("MediaUploaded must not be reached")
		}
	}
	upload := result.Steps[1]
	if upload.Status != core.StatusFailed || upload.Category != core.ErrCategoryNotFound {
		t.Errorf("upload error = %s (%s)", upload.Error, upload.Category)
	}
	if len(c.elements["fileInput"].Files()) != 0 {
		t.Error("file input must not be touched without media")
	}
	for _, a := range c.browser.Lookups() {
		if a == c.sel.FileInput.Candidates[0].Query() {
			t.Error("file input looked up without media")
		}
	}
}

func TestPipeline_UnobservedConfirmationWarns(t *testing.T) {
	c := newComposer(t)
	c.remove("composerMarker")

	p := c.pipeline(nil)
	result := p.Run(context.Background())

	if p.State() != StateDone {
		t.Fatalf("State() = %s, want Done", p.State())
	}
	if result.Status != core.StatusWarned || !result.Success() {
		t.Errorf("Status = %s, want warned", result.Status)
	}
	if result.Steps[0].Status != core.StatusWarned || result.Steps[0].Warning == "" {
		t.Errorf("openComposer = %s %q", result.Steps[0].Status, result.Steps[0].Warning)
	}
	if result.Steps[8].Status != core.StatusWarned {
		t.Errorf("finish = %s, want warned", result.Steps[8].Status)
	}
	if result.WarnedSteps != 2 {
		t.Errorf("WarnedSteps = %d, want 2", result.WarnedSteps)
	}
}

func TestPipeline_UploadConfirmation(t *testing.T) {
	tests := []struct {
		name     string
		progress *mock.Element
		complete bool
		want     core.StepStatus
	}{
		{"no progress indicator", nil, false, core.StatusPassed},
		{"progress hidden", &mock.Element{Hidden: true}, false, core.StatusPassed},
		{"progress stuck, preview shown", &mock.Element{}, true, core.StatusPassed},
		{"progress stuck, no preview", &mock.Element{}, false, core.StatusWarned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newComposer(t)
			if tt.progress != nil {
				c.page.Add(c.sel.UploadProgress.Candidates[0].Query(), tt.progress)
			}
			if tt.complete {
				c.page.Add(c.sel.UploadComplete.Candidates[0].Query(), &mock.Element{})
			}

			result := c.pipeline(nil).Run(context.Background())
			if got := result.Steps[1].Status; got != tt.want {
				t.Errorf("upload status = %s, want %s", got, tt.want)
			}
			if result.FinalState != string(StateDone) {
				t.Errorf("FinalState = %s", result.FinalState)
			}
		})
	}
}

func TestPipeline_UsesKthCandidate(t *testing.T) {
	c := newComposer(t)
	c.remove("newPost")
	third := c.sel.NewPost.Candidates[2].Query()
	button := &mock.Element{}
	c.page.Add(third, button)

	result := c.pipeline(nil).Run(context.Background())

	el := result.Steps[0].Element
	if el == nil || el.CandidateIndex != 3 || el.Locator != third {
		t.Fatalf("Element = %+v, want candidate 3", el)
	}
	if button.Clicks() != 1 {
		t.Errorf("button clicks = %d", button.Clicks())
	}
}

func TestPipeline_InteractionErrorIsFatal(t *testing.T) {
	c := newComposer(t)
	c.elements["customize"].ActionErr = errors.New("element is detached")

	p := c.pipeline(nil)
	result := p.Run(context.Background())

	if result.FailedStep != string(flow.StepOpenCustomization) {
		t.Fatalf("FailedStep = %q", result.FailedStep)
	}
	if s := result.Steps[3]; s.Status != core.StatusErrored || s.Category != core.ErrCategoryTransient {
		t.Errorf("status/category = %s/%s", s.Status, s.Category)
	}
}

func TestPipeline_Cancelled(t *testing.T) {
	c := newComposer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := c.pipeline(nil)
	result := p.Run(ctx)

	if p.State() != StateFailed {
		t.Errorf("State() = %s, want Failed", p.State())
	}
	if result.SkippedSteps != 9 {
		t.Errorf("SkippedSteps = %d, want 9", result.SkippedSteps)
	}
	if result.Success() {
		t.Error("a cancelled run must not report success")
	}
	if c.elements["newPost"].Clicks() != 0 {
		t.Error("no step may run after cancellation")
	}
}

func TestPipeline_OutOfOrderStep(t *testing.T) {
	c := newComposer(t)
	full := flow.ComposerFlow(c.sel, testParams())
	f := &flow.Flow{Name: "bad", Steps: []flow.Step{full.Steps[2], full.Steps[0]}}

	var completed int
	p := New(c.browser, f, Config{
		Media:          StaticSource(c.media),
		OnStepComplete: func(int, int, *core.StepResult) { completed++ },
	})
	result := p.Run(context.Background())

	if p.State() != StateFailed || result.FailedStep != string(flow.StepEnterCaption) {
		t.Errorf("State/FailedStep = %s/%s", p.State(), result.FailedStep)
	}
	if result.Steps[0].Category != core.ErrCategoryConfig {
		t.Errorf("category = %s, want config", result.Steps[0].Category)
	}
	if completed != 0 {
		t.Errorf("OnStepComplete called %d times for steps that never ran", completed)
	}
	if len(c.elements["caption"].Typed()) != 0 {
		t.Error("out-of-order step must not run")
	}
}

func TestPipeline_OnStepComplete(t *testing.T) {
	c := newComposer(t)
	var statuses []core.StepStatus
	p := c.pipeline(nil)
	p.config.OnStepComplete = func(idx, total int, r *core.StepResult) {
		statuses = append(statuses, r.Status)
	}
	p.Run(context.Background())

	if len(statuses) != 9 {
		t.Fatalf("OnStepComplete called %d times, want 9", len(statuses))
	}
}
