package flow

// Flow is an ordered list of pipeline steps.
type Flow struct {
	Name  string
	Steps []Step
}

// Params carries the text and timing inputs of the composer pipeline.
type Params struct {
	Caption    string
	NetworkTag string

	CandidateTimeoutMs int // Per-candidate wait for every step target
	OpenSettleMs       int // Pause after clicking New Post
	ComposerConfirmMs  int // Wait for the composer marker
	UploadSettleMs     int // Pause after attaching the media file
	UploadConfirmMs    int // Wait for upload completion
}

// DefaultParams returns the default caption, tag and timings.
func DefaultParams() Params {
	return Params{
		Caption:            "#viral #Reels",
		NetworkTag:         "#reels",
		CandidateTimeoutMs: 5000,
		OpenSettleMs:       3000,
		ComposerConfirmMs:  10000,
		UploadSettleMs:     5000,
		UploadConfirmMs:    120000,
	}
}

// ComposerFlow builds the nine-step composer pipeline.
func ComposerFlow(sel ComposerSelectors, p Params) *Flow {
	base := func(t StepType, label, failure, success string) BaseStep {
		return BaseStep{
			StepType:        t,
			StepLabel:       label,
			TimeoutMs:       p.CandidateTimeoutMs,
			FailureArtifact: failure,
			SuccessArtifact: success,
		}
	}

	return &Flow{
		Name: "compose post",
		Steps: []Step{
			&OpenComposerStep{
				BaseStep:         base(StepOpenComposer, "Open composer", "new_post_error", "new_post_opened"),
				Button:           sel.NewPost,
				Marker:           sel.ComposerMarker,
				SettleMs:         p.OpenSettleMs,
				ConfirmTimeoutMs: p.ComposerConfirmMs,
			},
			&UploadMediaStep{
				BaseStep:         base(StepUploadMedia, "Upload video", "video_upload_error", "video_uploaded"),
				Input:            sel.FileInput,
				Progress:         sel.UploadProgress,
				Complete:         sel.UploadComplete,
				SettleMs:         p.UploadSettleMs,
				ConfirmTimeoutMs: p.UploadConfirmMs,
			},
			&InputTextStep{
				BaseStep: base(StepEnterCaption, "Enter caption", "content_type_error", "content_typed"),
				Target:   sel.Caption,
				Text:     p.Caption,
			},
			&ClickStep{
				BaseStep: base(StepOpenCustomization, "Open customization", "customize_error", "customize_clicked"),
				Target:   sel.Customize,
			},
			&ClickStep{
				BaseStep: base(StepFocusNetworkText, "Focus network text", "second_text_area_error", "second_text_area_clicked"),
				Target:   sel.NetworkText,
			},
			&InputTextStep{
				BaseStep: base(StepEnterNetworkTag, "Enter network tag", "reels_input_error", "reels_input_filled"),
				Target:   sel.NetworkTag,
				Text:     p.NetworkTag,
			},
			&ClickStep{
				BaseStep: base(StepOpenOptionMenu, "Open option menu", "section_button_error", "section_button_clicked"),
				Target:   sel.OptionMenu,
			},
			&ClickStep{
				BaseStep: base(StepSelectOption, "Select option", "list_item_error", "list_item_clicked"),
				Target:   sel.OptionItem,
			},
			&FinishStep{
				BaseStep:         base(StepFinish, "Finish", "finish_error", "post_ready"),
				Marker:           sel.Ready,
				ConfirmTimeoutMs: p.ComposerConfirmMs,
			},
		},
	}
}
