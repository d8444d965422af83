package flow

// LoginSelectors locate the elements of the credential login page.
type LoginSelectors struct {
	Consent           Selector `yaml:"consent"`
	ChallengeFrame    Selector `yaml:"challengeFrame"`
	ChallengeCheckbox Selector `yaml:"challengeCheckbox"`
	Email             Selector `yaml:"email"`
	Password          Selector `yaml:"password"`
	Submit            Selector `yaml:"submit"`
	Error             Selector `yaml:"error"`
}

// DefaultLoginSelectors returns the login page selectors.
func DefaultLoginSelectors() LoginSelectors {
	return LoginSelectors{
		Consent: NewSelector("cookie consent",
			"xpath=//button[contains(text(),'Accept')]",
			"css=button#onetrust-accept-btn-handler",
		),
		ChallengeFrame: NewSelector("challenge frame",
			"xpath=//iframe[contains(@title,'reCAPTCHA')]",
		),
		ChallengeCheckbox: NewSelector("challenge checkbox",
			"xpath=//div[@class='recaptcha-checkbox-checkmark']",
			"css=#recaptcha-anchor",
		),
		Email: NewSelector("email field",
			"xpath=//input[@type='email']",
			"css=input[name='email']",
		),
		Password: NewSelector("password field",
			"xpath=//input[@type='password']",
			"css=input[name='password']",
		),
		Submit: NewSelector("submit button",
			"xpath=//button[@type='submit']",
			"xpath=//button[contains(text(),'Log in')]",
		),
		Error: NewSelector("login error",
			"xpath=//*[contains(text(),'Invalid') or contains(text(),'incorrect')]",
		),
	}
}

// ComposerSelectors locate the elements of the post composer.
type ComposerSelectors struct {
	NewPost        Selector `yaml:"newPost"`
	ComposerMarker Selector `yaml:"composerMarker"`
	FileInput      Selector `yaml:"fileInput"`
	UploadProgress Selector `yaml:"uploadProgress"`
	UploadComplete Selector `yaml:"uploadComplete"`
	Caption        Selector `yaml:"caption"`
	Customize      Selector `yaml:"customize"`
	NetworkText    Selector `yaml:"networkText"`
	NetworkTag     Selector `yaml:"networkTag"`
	OptionMenu     Selector `yaml:"optionMenu"`
	OptionItem     Selector `yaml:"optionItem"`
	Ready          Selector `yaml:"ready"`
}

const composerRoot = "/html/body/div[2]/div/div[1]/div/div[2]"

// DefaultComposerSelectors returns the composer selectors, path-based
// locators first followed by text, class and structural fallbacks.
func DefaultComposerSelectors() ComposerSelectors {
	return ComposerSelectors{
		NewPost: NewSelector("New Post button",
			"xpath=/html/body/div[1]/div[1]/main/div[1]/header/div[1]/div/button[2]",
			"xpath=//button[contains(text(), 'New Post')]",
			"xpath=//button[.//span[contains(text(), 'New Post')]]",
			"xpath=//button[contains(@class, 'new-post')]",
			"xpath=//button[.//*[name()='svg']]",
		),
		ComposerMarker: NewSelector("composer",
			"xpath=//div[contains(@class, 'composer') or contains(text(), 'Create a new post')]",
		),
		FileInput: NewSelector("file input",
			"xpath=//input[@type='file']",
		),
		UploadProgress: NewSelector("upload progress",
			"xpath=//div[contains(@class, 'upload-progress')]",
		),
		UploadComplete: NewSelector("upload complete",
			"xpath=//div[contains(@class, 'media-preview') or contains(text(), 'Upload complete')]",
		),
		Caption: NewSelector("caption editor",
			"xpath="+composerRoot+"/section[3]/div/div/div/div[1]/div[1]/div[1]/div/div",
			"css=[data-testid='composer-text-area'] [contenteditable='true']",
			"xpath=(//div[@contenteditable='true'])[1]",
		),
		Customize: NewSelector("customize button",
			"xpath="+composerRoot+"/section[4]/div/button",
			"xpath=//button[contains(., 'Customize')]",
		),
		NetworkText: NewSelector("network text area",
			"xpath="+composerRoot+"/section[3]/div[2]/div[2]/div/div[2]/div/div/div/div/div",
			"xpath=(//div[@contenteditable='true'])[2]",
		),
		NetworkTag: NewSelector("network tag input",
			"xpath="+composerRoot+"/section[3]/div[2]/div[2]/div/div[4]/div/div[1]/div/input",
			"xpath=//input[contains(@placeholder, 'hashtag') or contains(@placeholder, 'comment')]",
		),
		OptionMenu: NewSelector("option menu button",
			"xpath="+composerRoot+"/section[4]/div/div[2]/div/div/div/div/div/div[1]",
			"xpath=//section[4]//div[@role='button' or @aria-haspopup]",
		),
		OptionItem: NewSelector("first option",
			"xpath="+composerRoot+"/section[4]/div/div[2]/div/div/div/div/div/div[2]/ul/li[1]/div/p",
			"xpath=(//ul[@role='listbox' or @role='menu']/li)[1]",
		),
		Ready: NewSelector("composer ready",
			"xpath=//div[contains(@class, 'composer') or contains(text(), 'Create a new post')]",
		),
	}
}

// Selectors returns every composer selector keyed by its yaml name.
func (c *ComposerSelectors) Selectors() map[string]*Selector {
	return map[string]*Selector{
		"newPost":        &c.NewPost,
		"composerMarker": &c.ComposerMarker,
		"fileInput":      &c.FileInput,
		"uploadProgress": &c.UploadProgress,
		"uploadComplete": &c.UploadComplete,
		"caption":        &c.Caption,
		"customize":      &c.Customize,
		"networkText":    &c.NetworkText,
		"networkTag":     &c.NetworkTag,
		"optionMenu":     &c.OptionMenu,
		"optionItem":     &c.OptionItem,
		"ready":          &c.Ready,
	}
}

// Selectors returns every login selector keyed by its yaml name.
func (l *LoginSelectors) Selectors() map[string]*Selector {
	return map[string]*Selector{
		"consent":           &l.Consent,
		"challengeFrame":    &l.ChallengeFrame,
		"challengeCheckbox": &l.ChallengeCheckbox,
		"email":             &l.Email,
		"password":          &l.Password,
		"submit":            &l.Submit,
		"error":             &l.Error,
	}
}
