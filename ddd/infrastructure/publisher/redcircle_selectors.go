package publisher

// The RedCircle UI exposes no API; these selectors and URL patterns are the
// whole contract. They are kept in one place so a third-party UI change is a
// data update, not a logic change.
var redcircleSelectors = struct {
	SignInPath       string
	EmailInput       string
	PasswordInput    string
	SubmitButton     string
	MainContent      string
	ShowTileTitleFmt string
	ComposerSuffix   string
	ComposerIframe   string
	TitleInput       string
	DescriptionQuill string
	AudioFileInput   string
	ScheduleMonth    string
	TranscriptURL    string
	TranscriptType   string
	TranscriptVTT    string
	ShowsPath        string
	EpisodeLink      string
}{
	SignInPath:       "/sign-in?goto=%2F&",
	EmailInput:       `input[name="email"]`,
	PasswordInput:    `input[name="password"]`,
	SubmitButton:     `button[type="submit"]`,
	MainContent:      `.main-content`,
	ShowTileTitleFmt: `div[title=%q]`,
	ComposerSuffix:   "/ep/create",
	ComposerIframe:   `iframe`,
	TitleInput:       `#title`,
	DescriptionQuill: `.ql-editor`,
	AudioFileInput:   `input[type="file"][accept*="audio"]`,
	ScheduleMonth:    `[data-type="month"]`,
	TranscriptURL:    `#transcriptInfo_url`,
	TranscriptType:   `#transcriptInfo_type`,
	TranscriptVTT:    `div[title="VTT"]`,
	ShowsPath:        "/shows",
	EpisodeLink:      `a[data-testid="tooltip-wrapped-text"]`,
}

// Scripted interactions where the target has no stable selector and must be
// found by visible text.
const (
	jsSetDescription = `(() => {
		const quill = document.querySelector('.ql-editor');
		if (!quill) { return false; }
		quill.innerHTML = %s;
		return true;
	})()`

	jsToggleTranscription = `(() => {
		const labels = Array.from(document.querySelectorAll('span.ant-checkbox-label'));
		const target = labels.find(l => l.textContent.trim() === 'Transcribe Episode');
		if (target) { target.click(); return true; }
		return false;
	})()`

	jsOpenMoreOptions = `(() => {
		const strongs = Array.from(document.querySelectorAll('strong'));
		const target = strongs.find(s => s.textContent.trim() === 'More Options');
		if (target) { target.click(); return true; }
		return false;
	})()`

	jsSaveAsDraft = `(() => {
		const spans = Array.from(document.querySelectorAll('span'));
		const btn = spans.find(s => s.textContent.trim() === 'Save as Draft');
		if (btn) { btn.disabled = false; btn.click(); return true; }
		return false;
	})()`

	jsSelectShowFmt = `(() => {
		const spans = Array.from(document.querySelectorAll('span.m-lxs'));
		const btn = spans.find(s => s.textContent.trim() === %s);
		if (btn) { btn.click(); return true; }
		return false;
	})()`
)
