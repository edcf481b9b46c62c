package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"transfer-service/ddd/domain/gateway"
	"transfer-service/ddd/domain/vo"
	"transfer-service/pkg/config"
	"transfer-service/pkg/logger"
)

// RedCirclePublisher publishes an episode by driving the RedCircle web UI
// with a headless browser. The flow is an ordered sequence of named steps;
// any step failure is terminal for the job — a half-finished UI sequence is
// not safe to retry.
type RedCirclePublisher struct {
	cfg config.RedCircleConfig
}

// NewRedCirclePublisher 创建RedCircle浏览器发布适配器
func NewRedCirclePublisher(cfg config.RedCircleConfig) *RedCirclePublisher {
	return &RedCirclePublisher{cfg: cfg}
}

var _ gateway.Publisher = (*RedCirclePublisher)(nil)

// flowStep 发布流程中的一个具名状态转换
type flowStep struct {
	name string
	// timeout 覆盖默认的StepTimeout；0表示用默认值
	timeout time.Duration
	run     func(ctx context.Context) error
}

// Publish drives the full sign-in → compose → submit → resolve sequence.
// The browser process and all attached resources are torn down on every exit
// path via the deferred allocator cancels.
func (p *RedCirclePublisher) Publish(ctx context.Context, localPath string, meta vo.PublishMetadata) vo.PublishResult {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", p.cfg.Headless),
		chromedp.Flag("disable-gpu", p.cfg.Headless),
	)
	if path := strings.TrimSpace(p.cfg.ChromePath); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	logger.Info("Starting RedCircle episode publish", map[string]interface{}{
		"local_path": localPath,
		"title":      meta.Title,
		"headless":   p.cfg.Headless,
	})

	var episodeURL string
	for _, step := range p.flow(browserCtx, localPath, meta, &episodeURL) {
		if err := p.runStep(browserCtx, step); err != nil {
			logger.Error("RedCircle flow step failed", map[string]interface{}{
				"step":  step.name,
				"error": err.Error(),
			})
			return vo.NewFailureResult(vo.ErrorKindAutomation, fmt.Sprintf("%s: %v", step.name, err))
		}
		logger.Debugf("RedCircle flow step done step=%s", step.name)
	}

	message := "Episode published to RedCircle"
	if meta.TransformNote != "" {
		message += " (" + meta.TransformNote + ")"
	}
	logger.Info("RedCircle episode published", map[string]interface{}{"episode_url": episodeURL})
	return vo.NewSuccessResult(episodeURL, message)
}

// runStep executes one step under the per-step timeout. Third-party page
// rendering latency is high and variable, so the timeout is minutes-scale.
func (p *RedCirclePublisher) runStep(browserCtx context.Context, step flowStep) error {
	timeout := step.timeout
	if timeout <= 0 {
		timeout = p.cfg.StepTimeout
	}
	stepCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()
	return step.run(stepCtx)
}

// flow builds the ordered state sequence:
// Start → Authenticated → ShowSelected → ComposerOpen → FieldsFilled →
// AudioAttached → Scheduled → TranscriptionConfigured → Submitted →
// Published → LocatorResolved.
func (p *RedCirclePublisher) flow(browserCtx context.Context, localPath string, meta vo.PublishMetadata, episodeURL *string) []flowStep {
	sel := redcircleSelectors
	var showURL string

	steps := []flowStep{
		{name: "authenticate", run: func(ctx context.Context) error {
			return chromedp.Run(ctx,
				chromedp.Navigate(p.cfg.BaseURL+sel.SignInPath),
				chromedp.WaitVisible(sel.EmailInput, chromedp.ByQuery),
				chromedp.SendKeys(sel.EmailInput, p.cfg.Email, chromedp.ByQuery),
				chromedp.SendKeys(sel.PasswordInput, p.cfg.Password, chromedp.ByQuery),
				chromedp.Click(sel.SubmitButton, chromedp.ByQuery),
				chromedp.WaitVisible(sel.MainContent, chromedp.ByQuery),
			)
		}},
		{name: "select show", run: func(ctx context.Context) error {
			tile := fmt.Sprintf(sel.ShowTileTitleFmt, p.cfg.ShowTitle)
			if err := chromedp.Run(ctx,
				chromedp.WaitVisible(tile, chromedp.ByQuery),
				chromedp.Click(tile, chromedp.ByQuery),
				chromedp.Location(&showURL),
			); err != nil {
				return err
			}
			showURL = strings.TrimSuffix(showURL, "/")
			return nil
		}},
		{name: "open composer", run: func(ctx context.Context) error {
			return chromedp.Run(ctx,
				chromedp.Navigate(showURL+sel.ComposerSuffix),
				chromedp.WaitVisible(sel.ComposerIframe, chromedp.ByQuery),
			)
		}},
		{name: "dismiss modals", run: func(ctx context.Context) error {
			// An unknown, variable number of overlapping dialogs covers the
			// composer; dismiss-and-wait a bounded number of times.
			for i := 0; i < p.cfg.ModalDismissMax; i++ {
				if err := chromedp.Run(ctx,
					chromedp.KeyEvent(kb.Escape),
					chromedp.Sleep(p.cfg.ModalDismissWait),
				); err != nil {
					return err
				}
			}
			return nil
		}},
		{name: "fill fields", run: func(ctx context.Context) error {
			htmlJSON, err := json.Marshal(meta.Description)
			if err != nil {
				return err
			}
			var ok bool
			if err := chromedp.Run(ctx,
				chromedp.WaitVisible(sel.TitleInput, chromedp.ByQuery),
				chromedp.SendKeys(sel.TitleInput, meta.Title, chromedp.ByQuery),
				chromedp.Evaluate(fmt.Sprintf(jsSetDescription, string(htmlJSON)), &ok),
			); err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("description editor not found")
			}
			return nil
		}},
		{name: "attach audio", run: func(ctx context.Context) error {
			return chromedp.Run(ctx,
				chromedp.SetUploadFiles(sel.AudioFileInput, []string{localPath}, chromedp.ByQuery),
			)
		}},
	}

	if meta.Scheduled() {
		steps = append(steps, flowStep{name: "schedule", run: func(ctx context.Context) error {
			when := meta.SchedulingTime.Format("01/02/2006 03:04 PM")
			return chromedp.Run(ctx,
				chromedp.WaitVisible(sel.ScheduleMonth, chromedp.ByQuery),
				chromedp.Click(sel.ScheduleMonth, chromedp.ByQuery),
				chromedp.KeyEvent(kb.ArrowLeft),
				chromedp.KeyEvent(when),
			)
		}})
	}

	if meta.TranscriptURL != "" {
		steps = append(steps, flowStep{name: "configure transcription", run: func(ctx context.Context) error {
			var toggled, opened bool
			if err := chromedp.Run(ctx,
				chromedp.Evaluate(jsToggleTranscription, &toggled),
				chromedp.Evaluate(jsOpenMoreOptions, &opened),
				chromedp.WaitVisible(sel.TranscriptURL, chromedp.ByQuery),
				chromedp.SendKeys(sel.TranscriptURL, meta.TranscriptURL, chromedp.ByQuery),
				chromedp.Click(sel.TranscriptType, chromedp.ByQuery),
				chromedp.WaitVisible(sel.TranscriptVTT, chromedp.ByQuery),
				chromedp.Click(sel.TranscriptVTT, chromedp.ByQuery),
			); err != nil {
				return err
			}
			if !toggled {
				return fmt.Errorf("transcription checkbox not found")
			}
			return nil
		}})
	}

	steps = append(steps,
		flowStep{name: "submit", run: func(ctx context.Context) error {
			var clicked bool
			if err := chromedp.Run(ctx, chromedp.Evaluate(jsSaveAsDraft, &clicked)); err != nil {
				return err
			}
			if !clicked {
				return fmt.Errorf("save-as-draft button not found")
			}
			return nil
		}},
		// 轮询要跑满PollDeadline，不能被默认步超时截断
		flowStep{name: "await publish", timeout: p.cfg.PollDeadline + p.cfg.PollInterval, run: func(ctx context.Context) error {
			return p.pollUntilCreated(ctx, episodeURL)
		}},
		flowStep{name: "resolve locator", run: func(ctx context.Context) error {
			// The composer's post-submit URL is not the canonical episode
			// page; look the episode up from the shows listing.
			show := fmt.Sprintf("%q", p.cfg.ShowTitle)
			var selected bool
			if err := chromedp.Run(ctx,
				chromedp.Navigate(p.cfg.BaseURL+sel.ShowsPath),
				chromedp.Evaluate(fmt.Sprintf(jsSelectShowFmt, show), &selected),
				chromedp.WaitVisible(sel.EpisodeLink, chromedp.ByQuery),
				chromedp.Click(sel.EpisodeLink, chromedp.ByQuery),
				chromedp.Location(episodeURL),
			); err != nil {
				// The episode exists at this point; keep the post-submit URL
				// as locator rather than failing the whole job.
				logger.Warn("Canonical locator lookup failed, keeping creation URL", map[string]interface{}{
					"error": err.Error(),
				})
			}
			return nil
		}},
	)

	return steps
}

// pollUntilCreated watches the navigation location until it leaves the
// composer pattern, at a fixed interval with an explicit deadline. Timeout is
// an automation failure, not an infinite wait.
func (p *RedCirclePublisher) pollUntilCreated(ctx context.Context, episodeURL *string) error {
	deadline := time.Now().Add(p.cfg.PollDeadline)
	for {
		var current string
		if err := chromedp.Run(ctx, chromedp.Location(&current)); err != nil {
			return err
		}
		if !strings.HasSuffix(current, redcircleSelectors.ComposerSuffix) {
			*episodeURL = current
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("episode creation did not complete within %s", p.cfg.PollDeadline)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.cfg.PollInterval):
		}
	}
}
