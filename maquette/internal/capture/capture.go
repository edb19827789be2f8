package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Artifact is everything a clone run captures from the target page.
// In-memory only, owned by one run.
type Artifact struct {
	URL            string
	Screenshot     []byte // full-page PNG
	HTML           string
	Title          string
	Description    string
	ViewportWidth  int
	ViewportHeight int
	CapturedAt     time.Time
}

// Capture opens a stealth tab, navigates to pageURL, waits for load plus
// the settle delay, and returns the artifact. The tab is closed before
// returning. Navigation, timeout and screenshot failures are all capture
// failures.
func (m *Manager) Capture(ctx context.Context, pageURL string) (*Artifact, error) {
	b, err := m.Browser()
	if err != nil {
		return nil, err
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("capture: create tab: %w", err)
	}
	defer page.Close()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             m.cfg.ViewportWidth,
		Height:            m.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("capture: set viewport: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, m.cfg.NavigateTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("capture: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		return nil, fmt.Errorf("capture: wait load %s: %w", pageURL, err)
	}

	// Let late-rendering content settle before the screenshot.
	select {
	case <-time.After(m.cfg.SettleDelay):
	case <-ctx.Done():
		return nil, fmt.Errorf("capture: %w", ctx.Err())
	}

	art := &Artifact{
		URL:            pageURL,
		ViewportWidth:  m.cfg.ViewportWidth,
		ViewportHeight: m.cfg.ViewportHeight,
		CapturedAt:     time.Now(),
	}

	res, err := page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return nil, fmt.Errorf("capture: serialize DOM: %w", err)
	}
	art.HTML = res.Value.Str()

	if res, err := page.Context(ctx).Eval(`() => document.title`); err == nil {
		art.Title = res.Value.Str()
	}
	if res, err := page.Context(ctx).Eval(`() => {
		const m = document.querySelector('meta[name="description"]');
		return m ? m.content : '';
	}`); err == nil {
		art.Description = res.Value.Str()
	}

	shot, err := page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("capture: screenshot %s: %w", pageURL, err)
	}
	art.Screenshot = shot

	m.cfg.Logger.Debug("capture complete",
		"url", pageURL, "html_bytes", len(art.HTML), "png_bytes", len(shot))
	return art, nil
}
