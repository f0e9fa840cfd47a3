package scraper

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/playwright-community/playwright-go"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// PlaywrightRenderer is the rendered-browser escalation strategy. The
// browser is launched per invocation and torn down before returning,
// error or not; instances are never pooled.
type PlaywrightRenderer struct{}

func (r *PlaywrightRenderer) Render(ctx context.Context, pageURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	pw, err := playwright.Run()
	if err != nil {
		return "", fmt.Errorf("start playwright: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	if err != nil {
		return "", fmt.Errorf("launch browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.NewPage(playwright.BrowserNewPageOptions{
		UserAgent: playwright.String(browserUserAgent),
	})
	if err != nil {
		return "", fmt.Errorf("new page: %w", err)
	}

	if _, err := page.Goto(pageURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(45000),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return "", fmt.Errorf("goto %s: %w", pageURL, err)
	}

	// scroll in uneven steps so lazy-loaded cards actually materialize
	for i := 0; i < 5; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page.Evaluate(fmt.Sprintf(`window.scrollBy(0, %d)`, 500+rand.Intn(500)))
		page.WaitForTimeout(float64(300 + rand.Intn(400)))
	}
	page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(8000),
	})

	content, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("read rendered content: %w", err)
	}
	return content, nil
}
