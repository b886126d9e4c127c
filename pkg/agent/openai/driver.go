package openai

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// maxPageText caps how much page content is fed back to the model.
const maxPageText = 20000

// pageDriver is the narrow browser surface the tool loop needs. It exists
// so loop logic is testable without a live browser.
type pageDriver interface {
	Navigate(url string) error
	Click(selector string) error
	Fill(selector, value string) error
	Text() (string, error)
	URL() string
}

// playwrightDriver drives a real page.
type playwrightDriver struct {
	page playwright.Page
}

func (d *playwrightDriver) Navigate(url string) error {
	if _, err := d.page.Goto(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (d *playwrightDriver) Click(selector string) error {
	if err := d.page.Click(selector); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (d *playwrightDriver) Fill(selector, value string) error {
	if err := d.page.Fill(selector, value); err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}
	return nil
}

func (d *playwrightDriver) Text() (string, error) {
	body, err := d.page.QuerySelector("body")
	if err != nil {
		return "", fmt.Errorf("body query failed: %w", err)
	}
	if body == nil {
		return "", fmt.Errorf("no body element found")
	}
	text, err := body.TextContent()
	if err != nil {
		return "", fmt.Errorf("text extraction failed: %w", err)
	}
	return truncate(text, maxPageText), nil
}

func (d *playwrightDriver) URL() string {
	return d.page.URL()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + fmt.Sprintf("\n[content truncated: %d of %d characters shown]", maxLen, len(s))
}
