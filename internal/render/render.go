// Package render turns evaluation memos into styled HTML and PDF.
package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Meta is the header block rendered above the memo body.
type Meta struct {
	Company     string
	Acquirer    string
	Decision    string
	CompletedAt time.Time
}

const memoCSS = `body{font-family:Georgia,serif;color:#1c1917;margin:0;background:#fff;}
.memo-wrap{max-width:960px;margin:0 auto;padding:0.6rem;}
.memo-gutter{border-left:3px solid #1e3a5f;border-right:3px solid #1e3a5f;padding:0 0.65rem;}
.memo-meta{color:#44403c;font-size:0.85rem;margin-bottom:0.75rem;}
.memo-meta strong{color:#1c1917;}
.memo-badge{display:inline-block;background:#dbeafe;color:#1e3a5f;border:1px solid #93c5fd;border-radius:4px;padding:0.15rem 0.5rem;font-size:0.8rem;font-weight:700;}
.memo-html h1,.memo-html h2{font-family:Helvetica,Arial,sans-serif;}
.memo-html table{width:100%;border-collapse:collapse;border:1px solid #a8a29e;font-size:0.85rem;}
.memo-html th,.memo-html td{border:1px solid #a8a29e;padding:0.35rem 0.45rem;text-align:left;vertical-align:top;}
.memo-html thead th{background:#f1f5f9;font-weight:700;}
html,body,*{-webkit-print-color-adjust:exact !important;print-color-adjust:exact !important;}
@media print{@page{size:auto;margin:12mm;}.memo-wrap{max-width:none;}}`

// HTML converts the memo markdown to a complete standalone HTML document.
func HTML(markdown string, meta Meta) (string, error) {
	var content strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(markdown), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}

	var metaHTML strings.Builder
	if meta.Company != "" {
		metaHTML.WriteString("<div><strong>Target:</strong> " + html.EscapeString(meta.Company) + "</div>")
	}
	if meta.Acquirer != "" {
		metaHTML.WriteString("<div><strong>Acquirer:</strong> " + html.EscapeString(meta.Acquirer) + "</div>")
	}
	if !meta.CompletedAt.IsZero() {
		metaHTML.WriteString("<div><strong>Date:</strong> " + html.EscapeString(meta.CompletedAt.Format("January 2, 2006 at 3:04 PM MST")) + "</div>")
	}
	badgeHTML := ""
	if meta.Decision != "" {
		badgeHTML = "<span class='memo-badge'>" + html.EscapeString(meta.Decision) + "</span>"
	}

	return "<!doctype html><html><head><meta charset='utf-8'><title>Acquisition Evaluation Memo</title>" +
		"<style>" + memoCSS + "</style></head><body>" +
		"<div class='memo-wrap'><div class='memo-gutter'>" +
		"<div class='memo-meta'>" + metaHTML.String() + badgeHTML + "</div>" +
		"<div class='memo-html'>" + content.String() + "</div>" +
		"</div></div></body></html>", nil
}

// ChromiumPDFRenderer prints the HTML memo to PDF through headless Chromium.
type ChromiumPDFRenderer struct {
	chromePath string
}

func NewChromiumPDFRenderer() *ChromiumPDFRenderer {
	return &ChromiumPDFRenderer{chromePath: detectChromePath()}
}

func (r *ChromiumPDFRenderer) Render(ctx context.Context, markdown string, meta Meta) ([]byte, error) {
	htmlDoc, err := HTML(markdown, meta)
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	}
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(timeoutCtx, append(chromedp.DefaultExecAllocatorOptions[:], opts...)...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	var pdf []byte
	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(htmlDoc))
	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			footer := `<div style="width:100%;text-align:center;font-size:9px;color:#666;padding-right:8px;">` +
				`Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`
			out, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate(`<div></div>`).
				WithFooterTemplate(footer).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.5).
				WithMarginBottom(0.75).
				WithMarginLeft(0.45).
				WithMarginRight(0.45).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = out
			return nil
		}),
	); err != nil {
		return nil, err
	}
	return pdf, nil
}

func detectChromePath() string {
	candidates := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
