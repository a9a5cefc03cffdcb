package extract

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors are HTML elements removed before extraction.
// These contribute no meaningful content to the page text.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header",
	"img", "picture", "figure", "figcaption",
	"iframe", "video", "audio",
	"svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
}

// tableSelectors are additionally removed unless table inclusion is requested
var tableSelectors = []string{"table", "thead", "tbody", "tr", "td", "th"}

// Options tunes content extraction per caller
type Options struct {
	// IncludeTables keeps table content in the extracted text
	IncludeTables bool
	// Deduplicate drops repeated lines (boilerplate shows up more than once)
	Deduplicate bool
}

// ContentExtractor converts raw HTML into best-effort plain text and a title
type ContentExtractor struct{}

// NewContentExtractor creates a ContentExtractor
func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

// Text isolates the main content of an HTML page and returns it as plain
// text. Returns ErrNoContent when nothing meaningful survives extraction.
func (e *ContentExtractor) Text(html string, opts Options) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("%w: parsing HTML: %v", ErrNoContent, err)
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}
	if !opts.IncludeTables {
		for _, sel := range tableSelectors {
			doc.Find(sel).Remove()
		}
	}

	// Best content container in priority order: <main> is the most
	// semantically correct, then <article>, then <body>.
	var content *goquery.Selection
	for _, tag := range []string{"main", "article", "body"} {
		sel := doc.Find(tag)
		if sel.Length() > 0 {
			content = sel.First()
			break
		}
	}
	if content == nil {
		return "", fmt.Errorf("%w: no content container found", ErrNoContent)
	}

	fragment, err := goquery.OuterHtml(content)
	if err != nil {
		return "", fmt.Errorf("%w: serializing content: %v", ErrNoContent, err)
	}

	// Markdown is the canonical plain-text form: it keeps headings and
	// list structure as recognizable lines, which the recipe heuristics
	// depend on.
	markdown, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return "", fmt.Errorf("%w: converting to markdown: %v", ErrNoContent, err)
	}

	text := cleanLines(markdown, opts.Deduplicate)
	if strings.TrimSpace(text) == "" {
		return "", ErrNoContent
	}
	return text, nil
}

// Title extracts the page title from og:title metadata or the <title> tag
func (e *ContentExtractor) Title(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// cleanLines trims markdown decoration noise and optionally deduplicates
// repeated lines while preserving order.
func cleanLines(text string, deduplicate bool) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	seen := make(map[string]bool)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimLeft(trimmed, "#*-+> ")
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == "" {
			continue
		}
		if deduplicate {
			key := strings.ToLower(trimmed)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, trimmed)
	}

	return strings.Join(out, "\n")
}
