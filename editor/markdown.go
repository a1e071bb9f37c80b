package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
}

// Markdown exports the current document as CommonMark. Mentions render as
// their anchor text, emoji images as their alt text.
func (c *Controller) Markdown(ctx context.Context) (string, error) {
	html, err := c.GetHTML(ctx)
	if err != nil {
		return "", err
	}
	return ConvertToMarkdown(html)
}

// ConvertToMarkdown converts editor HTML to CommonMark without touching the
// surface; useful for exporting cached or stored revisions.
func ConvertToMarkdown(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}
	out, err := newMarkdownConverter().ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("editor: markdown export: %w", err)
	}
	return strings.TrimSpace(out), nil
}
