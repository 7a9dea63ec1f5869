package sink

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// previewLimit caps the markdown preview so chat webhooks (Discord caps
// messages at 2000 chars) don't reject the payload.
const previewLimit = 900

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// Preview renders matched HTML as a truncated markdown snippet for the
// notification detail. Returns "" when conversion yields nothing useful.
func Preview(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	md, err := mdConverter.ConvertString(html)
	if err != nil {
		return ""
	}
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	runes := []rune(md)
	if len(runes) > previewLimit {
		md = string(runes[:previewLimit]) + "…"
	}
	return md
}
