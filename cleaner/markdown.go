package cleaner

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// mdConverter is goroutine-safe and shared by all callers.
var mdConverter = newMarkdownConverter()

// newMarkdownConverter creates a converter tuned for compact model input:
// the base plugin drops head, script and style noise, commonmark renders
// headings, lists and links, and tables keep minimal cell padding.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// ToMarkdown converts HTML to Markdown. Relative link and image URLs are
// resolved against domain.
func ToMarkdown(htmlContent string, domain string) (string, error) {
	return mdConverter.ConvertString(htmlContent, converter.WithDomain(domain))
}
