// Package markdown renders post content to HTML.
package markdown

import (
	"bytes"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	parserOnce sync.Once
	parser     goldmark.Markdown
)

func getParser() goldmark.Markdown {
	parserOnce.Do(func() {
		parser = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.DefinitionList,
			),
		)
	})
	return parser
}

// ToHTML converts markdown to HTML. Raw HTML in the source is not passed
// through.
func ToHTML(src string) (string, error) {
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := getParser().Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
