package postservice

import (
	"bytes"

	"github.com/yuin/goldmark"
)

// Raw HTML in the source is omitted by goldmark's default renderer.
var markdown = goldmark.New()

func renderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}

	return buf.String(), nil
}
