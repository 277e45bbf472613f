// Package markdown renders accepted story contents as sanitized HTML.
package markdown

import (
	"bytes"
	"strings"

	"github.com/BJS-kr/whatup/shared/domain"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// paragraphBreak separates contributions in both output formats.
const paragraphBreak = "\n\n"

type StoryRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *StoryRenderer {
	md := goldmark.New(
		// raw html is passed through and stripped by the sanitizer afterwards
		goldmark.WithRendererOptions(html.WithUnsafe(), html.WithHardWraps()),
		goldmark.WithExtensions(extension.Strikethrough),
	)

	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &StoryRenderer{md: md, policy: policy}
}

// Text joins accepted contents in story order.
func (s *StoryRenderer) Text(contents []domain.Content) string {
	parts := make([]string, 0, len(contents))
	for _, c := range contents {
		parts = append(parts, strings.TrimSpace(c.Body))
	}
	return strings.Join(parts, paragraphBreak)
}

// HTML renders Text as markdown and sanitizes the result.
func (s *StoryRenderer) HTML(contents []domain.Content) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(s.Text(contents)), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(s.policy.Sanitize(buf.String())), nil
}
