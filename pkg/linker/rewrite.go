package linker

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"

	"github.com/coolbeans/gesetze/pkg/citation"
)

// ReplaceFunc produces the replacement for one citation.
type ReplaceFunc func(match *citation.Match) string

// Rewrite replaces every citation in text. All matches are located first and
// substituted left to right by span, so replacement output is never scanned
// again. A nil replace links each citation with Link.
func (r *Resolver) Rewrite(text string, replace ReplaceFunc) string {
	if replace == nil {
		replace = r.snapshot().link
	}
	return rewriteText(r.pattern, text, replace)
}

// Linkify links every citation in text.
func (r *Resolver) Linkify(text string) string {
	return r.Rewrite(text, nil)
}

func rewriteText(pattern *citation.Pattern, text string, replace ReplaceFunc) string {
	matches := pattern.ExtractAll(text)
	if len(matches) == 0 {
		return text
	}

	var builder strings.Builder
	builder.Grow(len(text))
	last := 0
	for _, match := range matches {
		builder.WriteString(text[last:match.Start])
		builder.WriteString(replace(match))
		last = match.End
	}
	builder.WriteString(text[last:])
	return builder.String()
}

// skippedElements hold text that must not receive links.
var skippedElements = map[string]bool{
	"a":        true,
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"title":    true,
}

// RewriteHTML copies an HTML document from r to w, rewriting citations in
// text nodes only. Tags, attributes and text inside links, scripts, styles,
// code blocks and form fields pass through byte for byte.
func (r *Resolver) RewriteHTML(src io.Reader, dst io.Writer, replace ReplaceFunc) error {
	if replace == nil {
		replace = r.snapshot().link
	}

	tokenizer := html.NewTokenizer(src)
	skipDepth := 0
	for {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			if err := tokenizer.Err(); err != io.EOF {
				return fmt.Errorf("tokenize html: %w", err)
			}
			return nil
		}

		raw := tokenizer.Raw()
		switch tokenType {
		case html.TextToken:
			if skipDepth == 0 {
				raw = []byte(rewriteText(r.pattern, string(raw), replace))
			}
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if skippedElements[string(name)] {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if skippedElements[string(name)] && skipDepth > 0 {
				skipDepth--
			}
		}

		if _, err := dst.Write(raw); err != nil {
			return fmt.Errorf("write html: %w", err)
		}
	}
}

// LinkifyHTML is RewriteHTML over a string.
func (r *Resolver) LinkifyHTML(document string) (string, error) {
	var buf bytes.Buffer
	if err := r.RewriteHTML(strings.NewReader(document), &buf, nil); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderMarkdown converts Markdown to HTML so it can be linked with
// RewriteHTML. Inline code and code blocks end up in code elements and keep
// their citations unlinked.
func RenderMarkdown(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.New().Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// LinkifyMarkdown renders Markdown and links the citations in the result.
func (r *Resolver) LinkifyMarkdown(src []byte) (string, error) {
	rendered, err := RenderMarkdown(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := r.RewriteHTML(bytes.NewReader(rendered), &buf, nil); err != nil {
		return "", err
	}
	return buf.String(), nil
}
