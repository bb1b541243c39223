package policy

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

var frontMatterDelim = []byte("---")

type frontMatter struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ParseMarkdown reads a Markdown policy. Front matter fields win over the
// heading and first paragraph.
func ParseMarkdown(source []byte) (PolicyStatement, error) {
	meta, body, err := splitFrontMatter(source)
	if err != nil {
		return PolicyStatement{}, err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(body))

	var name, description string
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			if name == "" {
				name = plainText(n, body)
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			if description == "" && n.Parent() == doc {
				description = plainText(n, body)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return PolicyStatement{}, err
	}

	p := PolicyStatement{
		ID:          meta.ID,
		Name:        name,
		Description: description,
		Content:     string(bytes.TrimSpace(body)),
	}
	if meta.Name != "" {
		p.Name = meta.Name
	}
	if meta.Description != "" {
		p.Description = meta.Description
	}
	if p.Name == "" {
		return PolicyStatement{}, fmt.Errorf("markdown policy has no heading")
	}
	return p, nil
}

func splitFrontMatter(source []byte) (frontMatter, []byte, error) {
	var meta frontMatter
	if !bytes.HasPrefix(source, frontMatterDelim) {
		return meta, source, nil
	}

	rest := source[len(frontMatterDelim):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 || len(bytes.TrimSpace(rest[:nl])) != 0 {
		return meta, source, nil
	}
	rest = rest[nl+1:]

	end := bytes.Index(rest, append([]byte("\n"), frontMatterDelim...))
	var block []byte
	switch {
	case bytes.HasPrefix(rest, frontMatterDelim):
		block, rest = nil, rest[len(frontMatterDelim):]
	case end >= 0:
		block, rest = rest[:end], rest[end+1+len(frontMatterDelim):]
	default:
		return meta, nil, fmt.Errorf("unterminated front matter")
	}

	if err := yaml.Unmarshal(block, &meta); err != nil {
		return meta, nil, fmt.Errorf("front matter: %w", err)
	}
	return meta, rest, nil
}

func plainText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			sb.Write(c.Segment.Value(source))
			if c.SoftLineBreak() || c.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(c.Value)
		case *ast.CodeSpan:
			for t := c.FirstChild(); t != nil; t = t.NextSibling() {
				if seg, ok := t.(*ast.Text); ok {
					sb.Write(seg.Segment.Value(source))
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
