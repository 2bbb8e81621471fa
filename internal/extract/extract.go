// Package extract converts stored document bytes into plain text based on
// content type, ahead of chunking.
package extract

import (
	"bytes"
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"

	"github.com/chatstack/rag-core/internal/core/domain"
)

const (
	typeMarkdown = "text/markdown"
	typePDF      = "application/pdf"
	typeDocx     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Text extracts plain text from raw document bytes. contentType may carry
// media-type parameters ("text/plain; charset=utf-8"). Unknown types fall
// back to a UTF-8 decode; binary content that is not valid UTF-8 is rejected
// with domain.ErrUnsupportedContentType.
func Text(data []byte, contentType string) (string, error) {
	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	switch {
	case mediaType == typeMarkdown:
		return markdownText(data), nil
	case mediaType == typePDF:
		return pdfText(data)
	case mediaType == typeDocx:
		return docxText(data)
	case strings.HasPrefix(mediaType, "text/"):
		return string(data), nil
	}

	if utf8.Valid(data) {
		return string(data), nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedContentType, contentType)
}

// markdownText strips markdown syntax by walking the parsed AST and
// collecting text nodes, with blank lines between blocks
func markdownText(data []byte) string {
	md := goldmark.New()
	reader := gtext.NewReader(data)
	doc := md.Parser().Parse(reader)

	var buf strings.Builder
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			switch node := n.(type) {
			case *ast.Text:
				buf.Write(node.Segment.Value(data))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteString("\n")
				}
			case *ast.String:
				buf.Write(node.Value)
			}
			return ast.WalkContinue, nil
		}

		switch n.(type) {
		case *ast.Paragraph, *ast.Heading, *ast.ListItem, *ast.Blockquote:
			buf.WriteString("\n\n")
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			for i := 0; i < n.Lines().Len(); i++ {
				line := n.Lines().At(i)
				buf.Write(line.Value(data))
			}
			buf.WriteString("\n\n")
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(buf.String())
}

// pdfText extracts text page by page, skipping pages that fail to decode
func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}
