// Package doctest extracts runnable example programs from Markdown.
//
// A document holds cases under headings. Within a section, a fenced
// "pl0" block is the program source, an optional fenced "input" block
// is fed to read statements, and the following fenced "output" block is
// the exact expected standard output. Fences in other languages are
// ignored, so documents can carry ordinary illustrative snippets too.
package doctest

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Case is one extracted example: a program, its stdin, and the stdout
// it must produce.
type Case struct {
	Name   string
	Source string
	Input  string
	Output string
}

// Extract walks a Markdown document and returns its cases in order.
// Every pl0 fence must sit under a heading (which names the case) and
// be closed off by an output fence before the next case starts.
func Extract(md []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(md))

	var (
		cases   []Case
		heading string
		open    *Case
	)

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			heading = nodeText(n, md)

		case *ast.FencedCodeBlock:
			lang := string(n.Language(md))
			content := fenceContent(n, md)
			switch lang {
			case "pl0":
				if open != nil {
					return ast.WalkStop, fmt.Errorf("doctest: case %q has no output fence", open.Name)
				}
				if heading == "" {
					return ast.WalkStop, fmt.Errorf("doctest: pl0 fence before any heading")
				}
				open = &Case{Name: heading, Source: content}
			case "input":
				if open == nil {
					return ast.WalkStop, fmt.Errorf("doctest: input fence outside a case")
				}
				if open.Input != "" {
					return ast.WalkStop, fmt.Errorf("doctest: case %q has two input fences", open.Name)
				}
				open.Input = content
			case "output":
				if open == nil {
					return ast.WalkStop, fmt.Errorf("doctest: output fence outside a case")
				}
				open.Output = content
				cases = append(cases, *open)
				open = nil
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, fmt.Errorf("doctest: case %q has no output fence", open.Name)
	}
	return cases, nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < block.Lines().Len(); i++ {
		seg := block.Lines().At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}
