// Package casebook reads compiler test cases written as Markdown. Each case
// starts with a "Case: <name>" heading, followed by one jack fence holding
// the source and either a vm fence with the expected output or an error
// fence naming the expected failure kind. A case with a vm fence may add an
// xml fence holding the expected parse tree.
package casebook

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	FenceSource = "jack"
	FenceVM     = "vm"
	FenceError  = "error"
	FenceXML    = "xml"
)

type Case struct {
	Name   string
	Line   int
	Source string
	VM     string
	Error  string
	XML    string
}

func Extract(markdown []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))

	var cases []Case
	var current *Case

	finish := func() error {
		if current == nil {
			return nil
		}
		if current.Source == "" {
			return fmt.Errorf("line %d: case %q has no %s fence", current.Line, current.Name, FenceSource)
		}
		if (current.VM == "") == (current.Error == "") {
			return fmt.Errorf("line %d: case %q needs exactly one of the %s and %s fences", current.Line, current.Name, FenceVM, FenceError)
		}
		if current.XML != "" && current.VM == "" {
			return fmt.Errorf("line %d: case %q has an %s fence without a %s fence", current.Line, current.Name, FenceXML, FenceVM)
		}
		cases = append(cases, *current)
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, markdown)
			if !strings.HasPrefix(heading, "Case: ") {
				return ast.WalkContinue, nil
			}
			if err := finish(); err != nil {
				return ast.WalkStop, err
			}
			current = &Case{
				Name: strings.TrimPrefix(heading, "Case: "),
				Line: lineOf(n, markdown),
			}

		case *ast.FencedCodeBlock:
			language := string(n.Language(markdown))
			if current == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %q fence outside of a case", lineOf(n, markdown), language)
			}

			content := blockText(n, markdown)
			var field *string
			switch language {
			case FenceSource:
				field = &current.Source
			case FenceVM:
				field = &current.VM
			case FenceError:
				content = strings.TrimSpace(content)
				field = &current.Error
			case FenceXML:
				field = &current.XML
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence %q in case %q", lineOf(n, markdown), language, current.Name)
			}
			if *field != "" {
				return ast.WalkStop, fmt.Errorf("line %d: duplicate %s fence in case %q", lineOf(n, markdown), language, current.Name)
			}
			*field = content
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if err := finish(); err != nil {
		return nil, err
	}
	return cases, nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func blockText(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < block.Lines().Len(); i++ {
		line := block.Lines().At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 0
	}
	return bytes.Count(source[:node.Lines().At(0).Start], []byte("\n")) + 1
}
