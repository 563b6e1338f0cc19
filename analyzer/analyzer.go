// Package analyzer runs the pipeline for one source file.
package analyzer

import (
	"encoding/xml"
	"io"

	"github.com/hlmerscher/jackc/engine"
	"github.com/hlmerscher/jackc/tokenizer"
	"github.com/hlmerscher/jackc/writer"
)

type tokensWrapper struct {
	XMLName xml.Name `xml:"tokens"`
	Tokens  []tokenizer.Token
}

// Compile reads a class from in and writes its VM code to out.
func Compile(in io.Reader, out io.Writer) error {
	tk, err := newTokenizer(in)
	if err != nil {
		return err
	}
	return engine.Compile(tk, out)
}

// CompileTree is Compile that also writes the XML parse tree to tree.
func CompileTree(in io.Reader, out, tree io.Writer) error {
	tk, err := newTokenizer(in)
	if err != nil {
		return err
	}
	return engine.CompileTree(tk, out, tree)
}

// Tokens writes the XML token dump of the source read from in.
func Tokens(in io.Reader, out io.Writer) error {
	tk, err := newTokenizer(in)
	if err != nil {
		return err
	}
	return writer.Output(out, tokensWrapper{Tokens: tk.Tokens()})
}

func newTokenizer(in io.Reader) (*tokenizer.Tokenizer, error) {
	source, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	return tokenizer.New(string(source))
}
