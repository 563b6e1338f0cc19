package engine

import (
	"errors"
	"fmt"

	"github.com/hlmerscher/jackc/tokenizer"
)

var ErrSyntax = errors.New("syntax error")

// repetition terminators, never returned by Class
var (
	notClassVarDec   = errors.New("not a class variable declaration")
	notLocalVarDec   = errors.New("not a local variable declaration")
	notSubroutineDec = errors.New("not a subroutine declaration")
)

func syntaxError(token tokenizer.Token, format string, values ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrSyntax, token.Line, fmt.Sprintf(format, values...))
}

func unexpected(token tokenizer.Token) error {
	return syntaxError(token, "unexpected %s", token)
}
