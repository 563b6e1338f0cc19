package engine

import (
	"golang.org/x/exp/slices"

	"github.com/hlmerscher/jackc/tokenizer"
)

type matcher func(tokenizer.Token) (tokenizer.Token, bool)

// is matches a keyword or symbol spelled exactly as raw.
func is(raw string) matcher {
	return func(token tokenizer.Token) (tokenizer.Token, bool) {
		ok := (token.Type == tokenizer.KEYWORD || token.Type == tokenizer.SYMBOL) && token.Raw == raw
		return token, ok
	}
}

func or(matchers ...matcher) matcher {
	return func(token tokenizer.Token) (tokenizer.Token, bool) {
		for _, m := range matchers {
			if _, ok := m(token); ok {
				return token, true
			}
		}
		return token, false
	}
}

func isIdentifier() matcher {
	return func(token tokenizer.Token) (tokenizer.Token, bool) {
		return token, token.Type == tokenizer.IDENTIFIER
	}
}

// isType matches int, char, boolean or a class name.
func isType() matcher {
	return or(is("int"), is("char"), is("boolean"), isIdentifier())
}

var ops = []string{"+", "-", "*", "/", "&", "|", "<", ">", "="}

func isOp() matcher {
	return func(token tokenizer.Token) (tokenizer.Token, bool) {
		return token, token.Type == tokenizer.SYMBOL && slices.Contains(ops, token.Raw)
	}
}

func matches(token tokenizer.Token, matchers ...matcher) bool {
	_, ok := or(matchers...)(token)
	return ok
}

// processToken consumes the current token if any matcher accepts it.
func processToken(tk *tokenizer.Tokenizer, matchers ...matcher) (tokenizer.Token, error) {
	token := tk.Current
	if !matches(token, matchers...) {
		return token, unexpected(token)
	}
	tk.Advance()
	return token, nil
}
