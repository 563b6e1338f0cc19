package tokenizer

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
)

func types(tokens []Token) []TokenType {
	result := make([]TokenType, len(tokens))
	for i, token := range tokens {
		result[i] = token.Type
	}
	return result
}

func raws(tokens []Token) []string {
	result := make([]string, len(tokens))
	for i, token := range tokens {
		result[i] = token.Raw
	}
	return result
}

func TestTokenizeStatement(t *testing.T) {
	tokens, err := Tokenize(`let x = a[1] + "hi there";`)
	be.Err(t, err, nil)
	be.Equal(t, raws(tokens), []string{"let", "x", "=", "a", "[", "1", "]", "+", "hi there", ";"})
	be.Equal(t, types(tokens), []TokenType{
		KEYWORD, IDENTIFIER, SYMBOL, IDENTIFIER, SYMBOL, INT_CONST, SYMBOL, SYMBOL, STRING_CONST, SYMBOL,
	})
}

func TestTokenizeStripsComments(t *testing.T) {
	source := `
// line comment
/** api
 * comment */
class Main { /* inline */ field int x; // trailing
}
`
	tokens, err := Tokenize(source)
	be.Err(t, err, nil)
	be.Equal(t, raws(tokens), []string{"class", "Main", "{", "field", "int", "x", ";", "}"})
	be.Equal(t, tokens[0].Line, 5)
	be.Equal(t, tokens[7].Line, 6)
}

func TestTokenizeCommentMarkersInsideString(t *testing.T) {
	tokens, err := Tokenize(`do Output.printString("http://x /* y */");`)
	be.Err(t, err, nil)
	be.Equal(t, tokens[6].Type, STRING_CONST)
	be.Equal(t, tokens[6].StringVal(), "http://x /* y */")
}

func TestTokenizeKeywordsAndIdentifiers(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
	}{
		{"class", KEYWORD},
		{"classy", IDENTIFIER},
		{"this", KEYWORD},
		{"_this", IDENTIFIER},
		{"x1", IDENTIFIER},
		{"32767", INT_CONST},
		{"0", INT_CONST},
		{"~", SYMBOL},
		{`""`, STRING_CONST},
	}

	for _, tt := range tests {
		tokens, err := Tokenize(tt.input)
		be.Err(t, err, nil)
		be.Equal(t, len(tokens), 1)
		be.Equal(t, tokens[0].Type, tt.typ)
	}
}

func TestTokenizeLexicalErrors(t *testing.T) {
	tests := []string{
		`"unterminated`,
		"\"broken\nstring\"",
		"/* never closed",
		"32768",
		"12abc",
		"let x = #;",
		`"café"`,
		`"😀"`,
		"\"bad \xff byte\"",
		"\"tab\there\"",
	}

	for _, input := range tests {
		_, err := Tokenize(input)
		be.True(t, errors.Is(err, ErrLexical))
	}
}

func TestTokenizerCursor(t *testing.T) {
	tk, err := New("return 7;")
	be.Err(t, err, nil)
	be.Equal(t, tk.Current.Type, EOF)
	be.True(t, tk.HasMoreTokens())

	be.Equal(t, tk.Advance().Keyword(), RETURN)
	be.True(t, tk.HasMoreTokens())
	be.Equal(t, tk.Advance().IntVal(), 7)
	be.True(t, tk.HasMoreTokens())
	be.Equal(t, tk.Advance().Symbol(), byte(';'))
	be.True(t, !tk.HasMoreTokens())

	be.Equal(t, tk.Advance().Type, EOF)
	be.Equal(t, tk.Advance().Type, EOF)
}

func TestTokenizeStringCharacterRange(t *testing.T) {
	tokens, err := Tokenize(`" !~{}"`)
	be.Err(t, err, nil)
	be.Equal(t, tokens[0].StringVal(), " !~{}")

	_, err = Tokenize(`let s = "é";`)
	be.Err(t, err, ErrLexical)
	be.Err(t, err, "not allowed in a string constant")
}

func TestTokenizerOnAdvance(t *testing.T) {
	tk, err := New("return 7;")
	be.Err(t, err, nil)

	var seen []string
	tk.OnAdvance(func(token Token) { seen = append(seen, token.Raw) })

	tk.Advance()
	be.Equal(t, len(seen), 0)
	tk.Advance()
	tk.Advance()
	tk.Advance()
	tk.Advance()
	be.Equal(t, seen, []string{"return", "7", ";"})

	tk.OnAdvance(nil)
	tk.Advance()
	be.Equal(t, len(seen), 3)
}

func TestAccessorOnWrongTypePanics(t *testing.T) {
	tokens, err := Tokenize("foo")
	be.Err(t, err, nil)

	defer func() {
		be.True(t, recover() != nil)
	}()
	tokens[0].Keyword()
}
