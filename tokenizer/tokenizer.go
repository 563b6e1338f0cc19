package tokenizer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/exp/slices"
)

// MaxInt is the largest integer constant a 16-bit machine word can hold.
// Negative numbers are built with the unary minus operator.
const MaxInt = 32767

var (
	ErrLexical = errors.New("lexical error")
	EmptyToken = Token{Type: EOF}
)

// New strips the comments out of source and splits what remains into
// tokens. The cursor starts before the first token.
func New(source string) (*Tokenizer, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	return &Tokenizer{
		tokens:  tokens,
		cursor:  -1,
		Current: EmptyToken,
	}, nil
}

type Tokenizer struct {
	tokens    []Token
	cursor    int
	Current   Token
	onAdvance func(Token)
}

// OnAdvance registers f to be called with every token the cursor moves
// past, in source order. A nil f removes the hook.
func (tk *Tokenizer) OnAdvance(f func(Token)) {
	tk.onAdvance = f
}

func (tk *Tokenizer) HasMoreTokens() bool {
	return tk.cursor < len(tk.tokens)-1
}

// Advance moves the cursor one token forward. Past the last token the
// current token is EmptyToken.
func (tk *Tokenizer) Advance() Token {
	if tk.onAdvance != nil && tk.Current.Type != EOF {
		tk.onAdvance(tk.Current)
	}
	if tk.cursor < len(tk.tokens) {
		tk.cursor++
	}
	if tk.cursor < len(tk.tokens) {
		tk.Current = tk.tokens[tk.cursor]
	} else {
		tk.Current = EmptyToken
	}
	return tk.Current
}

// Tokens returns every token of the source, independent of the cursor.
func (tk *Tokenizer) Tokens() []Token {
	return tk.tokens
}

// Tokenize is the scanner behind New.
func Tokenize(source string) ([]Token, error) {
	s := scanner{src: []rune(source), line: 1}
	tokens := make([]Token, 0)
	for {
		token, err := s.next()
		if err != nil {
			return nil, err
		}
		if token.Type == EOF {
			return tokens, nil
		}
		tokens = append(tokens, token)
	}
}

type scanner struct {
	src  []rune
	pos  int
	line int
}

func (s *scanner) peek(offset int) rune {
	if s.pos+offset >= len(s.src) {
		return 0
	}
	return s.src[s.pos+offset]
}

func (s *scanner) skip() error {
	for s.pos < len(s.src) {
		char := s.src[s.pos]
		switch {
		case char == '\n':
			s.line++
			s.pos++
		case unicode.IsSpace(char):
			s.pos++
		case char == '/' && s.peek(1) == '/':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
		case char == '/' && s.peek(1) == '*':
			start := s.line
			s.pos += 2
			for {
				if s.pos >= len(s.src) {
					return fmt.Errorf("%w: line %d: unterminated comment", ErrLexical, start)
				}
				if s.src[s.pos] == '*' && s.peek(1) == '/' {
					s.pos += 2
					break
				}
				if s.src[s.pos] == '\n' {
					s.line++
				}
				s.pos++
			}
		default:
			return nil
		}
	}
	return nil
}

func (s *scanner) next() (Token, error) {
	if err := s.skip(); err != nil {
		return EmptyToken, err
	}
	if s.pos >= len(s.src) {
		return EmptyToken, nil
	}

	char := s.src[s.pos]
	switch {
	case isSymbol(string(char)):
		s.pos++
		return Token{Raw: string(char), Type: SYMBOL, Line: s.line}, nil

	case char == '"':
		start := s.pos + 1
		end := start
		for end < len(s.src) && s.src[end] != '"' && s.src[end] != '\n' {
			end++
		}
		if end >= len(s.src) || s.src[end] != '"' {
			return EmptyToken, fmt.Errorf("%w: line %d: unterminated string constant", ErrLexical, s.line)
		}
		for _, c := range s.src[start:end] {
			if !isStringChar(c) {
				return EmptyToken, fmt.Errorf("%w: line %d: character %q not allowed in a string constant", ErrLexical, s.line, c)
			}
		}
		s.pos = end + 1
		return Token{Raw: string(s.src[start:end]), Type: STRING_CONST, Line: s.line}, nil

	case isDigit(char):
		start := s.pos
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			s.pos++
		}
		raw := string(s.src[start:s.pos])
		value, err := strconv.Atoi(raw)
		if err != nil || value > MaxInt {
			return EmptyToken, fmt.Errorf("%w: line %d: integer constant %s out of range 0..%d", ErrLexical, s.line, raw, MaxInt)
		}
		if s.pos < len(s.src) && isWordChar(s.src[s.pos]) {
			return EmptyToken, fmt.Errorf("%w: line %d: malformed integer constant %s%c", ErrLexical, s.line, raw, s.src[s.pos])
		}
		return Token{Raw: raw, Type: INT_CONST, Line: s.line, value: value}, nil

	case isWordChar(char):
		start := s.pos
		for s.pos < len(s.src) && isWordChar(s.src[s.pos]) {
			s.pos++
		}
		raw := string(s.src[start:s.pos])
		return Token{Raw: raw, Type: parseTokenType(raw), Line: s.line}, nil
	}

	return EmptyToken, fmt.Errorf("%w: line %d: unexpected character %q", ErrLexical, s.line, char)
}

type TokenType string

const (
	KEYWORD      = TokenType("keyword")
	SYMBOL       = TokenType("symbol")
	IDENTIFIER   = TokenType("identifier")
	INT_CONST    = TokenType("integerConstant")
	STRING_CONST = TokenType("stringConstant")
	EOF          = TokenType("EOF")
)

type Keyword string

const (
	CLASS       = Keyword("class")
	CONSTRUCTOR = Keyword("constructor")
	FUNCTION    = Keyword("function")
	METHOD      = Keyword("method")
	FIELD       = Keyword("field")
	STATIC      = Keyword("static")
	VAR         = Keyword("var")
	INT         = Keyword("int")
	CHAR        = Keyword("char")
	BOOLEAN     = Keyword("boolean")
	VOID        = Keyword("void")
	TRUE        = Keyword("true")
	FALSE       = Keyword("false")
	NULL        = Keyword("null")
	THIS        = Keyword("this")
	LET         = Keyword("let")
	DO          = Keyword("do")
	IF          = Keyword("if")
	ELSE        = Keyword("else")
	WHILE       = Keyword("while")
	RETURN      = Keyword("return")
)

// Token is an immutable classified lexeme. Raw holds the lexeme text,
// without the surrounding quotes for string constants.
type Token struct {
	Raw  string
	Type TokenType
	Line int

	value int
}

func (t Token) String() string {
	if t.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", t.Type, t.Raw)
}

func (t Token) must(expected TokenType) {
	if t.Type != expected {
		panic(fmt.Sprintf("tokenizer: %s accessor called on %s", expected, t))
	}
}

func (t Token) Keyword() Keyword {
	t.must(KEYWORD)
	return Keyword(t.Raw)
}

func (t Token) Symbol() byte {
	t.must(SYMBOL)
	return t.Raw[0]
}

func (t Token) Identifier() string {
	t.must(IDENTIFIER)
	return t.Raw
}

func (t Token) IntVal() int {
	t.must(INT_CONST)
	return t.value
}

func (t Token) StringVal() string {
	t.must(STRING_CONST)
	return t.Raw
}

func parseTokenType(value string) TokenType {
	switch {
	case isKeyword(value):
		return KEYWORD
	case isSymbol(value):
		return SYMBOL
	case isInteger(value):
		return INT_CONST
	}
	return IDENTIFIER
}

var keywords = []string{
	"class",
	"constructor",
	"function",
	"method",
	"field",
	"static",
	"var",
	"int",
	"char",
	"boolean",
	"void",
	"true",
	"false",
	"null",
	"this",
	"let",
	"do",
	"if",
	"else",
	"while",
	"return",
}

func isKeyword(value string) bool {
	return slices.Contains(keywords, value)
}

var symbols = []string{
	"{", "}",
	"(", ")",
	"[", "]",
	".", ",", ";",
	"+", "-", "*", "/",
	"&", "|",
	"<", ">",
	"=", "~",
}

func isSymbol(value string) bool {
	return slices.Contains(symbols, value)
}

func isInteger(value string) bool {
	return value != "" && strings.IndexFunc(value, func(r rune) bool { return !isDigit(r) }) < 0
}

func isDigit(char rune) bool {
	return char >= '0' && char <= '9'
}

// isStringChar reports whether char is printable ASCII, the only range the
// platform character set shares with Unicode.
func isStringChar(char rune) bool {
	return char >= ' ' && char <= '~'
}

func isWordChar(char rune) bool {
	return char == '_' || isDigit(char) || (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z')
}
