package engine

import (
	"errors"
	"fmt"
	"io"

	"github.com/hlmerscher/jackc/logger"
	"github.com/hlmerscher/jackc/symbols"
	"github.com/hlmerscher/jackc/tokenizer"
	"github.com/hlmerscher/jackc/vm"
	"github.com/hlmerscher/jackc/writer"
)

var kindSegments = map[symbols.Kind]vm.Segment{
	symbols.Static:   vm.STATIC,
	symbols.Field:    vm.THIS,
	symbols.Argument: vm.ARGUMENT,
	symbols.Local:    vm.LOCAL,
}

var arithmeticOpsTable = map[byte]vm.Command{
	'+': vm.ADD,
	'-': vm.SUB,
	'=': vm.EQ,
	'>': vm.GT,
	'<': vm.LT,
	'&': vm.AND,
	'|': vm.OR,
}

var libraryOpsTable = map[byte]string{
	'*': "Math.multiply",
	'/': "Math.divide",
}

var unaryOpsTable = map[byte]vm.Command{
	'-': vm.NEG,
	'~': vm.NOT,
}

// Compile translates the class held by a fresh tokenizer into VM commands
// written to out. Nothing is guaranteed about out when an error is returned.
func Compile(tk *tokenizer.Tokenizer, out io.Writer) error {
	return CompileTree(tk, out, nil)
}

// CompileTree is Compile that also writes the parse tree of the class as
// XML to tree, unless tree is nil. The tree is only written on success.
func CompileTree(tk *tokenizer.Tokenizer, out, tree io.Writer) error {
	vmw := vm.New(out)
	c := New(vmw)
	if tree != nil {
		c.tree = &treeBuilder{}
		tk.OnAdvance(c.tree.token)
		defer tk.OnAdvance(nil)
	}

	tk.Advance()
	if err := c.Class(tk); err != nil {
		return err
	}
	if err := vmw.Flush(); err != nil {
		return err
	}
	if tree != nil {
		return writer.Output(tree, c.tree.root)
	}
	return nil
}

// Compiler parses one class and emits its code in the same pass.
type Compiler struct {
	vmw       *vm.Writer
	symbols   *symbols.Table
	className string
	labels    int
	tree      *treeBuilder
}

func New(vmw *vm.Writer) *Compiler {
	return &Compiler{vmw: vmw, symbols: symbols.New()}
}

func (c *Compiler) Class(tk *tokenizer.Tokenizer) error {
	c.tree.open("class")
	defer c.tree.close()

	if _, err := processToken(tk, is("class")); err != nil {
		return err
	}
	classNameToken, err := processToken(tk, isIdentifier())
	if err != nil {
		return err
	}
	if _, err := processToken(tk, is("{")); err != nil {
		return err
	}

	c.className = classNameToken.Identifier()
	c.symbols = symbols.New()
	logger.Printf("compiling class %s\n", c.className)

	for {
		err := c.ClassVarDec(tk)
		if errors.Is(err, notClassVarDec) {
			break
		}
		if err != nil {
			return err
		}
	}

	for {
		err := c.Subroutine(tk)
		if errors.Is(err, notSubroutineDec) {
			break
		}
		if err != nil {
			return err
		}
	}

	if _, err := processToken(tk, is("}")); err != nil {
		return err
	}
	if tk.Current.Type != tokenizer.EOF {
		return syntaxError(tk.Current, "unexpected %s after the end of class %s", tk.Current, c.className)
	}
	return nil
}

func (c *Compiler) ClassVarDec(tk *tokenizer.Tokenizer) error {
	matcher := or(is("static"), is("field"))
	if !matches(tk.Current, matcher) {
		return notClassVarDec
	}
	c.tree.open("classVarDec")
	defer c.tree.close()
	kindToken, _ := processToken(tk, matcher)

	kind := symbols.Field
	if kindToken.Keyword() == tokenizer.STATIC {
		kind = symbols.Static
	}
	return c.varNames(tk, kind)
}

func (c *Compiler) VarDec(tk *tokenizer.Tokenizer) error {
	if !matches(tk.Current, is("var")) {
		return notLocalVarDec
	}
	c.tree.open("varDec")
	defer c.tree.close()
	tk.Advance()
	return c.varNames(tk, symbols.Local)
}

// varNames compiles `type varName (',' varName)* ';'`.
func (c *Compiler) varNames(tk *tokenizer.Tokenizer, kind symbols.Kind) error {
	typeToken, err := processToken(tk, isType())
	if err != nil {
		return err
	}

	for {
		nameToken, err := processToken(tk, isIdentifier())
		if err != nil {
			return err
		}
		c.symbols.Define(nameToken.Identifier(), typeToken.Raw, kind)

		if !matches(tk.Current, is(",")) {
			break
		}
		tk.Advance()
	}

	_, err = processToken(tk, is(";"))
	return err
}

func (c *Compiler) Subroutine(tk *tokenizer.Tokenizer) error {
	matcher := or(is("constructor"), is("function"), is("method"))
	if !matches(tk.Current, matcher) {
		return notSubroutineDec
	}
	c.tree.open("subroutineDec")
	defer c.tree.close()
	categoryToken, _ := processToken(tk, matcher)

	if _, err := processToken(tk, is("void"), isType()); err != nil {
		return err
	}
	fnNameToken, err := processToken(tk, isIdentifier())
	if err != nil {
		return err
	}

	c.symbols.StartSubroutine()
	c.labels = 0
	if categoryToken.Keyword() == tokenizer.METHOD {
		c.symbols.Define("this", c.className, symbols.Argument)
	}

	if _, err := processToken(tk, is("(")); err != nil {
		return err
	}
	if err := c.ParameterList(tk); err != nil {
		return err
	}
	if _, err := processToken(tk, is(")")); err != nil {
		return err
	}

	name := c.className + "." + fnNameToken.Identifier()
	logger.Println("compiling", categoryToken.Raw, name)
	return c.SubroutineBody(tk, categoryToken.Keyword(), name)
}

func (c *Compiler) ParameterList(tk *tokenizer.Tokenizer) error {
	c.tree.open("parameterList")
	defer c.tree.close()

	if matches(tk.Current, is(")")) {
		return nil
	}

	for {
		typeToken, err := processToken(tk, isType())
		if err != nil {
			return err
		}
		nameToken, err := processToken(tk, isIdentifier())
		if err != nil {
			return err
		}
		c.symbols.Define(nameToken.Identifier(), typeToken.Raw, symbols.Argument)

		if !matches(tk.Current, is(",")) {
			return nil
		}
		tk.Advance()
	}
}

func (c *Compiler) SubroutineBody(tk *tokenizer.Tokenizer, category tokenizer.Keyword, name string) error {
	c.tree.open("subroutineBody")
	defer c.tree.close()

	if _, err := processToken(tk, is("{")); err != nil {
		return err
	}

	for {
		err := c.VarDec(tk)
		if errors.Is(err, notLocalVarDec) {
			break
		}
		if err != nil {
			return err
		}
	}

	c.vmw.WriteFunction(name, c.symbols.Count(symbols.Local))
	switch category {
	case tokenizer.CONSTRUCTOR:
		c.vmw.WritePush(vm.CONSTANT, c.symbols.Count(symbols.Field))
		c.vmw.WriteCall("Memory.alloc", 1)
		c.vmw.WritePop(vm.POINTER, 0)
	case tokenizer.METHOD:
		c.vmw.WritePush(vm.ARGUMENT, 0)
		c.vmw.WritePop(vm.POINTER, 0)
	}

	if err := c.Statements(tk); err != nil {
		return err
	}
	if _, err := processToken(tk, is("}")); err != nil {
		return err
	}

	if logger.Verbose() {
		logger.Printf("symbols of %s:\n", name)
		logger.Print(c.symbols.String())
	}
	return nil
}

func (c *Compiler) Statements(tk *tokenizer.Tokenizer) error {
	c.tree.open("statements")
	defer c.tree.close()

	for {
		if matches(tk.Current, is("}")) {
			return nil
		}
		if tk.Current.Type != tokenizer.KEYWORD {
			return syntaxError(tk.Current, "expected a statement, got %s", tk.Current)
		}

		var err error
		switch tk.Current.Keyword() {
		case tokenizer.LET:
			err = c.Let(tk)
		case tokenizer.IF:
			err = c.If(tk)
		case tokenizer.WHILE:
			err = c.While(tk)
		case tokenizer.DO:
			err = c.Do(tk)
		case tokenizer.RETURN:
			err = c.Return(tk)
		default:
			err = syntaxError(tk.Current, "unknown statement %q", tk.Current.Raw)
		}
		if err != nil {
			return err
		}
	}
}

func (c *Compiler) Let(tk *tokenizer.Tokenizer) error {
	c.tree.open("letStatement")
	defer c.tree.close()

	tk.Advance()
	nameToken, err := processToken(tk, isIdentifier())
	if err != nil {
		return err
	}
	symbol, err := c.resolve(nameToken)
	if err != nil {
		return err
	}

	if !matches(tk.Current, is("[")) {
		if _, err := processToken(tk, is("=")); err != nil {
			return err
		}
		if err := c.Expression(tk); err != nil {
			return err
		}
		if _, err := processToken(tk, is(";")); err != nil {
			return err
		}
		c.pop(symbol)
		return nil
	}

	tk.Advance()
	c.push(symbol)
	if err := c.Expression(tk); err != nil {
		return err
	}
	if _, err := processToken(tk, is("]")); err != nil {
		return err
	}
	c.vmw.WriteArithmetic(vm.ADD)

	if _, err := processToken(tk, is("=")); err != nil {
		return err
	}
	if err := c.assignThat(tk); err != nil {
		return err
	}
	_, err = processToken(tk, is(";"))
	return err
}

// assignThat stores the next expression in the array cell whose address
// is on top of the stack. The expression is compiled aside first: if it
// reads an array cell itself, it moves pointer 1, so the value is parked
// in temp 0 and the target address is set afterwards.
func (c *Compiler) assignThat(tk *tokenizer.Tokenizer) error {
	out := c.vmw
	held := out.Hold()

	c.vmw = held
	err := c.Expression(tk)
	c.vmw = out
	if err != nil {
		return err
	}

	if held.SetsThatPointer() {
		if err := out.Release(held); err != nil {
			return err
		}
		out.WritePop(vm.TEMP, 0)
		out.WritePop(vm.POINTER, 1)
		out.WritePush(vm.TEMP, 0)
	} else {
		out.WritePop(vm.POINTER, 1)
		if err := out.Release(held); err != nil {
			return err
		}
	}
	out.WritePop(vm.THAT, 0)
	return nil
}

func (c *Compiler) If(tk *tokenizer.Tokenizer) error {
	c.tree.open("ifStatement")
	defer c.tree.close()

	n := c.nextLabel()
	elseLabel := fmt.Sprintf("IF_ELSE_%d", n)
	endLabel := fmt.Sprintf("IF_END_%d", n)

	tk.Advance()
	if err := c.condition(tk); err != nil {
		return err
	}
	c.vmw.WriteArithmetic(vm.NOT)
	c.vmw.WriteIf(elseLabel)

	if err := c.block(tk); err != nil {
		return err
	}
	c.vmw.WriteGoto(endLabel)
	c.vmw.WriteLabel(elseLabel)

	if matches(tk.Current, is("else")) {
		tk.Advance()
		if err := c.block(tk); err != nil {
			return err
		}
	}
	c.vmw.WriteLabel(endLabel)
	return nil
}

func (c *Compiler) While(tk *tokenizer.Tokenizer) error {
	c.tree.open("whileStatement")
	defer c.tree.close()

	n := c.nextLabel()
	expLabel := fmt.Sprintf("WHILE_EXP_%d", n)
	endLabel := fmt.Sprintf("WHILE_END_%d", n)

	tk.Advance()
	c.vmw.WriteLabel(expLabel)
	if err := c.condition(tk); err != nil {
		return err
	}
	c.vmw.WriteArithmetic(vm.NOT)
	c.vmw.WriteIf(endLabel)

	if err := c.block(tk); err != nil {
		return err
	}
	c.vmw.WriteGoto(expLabel)
	c.vmw.WriteLabel(endLabel)
	return nil
}

// condition compiles `'(' expression ')'`.
func (c *Compiler) condition(tk *tokenizer.Tokenizer) error {
	if _, err := processToken(tk, is("(")); err != nil {
		return err
	}
	if err := c.Expression(tk); err != nil {
		return err
	}
	_, err := processToken(tk, is(")"))
	return err
}

// block compiles `'{' statements '}'`.
func (c *Compiler) block(tk *tokenizer.Tokenizer) error {
	if _, err := processToken(tk, is("{")); err != nil {
		return err
	}
	if err := c.Statements(tk); err != nil {
		return err
	}
	_, err := processToken(tk, is("}"))
	return err
}

func (c *Compiler) Do(tk *tokenizer.Tokenizer) error {
	c.tree.open("doStatement")
	defer c.tree.close()

	tk.Advance()
	nameToken, err := processToken(tk, isIdentifier())
	if err != nil {
		return err
	}
	if !matches(tk.Current, is("("), is(".")) {
		return unexpected(tk.Current)
	}
	if err := c.SubroutineCall(tk, nameToken); err != nil {
		return err
	}
	if _, err := processToken(tk, is(";")); err != nil {
		return err
	}
	c.vmw.WritePop(vm.TEMP, 0)
	return nil
}

func (c *Compiler) Return(tk *tokenizer.Tokenizer) error {
	c.tree.open("returnStatement")
	defer c.tree.close()

	tk.Advance()
	if matches(tk.Current, is(";")) {
		c.vmw.WritePush(vm.CONSTANT, 0)
	} else if err := c.Expression(tk); err != nil {
		return err
	}
	if _, err := processToken(tk, is(";")); err != nil {
		return err
	}
	c.vmw.WriteReturn()
	return nil
}

// Expression compiles terms and operators strictly left to right; the
// language has no operator precedence.
func (c *Compiler) Expression(tk *tokenizer.Tokenizer) error {
	c.tree.open("expression")
	defer c.tree.close()

	if err := c.Term(tk); err != nil {
		return err
	}

	for matches(tk.Current, isOp()) {
		opToken, _ := processToken(tk, isOp())
		if err := c.Term(tk); err != nil {
			return err
		}
		c.writeOp(opToken.Symbol())
	}
	return nil
}

func (c *Compiler) writeOp(op byte) {
	if name, ok := libraryOpsTable[op]; ok {
		c.vmw.WriteCall(name, 2)
		return
	}
	c.vmw.WriteArithmetic(arithmeticOpsTable[op])
}

func (c *Compiler) Term(tk *tokenizer.Tokenizer) error {
	c.tree.open("term")
	defer c.tree.close()

	token := tk.Current

	switch token.Type {
	case tokenizer.INT_CONST:
		tk.Advance()
		c.vmw.WritePush(vm.CONSTANT, token.IntVal())
		return nil

	case tokenizer.STRING_CONST:
		tk.Advance()
		c.stringConstant(token.StringVal())
		return nil

	case tokenizer.KEYWORD:
		switch token.Keyword() {
		case tokenizer.TRUE:
			c.vmw.WritePush(vm.CONSTANT, 0)
			c.vmw.WriteArithmetic(vm.NOT)
		case tokenizer.FALSE, tokenizer.NULL:
			c.vmw.WritePush(vm.CONSTANT, 0)
		case tokenizer.THIS:
			c.vmw.WritePush(vm.POINTER, 0)
		default:
			return unexpected(token)
		}
		tk.Advance()
		return nil

	case tokenizer.SYMBOL:
		if command, ok := unaryOpsTable[token.Symbol()]; ok {
			tk.Advance()
			if err := c.Term(tk); err != nil {
				return err
			}
			c.vmw.WriteArithmetic(command)
			return nil
		}
		if token.Symbol() == '(' {
			tk.Advance()
			if err := c.Expression(tk); err != nil {
				return err
			}
			_, err := processToken(tk, is(")"))
			return err
		}
		return unexpected(token)

	case tokenizer.IDENTIFIER:
		tk.Advance()
		if matches(tk.Current, is("("), is(".")) {
			return c.SubroutineCall(tk, token)
		}

		symbol, err := c.resolve(token)
		if err != nil {
			return err
		}
		c.push(symbol)
		if !matches(tk.Current, is("[")) {
			return nil
		}

		tk.Advance()
		if err := c.Expression(tk); err != nil {
			return err
		}
		if _, err := processToken(tk, is("]")); err != nil {
			return err
		}
		c.vmw.WriteArithmetic(vm.ADD)
		c.vmw.WritePop(vm.POINTER, 1)
		c.vmw.WritePush(vm.THAT, 0)
		return nil
	}

	return unexpected(token)
}

// SubroutineCall compiles the rest of a call whose leading identifier has
// already been consumed:
//
//	name(args)             method of the current class on this
//	variable.name(args)    method of the variable's class on the variable
//	ClassName.name(args)   function or constructor, no receiver
func (c *Compiler) SubroutineCall(tk *tokenizer.Tokenizer, nameToken tokenizer.Token) error {
	var name string
	var nArgs int

	if matches(tk.Current, is(".")) {
		tk.Advance()
		subroutineToken, err := processToken(tk, isIdentifier())
		if err != nil {
			return err
		}

		if symbol, ok := c.symbols.Lookup(nameToken.Identifier()); ok {
			c.push(symbol)
			nArgs = 1
			name = symbol.Type + "." + subroutineToken.Identifier()
		} else {
			name = nameToken.Identifier() + "." + subroutineToken.Identifier()
		}
	} else {
		c.vmw.WritePush(vm.POINTER, 0)
		nArgs = 1
		name = c.className + "." + nameToken.Identifier()
	}

	if _, err := processToken(tk, is("(")); err != nil {
		return err
	}
	n, err := c.ExpressionList(tk)
	if err != nil {
		return err
	}
	if _, err := processToken(tk, is(")")); err != nil {
		return err
	}

	c.vmw.WriteCall(name, nArgs+n)
	return nil
}

// ExpressionList compiles a possibly empty comma separated list and
// returns how many expressions it held.
func (c *Compiler) ExpressionList(tk *tokenizer.Tokenizer) (int, error) {
	c.tree.open("expressionList")
	defer c.tree.close()

	if matches(tk.Current, is(")")) {
		return 0, nil
	}

	var n int
	for {
		if err := c.Expression(tk); err != nil {
			return n, err
		}
		n++

		if !matches(tk.Current, is(",")) {
			return n, nil
		}
		tk.Advance()
	}
}

func (c *Compiler) stringConstant(value string) {
	chars := []rune(value)
	c.vmw.WritePush(vm.CONSTANT, len(chars))
	c.vmw.WriteCall("String.new", 1)
	for _, char := range chars {
		c.vmw.WritePush(vm.CONSTANT, int(char))
		c.vmw.WriteCall("String.appendChar", 2)
	}
}

func (c *Compiler) resolve(token tokenizer.Token) (symbols.Symbol, error) {
	symbol, ok := c.symbols.Lookup(token.Identifier())
	if !ok {
		return symbol, fmt.Errorf("%w %q: line %d", symbols.ErrUnresolved, token.Identifier(), token.Line)
	}
	return symbol, nil
}

func (c *Compiler) push(symbol symbols.Symbol) {
	c.vmw.WritePush(kindSegments[symbol.Kind], symbol.Index)
}

func (c *Compiler) pop(symbol symbols.Symbol) {
	c.vmw.WritePop(kindSegments[symbol.Kind], symbol.Index)
}

func (c *Compiler) nextLabel() int {
	n := c.labels
	c.labels++
	return n
}
