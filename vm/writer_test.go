package vm

import (
	"errors"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestWriterCommands(t *testing.T) {
	out := new(strings.Builder)
	w := New(out)

	w.WriteFunction("Main.main", 2)
	w.WritePush(CONSTANT, 7)
	w.WritePush(ARGUMENT, 1)
	w.WriteArithmetic(ADD)
	w.WritePop(LOCAL, 0)
	w.WritePush(STATIC, 3)
	w.WritePop(THIS, 2)
	w.WritePush(THAT, 0)
	w.WritePop(POINTER, 1)
	w.WritePop(TEMP, 0)
	w.WriteLabel("WHILE_EXP_0")
	w.WriteIf("WHILE_END_0")
	w.WriteGoto("WHILE_EXP_0")
	w.WriteCall("Math.multiply", 2)
	w.WriteArithmetic(NOT)
	w.WriteReturn()
	be.Err(t, w.Flush(), nil)

	expected := `function Main.main 2
push constant 7
push argument 1
add
pop local 0
push static 3
pop this 2
push that 0
pop pointer 1
pop temp 0
label WHILE_EXP_0
if-goto WHILE_END_0
goto WHILE_EXP_0
call Math.multiply 2
not
return
`
	be.Equal(t, out.String(), expected)
}

func TestArithmeticNames(t *testing.T) {
	names := make([]string, 0)
	for c := ADD; c <= NOT; c++ {
		names = append(names, c.String())
	}
	be.Equal(t, names, []string{"add", "sub", "neg", "eq", "gt", "lt", "and", "or", "not"})
}

func TestHoldAndRelease(t *testing.T) {
	out := new(strings.Builder)
	w := New(out)
	w.WritePush(LOCAL, 0)

	held := w.Hold()
	held.WritePush(CONSTANT, 1)
	held.WritePop(POINTER, 1)
	be.True(t, held.SetsThatPointer())
	be.True(t, !w.SetsThatPointer())

	w.WritePop(TEMP, 0)
	be.Err(t, w.Release(held), nil)
	be.True(t, w.SetsThatPointer())
	be.Err(t, w.Flush(), nil)

	be.Equal(t, out.String(), "push local 0\npop temp 0\npush constant 1\npop pointer 1\n")
}

type failingWriter struct{}

var errDiskFull = errors.New("disk full")

func (failingWriter) Write([]byte) (int, error) {
	return 0, errDiskFull
}

func TestFlushReportsWriteError(t *testing.T) {
	w := New(failingWriter{})
	w.WriteReturn()
	be.Err(t, w.Flush(), errDiskFull)
}
