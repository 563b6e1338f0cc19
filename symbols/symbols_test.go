package symbols

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestDefineAssignsIndexPerKind(t *testing.T) {
	table := New()
	table.Define("count", "int", Static)
	table.Define("x", "int", Field)
	table.Define("y", "int", Field)
	table.Define("other", "Point", Argument)
	table.Define("i", "int", Local)
	table.Define("j", "int", Local)

	tests := []struct {
		name  string
		kind  Kind
		typ   string
		index int
	}{
		{"count", Static, "int", 0},
		{"x", Field, "int", 0},
		{"y", Field, "int", 1},
		{"other", Argument, "Point", 0},
		{"i", Local, "int", 0},
		{"j", Local, "int", 1},
	}

	for _, tt := range tests {
		kind, err := table.KindOf(tt.name)
		be.Err(t, err, nil)
		be.Equal(t, kind, tt.kind)

		typ, err := table.TypeOf(tt.name)
		be.Err(t, err, nil)
		be.Equal(t, typ, tt.typ)

		index, err := table.IndexOf(tt.name)
		be.Err(t, err, nil)
		be.Equal(t, index, tt.index)
	}

	be.Equal(t, table.Count(Static), 1)
	be.Equal(t, table.Count(Field), 2)
	be.Equal(t, table.Count(Argument), 1)
	be.Equal(t, table.Count(Local), 2)
}

func TestSubroutineScopeShadowsClassScope(t *testing.T) {
	table := New()
	table.Define("x", "int", Field)
	table.Define("x", "boolean", Local)

	kind, err := table.KindOf("x")
	be.Err(t, err, nil)
	be.Equal(t, kind, Local)

	typ, err := table.TypeOf("x")
	be.Err(t, err, nil)
	be.Equal(t, typ, "boolean")

	table.StartSubroutine()
	kind, err = table.KindOf("x")
	be.Err(t, err, nil)
	be.Equal(t, kind, Field)
}

func TestStartSubroutineResetsArgumentsAndLocals(t *testing.T) {
	table := New()
	table.Define("s", "int", Static)
	table.Define("a", "int", Argument)
	table.Define("v", "char", Local)

	table.StartSubroutine()

	be.Equal(t, table.Count(Argument), 0)
	be.Equal(t, table.Count(Local), 0)
	be.Equal(t, table.Count(Static), 1)

	_, err := table.KindOf("a")
	be.Err(t, err, ErrUnresolved)
	_, err = table.IndexOf("v")
	be.Err(t, err, ErrUnresolved)
	_, err = table.TypeOf("s")
	be.Err(t, err, nil)

	symbol := table.Define("b", "int", Argument)
	be.Equal(t, symbol.Index, 0)
}

func TestRedefinitionLastWriteWins(t *testing.T) {
	table := New()
	table.Define("v", "int", Local)
	table.Define("v", "Array", Local)

	typ, err := table.TypeOf("v")
	be.Err(t, err, nil)
	be.Equal(t, typ, "Array")

	index, err := table.IndexOf("v")
	be.Err(t, err, nil)
	be.Equal(t, index, 1)
}

func TestUnresolvedIdentifier(t *testing.T) {
	table := New()
	_, ok := table.Lookup("Output")
	be.True(t, !ok)

	_, err := table.KindOf("Output")
	be.Err(t, err, ErrUnresolved)
}

func TestString(t *testing.T) {
	table := New()
	table.Define("b", "int", Field)
	table.Define("a", "int", Field)
	table.Define("this", "Point", Argument)

	be.Equal(t, table.String(), "argument Point this 0\nfield int a 1\nfield int b 0\n")
}
