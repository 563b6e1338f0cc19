// Package symbols keeps track of declared variables while a class is being
// compiled. Names live in one of two scopes: the class scope (static and
// field variables) and the subroutine scope (arguments and locals). A
// lookup consults the subroutine scope first.
package symbols

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var ErrUnresolved = errors.New("unresolved identifier")

type Kind int

const (
	Static Kind = iota
	Field
	Argument
	Local
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Field:
		return "field"
	case Argument:
		return "argument"
	case Local:
		return "local"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) classScoped() bool {
	return k == Static || k == Field
}

type Symbol struct {
	Name  string
	Type  string
	Kind  Kind
	Index int
}

type scope struct {
	records map[string]Symbol
	counts  map[Kind]int
}

func newScope() *scope {
	return &scope{
		records: make(map[string]Symbol),
		counts:  make(map[Kind]int),
	}
}

func (s *scope) define(name, typ string, kind Kind) Symbol {
	symbol := Symbol{Name: name, Type: typ, Kind: kind, Index: s.counts[kind]}
	s.counts[kind]++
	s.records[name] = symbol
	return symbol
}

type Table struct {
	class      *scope
	subroutine *scope
}

func New() *Table {
	return &Table{
		class:      newScope(),
		subroutine: newScope(),
	}
}

// StartSubroutine throws away every argument and local.
func (t *Table) StartSubroutine() {
	t.subroutine = newScope()
}

// Define records name in the scope its kind belongs to and gives it the
// next index of that kind. Defining a name twice in the same scope
// replaces the earlier record.
func (t *Table) Define(name, typ string, kind Kind) Symbol {
	if kind.classScoped() {
		return t.class.define(name, typ, kind)
	}
	return t.subroutine.define(name, typ, kind)
}

// Count reports how many variables of kind were defined in both scopes.
func (t *Table) Count(kind Kind) int {
	return t.class.counts[kind] + t.subroutine.counts[kind]
}

func (t *Table) Lookup(name string) (Symbol, bool) {
	if symbol, ok := t.subroutine.records[name]; ok {
		return symbol, true
	}
	symbol, ok := t.class.records[name]
	return symbol, ok
}

func (t *Table) resolve(name string) (Symbol, error) {
	symbol, ok := t.Lookup(name)
	if !ok {
		return Symbol{}, fmt.Errorf("%w %q", ErrUnresolved, name)
	}
	return symbol, nil
}

func (t *Table) KindOf(name string) (Kind, error) {
	symbol, err := t.resolve(name)
	return symbol.Kind, err
}

func (t *Table) TypeOf(name string) (string, error) {
	symbol, err := t.resolve(name)
	return symbol.Type, err
}

func (t *Table) IndexOf(name string) (int, error) {
	symbol, err := t.resolve(name)
	return symbol.Index, err
}

// String lists the visible symbols sorted by name, subroutine scope first.
func (t *Table) String() string {
	var b strings.Builder
	for _, s := range []*scope{t.subroutine, t.class} {
		names := maps.Keys(s.records)
		slices.Sort(names)
		for _, name := range names {
			symbol := s.records[name]
			fmt.Fprintf(&b, "%s %s %s %d\n", symbol.Kind, symbol.Type, name, symbol.Index)
		}
	}
	return b.String()
}
