package vm

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

type Segment int

const (
	CONSTANT Segment = iota
	ARGUMENT
	LOCAL
	STATIC
	THIS
	THAT
	POINTER
	TEMP
)

var segmentNames = [...]string{
	CONSTANT: "constant",
	ARGUMENT: "argument",
	LOCAL:    "local",
	STATIC:   "static",
	THIS:     "this",
	THAT:     "that",
	POINTER:  "pointer",
	TEMP:     "temp",
}

func (s Segment) String() string {
	return segmentNames[s]
}

type Command int

const (
	ADD Command = iota
	SUB
	NEG
	EQ
	GT
	LT
	AND
	OR
	NOT
)

var commandNames = [...]string{
	ADD: "add",
	SUB: "sub",
	NEG: "neg",
	EQ:  "eq",
	GT:  "gt",
	LT:  "lt",
	AND: "and",
	OR:  "or",
	NOT: "not",
}

func (c Command) String() string {
	return commandNames[c]
}

// Writer emits one VM command per line. Output is buffered: the first
// write error sticks and is returned by Flush.
type Writer struct {
	out  *bufio.Writer
	held *bytes.Buffer

	thatPointerSet bool
}

func New(out io.Writer) *Writer {
	return &Writer{out: bufio.NewWriter(out)}
}

func (w *Writer) WritePush(segment Segment, index int) {
	fmt.Fprintf(w.out, "push %s %d\n", segment, index)
}

func (w *Writer) WritePop(segment Segment, index int) {
	if segment == POINTER && index == 1 {
		w.thatPointerSet = true
	}
	fmt.Fprintf(w.out, "pop %s %d\n", segment, index)
}

func (w *Writer) WriteArithmetic(command Command) {
	fmt.Fprintln(w.out, command)
}

func (w *Writer) WriteLabel(label string) {
	fmt.Fprintf(w.out, "label %s\n", label)
}

func (w *Writer) WriteGoto(label string) {
	fmt.Fprintf(w.out, "goto %s\n", label)
}

func (w *Writer) WriteIf(label string) {
	fmt.Fprintf(w.out, "if-goto %s\n", label)
}

func (w *Writer) WriteCall(name string, nArgs int) {
	fmt.Fprintf(w.out, "call %s %d\n", name, nArgs)
}

func (w *Writer) WriteFunction(name string, nLocals int) {
	fmt.Fprintf(w.out, "function %s %d\n", name, nLocals)
}

func (w *Writer) WriteReturn() {
	fmt.Fprintln(w.out, "return")
}

func (w *Writer) Flush() error {
	return w.out.Flush()
}

// Hold returns a writer whose commands are kept in memory until they are
// released into w with Release.
func (w *Writer) Hold() *Writer {
	held := new(bytes.Buffer)
	return &Writer{out: bufio.NewWriter(held), held: held}
}

// Release appends the commands of a writer obtained from Hold.
func (w *Writer) Release(h *Writer) error {
	if err := h.Flush(); err != nil {
		return err
	}
	if h.thatPointerSet {
		w.thatPointerSet = true
	}
	_, err := w.out.Write(h.held.Bytes())
	return err
}

// SetsThatPointer reports whether any command written so far moved the
// that segment by popping into pointer 1.
func (w *Writer) SetsThatPointer() bool {
	return w.thatPointerSet
}
