package logger

import (
	"io"
	"log"
	"os"
	"sync/atomic"
)

var (
	verbose atomic.Bool
	out     = log.New(os.Stdout, "", 0)
	errs    = log.New(os.Stderr, "", 0)
)

func Toggle(flag bool) {
	verbose.Store(flag)
}

func Verbose() bool {
	return verbose.Load()
}

// SetOutput redirects both the progress and the error log.
func SetOutput(w io.Writer) {
	out.SetOutput(w)
	errs.SetOutput(w)
}

func Print(values ...any) {
	if !verbose.Load() {
		return
	}

	out.Print(values...)
}

func Printf(format string, values ...any) {
	if !verbose.Load() {
		return
	}

	out.Printf(format, values...)
}

func Println(values ...any) {
	if !verbose.Load() {
		return
	}

	out.Println(values...)
}

// Info prints regardless of the verbose flag.
func Info(format string, values ...any) {
	out.Printf(format, values...)
}

func Errorf(format string, values ...any) {
	errs.Printf(format, values...)
}
