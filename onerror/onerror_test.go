package onerror

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/hlmerscher/jackc/logger"
)

func TestLogf(t *testing.T) {
	var buf strings.Builder
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stdout)

	var code int
	exit = func(c int) { code = c }
	defer func() { exit = os.Exit }()

	Logf("reading config\n", nil)
	be.Equal(t, code, 0)
	be.Equal(t, buf.String(), "")

	Logf("reading config\n", errors.New("bad flag"))
	be.Equal(t, code, 1)
	be.Equal(t, buf.String(), "\nreading config\nbad flag\n")
}

func TestLog(t *testing.T) {
	var buf strings.Builder
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stdout)

	var code int
	exit = func(c int) { code = c }
	defer func() { exit = os.Exit }()

	Log(nil)
	be.Equal(t, code, 0)

	Log(errors.New("reading directory Square: no such file"))
	be.Equal(t, code, 1)
	be.Equal(t, buf.String(), "\nreading directory Square: no such file\n")
}
