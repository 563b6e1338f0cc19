package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/hlmerscher/jackc/config"
	"github.com/hlmerscher/jackc/logger"
)

func writeSource(t *testing.T, dir, name, source string) string {
	t.Helper()
	filename := filepath.Join(dir, name)
	be.Err(t, os.WriteFile(filename, []byte(source), 0644), nil)
	return filename
}

func TestCompileAll(t *testing.T) {
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stdout)

	dir := t.TempDir()
	writeSource(t, dir, "Main.jack", `class Main { function void main() { do Box.run(); return; } }`)
	writeSource(t, dir, "Box.jack", `class Box { function void run() { return; } }`)
	writeSource(t, dir, "Broken.jack", `class Broken { function void run() { return } }`)
	writeSource(t, dir, "notes.txt", `not a class`)
	be.Err(t, os.Mkdir(filepath.Join(dir, "sub.jack"), 0755), nil)

	filenames, err := dirFilenames(dir)
	be.Err(t, err, nil)
	be.Equal(t, len(filenames), 3)

	failed := compileAll(filenames, config.Config{Dir: dir, Workers: 2, Tokens: true, Tree: true})
	be.Equal(t, failed, 1)

	vm, err := os.ReadFile(filepath.Join(dir, "Main.vm"))
	be.Err(t, err, nil)
	be.Equal(t, string(vm), "function Main.main 0\ncall Box.run 0\npop temp 0\npush constant 0\nreturn\n")

	_, err = os.Stat(filepath.Join(dir, "BoxT.xml"))
	be.Err(t, err, nil)
	tree, err := os.ReadFile(filepath.Join(dir, "Box.xml"))
	be.Err(t, err, nil)
	be.True(t, strings.HasPrefix(string(tree), "<class>\n  <keyword> class </keyword>\n"))

	_, err = os.Stat(filepath.Join(dir, "Broken.vm"))
	be.Err(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(dir, "BrokenT.xml"))
	be.Err(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(dir, "Broken.xml"))
	be.Err(t, err, os.ErrNotExist)
}

func TestDirFilenamesMissingDir(t *testing.T) {
	_, err := dirFilenames(filepath.Join(t.TempDir(), "missing"))
	be.Err(t, err, os.ErrNotExist)
	be.Err(t, err, "reading directory")
}

func TestOutputFilenames(t *testing.T) {
	be.Equal(t, outputFilename("games/Pong/Ball.jack"), "games/Pong/Ball.vm")
	be.Equal(t, tokensFilename("Ball.jack"), "BallT.xml")
	be.Equal(t, treeFilename("Ball.jack"), "Ball.xml")
}
