package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hlmerscher/jackc/analyzer"
	"github.com/hlmerscher/jackc/config"
	"github.com/hlmerscher/jackc/logger"
	"github.com/hlmerscher/jackc/onerror"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	onerror.Logf("error reading configuration\n", err)
	logger.Toggle(cfg.Verbose)

	var filenames []string
	if cfg.File != "" {
		filenames = append(filenames, cfg.File)
	}
	if cfg.Dir != "" {
		names, err := dirFilenames(cfg.Dir)
		onerror.Log(err)
		filenames = append(filenames, names...)
	}

	if failed := compileAll(filenames, cfg); failed > 0 {
		logger.Errorf("%d of %d files failed to compile\n", failed, len(filenames))
		os.Exit(1)
	}
}

type result struct {
	output string
	tokens string
	tree   string
	err    error
}

// compileAll compiles every file, cfg.Workers at a time, and reports the
// outcome of each in input order. It returns how many files failed.
func compileAll(filenames []string, cfg config.Config) int {
	results := make([]result, len(filenames))

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for i, filename := range filenames {
		i, filename := i, filename
		g.Go(func() error {
			results[i] = analyzeFile(filename, cfg)
			return nil
		})
	}
	g.Wait()

	var failed int
	for i, filename := range filenames {
		logger.Info("input:\t%s\n", filename)
		if err := results[i].err; err != nil {
			logger.Errorf("error:\t%s: %s\n", filename, err)
			failed++
			continue
		}
		if results[i].tokens != "" {
			logger.Info("tokens:\t%s\n", results[i].tokens)
		}
		if results[i].tree != "" {
			logger.Info("tree:\t%s\n", results[i].tree)
		}
		logger.Info("output:\t%s\n", results[i].output)
	}
	return failed
}

// analyzeFile writes the VM code of filename next to it, plus the token dump
// and the parse tree when cfg asks for them. Nothing is written for a file
// that fails to compile.
func analyzeFile(filename string, cfg config.Config) result {
	source, err := os.ReadFile(filename)
	if err != nil {
		return result{err: err}
	}

	out := new(bytes.Buffer)
	var tree *bytes.Buffer
	if cfg.Tree {
		tree = new(bytes.Buffer)
		err = analyzer.CompileTree(bytes.NewReader(source), out, tree)
	} else {
		err = analyzer.Compile(bytes.NewReader(source), out)
	}
	if err != nil {
		return result{err: err}
	}

	var r result
	if cfg.Tokens {
		r.tokens = tokensFilename(filename)
		if err := writeToFile(r.tokens, func(w io.Writer) error {
			return analyzer.Tokens(bytes.NewReader(source), w)
		}); err != nil {
			return result{err: err}
		}
	}

	if cfg.Tree {
		r.tree = treeFilename(filename)
		if err := os.WriteFile(r.tree, tree.Bytes(), 0666); err != nil {
			return result{err: err}
		}
	}

	r.output = outputFilename(filename)
	if err := os.WriteFile(r.output, out.Bytes(), 0666); err != nil {
		return result{err: err}
	}
	return r
}

func dirFilenames(dirname string) ([]string, error) {
	entries, err := os.ReadDir(dirname)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dirname, err)
	}

	filenames := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) == ".jack" {
			filenames = append(filenames, filepath.Join(dirname, entry.Name()))
		}
	}

	return filenames, nil
}

func outputFilename(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ".vm"
}

func tokensFilename(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + "T.xml"
}

func treeFilename(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ".xml"
}

func writeToFile(filename string, write func(io.Writer) error) error {
	buf := new(bytes.Buffer)
	if err := write(buf); err != nil {
		return err
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0666); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return nil
}
