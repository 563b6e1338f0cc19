// Package config gathers the command line settings. Values come from a
// .env file, then the environment, then flags, each overriding the last.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/exp/slices"
)

const (
	EnvVerbose = "JACKC_VERBOSE"
	EnvTokens  = "JACKC_TOKENS"
	EnvWorkers = "JACKC_WORKERS"
	EnvTree    = "JACKC_XML"
)

var ErrNoInput = errors.New("filename/directory is missing")

type Config struct {
	File    string
	Dir     string
	Verbose bool
	Tokens  bool
	Tree    bool
	Workers int
}

// Load parses args (without the program name). Usage and flag errors are
// written to output. Asking for help returns flag.ErrHelp.
func Load(args []string, output io.Writer) (Config, error) {
	envFile := envFileArg(args)
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
	}

	defaults, err := fromEnv()
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	flags := flag.NewFlagSet("jackc", flag.ContinueOnError)
	flags.SetOutput(output)
	flags.StringVar(&cfg.File, "f", "", "the filename of the jack source file")
	flags.StringVar(&cfg.Dir, "d", "", "the directory of the jack source files")
	flags.BoolVar(&cfg.Verbose, "v", defaults.Verbose, "log every class and subroutine compiled")
	flags.BoolVar(&cfg.Tokens, "tokens", defaults.Tokens, "also write the token dump of each file as <name>T.xml")
	flags.BoolVar(&cfg.Tree, "xml", defaults.Tree, "also write the parse tree of each file as <name>.xml")
	flags.IntVar(&cfg.Workers, "j", defaults.Workers, "number of files compiled in parallel")
	flags.String("env", envFile, "the .env file to read settings from")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.File == "" && cfg.Dir == "" {
		return Config{}, ErrNoInput
	}
	if cfg.Workers < 1 {
		return Config{}, fmt.Errorf("invalid number of workers %d", cfg.Workers)
	}
	return cfg, nil
}

// valueFlags are the flags that consume the next argument when given
// without "=".
var valueFlags = []string{"f", "d", "j", "env"}

// envFileArg finds the -env value before the flags are defined, walking
// args the way flag.Parse does: parsing stops at "--" or at the first
// argument that is not a flag.
func envFileArg(args []string) string {
	envFile := ".env"
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" || len(arg) < 2 || arg[0] != '-' {
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimPrefix(arg[1:], "-"), "=")
		if !hasValue && slices.Contains(valueFlags, name) && i+1 < len(args) {
			i++
			value, hasValue = args[i], true
		}
		if name == "env" && hasValue {
			envFile = value
		}
	}
	return envFile
}

func fromEnv() (Config, error) {
	cfg := Config{Workers: runtime.NumCPU()}

	var err error
	if v, ok := os.LookupEnv(EnvVerbose); ok {
		if cfg.Verbose, err = strconv.ParseBool(v); err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvVerbose, err)
		}
	}
	if v, ok := os.LookupEnv(EnvTokens); ok {
		if cfg.Tokens, err = strconv.ParseBool(v); err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvTokens, err)
		}
	}
	if v, ok := os.LookupEnv(EnvTree); ok {
		if cfg.Tree, err = strconv.ParseBool(v); err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvTree, err)
		}
	}
	if v, ok := os.LookupEnv(EnvWorkers); ok {
		if cfg.Workers, err = strconv.Atoi(v); err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvWorkers, err)
		}
	}
	return cfg, nil
}
