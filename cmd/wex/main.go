// Package main is the entry point for wex, which runs ex command scripts,
// macros included, against a file.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/dshills/wex/internal/app"
	"github.com/dshills/wex/internal/config"
	"github.com/dshills/wex/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// commandList collects repeated -c flags.
type commandList []string

func (c *commandList) String() string { return strings.Join(*c, "; ") }

func (c *commandList) Set(v string) error {
	*c = append(*c, v)
	return nil
}

type options struct {
	commands    commandList
	configPath  string
	macrosPath  string
	stream      bool
	logLevel    string
	write       bool
	showVersion bool
	file        string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("wex", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.Var(&opts.commands, "c", "ex command (repeatable); read from stdin when none given")
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.macrosPath, "macros", "", "Path to macros.xml")
	fs.BoolVar(&opts.stream, "stream", false, "Edit through a stream instead of loading the file")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.write, "write", false, "Save the edited file on exit")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "wex - ex commands and macros for files of any size\n\n")
		fmt.Fprintf(stderr, "Usage: wex [options] file\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  wex -c '%%s/foo/bar/g' -write file.txt   Substitute and save\n")
		fmt.Fprintf(stderr, "  wex -c @a -write -stream huge.log       Play macro a over a large file\n")
		fmt.Fprintf(stderr, "  wex file.txt < script.ex                Run a command script\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.showVersion {
		return opts, nil
	}
	if opts.logLevel != "" && !logging.ValidLevel(opts.logLevel) {
		return opts, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.logLevel)
	}
	switch fs.NArg() {
	case 0:
		if opts.stream {
			return opts, errors.New("-stream needs a file")
		}
	case 1:
		opts.file = fs.Arg(0)
	default:
		return opts, errors.New("only one file may be edited")
	}
	return opts, nil
}

func loadConfig(opts options) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if opts.macrosPath != "" {
		abs, err := filepath.Abs(opts.macrosPath)
		if err != nil {
			return nil, err
		}
		cfg.MacrosFile = abs
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, nil
}

// readCommands reads one command per line, skipping blank lines and lines
// starting with '"'.
func readCommands(r io.Reader) ([]string, error) {
	var commands []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, `"`) {
			continue
		}
		commands = append(commands, line)
	}
	return commands, sc.Err()
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "wex %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// Questions go to the terminal only when stdin is not the script.
	sessionOpts := app.Options{Config: cfg, File: opts.file, Stream: opts.stream, LogOutput: stderr}
	commands := []string(opts.commands)
	if len(commands) == 0 {
		if isTerminal(stdin) {
			fmt.Fprintln(stderr, "reading commands from the terminal; end with Ctrl-D")
		}
		if commands, err = readCommands(stdin); err != nil {
			fmt.Fprintf(stderr, "Error: reading commands: %v\n", err)
			return 1
		}
	} else if isTerminal(stdin) {
		sessionOpts.Prompter = app.NewLinePrompter(stdin, stderr)
	}

	session, err := app.New(sessionOpts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer session.Close()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-signals:
			session.Close()
		case <-done:
		}
	}()

	code := 0
	if err := session.Run(commands); err != nil {
		if errors.Is(err, app.ErrClosed) {
			return 130
		}
		var list *app.ErrorList
		if errors.As(err, &list) {
			for _, e := range list.Errors() {
				fmt.Fprintf(stderr, "Error: %v\n", e)
			}
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		code = 1
	}

	if opts.write {
		if err := session.Save(); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	if msg := session.Status().Message(); msg != "" {
		fmt.Fprintln(stdout, msg)
	}
	return code
}
