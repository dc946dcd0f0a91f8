// Package cmd implements the CLI command structure for tasklist.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/tasklist-go/internal/app"
	"github.com/nibzard/tasklist-go/internal/config"
	"github.com/nibzard/tasklist-go/internal/logging"
	"github.com/nibzard/tasklist-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run executes the tasklist CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tasklist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}
	cfg := cws.Config

	// No args or a leading flag means the interactive list.
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "add":
		return addCommand(ctx, cfg, remainingArgs)
	case "rm", "remove":
		return rmCommand(ctx, cfg, remainingArgs)
	case "clear":
		return clearCommand(ctx, cfg, remainingArgs)
	case "ls", "list":
		return lsCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return doctorCommand(ctx, cws, remainingArgs)
	case "config":
		return configCommand(cws, remainingArgs)
	case "logs", "tail":
		return logsCommand(ctx, cfg, remainingArgs)
	case "completion":
		return completionCommand(remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// tuiCommand launches the interactive list.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	if !ui.IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY; use add, rm, clear or ls from scripts")
	}

	s, err := openSession(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	return ui.RunTUI(ctx, s.ctrl, s.list,
		ui.WithTitle("Tasks"),
		ui.WithSubtitle(storeLabel(cfg)),
	)
}

// addCommand appends one task built from the arguments.
func addCommand(ctx context.Context, cfg *config.Config, args []string) error {
	text := strings.Join(args, " ")

	s, err := openSession(ctx, cfg, stderr)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ctrl.Add(ctx, text); err != nil {
		var ve *app.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("%s (usage: tasklist add <task>)", ve.Message)
		}
		return err
	}
	fmt.Fprintf(stdout, "Added: %s\n", text)
	return nil
}

// rmCommand removes the first task equal to the arguments.
func rmCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tasklist rm <task>")
	}
	text := strings.Join(args, " ")

	s, err := openSession(ctx, cfg, stderr)
	if err != nil {
		return err
	}
	defer s.Close()

	removed, err := s.ctrl.RemoveText(ctx, text)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("no task equal to %q", text)
	}
	fmt.Fprintf(stdout, "Removed: %s\n", text)
	return nil
}

// clearCommand removes every task.
func clearCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}

	s, err := openSession(ctx, cfg, stderr)
	if err != nil {
		return err
	}
	defer s.Close()

	n := s.list.Len()
	if err := s.ctrl.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Cleared %d task(s)\n", n)
	return nil
}

type listedTask struct {
	Position int    `json:"position" yaml:"position"`
	Task     string `json:"task" yaml:"task"`
}

// lsCommand prints the tasks, optionally filtered like the interactive view.
func lsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist ls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "text", "Output format (text|json|yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	query := strings.Join(fs.Args(), " ")

	s, err := openSession(ctx, cfg, stderr)
	if err != nil {
		return err
	}
	defer s.Close()

	s.ctrl.Filter(query)
	var tasks []listedTask
	for i, row := range s.list.Rows() {
		if row.Hidden {
			continue
		}
		tasks = append(tasks, listedTask{Position: i + 1, Task: row.Text})
	}
	if tasks == nil {
		tasks = []listedTask{}
	}

	switch strings.ToLower(*format) {
	case "json":
		data, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, string(data))
	case "yaml", "yml":
		data, err := yaml.Marshal(tasks)
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, string(data))
	case "text", "":
		printTaskList(tasks, s.list.Len(), query)
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", *format)
	}
	return nil
}

func printTaskList(tasks []listedTask, total int, query string) {
	if len(tasks) == 0 {
		if total > 0 && query != "" {
			fmt.Fprintf(stdout, "No tasks match %q.\n", query)
			return
		}
		fmt.Fprintln(stdout, "No tasks.")
		return
	}
	for _, t := range tasks {
		fmt.Fprintf(stdout, "%3d. %s\n", t.Position, t.Task)
	}
}

// configCommand prints the effective configuration or an example file.
func configCommand(cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("tasklist config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	}

	out, err := config.Encode(cws.Config)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if file := cws.GetConfigFile(); file != "" {
		fmt.Fprintf(stdout, "# Config file: %s\n", file)
	} else {
		fmt.Fprintln(stdout, "# Config file: none")
	}
	fmt.Fprintln(stdout, "# Sources:")
	fields := config.Fields()
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(stdout, "#   %-15s %s\n", field, cws.Sources[field])
	}
	fmt.Fprintln(stdout)
	fmt.Fprint(stdout, out)
	return nil
}

// logsCommand prints the latest interactive session log.
func logsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist logs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logDir, err := logging.RunDir(cfg.LogDir, cfg.DataFile)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}
	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(stdout, "No log files found.")
		return nil
	}

	fmt.Fprintf(stderr, "Tailing: %s\n", logPath)
	return logging.TailLog(ctx, stdout, logPath, *n, *follow)
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Fprintf(stdout, "tasklist version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "tasklist - a small task list for the terminal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasklist [options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui              Interactive list (default command)")
	fmt.Fprintln(w, "  add <task>       Add a task")
	fmt.Fprintln(w, "  rm <task>        Remove the first task equal to <task>")
	fmt.Fprintln(w, "  clear            Remove all tasks")
	fmt.Fprintln(w, "  ls [query]       List tasks, optionally filtered (case-insensitive)")
	fmt.Fprintln(w, "  doctor           Check storage, stored data and speech engine")
	fmt.Fprintln(w, "  config           Show effective configuration and where it came from")
	fmt.Fprintln(w, "  logs             Show the latest interactive session log")
	fmt.Fprintln(w, "  completion <sh>  Print a completion script (bash|zsh|fish)")
	fmt.Fprintln(w, "  version          Show version information")
	fmt.Fprintln(w, "  help             Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(stderr)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -format string")
	fmt.Fprintln(w, "        Output format (text|json|yaml) (default \"text\")")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config Options:")
	fmt.Fprintln(w, "  -example")
	fmt.Fprintln(w, "        Print an example config file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Logs Options:")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
}
