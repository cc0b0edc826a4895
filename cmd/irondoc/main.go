package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"go.uber.org/zap"

	"irondoc/client/internal/app"
	"irondoc/client/internal/config"
)

type command struct {
	summary string
	run     func(ctx context.Context, d *deps, args []string) error
}

var commands = map[string]command{
	"register": {"create an account", runRegister},
	"login":    {"sign in", runLogin},
	"logout":   {"sign out, keeping profile overrides", runLogout},
	"whoami":   {"show the signed-in user", runWhoami},
	"health":   {"check the API", runHealth},
	"docs":     {"list, filter or search documents", runDocs},
	"show":     {"print a document", runShow},
	"history":  {"print the revisions you may see", runHistory},
	"create":   {"create a document", runCreate},
	"edit":     {"change a document's title or content", runEdit},
	"delete":   {"delete a document", runDelete},
	"restore":  {"restore an older revision", runRestore},
	"users":    {"list accounts (admin)", runUsers},
	"profile":  {"show or change your display name and avatar", runProfile},
	"export":   {"export a document as html, pdf or docx", runExport},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "irondoc: %v\n", err)
		return 2
	}

	global := flag.NewFlagSet("irondoc", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.StringVar(&cfg.APIURL, "api", cfg.APIURL, "API base URL")
	global.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	global.Usage = func() { usage(global, stderr) }
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	rest := global.Args()
	if len(rest) == 0 {
		usage(global, stderr)
		return 2
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		usage(global, stderr)
		return 2
	}

	d, err := newDeps(cfg, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "irondoc: %v\n", err)
		return 1
	}
	defer d.Close()

	if err := cmd.run(ctx, d, rest[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "irondoc %s: %s\n", rest[0], usageErr.msg)
			return 2
		}
		d.logger.Debug("command failed", zap.String("command", rest[0]), zap.Error(err))
		fmt.Fprintf(stderr, "irondoc %s: %s\n", rest[0], app.UserMessage(err))
		return 1
	}
	return 0
}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "usage: irondoc [flags] <command> [command flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-9s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "flags:")
	fs.PrintDefaults()
}
