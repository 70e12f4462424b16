// Command foodapp drives the Rocket Food Delivery app from a terminal. The
// session is kept on disk between invocations, so a login carries over to
// later commands until logout.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"

	"rocket-food-delivery/app"
	"rocket-food-delivery/config"
	"rocket-food-delivery/session"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	global := pflag.NewFlagSet("foodapp", pflag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(io.Discard)
	global.String("api-url", "", "backend base URL (env API_URL)")
	global.String("session-db", "", "file the session is kept in")
	global.Duration("http-timeout", 0, "per-request timeout")
	global.String("log-level", "", "debug, info, warn or error")
	as := global.String("as", "", "role to act as when holding both: customer or courier")

	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(stdout, global)
			return nil
		}
		return err
	}
	rest := global.Args()
	if len(rest) == 0 {
		printUsage(stdout, global)
		return errors.New("command required")
	}
	cmd, ok := lookup(rest[0])
	if !ok {
		if s := suggest(rest[0]); s != "" {
			return fmt.Errorf("unknown command %q (did you mean %q?)\n\nRun 'foodapp --help' for usage.", rest[0], s)
		}
		return fmt.Errorf("unknown command %q\n\nRun 'foodapp --help' for usage.", rest[0])
	}

	flags := pflag.NewFlagSet("foodapp "+cmd.name, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	if cmd.flags != nil {
		cmd.flags(flags)
	}
	if err := flags.Parse(rest[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(stdout, "Usage: foodapp %s\n\n%s\n", cmd.usage, flags.FlagUsages())
			return nil
		}
		return fmt.Errorf("%s: %w", cmd.name, err)
	}

	cfg, err := config.Load(global)
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.Start(ctx); err != nil {
		return err
	}
	if *as != "" {
		if err := chooseRole(a, *as); err != nil {
			return err
		}
	}

	e := &env{app: a, flags: flags, stdin: bufio.NewReader(stdin), out: stdout}
	return cmd.run(ctx, e, flags.Args())
}

func chooseRole(a *app.App, role string) error {
	mode := session.RoleMode(strings.ToLower(role))
	if mode != session.ModeCustomer && mode != session.ModeCourier {
		return fmt.Errorf("--as must be customer or courier, got %q", role)
	}
	st := a.Sessions.State()
	if !st.HasBothRoles {
		if st.Mode != mode {
			return fmt.Errorf("--as %s: this account is not a %s", role, role)
		}
		return nil
	}
	return a.Sessions.ChooseRole(mode)
}

func printUsage(w io.Writer, global *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: foodapp [global flags] <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-12s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	fmt.Fprint(w, global.FlagUsages())
}
