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
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/noah-isme/gardenia-api/internal/scanner"
	appErrors "github.com/noah-isme/gardenia-api/pkg/errors"
)

const usage = `Scan a badge (or type its id) to verify it, then:
  :allow [reason]   admit the verified registration
  :deny <reason>    refuse entry
  :dismiss          clear an error and keep scanning
  :reset            cancel and start over
  :quit             exit`

func main() {
	flags := pflag.NewFlagSet("gate-scanner", pflag.ExitOnError)
	baseURL := flags.String("base-url", "http://localhost:8080/api/v1", "API base URL including the prefix")
	token := flags.String("token", os.Getenv("GATE_TOKEN"), "bearer token of a gate operator (defaults to $GATE_TOKEN)")
	timeout := flags.Duration("timeout", scanner.DefaultTimeout, "timeout for each API call")
	cooldown := flags.Duration("cooldown", scanner.DefaultCooldown, "ignore repeat decodes within this window")
	verbose := flags.BoolP("verbose", "v", false, "log API activity to stderr")
	_ = flags.Parse(os.Args[1:])

	if *token == "" {
		fmt.Fprintln(os.Stderr, "a gate operator token is required (--token or GATE_TOKEN)")
		os.Exit(2)
	}

	logr := zap.NewNop()
	if *verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			logr = l
		}
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gate := scanner.NewGate(scanner.NewClient(*baseURL, *token, *timeout), scanner.NewCooldown(*cooldown), logr)
	if err := run(ctx, gate, os.Stdin, os.Stdout, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run reads scanner lines and operator commands until EOF, :quit or ctx ends.
func run(ctx context.Context, gate *scanner.Gate, in io.Reader, out io.Writer, timeout time.Duration) error {
	fmt.Fprintln(out, usage)
	if err := gate.Start(); err != nil {
		return err
	}
	fmt.Fprintf(out, "[%s] ready\n", gate.State())

	lines := bufio.NewScanner(in)
	for lines.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(lines.Text())
		if line == "" {
			continue
		}
		if line == ":quit" {
			return nil
		}
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		handleLine(callCtx, gate, line, out)
		cancel()
	}
	return lines.Err()
}

func handleLine(ctx context.Context, gate *scanner.Gate, line string, out io.Writer) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case ":allow":
		decision, err := gate.Allow(ctx, arg)
		if err != nil {
			report(out, gate, err)
			return
		}
		fmt.Fprintf(out, "[%s] %s recorded for %s\n", gate.State(), decision.Action, decision.RegID)
		rearm(gate, out)
	case ":deny":
		if arg == "" {
			fmt.Fprintf(out, "[%s] a reason is required to deny entry\n", gate.State())
			return
		}
		decision, err := gate.Deny(ctx, arg)
		if err != nil {
			report(out, gate, err)
			return
		}
		fmt.Fprintf(out, "[%s] %s recorded for %s\n", gate.State(), decision.Action, decision.RegID)
		rearm(gate, out)
	case ":dismiss":
		if err := gate.Dismiss(); err != nil {
			report(out, gate, err)
			return
		}
		fmt.Fprintf(out, "[%s] ready\n", gate.State())
	case ":reset":
		gate.Reset()
		rearm(gate, out)
	default:
		if strings.HasPrefix(cmd, ":") {
			fmt.Fprintf(out, "[%s] unknown command %s\n", gate.State(), cmd)
			return
		}
		view, err := gate.Scan(ctx, line)
		if err != nil {
			report(out, gate, err)
			return
		}
		team := len(view.TeamMembers) + 1
		fmt.Fprintf(out, "[%s] %s  %s  leader=%s team=%d status=%s date=%s\n",
			gate.State(), view.RegistrationID, view.Event.Title, view.Leader.Name, team, view.Status, view.FinalEventDate)
		fmt.Fprintln(out, "  :allow or :deny <reason>")
	}
}

func rearm(gate *scanner.Gate, out io.Writer) {
	if err := gate.Start(); err != nil {
		report(out, gate, err)
		return
	}
	fmt.Fprintf(out, "[%s] ready\n", gate.State())
}

func report(out io.Writer, gate *scanner.Gate, err error) {
	switch {
	case errors.Is(err, scanner.ErrDebounced):
		return
	case errors.Is(err, scanner.ErrBusy):
		fmt.Fprintf(out, "[%s] still verifying the previous scan\n", gate.State())
	case errors.Is(err, scanner.ErrInvalidTransition):
		fmt.Fprintf(out, "[%s] not allowed now\n", gate.State())
	case scanner.IsMalformed(err):
		fmt.Fprintf(out, "[%s] could not read the code, :dismiss and rescan\n", gate.State())
	case scanner.IsNotFound(err):
		fmt.Fprintf(out, "[%s] not a valid credential for this event, :dismiss to continue\n", gate.State())
	default:
		fmt.Fprintf(out, "[%s] %s\n", gate.State(), appErrors.FromError(err).Message)
	}
}
