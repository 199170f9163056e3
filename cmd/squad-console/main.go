// Package main provides the squad-console CLI application.
//
// squad-console is a terminal client for the squad management REST API.
// It keeps a persistent sign-in session, guards admin-only screens and
// offers list, edit and interactive browse commands for players, teams,
// members and comments.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// version is set during build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()

	if err != nil && !errors.Is(err, flag.ErrHelp) {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// globalOptions are the flags accepted before the command name.
type globalOptions struct {
	configPath string
	ephemeral  bool
	format     string
	version    bool
}

// parseGlobal parses the global flags and returns the remaining arguments.
func parseGlobal(args []string, stderr io.Writer) (globalOptions, []string, error) {
	var opts globalOptions

	fs := flag.NewFlagSet("squad-console", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "path to configuration file")
	fs.BoolVar(&opts.ephemeral, "ephemeral", false, "keep the session in memory only")
	fs.StringVar(&opts.format, "format", "", "output format (table, json, simple)")
	fs.BoolVar(&opts.version, "version", false, "show version information")
	fs.Usage = func() { _ = writeUsage(stderr) } // nolint:errcheck

	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}

	return opts, fs.Args(), nil
}

// run executes the main application logic.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, rest, err := parseGlobal(args, stderr)
	if err != nil {
		return err
	}

	if opts.version {
		_, err := fmt.Fprintf(stdout, "squad-console %s\n", version)
		return err
	}

	if len(rest) == 0 {
		return writeUsage(stdout)
	}

	command, cmdArgs := rest[0], rest[1:]

	switch command {
	case "help":
		return writeUsage(stdout)
	case "config":
		cmd := &configCommand{configPath: opts.configPath, in: stdin, out: stdout}
		return cmd.Execute(cmdArgs)
	}

	handler, ok := commands[command]
	if !ok {
		return fmt.Errorf("unknown command: %s", command)
	}

	a, err := newApp(ctx, appOptions{
		configPath: opts.configPath,
		ephemeral:  opts.ephemeral,
		format:     opts.format,
		in:         stdin,
		out:        stdout,
		errOut:     stderr,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	return handler(ctx, a, cmdArgs)
}

// writeUsage displays usage information.
func writeUsage(w io.Writer) error {
	usage := `squad-console - terminal client for the squad management API

Usage:
  squad-console [flags] <command> [command flags]

Session Commands:
  login       Sign in (-u username)
  register    Create an account and sign in
  logout      Sign out and forget the stored token
  status      Show who is signed in and when the token expires
  profile     Show or edit your profile (-name, -yob)
  password    Change your password

Data Commands:
  players     list | browse | show | add | edit | delete
  teams       list | browse | show | add | edit | delete
  members     list | browse | show | edit | delete   (administrators)
  comments    <player-id> list | browse | add | edit | delete

Other Commands:
  config      Configuration management (show, path, init)
  help        Show this help message

Global Flags:
  -config     Path to configuration file
  -ephemeral  Keep the session in memory only
  -format     Output format (table, json, simple)
  -version    Show version information

List Flags:
  -search     Search term
  -team       Team id filter (players)
  -page       Page number
  -limit      Page size
  -top        Also show the top N listed items (players by cost, teams by
              players, comments by rating; list only)

Examples:
  # Sign in, then list captains of a team
  squad-console login -u alice
  squad-console players list -team 65f1c0 -search son

  # Add a player (administrators)
  squad-console players add -name "Son Heung-min" -team 65f1c0 -cost 15000000 -captain

  # Rate a player
  squad-console comments 66a2b1 add -rating 3 -content "Great first touch"

  # Search interactively
  squad-console players browse
`
	_, err := fmt.Fprint(w, usage)
	return err
}
