package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/0xmhha/squad-console/pkg/config"
)

// configCommand handles configuration management subcommands.
type configCommand struct {
	configPath string
	in         io.Reader
	out        io.Writer
}

// Execute runs the config command with given arguments.
func (c *configCommand) Execute(args []string) error {
	if len(args) == 0 {
		return c.showHelp()
	}

	subcommand := args[0]
	subargs := args[1:]

	switch subcommand {
	case "show":
		return c.runShow(subargs)
	case "path":
		return c.runPath()
	case "init":
		return c.runInit(subargs)
	case "help":
		return c.showHelp()
	default:
		return fmt.Errorf("unknown config subcommand: %s", subcommand)
	}
}

// runShow displays the effective configuration.
func (c *configCommand) runShow(args []string) error {
	fs := flag.NewFlagSet("config show", flag.ContinueOnError)
	format := fs.String("format", "yaml", "output format (yaml, json)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	loader := config.NewLoader(c.configPath)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch *format {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = fmt.Fprintln(c.out, string(data))
		return err
	default:
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = fmt.Fprintf(c.out, "# Current Configuration\n# Source: %s\n\n%s", c.source(loader), data)
		return err
	}
}

// runPath shows the configuration file path.
func (c *configCommand) runPath() error {
	loader := config.NewLoader(c.configPath)
	_, err := fmt.Fprintf(c.out, "%s\n", c.source(loader))
	return err
}

// runInit writes the default configuration.
func (c *configCommand) runInit(args []string) error {
	fs := flag.NewFlagSet("config init", flag.ContinueOnError)
	force := fs.Bool("force", false, "overwrite an existing file without asking")
	output := fs.String("output", "", "output path (default: "+config.DefaultPath()+")")

	if err := fs.Parse(args); err != nil {
		return err
	}

	outputPath := *output
	if outputPath == "" {
		outputPath = c.configPath
	}
	if outputPath == "" {
		outputPath = config.DefaultPath()
	}

	if _, err := os.Stat(outputPath); err == nil && !*force {
		fmt.Fprintf(c.out, "Configuration file already exists at: %s\n", outputPath)
		fmt.Fprint(c.out, "Overwrite? [y/N]: ")

		response, _ := bufio.NewReader(c.in).ReadString('\n') // nolint:errcheck
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			_, err := fmt.Fprintln(c.out, "Init cancelled.")
			return err
		}
	}

	if err := config.Save(config.Default(), outputPath); err != nil {
		return err
	}

	_, err := fmt.Fprintf(c.out, "Default configuration written to: %s\n", outputPath)
	return err
}

// source names the file Load reads, or says defaults are in use.
func (c *configCommand) source(loader config.Loader) string {
	path := loader.Path()
	if _, err := os.Stat(path); err != nil {
		return "defaults (no config file at " + path + ")"
	}
	return path
}

// showHelp displays help for config command.
func (c *configCommand) showHelp() error {
	help := `Config - Configuration management

Usage:
  squad-console config <subcommand> [flags]

Subcommands:
  show      Display the effective configuration
  path      Show the configuration file in use
  init      Write the default configuration

Show Flags:
  -format   Output format (yaml, json) (default: yaml)

Init Flags:
  -force    Overwrite without confirmation
  -output   Output path for config file

Environment:
  SQUAD_CONFIG      Configuration file
  SQUAD_API_URL     API base URL
  SQUAD_DB          Session database file
  SQUAD_LOG_LEVEL   Log level
  SQUAD_DEBOUNCE    Search debounce interval (e.g. 300ms)
`
	_, err := fmt.Fprint(c.out, help)
	return err
}
