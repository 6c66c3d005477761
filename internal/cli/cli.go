// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command-line parsing and the help and version commands.
package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/maanis/voxa/internal/render"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdModels
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
)

// String returns the command name as typed.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdAsk:
		return "ask"
	case CmdChat:
		return "chat"
	case CmdModels:
		return "models"
	case CmdStatus:
		return "status"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Model   string
	URL     string
	Debug   bool
	NoColor bool

	// ask
	Query string
	Raw   bool

	// config
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Remaining positionals after the command name
	Rest []string
}

const usageText = `voxa - chat with a local model through Ollama

Usage:
  voxa                          Start the chat UI (default)
  voxa ask [--raw] <question>   Ask a single question (reads stdin when piped)
  voxa chat                     Line-mode chat with history
  voxa models                   List installed models
  voxa status                   Check the Ollama server
  voxa config [show|get|set|path]
  voxa help | version

Global flags:
  -m, --model NAME   Model to use (default from config)
      --url URL      Ollama server URL
      --debug        Log debug output to the log file
      --no-color     Disable colors

Version: %s
`

// helpDoc is the long help, rendered as markdown on a terminal.
const helpDoc = `# voxa

Chat with a model running on your local [Ollama](https://ollama.com) server.
Replies stream in as they are generated. Headings, **bold**, *italic* and fenced
code blocks are formatted as soon as each piece is complete.

## Commands

| Command | Description |
|---|---|
| ` + "`voxa`" + ` | Start the chat UI |
| ` + "`voxa ask [--raw] <question>`" + ` | Ask one question and print the reply |
| ` + "`voxa chat`" + ` | Line-mode chat with input history |
| ` + "`voxa models`" + ` | List installed models |
| ` + "`voxa status`" + ` | Check the server and the configured model |
| ` + "`voxa config show`" + ` | Print the configuration |
| ` + "`voxa config get KEY`" + ` | Print one value, e.g. ` + "`ollama.model`" + ` |
| ` + "`voxa config set KEY VALUE`" + ` | Change and save one value |
| ` + "`voxa config path`" + ` | Print the config file location |

## Global flags

| Flag | Description |
|---|---|
| ` + "`-m, --model NAME`" + ` | Model to use |
| ` + "`--url URL`" + ` | Ollama server URL |
| ` + "`--debug`" + ` | Write debug lines to the log file |
| ` + "`--no-color`" + ` | Disable colors (also ` + "`NO_COLOR=1`" + `) |

## Examples

` + "```sh" + `
voxa ask "explain goroutines in two sentences"
git diff | voxa ask --raw "write a commit message for this diff"
voxa --model llama3.2 chat
voxa config set ui.theme light
` + "```" + `

## Environment

` + "`VOXA_HOME`" + `, ` + "`VOXA_OLLAMA_URL`" + `, ` + "`VOXA_MODEL`" + `, ` + "`VOXA_THEME`" + `, ` + "`VOXA_DEBUG`" + ` and
` + "`OLLAMA_HOST`" + ` override the config file. A ` + "`.env`" + ` file in the working directory is read first.
`

// PrintUsage writes the short usage text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "voxa version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:         %s\n", runtime.Version())
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses command-line arguments, without the program name, and
// returns the command and its args. With no command the chat UI runs.
func Parse(argv []string) (Command, Args, error) {
	remaining, args, err := parseGlobalFlags(argv)
	if err != nil {
		return CmdHelp, args, err
	}

	if len(remaining) == 0 {
		return CmdTUI, args, nil
	}

	name := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Rest = remaining

	switch name {
	case "tui":
		return CmdTUI, args, nil

	case "ask", "a":
		parseAskArgs(&args, remaining)
		return CmdAsk, args, nil

	case "chat", "c":
		return CmdChat, args, nil

	case "models", "list", "ls":
		return CmdModels, args, nil

	case "status", "s":
		return CmdStatus, args, nil

	case "config", "cfg":
		if err := parseConfigArgs(&args, remaining); err != nil {
			return CmdConfig, args, err
		}
		return CmdConfig, args, nil

	case "version", "-v", "--version":
		return CmdVersion, args, nil

	case "help", "-h", "--help":
		return CmdHelp, args, nil

	default:
		if strings.HasPrefix(name, "-") {
			return CmdHelp, args, NewUsageError("unknown flag: " + name)
		}
		return CmdHelp, args, NewUsageError("unknown command: " + name)
	}
}

// parseGlobalFlags pulls the global flags out of argv wherever they appear
// before "--" and returns the rest in order.
func parseGlobalFlags(argv []string) ([]string, Args, error) {
	var args Args
	remaining := make([]string, 0, len(argv))

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		if arg == "--" {
			remaining = append(remaining, argv[i:]...)
			break
		}

		name, value, hasValue := strings.Cut(arg, "=")
		switch name {
		case "--model", "-m", "--url":
			if !hasValue {
				if i+1 >= len(argv) {
					return nil, args, NewUsageError(name + " requires a value")
				}
				i++
				value = argv[i]
			}
			if name == "--url" {
				args.URL = value
			} else {
				args.Model = value
			}
		case "--debug":
			args.Debug = true
		case "--no-color", "--no-colour":
			args.NoColor = true
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, args, nil
}

// parseAskArgs parses "ask [--raw] <question...>".
func parseAskArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining, "raw")
	args.Raw = p.BoolFlag("raw")
	args.Query = JoinPositionalArgs(p, 0)
}

// parseConfigArgs parses "config [show|get KEY|set KEY VALUE|reset|path|keys]".
func parseConfigArgs(args *Args, remaining []string) error {
	p := NewArgParser(remaining)
	args.Subcommand = strings.ToLower(p.Subcommand())
	if args.Subcommand == "" {
		args.Subcommand = "show"
	}

	switch args.Subcommand {
	case "show", "path", "keys", "reset":
	case "get":
		args.ConfigKey = p.Positional(1)
		if args.ConfigKey == "" {
			return ErrMissingArgument("KEY", "voxa config get KEY")
		}
	case "set":
		args.ConfigKey = p.Positional(1)
		args.ConfigVal = JoinPositionalArgs(p, 2)
		if args.ConfigKey == "" || p.PositionalCount() < 3 {
			return ErrMissingArgument("KEY VALUE", "voxa config set KEY VALUE")
		}
	default:
		return NewUsageError("unknown config subcommand: " + args.Subcommand)
	}
	return nil
}

// =============================================================================
// HELP AND VERSION
// =============================================================================

// HandleVersion handles the "version" command.
func HandleVersion(rt *Runtime) {
	PrintVersion(rt.Stdout)
}

// HandleHelp handles the "help" command. On a color terminal the long help
// is rendered as markdown; otherwise its source is printed.
func HandleHelp(rt *Runtime) {
	if !rt.StdoutTTY || !rt.Color {
		fmt.Fprint(rt.Stdout, helpDoc)
		return
	}
	style := render.MarkdownDark
	if !rt.Theme.IsDark {
		style = render.MarkdownLight
	}
	fmt.Fprintln(rt.Stdout, render.Markdown(helpDoc, rt.Width, style))
}
