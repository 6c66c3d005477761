// voxa - chat with a local model through Ollama, in the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maanis/voxa/internal/cli"
	"github.com/maanis/voxa/internal/config"
	"github.com/maanis/voxa/internal/session"
	"github.com/maanis/voxa/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run())
}

func run() int {
	cmd, args, err := cli.Parse(os.Args[1:])
	if err != nil {
		cli.DisplayError(os.Stderr, err)
		return cli.GetExitCode(err)
	}

	cfg, err := config.Load()
	if err != nil {
		cli.DisplayError(os.Stderr, err)
		return cli.ExitConfigError
	}
	cli.ApplyFlags(cfg, args)
	config.SetGlobal(cfg)

	closeLog := setupLogging(cfg)
	defer closeLog()

	if cmd == cli.CmdTUI {
		if err := runTUI(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error running voxa: %v\n", err)
			return cli.ExitGeneralError
		}
		return cli.ExitSuccess
	}

	rt := cli.NewRuntime(cfg, args)
	ctx := context.Background()

	switch cmd {
	case cli.CmdAsk:
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		err = cli.HandleAskCommand(ctx, rt, args)
	case cli.CmdChat:
		// chat handles Ctrl+C itself, per reply
		err = cli.HandleChatCommand(ctx, rt, args)
	case cli.CmdModels:
		err = cli.HandleModels(ctx, rt)
	case cli.CmdStatus:
		err = cli.HandleStatus(ctx, rt)
	case cli.CmdConfig:
		err = cli.HandleConfig(rt, args)
	case cli.CmdVersion:
		cli.HandleVersion(rt)
	default:
		cli.HandleHelp(rt)
	}

	cli.DisplayError(rt.Stderr, err)
	return cli.GetExitCode(err)
}

// setupLogging sends log output to the log file in debug mode and discards
// it otherwise, so nothing is drawn over the chat UI or mixed into replies.
func setupLogging(cfg *config.Config) func() {
	if !cfg.App.Debug {
		log.SetOutput(io.Discard)
		return func() {}
	}

	path, err := cfg.LogFilePath()
	if err == nil {
		err = os.MkdirAll(filepath.Dir(path), 0700)
	}
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}

	f, err := tea.LogToFile(path, "voxa")
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	log.Printf("voxa %s starting, model %s at %s", Version, cfg.Ollama.Model, cfg.Ollama.URL)
	return func() { f.Close() }
}

// runTUI runs the full-screen chat until the user quits.
func runTUI(cfg *config.Config) error {
	client := cli.NewClient(cfg)
	ctrl := session.NewController(client, session.Config{
		Model:          cfg.Ollama.Model,
		RequestTimeout: cfg.Ollama.RequestTimeout(),
		Debug:          cfg.App.Debug,
	})

	path, _ := config.ConfigPath()
	m := chat.New(chat.Options{
		Controller: ctrl,
		Probe:      client,
		Config:     cfg,
		ConfigPath: path,
	})

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse support
	)

	_, err := p.Run()
	ctrl.Close()
	return err
}
