// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Server status and model listing for voxa.
//
// Command: status
// Aliases: s
//
//   Ollama     Running status and version
//   URL        Server base URL
//   Model      Configured model and whether it is installed
//   Config     Config file location
//
// Command: models
// Aliases: list, ls
//
// Lists the installed models; the configured one is marked with *.
package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/maanis/voxa/internal/ollama"
)

// statusTimeout bounds each server call of the status and models commands.
const statusTimeout = 5 * time.Second

// =============================================================================
// STATUS
// =============================================================================

// HandleStatus handles the "status" command. An unreachable server is
// reported and returned as the error.
func HandleStatus(ctx context.Context, rt *Runtime) error {
	fmt.Fprintln(rt.Stdout, TitleStyle.Render("Voxa Status"))
	fmt.Fprintln(rt.Stdout, RenderSeparator(32))

	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	fmt.Fprintf(rt.Stdout, "%s %s\n", RenderLabel("URL:"), ValueStyle.Render(rt.Client.BaseURL()))

	version, err := rt.Client.CheckRunning(ctx)
	if err != nil {
		fmt.Fprintf(rt.Stdout, "%s %s %s\n", RenderLabel("Ollama:"), RenderStatus("fail"), ValueStyle.Render("not reachable"))
		fmt.Fprintf(rt.Stdout, "%s %s\n", RenderLabel("Model:"), ValueStyle.Render(rt.Config.Ollama.Model))
		return err
	}
	running := "running"
	if version != "" {
		running += " (v" + version + ")"
	}
	fmt.Fprintf(rt.Stdout, "%s %s %s\n", RenderLabel("Ollama:"), RenderStatus("ok"), ValueStyle.Render(running))

	name := rt.Config.Ollama.Model
	models, err := rt.Client.ListModels(ctx)
	switch {
	case err != nil:
		fmt.Fprintf(rt.Stdout, "%s %s %s\n", RenderLabel("Model:"), RenderStatus("warn"), ValueStyle.Render(name+" (could not list models)"))
	case findModel(models, name) != nil:
		fmt.Fprintf(rt.Stdout, "%s %s %s\n", RenderLabel("Model:"), RenderStatus("ok"), ValueStyle.Render(name))
	default:
		fmt.Fprintf(rt.Stdout, "%s %s %s\n", RenderLabel("Model:"), RenderStatus("warn"), ValueStyle.Render(name+" (not downloaded)"))
		fmt.Fprintf(rt.Stdout, "%s ollama pull %s\n", DimStyle.Render("Hint:"), name)
	}

	fmt.Fprintf(rt.Stdout, "%s %s\n", RenderLabel("Config:"), DimStyle.Render(rt.ConfigPath))
	return nil
}

// =============================================================================
// MODELS
// =============================================================================

// HandleModels handles the "models" command.
func HandleModels(ctx context.Context, rt *Runtime) error {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	models, err := rt.Client.ListModels(ctx)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		fmt.Fprintln(rt.Stdout, "No models installed.")
		fmt.Fprintf(rt.Stdout, "%s ollama pull %s\n", DimStyle.Render("Hint:"), rt.Config.Ollama.Model)
		return nil
	}

	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	current := findModel(models, rt.Config.Ollama.Model)

	tw := tabwriter.NewWriter(rt.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tSIZE\tPARAMS\tMODIFIED")
	for i := range models {
		m := &models[i]
		mark := " "
		if current != nil && m.Name == current.Name {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s %s\t%s\t%s\t%s\n", mark, m.Name, m.FormatSize(), dash(m.Details.ParameterSize), formatModified(m.ModifiedAt))
	}
	return tw.Flush()
}

// findModel matches name exactly, or with the implicit ":latest" tag.
func findModel(models []ollama.ModelInfo, name string) *ollama.ModelInfo {
	for i := range models {
		if models[i].Name == name {
			return &models[i]
		}
	}
	if !strings.Contains(name, ":") {
		for i := range models {
			if models[i].Name == name+":latest" {
				return &models[i]
			}
		}
	}
	return nil
}

func formatModified(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
