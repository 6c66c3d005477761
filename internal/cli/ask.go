// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler for the voxa CLI.
//
// Command: ask [question]
// Aliases: a
//
// Examples:
//   voxa ask "What is the capital of France?"
//   voxa ask --model llama3.2 "Explain this error"
//   git diff | voxa ask --raw "Write a commit message for this diff"
//
// Flags:
//   --raw               Print the reply text unformatted
//   -m, --model NAME    Use specific model (overrides config)
//
// On a terminal each segment of the reply is printed, formatted, as soon as
// it can no longer change. Piped output and --raw get the text as it
// arrives.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/maanis/voxa/internal/model"
	"github.com/maanis/voxa/internal/render"
	"github.com/maanis/voxa/internal/session"
	"github.com/maanis/voxa/internal/ui/components"
)

// MaxStdinSize caps how much piped input is read into a question.
const MaxStdinSize = 1 << 20

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAskCommand handles the "ask" command.
func HandleAskCommand(ctx context.Context, rt *Runtime, args Args) error {
	question, err := readQuestion(rt, args.Query)
	if err != nil {
		return err
	}
	if question == "" {
		return ErrMissingArgument("question", `voxa ask "your question"`)
	}

	ctrl := rt.NewController()
	defer ctrl.Close()

	_, err = streamReply(ctx, rt, ctrl, question, args.Raw)
	return err
}

// readQuestion joins the question arguments with piped stdin, if any.
func readQuestion(rt *Runtime, query string) (string, error) {
	query = strings.TrimSpace(query)
	if rt.StdinTTY || rt.Stdin == nil {
		return query, nil
	}

	data, err := io.ReadAll(io.LimitReader(rt.Stdin, MaxStdinSize))
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	piped := strings.TrimSpace(string(data))

	switch {
	case piped == "":
		return query, nil
	case query == "":
		return piped, nil
	default:
		return query + "\n\n" + piped, nil
	}
}

// =============================================================================
// STREAMING OUTPUT
// =============================================================================

// streamReply sends text through ctrl and prints the reply as it streams.
// It returns the final assistant message.
func streamReply(ctx context.Context, rt *Runtime, ctrl *session.Controller, text string, raw bool) (model.Message, error) {
	p := newReplyPrinter(rt, raw)

	var writeErr error
	err := ctrl.Send(ctx, text, func(msg model.Message) {
		if msg.Failed || writeErr != nil {
			return
		}
		writeErr = p.update(msg.Content)
	})

	final, _ := ctrl.Conversation().LastAssistant()

	switch {
	case err == nil:
		if ferr := p.finish(final.Content); ferr != nil {
			return final, ferr
		}
		if writeErr != nil {
			return final, writeErr
		}
		if rt.Config.UI.ShowStats && rt.StdoutTTY && final.HasStats() {
			fmt.Fprintln(rt.Stderr, DimStyle.Render(components.FormatMessageStats(final)))
		}
		return final, nil

	case errors.Is(err, context.Canceled):
		p.finish(final.Content)
		fmt.Fprintln(rt.Stderr, WarningStyle.Render("[stopped]"))
		return final, err

	case errors.Is(err, session.ErrEmptyInput), errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrClosed):
		return final, err

	default:
		p.finish(p.latest)
		fmt.Fprintln(rt.Stderr, ErrorStyle.Render(session.FallbackMessage))
		return final, err
	}
}

// replyPrinter writes one streaming reply, either as stable rendered
// segments or as raw text deltas.
type replyPrinter struct {
	out    io.Writer
	stable *render.StableWriter

	latest  string
	written int
}

func newReplyPrinter(rt *Runtime, raw bool) *replyPrinter {
	p := &replyPrinter{out: rt.Stdout}
	if !raw && rt.StdoutTTY {
		p.stable = render.NewStableWriter(rt.Stdout, rt.Renderer(), rt.Config.UI.MaxFPS)
	}
	return p
}

// update takes the full reply text so far.
func (p *replyPrinter) update(total string) error {
	p.latest = total
	if p.stable != nil {
		return p.stable.Update(total)
	}
	return p.writeRaw(total)
}

// finish prints the rest of total and ends the line.
func (p *replyPrinter) finish(total string) error {
	p.latest = total
	if p.stable != nil {
		if err := p.stable.Finish(total); err != nil {
			return err
		}
		if p.stable.Printed() > 0 && !p.stable.AtLineStart() {
			_, err := io.WriteString(p.out, "\n")
			return err
		}
		return nil
	}

	if err := p.writeRaw(total); err != nil {
		return err
	}
	if p.written > 0 && !strings.HasSuffix(total, "\n") {
		_, err := io.WriteString(p.out, "\n")
		return err
	}
	return nil
}

// writeRaw writes the part of total not written yet. Replies only grow, so
// the written prefix never changes.
func (p *replyPrinter) writeRaw(total string) error {
	if len(total) <= p.written {
		return nil
	}
	n, err := io.WriteString(p.out, total[p.written:])
	p.written += n
	return err
}
