// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// This file contains the coaching chat runner: the interactive loop that
// wires user input, the chat service, the conversation store, and the
// content extractor together.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/resumatch/resumatch-cli/pkg/conversation"
	"github.com/resumatch/resumatch-cli/pkg/datatypes"
	"github.com/resumatch/resumatch-cli/pkg/extract"
)

// proactiveGreetingPrompt is the hidden prompt that opens a coaching
// session when an analysis result is available.
func proactiveGreetingPrompt(role, topGap string) string {
	return fmt.Sprintf(
		`Analysis complete. The user's role is %q. Top skill gap: %q. Greet them warmly, offer help. Be concise.`,
		role, topGap)
}

// =============================================================================
// Configuration
// =============================================================================

// CoachChatRunnerConfig holds configuration for creating a coach runner.
//
// # Fields
//
//   - Service: Required. The chat service to send turns through.
//   - Store: Required. The conversation store backing the session.
//   - Result: Optional. The most recent analysis result; enables the
//     proactive greeting, suggested prompts, and agent context.
//   - Input: Optional. Input source. Default: interactive stdin reader.
//   - Output: Optional. Destination for rendering. Default: os.Stdout.
//   - Personality: Optional. Default: process personality.
//   - Logger: Optional. Default: slog.Default().
type CoachChatRunnerConfig struct {
	Service     ChatService
	Store       *conversation.Store
	Result      *datatypes.AnalysisResult
	Input       InputReader
	Output      io.Writer
	Personality PersonalityLevel
	Logger      *slog.Logger
}

// =============================================================================
// Implementation
// =============================================================================

// coachChatRunner implements ChatRunner for the coaching session.
type coachChatRunner struct {
	service     ChatService
	store       *conversation.Store
	result      *datatypes.AnalysisResult
	input       InputReader
	out         io.Writer
	extractor   *extract.Extractor
	personality PersonalityLevel
	logger      *slog.Logger
}

// NewCoachChatRunner creates the interactive coaching runner.
func NewCoachChatRunner(cfg CoachChatRunnerConfig) ChatRunner {
	if cfg.Input == nil {
		cfg.Input = NewInteractiveInputReader(50)
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.Personality == "" {
		cfg.Personality = GetPersonality()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &coachChatRunner{
		service:     cfg.Service,
		store:       cfg.Store,
		result:      cfg.Result,
		input:       cfg.Input,
		out:         cfg.Output,
		extractor:   extract.New(cfg.Logger),
		personality: cfg.Personality,
		logger:      cfg.Logger,
	}
}

// Run implements ChatRunner.
func (r *coachChatRunner) Run(ctx context.Context) error {
	r.printBanner()
	r.maybeGreet(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.readLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if line == "" {
			continue
		}
		if isExitCommand(line) {
			return nil
		}
		if strings.HasPrefix(line, "/") {
			r.handleCommand(line)
			continue
		}

		r.sendAndRender(ctx, line)
	}
}

// Close implements ChatRunner.
func (r *coachChatRunner) Close() error {
	return r.service.Close()
}

// readLine displays the prompt and reads one line.
func (r *coachChatRunner) readLine() (string, error) {
	prompt := "> "
	if p, ok := r.input.(PromptingInputReader); ok {
		p.SetPrompt(prompt)
	} else if r.personality != PersonalityMachine {
		fmt.Fprint(r.out, prompt)
	}
	return r.input.ReadLine()
}

// printBanner prints the session header and suggested prompts.
func (r *coachChatRunner) printBanner() {
	if r.personality == PersonalityMachine || r.personality == PersonalityMinimal {
		return
	}

	if r.personality == PersonalityFull {
		fmt.Fprintln(r.out, "ResuMatch Coach")
		fmt.Fprintln(r.out, "Type a question, or: /new /list /switch N /delete N /history, exit to quit")
	}

	if r.result != nil {
		if gap := r.result.TopGap(); gap != "" {
			fmt.Fprintf(r.out, "Suggested: \"How do I close my %s gap?\"  \"Quiz me on %s\"\n", gap, gap)
		}
	}
}

// maybeGreet sends the hidden proactive greeting when this session has an
// analysis result and the active conversation is still empty.
func (r *coachChatRunner) maybeGreet(ctx context.Context) {
	if r.result == nil {
		return
	}
	active := r.store.Active()
	if len(active.Messages) > 0 {
		return
	}

	prompt := proactiveGreetingPrompt(r.result.RoleDetected, r.result.TopGap())
	r.sendMessage(ctx, prompt, SendOptions{
		Proactive: true,
		Context:   r.result.ContextObject(),
		OnChunk:   r.chunkEcho(),
	})
	fmt.Fprintln(r.out)
}

// sendAndRender sends one visible user turn and renders the reply.
func (r *coachChatRunner) sendAndRender(ctx context.Context, text string) {
	var opts SendOptions
	if r.result != nil {
		opts.Context = r.result.ContextObject()
	}
	opts.OnChunk = r.chunkEcho()

	before := len(r.store.Active().Messages)
	r.sendMessage(ctx, text, opts)
	fmt.Fprintln(r.out)

	// The reply streamed as raw text; re-examine it for an embedded card
	active := r.store.Active()
	if len(active.Messages) <= before {
		return
	}
	last := active.Messages[len(active.Messages)-1]
	if last.Role != conversation.RoleAssistant {
		return
	}
	result := r.extractor.Extract(last.Content)
	renderExtracted(r.out, result)
}

// sendMessage routes one turn through the service against the active
// conversation.
func (r *coachChatRunner) sendMessage(ctx context.Context, text string, opts SendOptions) {
	if err := r.service.SendMessage(ctx, text, r.store.ActiveID(), opts); err != nil {
		r.logger.Warn("chat send failed", "error", err)
		if r.personality != PersonalityMachine {
			fmt.Fprintf(r.out, "\n%s\n", apologyMessage)
		}
	}
}

// chunkEcho returns the live token echo callback, or nil for machine
// output where partial lines would corrupt parsing.
func (r *coachChatRunner) chunkEcho() func(string) {
	if r.personality == PersonalityMachine {
		return nil
	}
	return func(chunk string) {
		fmt.Fprint(r.out, chunk)
	}
}

// =============================================================================
// Session Commands
// =============================================================================

// handleCommand dispatches /new, /list, /switch, /delete, /history.
func (r *coachChatRunner) handleCommand(line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/new":
		r.store.Create()
		fmt.Fprintln(r.out, "Started a new conversation.")

	case "/list":
		r.printList()

	case "/switch":
		if conv, ok := r.conversationArg(fields); ok {
			r.store.Select(conv.ID)
			fmt.Fprintf(r.out, "Switched to %q.\n", conv.Title)
		}

	case "/delete":
		if conv, ok := r.conversationArg(fields); ok {
			r.store.Delete(conv.ID)
			fmt.Fprintf(r.out, "Deleted %q.\n", conv.Title)
		}

	case "/history":
		r.printHistory()

	default:
		fmt.Fprintf(r.out, "Unknown command %s. Available: /new /list /switch N /delete N /history\n", fields[0])
	}
}

// conversationArg resolves a 1-based list index argument.
func (r *coachChatRunner) conversationArg(fields []string) (conversation.Conversation, bool) {
	if len(fields) < 2 {
		fmt.Fprintf(r.out, "Usage: %s N (see /list)\n", fields[0])
		return conversation.Conversation{}, false
	}
	n, err := strconv.Atoi(fields[1])
	list := r.store.List()
	if err != nil || n < 1 || n > len(list) {
		fmt.Fprintf(r.out, "No conversation %s. Use /list.\n", fields[1])
		return conversation.Conversation{}, false
	}
	return list[n-1], true
}

// printList shows all conversations, most recent first.
func (r *coachChatRunner) printList() {
	activeID := r.store.ActiveID()
	for i, conv := range r.store.List() {
		marker := " "
		if conv.ID == activeID {
			marker = "*"
		}
		fmt.Fprintf(r.out, "%s %2d. %-33s %s\n", marker, i+1, conv.Title, relativeTime(conv.UpdatedAt))
	}
}

// printHistory renders the active conversation's visible messages,
// running the extractor over assistant text.
func (r *coachChatRunner) printHistory() {
	active := r.store.Active()
	for _, msg := range active.VisibleMessages() {
		switch msg.Role {
		case conversation.RoleUser:
			fmt.Fprintf(r.out, "> %s\n", msg.Content)
		case conversation.RoleAssistant:
			result := r.extractor.Extract(msg.Content)
			if result.CleanText != "" {
				fmt.Fprintf(r.out, "%s\n", result.CleanText)
			}
			renderExtracted(r.out, result)
		}
	}
}

// =============================================================================
// Compile-time Interface Check
// =============================================================================

var _ ChatRunner = (*coachChatRunner)(nil)
