// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// runChatCommand starts the interactive coaching session.
//
// Loads durable conversation state, replays the remembered analysis into
// the reset policy (a changed analysis starts a fresh conversation), and
// runs the chat loop until exit or signal.
func runChatCommand(cmd *cobra.Command, args []string) error {
	logger := appLogger.Slog()

	kv, err := openStateKV(dataDir, logger)
	if err != nil {
		return err
	}
	defer kv.Close()

	store := conversationStore(kv, logger)
	result := loadLastAnalysis(kv, logger)

	if result != nil {
		policy := newSeededResetPolicy(store, kv, logger)
		if policy.OnNewSummary(result.Summary()) {
			fmt.Fprintln(os.Stderr, "Analysis changed since last session; starting a fresh conversation.")
		}
		if err := saveLastAnalysis(kv, result); err != nil {
			logger.Warn("failed to persist analysis baseline", "error", err)
		}
	}

	service := NewCoachChatService(CoachChatServiceConfig{
		BaseURL: baseURL,
		Logger:  logger,
	}, store)

	runner := NewCoachChatRunner(CoachChatRunnerConfig{
		Service: service,
		Store:   store,
		Result:  result,
		Logger:  logger,
	})
	defer runner.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("chat session: %w", err)
	}
	return nil
}
