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

// runAnalyzeCommand runs one streaming resume analysis and prints the
// report. The result is remembered locally so a later chat session can
// coach against it.
func runAnalyzeCommand(cmd *cobra.Command, args []string) error {
	logger := appLogger.Slog()
	resumePath := args[0]

	personality := GetPersonality()
	service := NewAnalysisService(AnalysisServiceConfig{
		BaseURL: baseURL,
		OnStage: func(ordinal int, label string) {
			if personality != PersonalityMachine {
				fmt.Printf("[%d/3] %s\n", ordinal, label)
			}
		},
		OnMessage: func(message string) {
			if personality == PersonalityFull {
				fmt.Printf("      %s\n", message)
			}
		},
		Logger: logger,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	result, err := service.Run(ctx, AnalysisRequest{
		ResumePath:     resumePath,
		JobDescription: jobDescription,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("analyze: %w", err)
	}

	renderAnalysisResult(os.Stdout, result)

	kv, err := openStateKV(dataDir, logger)
	if err != nil {
		logger.Warn("analysis not remembered", "error", err)
		return nil
	}
	defer kv.Close()

	store := conversationStore(kv, logger)
	policy := newSeededResetPolicy(store, kv, logger)
	if policy.OnNewSummary(result.Summary()) && personality != PersonalityMachine {
		fmt.Println("\nAnalysis changed; your next chat starts a fresh conversation.")
	}
	if err := saveLastAnalysis(kv, result); err != nil {
		logger.Warn("analysis not remembered", "error", err)
	}

	if personality != PersonalityMachine {
		fmt.Println("\nRun `resumatch chat` to talk through the results.")
	}
	return nil
}
