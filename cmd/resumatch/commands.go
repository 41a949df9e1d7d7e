// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// This file wires the cobra command tree and the process-wide flags.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/resumatch/resumatch-cli/pkg/logging"
)

// Process-wide flag values.
var (
	baseURL         string
	dataDir         string
	jobDescription  string
	jobFile         string
	personalityFlag string
	logLevelFlag    string
	logDirFlag      string
)

// appLogger is the process logger, built in the root PersistentPreRun.
var appLogger = logging.Default()

// newRootCommand builds the command tree.
func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "resumatch",
		Short: "Resume analysis and career coaching from the terminal",
		Long: `resumatch analyzes a resume against a target job description using the
ResuMatch backend, streams the analysis progress live, and runs an
interactive coaching chat over the results.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			InitPersonality(personalityFlag)
			appLogger = logging.New(logging.Config{
				Level:   logging.ParseLevel(logLevelFlag),
				LogDir:  logDirFlag,
				Service: "cli",
			})
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = appLogger.Close()
		},
	}

	root.PersistentFlags().StringVar(&baseURL, "base-url",
		envOr("RESUMATCH_URL", "http://localhost:8000"),
		"Base URL of the ResuMatch backend")
	root.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(),
		"Directory for local state (conversations, last analysis)")
	root.PersistentFlags().StringVar(&personalityFlag, "personality", "",
		"Output style: full, standard, minimal, machine")
	root.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info",
		"Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logDirFlag, "log-dir", "",
		"Directory for log files (disabled when empty)")

	analyze := &cobra.Command{
		Use:   "analyze <resume-file>",
		Short: "Analyze a resume against a job description",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveJobDescription()
		},
		RunE: runAnalyzeCommand,
	}
	analyze.Flags().StringVar(&jobDescription, "job", "",
		"Target job description text (blank analyzes against general market trends)")
	analyze.Flags().StringVar(&jobFile, "job-file", "",
		"File containing the target job description")

	chat := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the career coach about your latest analysis",
		Args:  cobra.NoArgs,
		RunE:  runChatCommand,
	}

	health := &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable and healthy",
		Args:  cobra.NoArgs,
		RunE:  runHealthCommand,
	}

	root.AddCommand(analyze, chat, health)
	return root
}

// resolveJobDescription folds --job-file into the jobDescription flag.
func resolveJobDescription() error {
	if jobFile == "" {
		return nil
	}
	if jobDescription != "" {
		return fmt.Errorf("--job and --job-file are mutually exclusive")
	}
	data, err := os.ReadFile(jobFile)
	if err != nil {
		return fmt.Errorf("read job description file: %w", err)
	}
	jobDescription = string(data)
	return nil
}

// envOr returns the environment value or a default.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
