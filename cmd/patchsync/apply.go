// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/patchsync/internal/store"
	"github.com/petar-djukic/patchsync/pkg/patchsync"
	"github.com/petar-djukic/patchsync/pkg/types"
)

// newApplyCmd creates the "apply" command.
func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a model response to the store",
		Long:  "Apply parses SEARCH/REPLACE blocks from a model response file, applies them to the targeted files, and saves each result. Version conflicts are reported, or auto-resolved with --on-conflict.",
		RunE:  runApply,
	}

	cmd.Flags().StringP("file", "f", "", "Model response file (required)")
	cmd.MarkFlagRequired("file")
	cmd.Flags().StringP("message", "m", "", "Save message")
	cmd.Flags().String("on-conflict", "", "Auto-resolve conflicts: mine, theirs, or copy")

	return cmd
}

// runApply executes the apply command.
func runApply(cmd *cobra.Command, args []string) error {
	responseFile, _ := cmd.Flags().GetString("file")
	message, _ := cmd.Flags().GetString("message")
	onConflict, _ := cmd.Flags().GetString("on-conflict")

	switch onConflict {
	case "", string(patchsync.KeepMine), string(patchsync.KeepTheirs), string(patchsync.SaveAsCopy):
	default:
		return fmt.Errorf("invalid --on-conflict value %q", onConflict)
	}

	response, err := os.ReadFile(responseFile)
	if err != nil {
		return fmt.Errorf("reading response file: %w", err)
	}

	st, err := store.OpenGit(store.GitConfig{Dir: viper.GetString("repo")})
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	client, err := patchsync.New(patchsync.Config{
		Store:       st,
		Ref:         viper.GetString("ref"),
		MaxAttempts: viper.GetInt("max-attempts"),
		RetryDelay:  viper.GetDuration("retry-delay"),
	})
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	summary, err := client.RunResponse(ctx, string(response), message)
	if err != nil {
		if summary != nil {
			printSummary(summary)
		}
		return err
	}

	if onConflict != "" {
		resolveConflicts(ctx, client, summary, patchsync.Strategy(onConflict), message)
	}

	printSummary(summary)

	for _, r := range summary.Results {
		if r.Outcome.Kind != types.OutcomeSuccess {
			return fmt.Errorf("%d of %d files did not save cleanly", unclean(summary), len(summary.Results))
		}
	}
	return nil
}

// resolveConflicts re-applies the chosen strategy to every conflicted result.
func resolveConflicts(ctx context.Context, client *patchsync.Client, summary *patchsync.RunSummary, strategy patchsync.Strategy, message string) {
	for i := range summary.Results {
		r := &summary.Results[i]
		if r.Outcome.Kind != types.OutcomeConflict {
			continue
		}
		r.Outcome = client.Resolve(ctx, r.Outcome.Conflict, strategy, patchsync.ResolveOptions{Message: message})
	}
}

// unclean counts results that did not end in a success outcome.
func unclean(summary *patchsync.RunSummary) int {
	n := 0
	for _, r := range summary.Results {
		if r.Outcome.Kind != types.OutcomeSuccess {
			n++
		}
	}
	return n
}

// printSummary outputs the summary as JSON to stdout.
func printSummary(summary *patchsync.RunSummary) {
	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling summary: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
