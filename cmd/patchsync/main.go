// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command patchsync applies model-generated search/replace edits to files in
// a versioned store and saves them under optimistic concurrency.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "patchsync",
		Short: "Conflict-aware patch applier for model-generated edits",
		Long:  "patchsync locates search/replace edit blocks in files of a versioned store, applies them through tiered matching, and saves the result with optimistic concurrency and explicit conflict resolution.",
	}

	// Global flags.
	rootCmd.PersistentFlags().String("repo", ".", "Git repository backing the store")
	rootCmd.PersistentFlags().String("ref", "", "Branch or revision to read (default HEAD)")
	rootCmd.PersistentFlags().Int("max-attempts", 3, "Write attempt cap per save")
	rootCmd.PersistentFlags().Duration("retry-delay", 500*time.Millisecond, "Minimum delay between write attempts")

	// Bind flags to viper.
	viper.BindPFlag("repo", rootCmd.PersistentFlags().Lookup("repo"))
	viper.BindPFlag("ref", rootCmd.PersistentFlags().Lookup("ref"))
	viper.BindPFlag("max-attempts", rootCmd.PersistentFlags().Lookup("max-attempts"))
	viper.BindPFlag("retry-delay", rootCmd.PersistentFlags().Lookup("retry-delay"))

	// Env vars: PATCHSYNC_REPO, PATCHSYNC_REF, etc.
	viper.SetEnvPrefix("PATCHSYNC")
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".patchsync")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print patchsync version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("patchsync %s\n", version)
		},
	}
}
