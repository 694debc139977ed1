// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Command reref re-references stereo-EEG recordings stored as EDF files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose     bool
	configPath  string
	epochLength int

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:          "reref",
	Short:        "Re-reference stereo-EEG recordings",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var groupsCmd = &cobra.Command{
	Use:   "groups <recording.edf>",
	Short: "Print the electrode shafts found in a recording",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printGroups(cmd.OutOrStdout(), args[0])
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <in.edf> <out.edf>",
	Short: "Re-reference a recording and write the result",
	Long: `Reads every sampled signal of the input recording, applies the referencing
scheme described by the job file and writes the referenced channels to a new
EDF file.

Example job file:

  scheme: bipolar
  exclude_shafts: [DC]
  passthrough_utility: true`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return applyFile(logger, configPath, args[0], args[1], epochLength)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	applyCmd.Flags().StringVarP(&configPath, "config", "c", "", "Referencing job file (YAML)")
	applyCmd.Flags().IntVar(&epochLength, "epoch", 0, "Reference in epochs of this many samples")
	_ = applyCmd.MarkFlagRequired("config")

	rootCmd.AddCommand(groupsCmd, applyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
