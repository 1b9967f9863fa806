// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ManuGH/playout/internal/config"
	"github.com/ManuGH/playout/internal/version"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(newConfigValidateCmd(configPath), newConfigDumpCmd(configPath))
	return cmd
}

func newConfigValidateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := resolveConfigPath(*configPath)
			if _, err := config.NewLoader(path, version.Version).Load(); err != nil {
				return fmt.Errorf("configuration error in %s: %w", describePath(path), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", describePath(path))
			return nil
		},
	}
}

func newConfigDumpCmd(configPath *string) *cobra.Command {
	var outFormat string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration (defaults + file + env)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := resolveConfigPath(*configPath)
			cfg, err := config.NewLoader(path, version.Version).Load()
			if err != nil {
				return fmt.Errorf("configuration error in %s: %w", describePath(path), err)
			}
			fileCfg := config.ToFileConfig(cfg)

			switch strings.ToLower(strings.TrimSpace(outFormat)) {
			case "yaml", "yml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(fileCfg); err != nil {
					return fmt.Errorf("encode YAML: %w", err)
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(fileCfg)
			default:
				return errors.New("unsupported --format (use yaml or json)")
			}
		},
	}
	cmd.Flags().StringVar(&outFormat, "format", "yaml", "output format: yaml or json")
	return cmd
}

func describePath(path string) string {
	if path == "" {
		return "environment configuration"
	}
	return path
}
