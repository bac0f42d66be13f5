package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ontocat/internal/config"
)

func initCmd() *cobra.Command {
	var projectName string
	var catalogPath string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold an ontocat project file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(projectName, catalogPath)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&catalogPath, "catalog", ".", "Path to the catalog root (holds a models/ subdirectory)")
	return cmd
}

func runInit(projectName, catalogPath string) error {
	if _, err := os.Stat(config.DefaultFile); err == nil {
		return fmt.Errorf("%s already exists", config.DefaultFile)
	}

	contents := fmt.Sprintf("project: %s\nversion: 1\n\ncatalog:\n  path: %s\n  queries_dir: queries\n  results_dir: results\n  limit: 0\n  skip_invalid: false\n  exclude: []\n", projectName, catalogPath)
	if err := os.WriteFile(config.DefaultFile, []byte(contents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", config.DefaultFile, err)
	}
	return nil
}
