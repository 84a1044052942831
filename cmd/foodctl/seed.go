package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// seedFile describes optional schedule overrides applied after migrations
// have installed the default rules.
type seedFile struct {
	Schedule []struct {
		ID    int64  `yaml:"id"`
		Open  string `yaml:"open"`
		Close string `yaml:"close"`
	} `yaml:"schedule"`
}

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Initialize the database and optionally apply schedule overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, svc, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			if file == "" {
				fmt.Println("database initialized")
				return nil
			}

			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var sf seedFile
			if err := yaml.Unmarshal(raw, &sf); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}

			for _, s := range sf.Schedule {
				if _, err := svc.UpdateSchedule(cmd.Context(), s.ID, s.Open, s.Close); err != nil {
					return fmt.Errorf("rule %d: %w", s.ID, err)
				}
			}
			fmt.Printf("database initialized, %d schedule override(s) applied\n", len(sf.Schedule))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML file with schedule overrides")
	return cmd
}
