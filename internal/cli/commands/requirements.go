package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cvickery/rule-descriptions/internal/pgstore"
)

// NewRequirementsCommand creates the requirements command.
func NewRequirementsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "requirements",
		Short: "Refresh the requirements column of cuny_courses",
		Long: `Derive a requirement profile for every active undergraduate course
offering and write it to the json requirements column of cuny_courses.

A profile records the Pathways core area, the Common Core option, Major
Equivalency names, and the academic plans with a requirement the course
satisfies. The describe command compresses these profiles into the compact
codes embedded in rule descriptions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := getConfig(ctx)
			logger := getLogger(ctx)

			store, err := pgstore.Connect(ctx, cfg.Database, logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := store.RefreshRequirements(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated requirements for %d course offerings\n", n)
			return nil
		},
	}
}
