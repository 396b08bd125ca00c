package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cvickery/rule-descriptions/internal/pgstore"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check database connectivity and required tables",
		Long: `Verify everything a describe run needs: the curriculum database is
reachable, the selected schema exists, and the tables the run reads are
present.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd)
		},
	}
}

func runDoctor(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := getConfig(ctx)
	logger := getLogger(ctx)
	out := cmd.OutOrStdout()

	store, err := pgstore.Connect(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(out, "FAIL  connect to %s\n", cfg.Database.Database)
		return err
	}
	defer func() { _ = store.Close() }()
	fmt.Fprintf(out, "OK    connected to %s\n", cfg.Database.Database)

	failures := 0

	ok, err := store.SchemaExists(ctx, cfg.Schema)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintf(out, "OK    schema %s exists\n", cfg.Schema)
	} else {
		fmt.Fprintf(out, "FAIL  schema %s does not exist\n", cfg.Schema)
		failures++
	}

	// The catalog always comes from the public schema; the rule tables
	// come from the selected one.
	checks := []struct{ schema, table string }{
		{"public", "cuny_courses"},
		{cfg.Schema, "transfer_rules"},
		{cfg.Schema, "source_courses"},
		{cfg.Schema, "destination_courses"},
	}
	for _, c := range checks {
		ok, err := store.TableExists(ctx, c.schema, c.table)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintf(out, "OK    table %s.%s\n", c.schema, c.table)
		} else {
			fmt.Fprintf(out, "FAIL  table %s.%s missing\n", c.schema, c.table)
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d check(s) failed", failures)
	}
	fmt.Fprintln(out, "All checks passed")
	return nil
}
