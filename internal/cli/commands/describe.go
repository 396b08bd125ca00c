package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cvickery/rule-descriptions/internal/catalog"
	"github.com/cvickery/rule-descriptions/internal/cli/config"
	"github.com/cvickery/rule-descriptions/internal/describe"
	"github.com/cvickery/rule-descriptions/internal/pgstore"
	"github.com/cvickery/rule-descriptions/internal/rules"
	"github.com/cvickery/rule-descriptions/internal/state"
)

// NewDescribeCommand creates the describe command.
func NewDescribeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Generate descriptions for all transfer rules in a schema",
		Long: `Rebuild the rule_descriptions table for the selected schema.

The course catalog is cached once from the current cuny_courses table, so
descriptions for archived rule sets reflect current course attributes, not
the attributes at the rules' effective dates.

Rules referencing course offerings missing from the catalog still get a
description (with "No course" placeholders); each missing reference is
recorded in description_errors.<schema>.log.`,
		Example: `  # Describe the live transfer rules
  ruledesc describe

  # Describe an archived rule set
  ruledesc describe --schema rules_2024_08_01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDescribe(cmd)
		},
	}
	return cmd
}

func runDescribe(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := getConfig(ctx)
	logger := getLogger(ctx)
	startTime := time.Now()

	store, err := pgstore.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ok, err := store.SchemaExists(ctx, cfg.Schema)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("schema %s does not exist", cfg.Schema)
	}

	st, err := openStateStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	run, err := st.CreateRun(cfg.Schema)
	if err != nil {
		return err
	}

	descs, anomalies, err := generate(ctx, cfg, store, logger)
	if err != nil {
		_ = st.CompleteRun(run.ID, state.RunStatusFailed, 0, 0, err.Error())
		return err
	}

	if err := persist(ctx, cfg.Schema, store, descs); err != nil {
		_ = st.CompleteRun(run.ID, state.RunStatusFailed, len(descs), anomalies, err.Error())
		return err
	}

	_ = st.CompleteRun(run.ID, state.RunStatusCompleted, len(descs), anomalies, "")

	fmt.Fprintf(cmd.OutOrStdout(), "Generated %d rule_descriptions in schema %s\n",
		len(descs), cfg.Schema)
	if anomalies > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d anomalies logged to %s\n", anomalies,
			filepath.Join(cfg.AnomalyDir, fmt.Sprintf("description_errors.%s.log", cfg.Schema)))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	return nil
}

// generate runs the synthesis pass: cache the catalog once, load the
// ordered rule stream, and describe every rule. Returns the descriptions,
// in rule-stream order, and the anomaly count.
func generate(ctx context.Context, cfg *config.Config, store *pgstore.Store, logger *slog.Logger) ([]rules.Description, int, error) {
	if err := store.EnsureUnifiedViews(ctx, cfg.Schema); err != nil {
		return nil, 0, err
	}

	cat, err := catalog.Load(ctx, store.DB(), logger)
	if err != nil {
		return nil, 0, err
	}

	ruleSet, err := rules.Load(ctx, store.DB(), cfg.Schema, logger)
	if err != nil {
		return nil, 0, err
	}

	reporter, err := describe.OpenLogReporter(cfg.AnomalyDir, cfg.Schema, logger)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = reporter.Close() }()

	syn := describe.NewSynthesizer(cat, reporter, logger)
	descs, err := describe.All(ctx, syn, ruleSet, cfg.Workers)
	if err != nil {
		return nil, 0, err
	}
	return descs, reporter.Count(), nil
}

// persist rebuilds and bulk-loads the rule_descriptions table, stamping the
// updates table for the public schema.
func persist(ctx context.Context, schema string, store *pgstore.Store, descs []rules.Description) error {
	if err := store.ReplaceDescriptionsTable(ctx, schema); err != nil {
		return err
	}
	if err := store.CopyDescriptions(ctx, schema, descs); err != nil {
		return err
	}
	if schema == "public" {
		if err := store.TouchUpdates(ctx, time.Now()); err != nil {
			return err
		}
	}
	return nil
}

// openStateStore opens the run-history database, creating its directory if
// needed.
func openStateStore(cfg *config.Config, logger *slog.Logger) (*state.SQLiteStore, error) {
	dir := filepath.Dir(cfg.StatePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	st := state.NewSQLiteStore(logger)
	if err := st.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	return st, nil
}
