package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/ladder/internal/db"
	"github.com/Dicklesworthstone/ladder/internal/output"
)

var flagHistoryLimit int

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "number of runs to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

// openHistory opens the project's history database.
func openHistory() (*db.DB, error) {
	project, err := projectPath()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	conn, err := db.OpenAndMigrate(cfg.HistoryDBPath(project))
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	return conn, nil
}

// shortID abbreviates a run id for table display. Ids are UUIDs under
// normal operation but hand-edited databases must not panic the list.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded classification runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openHistory()
		if err != nil {
			return err
		}
		defer conn.Close()

		runs, err := conn.ListRuns(flagHistoryLimit)
		if err != nil {
			return err
		}

		if output.IsJSON() {
			return output.OutputJSON(runs)
		}

		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			rows = append(rows, []string{
				shortID(r.ID),
				orDash(r.Trigger),
				fmt.Sprintf("%d", r.Total),
				fmt.Sprintf("%d", r.Classified),
				r.CreatedAt.Format(time.RFC3339),
			})
		}
		output.OutputTable([]string{"RUN", "TRIGGER", "TOTAL", "CLASSIFIED", "CREATED"}, rows)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one recorded run in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openHistory()
		if err != nil {
			return err
		}
		defer conn.Close()

		run, err := conn.GetRun(args[0])
		if err != nil {
			return err
		}

		if output.IsJSON() {
			return output.OutputJSON(run)
		}

		fmt.Printf("Run:        %s\n", run.ID)
		fmt.Printf("Trigger:    %s\n", orDash(run.Trigger))
		fmt.Printf("Tests root: %s\n", run.TestsRoot)
		fmt.Printf("Total:      %d (%d classified)\n", run.Total, run.Classified)
		fmt.Printf("Created:    %s\n", run.CreatedAt.Format(time.RFC3339))
		if len(run.TierCounts) > 0 {
			fmt.Println("Tier counts:")
			for tierID, n := range run.TierCounts {
				fmt.Printf("  %s: %d\n", tierID, n)
			}
		}
		if len(run.Unclassified) > 0 {
			fmt.Printf("Unclassified (%d):\n", len(run.Unclassified))
			output.OutputList(run.Unclassified)
		}
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than the retention window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		conn, err := openHistory()
		if err != nil {
			return err
		}
		defer conn.Close()

		n, err := conn.PruneRuns(cfg.History.RetentionDays)
		if err != nil {
			return err
		}

		if output.IsJSON() {
			return output.OutputJSON(map[string]any{
				"pruned":         n,
				"retention_days": cfg.History.RetentionDays,
			})
		}
		fmt.Printf("Pruned %d run(s) older than %d day(s)\n", n, cfg.History.RetentionDays)
		return nil
	},
}
