package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/ladder/internal/db"
	"github.com/Dicklesworthstone/ladder/internal/discover"
	"github.com/Dicklesworthstone/ladder/internal/output"
	"github.com/Dicklesworthstone/ladder/internal/tier"
	"github.com/Dicklesworthstone/ladder/internal/utils"
)

var (
	flagDiscoverRecord  bool
	flagDiscoverTrigger string
)

func init() {
	discoverCmd.Flags().BoolVar(&flagDiscoverRecord, "record", false, "record this run in the history database")
	discoverCmd.Flags().StringVar(&flagDiscoverTrigger, "trigger", "", "CI event to label a recorded run with")

	rootCmd.AddCommand(discoverCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Walk the tests tree and classify every candidate",
	Long: `Walk the project's tests tree, classify every test file and test-config
entry, and report per-tier totals plus the unclassified leftovers.

Unclassified files are listed so a human can add a pattern or move the
file; they never fail the command.

Examples:
  ladder discover
  ladder discover --json
  ladder discover --record --trigger nightly`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := projectPath()
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		trigger := flagDiscoverTrigger
		if trigger != "" {
			if _, err := tier.ParseTrigger(trigger); err != nil {
				return err
			}
		}

		res, err := discover.Walk(cmd.Context(), discover.Options{
			ProjectDir:        project,
			TestsRoot:         cfg.General.TestsRoot,
			IncludeExtensions: cfg.Discovery.IncludeExtensions,
			FollowSymlinks:    cfg.Discovery.FollowSymlinks,
			Matcher:           tier.NewMatcher(cfg.Catalog()),
		})
		if err != nil {
			return fmt.Errorf("discovering tests: %w", err)
		}

		var recordedID string
		if flagDiscoverRecord {
			recordedID, err = recordRun(cfg.HistoryDBPath(project), cfg.General.TestsRoot, trigger, res)
			if err != nil {
				return err
			}
			utils.Info("recorded run", "id", recordedID)
		}

		if output.IsJSON() {
			return output.OutputJSON(map[string]any{
				"total":        res.Total(),
				"classified":   res.ClassifiedCount(),
				"tier_files":   res.TierFiles,
				"unclassified": res.Unclassified,
				"run_id":       recordedID,
			})
		}

		rows := make([][]string, 0, 5)
		for _, t := range cfg.Catalog().Routable() {
			files := res.TierFiles[t.ID]
			rows = append(rows, []string{
				output.TierBadge(t.ID),
				fmt.Sprintf("%d", len(files)),
			})
		}
		output.OutputTable([]string{"TIER", "FILES"}, rows)
		fmt.Printf("\n%d candidate(s), %d classified\n", res.Total(), res.ClassifiedCount())

		if len(res.Unclassified) > 0 {
			fmt.Printf("\nUnclassified (%d), needs a pattern or a move:\n", len(res.Unclassified))
			output.OutputList(res.Unclassified)
		}
		return nil
	},
}

// recordRun persists a discovery run and returns its id.
func recordRun(dbPath, testsRoot, trigger string, res *discover.Result) (string, error) {
	conn, err := db.OpenAndMigrate(dbPath)
	if err != nil {
		return "", fmt.Errorf("opening history database: %w", err)
	}
	defer conn.Close()

	counts := make(map[string]int, len(res.TierFiles))
	for id, files := range res.TierFiles {
		counts[string(id)] = len(files)
	}
	run := &db.Run{
		Trigger:      trigger,
		TestsRoot:    testsRoot,
		Total:        res.Total(),
		Classified:   res.ClassifiedCount(),
		Unclassified: res.Unclassified,
		TierCounts:   counts,
	}
	if err := conn.RecordRun(run); err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}
	return run.ID, nil
}
