package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/ladder/internal/discover"
	"github.com/Dicklesworthstone/ladder/internal/output"
	"github.com/Dicklesworthstone/ladder/internal/plan"
	"github.com/Dicklesworthstone/ladder/internal/tier"
)

var (
	flagPlanYAML       bool
	flagPlanRunner     string
	flagPlanRunnerArgs string
	flagPlanNoDiscover bool
)

func init() {
	planCmd.Flags().BoolVar(&flagPlanYAML, "yaml", false, "emit the plan as YAML")
	planCmd.Flags().StringVar(&flagPlanRunner, "runner", "pytest", "test runner binary for stage argv")
	planCmd.Flags().StringVar(&flagPlanRunnerArgs, "runner-args", "", "extra runner arguments, shell-quoted")
	planCmd.Flags().BoolVar(&flagPlanNoDiscover, "no-discover", false, "build the plan without walking the tests tree")

	rootCmd.AddCommand(planCmd)
}

var planCmd = &cobra.Command{
	Use:   "plan <trigger>",
	Short: "Build the run plan for a CI trigger event",
	Long: `Build the run plan for a CI trigger event: the tiers it routes to in
escalation order, each with its files, marker expression, hardware class,
time budget and runner argv. A tier's run includes every lower tier, and
pre_release selects the full ladder.

The plan is a handoff: executing it is the CI system's job.

Examples:
  ladder plan pr_ready_label
  ladder plan nightly --yaml > nightly-plan.yaml
  ladder plan weekly --runner-args '-x --timeout 900'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		trigger, err := tier.ParseTrigger(args[0])
		if err != nil {
			return err
		}

		project, err := projectPath()
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		catalog := cfg.Catalog()

		var res *discover.Result
		if !flagPlanNoDiscover {
			res, err = discover.Walk(cmd.Context(), discover.Options{
				ProjectDir:        project,
				TestsRoot:         cfg.General.TestsRoot,
				IncludeExtensions: cfg.Discovery.IncludeExtensions,
				FollowSymlinks:    cfg.Discovery.FollowSymlinks,
				Matcher:           tier.NewMatcher(catalog),
			})
			if err != nil {
				return fmt.Errorf("discovering tests: %w", err)
			}
		}

		p, err := plan.Build(plan.Options{
			Trigger:    trigger,
			Catalog:    catalog,
			Discovery:  res,
			Runner:     flagPlanRunner,
			RunnerArgs: flagPlanRunnerArgs,
		})
		if err != nil {
			return err
		}

		if flagPlanYAML {
			out, err := p.YAML()
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(out)
			return err
		}
		if output.IsJSON() {
			return output.OutputJSON(p)
		}

		rows := make([][]string, 0, len(p.Stages))
		for _, s := range p.Stages {
			rows = append(rows, []string{
				output.TierBadge(s.Tier),
				orDash(s.TimeBudget),
				string(s.Hardware),
				s.MarkerExpr,
				fmt.Sprintf("%d", len(s.Files)),
			})
		}
		output.OutputTable([]string{"TIER", "BUDGET", "HARDWARE", "MARKERS", "FILES"}, rows)

		if len(p.Stages) > 0 {
			fmt.Printf("\nStage argv:\n")
			for _, s := range p.Stages {
				fmt.Printf("  %s: %s\n", s.Tier, strings.Join(s.Argv, " "))
			}
		}
		if len(p.Unclassified) > 0 {
			fmt.Printf("\n%d unclassified file(s) are not routed; see `ladder discover`\n", len(p.Unclassified))
		}
		return nil
	},
}
