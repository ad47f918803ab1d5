package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/ladder/internal/output"
	"github.com/Dicklesworthstone/ladder/internal/tier"
)

func init() {
	rootCmd.AddCommand(tiersCmd)
}

var tiersCmd = &cobra.Command{
	Use:   "tiers [tier]",
	Short: "Show the tier catalog",
	Long: `Show the testing ladder's tier catalog in escalation order, or the full
detail of a single tier (patterns, markers, budget).

Examples:
  ladder tiers
  ladder tiers L3
  ladder tiers --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		catalog := cfg.Catalog()

		if len(args) == 1 {
			id, err := tier.ParseID(args[0])
			if err != nil {
				return err
			}
			t, err := catalog.Get(id)
			if err != nil {
				return err
			}
			return printTierDetail(t)
		}

		all := catalog.All()
		if output.IsJSON() {
			return output.OutputJSON(all)
		}

		rows := make([][]string, 0, len(all))
		for _, t := range all {
			rows = append(rows, []string{
				output.TierBadge(t.ID),
				t.Scope,
				orDash(string(t.Trigger)),
				orDash(string(t.Hardware)),
				budgetCell(t),
			})
		}
		output.OutputTable([]string{"TIER", "SCOPE", "TRIGGER", "HARDWARE", "BUDGET"}, rows)
		return nil
	},
}

func printTierDetail(t tier.Tier) error {
	if output.IsJSON() {
		return output.OutputJSON(t)
	}

	fmt.Printf("Tier:     %s\n", output.TierBadge(t.ID))
	fmt.Printf("Scope:    %s\n", t.Scope)
	fmt.Printf("Trigger:  %s\n", orDash(string(t.Trigger)))
	fmt.Printf("Hardware: %s\n", orDash(string(t.Hardware)))
	fmt.Printf("Budget:   %s\n", budgetCell(t))
	if expr := t.MarkerExpr(); expr != "" {
		fmt.Printf("Markers:  %s\n", expr)
	}
	if len(t.Patterns) > 0 {
		fmt.Println("Patterns:")
		for _, p := range t.Patterns {
			fmt.Printf("  %-12s %s\n", "("+string(p.Kind)+")", p.Glob)
		}
	}
	return nil
}

func budgetCell(t tier.Tier) string {
	if t.Budget <= 0 {
		return "-"
	}
	// 15m0s and 3h0m0s read worse than 15m and 3h in a table.
	b := strings.TrimSuffix(t.Budget.String(), "0s")
	return strings.TrimSuffix(b, "0m")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
