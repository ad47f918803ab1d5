package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/ladder/internal/output"
	"github.com/Dicklesworthstone/ladder/internal/tier"
	"github.com/Dicklesworthstone/ladder/internal/utils"
)

func init() {
	rootCmd.AddCommand(classifyCmd)
}

var classifyCmd = &cobra.Command{
	Use:   "classify <path>...",
	Short: "Classify test paths into ladder tiers",
	Long: `Classify one or more test paths against the tier catalog.

Paths matching no pattern are reported as unclassified; that is advisory
(the file needs a pattern or a move), not an error. The command only fails
on malformed input such as an invalid configured glob.

Examples:
  ladder classify tests/engine/test_arg_utils.py
  ladder classify tests/e2e/online_serving/test_qwen3_omni_expansion.py
  ladder classify --json $(git diff --name-only origin/main -- tests/)`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		matcher := tier.NewMatcher(cfg.Catalog())

		type classification struct {
			Path         string    `json:"path"`
			Tier         tier.ID   `json:"tier,omitempty"`
			Kind         tier.Kind `json:"kind,omitempty"`
			Trigger      string    `json:"trigger,omitempty"`
			Hardware     string    `json:"hardware,omitempty"`
			Unclassified bool      `json:"unclassified,omitempty"`
		}

		results := make([]classification, 0, len(args))
		unclassified := 0
		for _, p := range args {
			match, cerr := matcher.Classify(p)
			switch {
			case cerr == nil:
				results = append(results, classification{
					Path:     p,
					Tier:     match.Tier.ID,
					Kind:     match.Pattern.Kind,
					Trigger:  string(match.Tier.Trigger),
					Hardware: string(match.Tier.Hardware),
				})
			case errors.Is(cerr, tier.ErrUnclassified):
				unclassified++
				results = append(results, classification{Path: p, Unclassified: true})
			default:
				return cerr
			}
		}

		if output.IsJSON() {
			return output.OutputJSON(map[string]any{
				"results":      results,
				"total":        len(results),
				"unclassified": unclassified,
			})
		}

		rows := make([][]string, 0, len(results))
		for _, r := range results {
			tierCell := "-"
			kindCell := "-"
			if !r.Unclassified {
				tierCell = output.TierBadge(r.Tier)
				kindCell = string(r.Kind)
			}
			rows = append(rows, []string{r.Path, tierCell, kindCell})
		}
		output.OutputTable([]string{"PATH", "TIER", "KIND"}, rows)

		if unclassified > 0 {
			utils.Warn("unclassified paths need a pattern or a move", "count", unclassified)
			fmt.Println()
			fmt.Printf("%d of %d path(s) unclassified\n", unclassified, len(results))
		}
		return nil
	},
}
