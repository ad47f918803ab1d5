package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/ladder/internal/output"
	"github.com/Dicklesworthstone/ladder/internal/tier"
	"github.com/Dicklesworthstone/ladder/internal/utils"
	"github.com/Dicklesworthstone/ladder/internal/watch"
)

var flagWatchLogFile bool

func init() {
	watchCmd.Flags().BoolVar(&flagWatchLogFile, "log-file", false, "also log to .ladder/watch.log")

	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the tests tree and classify changed files",
	Long: `Watch the tests tree and report the tier of every created or modified
test file as it changes. Useful while moving tests between tiers: a file
landing in the wrong directory shows up immediately as unclassified or as
a surprising tier.

Stop with Ctrl-C.`,
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

		logger := utils.GetDefaultLogger()
		if flagWatchLogFile {
			fileLogger, err := utils.InitWatchLogger(project)
			if err != nil {
				return fmt.Errorf("opening watch log: %w", err)
			}
			logger = fileLogger
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		onEvent := func(ev watch.Event) {
			if output.IsJSON() {
				_ = output.OutputNDJSON(ev)
				return
			}
			if ev.Unclassified {
				fmt.Printf("%-12s %s\n", "unclassified", ev.Path)
				return
			}
			fmt.Printf("%-12s %s\n", output.TierBadge(ev.TierID), ev.Path)
		}

		err = watch.Run(ctx, watch.Options{
			ProjectDir: project,
			TestsRoot:  cfg.General.TestsRoot,
			Matcher:    tier.NewMatcher(cfg.Catalog()),
			Debounce:   time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
			Logger:     logger,
			OnEvent:    onEvent,
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}
