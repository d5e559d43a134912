package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/roulette/internal/infra/markdown"
	"github.com/aalvaropc/roulette/internal/ui/tui"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOpts{}

	cmd := &cobra.Command{
		Use:          "roulette",
		Short:        "Discover a random Lemmy community you have not seen yet",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			h, err := loadHome(opts)
			if err != nil {
				return err
			}
			defer h.Close()

			deps := tui.Deps{
				Roulette: h.roulette,
				Session:  h.session,
				Prefs:    h.prefs,
				Markdown: markdown.NewTerminalRenderer(""),
				Logger:   h.log,
				Debug:    opts.debug,
				LogPath:  h.logPath,
				RunID:    h.runID,
			}
			return tui.Run(deps)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.home, "home", "", "Config root holding roulette.yaml (autodetected if omitted)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable verbose logging to .roulette/logs/roulette.log")

	cmd.AddCommand(
		pickCmd(opts),
		skipCmd(opts),
		followCmd(opts),
		loginCmd(opts),
		logoutCmd(opts),
		prefsCmd(opts),
		blockCmd(opts),
		unblockCmd(opts),
		initCmd(opts),
		versionCmd(),
	)
	return cmd
}
