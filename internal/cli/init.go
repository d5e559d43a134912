package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/roulette/internal/infra/home"
	"github.com/aalvaropc/roulette/internal/usecase"
)

func initCmd(opts *globalOpts) *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init",
		Short: "Create roulette.yaml in the current directory (or --home)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root := strings.TrimSpace(opts.home)
			if root == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("get working directory: %w", err)
				}
				root = wd
			}
			root, err := filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("invalid home path: %w", err)
			}

			uc := usecase.NewInitHome(home.NewInitializer())
			if err := uc.Execute(root, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized roulette home in %s\n", root)
			return nil
		},
	}
	c.Flags().BoolVar(&force, "force", false, "Overwrite an existing roulette.yaml")
	return c
}
