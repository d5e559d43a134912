package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/roulette/internal/domain"
)

func skipCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "skip <key>",
		Short: "Mark a community as seen (key is instance_id@id or name@host, as printed by pick)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loadHome(opts)
			if err != nil {
				return err
			}
			defer h.Close()

			if err := h.roulette.Load(cmd.Context()); err != nil {
				return err
			}
			c, _, err := h.roulette.Select(args[0])
			if err != nil {
				return err
			}
			if _, _, err := h.roulette.Skip(); err != nil && !errors.Is(err, domain.ErrNoCandidates) {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Skipped %s (%s)\n", c.FollowKey(), c.SeenKey())
			return nil
		},
	}
}

func followCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "follow <key>",
		Short: "Follow a community through your home instance and mark it as seen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loadHome(opts)
			if err != nil {
				return err
			}
			defer h.Close()

			ctx := cmd.Context()
			if err := h.roulette.Load(ctx); err != nil {
				return err
			}
			c, _, err := h.roulette.Select(args[0])
			if err != nil {
				return err
			}
			if _, _, err := h.roulette.Follow(ctx); err != nil && !errors.Is(err, domain.ErrNoCandidates) {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Followed %s\n", c.FollowKey())
			return nil
		},
	}
}
