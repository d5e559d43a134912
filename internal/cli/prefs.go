package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aalvaropc/roulette/internal/domain"
)

func prefsCmd(opts *globalOpts) *cobra.Command {
	c := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change stored preferences",
	}
	c.AddCommand(prefsShowCmd(opts), prefsFilterCmd(opts), prefsResetSeenCmd(opts))
	return c
}

type prefsView struct {
	NSFWFilter         string   `json:"nsfwFilter" yaml:"nsfwFilter"`
	BlockedInstances   []string `json:"blockedInstances" yaml:"blockedInstances"`
	CheckedCommunities int      `json:"checkedCommunities" yaml:"checkedCommunities"`
	UserInstance       string   `json:"userInstance,omitempty" yaml:"userInstance,omitempty"`
	JWT                string   `json:"jwt,omitempty" yaml:"jwt,omitempty"`
}

func prefsShowCmd(opts *globalOpts) *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "show",
		Short: "Print the stored preferences (the session token is masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := loadHome(opts)
			if err != nil {
				return err
			}
			defer h.Close()

			return printPrefs(cmd.OutOrStdout(), format, h.prefs.Show())
		},
	}
	c.Flags().StringVar(&format, "format", "yaml", "Output format: yaml|json")
	return c
}

func printPrefs(w io.Writer, format string, p domain.Preferences) error {
	v := prefsView{
		NSFWFilter:         string(p.Filter),
		BlockedInstances:   p.BlockedInstances,
		CheckedCommunities: len(p.CheckedCommunities),
		UserInstance:       p.Session.Instance,
		JWT:                p.Session.JWT,
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q (expected yaml|json)", format)
	}
}

func prefsFilterCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "filter <all|none|only>",
		Short: "Set the NSFW filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loadHome(opts)
			if err != nil {
				return err
			}
			defer h.Close()

			f, err := h.prefs.SetFilter(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "NSFW filter: %s (%s)\n", f, f.Label())
			return nil
		},
	}
}

func prefsResetSeenCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-seen",
		Short: "Forget every community marked as seen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := loadHome(opts)
			if err != nil {
				return err
			}
			defer h.Close()

			if err := h.prefs.ResetSeen(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Seen communities cleared")
			return nil
		},
	}
}

func blockCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "block <host>",
		Short: "Never pick communities served by this instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loadHome(opts)
			if err != nil {
				return err
			}
			defer h.Close()

			changed, err := h.prefs.Block(args[0])
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already blocked\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Blocked %s\n", args[0])
			return nil
		},
	}
}

func unblockCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "unblock <host>",
		Short: "Allow communities from a previously blocked instance again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loadHome(opts)
			if err != nil {
				return err
			}
			defer h.Close()

			changed, err := h.prefs.Unblock(args[0])
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s was not blocked\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unblocked %s\n", args[0])
			return nil
		},
	}
}
