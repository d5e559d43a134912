package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aalvaropc/roulette/internal/domain"
)

func loginCmd(opts *globalOpts) *cobra.Command {
	var instance string
	var username string
	var passwordStdin bool

	c := &cobra.Command{
		Use:   "login",
		Short: "Log into your home instance so follow works and followed communities are skipped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd, passwordStdin)
			if err != nil {
				return err
			}

			h, err := loadHome(opts)
			if err != nil {
				return err
			}
			defer h.Close()

			req := domain.LoginRequest{Instance: instance, Username: username, Password: password}
			if err := h.session.Login(cmd.Context(), req); err != nil {
				if !errors.Is(err, domain.ErrRefreshFailed) {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s\n", req.NormalizedInstance())
			return nil
		},
	}

	c.Flags().StringVar(&instance, "instance", "", "Home instance host, e.g. lemmy.ml (required)")
	c.Flags().StringVarP(&username, "username", "u", "", "Username or email (required)")
	c.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	_ = c.MarkFlagRequired("instance")
	_ = c.MarkFlagRequired("username")
	return c
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword(cmd *cobra.Command, fromStdin bool) (string, error) {
	in := cmd.InOrStdin()

	if !fromStdin {
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return "", fmt.Errorf("read password: %w", err)
			}
			return string(b), nil
		}
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func logoutCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := loadHome(opts)
			if err != nil {
				return err
			}
			defer h.Close()

			if err := h.session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}
