package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd(a *app) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as the site admin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := cmd.InOrStdin()
			reader := bufio.NewReader(in)
			if username == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Username: ")
				line, _ := reader.ReadString('\n')
				username = strings.TrimSpace(line)
			}

			fmt.Fprint(cmd.OutOrStdout(), "Password: ")
			var password string
			if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				b, err := term.ReadPassword(int(f.Fd()))
				if err != nil {
					return err
				}
				password = string(b)
			} else {
				line, _ := reader.ReadString('\n')
				password = strings.TrimRight(line, "\r\n")
			}
			fmt.Fprintln(cmd.OutOrStdout())

			session, err := a.client().Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if err := saveSession(a.server, session); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", session.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Admin username")
	return cmd
}

func newLogoutCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := clearSession(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
