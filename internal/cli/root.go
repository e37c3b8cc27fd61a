// Package cli implements the folio command line client.
package cli

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"portfolio/internal/client"
	"portfolio/internal/logging"
)

const defaultServer = "http://localhost:5000"

// app is the state shared by every command.
type app struct {
	server   string
	logLevel string
	logger   *slog.Logger
}

func (a *app) client() *client.Client {
	return client.New(a.server)
}

// adminClient returns a client carrying the stored session.
func (a *app) adminClient() (*client.Client, error) {
	s, err := loadSession(a.server)
	if err != nil {
		return nil, err
	}
	return a.client().WithSession(s), nil
}

// NewRootCmd builds the folio command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "folio",
		Short: "Request a project quote and manage inquiries from the terminal",
		Long: `folio talks to the portfolio API.

Run 'folio quote' to configure a project and send an inquiry. Admins can
'folio login' and then read the inbox or watch for new inquiries.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.server = strings.TrimRight(a.server, "/")
			a.logger = logging.New(os.Stderr, a.logLevel)
		},
	}

	root.PersistentFlags().StringVar(&a.server, "server", envOr("FOLIO_SERVER", defaultServer), "API base URL")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", envOr("FOLIO_LOG_LEVEL", "warn"), "Log level (debug, info, warn, error)")

	root.AddCommand(
		newQuoteCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newInboxCmd(a),
		newWatchCmd(a),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
