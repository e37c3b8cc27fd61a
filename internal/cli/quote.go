package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"portfolio/internal/pricing"
	"portfolio/internal/tui"
	"portfolio/internal/wizard"
)

const catalogTimeout = 5 * time.Second

func newQuoteCmd(a *app) *cobra.Command {
	var (
		token    string
		currency string
		offline  bool
	)
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Configure a project and send an inquiry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, serverCurrency := a.loadCatalog(cmd.Context(), offline)
			if currency == "" {
				currency = serverCurrency
			}
			cur, ok := pricing.CurrencyByCode(currency)
			if !ok {
				return fmt.Errorf("unsupported currency %q", currency)
			}

			m := tui.NewModel(wizard.New(catalog, cur), a.client(), tui.WithToken(token))
			if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("failed to run TUI: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", envOr("FOLIO_VERIFICATION_TOKEN", ""), "Verification token issued by the challenge widget")
	cmd.Flags().StringVar(&currency, "currency", "", "Display currency (USD, VND); defaults to the server's")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use the built-in catalog without contacting the server")
	return cmd
}

// loadCatalog fetches the server catalog, falling back to the built-in one.
func (a *app) loadCatalog(ctx context.Context, offline bool) (*pricing.Catalog, string) {
	if offline {
		return pricing.Default(), pricing.USD.Code
	}
	ctx, cancel := context.WithTimeout(ctx, catalogTimeout)
	defer cancel()

	catalog, currency, err := a.client().Catalog(ctx)
	if err != nil {
		a.logger.Warn("using built-in pricing catalog", "error", err)
		return pricing.Default(), pricing.USD.Code
	}
	if currency == "" {
		currency = pricing.USD.Code
	}
	return catalog, currency
}
