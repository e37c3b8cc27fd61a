package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"portfolio/internal/domain"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	unreadStyle = cellStyle.Bold(true)
)

func newInboxCmd(a *app) *cobra.Command {
	var unreadOnly bool
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List received inquiries, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.adminClient()
			if err != nil {
				return err
			}
			messages, err := c.Messages(cmd.Context())
			if err != nil {
				return err
			}
			if unreadOnly {
				kept := messages[:0]
				for _, m := range messages {
					if !m.Read {
						kept = append(kept, m)
					}
				}
				messages = kept
			}
			if len(messages) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No messages.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderInbox(messages))
			return nil
		},
	}
	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "Only show unread messages")

	cmd.AddCommand(&cobra.Command{
		Use:   "read <id>",
		Short: "Mark an inquiry as read and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil || id == 0 {
				return fmt.Errorf("invalid id %q", args[0])
			}
			c, err := a.adminClient()
			if err != nil {
				return err
			}
			m, err := c.MarkRead(cmd.Context(), uint(id))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "From:    %s <%s>\n", m.Name, m.Email)
			fmt.Fprintf(out, "Subject: %s\n", m.Subject)
			fmt.Fprintf(out, "Date:    %s\n\n", m.CreatedAt.Local().Format(time.RFC1123))
			fmt.Fprintln(out, m.Message)
			return nil
		},
	})
	return cmd
}

func renderInbox(messages []domain.Message) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "", "DATE", "FROM", "SUBJECT").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(messages) && !messages[row].Read {
				return unreadStyle
			}
			return cellStyle
		})
	for _, m := range messages {
		mark := " "
		if !m.Read {
			mark = "●"
		}
		t.Row(
			strconv.FormatUint(uint64(m.ID), 10),
			mark,
			m.CreatedAt.Local().Format("2006-01-02 15:04"),
			m.Name+" <"+m.Email+">",
			truncate(m.Subject, 48),
		)
	}
	return t.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func newWatchCmd(a *app) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the unread inquiry count until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.adminClient()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			last := int64(-1)
			c.PollUnread(ctx, interval, func(count int64, err error) {
				if err != nil {
					if ctx.Err() == nil {
						a.logger.Warn("poll failed", "error", err)
					}
					return
				}
				if count != last {
					fmt.Fprintf(out, "%s  %d unread\n", time.Now().Format("15:04:05"), count)
					last = count
				}
			})
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "Polling interval")
	return cmd
}
