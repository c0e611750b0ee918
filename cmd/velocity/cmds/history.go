package cmds

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect saved chat sessions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			sessions, err := a.service.History().ListSessions(ctx)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				return rendererFromFlags(cmd).markdown(cmd.OutOrStdout(), "_no saved sessions_")
			}
			var sb strings.Builder
			for _, s := range sessions {
				fmt.Fprintf(&sb, "### %s\n\n%s · %d messages\n\n> %s\n\n", s.Title, s.Date.Format("2006-01-02 15:04"), len(s.Messages), s.PreviewText)
			}
			return rendererFromFlags(cmd).markdown(cmd.OutOrStdout(), sb.String())
		},
	}
	addRenderFlags(list)

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.service.History().Clear(ctx)
		},
	}

	cmd.AddCommand(list, clearCmd)
	return cmd
}
