package cmds

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/velocity/pkg/turns"
)

func NewAskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <message...>",
		Short: "Send a single message and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			out := cmd.OutOrStdout()
			asYAML, _ := cmd.Flags().GetBool("yaml")
			printTurn, _ := cmd.Flags().GetBool("print-turn")

			return runWithEvents(ctx, out, func(ctx context.Context) error {
				rep, err := a.service.SendMessage(ctx, nil, strings.Join(args, " "))
				if err != nil {
					return err
				}
				if printTurn {
					turns.FprintTurn(out, rep.Turn)
				}
				if asYAML {
					enc := yaml.NewEncoder(out)
					enc.SetIndent(2)
					return enc.Encode(map[string]any{
						"text":       rep.Text,
						"reasoning":  rep.Reasoning,
						"references": rep.References,
						"artifact":   rep.Artifact,
						"offline":    rep.Offline,
						"iterations": rep.Iterations,
						"truncated":  rep.Truncated,
					})
				}
				return rendererFromFlags(cmd).reply(out, rep)
			})
		},
	}
	cmd.Flags().Bool("yaml", false, "Print the reply as YAML")
	cmd.Flags().Bool("print-turn", false, "Print the transcript of the request before the reply")
	addRenderFlags(cmd)
	return cmd
}
