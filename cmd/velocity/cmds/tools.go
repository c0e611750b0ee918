package cmds

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/velocity/pkg/velocity"
)

func NewToolsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools offered to the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			withSchema, _ := cmd.Flags().GetBool("schema")
			defs := velocity.Definitions()

			if withSchema {
				schemas := make([]map[string]any, 0, len(defs))
				for _, d := range defs {
					schemas = append(schemas, map[string]any{
						"name":        d.Name,
						"description": d.Description,
						"parameters":  d.SchemaMap(),
					})
				}
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				return enc.Encode(schemas)
			}

			var sb strings.Builder
			sb.WriteString("| Tool | Parameters | Description |\n|---|---|---|\n")
			for _, d := range defs {
				fmt.Fprintf(&sb, "| %s | %s | %s |\n", d.Name, strings.Join(d.RequiredParameters(), ", "), d.Description)
			}
			return rendererFromFlags(cmd).markdown(out, sb.String())
		},
	}
	cmd.Flags().Bool("schema", false, "Print the JSON schema of every tool as YAML")
	addRenderFlags(cmd)
	return cmd
}
