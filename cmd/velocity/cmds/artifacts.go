package cmds

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/velocity/pkg/artifacts"
)

func NewArtifactsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Browse and edit generated artifacts",
	}
	cmd.AddCommand(newArtifactsListCommand(), newArtifactsShowCommand(), newArtifactsRefineCommand(), newArtifactsEmailCommand())
	return cmd
}

func newArtifactsListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List artifacts, most recently modified first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.service.Artifacts().List(ctx)
			if err != nil {
				return err
			}
			var sb strings.Builder
			sb.WriteString("| ID | Title | Kind | Status | Modified |\n|---|---|---|---|---|\n")
			for _, ar := range list {
				fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
					ar.ID, ar.Title, ar.Kind.Label(), ar.Status, ar.LastModified.Format("2006-01-02 15:04"))
			}
			return rendererFromFlags(cmd).markdown(cmd.OutOrStdout(), sb.String())
		},
	}
	addRenderFlags(cmd)
	return cmd
}

func getArtifact(cmd *cobra.Command, a *app, id string) (artifacts.Artifact, error) {
	ar, ok, err := a.service.Artifacts().Get(cmd.Context(), id)
	if err != nil {
		return artifacts.Artifact{}, err
	}
	if !ok {
		return artifacts.Artifact{}, errors.Errorf("artifact %s not found", id)
	}
	return ar, nil
}

func newArtifactsShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Render the document (or slides) of an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ar, err := getArtifact(cmd, a, args[0])
			if err != nil {
				return err
			}
			slides, _ := cmd.Flags().GetBool("slides")
			md, what := ar.Content.DocumentContent, "document"
			if slides {
				md, what = ar.Content.PresentationContent, "slide"
			}
			if md == "" {
				md = fmt.Sprintf("_%s has no %s content_", ar.Title, what)
			}
			if ar.Content.VideoURI != "" {
				md += fmt.Sprintf("\n\nVideo: %s\n", ar.Content.VideoURI)
			}
			return rendererFromFlags(cmd).markdown(cmd.OutOrStdout(), md)
		},
	}
	cmd.Flags().Bool("slides", false, "Show the presentation instead of the document")
	addRenderFlags(cmd)
	return cmd
}

func newArtifactsRefineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refine <id>",
		Short: "Rewrite the document of an artifact following an instruction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instruction, _ := cmd.Flags().GetString("instruction")
			selected, _ := cmd.Flags().GetString("selected")
			if instruction == "" {
				return errors.New("--instruction is required")
			}
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ar, err := a.service.RefineAndSave(cmd.Context(), args[0], selected, instruction)
			if err != nil {
				return err
			}
			return rendererFromFlags(cmd).markdown(cmd.OutOrStdout(), ar.Content.DocumentContent)
		},
	}
	cmd.Flags().String("instruction", "", "What to change")
	cmd.Flags().String("selected", "", "Passage the instruction refers to")
	addRenderFlags(cmd)
	return cmd
}

func newArtifactsEmailCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "email <id>",
		Short: "Draft a cover email for sending an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ar, err := getArtifact(cmd, a, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), a.service.DraftEmailForArtifact(cmd.Context(), ar))
			return err
		},
	}
	return cmd
}
