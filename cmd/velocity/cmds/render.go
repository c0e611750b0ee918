package cmds

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/velocity/pkg/copilot"
)

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("raw", false, "Print markdown without rendering")
	cmd.Flags().String("style", "dark", "Glamour style (dark, light, notty)")
}

type renderer struct {
	raw   bool
	style string
}

func rendererFromFlags(cmd *cobra.Command) renderer {
	raw, _ := cmd.Flags().GetBool("raw")
	style, _ := cmd.Flags().GetString("style")
	return renderer{raw: raw, style: style}
}

func (r renderer) markdown(w io.Writer, md string) error {
	if r.raw {
		_, err := fmt.Fprintln(w, md)
		return err
	}
	styled, err := glamour.Render(md, r.style)
	if err != nil {
		log.Debug().Err(err).Msg("Could not render markdown")
		styled = md + "\n"
	}
	_, err = fmt.Fprint(w, styled)
	return err
}

// reply renders a copilot reply: reasoning, text, sources and the saved artifact.
func (r renderer) reply(w io.Writer, rep *copilot.Reply) error {
	var sb strings.Builder
	if len(rep.Reasoning) > 0 {
		sb.WriteString("**Reasoning**\n\n")
		for _, s := range rep.Reasoning {
			sb.WriteString("- " + s + "\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(rep.Text)
	sb.WriteString("\n")
	if len(rep.References) > 0 {
		sb.WriteString("\n**Sources**\n\n")
		for _, ref := range rep.References {
			fmt.Fprintf(&sb, "- [%s] %s", ref.Type, ref.Title)
			if ref.KeyPoint != "" {
				sb.WriteString(": " + ref.KeyPoint)
			}
			sb.WriteString("\n")
		}
	}
	if a := rep.Artifact; a != nil {
		fmt.Fprintf(&sb, "\n> Saved artifact **%s** (`%s`)\n", a.Title, a.ID)
		if a.Content.AudioContent != "" {
			sb.WriteString("> includes a voice-over audio track\n")
		}
		if a.Content.VideoURI != "" {
			fmt.Fprintf(&sb, "> video: %s\n", a.Content.VideoURI)
		}
	}
	if rep.Truncated {
		sb.WriteString("\n_stopped after the maximum number of tool rounds_\n")
	}
	return r.markdown(w, sb.String())
}
