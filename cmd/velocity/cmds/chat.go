package cmds

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/velocity/pkg/copilot"
	"github.com/go-go-golems/velocity/pkg/history"
)

const welcome = "Hello! I'm Velocity, your sales copilot. Ask me to draft a proposal, a handoff, a meeting brief or a follow-up email."

func NewChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long:  "Start an interactive chat session. Type 'exit' or send EOF to quit; the session is saved to the history store.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			r := rendererFromFlags(cmd)
			out := cmd.OutOrStdout()

			var messages []history.Message
			err = runWithEvents(ctx, out, func(ctx context.Context) error {
				var lerr error
				messages, lerr = chatLoop(ctx, os.Stdin, out, r, a.service.SendMessage)
				return lerr
			})

			if s, ok, serr := a.service.SaveChat(context.WithoutCancel(ctx), messages); serr != nil {
				log.Warn().Err(serr).Msg("Could not save chat session")
			} else if ok {
				log.Info().Str("session", s.ID).Str("title", s.Title).Msg("Saved chat session")
			}
			return err
		},
	}
	addRenderFlags(cmd)
	return cmd
}

type sendFunc func(ctx context.Context, past []history.Message, text string) (*copilot.Reply, error)

// chatLoop greets the user, then answers prompts read from in until EOF or "exit".
// It returns the chat as the user saw it, welcome message included.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, r renderer, send sendFunc) ([]history.Message, error) {
	messages := []history.Message{history.NewWelcomeMessage(welcome)}
	if err := r.markdown(out, welcome); err != nil {
		return messages, err
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return messages, scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			return messages, nil
		}

		rep, err := send(ctx, messages, text)
		if err != nil {
			return messages, err
		}
		messages = append(messages, history.NewMessage(history.RoleUser, text))
		m := history.NewMessage(history.RoleModel, rep.Text)
		if rep.Artifact != nil {
			content := rep.Artifact.Content
			m.Artifact = &content
		}
		messages = append(messages, m)
		if err := r.reply(out, rep); err != nil {
			return messages, err
		}
	}
}
