package events

import (
	"fmt"
	"io"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// StepPrinterFunc returns a handler that renders orchestration events as a readable trace.
func StepPrinterFunc(name string, w io.Writer) func(msg *message.Message) error {
	isFirst := true

	return func(msg *message.Message) error {
		defer msg.Ack()

		e, err := NewEventFromJson(msg.Payload)
		if err != nil {
			log.Warn().Err(err).Msg("could not decode event")
			return nil
		}

		if isFirst && name != "" {
			isFirst = false
			if _, err := fmt.Fprintf(w, "\n%s:\n", name); err != nil {
				return err
			}
		}

		switch p_ := e.(type) {
		case *EventStart:
			_, err = fmt.Fprintf(w, "--- call %d (%s) ---\n", p_.Metadata_.Iteration, p_.Metadata_.Provider)

		case *EventToolCall:
			err = printYAML(w, "tool call", p_.ToolCall)

		case *EventToolCallExecute:
			_, err = fmt.Fprintf(w, "> executing %s\n", p_.ToolCall.Name)

		case *EventToolCallExecutionResult:
			err = printYAML(w, "tool result", p_.ToolResult)

		case *EventFallback:
			_, err = fmt.Fprintf(w, "[offline] %s\n", p_.Reason)

		case *EventArtifact:
			_, err = fmt.Fprintf(w, "[artifact] %s (%s)\n", p_.Title, p_.ArtifactID)

		case *EventError:
			_, err = fmt.Fprintf(w, "[error] %s\n", p_.ErrorString)

		case *EventInfo:
			if _, err = fmt.Fprintf(w, "[i] %s\n", p_.Message); err != nil {
				return err
			}
			if len(p_.Data) > 0 {
				err = printYAML(w, "", p_.Data)
			}

		case *EventFinal:
			_, err = fmt.Fprintf(w, "--- done (%d chars) ---\n", len(p_.Text))
		}

		return err
	}
}

func printYAML(w io.Writer, label string, v interface{}) error {
	v_, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	if label != "" {
		if _, err := fmt.Fprintf(w, "%s:\n", label); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "%s", v_)
	return err
}
