package turns

import (
	"fmt"
	"io"
	"strings"
)

// FprintTurn prints a turn as a chat transcript.
func FprintTurn(w io.Writer, t *Turn) {
	if t == nil {
		return
	}
	for _, b := range t.Blocks {
		switch b.Kind {
		case BlockKindSystem:
			fmt.Fprintf(w, "system: %s\n", abbreviate(b.Text(), 80))
		case BlockKindUser:
			fmt.Fprintf(w, "user: %s\n", b.Text())
		case BlockKindLLMText:
			fmt.Fprintf(w, "assistant: %s\n", b.Text())
		case BlockKindToolCall:
			call, _ := b.ToolCall()
			fmt.Fprintf(w, "tool_call[%s]: %s %s\n", call.ID, call.Name, string(call.ArgumentsJSON()))
		case BlockKindToolUse:
			res, _ := b.ToolResult()
			fmt.Fprintf(w, "tool_use[%s]: %s\n", res.ID, abbreviate(res.ResponseJSON(), 120))
		}
	}
}

func abbreviate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
