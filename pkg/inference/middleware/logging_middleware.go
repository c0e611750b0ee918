package middleware

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/velocity/pkg/inference/engine"
	"github.com/go-go-golems/velocity/pkg/turns"
)

// NewLoggingMiddleware logs the transcript shape before each backend call and the
// outcome after it.
func NewLoggingMiddleware(logger zerolog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *engine.Request) (*engine.Response, error) {
			lg := logger
			// fall back to global if uninitialized
			if lg.GetLevel() == zerolog.NoLevel {
				lg = log.Logger
			}

			counts := map[turns.BlockKind]int{}
			turnID := ""
			if req.Turn != nil {
				turnID = req.Turn.ID
				for _, b := range req.Turn.Blocks {
					counts[b.Kind]++
				}
			}
			lg = lg.With().
				Str("turn_id", turnID).
				Int("user_blocks", counts[turns.BlockKindUser]).
				Int("llm_text_blocks", counts[turns.BlockKindLLMText]).
				Int("tool_call_blocks", counts[turns.BlockKindToolCall]).
				Int("tool_use_blocks", counts[turns.BlockKindToolUse]).
				Int("tools", len(req.Tools)).
				Logger()

			lg.Debug().Msg("inference: starting")
			start := time.Now()
			resp, err := next(ctx, req)
			if err != nil {
				lg.Warn().Err(err).Dur("duration", time.Since(start)).Msg("inference: failed")
				return resp, err
			}

			ev := lg.Debug().Dur("duration", time.Since(start))
			if resp != nil {
				names := make([]string, 0, len(resp.ToolCalls))
				for _, c := range resp.ToolCalls {
					names = append(names, c.Name)
				}
				ev = ev.Int("text_len", len(resp.Text)).Strs("tool_calls", names).Str("stop_reason", resp.StopReason)
			}
			ev.Msg("inference: completed")
			return resp, nil
		}
	}
}
