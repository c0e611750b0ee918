package toolloop

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/velocity/pkg/events"
	"github.com/go-go-golems/velocity/pkg/inference/engine"
	"github.com/go-go-golems/velocity/pkg/inference/toolblocks"
	"github.com/go-go-golems/velocity/pkg/inference/tools"
	"github.com/go-go-golems/velocity/pkg/turns"
)

// Loop runs one user request to completion: backend call, tool execution,
// results appended, backend call again, until the model answers without
// invocations or the round cap is reached.
type Loop struct {
	eng      engine.Engine
	registry tools.ToolRegistry
	loopCfg  LoopConfig

	executor tools.ToolExecutor

	snapshotHook SnapshotHook
}

type Option func(*Loop)

func New(opts ...Option) *Loop {
	l := &Loop{
		loopCfg: DefaultLoopConfig(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

func WithEngine(eng engine.Engine) Option {
	return func(l *Loop) { l.eng = eng }
}

func WithRegistry(reg tools.ToolRegistry) Option {
	return func(l *Loop) { l.registry = reg }
}

// WithToolbox sets the registry and an Executor over the toolbox.
func WithToolbox(tb *tools.Toolbox, cfg tools.ToolConfig) Option {
	return func(l *Loop) {
		l.registry = tb.Registry()
		l.executor = tools.NewExecutor(tb, cfg)
	}
}

func WithLoopConfig(cfg LoopConfig) Option {
	return func(l *Loop) { l.loopCfg = cfg }
}

func WithExecutor(exec tools.ToolExecutor) Option {
	return func(l *Loop) { l.executor = exec }
}

func WithSnapshotHook(h SnapshotHook) Option {
	return func(l *Loop) { l.snapshotHook = h }
}

// Result is the outcome of RunLoop.
type Result struct {
	// Turn is the transcript including every appended block.
	Turn *turns.Turn
	// Text is the final answer, never empty.
	Text string
	// Iterations is the number of tool rounds executed.
	Iterations int
	// BackendCalls counts calls to the engine.
	BackendCalls int
	// Truncated is set when the round cap stopped the loop while the model still asked for tools.
	Truncated bool
}

func (l *Loop) snapshot(ctx context.Context, t *turns.Turn, phase string) {
	if l.snapshotHook != nil {
		l.snapshotHook(ctx, t, phase)
		return
	}
	if h, ok := TurnSnapshotHookFromContext(ctx); ok {
		h(ctx, t, phase)
	}
}

func (l *Loop) maxIterations() int {
	if l.loopCfg.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return l.loopCfg.MaxIterations
}

// RunLoop appends to t in place. The backend only ever sees clones of it.
//
// Tool failures never end the loop, they are handed back to the model as error
// results. Backend failures are returned unchanged (wrapped), so callers can
// classify them with engine.IsBackendUnavailable.
func (l *Loop) RunLoop(ctx context.Context, t *turns.Turn) (*Result, error) {
	if l == nil {
		return nil, errors.New("tool loop is nil")
	}
	if l.eng == nil {
		return nil, errors.New("tool loop engine is nil")
	}
	if l.registry == nil {
		return nil, errors.New("tool loop registry is nil")
	}
	if l.executor == nil {
		return nil, errors.New("tool loop executor is nil")
	}
	if t == nil {
		t = &turns.Turn{}
	}

	system := l.loopCfg.SystemInstruction
	if system == "" {
		system = turns.SystemPrompt(t)
	}
	declared := l.registry.ListTools()

	baseMeta := events.MetadataFromContext(ctx)
	if baseMeta.TurnID == "" {
		baseMeta.TurnID = t.ID
	}
	if n, ok := l.eng.(engine.Named); ok {
		baseMeta.Provider = n.Provider()
		baseMeta.Model = n.Model()
		t.SetMetadata(turns.MetaKeyProvider, n.Provider())
		if n.Model() != "" {
			t.SetMetadata(turns.MetaKeyModel, n.Model())
		}
	}

	maxIterations := l.maxIterations()
	res := &Result{Turn: t}

	for {
		md := baseMeta
		md.Iteration = res.BackendCalls + 1
		iterCtx := events.WithEventMetadata(ctx, md)

		log.Debug().Int("call", md.Iteration).Int("blocks", t.Len()).Msg("toolloop: engine inference step")
		l.snapshot(iterCtx, t, PhasePreInference)
		events.PublishEventToContext(iterCtx, events.NewStartEvent(events.MetadataFromContext(iterCtx)))

		start := time.Now()
		resp, err := l.eng.RunInference(iterCtx, &engine.Request{
			Turn:              t.Clone(),
			Tools:             declared,
			SystemInstruction: system,
		})
		res.BackendCalls++
		if err != nil {
			events.PublishEventToContext(iterCtx, events.NewErrorEvent(events.MetadataFromContext(iterCtx), err))
			return nil, errors.Wrapf(err, "backend call %d", md.Iteration)
		}
		if resp == nil {
			resp = &engine.Response{}
		}
		log.Debug().
			Int("call", md.Iteration).
			Int("tool_calls", len(resp.ToolCalls)).
			Dur("duration", time.Since(start)).
			Msg("toolloop: engine responded")

		if !resp.HasToolCalls() {
			l.finish(iterCtx, res, resp)
			return res, nil
		}

		if res.Iterations >= maxIterations {
			// pending invocations are dropped so the transcript never holds an unanswered call
			log.Warn().Int("max_iterations", maxIterations).Int("dropped_calls", len(resp.ToolCalls)).Msg("toolloop: maximum iterations reached")
			res.Truncated = true
			l.finish(iterCtx, res, resp)
			return res, nil
		}

		if resp.Text != "" {
			turns.AppendBlock(t, turns.NewAssistantTextBlock(resp.Text))
		}
		calls := toolblocks.AppendToolCallBlocks(t, resp.ToolCalls)
		for _, c := range calls {
			events.PublishEventToContext(iterCtx, events.NewToolCallEvent(
				events.MetadataFromContext(iterCtx),
				events.ToolCall{ID: c.ID, Name: c.Name, Input: string(c.ArgumentsJSON())},
			))
		}
		l.snapshot(iterCtx, t, PhasePostInference)

		pending := toolblocks.ExtractPendingToolCalls(t)
		results, err := l.executor.ExecuteToolCalls(iterCtx, toolblocks.ToExecutorCalls(pending))
		if err != nil {
			return nil, errors.Wrap(err, "execute tools")
		}
		toolblocks.AppendToolResultsBlocks(t, toolblocks.FromExecutorResults(results))
		res.Iterations++
		l.snapshot(iterCtx, t, PhasePostTools)
	}
}

func (l *Loop) finish(ctx context.Context, res *Result, resp *engine.Response) {
	t := res.Turn
	text := resp.Text
	if strings.TrimSpace(text) != "" {
		turns.AppendBlock(t, turns.NewAssistantTextBlock(text))
	} else {
		text = NoTextNotice
	}
	res.Text = text

	t.SetMetadata(turns.MetaKeyIterations, res.Iterations)
	t.SetMetadata(turns.MetaKeyTruncated, res.Truncated)
	if resp.StopReason != "" {
		t.SetMetadata(turns.MetaKeyStopReason, resp.StopReason)
	}
	l.snapshot(ctx, t, PhaseFinal)
	events.PublishEventToContext(ctx, events.NewFinalEvent(events.MetadataFromContext(ctx), text))
}
