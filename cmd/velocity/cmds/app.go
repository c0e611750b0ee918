package cmds

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/go-go-golems/velocity/pkg/artifacts"
	"github.com/go-go-golems/velocity/pkg/copilot"
	"github.com/go-go-golems/velocity/pkg/crm"
	"github.com/go-go-golems/velocity/pkg/events"
	"github.com/go-go-golems/velocity/pkg/fallback"
	"github.com/go-go-golems/velocity/pkg/generation"
	"github.com/go-go-golems/velocity/pkg/history"
	"github.com/go-go-golems/velocity/pkg/inference/engine/factory"
	"github.com/go-go-golems/velocity/pkg/inference/middleware"
	"github.com/go-go-golems/velocity/pkg/inference/toolloop"
	"github.com/go-go-golems/velocity/pkg/inference/tools"
	"github.com/go-go-golems/velocity/pkg/steps/ai/settings"
	"github.com/go-go-golems/velocity/pkg/turns"
	"github.com/go-go-golems/velocity/pkg/turns/serde"
	"github.com/go-go-golems/velocity/pkg/velocity"
)

// AddSettingsFlags registers the flags read by settings.StepSettings.UpdateFromViper
// and by the application wiring.
func AddSettingsFlags(pf *pflag.FlagSet) {
	pf.String("provider", "", "Model provider (gemini, openai, claude)")
	pf.String("model", "", "Model name")
	pf.String("api-key", "", "API key of the selected provider")
	pf.String("base-url", "", "Base URL of the selected provider")
	pf.String("gemini-api-key", "", "Gemini API key, also used for video generation")
	pf.String("openai-api-key", "", "OpenAI API key, also used for speech synthesis")
	pf.String("claude-api-key", "", "Anthropic API key")
	pf.Float64("temperature", 0, "Sampling temperature")
	pf.Int("max-response-tokens", 0, "Maximum tokens per response")
	pf.Duration("timeout", 0, "HTTP client timeout")

	pf.Int("max-iterations", toolloop.DefaultMaxIterations, "Maximum tool rounds per request")
	pf.Int("max-parallel-tools", tools.DefaultMaxParallelTools, "Tool calls of one round executed at once")
	pf.Duration("tool-timeout", 0, "Timeout of a single tool call (0 disables)")

	pf.String("speech-provider", "", "Speech provider (gemini, openai); default follows the configured keys")
	pf.String("speech-model", "", "Speech synthesis model")
	pf.String("speech-voice", "", "Speech synthesis voice")
	pf.String("video-model", "", "Video generation model")
	pf.Duration("video-poll-interval", 0, "Interval between video operation polls")
	pf.Int("video-max-polls", 0, "Maximum number of video operation polls")

	pf.String("history-db", "", "SQLite database for chat history (default: in memory)")
	pf.String("artifacts-db", "", "SQLite database for artifacts (default: in memory)")
	pf.String("crm-data", "", "YAML file with CRM data (default: built-in dataset)")

	pf.Bool("print-events", false, "Print orchestration events")
	pf.Bool("raw-events", false, "Print events as JSON instead of a readable trace (with --print-events)")
	pf.String("dump-turns", "", "Directory to write transcript snapshots to")
}

// app is the wired service plus what needs closing.
type app struct {
	settings *settings.StepSettings
	service  *copilot.Service
	closers  []io.Closer
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("Could not close store")
		}
	}
}

func loadSettings() (*settings.StepSettings, error) {
	s := settings.NewStepSettings()
	if err := s.UpdateFromViper(viper.GetViper()); err != nil {
		return nil, err
	}
	return s, nil
}

func newApp(ctx context.Context) (*app, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}
	ret := &app{settings: s}

	dir, err := crm.LoadFile(viper.GetString("crm-data"))
	if err != nil {
		return nil, err
	}

	eng, err := factory.NewStandardEngineFactory().CreateEngine(s)
	if err != nil {
		return nil, errors.Wrap(err, "create engine")
	}
	eng = middleware.NewEngineWithMiddleware(eng, middleware.NewLoggingMiddleware(log.Logger))

	tb, err := velocity.NewToolbox(velocity.Services{
		Directory: dir,
		Generator: generation.NewLLMGenerator(eng),
		Speech:    generation.NewSpeechSynthesizer(s),
		Video:     generation.NewVeoGenerator(s),
	})
	if err != nil {
		return nil, err
	}

	repo, err := ret.artifactRepository(ctx)
	if err != nil {
		ret.Close()
		return nil, err
	}
	store, err := ret.historyStore()
	if err != nil {
		ret.Close()
		return nil, err
	}

	toolCfg := tools.DefaultToolConfig().
		WithMaxParallelTools(s.Tools.MaxParallelTools).
		WithExecutionTimeout(s.Tools.ToolTimeout)
	loopCfg := toolloop.DefaultLoopConfig().
		WithMaxIterations(s.Tools.MaxIterations).
		WithSystemInstruction(velocity.SystemInstruction)

	opts := []copilot.Option{
		copilot.WithToolConfig(toolCfg),
		copilot.WithLoopConfig(loopCfg),
		copilot.WithArtifactRepository(repo),
		copilot.WithHistoryStore(store),
	}
	if d := viper.GetString("dump-turns"); d != "" {
		hook, err := turnDumper(d)
		if err != nil {
			ret.Close()
			return nil, err
		}
		opts = append(opts, copilot.WithSnapshotHook(hook))
	}

	ret.service, err = copilot.NewService(eng, tb, fallback.NewResponder(dir), opts...)
	if err != nil {
		ret.Close()
		return nil, err
	}
	log.Debug().Fields(s.GetMetadata()).Msg("Velocity ready")
	return ret, nil
}

func (a *app) artifactRepository(ctx context.Context) (artifacts.Repository, error) {
	var repo artifacts.Repository
	if p := a.settings.Storage.ArtifactsDB; p != "" {
		r, err := artifacts.NewSQLiteRepository(p)
		if err != nil {
			return nil, errors.Wrap(err, "open artifacts db")
		}
		a.closers = append(a.closers, r)
		repo = r
	} else {
		repo = artifacts.NewMemoryRepository()
	}
	if err := artifacts.SeedSamples(ctx, repo); err != nil {
		return nil, errors.Wrap(err, "seed sample artifacts")
	}
	return repo, nil
}

func (a *app) historyStore() (history.Store, error) {
	p := a.settings.Storage.HistoryDB
	if p == "" {
		return history.NewMemoryStore(), nil
	}
	s, err := history.NewSQLiteStore(p)
	if err != nil {
		return nil, errors.Wrap(err, "open history db")
	}
	a.closers = append(a.closers, s)
	return s, nil
}

// turnDumper writes every snapshot of the transcript to dir as numbered YAML files.
func turnDumper(dir string) (toolloop.SnapshotHook, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create dump directory")
	}
	var n atomic.Int64
	return func(_ context.Context, t *turns.Turn, phase string) {
		path := filepath.Join(dir, fmt.Sprintf("%03d-%s.yaml", n.Add(1), phase))
		if err := serde.SaveTurnYAML(path, t); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Could not dump turn")
		}
	}, nil
}

// runWithEvents runs fn, routing orchestration events to w when --print-events is set.
func runWithEvents(ctx context.Context, w io.Writer, fn func(ctx context.Context) error) error {
	if !viper.GetBool("print-events") {
		return fn(ctx)
	}

	var opts []events.EventRouterOption
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		opts = append(opts, events.WithVerbose(true))
	}
	router, err := events.NewEventRouter(opts...)
	if err != nil {
		return errors.Wrap(err, "create event router")
	}
	defer func() { _ = router.Close() }()
	if viper.GetBool("raw-events") {
		router.AddHandler("velocity", events.DefaultTopic, router.DumpRawEvents(w))
	} else {
		router.AddHandler("velocity", events.DefaultTopic, events.StepPrinterFunc("", w))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg := errgroup.Group{}
	eg.Go(func() error {
		defer cancel()
		return router.Run(ctx)
	})
	eg.Go(func() error {
		defer cancel()
		<-router.Running()
		return fn(events.WithEventSinks(ctx, router.Sink(events.DefaultTopic)))
	})
	return eg.Wait()
}
