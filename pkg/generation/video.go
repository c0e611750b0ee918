package generation

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	genai "google.golang.org/genai"

	"github.com/go-go-golems/velocity/pkg/security"
	"github.com/go-go-golems/velocity/pkg/steps/ai/settings"
)

// ErrVideoNotReady is returned when the operation is still running after the last poll.
var ErrVideoNotReady = errors.New("video: operation did not finish in time")

// VideoGenerator renders a short video from a prompt and returns a playable URI.
type VideoGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// VideoOperations is the part of the genai client that starts and polls video operations.
type VideoOperations interface {
	GenerateVideos(ctx context.Context, model string, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error)
	GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation, config *genai.GetOperationConfig) (*genai.GenerateVideosOperation, error)
}

type clientVideoOperations struct {
	client *genai.Client
}

func (c clientVideoOperations) GenerateVideos(ctx context.Context, model string, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
	return c.client.Models.GenerateVideos(ctx, model, prompt, image, config)
}

func (c clientVideoOperations) GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation, config *genai.GetOperationConfig) (*genai.GenerateVideosOperation, error) {
	return c.client.Operations.GetVideosOperation(ctx, op, config)
}

// VeoGenerator starts a long-running Veo operation and polls it until done.
type VeoGenerator struct {
	settings *settings.StepSettings
	ops      VideoOperations
}

var _ VideoGenerator = (*VeoGenerator)(nil)

type VeoOption func(*VeoGenerator)

// WithVideoOperations replaces the genai client built from the settings.
func WithVideoOperations(ops VideoOperations) VeoOption {
	return func(g *VeoGenerator) {
		g.ops = ops
	}
}

func NewVeoGenerator(s *settings.StepSettings, opts ...VeoOption) *VeoGenerator {
	g := &VeoGenerator{settings: s}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *VeoGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	apiKey, err := geminiKey(g.settings)
	if err != nil {
		return "", errors.Wrap(err, "video")
	}
	ops := g.ops
	if ops == nil {
		client, err := makeGenaiClient(ctx, g.settings, apiKey)
		if err != nil {
			return "", errors.Wrap(err, "video")
		}
		ops = clientVideoOperations{client: client}
	}
	media := mediaSettings(g.settings)

	op, err := ops.GenerateVideos(ctx, media.VideoModel, prompt, nil, &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
		AspectRatio:    "16:9",
		Resolution:     "720p",
	})
	if err != nil {
		return "", errors.Wrap(err, "video: generate")
	}
	if op == nil {
		return "", errors.New("video: no operation returned")
	}

	for polls := 0; !op.Done && polls < media.VideoMaxPolls; polls++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(media.VideoPollInterval):
		}
		next, err := ops.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return "", errors.Wrap(err, "video: poll")
		}
		if next != nil {
			op = next
		}
		log.Debug().Str("operation", op.Name).Int("poll", polls+1).Bool("done", op.Done).Msg("Polled video operation")
	}

	if !op.Done {
		return "", ErrVideoNotReady
	}
	if op.Error != nil {
		return "", errors.Errorf("video: operation failed: %v", op.Error["message"])
	}
	uri := videoURI(op)
	if uri == "" {
		return "", errors.New("video: operation returned no video")
	}
	// the key is appended to the download link, so it must point somewhere public over https
	if err := security.ValidateDownloadURL(uri); err != nil {
		return "", errors.Wrap(err, "video: refusing download link")
	}
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	return uri + sep + "key=" + apiKey, nil
}

func videoURI(op *genai.GenerateVideosOperation) string {
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 {
		return ""
	}
	v := op.Response.GeneratedVideos[0]
	if v == nil || v.Video == nil {
		return ""
	}
	return v.Video.URI
}
