package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"time"

	"reelstitch/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var _ adapter.Transcoder = (*Transcoder)(nil)

// Transcoder runs the base-build and final-mux stages with ffmpeg.
type Transcoder struct {
	bin    string
	enc    Encoding
	runner adapter.CommandRunner
	log    *zerolog.Logger
}

// NewTranscoder returns a Transcoder invoking bin ("ffmpeg" when empty).
func NewTranscoder(bin string, enc Encoding, runner adapter.CommandRunner, logger *zerolog.Logger) *Transcoder {
	if bin == "" {
		bin = "ffmpeg"
	}
	l := logger.With().Str("component", "ffmpeg").Logger()
	return &Transcoder{bin: bin, enc: enc, runner: runner, log: &l}
}

// BuildBase writes the concat list for spec.Inputs and produces their
// normalized, silent concatenation.
func (t *Transcoder) BuildBase(ctx context.Context, spec adapter.BaseSpec) error {
	if spec.Width <= 0 || spec.Height <= 0 || spec.FPS <= 0 {
		return fmt.Errorf("base build: invalid geometry %dx%d@%d", spec.Width, spec.Height, spec.FPS)
	}
	if len(spec.Inputs) == 0 {
		return fmt.Errorf("base build: no inputs")
	}
	if err := os.WriteFile(spec.ListPath, []byte(ConcatList(spec.Inputs)), 0o644); err != nil {
		return fmt.Errorf("base build: write concat list: %w", err)
	}
	return t.run(ctx, "base_build", BaseArgs(spec, t.enc))
}

// Mux lays the narration over the looped base clip.
func (t *Transcoder) Mux(ctx context.Context, spec adapter.FinalSpec) error {
	return t.run(ctx, "final_mux", FinalArgs(spec, t.enc))
}

func (t *Transcoder) run(ctx context.Context, step string, args []string) error {
	start := time.Now()
	if _, err := t.runner.Run(ctx, t.bin, args...); err != nil {
		t.log.Debug().Str("step", step).Err(err).Msg("ffmpeg failed")
		return fmt.Errorf("%s: %w", step, err)
	}
	t.log.Debug().Str("step", step).Dur("duration", time.Since(start)).Msg("ffmpeg finished")
	return nil
}
