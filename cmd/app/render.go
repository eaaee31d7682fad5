package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"reelstitch/internal/config"
	"reelstitch/internal/domain/model"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	narration string
	videos    []string
	out       string
	width     int
	height    int
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var opts renderOptions
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Run one stitch job locally and write the result to a file",
		Example: `  reelstitch render --narration https://cdn.example.com/voice.mp3 \
    --video https://cdn.example.com/a.mp4 --video https://cdn.example.com/b.mp4 \
    --video https://cdn.example.com/c.mp4 --out reel.mp4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(opts.out) == "" {
				return errors.New("--out is required")
			}
			path, err := render(cmd.Context(), cfg, ctx.logger(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.narration, "narration", "", "Narration audio URL")
	cmd.Flags().StringArrayVar(&opts.videos, "video", nil, "Video clip URL (repeat three times, in order)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output file")
	cmd.Flags().IntVar(&opts.width, "width", 0, "Output width (default from config)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "Output height (default from config)")
	return cmd
}

// render runs the pipeline in a private scratch root so it never contends
// with a running server for the configured one.
func render(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, opts renderOptions) (string, error) {
	root, err := os.MkdirTemp("", "reelstitch-render-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(root)

	p := newPipeline(cfg, root, logger)
	if err := p.scratch.Init(); err != nil {
		return "", err
	}

	job, err := p.stitch.NewJob(model.JobRequest{
		NarrationURL: opts.narration,
		VideoURLs:    opts.videos,
		Width:        opts.width,
		Height:       opts.height,
	})
	if err != nil {
		return "", err
	}
	entry, err := p.stitch.Run(ctx, job, func(stage model.Stage) {
		logger.Info().Str("job_id", job.ID).Str("stage", string(stage)).Msg("stage")
	})
	if err != nil {
		return "", err
	}

	out, err := filepath.Abs(opts.out)
	if err != nil {
		return "", err
	}
	if err := copyFile(entry.FilePath, out); err != nil {
		return "", err
	}
	return out, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".reelstitch-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("copy result: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
