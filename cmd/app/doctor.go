package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"reelstitch/internal/config"
	"reelstitch/internal/infra/deps"
	"reelstitch/internal/infra/logging"
	"reelstitch/internal/infra/procexec"
	red "reelstitch/internal/infra/redis"

	"github.com/spf13/cobra"
)

type check struct {
	name   string
	ok     bool
	detail string
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, scratch storage and optional services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			checks := runChecks(cmd.Context(), cfg)

			rows := make([][]string, 0, len(checks))
			failed := 0
			for _, c := range checks {
				state := "ok"
				if !c.ok {
					state = "FAIL"
					failed++
				}
				rows = append(rows, []string{c.name, state, c.detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Check", "Status", "Detail"}, rows, nil))
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
}

func runChecks(ctx context.Context, cfg *config.Config) []check {
	var out []check

	runner := procexec.NewRunner(0, 10*time.Second, logging.Nop())
	for _, s := range deps.CheckBinaries(deps.Requirements(cfg.Pipeline.FFmpegPath)) {
		c := check{name: s.Name, ok: s.Available, detail: s.Detail}
		if s.Available {
			c.detail = s.Path
			if v, err := deps.ProbeVersion(ctx, runner, s.Path); err == nil {
				c.detail = v
			} else {
				c.ok = false
				c.detail = err.Error()
			}
		}
		out = append(out, c)
	}

	out = append(out, scratchCheck(cfg.Scratch.Root))

	if cfg.Redis.URL != "" {
		c := check{name: "Redis", ok: true, detail: "reachable"}
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		client, err := red.NewClient(pingCtx, cfg.Redis)
		cancel()
		if err != nil {
			c.ok, c.detail = false, err.Error()
		} else {
			client.Close()
		}
		out = append(out, c)
	}
	return out
}

func scratchCheck(root string) check {
	c := check{name: "Scratch", ok: true, detail: root}
	if err := os.MkdirAll(root, 0o755); err != nil {
		c.ok, c.detail = false, err.Error()
		return c
	}
	f, err := os.CreateTemp(root, ".doctor-*")
	if err != nil {
		c.ok, c.detail = false, fmt.Sprintf("not writable: %v", err)
		return c
	}
	f.Close()
	os.Remove(f.Name())
	return c
}
