package main

import (
	"strings"
	"sync"

	"reelstitch/internal/config"
	"reelstitch/internal/infra/logging"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type commandContext struct {
	configFlag *string
	devFlag    *bool

	once   sync.Once
	cfg    *config.Config
	cfgErr error
	log    *zerolog.Logger
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.once.Do(func() {
		path := strings.TrimSpace(*c.configFlag)
		cfg, err := config.LoadConfig(path, *c.devFlag)
		if err != nil {
			c.cfgErr = err
			return
		}
		c.cfg = cfg
		c.log = logging.New(cfg.Log, cfg.Runtime.Dev)
	})
	return c.cfg, c.cfgErr
}

func (c *commandContext) logger() *zerolog.Logger {
	if c.log == nil {
		return logging.Nop()
	}
	return c.log
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var devFlag bool
	ctx := &commandContext{configFlag: &configFlag, devFlag: &devFlag}

	rootCmd := &cobra.Command{
		Use:           "reelstitch",
		Short:         "Stitch a narration and three clips into a vertical video",
		Version:       version + " (" + commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (default "+config.DefaultConfigPath+" when present)")
	rootCmd.PersistentFlags().BoolVar(&devFlag, "dev", false, "Developer mode: console logs")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newRenderCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))

	return rootCmd
}
