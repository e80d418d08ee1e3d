package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/youssefsiam38/volumetric"
)

// app carries the state shared by all subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string

	zap    *zap.Logger
	logger volumetric.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: nopLogger{}}

	cmd := &cobra.Command{
		Use:   "volumetric",
		Short: "Render agent-selected templates and forward clicks as phrases",
		Long: `volumetric hosts a catalog of templates an agent can show to a user.

The agent sends navigation requests (a template key plus JSON props); the
browser renders the panel and every click is sent back to the agent as a
natural-language action phrase.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initConfig(); err != nil {
				return err
			}
			logger, err := newZapLogger(a.v.GetBool("verbose"))
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.zap = logger
			a.logger = newLogger(logger)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.zap != nil {
				_ = a.zap.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./volumetric.yaml or $HOME/.volumetric/volumetric.yaml)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	_ = a.v.BindPFlag("verbose", cmd.PersistentFlags().Lookup("verbose"))

	cmd.AddCommand(newServeCmd(a), newTemplatesCmd(a), newRenderCmd(a))
	return cmd
}

func (a *app) initConfig() error {
	setDefaults(a.v)

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".volumetric"))
		}
		a.v.SetConfigType("yaml")
		a.v.SetConfigName("volumetric")
	}

	a.v.SetEnvPrefix("VOLUMETRIC")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindEnv("claude.api_key", "VOLUMETRIC_CLAUDE_API_KEY", "ANTHROPIC_API_KEY")

	// The default config file is optional; an explicit one is not.
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}
