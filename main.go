package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"league_results_importer/internal/config"
	"league_results_importer/internal/events"
	"league_results_importer/internal/importer"
	"league_results_importer/internal/logger"
	"league_results_importer/internal/roster"
	"league_results_importer/internal/telemetry"
	"league_results_importer/internal/usererr"
)

// configKey annotates a flag with the config key it overrides.
const configKey = "config_key"

type app struct {
	v        *viper.Viper
	cfg      *config.Config
	service  *importer.Service
	shutdown func(context.Context) error
}

func newApp() *app {
	return &app{v: config.New()}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:               "leagueresults",
		Short:             "Import league race and qualifying results from CSV",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-encoding", "json", "log encoding: json or console")
	flags.String("roster", "", "roster YAML mapping CSV names to league drivers")
	flags.Bool("telemetry", false, "write trace spans to stderr")
	bindKey(flags, "log-level", "log.level")
	bindKey(flags, "log-encoding", "log.encoding")
	bindKey(flags, "roster", "roster.path")
	bindKey(flags, "telemetry", "telemetry.enabled")

	root.AddCommand(newImportCmd(a), newServeCmd(a), newNormalizeCmd())
	return root
}

func bindKey(flags *pflag.FlagSet, flag, key string) {
	_ = flags.SetAnnotation(flag, configKey, []string{key})
}

// setup loads config, then builds the logger, tracer and import service.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	keys := map[string]string{}
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if k := f.Annotations[configKey]; len(k) == 1 {
			keys[f.Name] = k[0]
		}
	})
	if err := config.BindFlags(a.v, cmd.Flags(), keys); err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("config")
	if err := config.ReadFile(a.v, path); err != nil {
		return usererr.NewExpectedError(err)
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return usererr.NewExpectedError(err)
	}
	a.cfg = cfg

	if err := logger.Configure(cfg.Log.Level, cfg.Log.Encoding); err != nil {
		return errors.Wrap(err, "configure logger")
	}

	shutdown, err := telemetry.Init(cfg.Telemetry.Enabled, cfg.Telemetry.ServiceName, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.shutdown = shutdown

	var r *roster.Roster
	if cfg.Roster.Path != "" {
		if r, err = roster.Load(cmd.Context(), cfg.Roster.Path); err != nil {
			return usererr.NewExpectedError(err)
		}
	}
	a.service = importer.NewService(r, events.NewBus(logger.L()))
	return nil
}

func (a *app) close() {
	if a.shutdown != nil {
		if err := a.shutdown(context.Background()); err != nil {
			logger.L().Warn("Failed to flush spans", zap.Error(err))
		}
	}
	logger.Sync()
}

func main() {
	a := newApp()
	err := newRootCmd(a).ExecuteContext(context.Background())
	if err == nil {
		a.close()
		return
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	if hint := errors.FlattenHints(err); hint != "" {
		fmt.Fprintln(os.Stderr, "Hint:", hint)
	}
	if usererr.IsExpectedUserError(err) {
		logger.L().Warn("Completed with user error", zap.Error(err))
		a.close()
		os.Exit(0)
	}
	logger.L().Error("Command failed", zap.Error(err))
	a.close()
	os.Exit(1)
}
