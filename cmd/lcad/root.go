package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ecodesign-mdao/lca-core/internal/engine"
	"github.com/ecodesign-mdao/lca-core/pkg/config"
	"github.com/ecodesign-mdao/lca-core/pkg/logger"
	"github.com/ecodesign-mdao/lca-core/pkg/models"
)

type appOptions struct {
	configPath string
	storePath  string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &appOptions{}
	cmd := &cobra.Command{
		Use:           "lcad",
		Short:         "Parameter synchronization engine for LCA-coupled design studies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "configuration file (yaml)")
	cmd.PersistentFlags().StringVar(&opts.storePath, "store", "", "store path (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSetupCmd(opts),
		newParamsCmd(opts),
		newRecalcCmd(opts),
		newScoreCmd(opts),
		newOptimizeCmd(opts),
		newCleanupCmd(opts),
		newDemoCmd(opts),
	)
	return cmd
}

// loadConfig resolves the effective configuration from flags.
func (o *appOptions) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if o.configPath != "" {
		loaded, err := config.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &config.Config{LogLevel: "info"}
	}
	if o.storePath != "" {
		cfg.Store = o.storePath
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if cfg.Store == "" {
		return nil, fmt.Errorf("no store configured; pass --store or --config")
	}
	logger.SetDefault(logger.NewText(cfg.LogLevel, os.Stderr))
	return cfg, nil
}

// openEngine builds the engine for the effective configuration. It does not
// touch persisted state; the setup command applies nodes and mappings.
func (o *appOptions) openEngine(ctx context.Context) (*engine.Engine, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	engCfg := engine.Config{
		StorePath: cfg.Store,
		Group:     cfg.Group,
		Logger:    logger.Default,
	}
	if cfg.DefaultParent != nil {
		engCfg.DefaultParent = cfg.DefaultParent.Key()
	}
	eng, err := engine.New(engCfg)
	if err != nil {
		return nil, nil, err
	}
	return eng, cfg, nil
}

// applySetup creates the configured nodes and registers the configured
// mappings. Registration is idempotent, so re-running setup is safe.
func applySetup(ctx context.Context, eng *engine.Engine, cfg *config.Config) error {
	for _, n := range cfg.Nodes {
		if _, err := eng.Store().AddNode(ctx, n.Node()); err != nil {
			return err
		}
	}
	for _, m := range cfg.Mappings {
		mapping := engine.Mapping{
			OutputName:  m.OutputName,
			Value:       m.Value,
			Units:       m.Units,
			TargetNode:  m.Target.Key(),
			TargetUnits: m.TargetUnits,
			TargetName:  m.TargetName,
			Kind:        models.ExchangeKind(m.Kind),
		}
		if m.Parent != nil {
			mapping.ParentNode = m.Parent.Key()
		}
		if err := eng.Register(ctx, mapping); err != nil {
			return err
		}
	}
	return nil
}
