package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joelkehle/claim-advocate/internal/config"
	"github.com/joelkehle/claim-advocate/internal/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string
	envFile    string
}

type cliContextKey struct{}

// cliContext carries the loaded configuration through the command tree.
type cliContext struct {
	cfg *config.Config
	log *zap.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "claimctl",
		Short:         "Analyze insurance claim documents and draft negotiation strategies",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := initContext(opts)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cc))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if cc, ok := cmd.Context().Value(cliContextKey{}).(*cliContext); ok {
				_ = cc.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (CLAIM_* env vars override it)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded when present")

	root.AddCommand(
		newServeCommand(),
		newAnalyzeCommand(),
		newStrategyCommand(),
		newLetterCommand(),
		newMCPCommand(),
		newKBCommand(),
	)
	return root
}

func initContext(opts *rootOptions) (*cliContext, error) {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", opts.envFile, err)
		}
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	log, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, err
	}
	return &cliContext{cfg: cfg, log: log}, nil
}

func getCLIContext(cmd *cobra.Command) *cliContext {
	if cc, ok := cmd.Context().Value(cliContextKey{}).(*cliContext); ok {
		return cc
	}
	return &cliContext{cfg: &config.Config{}, log: zap.NewNop()}
}
