package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"fuoco/internal/assistant"
	"fuoco/internal/config"
	"fuoco/internal/logging"
	"fuoco/internal/model"
	"fuoco/internal/model/runtime"
	"fuoco/internal/pacer"
	"fuoco/internal/rag"
	"fuoco/internal/store"
)

var (
	// Global flags
	configPath string
	verbose    bool
	userID     string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "fuoco",
	Short: "fuoco - local-first personal assistant",
	Long: `fuoco turns free-text messages into expenses and scheduled tasks, and
answers everything else with a locally-hosted generative model augmented by
a small personal knowledge base.

Run "fuoco chat" for the interactive conversation interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		return logging.Initialize(cfg.DataDir, logging.Settings{
			DebugMode:  cfg.Logging.DebugMode || verbose,
			Level:      cfg.Logging.Level,
			Categories: cfg.Logging.Categories,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "fuoco.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "local", "user id for created records")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(modelCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(recordsCmd)
}

// app bundles the wired core for the commands.
type app struct {
	store     *store.Store
	builder   *rag.ContextBuilder
	manager   *model.Manager
	assistant *assistant.Assistant
}

// buildApp wires the core from the loaded config.
func buildApp() (*app, error) {
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	builder := rag.NewContextBuilder(st)

	manager := model.NewManager(model.Options{
		ModelID:     cfg.Model.ID,
		Version:     cfg.Model.Version,
		DownloadURL: cfg.Model.DownloadURL,
		ModelsDir:   cfg.ModelsDir(),
		SizeHint:    cfg.Model.SizeBytes,
	}, st, nil)

	rt, err := runtime.NewOllamaRuntime(cfg.Model.RuntimeName, cfg.Model.Endpoint, cfg.RuntimeTimeout())
	if err != nil {
		st.Close()
		return nil, err
	}

	persona, err := rag.ParsePersona(cfg.Persona)
	if err != nil {
		logger.Warn("unknown persona, using default", zap.String("persona", cfg.Persona))
	}

	pace := pacer.New(
		time.Duration(cfg.Pacer.MinIntervalMs)*time.Millisecond,
		time.Duration(cfg.Pacer.MaxIntervalMs)*time.Millisecond,
	)

	asst := assistant.New(builder, st, manager, rt, pace, persona, assistant.Generation{
		MaxTokens:     cfg.Generation.MaxTokens,
		Temperature:   cfg.Generation.Temperature,
		StopSequences: cfg.Generation.StopSequences,
	})

	return &app{store: st, builder: builder, manager: manager, assistant: asst}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("closing store", zap.Error(err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
