package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/inkpolish/inkpolish/internal/analysis"
	"github.com/inkpolish/inkpolish/internal/api"
	"github.com/inkpolish/inkpolish/internal/config"
	"github.com/inkpolish/inkpolish/internal/database"
	"github.com/inkpolish/inkpolish/internal/document"
	"github.com/inkpolish/inkpolish/internal/llm"
	"github.com/inkpolish/inkpolish/internal/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	outputPath string
	docTitle   string
)

var rootCmd = &cobra.Command{
	Use:   "inkpolish",
	Short: "AI-assisted article editor backend",
	Long: `inkpolish corrects the grammar of article drafts and suggests
readability, tone, voice and cliché improvements that can be applied
one by one.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a sample configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("%s already exists", outputPath)
		}
		if err := config.GenerateSample(outputPath); err != nil {
			return fmt.Errorf("failed to write sample config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outputPath)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats [file]",
	Short: "Print stats and validation for an HTML or markdown file (stdin when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStats,
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "inkpolish.yaml", "path to the configuration file")
	initConfigCmd.Flags().StringVarP(&outputPath, "output", "o", "inkpolish.yaml", "where to write the sample configuration")
	statsCmd.Flags().StringVarP(&docTitle, "title", "t", "", "title to validate along with the content")

	rootCmd.AddCommand(serveCmd, initConfigCmd, statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "text" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg.Logging)

	store, err := database.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	provider, err := llm.NewProvider(&cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}

	analyzer := analysis.NewLLMAnalyzer(provider, cfg.Analysis.Models)
	sessions := session.NewManager(analyzer, cfg.Analysis.Timeout)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sessions.Run(ctx, cfg.Sessions.SweepInterval, cfg.Sessions.MaxIdle)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(cfg, analyzer, sessions, store),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("provider", provider.Name()).
			Str("model", cfg.LLM.Model).
			Msg("Server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
		name string
	)
	if len(args) == 1 {
		name = args[0]
		data, err = os.ReadFile(name)
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	content := string(data)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		if content, err = document.FromMarkdown(content); err != nil {
			return err
		}
	case ".txt":
		content = document.TextToHTML(content)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"stats":      document.ComputeStats(content),
		"validation": document.Validate(docTitle, content),
	})
}
