// mnemoniq is the terminal client for the MnemonIQ study service:
// project management, AI chat over uploaded documents, quizzes, and
// study songs.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mnemoniq/cmd/mnemoniq/ui"
	"mnemoniq/internal/apiclient"
	"mnemoniq/internal/config"
	"mnemoniq/internal/session"
	"mnemoniq/internal/util"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "mnemoniq",
		Short:         "Terminal client for the MnemonIQ study service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.ConfigPath, "config file path")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("mnemoniq", version)
		},
	})
	return root
}

func run(configPath string) error {
	// .env is optional and only feeds the MNEMONIQ_* overrides.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logSink, closeSink, err := openLogSink(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeSink()
	util.InitLogger(cfg.LogLevel, logSink)

	tokenPath, err := cfg.ResolveTokenPath()
	if err != nil {
		return fmt.Errorf("resolve token path: %w", err)
	}
	sess := session.New(session.NewStore(tokenPath))

	pollInterval, err := cfg.ParsePollInterval()
	if err != nil {
		return fmt.Errorf("parse poll interval: %w", err)
	}

	api := apiclient.NewClient(cfg.BaseURL(), sess)
	app := ui.NewApp(sess, api, cfg.Extensions(), pollInterval)

	slog.Info("starting", "version", version, "api", cfg.BaseURL())
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// openLogSink routes logs away from the terminal the TUI draws on.
func openLogSink(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
