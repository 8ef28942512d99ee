// Package cli provides the command-line interface for panelctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leadpanel/panelctl/internal/config"
	"github.com/leadpanel/panelctl/internal/logging"
	"github.com/leadpanel/panelctl/internal/version"
)

var (
	// Global flags
	cfgFile   string
	verbose   bool
	debug     bool
	noNotify  bool
	assumeYes bool

	// Global logger
	logger *logging.Logger

	// Config loaded in PersistentPreRunE. configErr is kept so commands
	// that do not need a valid file (config path, config set) still run.
	currentConfig *config.Config
	configErr     error

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "panelctl",
		Short: "panelctl - terminal client for the lead management dashboard",
		Long: `panelctl ` + version.Version + ` - Built: ` + version.BuildTime + `
Browse and manage the dashboard's prospect, active prospect and
knowledge base lists from the terminal.

One-shot commands print one page and exit. The browse commands keep a
list open and accept paging, sorting, filtering and selection commands.

Configuration is read from ` + config.DefaultConfigPath() + `,
PANELCTL_* environment variables, and the flags below, in increasing
priority.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			currentConfig, configErr = config.Load(cfgFile, cmd.Flags())

			format, level := string(logging.FormatConsole), "info"
			if currentConfig != nil {
				format, level = currentConfig.Logging.Format, currentConfig.Logging.Level
			}
			logger = logging.Setup(format, level, verbose || debug, cmd.ErrOrStderr())
			if configErr != nil {
				logger.Debug().Err(configErr).Msg("config could not be loaded")
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().String("base-url", "", "Dashboard base URL (overrides config)")
	rootCmd.PersistentFlags().String("token", "", "API token (overrides config)")
	rootCmd.PersistentFlags().Int("timeout", 0, "Request timeout in seconds")
	rootCmd.PersistentFlags().Int("retries", 0, "Retries for read requests (0 = none)")
	rootCmd.PersistentFlags().String("proxy-mode", "", "Proxy mode: no-proxy, system, basic, ntlm")
	rootCmd.PersistentFlags().Int("page-size", 0, "Rows per page")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: console or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")
	rootCmd.PersistentFlags().BoolVar(&noNotify, "no-notify", false, "Do not print success/error notifications")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to confirmation prompts")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	// Create a context that can be cancelled by signals
	rootContext, cancelFunc = context.WithCancel(context.Background())
	defer cancelFunc()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	// Clean up signal handler
	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newProspectsCmd())
	rootCmd.AddCommand(newActiveCmd())
	rootCmd.AddCommand(newKBCmd())
	rootCmd.AddCommand(newConfigCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
// This context will be cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		// Fallback to background context if called before Execute()
		return context.Background()
	}
	return rootContext
}
