package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leadpanel/panelctl/internal/api"
	"github.com/leadpanel/panelctl/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage panelctl configuration",
		Long: `Configuration management commands for panelctl.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  set   - Change one setting
  test  - Test the backend connection
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// configPath is the file the config commands read and write.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for panelctl.

The configuration is saved to ` + config.DefaultConfigPath() + `
unless --config names another file.

Use --force to overwrite existing configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()
			out := cmd.OutOrStdout()
			path := configPath()

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
					fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			fmt.Fprintln(out, "panelctl Configuration Setup")
			fmt.Fprintln(out, "============================")
			fmt.Fprintln(out)

			cfg := config.Default()
			p := newPrompter(cmd.InOrStdin(), out)

			baseURL, err := p.line("Dashboard URL", cfg.Server.BaseURL)
			if err != nil {
				return err
			}
			token, err := p.secret("API token (optional): ")
			if err != nil {
				return err
			}
			proxyMode, err := p.line("Proxy mode (no-proxy, system, basic, ntlm)", cfg.Proxy.Mode)
			if err != nil {
				return err
			}
			if err := cfg.Set("server.base_url", baseURL); err != nil {
				return err
			}
			if err := cfg.Set("server.api_token", token); err != nil {
				return err
			}
			if err := cfg.Set("proxy.mode", proxyMode); err != nil {
				return err
			}

			if cfg.Proxy.Mode == config.ProxyBasic || cfg.Proxy.Mode == config.ProxyNTLM {
				host, err := p.line("Proxy host", "")
				if err != nil {
					return err
				}
				port, err := p.line("Proxy port", strconv.Itoa(cfg.Proxy.Port))
				if err != nil {
					return err
				}
				user, err := p.line("Proxy user", "")
				if err != nil {
					return err
				}
				for key, value := range map[string]string{"proxy.host": host, "proxy.port": port, "proxy.user": user} {
					if err := cfg.Set(key, value); err != nil {
						return err
					}
				}
				fmt.Fprintln(out, "The proxy password is asked for when a command runs and is not saved.")
			}

			pageSize, err := p.line("Rows per page", strconv.Itoa(cfg.Views.PageSize))
			if err != nil {
				return err
			}
			if err := cfg.Set("views.page_size", pageSize); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			logger.Info().Str("path", path).Msg("configuration saved")

			fmt.Fprintln(out)
			fmt.Fprintf(out, "✓ Configuration saved to %s\n", path)
			fmt.Fprintln(out, "Run 'panelctl config test' to check the connection.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current configuration settings.

This command shows the merged configuration from:
  1. Configuration file (` + config.DefaultConfigPath() + `)
  2. Environment variables (` + config.EnvPrefix + `_SERVER_BASE_URL, ` + config.EnvPrefix + `_SERVER_API_TOKEN, ...)
  3. Command-line flags (--base-url, --token, ...)

Priority: flags > environment > config file > defaults`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Current Configuration")
			fmt.Fprintln(out, "=====================")
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Server:")
			fmt.Fprintf(out, "  Base URL:  %s\n", cfg.Server.BaseURL)
			fmt.Fprintf(out, "  API Token: %s\n", cfg.MaskedToken())
			fmt.Fprintf(out, "  Timeout:   %s\n", cfg.Server.Timeout())
			fmt.Fprintf(out, "  Retries:   %d\n", cfg.Server.RetryMax)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Proxy:")
			fmt.Fprintf(out, "  Mode: %s\n", cfg.Proxy.Mode)
			if cfg.Proxy.Host != "" {
				fmt.Fprintf(out, "  Host: %s\n", cfg.Proxy.Host)
				fmt.Fprintf(out, "  Port: %d\n", cfg.Proxy.Port)
			}
			if cfg.Proxy.User != "" {
				fmt.Fprintf(out, "  User: %s\n", cfg.Proxy.User)
			}
			if cfg.Proxy.NoProxy != "" {
				fmt.Fprintf(out, "  No proxy: %s\n", cfg.Proxy.NoProxy)
			}
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Views:")
			fmt.Fprintf(out, "  Page size:             %d\n", cfg.Views.PageSize)
			fmt.Fprintf(out, "  Prospects new sort:    %s\n", cfg.Views.ProspectsSortOrder)
			fmt.Fprintf(out, "  Active leads new sort: %s\n", cfg.Views.ActiveSortOrder)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Logging:")
			fmt.Fprintf(out, "  Level:  %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "  Format: %s\n", cfg.Logging.Format)
			fmt.Fprintln(out)

			path := configPath()
			fmt.Fprintf(out, "Configuration file: %s\n", path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(out, "  (file does not exist - using defaults)")
			}
			return nil
		},
	}

	return cmd
}

// newConfigSetCmd creates the 'config set' command.
func newConfigSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting in the configuration file",
		Long: `Change one setting in the configuration file.

Keys:
  ` + strings.Join(config.Keys(), "\n  "),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			cfg, err := config.Load(path, nil)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			value := args[1]
			if strings.EqualFold(args[0], "server.api_token") {
				value = cfg.MaskedToken()
			} else if strings.EqualFold(args[0], "proxy.password") {
				value = "(hidden)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s = %s\n", strings.ToLower(args[0]), value)
			return nil
		},
	}

	return cmd
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the backend connection",
		Long: `Test the backend connection with current configuration.

Use this to verify the dashboard URL, token and proxy settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Testing Backend Connection")
			fmt.Fprintln(out, "==========================")
			fmt.Fprintln(out)

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintf(out, "Dashboard URL: %s\n", a.client.BaseURL())
			fmt.Fprintln(out, "Testing connection...")
			fmt.Fprintln(out)

			ctx, cancel := context.WithTimeout(GetContext(), 10*time.Second)
			defer cancel()

			st, err := a.client.ProspectStats(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("Connection test failed")
				fmt.Fprintln(out, "✗ Connection FAILED")
				fmt.Fprintf(out, "  Error: %s\n", api.UserMessage(err))
				if hint := connectionHint(err); hint != "" {
					fmt.Fprintf(out, "  Hint: %s\n", hint)
				}
				return fmt.Errorf("connection test failed")
			}

			logger.Info().Msg("Connection test successful")

			fmt.Fprintln(out, "✓ Connection SUCCESSFUL")
			fmt.Fprintf(out, "  Prospects: %d\n", st.Total)
			return nil
		},
	}

	return cmd
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := configPath()
			if cfgFile == "" {
				fmt.Fprintln(out, "Default configuration path:")
			} else {
				fmt.Fprintln(out, "Configuration path (from --config flag):")
			}

			fmt.Fprintf(out, "  %s\n", path)
			fmt.Fprintln(out)

			if info, err := os.Stat(path); err == nil {
				fmt.Fprintln(out, "Status: ✓ File exists")
				fmt.Fprintf(out, "Size:   %d bytes\n", info.Size())
				fmt.Fprintf(out, "Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintln(out, "Status: File does not exist")
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Create a configuration file with: panelctl config init")
			}

			return nil
		},
	}

	return cmd
}

// connectionHint suggests where to look after a failed connection test.
func connectionHint(err error) string {
	switch api.KindOf(err) {
	case api.KindTransport:
		return "check the dashboard URL and the proxy settings (panelctl config show)"
	case api.KindDecode:
		return "the server answered but not with the dashboard API; check the dashboard URL"
	default:
		return ""
	}
}
