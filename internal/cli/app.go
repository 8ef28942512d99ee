package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/leadpanel/panelctl/internal/api"
	"github.com/leadpanel/panelctl/internal/config"
	"github.com/leadpanel/panelctl/internal/constants"
	"github.com/leadpanel/panelctl/internal/events"
	"github.com/leadpanel/panelctl/internal/http"
	"github.com/leadpanel/panelctl/internal/notify"
	"github.com/leadpanel/panelctl/internal/progress"
)

// app bundles what a command needs to talk to the backend.
type app struct {
	cfg      *config.Config
	client   *api.Client
	notifier *notify.Notifier
	bus      *events.EventBus
	out      io.Writer
	errOut   io.Writer
	in       io.Reader
}

// loadConfig returns the configuration loaded for this invocation.
func loadConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	if currentConfig == nil {
		cfg, err := config.Load(cfgFile, nil)
		if err != nil {
			return nil, err
		}
		currentConfig = cfg
	}
	return currentConfig, nil
}

// newApp loads and validates the config and creates the API client.
// This is the standard way to get a client in commands. Callers must
// Close the app.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &app{
		cfg:    cfg,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		in:     cmd.InOrStdin(),
	}

	if http.NeedsProxyPassword(cfg.Proxy) && isTerminal(a.in) {
		pw, err := readSecret(a.in, a.errOut, fmt.Sprintf("Proxy password for %s: ", cfg.Proxy.User))
		if err != nil {
			return nil, fmt.Errorf("failed to read proxy password: %w", err)
		}
		cfg.Proxy.Password = pw
	}

	client, err := api.NewClient(cfg, GetLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	if isTerminal(a.errOut) {
		client.SetProgress(func() progress.Reporter { return progress.NewCLIProgress(a.errOut) })
	}

	a.client = client
	a.bus = events.NewEventBus(constants.EventBusDefaultBuffer)
	a.notifier = notify.NewNotifier(&notify.Config{
		Enabled: !noNotify,
		TTL:     constants.NotificationTTL,
		Out:     a.errOut,
		Bus:     a.bus,
	}, GetLogger())
	return a, nil
}

// Close releases the event bus.
func (a *app) Close() {
	if n := a.bus.Dropped(); n > 0 {
		GetLogger().Debug().Int64("dropped", n).Msg("events dropped by slow subscribers")
	}
	a.bus.Close()
}
