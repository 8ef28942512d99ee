package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leadpanel/panelctl/internal/api"
	"github.com/leadpanel/panelctl/internal/listview"
	"github.com/leadpanel/panelctl/internal/models"
	"github.com/leadpanel/panelctl/internal/render"
	"github.com/leadpanel/panelctl/internal/validation"
)

// newActiveCmd creates the 'active' command group.
func newActiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "active",
		Aliases: []string{"activos", "leads"},
		Short:   "Active prospects: follow-ups, states and conversations",
		Long: `Commands for active prospects (leads being worked by the assistant).

Commands:
  list       - List one page of active prospects
  browse     - Interactive list with selection and bulk state changes
  stats      - Lead counts per state
  options    - Known values of the carrera, plan and estado filters
  chat       - Show the conversation held with a lead
  activate   - Mark leads as being worked
  set-state  - Move leads to another state`,
	}

	cmd.AddCommand(newActiveListCmd())
	cmd.AddCommand(newActiveBrowseCmd())
	cmd.AddCommand(newActiveStatsCmd())
	cmd.AddCommand(newActiveOptionsCmd())
	cmd.AddCommand(newActiveChatCmd())
	cmd.AddCommand(newActiveActivateCmd())
	cmd.AddCommand(newActiveSetStateCmd())

	return cmd
}

func newActiveListCmd() *cobra.Command {
	var (
		f         listFlags
		withStats bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of active prospects",
		Long: `List one page of active prospects.

Sortable columns: ` + strings.Join(models.ActiveSortColumns, ", ") + `
Filterable columns: ` + strings.Join(models.ActiveFilterColumns, ", ") + `

Examples:
  panelctl active list --sort nombre
  panelctl active list -f estado=nuevo,calificando -f plan="(vacío)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := GetContext()

			ctl, err := newActiveController(a, nil)
			if err != nil {
				return err
			}
			// Known values let a filter that names every option collapse
			// to no filter at all.
			if len(f.filters) > 0 {
				if err := seedFilterOptions(ctx, a, ctl); err != nil {
					GetLogger().Debug().Err(err).Msg("filter options unavailable")
				}
			}
			var stats statsFunc
			if withStats {
				stats = activeStats(a)
			}
			return runList(ctx, a, ctl, &f, render.ActiveProspects, stats)
		},
	}

	f.register(cmd, true, true)
	cmd.Flags().BoolVar(&withStats, "stats", false, "Also show the stats panel")

	return cmd
}

func newActiveBrowseCmd() *cobra.Command {
	var f listFlags

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse active prospects interactively",
		Long: `Browse active prospects page by page. Type "help" at the prompt for
the available commands. Select rows with "select" and "toggle", then run
"activate" or "state <estado>" on them. "chat <id>" shows a conversation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := GetContext()

			ctl, err := newActiveController(a, drawTo(a.out, render.ActiveProspects))
			if err != nil {
				return err
			}
			if err := seedFilterOptions(ctx, a, ctl); err != nil {
				a.notifier.Error("Error al cargar opciones de filtro: " + api.UserMessage(err))
			}
			p, err := f.preset()
			if err != nil {
				return err
			}
			if err := ctl.Preset(p); err != nil {
				return err
			}

			b := newBrowser(a, "activos", ctl, render.ActiveProspects, parseActiveID)
			b.sortable, b.filterable = true, true
			b.stats = activeStats(a)
			b.actions["activate"] = browseAction[string]{
				build: func(_ []string, count int) (string, listview.BulkAction[string], error) {
					return fmt.Sprintf("Activate %d lead(s)?", count), activateLeads(a), nil
				},
			}
			b.actions["state"] = browseAction[string]{
				usage: "<estado>",
				build: func(args []string, count int) (string, listview.BulkAction[string], error) {
					if len(args) != 1 {
						return "", nil, fmt.Errorf("usage: state <estado> (%s)", strings.Join(models.ValidEstados, ", "))
					}
					estado := args[0]
					if err := validation.Estado(estado, models.ValidEstados); err != nil {
						return "", nil, err
					}
					question := fmt.Sprintf("Move %d lead(s) to %s?", count, render.EstadoLabel(estado))
					return question, changeState(a, estado), nil
				},
			}
			b.extras["chat"] = browseExtra{
				usage: "<id|telefono>     show the conversation with a lead",
				run: func(ctx context.Context, args []string) error {
					if len(args) != 1 {
						return errors.New("usage: chat <id|telefono>")
					}
					return showTranscript(ctx, a, telefonoFor(ctl.Snapshot(), args[0]))
				},
			}
			return b.run(ctx)
		},
	}

	f.registerQuery(cmd, true, true)

	return cmd
}

// telefonoFor returns the phone of the row with id on the current page,
// or arg itself when no row matches.
func telefonoFor(s listview.Snapshot[models.ActiveProspect, string], arg string) string {
	for _, p := range s.Items {
		if p.ID == arg {
			return p.Telefono
		}
	}
	return arg
}

func activateLeads(a *app) listview.BulkAction[string] {
	return func(ctx context.Context, ids []string) (string, error) {
		res, err := a.client.ActivateLeads(ctx, ids)
		if err != nil {
			return "", err
		}
		return res.Message, nil
	}
}

func changeState(a *app, estado string) listview.BulkAction[string] {
	return func(ctx context.Context, ids []string) (string, error) {
		res, err := a.client.ChangeState(ctx, ids, estado)
		if err != nil {
			return "", err
		}
		return res.Message, nil
	}
}

func parseActiveID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty lead id", validation.ErrInvalidID)
	}
	return s, nil
}

func showTranscript(ctx context.Context, a *app, telefono string) error {
	var t *models.Transcript
	err := withSpinner(a.errOut, func() error {
		var err error
		t, err = a.client.Transcript(ctx, telefono)
		return err
	})
	if err != nil {
		return err
	}
	render.Transcript(a.out, t)
	return nil
}

func newActiveStatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show lead counts per state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			var st *models.ActiveStats
			err = withSpinner(a.errOut, func() error {
				var err error
				st, err = a.client.ActiveStats(GetContext())
				return err
			})
			if err != nil {
				return err
			}
			if asJSON {
				return render.JSON(a.out, st)
			}
			render.ActiveStats(a.out, st)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "J", false, "Output as JSON")

	return cmd
}

func newActiveOptionsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show the known values of each filter column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			opts, err := a.client.FilterOptions(GetContext())
			if err != nil {
				return err
			}
			if asJSON {
				return render.JSON(a.out, opts)
			}
			for _, col := range models.ActiveFilterColumns {
				values, ok := opts.ByColumn()[col]
				if !ok {
					continue
				}
				fmt.Fprintf(a.out, "%s: %s\n", col, strings.Join(values, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "J", false, "Output as JSON")

	return cmd
}

func newActiveChatCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "chat <telefono>",
		Short: "Show the conversation held with a lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if !asJSON {
				return showTranscript(GetContext(), a, args[0])
			}
			t, err := a.client.Transcript(GetContext(), args[0])
			if err != nil {
				return err
			}
			return render.JSON(a.out, t)
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "J", false, "Output as JSON")

	return cmd
}

func newActiveActivateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activate <id>...",
		Short: "Mark leads as being worked",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseActiveIDs(args)
			if err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := confirm(a.in, a.errOut, fmt.Sprintf("Activate %d lead(s)?", len(ids))); err != nil {
				return err
			}
			res, err := a.client.ActivateLeads(GetContext(), ids)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, res.Message)
			return nil
		},
	}

	return cmd
}

func newActiveSetStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-state <estado> <id>...",
		Short: "Move leads to another state",
		Long: `Move leads to another state. Valid states: ` + strings.Join(models.ValidEstados, ", ") + `

Example:
  panelctl active set-state perdido 8f2c... 91ab...`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			estado := strings.TrimSpace(args[0])
			if err := validation.Estado(estado, models.ValidEstados); err != nil {
				return err
			}
			ids, err := parseActiveIDs(args[1:])
			if err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			question := fmt.Sprintf("Move %d lead(s) to %s?", len(ids), render.EstadoLabel(estado))
			if err := confirm(a.in, a.errOut, question); err != nil {
				return err
			}
			res, err := a.client.ChangeState(GetContext(), ids, estado)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, res.Message)
			if len(res.UpdatedIDs) < len(ids) {
				fmt.Fprintf(a.out, "Actualizados %d de %d\n", len(res.UpdatedIDs), len(ids))
			}
			return nil
		},
	}

	return cmd
}

func parseActiveIDs(args []string) ([]string, error) {
	ids := make([]string, 0, len(args))
	for _, raw := range args {
		id, err := parseActiveID(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
