package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leadpanel/panelctl/internal/listview"
	"github.com/leadpanel/panelctl/internal/models"
	"github.com/leadpanel/panelctl/internal/render"
	"github.com/leadpanel/panelctl/internal/validation"
)

// newProspectsCmd creates the 'prospects' command group.
func newProspectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "prospects",
		Aliases: []string{"prospectos"},
		Short:   "Raw prospects: list, import and activate",
		Long: `Commands for raw prospects.

Commands:
  list      - List one page of prospects
  browse    - Interactive list with selection and bulk activation
  stats     - Prospect counts by owner and recent import batches
  create    - Create one prospect
  upload    - Preview a CSV/XLSX/XLS file
  import    - Import a spreadsheet with a column mapping
  activate  - Promote prospects to leads`,
	}

	cmd.AddCommand(newProspectsListCmd())
	cmd.AddCommand(newProspectsBrowseCmd())
	cmd.AddCommand(newProspectsStatsCmd())
	cmd.AddCommand(newProspectsCreateCmd())
	cmd.AddCommand(newProspectsUploadCmd())
	cmd.AddCommand(newProspectsImportCmd())
	cmd.AddCommand(newProspectsActivateCmd())

	return cmd
}

func newProspectsListCmd() *cobra.Command {
	var (
		f         listFlags
		withStats bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of prospects",
		Long: `List one page of raw prospects.

Sortable columns: ` + strings.Join(models.ProspectSortColumns, ", ") + `
Filterable columns: ` + strings.Join(models.ProspectFilterColumns, ", ") + `

Examples:
  panelctl prospects list --sort nombre:asc
  panelctl prospects list -f propietario=Ana,Luis -f programa="(vacío)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctl, err := newProspectsController(a, nil)
			if err != nil {
				return err
			}
			var stats statsFunc
			if withStats {
				stats = prospectStats(a)
			}
			return runList(GetContext(), a, ctl, &f, render.Prospects, stats)
		},
	}

	f.register(cmd, true, true)
	cmd.Flags().BoolVar(&withStats, "stats", false, "Also show the stats panel")

	return cmd
}

func newProspectsBrowseCmd() *cobra.Command {
	var f listFlags

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse prospects interactively",
		Long: `Browse raw prospects page by page. Type "help" at the prompt for
the available commands. Select rows with "select" and "toggle", then run
"activate" to promote them to leads.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctl, err := newProspectsController(a, drawTo(a.out, render.Prospects))
			if err != nil {
				return err
			}
			p, err := f.preset()
			if err != nil {
				return err
			}
			if err := ctl.Preset(p); err != nil {
				return err
			}

			b := newBrowser(a, "prospectos", ctl, render.Prospects, parseProspectID)
			b.sortable, b.filterable = true, true
			b.stats = prospectStats(a)
			b.actions["activate"] = browseAction[int64]{
				build: func(args []string, count int) (string, listview.BulkAction[int64], error) {
					return fmt.Sprintf("Activate %d prospect(s) as leads?", count), activateProspects(a), nil
				},
			}
			return b.run(GetContext())
		},
	}

	f.registerQuery(cmd, true, true)

	return cmd
}

// activateProspects is the bulk action behind 'activate'. The counts are
// printed here; the message goes to the notifier.
func activateProspects(a *app) listview.BulkAction[int64] {
	return func(ctx context.Context, ids []int64) (string, error) {
		res, err := a.client.ActivateProspects(ctx, ids)
		if err != nil {
			return "", err
		}
		render.ActivationResult(a.out, res)
		return res.Message, nil
	}
}

func parseProspectID(s string) (int64, error) {
	ids, err := validation.ProspectIDs([]string{s})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

func newProspectsStatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show prospect counts by owner and recent batches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			var st *models.ProspectStats
			err = withSpinner(a.errOut, func() error {
				var err error
				st, err = a.client.ProspectStats(GetContext())
				return err
			})
			if err != nil {
				return err
			}
			if asJSON {
				return render.JSON(a.out, st)
			}
			render.ProspectStats(a.out, st)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "J", false, "Output as JSON")

	return cmd
}

func newProspectsCreateCmd() *cobra.Command {
	var p models.NewProspect

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create one prospect",
		Long: `Create one raw prospect. --nombre and --apellidos are required.

Example:
  panelctl prospects create --nombre Ana --apellidos Pérez --email ana@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			msg, err := a.client.CreateProspect(GetContext(), p)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, msg)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&p.Nombre, "nombre", "", "First name (required)")
	fl.StringVar(&p.Apellidos, "apellidos", "", "Last names (required)")
	fl.StringVar(&p.FechaCreacion, "fecha", "", "Creation date, YYYY-MM-DD")
	fl.StringVar(&p.Propietario, "propietario", "", "Owner")
	fl.StringVar(&p.Canal, "canal", "", "Channel")
	fl.StringVar(&p.Referrer, "referrer", "", "Referrer")
	fl.StringVar(&p.Email1, "email", "", "Primary email")
	fl.StringVar(&p.Email2, "email-2", "", "Secondary email")
	fl.StringVar(&p.Telefono1, "telefono", "", "Primary phone")
	fl.StringVar(&p.Telefono2, "telefono-2", "", "Secondary phone")
	fl.StringVar(&p.Programa, "programa", "", "Program")
	fl.StringVar(&p.Rut, "rut", "", "RUT")
	fl.StringVar(&p.CarreraPostula, "carrera", "", "Career applied to")
	fl.StringVar(&p.Experiencia, "experiencia", "", "Experience")
	fl.StringVar(&p.Urgencia, "urgencia", "", "Urgency")

	return cmd
}

func newProspectsUploadCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Preview a spreadsheet before importing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			up, err := a.client.UploadSpreadsheet(GetContext(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return render.JSON(a.out, up)
			}
			render.UploadPreview(a.out, up)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "J", false, "Output as JSON")

	return cmd
}

func newProspectsImportCmd() *cobra.Command {
	var (
		mapFlags  []string
		noSuggest bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a spreadsheet of prospects",
		Long: `Upload a spreadsheet, show its preview and import it.

The backend suggests a mapping from target fields to spreadsheet columns.
Override or extend it with --map field=Column (repeatable). Target fields:
` + strings.Join(models.ProspectTargetFields, ", ") + `

Example:
  panelctl prospects import leads.xlsx --map email_1="Correo" --map telefono_1="Fono"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := parseMappings(mapFlags)
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := GetContext()

			up, err := a.client.UploadSpreadsheet(ctx, args[0])
			if err != nil {
				return err
			}
			render.UploadPreview(a.out, up)

			mapping := map[string]string{}
			if !noSuggest {
				for field, column := range up.SuggestedMapping {
					if column != "" {
						mapping[field] = column
					}
				}
			}
			for field, column := range overrides {
				if column != "" && !slices.Contains(up.Preview.Columns, column) {
					return fmt.Errorf("--map %s: column %q is not in the file (columns: %s)",
						field, column, strings.Join(up.Preview.Columns, ", "))
				}
				if column == "" {
					delete(mapping, field)
					continue
				}
				mapping[field] = column
			}
			if len(mapping) == 0 {
				return fmt.Errorf("no column mapping: pass --map field=Column")
			}

			fmt.Fprintln(a.out)
			fmt.Fprintln(a.out, "Mapping:")
			for _, field := range models.ProspectTargetFields {
				if column, ok := mapping[field]; ok {
					fmt.Fprintf(a.out, "  %-16s <- %s\n", field, column)
				}
			}
			question := fmt.Sprintf("Import %d row(s) from %s?", up.Preview.TotalRows, up.Filename)
			if err := confirm(a.in, a.errOut, question); err != nil {
				return err
			}

			res, err := a.client.ImportSpreadsheet(ctx, mapping)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, res.Message)
			if res.LoteID != "" {
				fmt.Fprintf(a.out, "Lote: %s (%d importados)\n", res.LoteID, res.ImportedCount)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&mapFlags, "map", "m", nil, `Mapping "field=Column"; an empty column drops the field`)
	cmd.Flags().BoolVar(&noSuggest, "no-suggest", false, "Ignore the suggested mapping")

	return cmd
}

// parseMappings parses --map values against the importable fields.
func parseMappings(raw []string) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for _, m := range raw {
		field, column, ok := strings.Cut(m, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid --map %q: want field=Column", m)
		}
		if !slices.Contains(models.ProspectTargetFields, field) {
			return nil, fmt.Errorf("invalid --map %q: unknown field %q", m, field)
		}
		out[field] = strings.TrimSpace(column)
	}
	return out, nil
}

func newProspectsActivateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activate <id>...",
		Short: "Promote prospects to leads",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := validation.ProspectIDs(args)
			if err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := confirm(a.in, a.errOut, fmt.Sprintf("Activate %d prospect(s) as leads?", len(ids))); err != nil {
				return err
			}
			res, err := a.client.ActivateProspects(GetContext(), ids)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, res.Message)
			render.ActivationResult(a.out, res)
			return nil
		},
	}

	return cmd
}
