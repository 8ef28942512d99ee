package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/leadpanel/panelctl/internal/api"
	"github.com/leadpanel/panelctl/internal/listview"
	"github.com/leadpanel/panelctl/internal/models"
	"github.com/leadpanel/panelctl/internal/ratelimit"
	"github.com/leadpanel/panelctl/internal/render"
	"github.com/leadpanel/panelctl/internal/validation"
)

var (
	errBaseNotFound  = errors.New("knowledge base not found")
	errPointNotFound = errors.New("point not found")
	errBaseExists    = errors.New("knowledge base already exists")
)

// notFound replaces a backend 404 with target naming id. Other errors pass
// through unchanged.
func notFound(err, target error, id string) error {
	if api.IsNotFound(err) {
		return fmt.Errorf("%w: %s", target, id)
	}
	return err
}

// newKBCmd creates the 'kb' command group.
func newKBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "kb",
		Aliases: []string{"knowledge"},
		Short:   "Knowledge bases and their points",
		Long: `Commands for the assistant's knowledge bases.

Commands:
  bases   - List, create, delete and sync knowledge bases
  points  - List, browse, edit and import the points of a base`,
	}

	cmd.AddCommand(newKBBasesCmd())
	cmd.AddCommand(newKBPointsCmd())

	return cmd
}

func newKBBasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bases",
		Short: "Manage knowledge bases",
	}

	cmd.AddCommand(newKBBasesListCmd())
	cmd.AddCommand(newKBBasesShowCmd())
	cmd.AddCommand(newKBBasesCreateCmd())
	cmd.AddCommand(newKBBasesDeleteCmd())
	cmd.AddCommand(newKBBasesSyncCmd())

	return cmd
}

func newKBBasesListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List knowledge bases with sync stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			var list *models.BaseList
			err = withSpinner(a.errOut, func() error {
				var err error
				list, err = a.client.ListBases(GetContext())
				return err
			})
			if err != nil {
				return err
			}
			if asJSON {
				return render.JSON(a.out, list)
			}
			render.Bases(a.out, list.Bases)
			fmt.Fprintln(a.out)
			render.BaseStats(a.out, list.Stats)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "J", false, "Output as JSON")

	return cmd
}

func newKBBasesShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <base-id>",
		Short: "Show one knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			b, err := a.client.GetBase(GetContext(), args[0])
			if err != nil {
				return notFound(err, errBaseNotFound, args[0])
			}
			if asJSON {
				return render.JSON(a.out, b)
			}
			render.BaseDetail(a.out, b)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "J", false, "Output as JSON")

	return cmd
}

func newKBBasesCreateCmd() *cobra.Command {
	var nb models.NewBase

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a knowledge base",
		Long: `Create a knowledge base. Without --collection the backend derives
the vector collection name from --nombre.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			b, msg, err := a.client.CreateBase(GetContext(), nb)
			if api.IsConflict(err) {
				return fmt.Errorf("%w: %s", errBaseExists, api.UserMessage(err))
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, msg)
			render.BaseDetail(a.out, b)
			return nil
		},
	}

	cmd.Flags().StringVar(&nb.Nombre, "nombre", "", "Name (required)")
	cmd.Flags().StringVar(&nb.Descripcion, "descripcion", "", "Description")
	cmd.Flags().StringVar(&nb.CollectionName, "collection", "", "Vector collection name")

	return cmd
}

func newKBBasesDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <base-id>",
		Short: "Delete a knowledge base and all of its points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := validation.UUID(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := GetContext()

			b, err := a.client.GetBase(ctx, id)
			if err != nil {
				return notFound(err, errBaseNotFound, id)
			}
			question := fmt.Sprintf("Delete knowledge base %q and its %d point(s)?", b.Nombre, b.TotalPoints)
			if err := confirm(a.in, a.errOut, question); err != nil {
				return err
			}
			msg, err := a.client.DeleteBase(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, msg)
			return nil
		},
	}

	return cmd
}

func newKBBasesSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync <base-id>",
		Short: "Push pending points to the vector store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			var res *models.SyncResult
			err = withSpinner(a.errOut, func() error {
				var err error
				res, err = a.client.SyncBase(GetContext(), args[0])
				return err
			})
			if err != nil {
				return err
			}
			render.SyncResult(a.out, res)
			return nil
		},
	}

	return cmd
}

func newKBPointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "points",
		Short: "Manage the points of a knowledge base",
	}

	cmd.AddCommand(newKBPointsListCmd())
	cmd.AddCommand(newKBPointsBrowseCmd())
	cmd.AddCommand(newKBPointsShowCmd())
	cmd.AddCommand(newKBPointsCreateCmd())
	cmd.AddCommand(newKBPointsUpdateCmd())
	cmd.AddCommand(newKBPointsDeleteCmd())
	cmd.AddCommand(newKBPointsImportCmd())

	return cmd
}

func newKBPointsListCmd() *cobra.Command {
	var f listFlags

	cmd := &cobra.Command{
		Use:   "list <base-id>",
		Short: "List one page of points, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctl, err := newPointsController(a, args[0], nil)
			if err != nil {
				return err
			}
			return runList(GetContext(), a, ctl, &f, render.Points, nil)
		},
	}

	f.register(cmd, false, false)

	return cmd
}

func newKBPointsBrowseCmd() *cobra.Command {
	var f listFlags

	cmd := &cobra.Command{
		Use:   "browse <base-id>",
		Short: "Browse the points of a base interactively",
		Long: `Browse the points of a base page by page. Type "help" at the prompt
for the available commands. Select points and run "delete" to remove them,
"show <id>" to read one and "sync" to push pending points.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseID, err := validation.UUID(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctl, err := newPointsController(a, baseID, drawTo(a.out, render.Points))
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

			b := newBrowser(a, "puntos", ctl, render.Points, validation.UUID)
			b.actions["delete"] = browseAction[string]{
				build: func(_ []string, count int) (string, listview.BulkAction[string], error) {
					return fmt.Sprintf("Delete %d point(s)?", count), deletePoints(a), nil
				},
			}
			b.extras["show"] = browseExtra{
				usage: "<id>             show one point in full",
				run: func(ctx context.Context, args []string) error {
					if len(args) != 1 {
						return errors.New("usage: show <id>")
					}
					pt, err := a.client.GetPoint(ctx, args[0])
					if err != nil {
						return notFound(err, errPointNotFound, args[0])
					}
					render.PointDetail(a.out, pt)
					return nil
				},
			}
			b.extras["sync"] = browseExtra{
				usage: "                 push pending points to the vector store",
				run: func(ctx context.Context, _ []string) error {
					res, err := a.client.SyncBase(ctx, baseID)
					if err != nil {
						return err
					}
					render.SyncResult(a.out, res)
					return b.ctlErr(ctl.Reload(ctx))
				},
			}
			return b.run(GetContext())
		},
	}

	f.registerQuery(cmd, false, false)

	return cmd
}

// deletePoints deletes the selected points one by one, paced by a bulk
// rate limiter. The first failure stops the run; points deleted before it
// stay deleted.
func deletePoints(a *app) listview.BulkAction[string] {
	return func(ctx context.Context, ids []string) (string, error) {
		limiter := ratelimit.NewBulkRateLimiter(GetLogger())
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("%d of %d points deleted: %w", i, len(ids), err)
			}
			if _, err := a.client.DeletePoint(ctx, id); err != nil {
				if i > 0 {
					return "", fmt.Errorf("%d of %d points deleted: %w", i, len(ids), err)
				}
				return "", err
			}
		}
		return fmt.Sprintf("%d punto(s) eliminado(s)", len(ids)), nil
	}
}

func newKBPointsShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <point-id>",
		Short: "Show one point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			pt, err := a.client.GetPoint(GetContext(), args[0])
			if err != nil {
				return notFound(err, errPointNotFound, args[0])
			}
			if asJSON {
				return render.JSON(a.out, pt)
			}
			render.PointDetail(a.out, pt)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "J", false, "Output as JSON")

	return cmd
}

// pointFlags are shared by 'points create' and 'points update'.
type pointFlags struct {
	content  string
	file     string
	meta     []string
	metaJSON string
}

func (f *pointFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.content, "content", "", "Point content")
	cmd.Flags().StringVar(&f.file, "content-file", "", `Read the content from a file ("-" for stdin)`)
	cmd.Flags().StringArrayVar(&f.meta, "meta", nil, `Metadata entry "key=value" (repeatable)`)
	cmd.Flags().StringVar(&f.metaJSON, "metadata", "", "Metadata as a JSON object")
	cmd.MarkFlagsMutuallyExclusive("content", "content-file")
}

// readContent returns the content from --content or --content-file, and
// whether either was given.
func (f *pointFlags) readContent(in io.Reader) (string, bool, error) {
	switch {
	case f.file == "-":
		b, err := io.ReadAll(in)
		return string(b), true, err
	case f.file != "":
		b, err := os.ReadFile(f.file)
		if err != nil {
			return "", true, fmt.Errorf("failed to read content file: %w", err)
		}
		return string(b), true, nil
	case f.content != "":
		return f.content, true, nil
	}
	return "", false, nil
}

// metadata merges --metadata and --meta onto base. --meta wins on
// conflicts.
func (f *pointFlags) metadata(base map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(base)+len(f.meta))
	for k, v := range base {
		out[k] = v
	}
	if f.metaJSON != "" {
		var m map[string]any
		if err := json.Unmarshal([]byte(f.metaJSON), &m); err != nil {
			return nil, fmt.Errorf("invalid --metadata: %w", err)
		}
		for k, v := range m {
			out[k] = v
		}
	}
	for _, kv := range f.meta {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --meta %q: want key=value", kv)
		}
		out[k] = v
	}
	return out, nil
}

func newKBPointsCreateCmd() *cobra.Command {
	var f pointFlags

	cmd := &cobra.Command{
		Use:   "create <base-id>",
		Short: "Add one point to a base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			content, ok, err := f.readContent(a.in)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("--content or --content-file is required")
			}
			meta, err := f.metadata(nil)
			if err != nil {
				return err
			}
			pt, msg, err := a.client.CreatePoint(GetContext(), args[0], models.PointWrite{PageContent: content, Metadata: meta})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, msg)
			fmt.Fprintln(a.out, pt.ID)
			return nil
		},
	}

	f.register(cmd)

	return cmd
}

func newKBPointsUpdateCmd() *cobra.Command {
	var (
		f         pointFlags
		clearMeta bool
	)

	cmd := &cobra.Command{
		Use:   "update <point-id>",
		Short: "Edit a point's content or metadata",
		Long: `Edit a point. Fields not given keep their current value; --meta
entries are merged into the current metadata unless --clear-metadata is
set. The point is marked pending until the base is synced again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := GetContext()

			current, err := a.client.GetPoint(ctx, args[0])
			if err != nil {
				return notFound(err, errPointNotFound, args[0])
			}
			content, ok, err := f.readContent(a.in)
			if err != nil {
				return err
			}
			if !ok {
				content = current.PageContent
			}
			base := current.Metadata
			if clearMeta {
				base = nil
			}
			meta, err := f.metadata(base)
			if err != nil {
				return err
			}
			_, msg, err := a.client.UpdatePoint(ctx, current.ID, models.PointWrite{PageContent: content, Metadata: meta})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, msg)
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().BoolVar(&clearMeta, "clear-metadata", false, "Replace the metadata instead of merging")

	return cmd
}

func newKBPointsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <point-id>...",
		Short: "Delete points",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]string, 0, len(args))
			for _, raw := range args {
				id, err := validation.UUID(raw)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := confirm(a.in, a.errOut, fmt.Sprintf("Delete %d point(s)?", len(ids))); err != nil {
				return err
			}
			msg, err := deletePoints(a)(GetContext(), ids)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, msg)
			return nil
		},
	}

	return cmd
}

func newKBPointsImportCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <base-id> <file.json>",
		Short: "Bulk-import points from a JSON file",
		Long: `Import points from a JSON array. Each entry holds either
pageContent/metadata or contenidoPagina/metadatos. Entries without content
are skipped and listed. Every imported point gets an import_id metadata
entry shared by the whole run, unless it already has one.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseID, err := validation.UUID(args[0])
			if err != nil {
				return err
			}
			file, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer file.Close()

			pf, err := models.ParsePointsFile(file)
			if err != nil {
				return err
			}
			importID := tagImport(pf.Points)

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintf(a.out, "%d punto(s) leídos (formato %s), import_id %s\n", len(pf.Points), pf.Layout, importID)
			for _, s := range pf.Skipped {
				fmt.Fprintf(a.out, "  omitido #%d: %s\n", s.Index, s.Reason)
			}
			if dryRun {
				return nil
			}

			var res *models.PointImportResult
			err = withSpinner(a.errOut, func() error {
				var err error
				res, err = a.client.ImportPoints(GetContext(), baseID, pf.Points)
				return err
			})
			if err != nil {
				return err
			}
			if res.Message != "" {
				fmt.Fprintln(a.out, res.Message)
			}
			render.PointImportResult(a.out, res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and report the file without importing")

	return cmd
}

// tagImport sets a shared import_id on points that have none and returns it.
func tagImport(points []models.PointInput) string {
	id := uuid.NewString()
	for i := range points {
		if points[i].Metadata == nil {
			points[i].Metadata = map[string]any{}
		}
		if _, ok := points[i].Metadata["import_id"]; !ok {
			points[i].Metadata["import_id"] = id
		}
	}
	return id
}
