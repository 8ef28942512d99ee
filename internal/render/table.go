// Package render draws list snapshots, stats panels and transcripts as
// plain-text tables for the terminal.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Column width caps. Cells wider than these are cut with "...".
const (
	nameWidth    = 24
	emailWidth   = 32
	previewWidth = 60
	labelWidth   = 20
)

func newTable(w io.Writer) *tablewriter.Table {
	symbols := tw.NewSymbolCustom("Spaces").
		WithRow("").
		WithColumn("  ").
		WithTopLeft("").
		WithTopMid("").
		WithTopRight("").
		WithMidLeft("").
		WithCenter("").
		WithMidRight("").
		WithBottomLeft("").
		WithBottomMid("").
		WithBottomRight("")

	table := tablewriter.NewWriter(w)
	table.Options(
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Right:  tw.Off,
				Top:    tw.Off,
				Bottom: tw.Off,
			},
			Symbols: symbols,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader:     tw.Off,
					ShowFooter:     tw.Off,
					BetweenRows:    tw.Off,
					BetweenColumns: tw.On,
				},
			},
		}),
		tablewriter.WithPadding(tw.Padding{
			Left:  "",
			Right: "",
		}),
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
	)
	return table
}

// writeTable renders header plus rows. The header goes in as the first row
// so it keeps the same alignment and no separator line is drawn.
func writeTable(w io.Writer, header []string, rows [][]string) {
	var builder strings.Builder

	table := newTable(&builder)
	table.Append(header) //nolint:errcheck
	for _, row := range rows {
		table.Append(row) //nolint:errcheck
	}
	table.Render() //nolint:errcheck

	fmt.Fprint(w, builder.String())
}

// JSON writes v indented, for --json output.
func JSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// cut shortens s to limit runes.
func cut(s string, limit int) string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	if limit <= 3 {
		return string(r[:limit])
	}
	return string(r[:limit-3]) + "..."
}

// oneLine collapses newlines and runs of spaces.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
