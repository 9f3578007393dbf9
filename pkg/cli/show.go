package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/valyala/fastjson"

	"github.com/logdeck/logdeck/pkg/grid"
	"github.com/logdeck/logdeck/pkg/models"
	"github.com/logdeck/logdeck/pkg/types"
)

func newShowCommand(cli *types.CLI, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <tableName>",
		Short: "Print the rows of one table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cli, version)
			if err != nil {
				return err
			}

			rows, err := newAPIClient(cli, cfg).FetchRows(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			switch cli.Show.Format {
			case "json":
				return renderJSON(os.Stdout, rows)
			case "csv":
				return renderCSV(os.Stdout, grid.Render(rows))
			case "table", "":
				renderTable(os.Stdout, grid.Render(rows))
				return nil
			default:
				return fmt.Errorf("unknown format %q, want table, csv or json", cli.Show.Format)
			}
		},
	}

	cmd.Flags().StringVar(&cli.Show.Format, "format", "table", "Output format: table, csv or json")

	return cmd
}

func renderTable(w io.Writer, g *grid.Table) {
	if g == nil {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(g.Headers))
	for i, header := range g.Headers {
		headerRow[i] = header
	}
	t.AppendHeader(headerRow)

	for _, cells := range g.Cells {
		row := make(table.Row, len(cells))
		for i, cell := range cells {
			row[i] = cell
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(g.Cells))
}

func renderCSV(w io.Writer, g *grid.Table) error {
	if g == nil {
		return nil
	}

	if _, err := fmt.Fprintln(w, strings.Join(g.Headers, ",")); err != nil {
		return err
	}
	for _, cells := range g.Cells {
		escaped := make([]string, len(cells))
		for i, cell := range cells {
			escaped[i] = escapeCSV(cell)
		}
		if _, err := fmt.Fprintln(w, strings.Join(escaped, ",")); err != nil {
			return err
		}
	}
	return nil
}

// renderJSON writes the rows back out the way the server sent them,
// field order and number tokens included.
func renderJSON(w io.Writer, rows []models.Row) error {
	var arena fastjson.Arena

	arr := arena.NewArray()
	for i, row := range rows {
		obj := arena.NewObject()
		for _, f := range row.Fields {
			obj.Set(f.Name, jsonValue(&arena, f.Value))
		}
		arr.SetArrayItem(i, obj)
	}

	buf := arr.MarshalTo(nil)
	buf = append(buf, '\n')
	_, err := w.Write(buf)
	return err
}

func jsonValue(arena *fastjson.Arena, v models.Value) *fastjson.Value {
	switch v.Kind {
	case models.KindNull:
		return arena.NewNull()
	case models.KindInt, models.KindFloat:
		return arena.NewNumberString(v.Str)
	default:
		return arena.NewString(v.Str)
	}
}

func escapeCSV(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
