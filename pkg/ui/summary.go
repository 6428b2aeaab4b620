// Package ui renders run reports and validation results for the terminal.
package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"

	"tablegen/pkg/catalog/schema"
	"tablegen/pkg/datagen"
	"tablegen/pkg/loader"
	"tablegen/pkg/utils/functools"
)

// grid is one rendered table. Columns flagged numeric are right aligned.
type grid struct {
	headers []string
	numeric map[int]bool
	rows    [][]string
}

func (g grid) render() string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(g.headers...).
		Rows(g.rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case g.numeric[col]:
				return numberStyle
			default:
				return cellStyle
			}
		}).
		String()
}

func count(n uint64) string {
	return humanize.Comma(int64(n))
}

func duration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

// RenderReport renders what a run built. err, when set, is the failure that
// stopped the run; the partial report is rendered above it.
func RenderReport(report *loader.Report, err error) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("tablegen run"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("run ") + runBadgeStyle.Render(report.RunID))
	b.WriteString("\n\n")

	var totalRows, totalEntries uint64
	if len(report.Tables) > 0 {
		tables := grid{
			headers: []string{"Table", "Rows", "Batches", "Buffers released", "Time"},
			numeric: map[int]bool{1: true, 2: true, 3: true, 4: true},
		}
		for _, res := range report.Tables {
			if res.Name == "" {
				continue
			}
			totalRows += res.Stats.Rows
			tables.rows = append(tables.rows, []string{
				res.Name,
				count(res.Stats.Rows),
				humanize.Comma(int64(res.Stats.Batches)),
				humanize.Comma(int64(res.Stats.Released)),
				duration(res.Duration),
			})
		}
		b.WriteString(tables.render())
		b.WriteString("\n")
	}

	if len(report.Indexes) > 0 {
		indexes := grid{
			headers: []string{"Index", "Table", "Entries", "Time"},
			numeric: map[int]bool{2: true, 3: true},
		}
		for _, res := range report.Indexes {
			if res.Name == "" {
				continue
			}
			totalEntries += res.Stats.Entries
			indexes.rows = append(indexes.rows, []string{
				res.Name,
				res.Table,
				count(res.Stats.Entries),
				duration(res.Duration),
			})
		}
		b.WriteString(indexes.render())
		b.WriteString("\n")
	}

	summary := fmt.Sprintf("%s rows in %s tables, %s index entries in %s",
		count(totalRows), humanize.Comma(int64(len(report.Tables))),
		count(totalEntries), duration(report.Duration))
	if err != nil {
		b.WriteString(errorStyle.Render("FAILED") + " " + summary + "\n")
		b.WriteString(RenderErrors(err))
		return b.String()
	}
	b.WriteString(successStyle.Render("OK") + " " + summary + "\n")
	return b.String()
}

// RenderErrors lists every error folded into err, one per line.
func RenderErrors(err error) string {
	if err == nil {
		return ""
	}
	errs := []error{err}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		errs = flatten(merr)
	}

	var b strings.Builder
	for _, e := range errs {
		b.WriteString(errorStyle.Render("  ✗ "))
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return b.String()
}

func flatten(merr *multierror.Error) []error {
	var out []error
	for _, e := range merr.Errors {
		var nested *multierror.Error
		if errors.As(e, &nested) {
			out = append(out, flatten(nested)...)
			continue
		}
		out = append(out, e)
	}
	return out
}

// RenderPlan lists the specs a run would build, for the validate command.
func RenderPlan(tables []*datagen.TableSpec, indexes []*datagen.IndexSpec) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("tablegen plan"))
	b.WriteString("\n")

	var rows uint64
	if len(tables) > 0 {
		g := grid{
			headers: []string{"Table", "Rows", "Columns", "Clones"},
			numeric: map[int]bool{1: true, 2: true, 3: true},
		}
		for _, spec := range tables {
			clones := functools.Reduce(spec.Columns, 0, func(n int, col *datagen.ColumnSpec) int {
				if col.Clone {
					return n + 1
				}
				return n
			})
			rows += spec.Rows
			g.rows = append(g.rows, []string{
				spec.Name,
				count(spec.Rows),
				humanize.Comma(int64(len(spec.Columns))),
				humanize.Comma(int64(clones)),
			})
		}
		b.WriteString(g.render())
		b.WriteString("\n")
	}

	if len(indexes) > 0 {
		g := grid{headers: []string{"Index", "Table", "Key", "Kind", "Unique"}}
		for _, spec := range indexes {
			key := functools.Map(spec.Columns, func(col datagen.IndexColumnSpec) string { return col.Source })
			unique := "no"
			if spec.Unique {
				unique = "yes"
			}
			kind := spec.Kind
			if kind == "" {
				kind = schema.OrderedIndex
			}
			g.rows = append(g.rows, []string{spec.Name, spec.Table, strings.Join(key, ", "), string(kind), unique})
		}
		b.WriteString(g.render())
		b.WriteString("\n")
	}

	b.WriteString(successStyle.Render("valid") + " " + fmt.Sprintf("%s tables, %s rows, %s indexes",
		humanize.Comma(int64(len(tables))), count(rows), humanize.Comma(int64(len(indexes)))) + "\n")
	return b.String()
}
