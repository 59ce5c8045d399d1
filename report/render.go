package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/olekukonko/tablewriter"
)

// Header is the comparison table header.
var Header = []string{"Computed Price", "Published (AMC2)", "Time Grid", "Rho", "Abs Diff"}

var (
	failColor = color.New(color.FgRed, color.Bold)
	passColor = color.New(color.FgGreen)
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Records formats rows as table cells without color.
func (r *Run) Records() [][]string {
	out := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		published, diff := "-", "-"
		if row.Published != nil {
			published = row.Published.StringFixed(2)
		}
		if d := row.AbsDiff(); d != nil {
			diff = d.StringFixed(4)
		}
		out = append(out, []string{
			strconv.FormatFloat(row.Computed, 'f', 4, 64),
			published,
			strconv.Itoa(row.TimeGrid),
			strconv.FormatFloat(row.Rho, 'f', 2, 64),
			diff,
		})
	}
	return out
}

// Render writes the comparison table followed by a one-line summary.
// Differences above the tolerance are highlighted on terminals.
func (r *Run) Render(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(Header)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoFormatHeaders(false)
	for i, rec := range r.Records() {
		if r.Rows[i].Published != nil {
			if r.Rows[i].Within(r.Tolerance) {
				rec[4] = passColor.Sprint(rec[4])
			} else {
				rec[4] = failColor.Sprint(rec[4])
			}
		}
		table.Append(rec)
	}
	table.Render()

	_, err := fmt.Fprintf(w, "run %s: %s scheme, %d cases, %d outside %.2f, %s\n",
		r.ID, r.Scheme, len(r.Rows), r.Failures(), r.Tolerance, r.Elapsed.Round(1e6))
	return err
}

// WriteJSON writes the run as indented JSON.
func (r *Run) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
