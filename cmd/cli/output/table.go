package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/crucial707/timetable/internal/models"
)

// RenderTable prints a pretty table to stdout
func RenderTable(headers []string, rows [][]interface{}) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)

	headerRow := table.Row{}
	for _, h := range headers {
		headerRow = append(headerRow, h)
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		t.AppendRow(table.Row(row))
	}

	t.Render()
}

// RenderEntries prints schedule entries as a table.
func RenderEntries(entries []models.Entry) {
	rows := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []interface{}{e.Period, e.Day, e.FromTime, e.ToTime, e.Subject, e.Branch, e.Section, e.Instructor})
	}
	RenderTable([]string{"Period", "Day", "From", "To", "Subject", "Branch", "Section", "Instructor"}, rows)
}

// RenderFieldOutcomes prints the per-field result of a sparse patch.
func RenderFieldOutcomes(outcomes []models.FieldOutcome) {
	rows := make([][]interface{}, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, []interface{}{o.Field, o.Updated, o.Rows, o.Message})
	}
	RenderTable([]string{"Field", "Updated", "Rows", "Message"}, rows)
}

// PrintJSON writes v indented to stdout.
func PrintJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
