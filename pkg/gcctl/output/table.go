package output

import (
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/telekom/gcctl/pkg/gcctl/client"
	"github.com/telekom/gcctl/pkg/gcctl/provision"
)

// Row is one KEY/VALUE line of a details table.
type Row struct {
	Key   string
	Value string
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func WriteDivisionTable(w io.Writer, divisions []client.Division) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Name", "ID", "Home", "State", "Modified"})
	for _, d := range divisions {
		t.AppendRow(table.Row{d.Name, d.ID, yesNo(d.HomeDivision), dash(d.State), FormatTimestamp(d.DateModified)})
	}
	t.Render()
}

func DivisionRows(d *client.Division) []Row {
	rows := []Row{
		{"Name", d.Name},
		{"ID", d.ID},
		{"Description", orText(d.Description, "No description")},
		{"Home Division", yesNo(d.HomeDivision)},
	}
	if d.State != "" {
		rows = append(rows, Row{"State", d.State})
	}
	if d.Version != 0 {
		rows = append(rows, Row{"Version", strconv.Itoa(d.Version)})
	}
	if d.DateCreated != "" {
		rows = append(rows, Row{"Created", FormatTimestamp(d.DateCreated)})
	}
	if d.DateModified != "" {
		rows = append(rows, Row{"Modified", FormatTimestamp(d.DateModified)})
	}
	return rows
}

func UserRows(u *client.User) []Row {
	rows := []Row{
		{"Name", u.Name},
		{"ID", u.ID},
		{"Email", dash(u.Email)},
		{"State", dash(u.State)},
	}
	if u.Division != nil {
		rows = append(rows, Row{"Division", u.Division.Name})
	}
	return rows
}

func WriteDetails(w io.Writer, rows []Row) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Key", "Value"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Key, r.Value})
	}
	t.Render()
}

func WriteReportTable(w io.Writer, report *provision.Report) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Stage", "Status", "Name", "ID", "Reason"})
	for _, s := range report.Stages {
		t.AppendRow(table.Row{string(s.Stage), string(s.Status), dash(s.Name), dash(s.ID), dash(s.Reason)})
	}
	t.Render()
	if report.Deployment != nil {
		WriteDetails(w, DeploymentRows(report.Deployment))
	}
}

func DeploymentRows(d *client.Deployment) []Row {
	rows := []Row{
		{"Deployment", d.Name},
		{"ID", d.ID},
		{"Allow All Domains", yesNo(d.AllowAllDomains)},
		{"Configuration ID", dash(d.Configuration.ID)},
		{"Configuration Version", dash(d.Configuration.Version)},
	}
	flowID := ""
	if d.Flow != nil {
		flowID = d.Flow.ID
	}
	rows = append(rows, Row{"Flow ID", dash(flowID)})
	if d.Status != "" {
		rows = append(rows, Row{"Status", d.Status})
	}
	return append(rows, Row{"Created", FormatTimestamp(d.DateCreated)})
}

// FormatTimestamp renders an RFC 3339 timestamp from the API in local time.
// Values that do not parse are returned unchanged.
func FormatTimestamp(s string) string {
	if s == "" {
		return "-"
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return FormatTime(ts)
}

func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05 MST")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func dash(s string) string {
	return orText(s, "-")
}

func orText(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
