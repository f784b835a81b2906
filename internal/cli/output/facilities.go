package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/facilitydir/pkg/core"
)

// amenitySep joins amenity names inside a single cell.
const amenitySep = "; "

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func render(w io.Writer, t table.Writer, format Format, n int, noun string) error {
	switch format {
	case FormatCSV:
		t.RenderCSV()
	case FormatMarkdown:
		t.RenderMarkdown()
	default:
		if n == 0 {
			_, _ = fmt.Fprintf(w, "(0 %s)\n", noun)
			return nil
		}
		t.Render()
		_, _ = fmt.Fprintf(w, "(%d %s)\n", n, noun)
	}
	return nil
}

// Facilities writes a facility list.
func Facilities(w io.Writer, facilities []core.Facility, format Format) error {
	if format == FormatJSON {
		if facilities == nil {
			facilities = []core.Facility{}
		}
		return WriteJSON(w, facilities)
	}

	t := newTable(w, table.Row{"ID", "Name", "Address", "Amenities"})
	for _, f := range facilities {
		t.AppendRow(table.Row{f.ID, f.Name, f.Address, strings.Join(f.Facilities, amenitySep)})
	}
	return render(w, t, format, len(facilities), "facilities")
}

// Facility writes a single facility record.
func (r *Renderer) Facility(f *core.Facility, format Format) error {
	if format == FormatJSON {
		return r.JSON(f)
	}
	if format != FormatTable {
		return Facilities(r.out, []core.Facility{*f}, format)
	}

	r.Header(1, f.Name)
	r.KeyValue("ID", f.ID)
	r.KeyValue("Address", f.Address)
	r.KeyValue("Location", formatLocation(f.Location))
	if len(f.Facilities) == 0 {
		r.KeyValue("Amenities", r.styles.Muted.Render("none"))
		return nil
	}
	r.KeyValue("Amenities", "")
	for _, name := range f.Facilities {
		r.Printf("  - %s\n", name)
	}
	return nil
}

// Amenities writes the amenity catalogue.
func Amenities(w io.Writer, amenities []core.Amenity, format Format) error {
	if format == FormatJSON {
		if amenities == nil {
			amenities = []core.Amenity{}
		}
		return WriteJSON(w, amenities)
	}

	t := newTable(w, table.Row{"ID", "Name"})
	for _, a := range amenities {
		t.AppendRow(table.Row{a.ID, a.Name})
	}
	return render(w, t, format, len(amenities), "amenities")
}

// Stats writes table row counts.
func Stats(w io.Writer, s core.Stats, format Format) error {
	if format == FormatJSON {
		return WriteJSON(w, s)
	}

	t := newTable(w, table.Row{"Table", "Rows"})
	t.AppendRows([]table.Row{
		{"facilities", s.Facilities},
		{"amenities", s.Amenities},
		{"facility_amenities", s.Associations},
	})
	return render(w, t, format, 3, "tables")
}

func formatLocation(l core.Location) string {
	return strconv.FormatFloat(l.Latitude, 'f', -1, 64) + ", " + strconv.FormatFloat(l.Longitude, 'f', -1, 64)
}

// Page writes facilities numbered from start+1, for interactive browsing.
func Page(w io.Writer, facilities []core.Facility, start int) {
	if len(facilities) == 0 {
		return
	}
	t := newTable(w, table.Row{"#", "Name", "Amenities"})
	for i, f := range facilities {
		t.AppendRow(table.Row{start + i + 1, f.Name, strings.Join(f.Facilities, amenitySep)})
	}
	t.Render()
}
