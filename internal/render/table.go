package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/violenttestpen/hikaku"
)

const ratioHeader = "ratio (max / min)"

// ratioHighlight is the ratio from which a comparison cell is coloured.
const ratioHighlight = 2.0

// kindNamer is implemented by labels that can name their kind without the
// payload, e.g. "len" for len(16).
type kindNamer interface {
	KindName() string
}

// Comparison writes cmp as a table: a header of benchmark label values, one
// row per selection and a row of ratios.
func Comparison[L hikaku.Label[L]](w io.Writer, cmp hikaku.Comparison[L]) {
	tbl := tablewriter.NewWriter(w)
	tbl.SetAutoFormatHeaders(false)
	tbl.SetAutoWrapText(false)
	tbl.SetAlignment(tablewriter.ALIGN_RIGHT)
	tbl.SetHeaderAlignment(tablewriter.ALIGN_RIGHT)

	hdr := make([]string, 0, 1+len(cmp.Header))
	if len(cmp.Header) > 0 {
		hdr = append(hdr, kindName(cmp.Header[0]))
	} else {
		hdr = append(hdr, "")
	}
	for _, l := range cmp.Header {
		hdr = append(hdr, labelValue(l))
	}
	tbl.SetHeader(hdr)

	tbl.Append(valueRow(hikaku.Join(cmp.ALabels, ","), cmp.AValues))
	tbl.Append(valueRow(hikaku.Join(cmp.BLabels, ","), cmp.BValues))

	ratios := make([]string, 0, 1+len(cmp.Ratios))
	ratios = append(ratios, ratioHeader)
	for _, r := range cmp.Ratios {
		s := FormatRatio(r)
		if r >= ratioHighlight {
			s = color.YellowString(s)
		}
		ratios = append(ratios, s)
	}
	tbl.Append(ratios)
	tbl.Render()
}

// Selection writes one line per benchmark of sel with scaled cycle counts.
func Selection[L hikaku.Label[L]](w io.Writer, sel hikaku.Selection[L]) {
	fmt.Fprintf(w, "%s (%s)\n", color.CyanString(hikaku.Join(sel.Labels, ",")), sel.Statistic)
	for _, v := range sel.Values {
		fmt.Fprintf(w, "  %s:\t%s\n", v.Label, color.GreenString(FormatCycles(v.Value)))
	}
}

func valueRow(name string, vals []uint64) []string {
	row := make([]string, 0, 1+len(vals))
	row = append(row, name)
	for _, v := range vals {
		row = append(row, FormatUint(v))
	}
	return row
}

func kindName[L hikaku.Label[L]](l L) string {
	if k, ok := any(l).(kindNamer); ok {
		return k.KindName()
	}
	return l.String()
}

// labelValue prints the payload of l, falling back to the label itself for
// kinds without one.
func labelValue[L hikaku.Label[L]](l L) string {
	v, err := l.Value()
	if err != nil {
		return l.String()
	}
	return FormatUint(uint64(v))
}
