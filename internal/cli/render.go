package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"lang-resolver/internal/catalog"
	"lang-resolver/internal/interpolation"
	"lang-resolver/internal/lang"
	"lang-resolver/internal/resolver"
	"lang-resolver/internal/textutil"

	"github.com/jedib0t/go-pretty/v6/table"
)

const maxCellRunes = 60

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func itemKind(it interpolation.Item) string {
	switch it.(type) {
	case interpolation.Literal:
		return "literal"
	case interpolation.Variable:
		return "variable"
	case interpolation.Gendered:
		return "gendered"
	case interpolation.Conditional:
		return "conditional"
	default:
		return "?"
	}
}

func renderItems(w io.Writer, in *interpolation.Interpolation) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Kind", "Source"})
	for i, it := range in.Items() {
		t.AppendRow(table.Row{i, itemKind(it), fmt.Sprintf("%q", it.Source())})
	}
	t.Render()
}

// renderSpread prints the purge spread of m and its OCR symbol whitelist.
func renderSpread(w io.Writer, m *lang.Model) {
	values := m.PurgeSpread()
	t := newTable(w)
	t.AppendHeader(table.Row{"Text", "Binding"})
	for _, v := range values {
		t.AppendRow(table.Row{v.String(), v.Binding().String()})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d values)\n", len(values))
	_, _ = fmt.Fprintf(w, "symbols: %q\n", m.Symbols())
}

func renderCheck(w io.Writer, cat *lang.Catalog, rep *catalog.Report) {
	raw := cat.Raw()
	if len(raw) > 0 {
		t := newTable(w)
		t.AppendHeader(table.Row{"Key", "Source", "Diagnostic"})
		for _, v := range raw {
			t.AppendRow(table.Row{v.Key(), rep.Sources[v.Key()], v.Interpolation().Diagnostic()})
		}
		t.Render()
	}
	_, _ = fmt.Fprintf(w, "files: %d  entries: %d  discarded: %d  duplicates: %d  raw: %d\n",
		rep.Files, rep.Entries, rep.Discarded, rep.Duplicates, rep.Raw)
}

func renderResults(w io.Writer, texts []string, results []resolver.Result) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Observed", "Key", "Text", "Score", "Binding"})
	for i, res := range results {
		observed := textutil.Truncate(texts[i], maxCellRunes)
		if res.NoMatch() {
			t.AppendRow(table.Row{observed, "-", "", "", ""})
			continue
		}
		for j, m := range res.Matches {
			if j > 0 {
				observed = ""
			}
			t.AppendRow(table.Row{
				observed,
				m.Value.Key(),
				textutil.Truncate(m.Value.String(), maxCellRunes),
				fmt.Sprintf("%.2f", m.Score),
				m.Value.Binding().String(),
			})
		}
		if res.Ambiguous() {
			t.AppendRow(table.Row{"", "(ambiguous)", "", "", ""})
		}
	}
	t.Render()
}

func renderShared(w io.Writer, key string, shared map[string][]string) {
	if len(shared) == 0 {
		_, _ = fmt.Fprintf(w, "%s shares no variables\n", key)
		return
	}
	names := make([]string, 0, len(shared))
	for n := range shared {
		names = append(names, n)
	}
	sort.Strings(names)

	t := newTable(w)
	t.AppendHeader(table.Row{"Variable", "Entries"})
	for _, n := range names {
		t.AppendRow(table.Row{n, strings.Join(shared[n], ", ")})
	}
	t.Render()
}
