package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// WriteTSV writes records as tab-separated lines with a header. Bindings
// are rendered as sorted name=value pairs joined by ';'.
func WriteTSV(w io.Writer, records []Record) error {
	if _, err := fmt.Fprintln(w, "id\tkey\ttext\tobserved\tscore\tbindings\tambiguous"); err != nil {
		return err
	}
	for _, r := range records {
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%s\t%t\n",
			r.ID,
			escapeTSV(r.Key),
			escapeTSV(r.Text),
			escapeTSV(r.Observed),
			r.Score,
			escapeTSV(formatBindings(r.Bindings)),
			r.Ambiguous,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(records)
}

// ExportTSV writes every stored record to a TSV file.
func ExportTSV(ctx context.Context, store Store, outputPath string) error {
	return export(ctx, store, outputPath, "TSV", WriteTSV)
}

// ExportJSON writes every stored record to a JSON file.
func ExportJSON(ctx context.Context, store Store, outputPath string) error {
	return export(ctx, store, outputPath, "JSON", WriteJSON)
}

func export(ctx context.Context, store Store, outputPath, format string, write func(io.Writer, []Record) error) error {
	records, err := store.All(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create %s file: %w", format, err)
	}
	defer f.Close()

	if err := write(f, records); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}

	log.Info().Str("path", outputPath).Int("records", len(records)).Msgf("Exported dataset to %s", format)
	return nil
}

func formatBindings(b map[string]string) string {
	names := make([]string, 0, len(b))
	for n := range b {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + "=" + b[n]
	}
	return strings.Join(parts, ";")
}

// escapeTSV replaces tabs and newlines in a string for TSV safety.
func escapeTSV(s string) string {
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}
