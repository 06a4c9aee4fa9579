package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"lang-resolver/internal/config"
	"lang-resolver/internal/dataset"
	"lang-resolver/internal/graph"
	"lang-resolver/internal/interpolation"
	"lang-resolver/internal/lang"
	"lang-resolver/internal/resolver"
	"lang-resolver/internal/textutil"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <template>",
		Short: "Parse a catalog template and print its items and variables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd.OutOrStdout(), args[0])
		},
	}
}

func runParse(w io.Writer, src string) error {
	in, err := interpolation.ParseStrict(src)
	if err != nil {
		var gerr *interpolation.GrammarError
		if errors.As(err, &gerr) {
			fmt.Fprintf(w, "%s\n%s^\n", src, strings.Repeat(" ", gerr.Pos))
		}
		return err
	}

	renderItems(w, in)
	v := lang.NewValue("", in)
	fmt.Fprintf(w, "variables:  %s\n", v.Variables())
	fmt.Fprintf(w, "conditions: %s\n", v.Conditions())
	return nil
}

func spreadCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "spread <key>",
		Short: "Print the purge spread of a catalog entry and its OCR symbols",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			cfg := config.Load()
			cat, _, err := loadCatalog(ctx, cfg, dir)
			if err != nil {
				return err
			}
			opts, err := playerOptions(cfg)
			if err != nil {
				return err
			}
			m, err := lang.NewModel(cat, []lang.Group{{Name: "key", Checker: lang.Literal(args[0])}}, opts...)
			if err != nil {
				return err
			}
			if m.Len() == 0 {
				return fmt.Errorf("key %q not found in catalog", args[0])
			}
			renderSpread(cmd.OutOrStdout(), m)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Language directory (defaults to LANG_DIR/LANGUAGE)")
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [dir]",
		Short: "Load a catalog and list entries that fell back to raw text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			cat, rep, err := loadCatalog(ctx, config.Load(), dir)
			if err != nil {
				return err
			}
			renderCheck(cmd.OutOrStdout(), cat, rep)
			return nil
		},
	}
}

func resolveCmd() *cobra.Command {
	var (
		flags   modelFlags
		cutoff  float64
		scorer  string
		save    bool
		workers int
		title   string
	)

	cmd := &cobra.Command{
		Use:   "resolve [text...]",
		Short: "Resolve observed texts against a candidate model",
		Long: `Resolves each argument, or each stdin line when no argument is given, to the catalog
entries and variable values that best explain it. With --title the dialog title is resolved
first and the texts are matched against that dialog's body model.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			cfg := config.Load()
			if !cmd.Flags().Changed("cutoff") {
				cutoff = cfg.ScoreCutoff
			}
			if !cmd.Flags().Changed("scorer") {
				scorer = cfg.Scorer
			}
			if workers <= 0 {
				workers = cfg.WorkerCount
			}

			texts := args
			if len(texts) == 0 {
				var err error
				if texts, err = readLines(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			for i, t := range texts {
				texts[i] = textutil.Normalize(t)
			}

			cat, _, err := loadCatalog(ctx, cfg, "")
			if err != nil {
				return err
			}
			def, m, err := buildModel(cfg, &flags, cat)
			if err != nil {
				return err
			}

			score, ok := resolver.ScorerByName(scorer)
			if !ok {
				return fmt.Errorf("unknown scorer %q", scorer)
			}
			r := resolver.New(cutoff, resolver.WithScorer(score))

			if title != "" {
				opts, err := playerOptions(cfg)
				if err != nil {
					return err
				}
				bodies, err := def.DialogBodies(cat, opts...)
				if err != nil {
					return err
				}
				if m, err = dialogBody(r, cat, bodies, title, opts); err != nil {
					return err
				}
			}

			results, err := r.ResolveBatch(ctx, texts, m, workers)
			if err != nil {
				return err
			}
			renderResults(cmd.OutOrStdout(), texts, results)

			if !save {
				return nil
			}
			return saveResults(ctx, cmd.OutOrStdout(), cfg, texts, results)
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&cutoff, "cutoff", 80, "Minimum score (0-100) for a match; defaults to SCORE_CUTOFF")
	cmd.Flags().StringVar(&scorer, "scorer", "ratio", "Similarity scorer: ratio or jaro-winkler")
	cmd.Flags().BoolVar(&save, "save", false, "Persist matches to the dataset store")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel resolutions; defaults to WORKER_COUNT")
	cmd.Flags().StringVar(&title, "title", "", "Observed dialog title selecting the body model")

	return cmd
}

// dialogBody resolves the observed title against every registered title key
// and returns the body model of the best one. Titles are shown with a
// trailing colon that the catalog text lacks.
func dialogBody(r *resolver.Resolver, cat *lang.Catalog, bodies *lang.DialogBodies, title string, opts []lang.ModelOption) (*lang.Model, error) {
	title = textutil.TrimColon(textutil.Normalize(title))
	if bodies.Len() == 0 {
		return nil, errors.New("model definition has no dialogs")
	}
	titles, err := lang.NewModel(cat, []lang.Group{{
		Name:    "dialog titles",
		Checker: lang.Literals(bodies.Titles()...),
	}}, opts...)
	if err != nil {
		return nil, err
	}

	res := r.Resolve(title, titles)
	best, ok := res.Best()
	if !ok {
		return nil, fmt.Errorf("dialog title %q matches no title key", title)
	}
	body, _ := bodies.Body(best.Value.Key())
	log.Info().Str("title", best.Value.Key()).Float64("score", best.Score).Int("entries", body.Len()).Msg("Dialog body selected")
	return body, nil
}

func saveResults(ctx context.Context, w io.Writer, cfg *config.Config, texts []string, results []resolver.Result) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var records []dataset.Record
	for i, res := range results {
		records = append(records, dataset.FromMatch(texts[i], res)...)
	}
	inserted, err := store.Save(ctx, records)
	if err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	fmt.Fprintf(w, "saved %d of %d records\n", inserted, len(records))
	return nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return lines, nil
}

func graphCmd() *cobra.Command {
	var (
		flags  modelFlags
		shared string
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the candidate model's template/variable structure to Neo4j",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			cfg := config.Load()
			cat, _, err := loadCatalog(ctx, cfg, "")
			if err != nil {
				return err
			}
			_, m, err := buildModel(cfg, &flags, cat)
			if err != nil {
				return err
			}

			driver, err := connectNeo4j(ctx, cfg)
			if err != nil {
				return err
			}
			defer driver.Close(ctx)

			builder := graph.NewGraphBuilder(driver)
			if err := builder.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("ensure graph schema: %w", err)
			}
			if _, err := builder.ExportModel(ctx, m); err != nil {
				return fmt.Errorf("export model: %w", err)
			}

			if shared == "" {
				return nil
			}
			related, err := graph.NewGraphQuerier(driver).SharedVariables(ctx, shared)
			if err != nil {
				return err
			}
			renderShared(cmd.OutOrStdout(), shared, related)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&shared, "shared", "", "After export, list entries sharing variables with this key")
	return cmd
}

func datasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Manage the dataset of resolved matches",
	}
	cmd.AddCommand(datasetExportCmd())
	return cmd
}

func datasetExportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <output>",
		Short: "Export stored matches to TSV or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			store, err := openStore(ctx, config.Load())
			if err != nil {
				return err
			}
			defer store.Close()

			switch format {
			case "tsv":
				return dataset.ExportTSV(ctx, store, args[0])
			case "json":
				return dataset.ExportJSON(ctx, store, args[0])
			default:
				return fmt.Errorf("unknown export format %q", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "tsv", "Export format: tsv or json")
	return cmd
}
