package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"lang-resolver/internal/config"
	"lang-resolver/internal/lang"
	"lang-resolver/internal/resolver"
	"lang-resolver/internal/textutil"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const reloadDebounce = 100 * time.Millisecond

func watchCmd() *cobra.Command {
	var (
		flags  modelFlags
		cutoff float64
		scorer string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Resolve stdin lines while reloading the catalog on change",
		Long: `Reads observed texts from stdin, one per line, and prints the resolution of each.
The language directory is watched; on change the catalog is reloaded and the model rebuilt,
which invalidates the last-result cache.`,
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
			score, ok := resolver.ScorerByName(scorer)
			if !ok {
				return fmt.Errorf("unknown scorer %q", scorer)
			}

			cat, _, err := loadCatalog(ctx, cfg, "")
			if err != nil {
				return err
			}
			_, m, err := buildModel(cfg, &flags, cat)
			if err != nil {
				return err
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer func() { _ = watcher.Close() }()
			if err := watcher.Add(cfg.LanguagePath()); err != nil {
				return fmt.Errorf("watch %s: %w", cfg.LanguagePath(), err)
			}
			log.Info().Str("dir", cfg.LanguagePath()).Msg("Watching language directory")

			r := resolver.New(cutoff, resolver.WithScorer(score))

			eg, egctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				watchLoop(egctx, watcher, func() { reload(egctx, cfg, m) })
				return nil
			})
			eg.Go(func() error {
				defer cancel()
				return resolveLines(egctx, cmd.InOrStdin(), cmd.OutOrStdout(), r, m)
			})
			err = eg.Wait()

			hits, misses := r.CacheStats()
			log.Info().Uint64("hits", hits).Uint64("misses", misses).Msg("Watch stopped")
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&cutoff, "cutoff", 80, "Minimum score (0-100) for a match; defaults to SCORE_CUTOFF")
	cmd.Flags().StringVar(&scorer, "scorer", "ratio", "Similarity scorer: ratio or jaro-winkler")
	return cmd
}

// watchLoop calls onChange once per burst of write/create events.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, onChange func()) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("Change detected")

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(reloadDebounce, onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("Watcher error")
		}
	}
}

// reload reloads the catalog and rebuilds m. A failed reload keeps the
// previous build.
func reload(ctx context.Context, cfg *config.Config, m *lang.Model) {
	cat, _, err := loadCatalog(ctx, cfg, "")
	if err != nil {
		log.Error().Err(err).Msg("Reload failed, keeping previous catalog")
		return
	}
	if err := m.Rebuild(cat); err != nil {
		log.Error().Err(err).Msg("Rebuild failed, keeping previous model")
		return
	}
	log.Info().Uint64("generation", m.Generation()).Int("entries", m.Len()).Msg("Model rebuilt")
}

// resolveLines resolves each non-empty line of in until EOF or cancellation.
func resolveLines(ctx context.Context, in io.Reader, out io.Writer, r *resolver.Resolver, m *lang.Model) error {
	lines := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errCh <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errCh:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}
			text := textutil.Normalize(line)
			if strings.TrimSpace(text) == "" {
				continue
			}
			renderResults(out, []string{text}, []resolver.Result{r.Cached(text, m)})
		}
	}
}
