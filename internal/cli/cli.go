package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lang-resolver/internal/catalog"
	"lang-resolver/internal/config"
	"lang-resolver/internal/dataset"
	"lang-resolver/internal/lang"
	"lang-resolver/internal/modeldef"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "lang-resolver",
		Short: "Resolve OCR-captured game text back to localization catalog entries",
		Long: `Maps noisy text recognized on screen to the templated catalog entry that produced it,
together with the values of the template's variables (names, numbers, dates, branches).`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(spreadCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(graphCmd())
	rootCmd.AddCommand(datasetCmd())

	return rootCmd
}

func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// loadCatalog loads the configured language directory, or dir when set.
func loadCatalog(ctx context.Context, cfg *config.Config, dir string) (*lang.Catalog, *catalog.Report, error) {
	if dir == "" {
		dir = cfg.LanguagePath()
	}
	cat, rep, err := catalog.NewLoader(cfg.WorkerCount).LoadDir(ctx, nil, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, rep, nil
}

// modelFlags selects the candidate model definition.
type modelFlags struct {
	file    string
	presets []string
}

func (f *modelFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "model", "", "Candidate model definition file (YAML); defaults to MODEL_FILE")
	cmd.Flags().StringSliceVar(&f.presets, "preset", nil, fmt.Sprintf("Built-in model presets %v", modeldef.PresetNames()))
}

// definition loads the model file, adds presets, or falls back to every preset.
func (f *modelFlags) definition(cfg *config.Config) (*modeldef.Definition, error) {
	path := f.file
	if path == "" {
		path = cfg.ModelFile
	}
	if path == "" {
		presets := f.presets
		if len(presets) == 0 {
			presets = modeldef.PresetNames()
			log.Info().Strs("presets", presets).Msg("No model given, using all presets")
		}
		return modeldef.FromPresets(presets...)
	}

	def, err := modeldef.Load(path)
	if err != nil {
		return nil, err
	}
	def.Presets = append(def.Presets, f.presets...)
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// playerOptions reads the player binding from configuration. They override
// the model file's player section.
func playerOptions(cfg *config.Config) ([]lang.ModelOption, error) {
	var opts []lang.ModelOption
	if cfg.PlayerName != "" {
		opts = append(opts, lang.WithPlayerName(cfg.PlayerName))
	}
	if cfg.PlayerSex != "" {
		sex, ok := lang.ParseSex(cfg.PlayerSex)
		if !ok {
			return nil, fmt.Errorf("PLAYER_SEX %q: %w", cfg.PlayerSex, lang.ErrInvalidSex)
		}
		opts = append(opts, lang.WithPlayerSex(sex))
	}
	return opts, nil
}

// buildModel compiles the selected definition against cat.
func buildModel(cfg *config.Config, flags *modelFlags, cat *lang.Catalog) (*modeldef.Definition, *lang.Model, error) {
	def, err := flags.definition(cfg)
	if err != nil {
		return nil, nil, err
	}
	opts, err := playerOptions(cfg)
	if err != nil {
		return nil, nil, err
	}
	m, err := def.Build(cat, opts...)
	if err != nil {
		return nil, nil, err
	}
	for _, key := range m.Overlaps() {
		log.Warn().Str("key", key).Msg("Key selected by several groups, last group wins")
	}
	log.Info().Int("entries", m.Len()).Int("purge", len(m.PurgeSpread())).Msg("Model built")
	return def, m, nil
}

// openStore opens the configured dataset backend and ensures its schema.
func openStore(ctx context.Context, cfg *config.Config) (dataset.Store, error) {
	var store dataset.Store
	switch cfg.DatasetBackend {
	case "postgres":
		pg, err := dataset.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store = pg
	case "sqlite", "":
		s := dataset.NewSQLiteStore()
		if err := s.Open(ctx, cfg.SQLitePath); err != nil {
			return nil, err
		}
		store = s
	default:
		return nil, fmt.Errorf("unknown dataset backend %q", cfg.DatasetBackend)
	}

	if err := store.InitSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// connectNeo4j creates and verifies a Neo4j driver.
func connectNeo4j(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Msg("Connected to Neo4j")
	return driver, nil
}
