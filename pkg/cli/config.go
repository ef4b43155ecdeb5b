package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/libris/pkg/adapter"
	"github.com/m-mizutani/libris/pkg/repository"
	"github.com/m-mizutani/libris/pkg/service/recommend"
	"github.com/m-mizutani/libris/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// config holds configuration values
type config struct {
	// Data sources
	dataConfig     string
	booksPath      string
	usersPath      string
	embeddingsPath string

	// Adapters
	geminiProject   string
	geminiLocation  string
	generativeModel string
	embeddingModel  string
	availabilityURL string

	logLevel string
}

// dataFile mirrors the optional YAML data configuration. Flag values take
// precedence over the file.
type dataFile struct {
	Books        string `yaml:"books"`
	Interactions string `yaml:"interactions"`
	Embeddings   string `yaml:"embeddings"`
}

// dataFlags returns flags for the catalog data sources with destination config
func dataFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "data-config",
			Usage:       "Path to YAML file naming the data files",
			Sources:     cli.EnvVars("LIBRIS_DATA_CONFIG"),
			Destination: &cfg.dataConfig,
		},
		&cli.StringFlag{
			Name:        "books",
			Aliases:     []string{"b"},
			Usage:       "Path to the book catalog CSV",
			Sources:     cli.EnvVars("LIBRIS_BOOKS"),
			Destination: &cfg.booksPath,
		},
		&cli.StringFlag{
			Name:        "interactions",
			Aliases:     []string{"u"},
			Usage:       "Path to the user interaction CSV",
			Sources:     cli.EnvVars("LIBRIS_INTERACTIONS"),
			Destination: &cfg.usersPath,
		},
		&cli.StringFlag{
			Name:        "embeddings",
			Aliases:     []string{"e"},
			Usage:       "Path to the book embedding matrix (.npy)",
			Sources:     cli.EnvVars("LIBRIS_EMBEDDINGS"),
			Destination: &cfg.embeddingsPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("LIBRIS_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("LIBRIS_GEMINI_PROJECT"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("LIBRIS_GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "generative-model",
			Usage:       "Gemini generative model",
			Sources:     cli.EnvVars("LIBRIS_GENERATIVE_MODEL"),
			Destination: &cfg.generativeModel,
		},
		&cli.StringFlag{
			Name:        "embedding-model",
			Usage:       "Gemini embedding model",
			Sources:     cli.EnvVars("LIBRIS_EMBEDDING_MODEL"),
			Destination: &cfg.embeddingModel,
		},
	}
}

func availabilityFlag(cfg *config) cli.Flag {
	return &cli.StringFlag{
		Name:        "availability-url",
		Usage:       "Base URL of the library availability endpoint (empty disables lookups)",
		Value:       "https://seengen.biblioweb.ch",
		Sources:     cli.EnvVars("LIBRIS_AVAILABILITY_URL"),
		Destination: &cfg.availabilityURL,
	}
}

// setupLogging builds the logger from flags and attaches it to the context.
func (cfg *config) setupLogging(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

// resolveDataPaths merges the optional YAML data config into unset flags.
func (cfg *config) resolveDataPaths() error {
	if cfg.dataConfig == "" {
		return nil
	}

	raw, err := os.ReadFile(cfg.dataConfig)
	if err != nil {
		return goerr.Wrap(err, "failed to read data config", goerr.V("path", cfg.dataConfig))
	}

	var file dataFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return goerr.Wrap(err, "failed to parse data config", goerr.V("path", cfg.dataConfig))
	}

	if cfg.booksPath == "" {
		cfg.booksPath = file.Books
	}
	if cfg.usersPath == "" {
		cfg.usersPath = file.Interactions
	}
	if cfg.embeddingsPath == "" {
		cfg.embeddingsPath = file.Embeddings
	}

	return nil
}

// newCatalog loads the catalog with its embedding matrix
func (cfg *config) newCatalog() (*repository.Catalog, error) {
	if err := cfg.resolveDataPaths(); err != nil {
		return nil, err
	}
	if cfg.booksPath == "" {
		return nil, goerr.New("books path is required")
	}
	if cfg.embeddingsPath == "" {
		return nil, goerr.New("embeddings path is required")
	}

	catalog, err := repository.NewCatalog(cfg.booksPath, cfg.embeddingsPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load catalog")
	}
	return catalog, nil
}

// newInteractions loads the user interaction log filtered to the catalog
func (cfg *config) newInteractions(catalog *repository.Catalog) (*repository.Interactions, error) {
	if cfg.usersPath == "" {
		return nil, goerr.New("interactions path is required")
	}

	interactions, err := repository.NewInteractions(cfg.usersPath, catalog)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load interaction log")
	}
	return interactions, nil
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	var opts []adapter.GeminiOption
	if cfg.generativeModel != "" {
		opts = append(opts, adapter.WithGenerativeModel(cfg.generativeModel))
	}
	if cfg.embeddingModel != "" {
		opts = append(opts, adapter.WithEmbeddingModel(cfg.embeddingModel))
	}

	gemini, err := adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini adapter")
	}
	return gemini, nil
}

// newRecommender wires the retrieval engine with the Gemini text encoder.
// Commands that never touch the encoder (author, coread, lookup) pass nil
// gemini and skip the keyword path.
func (cfg *config) newRecommender(catalog *repository.Catalog, interactions *repository.Interactions, gemini adapter.Gemini) *recommend.Recommender {
	var encoder recommend.Encoder
	if gemini != nil {
		encoder = adapter.NewTextEncoder(gemini, catalog.Dimension())
	}
	return recommend.New(catalog, interactions, encoder)
}
