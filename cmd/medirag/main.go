// Package main is the medirag CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/medioracle/medirag/internal/cli"
	"github.com/medioracle/medirag/internal/completion"
	"github.com/medioracle/medirag/internal/config"
	"github.com/medioracle/medirag/internal/diagnosis"
	"github.com/medioracle/medirag/internal/embedding"
	"github.com/medioracle/medirag/internal/keyword"
	"github.com/medioracle/medirag/internal/models"
	"github.com/medioracle/medirag/internal/rag"
	"github.com/medioracle/medirag/internal/safety"
	"github.com/medioracle/medirag/internal/server"
	"github.com/medioracle/medirag/internal/synthesis"
	"github.com/medioracle/medirag/internal/vector"
	"github.com/medioracle/medirag/internal/watcher"
	"github.com/medioracle/medirag/pkg/utils"
	"go.uber.org/zap"
)

var version = server.ServiceVersion

const defaultConfigPath = "/usr/local/etc/medirag/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "medirag server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "query":
		runQuery()
	case "diagnose":
		runDiagnose()
	case "ingest":
		runIngest()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("medirag version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (corpus events, retrieval scoring, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	logger.Info("engine initialized",
		zap.String("embedding_mode", components.Engine.Stats().EmbeddingMode),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if len(cfg.Corpus.Directories) > 0 {
		corpusWatcher := watcher.New(components.Engine, cfg.Corpus.Directories,
			watcher.WithExtensions(cfg.Corpus.Extensions),
			watcher.WithRecursive(cfg.Corpus.RecursiveOrDefault()),
			watcher.WithLogger(logger),
		)
		if err := corpusWatcher.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start corpus watcher", zap.Error(err))
		}
		corpusWatcher.Sync()
	}

	srv := server.NewServer(components.Engine, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printQueryUsage prints query subcommand usage.
func printQueryUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: medirag query [flags] <question>\n\n")
	fmt.Fprintf(fs.Output(), "Question is all remaining arguments joined by spaces. Multi-word questions work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
By default the question is sent to a running server. Use --server "" to run
the engine in-process instead; that mode loads corpus.directories from the
config file before answering.

Examples:
  medirag query what are the symptoms of diabetes
  medirag query "What are the symptoms of diabetes?"   # same as above
  medirag query --output json "treatment for migraine"
  medirag query --server "" --config ./config.yaml "first aid for burns"
`)
}

// buildQuery joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the
// positional arguments to the front of the slice so that flag.Parse() sees
// them. Go's flag package stops at the first non-flag argument, so
// "medirag query \"question\" -output json" would otherwise leave -output
// unparsed.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// parseSymptoms splits positional args into a symptom list. Commas separate
// symptoms, so "fever, sore throat" is two symptoms while "fever" "cough" as
// separate args is also two.
func parseSymptoms(args []string) []string {
	var symptoms []string
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if s := strings.TrimSpace(part); s != "" {
				symptoms = append(symptoms, s)
			}
		}
	}
	return symptoms
}

func parseOutputFormat(name string) (cli.OutputFormat, error) {
	switch name {
	case "json":
		return cli.OutputJSON, nil
	case "text":
		return cli.OutputText, nil
	}
	return "", fmt.Errorf("unknown output format %q; use text or json", name)
}

func runQuery() {
	queryArgs := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for in-process mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = run the engine in-process)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printQueryUsage(fs) }
	_ = fs.Parse(queryArgs)

	if fs.NArg() < 1 {
		printQueryUsage(fs)
		os.Exit(1)
	}
	question := buildQuery(fs.Args())
	if question == "" {
		printQueryUsage(fs)
		os.Exit(1)
	}
	format, err := parseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if *serverURL != "" {
		response, err := queryViaHTTP(*serverURL, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteQueryResponse(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// In-process engine (no server required).
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()
	syncCorpus(cfg, components, logger)

	response, err := components.Engine.Query(context.Background(), question)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteQueryResponse(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func queryViaHTTP(serverURL, question string) (*models.QueryResponse, error) {
	body, err := json.Marshal(models.QueryRequest{Query: question})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/query", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

// printDiagnoseUsage prints diagnose subcommand usage.
func printDiagnoseUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: medirag diagnose [flags] <symptoms>\n\n")
	fmt.Fprintf(fs.Output(), "Symptoms are the remaining arguments; separate multi-word symptoms with commas.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Suggestions are educational, never a diagnosis. Emergency symptoms always
return an urgent-care instruction instead of condition scores.

Examples:
  medirag diagnose "fever, cough"
  medirag diagnose --age 34 "fever, sore throat, runny nose"
  medirag diagnose --duration-days 3 --output json headache nausea
`)
}

func runDiagnose() {
	diagArgs := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("diagnose", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for in-process mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = run the engine in-process)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	age := fs.Int("age", 0, "patient age (optional)")
	gender := fs.String("gender", "", "patient gender (optional)")
	duration := fs.Int("duration-days", 0, "days since symptom onset (optional)")
	fs.Usage = func() { printDiagnoseUsage(fs) }
	_ = fs.Parse(diagArgs)

	symptoms := parseSymptoms(fs.Args())
	if len(symptoms) == 0 {
		printDiagnoseUsage(fs)
		os.Exit(1)
	}
	format, err := parseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	req := models.DiagnoseRequest{
		Symptoms:     symptoms,
		Age:          *age,
		Gender:       *gender,
		DurationDays: *duration,
	}

	if *serverURL != "" {
		response, err := diagnoseViaHTTP(*serverURL, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Diagnose failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteDiagnosisResponse(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()
	syncCorpus(cfg, components, logger)

	response, err := components.Engine.Diagnose(context.Background(), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Diagnose failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteDiagnosisResponse(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func diagnoseViaHTTP(serverURL string, req models.DiagnoseRequest) (*models.DiagnosisResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/diagnose", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.DiagnosisResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for in-process mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = validate extraction in-process)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: medirag ingest [flags] <file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)
	format, err := parseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Failed to stat path: %v\n", err)
		os.Exit(1)
	}

	if *serverURL != "" {
		if info.IsDir() {
			n, err := ingestDirectoryViaHTTP(*serverURL, path, config.Default().Corpus.Extensions, format)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Ingested %d file(s) from %s\n", n, path)
			return
		}
		result, err := ingestViaHTTP(*serverURL, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteIngestResult(os.Stdout, result, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// In-process: the index is in-memory, so this validates extraction and
	// chunking rather than populating a running service.
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	if info.IsDir() {
		w := watcher.New(components.Engine, []string{path},
			watcher.WithExtensions(cfg.Corpus.Extensions),
			watcher.WithLogger(logger),
		)
		w.Sync()
		stats := components.Engine.Stats()
		fmt.Printf("Ingested %s: %d chunks from %d sources\n",
			path, stats.Index.TotalDocuments, stats.Index.TotalSources)
		return
	}

	result, err := components.Engine.IngestFile(context.Background(), path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteIngestResult(os.Stdout, result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func ingestViaHTTP(serverURL, path string) (*models.IngestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/ingest", mw.FormDataContentType(), &body)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var result models.IngestResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

func ingestDirectoryViaHTTP(serverURL, dir string, extensions []string, format cli.OutputFormat) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if !hasExtension(path, extensions) {
			return nil
		}
		result, err := ingestViaHTTP(serverURL, path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		count++
		_ = cli.WriteIngestResult(os.Stdout, result, format)
		return nil
	})
	return count, err
}

func hasExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for in-process mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = inspect an in-process engine)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status rag.Stats
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		syncCorpus(cfg, components, logger)
		status = components.Engine.Stats()
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("chunks:               %d   # indexed text chunks\n", status.Index.TotalDocuments)
		fmt.Printf("sources:              %d   # ingested documents\n", status.Index.TotalSources)
		fmt.Printf("keyword_documents:    %d   # chunks in the keyword index\n", status.KeywordDocuments)
		fmt.Printf("embedding_mode:       %s\n", status.EmbeddingMode)
		fmt.Printf("similarity_threshold: %.2f\n", status.Threshold)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*rag.Stats, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s rag.Stats
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Embedder   embedding.Embedder
	Index      *vector.MemoryIndex
	Keywords   keyword.KeywordIndex
	Completion completion.Client
	Engine     *rag.Engine
}

// Close releases external resources. The engine closes the embedder and
// keyword index it owns.
func (c *Components) Close() {
	if c.Engine != nil {
		_ = c.Engine.Close()
	}
	if c.Completion != nil {
		_ = c.Completion.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	embedder, err := newEmbedder(&cfg.Embedding, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	index, err := vector.NewMemoryIndex(cfg.Embedding.Dimensions, cfg.Retrieval.MinVisibleSimilarity)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}

	keywords, err := keyword.NewBleveIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	guard, err := safety.NewGuard(safety.DefaultRules())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize safety guard: %w", err)
	}

	scorer, err := diagnosis.NewScorer(guard,
		diagnosis.WithTopConditions(cfg.Retrieval.MaxConditions),
		diagnosis.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize diagnosis scorer: %w", err)
	}

	synthOpts := []synthesis.Option{
		synthesis.WithDisclaimer(safety.MedicalDisclaimer),
		synthesis.WithLogger(logger),
	}
	var completer completion.Client
	if cfg.Completion.Enabled {
		client, err := completion.NewOpenAIClient(
			cfg.Completion.BaseURL,
			os.Getenv(cfg.Completion.APIKeyEnv),
			cfg.Completion.Model,
			cfg.Completion.MaxTokens,
			cfg.Completion.Temperature,
			time.Duration(cfg.Completion.TimeoutSeconds)*time.Second,
		)
		if err != nil {
			logger.Warn("completion disabled, using extractive answers", zap.Error(err))
		} else {
			completer = client
			synthOpts = append(synthOpts, synthesis.WithCompletion(client))
		}
	}
	synth := synthesis.NewSynthesizer(synthOpts...)

	spell := keyword.NewSpellChecker(keyword.NewVocabulary(diagnosis.VocabularyWords()))

	engine, err := rag.NewEngine(embedder, index, guard, scorer, synth,
		rag.WithChunking(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap),
		rag.WithTopK(cfg.Retrieval.TopK),
		rag.WithThresholds(cfg.Retrieval.SimilarityThreshold, cfg.Retrieval.MockSimilarityThreshold),
		rag.WithKeywordIndex(keywords),
		rag.WithSpellChecker(spell),
		rag.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}

	return &Components{
		Embedder:   embedder,
		Index:      index,
		Keywords:   keywords,
		Completion: completer,
		Engine:     engine,
	}, nil
}

// newEmbedder resolves the configured provider. "auto" picks the OpenAI
// embedder when the API key environment variable is set and the deterministic
// mock otherwise.
func newEmbedder(cfg *config.EmbeddingConfig, logger *zap.Logger) (embedding.Embedder, error) {
	provider := cfg.Provider
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if provider == config.ProviderAuto {
		if apiKey != "" {
			provider = config.ProviderOpenAI
		} else {
			provider = config.ProviderMock
		}
	}
	switch provider {
	case config.ProviderMock:
		return embedding.NewMockEmbedder(cfg.Dimensions), nil
	case config.ProviderOpenAI:
		emb, err := embedding.NewOpenAIEmbedder(
			cfg.BaseURL,
			apiKey,
			cfg.Model,
			cfg.Dimensions,
			time.Duration(cfg.TimeoutSeconds)*time.Second,
			cfg.MaxRetries,
			cfg.CacheSize,
		)
		if err != nil {
			return nil, err
		}
		return embedding.NewFallback(emb, logger), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// syncCorpus loads configured corpus directories into the in-memory index so
// in-process commands see the same documents a running server would.
func syncCorpus(cfg *config.Config, components *Components, logger *zap.Logger) {
	if len(cfg.Corpus.Directories) == 0 {
		return
	}
	w := watcher.New(components.Engine, cfg.Corpus.Directories,
		watcher.WithExtensions(cfg.Corpus.Extensions),
		watcher.WithRecursive(cfg.Corpus.RecursiveOrDefault()),
		watcher.WithLogger(logger),
	)
	w.Sync()
}

func printUsage() {
	fmt.Println(`medirag - Medical document RAG engine

Usage:
  medirag server [flags]                 Start the HTTP server
  medirag query [flags] <question>       Answer a question from the corpus
  medirag diagnose [flags] <symptoms>    Score possible conditions for symptoms
  medirag ingest [flags] <file-or-dir>   Ingest a document or directory
  medirag status [flags]                 Show engine status
  medirag version                        Show version
  medirag help                           Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/medirag/config.yaml)
  --debug            Enable debug logging (corpus events, retrieval scoring, etc.)

Query Flags:
  --config string    Config file path (for in-process mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to run the engine in-process.
  --output string    Output format: text or json (default: text)

Diagnose Flags:
  --config string         Config file path (for in-process mode)
  --server string         Server URL (default: http://localhost:8080). Use empty (--server "") to run the engine in-process.
  --output string         Output format: text or json (default: text)
  --age int               Patient age (optional)
  --gender string         Patient gender (optional)
  --duration-days int     Days since symptom onset (optional)

Ingest Flags:
  --config string    Config file path (for in-process mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to validate extraction locally.
  --output string    Output format: text or json (default: text)

Status Flags:
  --config string    Config file path (for in-process mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for an in-process engine.
  --output string    Output format: text or json (default: text)

All responses are educational information, not medical advice.

Examples:
  medirag server
  medirag query "What are the symptoms of diabetes?"
  medirag query --output json "treatment for migraine"
  medirag diagnose "fever, cough" --age 34
  medirag diagnose --duration-days 3 "sore throat, runny nose"
  medirag ingest docs/handbook.pdf
  medirag ingest --server "" ./corpus    # validate extraction locally
  medirag status --output json`)
}
