package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mbseqa/internal/config"
	"mbseqa/internal/llm"
	"mbseqa/internal/logger"
	"mbseqa/internal/model"
	"mbseqa/internal/pipeline"
	"mbseqa/internal/qa"
	"mbseqa/internal/resolver"
	"mbseqa/internal/specindex"
)

var (
	rootCmd = &cobra.Command{
		Use:   "mbseqa",
		Short: "Grounded QA-dataset generation for MBSE models",
	}

	cfgPath       string
	modelPath     string
	specPath      string
	questionsPath string
	outDir        string
	graphJSONOut  string
	kPDF          int
	workers       int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "Path to the YAML config file")

	runCmd.Flags().StringVar(&modelPath, "model", "", "Capella XML model file")
	runCmd.Flags().StringVar(&specPath, "spec", "", "PDF requirements/specification file")
	runCmd.Flags().StringVar(&questionsPath, "questions", "", "Seed questions JSON file (array of strings)")
	runCmd.Flags().StringVarP(&outDir, "outdir", "o", "results", "Output directory for QA results")
	runCmd.Flags().StringVarP(&graphJSONOut, "graph-json", "g", "", "Optional path for the node-link graph snapshot")
	runCmd.Flags().IntVarP(&kPDF, "k-pdf", "k", 0, "Spec chunks to retrieve per question (overrides config)")
	runCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent question workers (overrides config)")
	_ = runCmd.MarkFlagRequired("model")
	_ = runCmd.MarkFlagRequired("spec")
	_ = runCmd.MarkFlagRequired("questions")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(exportCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full QA generation batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cfgPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if kPDF > 0 {
			cfg.Retrieval.PDFChunks = kPDF
		}
		if workers > 0 {
			cfg.Pipeline.Workers = workers
		}

		log, err := logger.New(cfg.Logging.Env, cfg.Logging.Level)
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx := cmd.Context()

		// 1. Build the containment graph
		log.Info("building model graph", zap.String("path", modelPath))
		graph, err := model.Build(modelPath)
		if err != nil {
			return err
		}
		log.Info("model graph built", zap.Int("nodes", graph.NumNodes()), zap.Int("edges", graph.NumEdges()))

		if graphJSONOut != "" {
			if err := model.ExportFile(graph, graphJSONOut); err != nil {
				return err
			}
			log.Info("graph snapshot written", zap.String("path", graphJSONOut))
		}

		// 2. Provider clients
		clients, err := llm.NewClients(ctx, llm.Options{
			Provider:     cfg.AI.Provider,
			APIKey:       cfg.AI.APIKey,
			BaseURL:      cfg.AI.BaseURL,
			EmbedModel:   cfg.AI.EmbedModel,
			ChatModel:    cfg.AI.ChatModel,
			ExtractModel: cfg.AI.ExtractModel,
			Dimension:    cfg.AI.Dimension,
		})
		if err != nil {
			return err
		}

		// 3. Build the specification index
		log.Info("loading specification", zap.String("path", specPath))
		doc, err := specindex.LoadPDF(specPath)
		if err != nil {
			return &specindex.IndexBuildError{Source: specPath, Err: err}
		}

		var cache *specindex.Store
		if cfg.Cache.Path != "" {
			cache, err = specindex.OpenStore(cfg.Cache.Path)
			if err != nil {
				log.Warn("embedding cache unavailable", zap.Error(err))
				cache = nil
			} else {
				defer cache.Close()
			}
		}

		index, err := specindex.Build(ctx, specPath, doc, specindex.ChunkConfig{
			Size:    cfg.Chunking.Size,
			Overlap: cfg.Chunking.Overlap,
		}, clients.Embedder, cache, log)
		if err != nil {
			return err
		}
		log.Info("spec index built", zap.Int("chunks", index.Size()))

		// 4. Seed questions
		questions, err := loadQuestions(questionsPath)
		if err != nil {
			return err
		}
		log.Info("starting batch", zap.Int("questions", len(questions)), zap.Int("workers", cfg.Pipeline.Workers))

		// 5. Batch run
		runner := pipeline.NewRunner(
			graph,
			index,
			resolver.New(cfg.Resolver.Threshold),
			qa.NewEntityExtractor(clients.Extract),
			qa.NewGenerator(clients.Generate),
			clients.Embedder,
			pipeline.Options{
				PDFChunks:       cfg.Retrieval.PDFChunks,
				ModelSnippets:   cfg.Retrieval.ModelSnippets,
				SnippetDepth:    cfg.Snippet.DepthLimit,
				SnippetMaxLen:   cfg.Snippet.MaxLen,
				Workers:         cfg.Pipeline.Workers,
				QuestionTimeout: time.Duration(cfg.Pipeline.QuestionTimeoutSec) * time.Second,
			},
			log,
		)
		records := runner.Run(ctx, questions)

		// 6. Write results
		path, err := pipeline.WriteResults(outDir, records)
		if err != nil {
			return err
		}
		log.Info("batch results written", zap.String("path", path))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the model graph as node-link JSON without running the batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		graph, err := model.Build(modelPath)
		if err != nil {
			return err
		}
		if graphJSONOut == "" {
			return model.Export(graph, os.Stdout)
		}
		return model.ExportFile(graph, graphJSONOut)
	},
}

func init() {
	exportCmd.Flags().StringVar(&modelPath, "model", "", "Capella XML model file")
	exportCmd.Flags().StringVarP(&graphJSONOut, "graph-json", "g", "", "Output path, stdout when empty")
	_ = exportCmd.MarkFlagRequired("model")
}

func loadQuestions(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	var questions []string
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse questions %s: %w", path, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("no seed questions in %s", path)
	}
	return questions, nil
}
