package main

import (
	"fmt"
	"log"
	"time"

	"fieldlens/internal/classifier"
	"fieldlens/internal/config"
	"fieldlens/internal/engine"
	"fieldlens/internal/extract"
	"fieldlens/internal/extract/generative"
	"fieldlens/internal/extract/pattern"
	"fieldlens/internal/extract/structured"
	"fieldlens/internal/handler"
	"fieldlens/internal/port"
	"fieldlens/internal/reconcile"
	"fieldlens/internal/router"
	s3storage "fieldlens/internal/storage/s3"
	"fieldlens/internal/typeconfig"
	"fieldlens/internal/validator"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Document type definitions: builtins plus any YAML overlays
	store, err := typeconfig.LoadStore(cfg.TypeConfig.Dir)
	if err != nil {
		return fmt.Errorf("failed to load type definitions: %w", err)
	}

	// Extraction layers
	structuredEx, err := structured.NewExtractor(&cfg.Textract)
	if err != nil {
		return fmt.Errorf("failed to initialize structured query layer: %w", err)
	}
	generativeEx := generative.NewExtractor(&cfg.Generative)
	patternEx := pattern.NewExtractor()

	orchestrator := extract.NewOrchestrator(structuredEx, generativeEx, patternEx, cfg.Engine.ConfidenceFloor)

	// Object storage for by-reference documents
	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	cls := classifier.New(store.All(), cfg.Engine.MinClassification)
	val := validator.NewEngine(validator.Options{
		MoneyTolerance:  cfg.Engine.MoneyTolerance,
		ConfidenceFloor: cfg.Engine.ConfidenceFloor,
		ReviewAverage:   cfg.Engine.ReviewAverage,
	})
	mergeOpts := reconcile.Options{
		PrimaryThreshold:   cfg.Engine.PrimaryConfidence,
		SecondaryThreshold: cfg.Engine.SecondaryConfidence,
		TieMargin:          cfg.Engine.TieMargin,
		AgreementBonus:     cfg.Engine.AgreementBonus,
	}

	eng := engine.New(cls, store, orchestrator, val, storage, cfg.S3.Bucket, mergeOpts)

	// Handlers and router
	extractH := handler.NewExtractHandler(eng)
	typesH := handler.NewTypesHandler(store)
	healthH := handler.NewHealthHandler()
	r := router.Setup(extractH, typesH, healthH, cfg.CORS.AllowedOrigins)

	log.Printf("Server starting on %s (read_timeout=%s write_timeout=%s)",
		cfg.Server.Port, cfg.Server.ReadTimeout.Round(time.Second), cfg.Server.WriteTimeout.Round(time.Second))
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
