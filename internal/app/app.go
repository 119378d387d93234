// internal/app/app.go
package app

import (
	"context"
	"fmt"

	"cardscan-go/internal/config"
	"cardscan-go/internal/extractor"
	"cardscan-go/internal/logger"
	"cardscan-go/internal/ner"
	"cardscan-go/internal/ocr"
	"cardscan-go/internal/ocr/tesseract"
	"cardscan-go/internal/processor"
	"cardscan-go/internal/storage"
)

// App holds the long-lived handles built once at startup.
type App struct {
	Recognizer ner.Recognizer
	Pipeline   *extractor.Pipeline
	Processor  *processor.Processor
	Store      storage.Store
}

func NewApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	rec, err := ner.Open(NERConfig(cfg), log)
	if err != nil {
		return nil, err
	}
	pipeline, err := NewPipeline(cfg, rec, log)
	if err != nil {
		_ = rec.Close()
		return nil, err
	}

	engine, err := OpenOCR(cfg.OCRBackend, cfg.OCRLanguages)
	if err != nil {
		_ = rec.Close()
		return nil, err
	}
	log.WithField("ocr_engine", engine.Name()).Info("ocr engine ready")

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		_ = rec.Close()
		return nil, err
	}
	log.WithField("storage", cfg.StorageBackend).Info("upload storage ready")

	pre := ocr.DefaultPreprocess
	pre.MinWidth = cfg.OCRMinWidth

	return &App{
		Recognizer: rec,
		Pipeline:   pipeline,
		Processor:  processor.New(engine, pipeline, pre, log),
		Store:      store,
	}, nil
}

func (a *App) Close() error {
	if a.Recognizer != nil {
		return a.Recognizer.Close()
	}
	return nil
}

func NERConfig(cfg *config.Config) ner.Config {
	return ner.Config{
		Backend:       cfg.NERBackend,
		ModelPath:     cfg.NERModelPath,
		TokenizerPath: cfg.NERTokenizerPath,
		OrtLibPath:    cfg.OrtLibPath,
		Labels:        cfg.NERLabels,
		MaxSeqLen:     cfg.NERMaxSeqLen,
		TokenTypeIDs:  cfg.NERTokenTypeIDs,
		RemoteURL:     cfg.NERRemoteURL,
		APIKey:        cfg.NERAPIKey,
		Timeout:       cfg.NERTimeout,
		MaxRetryTime:  cfg.NERMaxRetryTime,
	}
}

// NewPipeline builds the extractor around an opened recognizer.
func NewPipeline(cfg *config.Config, rec extractor.Recognizer, log *logger.Logger) (*extractor.Pipeline, error) {
	policy, err := extractor.ParseMergePolicy(cfg.MergePolicy)
	if err != nil {
		return nil, err
	}
	if policy != extractor.PolicyOverwrite {
		log.WithField("merge_policy", policy).Warn("non-default merge policy: entity phone/email no longer override patterns")
	}
	opts := []extractor.Option{extractor.WithMergePolicy(policy), extractor.WithLogger(log)}
	if len(cfg.JobTitles) > 0 {
		opts = append(opts, extractor.WithJobTitles(cfg.JobTitles))
	}
	return extractor.New(rec, opts...)
}

func OpenOCR(backend string, languages []string) (ocr.Engine, error) {
	switch backend {
	case "tesseract":
		return tesseract.New(languages...), nil
	case "mock":
		return ocr.NewMockEngine(""), nil
	}
	return nil, fmt.Errorf("unknown ocr backend %q", backend)
}

func OpenStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.StorageBackend == "s3" {
		return storage.NewS3Store(ctx, storage.S3Config{
			AccessKey: cfg.AwsAccessKey,
			SecretKey: cfg.AwsSecretKey,
			Region:    cfg.AwsRegion,
			Bucket:    cfg.BucketName,
		})
	}
	return storage.NewLocalStore(cfg.UploadDir)
}
