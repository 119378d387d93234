package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string

	// extraction
	MergePolicy string
	JobTitles   []string

	// entity model
	NERBackend       string
	NERModelPath     string
	NERTokenizerPath string
	NERLabels        []string
	NERMaxSeqLen     int
	NERTokenTypeIDs  bool
	OrtLibPath       string
	NERRemoteURL     string
	NERAPIKey        string
	NERTimeout       time.Duration
	NERMaxRetryTime  time.Duration

	// ocr
	OCRBackend   string
	OCRLanguages []string
	OCRMinWidth  int

	// uploads
	StorageBackend string
	UploadDir      string
	AwsAccessKey   string
	AwsSecretKey   string
	AwsRegion      string
	BucketName     string
	MaxUploadBytes int64
	BatchWorkers   int

	CORSOrigins    []string
	RequestTimeout time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "local"),

		MergePolicy: getEnv("MERGE_POLICY", "overwrite"),
		JobTitles:   getEnvList("JOB_TITLES", nil),

		NERBackend:       strings.ToLower(getEnv("NER_BACKEND", "onnx")),
		NERModelPath:     getEnv("NER_MODEL_PATH", "models/ner/model.onnx"),
		NERTokenizerPath: getEnv("NER_TOKENIZER_PATH", "models/ner/tokenizer.json"),
		NERLabels:        getEnvList("NER_LABELS", nil),
		NERMaxSeqLen:     getEnvInt("NER_MAX_SEQ_LEN", 256),
		NERTokenTypeIDs:  getEnvBool("NER_TOKEN_TYPE_IDS", true),
		OrtLibPath:       getEnv("ORT_LIB_PATH", ""),
		NERRemoteURL:     getEnv("NER_REMOTE_URL", ""),
		NERAPIKey:        getEnv("NER_API_KEY", ""),
		NERTimeout:       getEnvDuration("NER_TIMEOUT", 10*time.Second),
		NERMaxRetryTime:  getEnvDuration("NER_MAX_RETRY_TIME", 20*time.Second),

		OCRBackend:   strings.ToLower(getEnv("OCR_BACKEND", "tesseract")),
		OCRLanguages: getEnvList("OCR_LANGUAGES", []string{"eng"}),
		OCRMinWidth:  getEnvInt("OCR_MIN_WIDTH", 1000),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", "local")),
		UploadDir:      getEnv("UPLOAD_DIR", "static/uploads"),
		AwsAccessKey:   getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:   getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:      getEnv("AWS_REGION", "us-east-2"),
		BucketName:     getEnv("BUCKET_NAME", ""),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
		BatchWorkers:   getEnvInt("BATCH_WORKERS", 4),

		CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 60*time.Second),
	}

	// mock switches kept from the demo setup
	if getEnvBool("USE_MOCK_NER", false) {
		cfg.NERBackend = "mock"
	}
	if getEnvBool("USE_MOCK_OCR", false) {
		cfg.OCRBackend = "mock"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.NERBackend {
	case "onnx", "mock":
	case "remote":
		if c.NERRemoteURL == "" {
			return fmt.Errorf("NER_REMOTE_URL not set for remote NER backend")
		}
	default:
		return fmt.Errorf("unknown NER_BACKEND %q", c.NERBackend)
	}
	switch c.OCRBackend {
	case "tesseract", "mock":
	default:
		return fmt.Errorf("unknown OCR_BACKEND %q", c.OCRBackend)
	}
	switch c.StorageBackend {
	case "local":
	case "s3":
		if c.BucketName == "" {
			return fmt.Errorf("BUCKET_NAME not set for s3 storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	return nil
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
