package config

import "testing"

func TestLoadUploadDefaults(t *testing.T) {
	t.Setenv("MAX_FILE_SIZE", "")
	t.Setenv("STORAGE_PATH", "")
	t.Setenv("NATS_SUBJECT", "")

	cfg := Load()
	if cfg.MaxFileSizeBytes != 50*1024*1024 {
		t.Fatalf("expected default max file size 50MB, got %d", cfg.MaxFileSizeBytes)
	}
	if cfg.StoragePath != "./data/uploads" {
		t.Fatalf("expected default storage path, got %q", cfg.StoragePath)
	}
	if cfg.NATSSubject != "documents.uploaded" {
		t.Fatalf("expected default nats subject, got %q", cfg.NATSSubject)
	}
}

func TestLoadWorkerDefaults(t *testing.T) {
	t.Setenv("WORKER_CONCURRENCY", "")
	t.Setenv("WORKER_TIMEOUT_SECONDS", "")
	t.Setenv("OPENAI_MAX_RPS", "")

	cfg := Load()
	if cfg.WorkerConcurrency != 4 {
		t.Fatalf("expected default worker concurrency 4, got %d", cfg.WorkerConcurrency)
	}
	if cfg.WorkerTimeoutSecs != 300 {
		t.Fatalf("expected default worker timeout 300s, got %d", cfg.WorkerTimeoutSecs)
	}
	if cfg.OpenAIMaxRPS != 2 {
		t.Fatalf("expected default openai rps 2, got %d", cfg.OpenAIMaxRPS)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("MAX_FILE_SIZE", "1048576")
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("EXTRACTION_TEXT_LIMIT", "4000")
	t.Setenv("API_RATE_LIMIT_RPS", "5")

	cfg := Load()
	if cfg.MaxFileSizeBytes != 1048576 {
		t.Fatalf("expected max file size override, got %d", cfg.MaxFileSizeBytes)
	}
	if cfg.WorkerConcurrency != 8 {
		t.Fatalf("expected worker concurrency 8, got %d", cfg.WorkerConcurrency)
	}
	if cfg.ExtractionTextLimit != 4000 {
		t.Fatalf("expected text limit 4000, got %d", cfg.ExtractionTextLimit)
	}
	if cfg.APIRateLimitRPS != 5 {
		t.Fatalf("expected rate limit rps 5, got %d", cfg.APIRateLimitRPS)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MAX_FILE_SIZE", "not-a-number")
	t.Setenv("WORKER_CONCURRENCY", "many")

	cfg := Load()
	if cfg.MaxFileSizeBytes != 50*1024*1024 {
		t.Fatalf("expected fallback on malformed MAX_FILE_SIZE, got %d", cfg.MaxFileSizeBytes)
	}
	if cfg.WorkerConcurrency != 4 {
		t.Fatalf("expected fallback on malformed WORKER_CONCURRENCY, got %d", cfg.WorkerConcurrency)
	}
}
