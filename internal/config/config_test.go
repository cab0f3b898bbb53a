package config

import "testing"

func TestValidateRejectsNonPositiveConcurrency(t *testing.T) {
	cfg := &OperatorConfig{
		LogLevel:           "info",
		MaxConcurrentJobs:  0,
		DefaultTimeLimit:   1.0,
		OutputCapBytes:     1024,
		PollQuantumMillis:  10,
	}
	if err := validate(cfg); err == nil {
		t.Fatal("expected error for non-positive MaxConcurrentJobs")
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := &OperatorConfig{
		LogLevel:          "not-a-level",
		MaxConcurrentJobs: 1,
		DefaultTimeLimit:  1.0,
		OutputCapBytes:    1024,
		PollQuantumMillis: 10,
	}
	if err := validate(cfg); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestValidateAcceptsSaneDefaults(t *testing.T) {
	cfg := &OperatorConfig{
		LogLevel:          "info",
		MaxConcurrentJobs: 4,
		DefaultTimeLimit:  1.0,
		OutputCapBytes:    1024,
		PollQuantumMillis: 10,
	}
	if err := validate(cfg); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestGetLogLevelDefaultsToInfoOnGarbage(t *testing.T) {
	cfg := &OperatorConfig{LogLevel: "garbage"}
	if cfg.GetLogLevel().String() != "info" {
		t.Fatalf("expected info fallback, got %v", cfg.GetLogLevel())
	}
}
