package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "3001" {
		t.Errorf("Port = %q, want 3001", cfg.Port)
	}
	if cfg.EmbeddingDimension != 768 {
		t.Errorf("EmbeddingDimension = %d, want 768", cfg.EmbeddingDimension)
	}
	if cfg.AnswerLanguage != "Bahasa Indonesia" {
		t.Errorf("AnswerLanguage = %q", cfg.AnswerLanguage)
	}
	if cfg.JWTExpiration != 24 {
		t.Errorf("JWTExpiration = %d, want 24", cfg.JWTExpiration)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("EMBEDDING_DIMENSION", "1536")
	t.Setenv("ANSWER_LANGUAGE", "English")
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.EmbeddingDimension != 1536 {
		t.Errorf("EmbeddingDimension = %d, want 1536", cfg.EmbeddingDimension)
	}
	if cfg.AnswerLanguage != "English" {
		t.Errorf("AnswerLanguage = %q, want English", cfg.AnswerLanguage)
	}
	if cfg.GeminiAPIKey != "secret" {
		t.Errorf("GeminiAPIKey not read from environment")
	}
}

func TestLoadIgnoresMalformedInt(t *testing.T) {
	t.Setenv("EMBEDDING_DIMENSION", "not-a-number")

	if cfg := Load(); cfg.EmbeddingDimension != 768 {
		t.Errorf("EmbeddingDimension = %d, want default 768", cfg.EmbeddingDimension)
	}
}
