package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Matching.SelfieThreshold != 0.4 {
		t.Errorf("expected selfie threshold 0.4, got %v", cfg.Matching.SelfieThreshold)
	}
	if cfg.Matching.GroupThreshold != 0.5 {
		t.Errorf("expected group threshold 0.5, got %v", cfg.Matching.GroupThreshold)
	}
	if cfg.Matching.MaxGroupRefs != 3 {
		t.Errorf("expected max group refs 3, got %d", cfg.Matching.MaxGroupRefs)
	}
	if cfg.Matching.FaceEdge != 160 {
		t.Errorf("expected face edge 160, got %d", cfg.Matching.FaceEdge)
	}
	if cfg.Recognizer.URL != "http://localhost:8001" {
		t.Errorf("unexpected recognizer URL: %s", cfg.Recognizer.URL)
	}
	if cfg.Gallery.StudentDir != "student_db" {
		t.Errorf("unexpected student dir: %s", cfg.Gallery.StudentDir)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SELFIE_THRESHOLD", "0.35")
	t.Setenv("GROUP_THRESHOLD", "0.6")
	t.Setenv("MAX_GROUP_REFS", "5")
	t.Setenv("RECOGNIZER_URL", "http://gpu:9000")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "10")

	cfg := Load()

	if cfg.Matching.SelfieThreshold != 0.35 {
		t.Errorf("expected selfie threshold 0.35, got %v", cfg.Matching.SelfieThreshold)
	}
	if cfg.Matching.GroupThreshold != 0.6 {
		t.Errorf("expected group threshold 0.6, got %v", cfg.Matching.GroupThreshold)
	}
	if cfg.Matching.MaxGroupRefs != 5 {
		t.Errorf("expected max group refs 5, got %d", cfg.Matching.MaxGroupRefs)
	}
	if cfg.Recognizer.URL != "http://gpu:9000" {
		t.Errorf("unexpected recognizer URL: %s", cfg.Recognizer.URL)
	}
	if cfg.Database.MaxOpenConns != 10 {
		t.Errorf("expected max open conns 10, got %d", cfg.Database.MaxOpenConns)
	}
}

func TestLoadInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("SELFIE_THRESHOLD", "not-a-number")
	t.Setenv("MAX_GROUP_REFS", "-2")

	cfg := Load()

	if cfg.Matching.SelfieThreshold != 0.4 {
		t.Errorf("expected fallback selfie threshold 0.4, got %v", cfg.Matching.SelfieThreshold)
	}
	if cfg.Matching.MaxGroupRefs != 3 {
		t.Errorf("expected fallback max group refs 3, got %d", cfg.Matching.MaxGroupRefs)
	}
}
