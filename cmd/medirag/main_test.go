package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/medioracle/medirag/internal/cli"
	"github.com/medioracle/medirag/internal/config"
)

func TestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after question are moved first",
			args:     []string{"what causes migraines", "-output", "json"},
			expected: []string{"-output", "json", "what causes migraines"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-output", "json", "what causes migraines"},
			expected: []string{"-output", "json", "what causes migraines"},
		},
		{
			name:     "question only returns unchanged",
			args:     []string{"what causes migraines"},
			expected: []string{"what causes migraines"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"fever", "cough", "-age", "34"},
			expected: []string{"-age", "34", "fever", "cough"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := argsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("argsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"diabetes"}, "diabetes"},
		{"multiple words", []string{"symptoms", "of", "diabetes"}, "symptoms of diabetes"},
		{"single quoted phrase", []string{"symptoms of diabetes"}, "symptoms of diabetes"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
		{"one space", []string{" "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestParseSymptoms(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{"separate args", []string{"fever", "cough"}, []string{"fever", "cough"}},
		{"comma list in one arg", []string{"fever, sore throat"}, []string{"fever", "sore throat"}},
		{"mixed", []string{"fever,cough", "runny nose"}, []string{"fever", "cough", "runny nose"}},
		{"blank parts dropped", []string{"fever, , "}, []string{"fever"}},
		{"empty", []string{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseSymptoms(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("parseSymptoms(%v) = %v, want %v", tt.args, got, tt.expected)
			}
		})
	}
}

func TestParseOutputFormat(t *testing.T) {
	if f, err := parseOutputFormat("json"); err != nil || f != cli.OutputJSON {
		t.Errorf("parseOutputFormat(json) = %v, %v", f, err)
	}
	if f, err := parseOutputFormat("text"); err != nil || f != cli.OutputText {
		t.Errorf("parseOutputFormat(text) = %v, %v", f, err)
	}
	if _, err := parseOutputFormat("yaml"); err == nil {
		t.Error("parseOutputFormat(yaml) should fail")
	}
}

func TestHasExtension(t *testing.T) {
	tests := []struct {
		path       string
		extensions []string
		want       bool
	}{
		{"/a/b.txt", []string{".txt"}, true},
		{"/a/b.TXT", []string{".txt"}, true},
		{"/a/b.pdf", []string{"pdf"}, true},
		{"/a/b.md", []string{".txt"}, false},
		{"/a/b", nil, true},
	}
	for _, tt := range tests {
		got := hasExtension(tt.path, tt.extensions)
		if got != tt.want {
			t.Errorf("hasExtension(%q, %v) = %v, want %v", tt.path, tt.extensions, got, tt.want)
		}
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
embedding:
  provider: "mock"
  dimensions: 64
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Embedding.Provider != "mock" || cfg.Embedding.Dimensions != 64 {
		t.Errorf("unexpected embedding config: %+v", cfg.Embedding)
	}
}

func TestInitializeComponents_mockProvider(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Embedding.Provider = config.ProviderMock
	cfg.Embedding.Dimensions = 32

	components, err := initializeComponents(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("initializeComponents: %v", err)
	}
	defer components.Close()

	stats := components.Engine.Stats()
	if stats.EmbeddingMode != "mock" {
		t.Errorf("embedding mode = %q, want mock", stats.EmbeddingMode)
	}
	if stats.Threshold != cfg.Retrieval.MockSimilarityThreshold {
		t.Errorf("threshold = %v, want mock threshold %v", stats.Threshold, cfg.Retrieval.MockSimilarityThreshold)
	}
}
