package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		LLM: LLM{
			Provider:    ProviderReplicate,
			APIKey:      "r8_token",
			Model:       "openai/gpt-5-mini",
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxOutputTokens,
		},
		RepoRoot:   "/srv/site",
		ContentDir: DefaultContentDir,
		Git:        Git{Remote: DefaultRemote, MessageTemplate: DefaultCommitTemplate},
	}
}

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	v.Set("REPLICATE_API_TOKEN", "r8_token")
	v.Set("REPO_ROOT", "/srv/site")

	cfg := Load(v)

	assert.Equal(t, ProviderReplicate, cfg.LLM.Provider)
	assert.Equal(t, "r8_token", cfg.LLM.APIKey)
	assert.Equal(t, "openai/gpt-5-mini", cfg.LLM.Model)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 1500, cfg.LLM.MaxTokens)
	assert.Equal(t, "/srv/site", cfg.RepoRoot)
	assert.Equal(t, filepath.Join("/srv/site", "apps/web/content"), cfg.ContentRoot())
	assert.False(t, cfg.Git.AutoCommit)
	assert.Equal(t, "origin", cfg.Git.Remote)
	assert.Equal(t, DefaultCommitTemplate, cfg.Git.MessageTemplate)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestLoadProviderCredential(t *testing.T) {
	tests := []struct {
		provider  string
		key       string
		wantModel string
	}{
		{ProviderReplicate, "REPLICATE_API_TOKEN", "openai/gpt-5-mini"},
		{ProviderAnthropic, "ANTHROPIC_API_KEY", "claude-3-5-haiku-latest"},
		{ProviderGemini, "GEMINI_API_KEY", "gemini-2.5-flash"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			v := viper.New()
			v.Set("RECIPE_LLM_PROVIDER", " "+tt.provider+" ")
			v.Set(tt.key, "secret")

			cfg := Load(v)
			assert.Equal(t, tt.provider, cfg.LLM.Provider)
			assert.Equal(t, "secret", cfg.LLM.APIKey)
			assert.Equal(t, tt.wantModel, cfg.LLM.Model)
			assert.Equal(t, tt.key, CredentialKey(tt.provider))
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	v.Set("RECIPE_LLM_PROVIDER", "anthropic")
	v.Set("RECIPE_LLM_MODEL", "claude-sonnet-4-5")
	v.Set("RECIPE_LLM_TEMPERATURE", "0.5")
	v.Set("RECIPE_LLM_MAX_TOKENS", "800")
	v.Set("RECIPE_CONTENT_DIR", "/data/recipes")
	v.Set("RECIPE_GIT_AUTO_COMMIT", "true")
	v.Set("GIT_AUTHOR_NAME", "Recipe Bot")
	v.Set("GIT_SSH_COMMAND", "ssh -i /keys/deploy")
	v.Set("PORT", "8080")
	v.Set("CORS_ORIGINS", "https://a.example, https://b.example,")
	v.Set("POST_SECRET", "s3cret")

	cfg := Load(v)

	assert.Equal(t, "claude-sonnet-4-5", cfg.LLM.Model)
	assert.InDelta(t, 0.5, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 800, cfg.LLM.MaxTokens)
	assert.Equal(t, "/data/recipes", cfg.ContentRoot())
	assert.True(t, cfg.Git.AutoCommit)
	assert.Equal(t, "Recipe Bot", cfg.Git.AuthorName)
	assert.Equal(t, "ssh -i /keys/deploy", cfg.Git.SSHCommand)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "s3cret", cfg.Server.PostSecret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"missing credential", func(c *Config) { c.LLM.APIKey = "" }, "LLM credential is not configured"},
		{"missing repo root", func(c *Config) { c.RepoRoot = "" }, "REPO_ROOT is not configured"},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "ollama" }, "unknown model provider"},
		{"bad template", func(c *Config) {
			c.Git.AutoCommit = true
			c.Git.MessageTemplate = "add {{.Title"
		}, "invalid commit template"},
		{"missing remote", func(c *Config) {
			c.Git.AutoCommit = true
			c.Git.Remote = ""
		}, "git remote is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, core.KindConfig, core.KindOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateIgnoresGitWhenDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.Git.Remote = ""
	cfg.Git.MessageTemplate = "{{"

	assert.NoError(t, cfg.Validate())
}

func TestNewViperReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RECIPE_TEST_ONLY_KEY=from-file\nRECIPE_LLM_MAX_TOKENS=321\n"), 0o644))

	v, err := NewViper(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", v.GetString("RECIPE_TEST_ONLY_KEY"))
	assert.Equal(t, 321, v.GetInt("RECIPE_LLM_MAX_TOKENS"))
}

func TestNewViperEnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipe.env")
	require.NoError(t, os.WriteFile(path, []byte("RECIPE_TEST_ONLY_KEY=from-file\n"), 0o644))
	t.Setenv("RECIPE_TEST_ONLY_KEY", "from-env")

	v, err := NewViper(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", v.GetString("RECIPE_TEST_ONLY_KEY"))
}

func TestNewViperMissingFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
