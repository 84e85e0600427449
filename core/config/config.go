// Package config holds the explicit configuration value passed to each
// pipeline run. Values are read with viper from the environment and an
// optional dotenv or YAML file, and validated when a run starts.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/gaurav-prasanna/recipepipe/core"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
)

// Model providers.
const (
	ProviderReplicate = "replicate"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Defaults applied when a key is unset.
const (
	DefaultContentDir      = "apps/web/content"
	DefaultCommitTemplate  = "chore: 🤖 add recipe: {{.Title}}"
	DefaultRemote          = "origin"
	DefaultPort            = "3000"
	DefaultAllowedOrigin   = "http://localhost:3000"
	DefaultTemperature     = 0.2
	DefaultMaxOutputTokens = 1500
)

var defaultModels = map[string]string{
	ProviderReplicate: "openai/gpt-5-mini",
	ProviderAnthropic: "claude-3-5-haiku-latest",
	ProviderGemini:    "gemini-2.5-flash",
}

var credentialKeys = map[string]string{
	ProviderReplicate: "REPLICATE_API_TOKEN",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
}

// LLM selects and parameterizes the extraction model.
type LLM struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	// BaseURL overrides the provider endpoint. Empty means the public API.
	BaseURL string
}

// Git configures the optional commit step.
type Git struct {
	AutoCommit      bool
	AuthorName      string
	AuthorEmail     string
	CommitterName   string
	CommitterEmail  string
	SSHCommand      string
	Remote          string
	MessageTemplate string
}

// Server configures the HTTP boundary.
type Server struct {
	Addr           string
	PostSecret     string
	AllowedOrigins []string
}

// Config is everything a pipeline run needs besides its URL.
type Config struct {
	LLM        LLM
	RepoRoot   string
	ContentDir string
	Git        Git
	Server     Server
	OTelStdout bool
}

// NewViper returns a viper instance reading the environment and, when
// configFile is non-empty, that file. Environment values win over the file.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if configFile == "" {
		return v, nil
	}

	v.SetConfigFile(configFile)
	if base := filepath.Base(configFile); base == ".env" || strings.HasSuffix(base, ".env") {
		v.SetConfigType("env")
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", configFile, err)
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("RECIPE_LLM_PROVIDER", ProviderReplicate)
	v.SetDefault("RECIPE_LLM_TEMPERATURE", DefaultTemperature)
	v.SetDefault("RECIPE_LLM_MAX_TOKENS", DefaultMaxOutputTokens)
	v.SetDefault("RECIPE_CONTENT_DIR", DefaultContentDir)
	v.SetDefault("RECIPE_GIT_REMOTE", DefaultRemote)
	v.SetDefault("RECIPE_GIT_COMMIT_TEMPLATE", DefaultCommitTemplate)
	v.SetDefault("PORT", DefaultPort)
	v.SetDefault("CORS_ORIGINS", DefaultAllowedOrigin)
}

// Load reads a Config from v. It never fails; call Validate before use.
func Load(v *viper.Viper) Config {
	setDefaults(v)

	provider := strings.ToLower(strings.TrimSpace(v.GetString("RECIPE_LLM_PROVIDER")))
	model := strings.TrimSpace(v.GetString("RECIPE_LLM_MODEL"))
	if model == "" {
		model = defaultModels[provider]
	}

	var apiKey string
	if key, ok := credentialKeys[provider]; ok {
		apiKey = strings.TrimSpace(v.GetString(key))
	}

	port := strings.TrimPrefix(strings.TrimSpace(v.GetString("PORT")), ":")

	return Config{
		LLM: LLM{
			Provider:    provider,
			APIKey:      apiKey,
			Model:       model,
			Temperature: v.GetFloat64("RECIPE_LLM_TEMPERATURE"),
			MaxTokens:   v.GetInt("RECIPE_LLM_MAX_TOKENS"),
			BaseURL:     strings.TrimSpace(v.GetString("RECIPE_LLM_BASE_URL")),
		},
		RepoRoot:   strings.TrimSpace(v.GetString("REPO_ROOT")),
		ContentDir: strings.TrimSpace(v.GetString("RECIPE_CONTENT_DIR")),
		Git: Git{
			AutoCommit:      v.GetBool("RECIPE_GIT_AUTO_COMMIT"),
			AuthorName:      v.GetString("GIT_AUTHOR_NAME"),
			AuthorEmail:     v.GetString("GIT_AUTHOR_EMAIL"),
			CommitterName:   v.GetString("GIT_COMMITTER_NAME"),
			CommitterEmail:  v.GetString("GIT_COMMITTER_EMAIL"),
			SSHCommand:      v.GetString("GIT_SSH_COMMAND"),
			Remote:          strings.TrimSpace(v.GetString("RECIPE_GIT_REMOTE")),
			MessageTemplate: v.GetString("RECIPE_GIT_COMMIT_TEMPLATE"),
		},
		Server: Server{
			Addr:           ":" + port,
			PostSecret:     v.GetString("POST_SECRET"),
			AllowedOrigins: splitList(v.GetString("CORS_ORIGINS")),
		},
		OTelStdout: v.GetBool("RECIPE_OTEL_STDOUT"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ContentRoot is the directory recipes are written to. A relative
// ContentDir is resolved against RepoRoot.
func (c Config) ContentRoot() string {
	dir := c.ContentDir
	if dir == "" {
		dir = DefaultContentDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.RepoRoot, dir)
}

// Validate checks the configuration a pipeline run depends on and returns a
// config-kind *core.Error describing every problem found.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.LLM),
		validation.Field(&c.RepoRoot, validation.Required.Error("REPO_ROOT is not configured")),
		validation.Field(&c.Git),
	)
	if err != nil {
		return core.NewConfigError(err.Error())
	}
	return nil
}

// Validate implements validation.Validatable.
func (l LLM) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Provider,
			validation.Required.Error("model provider is not configured"),
			validation.In(ProviderReplicate, ProviderAnthropic, ProviderGemini).Error("unknown model provider"),
		),
		validation.Field(&l.APIKey, validation.Required.Error("LLM credential is not configured")),
		validation.Field(&l.Model, validation.Required.Error("model name is not configured")),
		validation.Field(&l.Temperature, validation.Min(0.0), validation.Max(2.0)),
		validation.Field(&l.MaxTokens, validation.Required, validation.Min(1)),
	)
}

// Validate implements validation.Validatable. Commit settings are only
// checked when auto-commit is enabled.
func (g Git) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.Remote, validation.When(g.AutoCommit, validation.Required.Error("git remote is not configured"))),
		validation.Field(&g.MessageTemplate, validation.When(g.AutoCommit, validation.By(func(value any) error {
			s, _ := value.(string)
			if strings.TrimSpace(s) == "" {
				return nil
			}
			if _, err := template.New("commit").Parse(s); err != nil {
				return fmt.Errorf("invalid commit template: %w", err)
			}
			return nil
		}))),
	)
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	return defaultModels[provider]
}

// CredentialKey returns the environment key holding provider's credential.
func CredentialKey(provider string) string {
	return credentialKeys[provider]
}
