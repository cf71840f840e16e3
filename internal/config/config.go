package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
		Port string
	}
	Database struct {
		URL string
	}
	Auth struct {
		JWTSecret    string
		TokenTTL     time.Duration
		PasswordHash string
		BcryptCost   int
	}
	Generation struct {
		AnthropicAPIKey string
		Model           string
		MaxTokens       int
		WriterURL       string
		UseResearch     bool
		ResearchAPIKey  string
		ResearchModel   string
		ResearchURL     string
		Timeout         time.Duration
	}
	Redis struct {
		URL string
	}
	AMQP struct {
		URL      string
		Exchange string
	}
	Storage struct {
		Bucket        string
		KeyPrefix     string
		Region        string
		Endpoint      string
		PublicBaseURL string
	}
	AWS struct {
		Profile string
	}
	Log struct {
		Level  string
		Format string
	}
}

// legacyEnv maps config keys to the unprefixed variable names older
// deployments already set.
var legacyEnv = map[string]string{
	"database.url":               "DATABASE_URL",
	"auth.jwtsecret":             "JWT_SECRET_KEY",
	"generation.anthropicapikey": "ANTHROPIC_API_KEY",
	"generation.researchapikey":  "PERPLEXITY_API_KEY",
	"generation.useresearch":     "USE_PERPLEXITY",
	"server.port":                "PORT",
	"redis.url":                  "REDIS_URL",
	"amqp.url":                   "RABBITMQ_URL",
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SEOWRITER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "SEOWRITER_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:5000")
	v.SetDefault("server.port", "")
	v.SetDefault("database.url", "sqlite:///data/app.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttl", time.Hour)
	v.SetDefault("auth.passwordhash", "bcrypt")
	v.SetDefault("auth.bcryptcost", 0)
	v.SetDefault("generation.anthropicapikey", "")
	v.SetDefault("generation.model", "")
	v.SetDefault("generation.maxtokens", 0)
	v.SetDefault("generation.writerurl", "")
	v.SetDefault("generation.useresearch", false)
	v.SetDefault("generation.researchapikey", "")
	v.SetDefault("generation.researchmodel", "")
	v.SetDefault("generation.researchurl", "")
	v.SetDefault("generation.timeout", time.Duration(0))
	v.SetDefault("redis.url", "")
	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "articles")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "articles")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.publicbaseurl", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// normalize lets a bare PORT override the port of the listen address.
func (c *Config) normalize() {
	port := strings.TrimSpace(c.Server.Port)
	if port == "" {
		return
	}
	host := "0.0.0.0"
	if i := strings.LastIndex(c.Server.Addr, ":"); i > 0 {
		host = c.Server.Addr[:i]
	}
	c.Server.Addr = host + ":" + port
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth jwt secret is required (JWT_SECRET_KEY)")
	}
	if strings.TrimSpace(c.Database.URL) == "" {
		return errors.New("database url is required")
	}
	if c.Generation.UseResearch && strings.TrimSpace(c.Generation.ResearchAPIKey) == "" {
		return errors.New("research is enabled but no research api key is set (PERPLEXITY_API_KEY)")
	}
	return nil
}
