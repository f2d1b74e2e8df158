package cli

import (
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stacksize/pkg/errors"
	"github.com/matzehuels/stacksize/pkg/server"
	"github.com/matzehuels/stacksize/pkg/source/archive"
)

// Environment variables that override the config file.
const (
	envGitHubToken = "GITHUB_TOKEN"
	envRedisURL    = "STACKSIZE_REDIS_URL"
	envMongoURI    = "STACKSIZE_MONGO_URI"
)

// Config is the optional config.toml. Command flags override it.
//
//	profiles = "~/profiles.toml"
//
//	[source]
//	mirror = "http://archive.ubuntu.com/ubuntu"
//	suites = ["noble", "noble-updates"]
//	components = ["main", "universe"]
//	arch = "amd64"
//	keyring = "/usr/share/keyrings/ubuntu-archive-keyring.gpg"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[artifacts]
//	source = "github"
//
//	[server]
//	addr = ":8080"
type Config struct {
	Profiles  string          `toml:"profiles"`
	Source    SourceConfig    `toml:"source"`
	Cache     CacheConfig     `toml:"cache"`
	Artifacts ArtifactsConfig `toml:"artifacts"`
	Server    ServerConfig    `toml:"server"`
}

// SourceConfig selects the mirror the package index is downloaded from.
type SourceConfig struct {
	Mirror     string   `toml:"mirror"`
	Suites     []string `toml:"suites"`
	Components []string `toml:"components"`
	Arch       string   `toml:"arch"`
	Keyring    string   `toml:"keyring"`
	Checksums  bool     `toml:"checksums"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"` // file, redis, mongo or none
	RedisURL  string `toml:"redis_url"`
	MongoURI  string `toml:"mongo_uri"`
	Namespace string `toml:"namespace"` // key prefix for shared backends
}

// ArtifactsConfig selects where Quarto download sizes come from.
type ArtifactsConfig struct {
	Source      string `toml:"source"` // static or github
	GitHubToken string `toml:"github_token"`
}

// ServerConfig configures "stacksize serve".
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Mirror:     archive.DefaultMirror,
			Suites:     slices.Clone(archive.DefaultSuites),
			Components: slices.Clone(archive.DefaultComponents),
			Arch:       archive.DefaultArch,
		},
		Cache:     CacheConfig{Backend: backendFile},
		Artifacts: ArtifactsConfig{Source: artifactsStatic},
		Server:    ServerConfig{Addr: server.DefaultAddr},
	}
}

// LoadConfig reads path over the defaults and applies environment
// overrides. A missing file is only an error when required is set.
func LoadConfig(path string, required bool) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		switch {
		case os.IsNotExist(err):
			if required {
				return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
			}
		case err != nil:
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "config file %s", path)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return nil, errors.New(errors.ErrCodeInvalidInput, "config file %s: unknown key %q", path, undecoded[0].String())
			}
		}
	}
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(envGitHubToken); v != "" {
		c.Artifacts.GitHubToken = v
	}
	if v := getenv(envRedisURL); v != "" {
		c.Cache.RedisURL = v
	}
	if v := getenv(envMongoURI); v != "" {
		c.Cache.MongoURI = v
	}
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case backendFile, backendNone:
	case backendRedis:
		if c.Cache.RedisURL == "" {
			return errors.Field("cache.redis_url",
				errors.New(errors.ErrCodeInvalidInput, "redis backend needs a URL (or %s)", envRedisURL))
		}
	case backendMongo:
		if c.Cache.MongoURI == "" {
			return errors.Field("cache.mongo_uri",
				errors.New(errors.ErrCodeInvalidInput, "mongo backend needs a URI (or %s)", envMongoURI))
		}
	default:
		return errors.Field("cache.backend",
			errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (file, redis, mongo, none)", c.Cache.Backend))
	}
	if err := validateArtifacts(c.Artifacts.Source); err != nil {
		return errors.Field("artifacts.source", err.(*errors.Error))
	}
	if c.Source.Mirror != "" {
		if err := errors.ValidateURL(c.Source.Mirror); err != nil {
			return errors.Field("source.mirror", err.(*errors.Error))
		}
	}
	return nil
}

func validateArtifacts(name string) error {
	switch name {
	case artifactsStatic, artifactsGitHub:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown artifact source %q (static, github)", name)
}
