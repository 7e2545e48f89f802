package store

import (
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Backend names a Remote implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendDiskv  Backend = "diskv"
	BackendSQLite Backend = "sqlite"
	BackendRedis  Backend = "redis"
)

// Config describes where and how items are persisted, and who the CLI acts
// as.
type Config interface {
	Backend() string
	BasePath() string
	RedisAddr() string
	Owner() string
	LogLevel() string
}

// LoadConfig reads .ordo.yaml (from $ORDO_CONFIG_PATH or the working
// directory) and ORDO_* environment variables.
func LoadConfig() (Config, error) {
	viper.SetDefault("backend", string(BackendDiskv))
	viper.SetDefault("path", "~/.ordo.db")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("owner", defaultOwner())
	viper.SetDefault("log.level", "warn")
	viper.SetConfigName(".ordo") // .yaml is implicit
	viper.SetEnvPrefix("ORDO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if override := os.Getenv("ORDO_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}

	viper.AddConfigPath("./")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	path, err := homedir.Expand(viper.GetString("path"))
	if err != nil {
		return nil, err
	}

	return &fileConfig{
		StoreBackend: viper.GetString("backend"),
		Path:         path,
		Redis:        viper.GetString("redis.addr"),
		OwnerID:      viper.GetString("owner"),
		Level:        viper.GetString("log.level"),
	}, nil
}

func defaultOwner() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "me"
}

type fileConfig struct {
	StoreBackend string `json:"backend"`
	Path         string `json:"path"`
	Redis        string `json:"redisAddr"`
	OwnerID      string `json:"owner"`
	Level        string `json:"logLevel"`
}

func (f *fileConfig) Backend() string   { return f.StoreBackend }
func (f *fileConfig) BasePath() string  { return f.Path }
func (f *fileConfig) RedisAddr() string { return f.Redis }
func (f *fileConfig) Owner() string     { return f.OwnerID }
func (f *fileConfig) LogLevel() string  { return f.Level }

// WithOverrides returns cfg with a non-empty backend or owner replacing the
// configured value.
func WithOverrides(cfg Config, backend, owner string) Config {
	return &overrideConfig{Config: cfg, backend: strings.TrimSpace(backend), owner: strings.TrimSpace(owner)}
}

type overrideConfig struct {
	Config
	backend string
	owner   string
}

func (o *overrideConfig) Backend() string {
	if o.backend != "" {
		return o.backend
	}
	return o.Config.Backend()
}

func (o *overrideConfig) Owner() string {
	if o.owner != "" {
		return o.owner
	}
	return o.Config.Owner()
}
