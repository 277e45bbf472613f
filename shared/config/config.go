package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Http          Http          `yaml:"http"`
	Storage       string        `yaml:"storage" validate:"oneof=pg memory"`
	JwtTTL        time.Duration `yaml:"jwt_ttl" validate:"required"`
	Pipeline      Pipeline      `yaml:"pipeline"`
	Events        Events        `yaml:"events"`
	Notices       Notices       `yaml:"notices"`
	TrendingLimit int           `yaml:"trending_limit" validate:"gte=0"`
	Log           Log           `yaml:"log"`
}

type Http struct {
	Addr          string   `yaml:"addr" validate:"required"`
	CorsOrigins   []string `yaml:"cors_origins"`
	SecureCookies bool     `yaml:"secure_cookies"`
}

// Pipeline holds defaults of the per-request outcome pipeline.
type Pipeline struct {
	Timeout     time.Duration `yaml:"timeout"`
	AuthTimeout time.Duration `yaml:"auth_timeout"`
	Retries     *int          `yaml:"retries" validate:"omitempty,gte=0"`
	Backoff     time.Duration `yaml:"backoff"`
}

type Events struct {
	Driver      string        `yaml:"driver" validate:"oneof=channel redis"`
	Buffer      int           `yaml:"buffer" validate:"gte=0"`
	Workers     int           `yaml:"workers" validate:"gte=0"`
	MaxAttempts int           `yaml:"max_attempts" validate:"gte=0"`
	PushTimeout time.Duration `yaml:"push_timeout"`
	RedisKey    string        `yaml:"redis_key"`
}

type Notices struct {
	JanitorSchedule string        `yaml:"janitor_schedule"`
	Retention       time.Duration `yaml:"retention"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type Private struct {
	JwtKey   string `yaml:"jwt_key" validate:"required"`
	Pg       Pg     `yaml:"pg"`
	RedisURL string `yaml:"redis_url"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

func (s *Config) JwtKey() string {
	return s.Private.JwtKey
}

func (s *Config) JwtTTL() time.Duration {
	return s.Public.JwtTTL
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file: " + err.Error())
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder, applies
// WHATUP_* environment overrides (a .env file in configFolder or the working
// directory is loaded first) and validates the result. It panics on any error.
func MustLoad(configFolder string) *Config {
	// missing .env files are fine
	_ = godotenv.Load(path.Join(configFolder, ".env"))
	_ = godotenv.Load()

	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{Public: public, Private: private}
	applyEnv(cfg)
	cfg.setDefaults()

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		panic(fmt.Sprintf("invalid config: %v", err))
	}
	return cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("WHATUP_JWT_KEY"); v != "" {
		cfg.Private.JwtKey = v
	}
	if v := os.Getenv("WHATUP_PG_HOST"); v != "" {
		cfg.Private.Pg.Host = v
	}
	if v := os.Getenv("WHATUP_PG_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Private.Pg.Port = port
		}
	}
	if v := os.Getenv("WHATUP_PG_USER"); v != "" {
		cfg.Private.Pg.User = v
	}
	if v := os.Getenv("WHATUP_PG_PASSWORD"); v != "" {
		cfg.Private.Pg.Password = v
	}
	if v := os.Getenv("WHATUP_PG_DBNAME"); v != "" {
		cfg.Private.Pg.Dbname = v
	}
	if v := os.Getenv("WHATUP_REDIS_URL"); v != "" {
		cfg.Private.RedisURL = v
	}
	if v := os.Getenv("WHATUP_HTTP_ADDR"); v != "" {
		cfg.Public.Http.Addr = v
	}
}

func (s *Config) setDefaults() {
	p := &s.Public
	if p.Storage == "" {
		p.Storage = "pg"
	}
	if p.Pipeline.Timeout == 0 {
		p.Pipeline.Timeout = 5 * time.Second
	}
	if p.Pipeline.AuthTimeout == 0 {
		p.Pipeline.AuthTimeout = 2 * time.Second
	}
	if p.Pipeline.Retries == nil {
		retries := 2
		p.Pipeline.Retries = &retries
	}
	if p.Pipeline.Backoff == 0 {
		p.Pipeline.Backoff = time.Second
	}
	if p.Events.Driver == "" {
		p.Events.Driver = "channel"
	}
	if p.Events.Buffer == 0 {
		p.Events.Buffer = 1024
	}
	if p.Events.Workers == 0 {
		p.Events.Workers = 2
	}
	if p.Events.MaxAttempts == 0 {
		p.Events.MaxAttempts = 5
	}
	if p.Events.PushTimeout == 0 {
		p.Events.PushTimeout = 500 * time.Millisecond
	}
	if p.Events.RedisKey == "" {
		p.Events.RedisKey = "whatup:events"
	}
	if p.Notices.JanitorSchedule == "" {
		p.Notices.JanitorSchedule = "@daily"
	}
	if p.Notices.Retention == 0 {
		p.Notices.Retention = 30 * 24 * time.Hour
	}
	if p.TrendingLimit == 0 {
		p.TrendingLimit = 20
	}
	if p.Log.Level == "" {
		p.Log.Level = "info"
	}
}
