package config

import (
	"fmt"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/pkg/errors"
)

// Prefix of every environment variable, e.g. ATTENDANCE_DB_HOST.
const Prefix = "ATTENDANCE"

// ErrHelp is returned when --help was asked for and the usage was printed.
var ErrHelp = errors.New("provided help")

type Config struct {
	Args conf.Args
	Web  struct {
		APIHost         string        `conf:"default:0.0.0.0:8080"`
		ReadTimeout     time.Duration `conf:"default:5s"`
		WriteTimeout    time.Duration `conf:"default:10s"`
		ShutdownTimeout time.Duration `conf:"default:10s"`
		AllowedOrigins  []string      `conf:"default:http://localhost:3000"`
	}
	Auth struct {
		JWTKey   string        `conf:"noprint"`
		TokenTTL time.Duration `conf:"default:24h"`
	}
	DB struct {
		User       string `conf:"default:postgres"`
		Password   string `conf:"default:postgres,noprint"`
		Host       string `conf:"default:localhost:5432"`
		Name       string `conf:"default:attendance"`
		DisableTLS bool   `conf:"default:true"`
		Debug      bool   `conf:"default:false"`
	}
	Redis struct {
		Addr     string
		Password string `conf:"noprint"`
		DB       int    `conf:"default:0"`
	}
	RateLimit struct {
		LoginPerMinute int `conf:"default:20"`
	}
	Seed struct {
		File string `conf:"default:seed.yaml"`
	}
}

// NewConfig parses args and the ATTENDANCE_* environment. With --help it
// prints the usage and returns ErrHelp.
func NewConfig(args []string) (*Config, error) {
	var c Config

	if err := conf.Parse(args, Prefix, &c); err != nil {
		if err == conf.ErrHelpWanted {
			usage, err := conf.Usage(Prefix, &c)
			if err != nil {
				return nil, errors.Wrap(err, "generating config usage")
			}
			fmt.Println(usage)
			return nil, ErrHelp
		}
		return nil, errors.Wrap(err, "parsing config")
	}

	if c.DB.Host == "" || c.DB.Name == "" {
		return nil, errors.New("missing required database configuration")
	}

	return &c, nil
}

// String renders the config for the startup log, without secrets.
func (c *Config) String() string {
	out, err := conf.String(c)
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return out
}
