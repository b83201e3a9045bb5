// Package config reads process configuration from defaults, an optional
// dotenv file and PARISH_* environment variables.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const EnvPrefix = "PARISH"

type Config struct {
	Addr      string
	DBPath    string
	APIBase   string
	PublicURL string
	PageSize  int
	Debounce  time.Duration
	ReadOnly  bool
	LogLevel  string
}

func defaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("addr", ":8080")
	v.SetDefault("dbPath", "parish.db")
	v.SetDefault("apiBase", "http://localhost:8080")
	v.SetDefault("publicURL", "")
	v.SetDefault("pageSize", 25)
	v.SetDefault("debounce", 200*time.Millisecond)
	v.SetDefault("readOnly", false)
	v.SetDefault("logLevel", "info")
}

// Load builds the configuration. dotEnvPath is loaded first when it exists;
// variables already set in the environment win over the file.
func Load(dotEnvPath string) (*Config, error) {
	v := viper.New()
	defaults(v)
	v.SetEnvPrefix(EnvPrefix)

	if dotEnvPath != "" {
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				return nil, errors.Wrapf(err, "config.godotenv(%s)", dotEnvPath)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "config.os.Stat(%s)", dotEnvPath)
		}
	}
	v.AutomaticEnv()

	c := &Config{
		Addr:      v.GetString("addr"),
		DBPath:    v.GetString("dbPath"),
		APIBase:   strings.TrimRight(v.GetString("apiBase"), "/"),
		PublicURL: strings.TrimRight(v.GetString("publicURL"), "/"),
		PageSize:  v.GetInt("pageSize"),
		Debounce:  v.GetDuration("debounce"),
		ReadOnly:  v.GetBool("readOnly"),
		LogLevel:  v.GetString("logLevel"),
	}
	if c.PageSize < 0 {
		return nil, errors.Errorf("config: pageSize must not be negative, got %d", c.PageSize)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return nil, errors.Wrap(err, "config: logLevel")
	}
	return c, nil
}

// Logger returns a logrus logger at the configured level.
func (c *Config) Logger() *logrus.Logger {
	l := logrus.New()
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		l.SetLevel(lvl)
	}
	return l
}
