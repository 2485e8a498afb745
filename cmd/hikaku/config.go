package main

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "HIKAKU"

type config struct {
	Itr         uint
	Workers     int
	Timeout     time.Duration
	Pin         bool
	Statistic   string
	Selections  bool
	NoColor     bool
	LogLevel    string
	LogFormat   string
	MetricsFile string
}

// loadConfig merges, from lowest to highest precedence, flag defaults, the
// config file, HIKAKU_* environment variables and explicitly set flags.
func loadConfig(v *viper.Viper, cmd *cobra.Command) (config, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return config{}, errors.Wrap(err, "binding flags")
	}
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return config{}, errors.Wrapf(err, "reading config %s", path)
		}
	}

	return config{
		Itr:         v.GetUint("itr"),
		Workers:     v.GetInt("workers"),
		Timeout:     v.GetDuration("timeout"),
		Pin:         v.GetBool("pin"),
		Statistic:   v.GetString("stat"),
		Selections:  v.GetBool("selections"),
		NoColor:     v.GetBool("no-color"),
		LogLevel:    v.GetString("log-level"),
		LogFormat:   v.GetString("log-format"),
		MetricsFile: v.GetString("metrics-file"),
	}, nil
}

func newLogger(cfg config) (*logrus.Entry, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)
	switch cfg.LogFormat {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{DisableColors: cfg.NoColor})
	default:
		return nil, errors.Errorf("unknown log format '%s'", cfg.LogFormat)
	}
	return log.WithField("component", "hikaku"), nil
}
