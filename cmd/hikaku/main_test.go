package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/violenttestpen/hikaku"
)

func init() {
	color.NoColor = true
}

func TestLbl(t *testing.T) {
	assert.Equal(t, []Lbl{Alc, Arr, Len(16), Len(32)}, hikaku.Normalize([]Lbl{Len(32), Arr, Len(16), Alc, Arr}))

	v, err := Len(16).Value()
	require.NoError(t, err)
	assert.Equal(t, uint32(16), v)

	_, err = Mcr.Value()
	var npe *hikaku.NoPayloadError
	assert.True(t, errors.As(err, &npe))

	assert.Equal(t, "len", Len(16).KindName())
	assert.Equal(t, "len(16)", Len(16).String())
	assert.Equal(t, "rsz", Rsz.KindName())
}

func TestRegisterStudy(t *testing.T) {
	h := hikaku.New[Lbl]()
	registerStudy(h)
	require.NoError(t, h.Err())

	regs := h.Registrations()
	require.Len(t, regs, 3)
	assert.Equal(t, []Lbl{Alc, Arr}, regs[0].Labels())
	assert.Equal(t, []Lbl{Alc, Vct, Mcr}, regs[1].Labels())
	assert.Equal(t, []Lbl{Alc, Vct, Rsz}, regs[2].Labels())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hikaku.yaml")
	require.NoError(t, os.WriteFile(path, []byte("itr: 16\nstat: avg\nworkers: 3\n"), 0o600))
	t.Setenv("HIKAKU_WORKERS", "5")

	cmd := runCmd(viper.New())
	cmd.Flags().String("config", "", "")
	require.NoError(t, cmd.Flags().Set("config", path))
	require.NoError(t, cmd.Flags().Set("timeout", "2s"))

	cfg, err := loadConfig(viper.New(), cmd)
	require.NoError(t, err)
	assert.Equal(t, uint(16), cfg.Itr)
	assert.Equal(t, "avg", cfg.Statistic)
	assert.Equal(t, 5, cfg.Workers)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.True(t, cfg.Pin)
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger(config{LogLevel: "debug", LogFormat: "json"})
	require.NoError(t, err)
	_, err = newLogger(config{LogLevel: "loud"})
	assert.Error(t, err)
	_, err = newLogger(config{LogLevel: "info", LogFormat: "xml"})
	assert.Error(t, err)
}

func TestRunStudy(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "hikaku.prom")
	err := runStudy(context.Background(), config{
		Itr:         2,
		Workers:     2,
		Statistic:   "min",
		LogLevel:    "error",
		MetricsFile: metricsFile,
	})
	require.NoError(t, err)

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "hikaku_benchmarks_total 42")
	assert.Contains(t, string(metrics), `hikaku_runs_total{outcome="success"} 1`)
}

func TestRunStudy_BadStatistic(t *testing.T) {
	err := runStudy(context.Background(), config{Itr: 2, Statistic: "p99", LogLevel: "error"})
	assert.EqualError(t, err, "unknown statistic 'p99'")
}
