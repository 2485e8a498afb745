package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/violenttestpen/hikaku"
	"github.com/violenttestpen/hikaku/internal/render"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:          "hikaku",
		Short:        "Benchmark and compare labeled functions in processor cycles",
		SilenceUsage: true,
	}
	flags := cmd.PersistentFlags()
	flags.String("config", "", "Config file (yaml, json or toml)")
	flags.String("log-level", "warn", "Log level")
	flags.String("log-format", "text", "Log format: text or json")
	flags.Bool("no-color", false, "Disable coloured output")

	cmd.AddCommand(runCmd(v), listCmd(v))
	return cmd
}

func runCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the allocation study and print comparisons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, cmd)
			if err != nil {
				return err
			}
			return runStudy(cmd.Context(), cfg)
		},
	}
	addRunFlags(cmd.Flags())
	return cmd
}

func addRunFlags(flags *pflag.FlagSet) {
	flags.Uint("itr", 64, "Number of times each benchmark runs")
	flags.Int("workers", 0, "Number of parallel workers (0 uses every CPU)")
	flags.Duration("timeout", 0, "Give up waiting for results after this long (0 waits forever)")
	flags.Bool("pin", true, "Pin each worker to its own CPU")
	flags.String("stat", hikaku.Median.String(), "Statistic: median, min, max or avg")
	flags.Bool("selections", false, "Also print every selection")
	flags.String("metrics-file", "", "Write prometheus metrics to this file")
}

func listCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered label sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, cmd)
			if err != nil {
				return err
			}
			color.NoColor = color.NoColor || cfg.NoColor
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			h := hikaku.New[Lbl](hikaku.WithLogger(log))
			registerStudy(h)
			for _, reg := range h.Registrations() {
				fmt.Fprintf(color.Output, "%s  %s\n", color.HiBlackString(reg.ID().String()), color.CyanString(hikaku.Join(reg.Labels(), ",")))
			}
			return h.Err()
		},
	}
}

func runStudy(ctx context.Context, cfg config) error {
	color.NoColor = color.NoColor || cfg.NoColor
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	stat, err := hikaku.ParseStatistic(cfg.Statistic)
	if err != nil {
		return err
	}

	var registry *prometheus.Registry
	var metrics *hikaku.Metrics
	if cfg.MetricsFile != "" {
		registry = prometheus.NewRegistry()
		metrics = hikaku.NewMetrics(registry)
	}

	progress := render.NewProgress(color.Output)
	h := hikaku.New[Lbl](
		hikaku.WithLogger(log),
		hikaku.WithWorkers(cfg.Workers),
		hikaku.WithPinning(cfg.Pin),
		hikaku.WithMetrics(metrics),
		hikaku.WithProgress(progress.Update),
	)
	registerStudy(h)
	if err := h.Err(); err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	fmt.Fprint(color.Output, "Performing benchmark runs")
	res, err := h.Run(ctx, studyQuery(stat), cfg.Itr)
	progress.Done()
	if err != nil {
		return err
	}

	if cfg.Selections {
		for _, sel := range res.Selections {
			render.Selection(color.Output, sel)
		}
		fmt.Fprintln(color.Output)
	}
	for _, cmp := range res.Comparisons {
		render.Comparison(color.Output, cmp)
		fmt.Fprintln(color.Output)
	}

	if registry != nil {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, registry); err != nil {
			return err
		}
	}
	return nil
}
