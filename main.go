package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pranegit/yearly-chart/internal/chart"
	"github.com/pranegit/yearly-chart/internal/config"
	"github.com/pranegit/yearly-chart/internal/logging"
	"github.com/pranegit/yearly-chart/internal/snapshot"
	"github.com/pranegit/yearly-chart/internal/watch"
)

// getOutputPath returns where a generated file goes when no output is configured.
// Preferred location: $HOME/Documents/yearchart/<name>
// Fallbacks: executable directory, current working directory.
func getOutputPath(configured, name string) (string, error) {
	if configured != "" {
		if dir := filepath.Dir(configured); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", err
			}
		}
		return configured, nil
	}
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		dir := filepath.Join(home, "Documents", "yearchart")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
		return filepath.Join(dir, name), nil
	}
	// fallback: executable directory
	if exe, err2 := os.Executable(); err2 == nil {
		dir := filepath.Dir(exe)
		if err := os.MkdirAll(dir, 0o755); err == nil {
			return filepath.Join(dir, name), nil
		}
	}
	// final fallback: current working directory
	if wd, err3 := os.Getwd(); err3 == nil {
		return filepath.Join(wd, name), nil
	}
	return name, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
}

// chartFlags are shared by every command that draws
type chartFlags struct {
	source string
	output string
	title  string
	width  float64
}

func (f *chartFlags) register(cmd *cobra.Command, outputHelp string) {
	cmd.Flags().StringVarP(&f.source, "source", "s", "", "CSV path or http(s) url (overrides config)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", outputHelp)
	cmd.Flags().StringVar(&f.title, "title", "", "page title (overrides config)")
	cmd.Flags().Float64Var(&f.width, "width", 0, "container width in pixels (default: config chart.width)")
}

func (f *chartFlags) apply(cfg *config.Config) {
	if f.source != "" {
		cfg.Source = f.source
	}
	if f.title != "" {
		cfg.Title = f.title
	}
}

func newRootCmd() *cobra.Command {
	ro := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "yearchart",
		Short:        "Yearly area chart from a CSV dataset",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&ro.configPath, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&ro.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	cmd.AddCommand(renderCmd(ro), watchCmd(ro), snapshotCmd(ro))
	return cmd
}

// setup loads the config and installs the logger. Flags win over the file
func (ro *rootOptions) setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(ro.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	level := cfg.LogLevel
	if ro.logLevel != "" {
		level = ro.logLevel
	}
	if err := logging.Setup(logging.Config{Level: level, Output: cmd.ErrOrStderr()}); err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logging.L(), nil
}

// newChart wires a controller for cfg onto surf
func newChart(cfg config.Config, surf chart.Surface, log *slog.Logger, onDraw func(error)) (*chart.Controller, error) {
	resolver, err := cfg.Resolver()
	if err != nil {
		return nil, err
	}
	return chart.NewController(chart.Deps{
		Surface:  surf,
		Loader:   chart.NewLoader(chart.NewHTTPClient()),
		Resolver: resolver,
		Logger:   log,
		OnDraw:   onDraw,
	}, cfg.ChartOptions()), nil
}

func surfaceWidth(flagWidth float64, cfg config.Config) float64 {
	if flagWidth > 0 {
		return flagWidth
	}
	return cfg.Chart.Width
}

func renderCmd(ro *rootOptions) *cobra.Command {
	var flags chartFlags
	var focusYear int

	c := &cobra.Command{
		Use:   "render",
		Short: "Draw the chart once and save it as an html page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := ro.setup(cmd)
			if err != nil {
				return err
			}
			flags.apply(&cfg)
			out, err := getOutputPath(firstNonEmpty(flags.output, cfg.Output), "report.html")
			if err != nil {
				return fmt.Errorf("cannot determine output path: %w", err)
			}

			surf := chart.NewMemorySurface(surfaceWidth(flags.width, cfg))
			ctrl, err := newChart(cfg, surf, log, nil)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			drawErr := ctrl.Draw(cmd.Context())
			if drawErr == nil && cmd.Flags().Changed("focus-year") && !ctrl.FocusYear(focusYear) {
				log.Warn("render.focus_year_missing", "year", focusYear)
			}
			// a failed draw still produces a page carrying the diagnostic
			if err := GenerateHTMLReport(out, pageFromSurface(cfg.Title, surf)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "report saved to", out)
			if drawErr != nil {
				return errors.New(chart.Diagnostic(drawErr))
			}
			return nil
		},
	}
	flags.register(c, "html output path (default: ~/Documents/yearchart/report.html)")
	c.Flags().IntVar(&focusYear, "focus-year", 0, "pin the focus marker and tooltip on this year")
	return c
}

func watchCmd(ro *rootOptions) *cobra.Command {
	var flags chartFlags

	c := &cobra.Command{
		Use:   "watch",
		Short: "Re-render the html page whenever the CSV file changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := ro.setup(cmd)
			if err != nil {
				return err
			}
			flags.apply(&cfg)
			if chart.IsRemote(cfg.Source) {
				return fmt.Errorf("watch needs a local file, got %s", cfg.Source)
			}
			out, err := getOutputPath(firstNonEmpty(flags.output, cfg.Output), "report.html")
			if err != nil {
				return fmt.Errorf("cannot determine output path: %w", err)
			}

			surf := chart.NewMemorySurface(surfaceWidth(flags.width, cfg))
			write := func() {
				if err := GenerateHTMLReport(out, pageFromSurface(cfg.Title, surf)); err != nil {
					log.Error("watch.write_failed", "output", out, "error", err)
					return
				}
				log.Info("watch.report_updated", "output", out, "note", surf.Note())
			}
			ctrl, err := newChart(cfg, surf, log, func(err error) {
				if errors.Is(err, chart.ErrSuperseded) || errors.Is(err, chart.ErrClosed) {
					return
				}
				write()
			})
			if err != nil {
				return err
			}
			defer ctrl.Close()

			// the first draw may fail: the file can appear later
			_ = ctrl.Draw(cmd.Context())
			write()
			fmt.Fprintln(cmd.OutOrStdout(), "watching", cfg.Source, "->", out)

			w, err := watch.New(cfg.Source, ctrl, log)
			if err != nil {
				return err
			}
			if err := w.Start(cmd.Context()); err != nil {
				return err
			}
			defer w.Stop()

			<-cmd.Context().Done()
			return nil
		},
	}
	flags.register(c, "html output path (default: ~/Documents/yearchart/report.html)")
	return c
}

func snapshotCmd(ro *rootOptions) *cobra.Command {
	var flags chartFlags
	var height int

	c := &cobra.Command{
		Use:   "snapshot",
		Short: "Export the chart as a static PNG image",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := ro.setup(cmd)
			if err != nil {
				return err
			}
			flags.apply(&cfg)
			out, err := getOutputPath(firstNonEmpty(flags.output, cfg.Snapshot.Output), "chart.png")
			if err != nil {
				return fmt.Errorf("cannot determine output path: %w", err)
			}

			surf := chart.NewMemorySurface(0)
			ctrl, err := newChart(cfg, surf, log, nil)
			if err != nil {
				return err
			}
			defer ctrl.Close()
			if err := ctrl.Draw(cmd.Context()); err != nil {
				return errors.New(chart.Diagnostic(err))
			}

			sc := ctrl.Scene()
			width := cfg.Snapshot.Width
			if flags.width > 0 {
				width = int(flags.width)
			}
			if height <= 0 {
				height = cfg.Snapshot.Height
			}
			opts := snapshot.Options{
				Width:    width,
				Height:   height,
				Title:    cfg.Title,
				XLabel:   sc.XLabel,
				YLabel:   sc.YLabel,
				YTicks:   cfg.Chart.YTicks,
				Headroom: cfg.Chart.Headroom,
			}
			if err := snapshot.WriteFile(out, sc.Series, opts); err != nil {
				return err
			}
			log.Info("snapshot.saved", "output", out, "points", len(sc.Series))
			fmt.Fprintln(cmd.OutOrStdout(), "snapshot saved to", out)
			return nil
		},
	}
	flags.register(c, "png output path (default: ~/Documents/yearchart/chart.png)")
	c.Flags().IntVar(&height, "height", 0, "image height in pixels (default: config snapshot.height)")
	return c
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
