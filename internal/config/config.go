// Package config loads the yearchart YAML file, fills defaults and validates the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/pranegit/yearly-chart/internal/chart"
)

// DefaultSource is the dataset the chart reads when nothing else is configured.
const DefaultSource = "data/aiddata.csv"

type Config struct {
	Source   string         `yaml:"source" validate:"required"`
	Output   string         `yaml:"output"`
	Title    string         `yaml:"title"`
	LogLevel string         `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	Columns  ColumnsConfig  `yaml:"columns"`
	Chart    ChartConfig    `yaml:"chart"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

type ColumnsConfig struct {
	YearFallback  string   `yaml:"year_fallback" validate:"required"`
	YearPatterns  []string `yaml:"year_patterns" validate:"min=1,dive,required"`
	ValuePatterns []string `yaml:"value_patterns" validate:"dive,required"`
}

type ChartConfig struct {
	Width       float64       `yaml:"width" validate:"gt=0"`
	Height      float64       `yaml:"height" validate:"gt=0"`
	Margin      chart.Margin  `yaml:"margin"`
	ResizeQuiet time.Duration `yaml:"resize_quiet" validate:"gt=0"`
	YTicks      int           `yaml:"y_ticks" validate:"gte=2,lte=20"`
	Headroom    float64       `yaml:"headroom" validate:"gte=1,lte=3"`
	CurveAlpha  float64       `yaml:"curve_alpha" validate:"gt=0,lte=1"`
	XLabel      string        `yaml:"x_label"`
	YLabel      string        `yaml:"y_label"`
}

type SnapshotConfig struct {
	Width  int    `yaml:"width" validate:"gte=200,lte=8000"`
	Height int    `yaml:"height" validate:"gte=150,lte=8000"`
	Output string `yaml:"output"`
}

var validate = validator.New()

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Source:   DefaultSource,
		Title:    "Projects per year",
		LogLevel: "info",
		Columns: ColumnsConfig{
			YearFallback:  chart.DefaultYearColumn,
			YearPatterns:  append([]string(nil), chart.DefaultYearPatterns...),
			ValuePatterns: append([]string(nil), chart.DefaultValuePatterns...),
		},
		Chart: ChartConfig{
			Width:       chart.DefaultWidth,
			Height:      chart.DefaultHeight,
			Margin:      chart.DefaultMargin,
			ResizeQuiet: chart.DefaultResizeQuiet,
			YTicks:      chart.DefaultYTicks,
			Headroom:    chart.DefaultHeadroom,
			CurveAlpha:  chart.DefaultCurveAlpha,
			XLabel:      "Year",
		},
		Snapshot: SnapshotConfig{Width: 1200, Height: 600},
	}
}

// Load reads path over the defaults. An empty path returns the validated defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &chart.OpError{Op: "config.load", Kind: chart.KindLoad, Path: path, Err: err}
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, &chart.OpError{Op: "config.load", Kind: chart.KindInvalidConfig, Path: path, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		var oe *chart.OpError
		if errors.As(err, &oe) {
			oe.Path = path
		}
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges and that every column pattern compiles.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return &chart.OpError{Op: "config.validate", Kind: chart.KindInvalidConfig, Err: describe(err)}
	}
	if _, err := c.Resolver(); err != nil {
		return &chart.OpError{Op: "config.validate", Kind: chart.KindInvalidConfig, Err: err}
	}
	m := c.Chart.Margin
	if m.Left+m.Right >= c.Chart.Width || m.Top+m.Bottom >= c.Chart.Height {
		return &chart.OpError{Op: "config.validate", Kind: chart.KindInvalidConfig,
			Err: fmt.Errorf("margins leave no plot area in %gx%g", c.Chart.Width, c.Chart.Height)}
	}
	return nil
}

// describe turns validator output into "chart.width: gt" style messages.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		parts = append(parts, strings.ToLower(ns)+": "+fe.Tag())
	}
	return errors.New(strings.Join(parts, ", "))
}

// Resolver compiles the column patterns.
func (c Config) Resolver() (chart.ColumnResolver, error) {
	return chart.NewRankedPatterns(c.Columns.YearPatterns, c.Columns.ValuePatterns, c.Columns.YearFallback)
}

// ChartOptions maps the file onto controller options.
func (c Config) ChartOptions() chart.Options {
	return chart.Options{
		Source:       c.Source,
		DefaultWidth: c.Chart.Width,
		Height:       c.Chart.Height,
		Margin:       c.Chart.Margin,
		ResizeQuiet:  c.Chart.ResizeQuiet,
		Render: chart.RenderOptions{
			CurveAlpha: c.Chart.CurveAlpha,
			Headroom:   c.Chart.Headroom,
			YTicks:     c.Chart.YTicks,
			XLabel:     c.Chart.XLabel,
			YLabel:     c.Chart.YLabel,
		},
	}
}
