package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"gopkg.in/yaml.v3"

	"opticalflake/internal/models"
	"opticalflake/pkg/analysis"
	"opticalflake/pkg/config"
	"opticalflake/pkg/contrast"
	"opticalflake/pkg/imageio"
	"opticalflake/pkg/visualization"
)

// report is the document printed to stdout
type report struct {
	Image        string         `yaml:"image"`
	Width        int            `yaml:"width"`
	Height       int            `yaml:"height"`
	Background   backgroundInfo `yaml:"background"`
	Percent      bool           `yaml:"percent"`
	Baseline     bool           `yaml:"baselineCorrected"`
	Measurements []cutInfo      `yaml:"measurements"`
}

type backgroundInfo struct {
	Polygon models.Polygon `yaml:"polygon,flow"`
	Color   models.Color   `yaml:"color,flow"`
}

type cutInfo struct {
	Name    string         `yaml:"name"`
	Width   int            `yaml:"width"`
	Points  []models.Point `yaml:"points,flow"`
	Samples int            `yaml:"samples"`
	Red     []float64      `yaml:"red,flow"`
	Green   []float64      `yaml:"green,flow"`
	Blue    []float64      `yaml:"blue,flow"`
}

func main() {
	jobPath := flag.String("job", "", "YAML job file describing image, background and cuts")
	configPath := flag.String("config", "opticalflake.yaml", "Configuration file (defaults are used if missing)")
	width := flag.Int("width", 0, "Averaging width for every cut (0 keeps per-cut or configured width)")
	percent := flag.Bool("percent", false, "Print contrast as percentages")
	raw := flag.Bool("raw", false, "Skip baseline correction")
	verbose := flag.Bool("v", false, "Enable debug logging")
	overlay := flag.String("overlay", "", "Write the image annotated with background and cuts to this file")
	initConfig := flag.String("init-config", "", "Write a default configuration file to this path and exit")
	flag.Parse()

	if *initConfig != "" {
		if err := config.CreateDefaultConfigFile(*initConfig); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Default configuration written to %s\n", *initConfig)
		return
	}

	if *jobPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *percent {
		cfg.Output.Percent = true
	}
	if *verbose {
		cfg.Output.Verbose = true
	}

	level := slog.LevelInfo
	if cfg.Output.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	analysis.SetLogger(logger)

	job, err := config.LoadJob(*jobPath)
	if err != nil {
		log.Fatalf("Failed to load job: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	startTime := time.Now()
	rep, err := run(ctx, cfg, job, *width, *raw, *overlay)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}
	logger.Info("analysis complete",
		"cuts", len(rep.Measurements), "elapsed", time.Since(startTime).Round(time.Millisecond))

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
	if err := enc.Close(); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
}

// run loads the job image, sets the background and measures every cut.
// A non-empty overlayPath also writes the annotated image.
func run(ctx context.Context, cfg *config.Config, job *config.Job, widthOverride int, raw bool, overlayPath string) (*report, error) {
	img, err := imageio.Load(job.ImagePath())
	if err != nil {
		return nil, err
	}
	analysis.Logger().Info("image loaded", "path", job.ImagePath(), "width", img.Width(), "height", img.Height())

	session := analysis.NewSession(img, cfg.SessionParams())
	bg, err := session.SetBackground(ctx, job.Background.Region())
	if err != nil {
		return nil, fmt.Errorf("failed to set background: %w", err)
	}

	rep := &report{
		Image:    job.ImagePath(),
		Width:    img.Width(),
		Height:   img.Height(),
		Percent:  cfg.Output.Percent,
		Baseline: !raw,
		Background: backgroundInfo{
			Polygon: session.BackgroundPolygon(),
			Color:   bg,
		},
	}

	for i, cut := range job.Cuts {
		chain, err := cut.Chain()
		if err != nil {
			return nil, fmt.Errorf("cut %d: %w", i+1, err)
		}

		w := cut.Width
		if widthOverride != 0 {
			w = widthOverride
		}
		m, err := session.AddMeasurement(chain, w)
		if err != nil {
			return nil, fmt.Errorf("cut %d: %w", i+1, err)
		}

		profile := m.Contrast
		if raw {
			profile = contrast.CalculateRaw(img, m.Chain, bg, m.Width)
		}
		if cfg.Output.Percent {
			profile = profile.Percent()
		}

		name := m.Name
		if cut.Name != "" {
			name = cut.Name
		}
		rep.Measurements = append(rep.Measurements, cutInfo{
			Name:    name,
			Width:   m.Width,
			Points:  m.Chain.Points(),
			Samples: profile.Len(),
			Red:     profile.Red,
			Green:   profile.Green,
			Blue:    profile.Blue,
		})
	}

	if overlayPath != "" {
		o := visualization.NewOverlay(img)
		o.DrawSession(session)
		if err := o.Save(overlayPath); err != nil {
			return nil, err
		}
		analysis.Logger().Info("overlay written", "path", overlayPath)
	}

	return rep, nil
}
