package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"opticalflake/internal/models"
	"opticalflake/pkg/analysis"
)

// Job describes one analysis run: an image, its background region and the
// line cuts to measure on it
type Job struct {
	// Image is the path of the source image, relative to the job file
	Image string `yaml:"image"`

	// Background is the reference region
	Background BackgroundSpec `yaml:"background"`

	// Cuts are the line cuts, measured in order
	Cuts []CutSpec `yaml:"cuts"`

	// dir is the directory of the job file, used to resolve Image
	dir string
}

// BackgroundSpec selects the background either as a polygon or as the
// rectangle spanned by two corners. Polygon wins when both are set.
type BackgroundSpec struct {
	Polygon []models.Point `yaml:"polygon,omitempty"`
	Rect    *RectSpec      `yaml:"rect,omitempty"`
}

// RectSpec is a rectangle given by opposite corners
type RectSpec struct {
	From models.Point `yaml:"from"`
	To   models.Point `yaml:"to"`
}

// CutSpec is one poly-line cut. Width 0 uses the configured default.
type CutSpec struct {
	Name   string         `yaml:"name,omitempty"`
	Points []models.Point `yaml:"points"`
	Width  int            `yaml:"width,omitempty"`
}

// Region returns the background polygon described by b
func (b BackgroundSpec) Region() models.Polygon {
	if len(b.Polygon) > 0 {
		return models.Polygon(b.Polygon)
	}
	if b.Rect != nil {
		return models.RectanglePolygon(b.Rect.From, b.Rect.To)
	}
	return nil
}

// Chain returns the segment chain of the cut
func (c CutSpec) Chain() (models.Chain, error) {
	return models.ChainFromPoints(c.Points)
}

// ImagePath resolves Image against the job file's directory
func (j *Job) ImagePath() string {
	if filepath.IsAbs(j.Image) || j.dir == "" {
		return j.Image
	}
	return filepath.Join(j.dir, j.Image)
}

// Validate checks the job before any image is loaded
func (j *Job) Validate() error {
	if j.Image == "" {
		return errors.New("job has no image")
	}
	if len(j.Background.Region()) < 3 {
		return errors.New("background needs a polygon with at least 3 points or a rect")
	}
	if len(j.Cuts) == 0 {
		return errors.New("job has no cuts")
	}
	for i, c := range j.Cuts {
		if len(c.Points) < 2 {
			return errors.Errorf("cut %d needs at least 2 points", i+1)
		}
		if c.Width != 0 && (c.Width < analysis.MinWidth || c.Width > analysis.MaxWidth) {
			return errors.Errorf("cut %d: width %d not in [%d, %d]",
				i+1, c.Width, analysis.MinWidth, analysis.MaxWidth)
		}
	}
	return nil
}

// LoadJob reads and validates a job file
func LoadJob(jobPath string) (*Job, error) {
	data, err := os.ReadFile(jobPath)
	if err != nil {
		return nil, errors.Wrap(err, "error reading job file")
	}

	job := &Job{}
	if err := yaml.Unmarshal(data, job); err != nil {
		return nil, errors.Wrap(err, "error parsing job file")
	}
	job.dir = filepath.Dir(jobPath)

	if err := job.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid job file %s", jobPath)
	}
	return job, nil
}
