// Package analysis holds the measurement session for one image: the current
// background region and its color, and the line-cut measurements computed
// against it. It is the stateful layer a UI or CLI drives; the numeric work
// lives in the raster, sampling and contrast packages.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"opticalflake/internal/models"
	"opticalflake/pkg/contrast"
)

// Width limits accepted by a session
const (
	MinWidth = 1
	MaxWidth = 999
)

var (
	// ErrNoBackground is returned when a measurement is added before a background is set
	ErrNoBackground = errors.New("background region not defined")

	// ErrIndexOutOfRange is returned for measurement indices that do not exist
	ErrIndexOutOfRange = errors.New("measurement index out of range")

	// ErrInvalidWidth is returned for averaging widths outside [MinWidth, MaxWidth]
	ErrInvalidWidth = errors.New("averaging width out of range")

	// ErrEmptyChain is returned when a measurement has no segments
	ErrEmptyChain = errors.New("line cut has no segments")
)

// Params holds the session configuration
type Params struct {
	// NumWorkers bounds how many measurements are recomputed concurrently
	NumWorkers int

	// DefaultWidth is used when a measurement is added with width 0
	DefaultWidth int

	// BaselineTopK is the number of largest contrast values whose median is
	// subtracted from each channel
	BaselineTopK int
}

// DefaultParams returns width 10, a top-3 baseline and one worker per CPU
func DefaultParams() *Params {
	return &Params{
		NumWorkers:   runtime.NumCPU(),
		DefaultWidth: 10,
		BaselineTopK: contrast.DefaultTopK,
	}
}

// Measurement is one line cut and its contrast profile
type Measurement struct {
	Name     string         `yaml:"name"`
	Chain    models.Chain   `yaml:"chain"`
	Width    int            `yaml:"width"`
	Contrast models.Profile `yaml:"contrast"`
}

// Clone returns a deep copy
func (m Measurement) Clone() Measurement {
	m.Chain = append(models.Chain(nil), m.Chain...)
	m.Contrast = m.Contrast.Clone()
	return m
}

// Session tracks the background and measurements of one image.
// All methods are safe for concurrent use.
type Session struct {
	mu sync.RWMutex

	params *Params
	img    *models.RGBImage

	background    models.Polygon
	bgColor       models.Color
	hasBackground bool

	measurements []Measurement
}

// NewSession creates a session over img. A nil params uses DefaultParams.
func NewSession(img *models.RGBImage, params *Params) *Session {
	if params == nil {
		params = DefaultParams()
	}
	p := *params
	if p.NumWorkers < 1 {
		p.NumWorkers = 1
	}
	if p.DefaultWidth < MinWidth || p.DefaultWidth > MaxWidth {
		p.DefaultWidth = DefaultParams().DefaultWidth
	}
	if p.BaselineTopK < 1 {
		p.BaselineTopK = contrast.DefaultTopK
	}
	return &Session{params: &p, img: img}
}

// Image returns the image the session samples
func (s *Session) Image() *models.RGBImage {
	return s.img
}

// Background returns the current background color and whether one is defined
func (s *Session) Background() (models.Color, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bgColor, s.hasBackground
}

// BackgroundPolygon returns a copy of the current background region
func (s *Session) BackgroundPolygon() models.Polygon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(models.Polygon(nil), s.background...)
}

// SetBackground replaces the background region, recomputes its color and
// then every existing measurement against the new color. The region, color
// and profiles change together: if the recompute fails the session keeps its
// previous state.
func (s *Session) SetBackground(ctx context.Context, poly models.Polygon) (models.Color, error) {
	bg, err := contrast.BackgroundColor(s.img, poly)
	if err != nil {
		return models.Color{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.recomputeLocked(ctx, bg)
	if err != nil {
		return models.Color{}, err
	}

	s.background = append(models.Polygon(nil), poly...)
	s.bgColor = bg
	s.hasBackground = true
	s.commitLocked(profiles)

	Logger().Info("background updated",
		"vertices", len(poly), "r", bg.R, "g", bg.G, "b", bg.B)
	return bg, nil
}

// SetBackgroundRect uses the rectangle spanned by two opposite corners as background
func (s *Session) SetBackgroundRect(ctx context.Context, a, b models.Point) (models.Color, error) {
	return s.SetBackground(ctx, models.RectanglePolygon(a, b))
}

// AddMeasurement computes a new line cut against the current background.
// A width of 0 selects the session's default width.
func (s *Session) AddMeasurement(chain models.Chain, width int) (Measurement, error) {
	if len(chain) == 0 {
		return Measurement{}, ErrEmptyChain
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasBackground {
		return Measurement{}, ErrNoBackground
	}
	if width == 0 {
		width = s.params.DefaultWidth
	}
	if err := checkWidth(width); err != nil {
		return Measurement{}, err
	}

	m := Measurement{
		Name:  measurementName(len(s.measurements)),
		Chain: append(models.Chain(nil), chain...),
		Width: width,
	}
	m.Contrast = s.compute(m.Chain, m.Width, s.bgColor)
	s.measurements = append(s.measurements, m)

	Logger().Info("measurement added",
		"name", m.Name, "segments", len(chain), "width", width, "samples", m.Contrast.Len())
	return m.Clone(), nil
}

// SetWidth changes the averaging width of a measurement and recomputes it
func (s *Session) SetWidth(index, width int) (Measurement, error) {
	if err := checkWidth(width); err != nil {
		return Measurement{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.measurements) {
		return Measurement{}, ErrIndexOutOfRange
	}

	m := &s.measurements[index]
	m.Width = width
	m.Contrast = s.compute(m.Chain, width, s.bgColor)

	Logger().Debug("measurement width changed", "name", m.Name, "width", width)
	return m.Clone(), nil
}

// Remove deletes a measurement and renumbers the remaining names
func (s *Session) Remove(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.measurements) {
		return ErrIndexOutOfRange
	}

	removed := s.measurements[index].Name
	s.measurements = append(s.measurements[:index], s.measurements[index+1:]...)
	for i := range s.measurements {
		s.measurements[i].Name = measurementName(i)
	}

	Logger().Info("measurement removed", "name", removed, "remaining", len(s.measurements))
	return nil
}

// Len returns the number of measurements
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.measurements)
}

// Measurement returns a copy of the measurement at index
func (s *Session) Measurement(index int) (Measurement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.measurements) {
		return Measurement{}, ErrIndexOutOfRange
	}
	return s.measurements[index].Clone(), nil
}

// Measurements returns copies of all measurements in insertion order
func (s *Session) Measurements() []Measurement {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Measurement, len(s.measurements))
	for i, m := range s.measurements {
		out[i] = m.Clone()
	}
	return out
}

// RecalculateAll recomputes every measurement against the current background
func (s *Session) RecalculateAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasBackground {
		return ErrNoBackground
	}
	profiles, err := s.recomputeLocked(ctx, s.bgColor)
	if err != nil {
		return err
	}
	s.commitLocked(profiles)
	return nil
}

// recomputeLocked fans the measurements out over NumWorkers goroutines and
// stores each result in its own slot. Nothing is written to the session; the
// caller commits the returned profiles once every job has finished.
func (s *Session) recomputeLocked(ctx context.Context, bg models.Color) ([]models.Profile, error) {
	total := len(s.measurements)
	if total == 0 {
		return nil, nil
	}

	type result struct {
		index   int
		profile models.Profile
		err     error
	}

	jobs := make(chan int, total)
	for i := 0; i < total; i++ {
		jobs <- i
	}
	close(jobs)

	resultChan := make(chan result, total)

	workers := s.params.NumWorkers
	if workers > total {
		workers = total
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					resultChan <- result{index: i, err: err}
					continue
				}
				m := s.measurements[i]
				resultChan <- result{index: i, profile: s.compute(m.Chain, m.Width, bg)}
			}
		}()
	}
	wg.Wait()
	close(resultChan)

	profiles := make([]models.Profile, total)
	var firstErr error
	completed := 0
	for res := range resultChan {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		profiles[res.index] = res.profile
		completed++
		Logger().Debug("measurement recomputed",
			"name", s.measurements[res.index].Name, "done", completed, "total", total)
	}

	if firstErr != nil {
		Logger().Warn("recalculation aborted", "done", completed, "total", total, "err", firstErr)
		return nil, fmt.Errorf("failed to recalculate measurements: %w", firstErr)
	}
	return profiles, nil
}

// commitLocked stores profiles returned by recomputeLocked
func (s *Session) commitLocked(profiles []models.Profile) {
	for i, p := range profiles {
		s.measurements[i].Contrast = p
	}
}

// compute runs the full pipeline for one chain. It only reads shared state.
func (s *Session) compute(chain models.Chain, width int, bg models.Color) models.Profile {
	profile, stats := contrast.CalculateTopK(s.img, chain, bg, width, s.params.BaselineTopK)
	for i, st := range stats {
		if st.Used < st.Requested {
			Logger().Debug("offset lines dropped at image edge",
				"start", chain[i].Start.String(), "end", chain[i].End.String(),
				"used", st.Used, "requested", st.Requested)
		}
	}
	return profile
}

func checkWidth(width int) error {
	if width < MinWidth || width > MaxWidth {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidWidth, width, MinWidth, MaxWidth)
	}
	return nil
}

func measurementName(index int) string {
	return fmt.Sprintf("Linecut %d", index+1)
}
