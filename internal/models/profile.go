package models

// Profile holds three equal-length per-channel sequences sampled along a line cut.
// The same shape carries raw averaged pixel values and contrast fractions.
type Profile struct {
	Red   []float64 `yaml:"red"`
	Green []float64 `yaml:"green"`
	Blue  []float64 `yaml:"blue"`
}

// Len returns the number of samples per channel
func (p Profile) Len() int {
	return len(p.Red)
}

// Append concatenates other onto p in place
func (p *Profile) Append(other Profile) {
	p.Red = append(p.Red, other.Red...)
	p.Green = append(p.Green, other.Green...)
	p.Blue = append(p.Blue, other.Blue...)
}

// Channels returns the three sequences in R, G, B order
func (p Profile) Channels() [3][]float64 {
	return [3][]float64{p.Red, p.Green, p.Blue}
}

// Clone returns a deep copy
func (p Profile) Clone() Profile {
	return Profile{
		Red:   append([]float64(nil), p.Red...),
		Green: append([]float64(nil), p.Green...),
		Blue:  append([]float64(nil), p.Blue...),
	}
}

// Percent returns a copy with every value scaled by 100
func (p Profile) Percent() Profile {
	out := p.Clone()
	for _, ch := range out.Channels() {
		for i := range ch {
			ch[i] *= 100
		}
	}
	return out
}
