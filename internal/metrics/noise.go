package metrics

import (
	crand "crypto/rand"
	"encoding/binary"
	"math"
	"math/rand"
	"sync"
)

// NoiseSource yields uniform samples in [0, 1). Tests inject a fixed
// sequence to pin behavior; production uses a generator seeded from
// crypto-quality entropy.
type NoiseSource interface {
	Float64() float64
}

// NewDefaultSource returns a math/rand generator seeded from crypto/rand.
func NewDefaultSource() NoiseSource {
	var seed int64
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err == nil {
		seed = int64(binary.LittleEndian.Uint64(buf[:]))
	}
	return rand.New(rand.NewSource(seed))
}

// Laplace draws Laplace-distributed noise from a NoiseSource. Safe for
// concurrent use.
type Laplace struct {
	mu  sync.Mutex
	src NoiseSource
}

// NewLaplace creates a Laplace mechanism over the given source.
func NewLaplace(src NoiseSource) *Laplace {
	return &Laplace{src: src}
}

// Sample draws one Laplace(0, scale) value via the inverse CDF.
func (l *Laplace) Sample(scale float64) float64 {
	l.mu.Lock()
	u := l.src.Float64() - 0.5
	l.mu.Unlock()

	// Keep 1-2|u| strictly positive so the log stays finite.
	abs := math.Abs(u)
	if abs >= 0.5 {
		abs = math.Nextafter(0.5, 0)
	}
	if u == 0 {
		return 0
	}
	sign := 1.0
	if u < 0 {
		sign = -1
	}
	return -scale * sign * math.Log(1-2*abs)
}

// noisyCount adds Laplace noise to a count, floors at zero, and rounds to
// an integer.
func (l *Laplace) noisyCount(v int, scale float64) int {
	noised := float64(v) + l.Sample(scale)
	if noised < 0 {
		return 0
	}
	return int(math.Round(noised))
}

// noisyRate adds Laplace noise to a rate and floors at zero.
func (l *Laplace) noisyRate(v, scale float64) float64 {
	noised := v + l.Sample(scale)
	if noised < 0 {
		return 0
	}
	return noised
}
