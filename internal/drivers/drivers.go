// Package drivers generates the AI field for a race attempt.
package drivers

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/abrezinsky/lightsout/internal/errors"
	"github.com/abrezinsky/lightsout/internal/models"
)

// Catalog is the fixed pool of AI driver names. The first TopDrivers
// entries get the faster reaction range.
var Catalog = []string{
	"Verstappen",
	"Hamilton",
	"Leclerc",
	"Norris",
	"Sainz",
	"Piastri",
	"Russell",
	"Alonso",
	"Perez",
	"Gasly",
	"Stroll",
	"Ocon",
	"Albon",
	"Tsunoda",
	"Bottas",
	"Hulkenberg",
	"Ricciardo",
	"Zhou",
	"Magnussen",
	"Sargeant",
}

// TopDrivers is the number of leading catalog entries treated as top drivers
const TopDrivers = 3

// Range is a closed interval of reaction times in seconds
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the range
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// DelayRange bounds the lights-out hold, in milliseconds
type DelayRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// MinDuration and MaxDuration return the bounds as durations
func (d DelayRange) MinDuration() time.Duration { return time.Duration(d.Min) * time.Millisecond }
func (d DelayRange) MaxDuration() time.Duration { return time.Duration(d.Max) * time.Millisecond }

type profile struct {
	top     Range
	regular Range
	delay   DelayRange
}

var profiles = map[models.Difficulty]profile{
	models.Easy: {
		top:     Range{Min: 0.28, Max: 0.38},
		regular: Range{Min: 0.30, Max: 0.50},
		delay:   DelayRange{Min: 1200, Max: 3000},
	},
	models.Medium: {
		top:     Range{Min: 0.22, Max: 0.30},
		regular: Range{Min: 0.22, Max: 0.35},
		delay:   DelayRange{Min: 800, Max: 2200},
	},
	models.Hard: {
		top:     Range{Min: 0.18, Max: 0.25},
		regular: Range{Min: 0.18, Max: 0.28},
		delay:   DelayRange{Min: 400, Max: 1500},
	},
}

// IsTopDriver reports whether name is one of the first TopDrivers catalog entries
func IsTopDriver(name string) bool {
	for i := 0; i < TopDrivers && i < len(Catalog); i++ {
		if Catalog[i] == name {
			return true
		}
	}
	return false
}

// TimeRange returns the reaction range that applies to name at difficulty d
func TimeRange(name string, d models.Difficulty) (Range, error) {
	p, ok := profiles[d]
	if !ok {
		return Range{}, errors.InvalidArgumentf("unknown difficulty %q", d)
	}
	if IsTopDriver(name) {
		return p.top, nil
	}
	return p.regular, nil
}

// Delay returns the lights-out hold range for difficulty d
func Delay(d models.Difficulty) (DelayRange, error) {
	p, ok := profiles[d]
	if !ok {
		return DelayRange{}, errors.InvalidArgumentf("unknown difficulty %q", d)
	}
	return p.delay, nil
}

// Generator draws AI fields from the catalog. Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a Generator backed by rng. A nil rng uses a randomly seeded source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng}
}

// Generate returns count distinct drivers with times drawn uniformly from
// their top or regular range at difficulty d.
func (g *Generator) Generate(count int, d models.Difficulty) ([]models.DriverEntry, error) {
	if count < 1 || count > len(Catalog) {
		return nil, errors.InvalidArgumentf("driver count must be between 1 and %d, got %d", len(Catalog), count)
	}
	p, ok := profiles[d]
	if !ok {
		return nil, errors.InvalidArgumentf("unknown difficulty %q", d)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	names := make([]string, len(Catalog))
	copy(names, Catalog)
	g.rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	field := make([]models.DriverEntry, count)
	for i, name := range names[:count] {
		r := p.regular
		if IsTopDriver(name) {
			r = p.top
		}
		field[i] = models.DriverEntry{
			Name: name,
			Time: r.Min + g.rng.Float64()*(r.Max-r.Min),
		}
	}
	return field, nil
}

// HoldDelay draws the lights-out hold for difficulty d, uniform over whole
// milliseconds in [min, max).
func (g *Generator) HoldDelay(d models.Difficulty) (time.Duration, error) {
	r, err := Delay(d)
	if err != nil {
		return 0, err
	}
	g.mu.Lock()
	ms := r.Min + g.rng.IntN(r.Max-r.Min)
	g.mu.Unlock()
	return time.Duration(ms) * time.Millisecond, nil
}

// Pick returns n distinct entries of names in random order, n clamped to len(names).
func (g *Generator) Pick(names []string, n int) []string {
	out := make([]string, len(names))
	copy(out, names)
	g.mu.Lock()
	g.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	g.mu.Unlock()
	if n > len(out) {
		n = len(out)
	}
	if n < 0 {
		n = 0
	}
	return out[:n]
}
