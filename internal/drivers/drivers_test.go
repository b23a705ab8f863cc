package drivers

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/abrezinsky/lightsout/internal/errors"
	"github.com/abrezinsky/lightsout/internal/models"
)

func newSeeded(seed uint64) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func TestCatalog_HasTwentyDistinctNames(t *testing.T) {
	if len(Catalog) != 20 {
		t.Fatalf("expected 20 catalog entries, got %d", len(Catalog))
	}
	seen := make(map[string]bool)
	for _, name := range Catalog {
		if seen[name] {
			t.Errorf("duplicate catalog name %q", name)
		}
		seen[name] = true
	}
}

func TestGenerate_AllCountsAndDifficulties(t *testing.T) {
	gen := newSeeded(7)

	for _, d := range models.Difficulties {
		for count := 1; count <= len(Catalog); count++ {
			field, err := gen.Generate(count, d)
			if err != nil {
				t.Fatalf("Generate(%d, %s) failed: %v", count, d, err)
			}
			if len(field) != count {
				t.Fatalf("Generate(%d, %s) returned %d entries", count, d, len(field))
			}

			seen := make(map[string]bool)
			for _, entry := range field {
				if seen[entry.Name] {
					t.Errorf("duplicate driver %q", entry.Name)
				}
				seen[entry.Name] = true

				r, err := TimeRange(entry.Name, d)
				if err != nil {
					t.Fatalf("TimeRange(%q) failed: %v", entry.Name, err)
				}
				if !r.Contains(entry.Time) {
					t.Errorf("%s at %s: time %.4f outside [%.2f, %.2f]", entry.Name, d, entry.Time, r.Min, r.Max)
				}
			}
		}
	}
}

func TestGenerate_InvalidCount(t *testing.T) {
	gen := newSeeded(1)

	for _, count := range []int{0, -1, 21, 100} {
		_, err := gen.Generate(count, models.Medium)
		if !errors.IsInvalidArgument(err) {
			t.Errorf("Generate(%d) expected InvalidArgument, got %v", count, err)
		}
	}
}

func TestGenerate_InvalidDifficulty(t *testing.T) {
	_, err := newSeeded(1).Generate(5, models.Difficulty("insane"))
	if !errors.IsInvalidArgument(err) {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}

func TestGenerate_FullFieldCoversCatalog(t *testing.T) {
	field, err := newSeeded(3).Generate(len(Catalog), models.Hard)
	if err != nil {
		t.Fatal(err)
	}
	names := make(map[string]bool)
	for _, e := range field {
		names[e.Name] = true
	}
	for _, name := range Catalog {
		if !names[name] {
			t.Errorf("expected %q in full field", name)
		}
	}
}

func TestGenerate_SeededIsDeterministic(t *testing.T) {
	a, _ := newSeeded(42).Generate(8, models.Easy)
	b, _ := newSeeded(42).Generate(8, models.Easy)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("entry %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestTopDrivers(t *testing.T) {
	for i, name := range Catalog {
		if got := IsTopDriver(name); got != (i < TopDrivers) {
			t.Errorf("IsTopDriver(%q) = %v", name, got)
		}
	}
	if IsTopDriver("You") {
		t.Error("player must not be a top driver")
	}
}

func TestReferenceTable(t *testing.T) {
	tests := []struct {
		d       models.Difficulty
		top     Range
		regular Range
		delay   DelayRange
	}{
		{models.Easy, Range{0.28, 0.38}, Range{0.30, 0.50}, DelayRange{1200, 3000}},
		{models.Medium, Range{0.22, 0.30}, Range{0.22, 0.35}, DelayRange{800, 2200}},
		{models.Hard, Range{0.18, 0.25}, Range{0.18, 0.28}, DelayRange{400, 1500}},
	}

	for _, tt := range tests {
		t.Run(string(tt.d), func(t *testing.T) {
			top, _ := TimeRange("Verstappen", tt.d)
			regular, _ := TimeRange("Sargeant", tt.d)
			delay, _ := Delay(tt.d)
			if top != tt.top {
				t.Errorf("top = %+v, want %+v", top, tt.top)
			}
			if regular != tt.regular {
				t.Errorf("regular = %+v, want %+v", regular, tt.regular)
			}
			if delay != tt.delay {
				t.Errorf("delay = %+v, want %+v", delay, tt.delay)
			}
		})
	}

	if _, err := Delay("nope"); !errors.IsInvalidArgument(err) {
		t.Errorf("expected InvalidArgument for unknown difficulty, got %v", err)
	}
}

func TestHoldDelay_WithinRange(t *testing.T) {
	gen := newSeeded(9)
	for _, d := range models.Difficulties {
		r, _ := Delay(d)
		for i := 0; i < 200; i++ {
			delay, err := gen.HoldDelay(d)
			if err != nil {
				t.Fatal(err)
			}
			if delay < r.MinDuration() || delay >= r.MaxDuration() {
				t.Fatalf("%s: delay %v outside [%v, %v)", d, delay, r.MinDuration(), r.MaxDuration())
			}
			if delay%time.Millisecond != 0 {
				t.Fatalf("delay %v is not whole milliseconds", delay)
			}
		}
	}
}

func TestPick(t *testing.T) {
	gen := newSeeded(5)
	names := []string{"a", "b", "c", "d"}

	got := gen.Pick(names, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 names, got %d", len(got))
	}
	seen := make(map[string]bool)
	for _, n := range got {
		if seen[n] {
			t.Errorf("duplicate %q", n)
		}
		seen[n] = true
	}
	if len(gen.Pick(names, 10)) != 4 {
		t.Error("expected pick to clamp to input size")
	}
	if names[0] != "a" || names[3] != "d" {
		t.Error("Pick must not reorder its input")
	}
}
