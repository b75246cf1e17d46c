package particle

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	. "github.com/onsi/gomega"
)

func TestConstantsForIsTotal(t *testing.T) {
	for _, typ := range Types {
		t.Run(string(typ), func(t *testing.T) {
			c := ConstantsFor(typ)
			if c.Size <= 0 {
				t.Errorf("size should be positive, got %f", c.Size)
			}
			if c.TrailLength <= 0 {
				t.Errorf("trail length should be positive, got %d", c.TrailLength)
			}
			if c.Mass < 0 {
				t.Errorf("mass should be non-negative, got %g", c.Mass)
			}
			if c.Lifespan <= 0 {
				t.Errorf("lifespan should be positive, got %g", c.Lifespan)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		want    Type
		wantErr bool
	}{
		{"photon", Photon, false},
		{"darkmatter", DarkMatter, false},
		{"neutrino", Neutrino, false},
		{"tachyon", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.name)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownType) {
				t.Errorf("Parse(%q): expected ErrUnknownType, got %v", tt.name, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Parse(%q) = %v, %v; want %v", tt.name, got, err, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	g := NewWithT(t)
	rng := rand.New(rand.NewSource(1))

	p := New(rng, Electron, 10, 20, 3, 4)

	c := ConstantsFor(Electron)
	g.Expect(p.ID).NotTo(BeEmpty())
	g.Expect(p.Type).To(Equal(Electron))
	g.Expect(p.Mass).To(Equal(c.Mass))
	g.Expect(p.Charge).To(Equal(c.Charge))
	g.Expect(p.Age).To(BeZero())
	g.Expect(p.Energy).To(BeNumerically("~", 0.5*c.Mass*25, 1e-40))
	g.Expect(math.IsInf(p.Lifespan, 1)).To(BeTrue())
	g.Expect(p.Trail).To(BeEmpty())
}

func TestNewIDsAreReproducible(t *testing.T) {
	a := rand.New(rand.NewSource(7))
	b := rand.New(rand.NewSource(7))

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		idA, idB := NewID(a), NewID(b)
		if idA != idB {
			t.Fatalf("id %d differs across equal seeds: %s vs %s", i, idA, idB)
		}
		if seen[idA] {
			t.Fatalf("duplicate id %s", idA)
		}
		seen[idA] = true
	}
}

func TestPushTrail(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	p := New(rng, Quark, 0, 0, 0, 0)
	limit := ConstantsFor(Quark).TrailLength

	for i := 0; i < limit*3; i++ {
		p.X = float64(i)
		p.PushTrail()

		if len(p.Trail) > limit {
			t.Fatalf("trail length %d exceeds %d", len(p.Trail), limit)
		}
		if p.Trail[0].X != float64(i) {
			t.Errorf("head should be most recent position %d, got %f", i, p.Trail[0].X)
		}
		for j := 1; j < len(p.Trail); j++ {
			if p.Trail[j].Opacity > p.Trail[j-1].Opacity {
				t.Errorf("opacity increases at index %d", j)
			}
		}
	}

	if p.Trail[limit-1].X != float64(limit*3-limit) {
		t.Errorf("oldest sample should be %d, got %f", limit*3-limit, p.Trail[limit-1].X)
	}
}

func TestCloneDoesNotShareTrail(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	p := New(rng, Photon, 1, 1, 0, 0)
	p.PushTrail()

	c := p.Clone()
	c.Trail[0].X = 99

	if p.Trail[0].X == 99 {
		t.Error("clone shares trail storage with original")
	}
}

func TestFinite(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"origin", 0, 0, true},
		{"nan x", math.NaN(), 0, false},
		{"inf y", 0, math.Inf(1), false},
		{"-inf x", math.Inf(-1), 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Particle{X: tt.x, Y: tt.y}
			if got := p.Finite(); got != tt.want {
				t.Errorf("Finite() = %v, want %v", got, tt.want)
			}
		})
	}
}
