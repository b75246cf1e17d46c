package collision

import (
	"math"
	"math/rand"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/quantasim/internal/particle"
)

func at(rng particle.Rand, t particle.Type, x, y, vx, vy float64) particle.Particle {
	return particle.New(rng, t, x, y, vx, vy)
}

func TestCollides(t *testing.T) {
	tests := []struct {
		name string
		dx   float64
		want bool
	}{
		{"overlapping", 1, true},
		{"just inside", 2.999, true},
		{"touching", 3, false},
		{"apart", 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &particle.Particle{Size: 3}
			b := &particle.Particle{X: tt.dx, Size: 3}
			if got := Collides(a, b); got != tt.want {
				t.Errorf("Collides() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	old := func(p particle.Particle) particle.Particle {
		p.Age = p.Lifespan
		return p
	}
	anti := func(p particle.Particle) particle.Particle {
		p.Charge = -p.Charge
		return p
	}

	tests := []struct {
		name string
		a, b particle.Particle
		want Reaction
	}{
		{"opposite charges annihilate", at(rng, particle.Electron, 0, 0, 0, 0), anti(at(rng, particle.Electron, 0, 0, 0, 0)), Annihilation},
		{"quark pair fuses", at(rng, particle.Quark, 0, 0, 0, 0), at(rng, particle.Quark, 0, 0, 0, 0), Fusion},
		{"electron boson fuses", at(rng, particle.Electron, 0, 0, 0, 0), at(rng, particle.Boson, 0, 0, 0, 0), Fusion},
		{"boson electron fuses", at(rng, particle.Boson, 0, 0, 0, 0), at(rng, particle.Electron, 0, 0, 0, 0), Fusion},
		{"old boson decays", old(at(rng, particle.Boson, 0, 0, 0, 0)), at(rng, particle.Photon, 0, 0, 0, 0), Decay},
		{"photons bounce", at(rng, particle.Photon, 0, 0, 0, 0), at(rng, particle.Photon, 0, 0, 0, 0), Elastic},
		{"unbounded lifespan never decays", at(rng, particle.Neutrino, 0, 0, 0, 0), at(rng, particle.DarkMatter, 0, 0, 0, 0), Elastic},
		{"annihilation beats fusion", at(rng, particle.Quark, 0, 0, 0, 0), anti(at(rng, particle.Quark, 0, 0, 0, 0)), Annihilation},
		{"fusion beats decay", old(at(rng, particle.Quark, 0, 0, 0, 0)), old(at(rng, particle.Quark, 0, 0, 0, 0)), Fusion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(&tt.a, &tt.b); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBounceConservesMomentum(t *testing.T) {
	tests := []struct {
		name   string
		m1, m2 float64
	}{
		{"equal masses", 1, 1},
		{"heavy and light", 1e-25, 9.109e-31},
		{"massless pair", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &particle.Particle{X: 0, Y: 0, VX: 300, VY: -20, Mass: tt.m1, Size: 4}
			b := &particle.Particle{X: 1, Y: 1, VX: -150, VY: 45, Mass: tt.m2, Size: 4}
			px := a.Mass*a.VX + b.Mass*b.VX
			py := a.Mass*a.VY + b.Mass*b.VY

			Bounce(a, b)

			gotX := a.Mass*a.VX + b.Mass*b.VX
			gotY := a.Mass*a.VY + b.Mass*b.VY
			tol := 1e-9 * math.Max(math.Abs(px)+math.Abs(py), 1e-300)
			if math.Abs(gotX-px) > tol || math.Abs(gotY-py) > tol {
				t.Errorf("momentum changed: (%g, %g) -> (%g, %g)", px, py, gotX, gotY)
			}
			if d := math.Hypot(a.X-b.X, a.Y-b.Y); d < 4-1e-9 {
				t.Errorf("pair still overlaps, distance %g", d)
			}
		})
	}
}

func TestBounceCoincidentPushesAlongX(t *testing.T) {
	a := &particle.Particle{X: 5, Y: 5, Mass: 1, Size: 2}
	b := &particle.Particle{X: 5, Y: 5, Mass: 1, Size: 2}

	Bounce(a, b)

	if a.X != 6 || b.X != 4 || a.Y != 5 || b.Y != 5 {
		t.Errorf("unexpected separation a=(%g,%g) b=(%g,%g)", a.X, a.Y, b.X, b.Y)
	}
}

func TestResolveFusion(t *testing.T) {
	g := NewWithT(t)
	rng := rand.New(rand.NewSource(5))
	ps := []particle.Particle{
		at(rng, particle.Quark, 100, 100, 1000, 0),
		at(rng, particle.Quark, 101, 100, -500, 250),
	}
	m1, m2 := ps[0].Mass, ps[1].Mass
	ids := []string{ps[0].ID, ps[1].ID}

	batch := NewResolver().Resolve(ps, rng)

	g.Expect(batch.Collisions).To(Equal(1))
	g.Expect(batch.Removed).To(ConsistOf(ids[0], ids[1]))
	g.Expect(batch.Added).To(HaveLen(1))
	g.Expect(batch.Reactions[Fusion]).To(Equal(1))

	boson := batch.Added[0]
	g.Expect(boson.Type).To(Equal(particle.Boson))
	g.Expect(boson.Mass).To(BeNumerically("~", 0.95*(m1+m2), 1e-45))
	g.Expect(boson.VX).To(BeNumerically("~", (m1*1000+m2*-500)/(m1+m2), 1e-9))
	g.Expect(boson.VY).To(BeNumerically("~", m2*250/(m1+m2), 1e-9))
	g.Expect(boson.Charge).To(BeNumerically("~", 4.0/3.0, 1e-12))
	g.Expect(boson.ID).NotTo(BeElementOf(ids))
	g.Expect(boson.X).To(BeNumerically("~", 100.5, 1e-12))
	g.Expect(boson.Y).To(BeNumerically("~", 100, 1e-12))
}

func TestFusionProductSitsAtMidpoint(t *testing.T) {
	g := NewWithT(t)
	rng := rand.New(rand.NewSource(9))
	electron := at(rng, particle.Electron, 100, 40, 0, 0)
	boson := at(rng, particle.Boson, 103, 44, 0, 0)

	batch := NewResolver().Resolve([]particle.Particle{electron, boson}, rng)

	g.Expect(batch.Reactions[Fusion]).To(Equal(1))
	g.Expect(batch.Added).To(HaveLen(1))
	g.Expect(batch.Added[0].X).To(BeNumerically("~", 101.5, 1e-12))
	g.Expect(batch.Added[0].Y).To(BeNumerically("~", 42, 1e-12))
}

func TestResolveDecay(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		boson := at(rng, particle.Boson, 200, 200, 0, 0)
		boson.Age = boson.Lifespan
		boson.Energy = 12
		photon := at(rng, particle.Photon, 201, 201, 0, 0)
		ps := []particle.Particle{boson, photon}

		batch := NewResolver().Resolve(ps, rng)

		if batch.Reactions[Decay] != 1 {
			t.Fatalf("seed %d: expected one decay, got %v", seed, batch.Reactions)
		}
		n := len(batch.Added)
		if n < MinDecayPhotons || n > MaxDecayPhotons {
			t.Fatalf("seed %d: expected 2-4 products, got %d", seed, n)
		}
		for _, p := range batch.Added {
			if p.Type != particle.Photon {
				t.Errorf("seed %d: product type %s", seed, p.Type)
			}
			if math.Abs(p.Energy-12/float64(n)) > 1e-12 {
				t.Errorf("seed %d: product energy %g", seed, p.Energy)
			}
			if p.X != 200 || p.Y != 200 {
				t.Errorf("seed %d: product should start at the first particle", seed)
			}
			if p.Speed() > MaxDecaySpeed {
				t.Errorf("seed %d: product speed %g", seed, p.Speed())
			}
		}
	}
}

func TestResolveAnnihilation(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	e := at(rng, particle.Electron, 10, 10, 0, 0)
	pos := at(rng, particle.Electron, 11, 10, 0, 0)
	pos.Charge = 1

	batch := NewResolver().Resolve([]particle.Particle{e, pos}, rng)

	if len(batch.Removed) != 2 || len(batch.Added) != 0 {
		t.Errorf("expected both removed and no products, got %+v", batch)
	}
}

func TestResolvePairOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	ps := []particle.Particle{
		at(rng, particle.Photon, 10, 10, 5, 0),
		at(rng, particle.Photon, 11, 10, -5, 0),
	}

	batch := NewResolver().Resolve(ps, rng)

	if batch.Collisions != 1 {
		t.Errorf("expected one collision, got %d", batch.Collisions)
	}
	if len(batch.Removed) != 0 {
		t.Errorf("elastic bounce should remove nothing, got %v", batch.Removed)
	}
}

func TestResolveConsumedParticleReactsOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	ps := []particle.Particle{
		at(rng, particle.Quark, 10, 10, 0, 0),
		at(rng, particle.Quark, 10.5, 10, 0, 0),
		at(rng, particle.Quark, 10, 10.5, 0, 0),
	}

	batch := NewResolver().Resolve(ps, rng)

	if batch.Collisions != 1 || len(batch.Added) != 1 || len(batch.Removed) != 2 {
		t.Errorf("expected a single fusion, got %+v", batch)
	}
}

func TestResolveAcrossCellBoundary(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	ps := []particle.Particle{
		at(rng, particle.Photon, CellSize-0.5, 10, 0, 0),
		at(rng, particle.Photon, CellSize+0.5, 10, 0, 0),
	}

	if batch := NewResolver().Resolve(ps, rng); batch.Collisions != 1 {
		t.Errorf("expected neighbouring cells to be searched, got %d collisions", batch.Collisions)
	}
}

func TestResolveSkipsNonFinite(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	ps := []particle.Particle{
		at(rng, particle.Photon, math.NaN(), 10, 0, 0),
		at(rng, particle.Photon, 10, 10, 0, 0),
	}

	if batch := NewResolver().Resolve(ps, rng); batch.Collisions != 0 {
		t.Errorf("expected no collisions, got %d", batch.Collisions)
	}
}

func TestResolverReuse(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	r := NewResolver()
	first := []particle.Particle{
		at(rng, particle.Photon, 10, 10, 0, 0),
		at(rng, particle.Photon, 11, 10, 0, 0),
	}
	r.Resolve(first, rng)

	second := []particle.Particle{
		at(rng, particle.Photon, 500, 500, 0, 0),
		at(rng, particle.Photon, 900, 900, 0, 0),
	}
	if batch := r.Resolve(second, rng); batch.Collisions != 0 {
		t.Errorf("stale grid buckets leaked into the next pass: %d collisions", batch.Collisions)
	}
}

func BenchmarkResolve(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	ps := make([]particle.Particle, 3000)
	for i := range ps {
		ps[i] = at(rng, particle.Types[i%len(particle.Types)], rng.Float64()*1920, rng.Float64()*1080, 0, 0)
	}
	r := NewResolver()

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		r.Resolve(ps, rng)
	}
}
