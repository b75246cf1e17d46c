package engine_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/quantasim/internal/config"
	"github.com/san-kum/quantasim/internal/engine"
	"github.com/san-kum/quantasim/internal/particle"
)

var _ = Describe("Scenarios", func() {
	DescribeTable("loading a preset",
		func(name string) {
			e, err := engine.New(config.DefaultSimulation(), engine.WithSeed(7))
			Expect(err).NotTo(HaveOccurred())

			s, err := config.GetScenario(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.LoadScenario(s)).To(Succeed())

			want := s.Config.TotalParticles()
			wells := 0
			for _, a := range s.Actions {
				switch a.Kind {
				case config.ActionParticleBurst:
					want += a.Count
				case config.ActionGravityWell:
					wells++
				}
			}
			Expect(e.Particles()).To(HaveLen(want))
			Expect(e.GravityWells()).To(HaveLen(wells))
			Expect(e.Config().Preset).To(Equal(name))
			Expect(e.Stats().Steps).To(BeZero())

			e.Reset()
			counts := e.CountByType()
			for _, t := range particle.Types {
				Expect(counts[t]).To(Equal(s.Config.ParticleCount[t]), "type %s", t)
			}
			Expect(e.GravityWells()).To(BeEmpty())
		},
		Entry("bigbang", "bigbang"),
		Entry("blackhole", "blackhole"),
		Entry("accelerator", "accelerator"),
		Entry("galaxy", "galaxy"),
		Entry("quantum_foam", "quantum_foam"),
		Entry("neutron_star", "neutron_star"),
	)

	It("rejects an unknown preset before touching the engine", func() {
		_, err := config.GetScenario("wormhole")
		Expect(err).To(MatchError(config.ErrUnknownScenario))
	})
})

var _ = Describe("Engine", func() {
	var e *engine.Engine

	BeforeEach(func() {
		cfg := config.SimulationConfig{
			CollisionDetection: true,
			ParticleCount:      map[particle.Type]int{particle.Photon: 10},
		}
		var err error
		e, err = engine.New(cfg, engine.WithSeed(3))
		Expect(err).NotTo(HaveOccurred())
	})

	Context("when paused", func() {
		BeforeEach(func() {
			e.Pause()
		})

		It("does not move particles", func() {
			before := e.Particles()
			e.Step(500)
			Expect(e.Particles()).To(Equal(before))
			Expect(e.State()).To(Equal(engine.Paused))
		})

		It("still accepts wells and particles", func() {
			e.AddGravityWell(100, 100, -engine.DefaultWellStrength)
			e.AddParticlesAt(particle.Electron, 10, 100, 100)
			Expect(e.GravityWells()).To(HaveLen(1))
			Expect(e.CountByType()).To(HaveKeyWithValue(particle.Electron, 10))
		})
	})

	Context("when running", func() {
		It("keeps photons inside the field", func() {
			w, h := e.Bounds()
			for i := 1; i <= 100; i++ {
				e.Step(float64(i) * 16)
			}
			Expect(e.Particles()).To(HaveLen(10))
			for _, p := range e.Particles() {
				Expect(p.X).To(BeNumerically(">=", 0))
				Expect(p.X).To(BeNumerically("<=", w))
				Expect(p.Y).To(BeNumerically(">=", 0))
				Expect(p.Y).To(BeNumerically("<=", h))
			}
		})

		It("reports finite stats", func() {
			e.Step(16)
			s := e.Stats()
			Expect(s.ParticleCount).To(Equal(10))
			Expect(math.IsNaN(s.Entropy)).To(BeFalse())
			Expect(s.MaxVelocity).To(BeNumerically(">=", s.AvgVelocity))
		})
	})
})
