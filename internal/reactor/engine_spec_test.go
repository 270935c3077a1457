package reactor_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/reactorsim/internal/reactor"
)

var _ = Describe("Engine", func() {
	const (
		dt    = reactor.DefaultDt
		speed = reactor.DefaultSpeed
	)

	Describe("pausing", func() {
		It("leaves every physical field untouched", func() {
			eng := newEngine(reactor.NominalState())
			for i := 0; i < 100; i++ {
				_, err := eng.Step(dt, speed, false)
				Expect(err).NotTo(HaveOccurred())
			}
			before := eng.Snapshot()

			for i := 0; i < 50; i++ {
				snap, err := eng.Step(dt, speed, true)
				Expect(err).NotTo(HaveOccurred())
				Expect(physical(snap)).To(Equal(physical(before)))
			}
		})
	})

	Describe("phase bounds", func() {
		It("keeps vapor fraction and steam quality within [0,1] for the first 100s", func() {
			eng := newEngine(reactor.NominalState())
			for eng.Running() && eng.Snapshot().Time < 100 {
				snap, err := eng.Step(0.01, 1, false)
				if err != nil {
					Expect(errors.Is(err, reactor.ErrNotRunning)).To(BeTrue())
					break
				}
				Expect(snap.VaporFraction).To(BeNumerically(">=", 0))
				Expect(snap.VaporFraction).To(BeNumerically("<=", 1))
				Expect(snap.SteamQuality).To(BeNumerically(">=", 0))
				Expect(snap.SteamQuality).To(BeNumerically("<=", 1))
			}
		})
	})

	Describe("containment", func() {
		It("only loses integrity once breached and stops exactly at zero", func() {
			s := reactor.NominalState()
			s.VaporFraction = 1
			s.Controls.RodInsertion = 0
			eng := newEngine(s)

			prev := eng.Snapshot()
			for i := 0; i < 200000 && eng.Running(); i++ {
				snap, err := eng.Step(dt, speed, false)
				Expect(err).NotTo(HaveOccurred())

				Expect(snap.ContainmentIntegrity).To(BeNumerically("<=", 100))
				if prev.ExplosionOccurred {
					Expect(snap.ExplosionOccurred).To(BeTrue())
					Expect(snap.ContainmentIntegrity).To(BeNumerically("<=", prev.ContainmentIntegrity))
				} else if !snap.ExplosionOccurred {
					Expect(snap.ContainmentIntegrity).To(Equal(100.0))
				}
				Expect(snap.Running).To(Equal(snap.ContainmentIntegrity > 0))
				prev = snap
			}

			Expect(prev.Running).To(BeFalse())
			Expect(prev.Containment()).To(Equal(reactor.ContainmentCollapsed))

			_, err := eng.Step(dt, speed, false)
			Expect(errors.Is(err, reactor.ErrNotRunning)).To(BeTrue())

			final, ok := eng.Final()
			Expect(ok).To(BeTrue())
			Expect(final).To(Equal(prev))
		})
	})

	Describe("emergency cooling", func() {
		It("drains monotonically to exactly zero after 100s", func() {
			s := reactor.NominalState()
			s.Time = 100
			s.Design.VoidCoefficient = 0
			s.Controls.RodInsertion = 1
			eng := newEngine(s)

			prev := eng.Snapshot().CoolingEfficiency
			for i := 0; i < 10000 && eng.Snapshot().CoolingStatus != reactor.CoolingFailed; i++ {
				snap, err := eng.Step(dt, speed, false)
				Expect(err).NotTo(HaveOccurred())
				Expect(snap.CoolingEfficiency).To(BeNumerically("<=", prev))
				prev = snap.CoolingEfficiency
			}

			snap := eng.Snapshot()
			Expect(snap.CoolingStatus).To(Equal(reactor.CoolingFailed))
			Expect(snap.CoolingEfficiency).To(BeZero())
		})
	})

	Describe("determinism", func() {
		It("produces identical trajectories from identical inputs", func() {
			run := func() []reactor.Snapshot {
				eng := newEngine(reactor.NominalState())
				out := make([]reactor.Snapshot, 0, 3000)
				for i := 0; i < 3000; i++ {
					paused := i%7 == 3
					sp := 0.1 + 0.1*float64(i%5)
					if i == 1500 {
						Expect(eng.SetControlRodInsertion(0.2)).To(Succeed())
					}
					snap, err := eng.Step(dt, sp, paused)
					Expect(err).NotTo(HaveOccurred())
					out = append(out, snap)
				}
				return out
			}
			Expect(run()).To(Equal(run()))
		})
	})

	Describe("scenario A: nominal start", func() {
		It("grows power under positive void feedback", func() {
			eng := newEngine(reactor.NominalState())
			initial := eng.Snapshot().ThermalPower

			var snap reactor.Snapshot
			for i := 0; i < 1000; i++ {
				var err error
				snap, err = eng.Step(0.001, 0.1, false)
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(snap.Time).To(BeNumerically("~", 0.1, 1e-9))
			Expect(snap.ThermalPower).To(BeNumerically(">", initial))
			Expect(snap.Reactivity).To(BeNumerically(">", 0))
		})
	})

	Describe("scenario B: voided core, rods out", func() {
		It("drives reactivity positive and ends in an explosion", func() {
			s := reactor.NominalState()
			s.VaporFraction = 1
			s.Controls.RodInsertion = 0
			Expect(reactor.ComputeReactivity(s)).To(BeNumerically(">", 4))

			eng := newEngine(s)
			var breached []reactor.Event
			eng.Subscribe(func(ev reactor.Event) {
				if ev.Kind == reactor.EventContainmentBreached {
					breached = append(breached, ev)
				}
			})

			for i := 0; i < 50000 && !eng.Snapshot().ExplosionOccurred; i++ {
				_, err := eng.Step(dt, speed, false)
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(eng.Snapshot().ExplosionOccurred).To(BeTrue())
			Expect(breached).To(HaveLen(1))
		})
	})

	Describe("scenario C: half containment", func() {
		It("releases exactly half the radiation level", func() {
			s := reactor.NominalState()
			s.FissionProducts = 5e5
			s.ContainmentIntegrity = 50
			eng := newEngine(s)

			snap, err := eng.Step(dt, speed, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.RadiationLevel).To(BeNumerically(">", 0))
			Expect(snap.ReleaseRate).To(Equal(snap.RadiationLevel * 0.5))
		})
	})

	Describe("scenario D: emergency power", func() {
		It("fails on the first tick past 150s and never recovers", func() {
			s := reactor.NominalState()
			s.Time = 150.0
			Expect(s.Design.EmergencyPowerEnabled).To(BeTrue())
			eng := newEngine(s)

			snap, err := eng.Step(dt, speed, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.PowerStatus).To(Equal(reactor.PowerFailed))

			for i := 0; i < 100; i++ {
				Expect(eng.SetControlRodInsertion(float64(i%2))).To(Succeed())
				snap, err = eng.Step(dt, speed, i%3 == 0)
				Expect(err).NotTo(HaveOccurred())
				Expect(snap.PowerStatus).To(Equal(reactor.PowerFailed))
			}
		})
	})
})
