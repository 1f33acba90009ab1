package sources

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gwecho/internal/field"
)

var _ = Describe("prime utilities", func() {
	It("sieves primes up to 30", func() {
		Expect(GeneratePrimes(30)).To(Equal([]int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}))
	})

	It("returns nothing below 2", func() {
		Expect(GeneratePrimes(1)).To(BeEmpty())
		Expect(GeneratePrimes(-5)).To(BeEmpty())
	})

	It("computes consecutive gaps", func() {
		gaps := PrimeGaps(GeneratePrimes(30))
		Expect(gaps).To(Equal([]int{1, 2, 2, 4, 2, 4, 2, 4, 6}))
	})

	It("has no gaps for fewer than two primes", func() {
		Expect(PrimeGaps([]int{2})).To(BeEmpty())
		Expect(PrimeGaps(nil)).To(BeEmpty())
	})
})

var _ = Describe("EchoConfig validation", func() {
	It("accepts the defaults", func() {
		Expect(DefaultEchoConfig().Validate()).To(Succeed())
	})

	DescribeTable("rejects bad values",
		func(mutate func(*EchoConfig)) {
			cfg := DefaultEchoConfig()
			mutate(&cfg)
			Expect(cfg.Validate()).To(MatchError(ErrInvalidConfig))
		},
		Entry("zero timescale", func(c *EchoConfig) { c.FundamentalTimescale = 0 }),
		Entry("negative timescale", func(c *EchoConfig) { c.FundamentalTimescale = -0.001 }),
		Entry("zero primes", func(c *EchoConfig) { c.MaxPrimes = 0 }),
		Entry("negative start index", func(c *EchoConfig) { c.PrimeStartIndex = -1 }),
		Entry("sieve bound below 2", func(c *EchoConfig) { c.MaxPrimeValue = 1 }),
		Entry("negative amplitude", func(c *EchoConfig) { c.AmplitudeBase = -0.1 }),
		Entry("zero decay", func(c *EchoConfig) { c.AmplitudeDecay = 0 }),
		Entry("negative frequency shift", func(c *EchoConfig) { c.FrequencyShift = -1 }),
		Entry("zero width", func(c *EchoConfig) { c.GaussianWidth = 0 }),
		Entry("zero threshold", func(c *EchoConfig) { c.EnergyThreshold = 0 }),
	)
})

var _ = Describe("EchoGenerator", func() {
	newGen := func(mutate func(*EchoConfig)) *EchoGenerator {
		cfg := DefaultEchoConfig()
		cfg.MaxPrimeValue = 30
		cfg.MaxPrimes = 5
		if mutate != nil {
			mutate(&cfg)
		}
		g, err := NewEchoGenerator(cfg)
		Expect(err).NotTo(HaveOccurred())
		return g
	}

	It("schedules echo times as cumulative prime-gap delays", func() {
		g := newGen(nil)
		schedule := g.Schedule()
		Expect(schedule).To(HaveLen(5))

		// Gaps 1, 2, 2, 4, 2 scaled by τ₀ = 1 ms, anchored at t = 0.
		wantTimes := []float64{0.001, 0.003, 0.005, 0.009, 0.011}
		for i, echo := range schedule {
			Expect(echo.Time).To(BeNumerically("~", wantTimes[i], 1e-12))
			Expect(echo.EchoNumber).To(Equal(i + 1))
			Expect(echo.PrimeIndex).To(Equal(i))
		}
	})

	It("decays amplitudes and shifts frequencies per echo", func() {
		g := newGen(nil)
		for _, echo := range g.Schedule() {
			n := float64(echo.EchoNumber)
			Expect(echo.Amplitude).To(BeNumerically("~", 0.1*math.Exp(-n/10.0), 1e-15))
			Expect(echo.Frequency).To(BeNumerically("~", 244.0+n*10.0, 1e-12))
		}
	})

	It("honors the start index", func() {
		g := newGen(func(c *EchoConfig) { c.PrimeStartIndex = 2 })
		schedule := g.Schedule()
		// Gaps from index 2: 2, 4, 2, 4, 6.
		Expect(schedule[0].PrimeGap).To(Equal(2))
		Expect(schedule[0].Time).To(BeNumerically("~", 0.002, 1e-12))
		Expect(schedule[1].Time).To(BeNumerically("~", 0.006, 1e-12))
	})

	It("truncates the schedule to the available gaps", func() {
		g := newGen(func(c *EchoConfig) { c.MaxPrimes = 100 })
		Expect(g.Schedule()).To(HaveLen(9))
	})

	It("re-anchors the schedule when the merger time is set", func() {
		g := newGen(nil)
		Expect(g.MergerDetected()).To(BeFalse())

		g.SetMergerTime(2.5)
		Expect(g.MergerDetected()).To(BeTrue())
		Expect(g.Schedule()[0].Time).To(BeNumerically("~", 2.501, 1e-12))
	})

	It("answers prime and gap lookups with range guards", func() {
		g := newGen(nil)
		Expect(g.Prime(0)).To(Equal(2))
		Expect(g.Prime(4)).To(Equal(11))
		Expect(g.Prime(-1)).To(Equal(-1))
		Expect(g.Prime(1000)).To(Equal(-1))
		Expect(g.PrimeGap(0)).To(Equal(1))
		Expect(g.PrimeGap(99)).To(Equal(-1))
	})

	It("summarizes prime statistics", func() {
		stats := newGen(nil).PrimeStatistics()
		Expect(stats.NumPrimes).To(Equal(10))
		Expect(stats.MaxPrime).To(Equal(29))
		Expect(stats.MinGap).To(Equal(1))
		Expect(stats.MaxGap).To(Equal(6))
		Expect(stats.MeanGap).To(BeNumerically("~", 27.0/9.0, 1e-12))
	})

	Describe("merger detection", func() {
		It("triggers once on an upward threshold crossing", func() {
			g := newGen(func(c *EchoConfig) { c.EnergyThreshold = 100 })

			Expect(g.DetectMerger(50, 0.1)).To(BeFalse())
			Expect(g.DetectMerger(150, 0.2)).To(BeTrue())
			Expect(g.MergerTime()).To(Equal(0.2))

			// Already detected, further calls are no-ops.
			Expect(g.DetectMerger(500, 0.3)).To(BeFalse())
			Expect(g.MergerTime()).To(Equal(0.2))
		})

		It("stays quiet while energy sits below the threshold", func() {
			g := newGen(func(c *EchoConfig) { c.EnergyThreshold = 100 })
			for i := 0; i < 10; i++ {
				Expect(g.DetectMerger(10*float64(i), float64(i))).To(BeFalse())
			}
		})

		It("can be disabled", func() {
			g := newGen(func(c *EchoConfig) { c.AutoDetectMerger = false })
			Expect(g.DetectMerger(1e12, 0.1)).To(BeFalse())
			Expect(g.MergerDetected()).To(BeFalse())
		})
	})

	Describe("source evaluation", func() {
		center := field.Vec3{}

		It("is silent before the merger", func() {
			g := newGen(nil)
			Expect(g.SourceAt(0.001, center, center)).To(Equal(complex(0, 0)))
		})

		It("peaks at an echo time at the source center", func() {
			// A single echo keeps neighbors out of the active window.
			g := newGen(func(c *EchoConfig) { c.MaxPrimes = 1 })
			g.SetMergerTime(0)
			first := g.Schedule()[0]

			s := g.SourceAt(first.Time, center, center)
			Expect(real(s)).To(BeNumerically("~", first.Amplitude, 1e-12))
			Expect(imag(s)).To(BeNumerically("~", 0, 1e-12))
		})

		It("decays away from the center", func() {
			g := newGen(nil)
			g.SetMergerTime(0)
			first := g.Schedule()[0]

			near := g.SourceAt(first.Time, center, center)
			far := g.SourceAt(first.Time, field.Vec3{X: 20000}, center)
			Expect(math.Abs(real(far))).To(BeNumerically("<", math.Abs(real(near))))
		})

		It("is silent far from any scheduled echo", func() {
			g := newGen(nil)
			g.SetMergerTime(0)
			Expect(g.SourceAt(5.0, center, center)).To(Equal(complex(0, 0)))
			Expect(g.EchoActive(5.0)).To(BeFalse())
		})

		It("finds overlapping active echoes", func() {
			g := newGen(nil)
			g.SetMergerTime(0)
			// Between the first two echoes (1 ms and 3 ms) both fall
			// inside the 3τ₀ window.
			active := g.ActiveEchoes(0.002, 3.0)
			Expect(active).To(HaveLen(2))
			Expect(g.EchoActive(0.002)).To(BeTrue())
		})
	})

	Describe("queries and export", func() {
		It("returns the next upcoming echo", func() {
			g := newGen(nil)
			g.SetMergerTime(0)

			next, ok := g.NextEcho(0.004)
			Expect(ok).To(BeTrue())
			Expect(next.EchoNumber).To(Equal(3))

			_, ok = g.NextEcho(1.0)
			Expect(ok).To(BeFalse())
		})

		It("exports the schedule as CSV", func() {
			g := newGen(nil)
			g.SetMergerTime(0)

			path := filepath.Join(GinkgoT().TempDir(), "echoes.csv")
			Expect(g.ExportSchedule(path)).To(Succeed())

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			Expect(lines[0]).To(Equal("echo_number,time,dt_from_previous,amplitude,frequency,prime_gap,prime_index"))
			Expect(lines).To(HaveLen(6))
		})

		It("rejects an empty export path", func() {
			Expect(newGen(nil).ExportSchedule("")).To(MatchError(ErrExport))
		})
	})
})
