package sources

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/san-kum/gwecho/internal/field"
)

// echoBaseFrequency is the characteristic frequency of the first ringdown
// mode in Hz; each later echo shifts up from here.
const echoBaseFrequency = 244.0

// activeWindowSigma bounds how far from its center, in units of τ₀, an echo
// still contributes.
const activeWindowSigma = 3.0

// EchoConfig controls the post-merger echo train. Delays between echoes
// follow prime gaps scaled by the fundamental timescale τ₀.
type EchoConfig struct {
	MergerTime           float64 // seconds, 0 until detected
	FundamentalTimescale float64 // τ₀, seconds

	MaxPrimes       int // number of echoes
	PrimeStartIndex int // skip this many gaps
	MaxPrimeValue   int // sieve bound

	AmplitudeBase  float64 // A₀, relative to the merger signal
	AmplitudeDecay float64 // A_n = A₀ exp(-n/decay)
	FrequencyShift float64 // Hz added per echo
	GaussianWidth  float64 // spatial σ, meters

	AutoDetectMerger bool
	EnergyThreshold  float64 // merger detection level
}

// DefaultEchoConfig returns a millisecond-scale echo train.
func DefaultEchoConfig() EchoConfig {
	return EchoConfig{
		FundamentalTimescale: 0.001,
		MaxPrimes:            50,
		MaxPrimeValue:        1000,
		AmplitudeBase:        0.1,
		AmplitudeDecay:       10.0,
		FrequencyShift:       10.0,
		GaussianWidth:        5000.0,
		AutoDetectMerger:     true,
		EnergyThreshold:      1e9,
	}
}

func (c EchoConfig) Validate() error {
	if c.FundamentalTimescale <= 0 {
		return fmt.Errorf("fundamental timescale %g must be positive: %w", c.FundamentalTimescale, ErrInvalidConfig)
	}
	if c.MaxPrimes < 1 {
		return fmt.Errorf("max primes %d must be >= 1: %w", c.MaxPrimes, ErrInvalidConfig)
	}
	if c.PrimeStartIndex < 0 {
		return fmt.Errorf("prime start index %d must be >= 0: %w", c.PrimeStartIndex, ErrInvalidConfig)
	}
	if c.MaxPrimeValue < 2 {
		return fmt.Errorf("max prime value %d must be >= 2: %w", c.MaxPrimeValue, ErrInvalidConfig)
	}
	if c.AmplitudeBase < 0 {
		return fmt.Errorf("amplitude base %g must be non-negative: %w", c.AmplitudeBase, ErrInvalidConfig)
	}
	if c.AmplitudeDecay <= 0 {
		return fmt.Errorf("amplitude decay %g must be positive: %w", c.AmplitudeDecay, ErrInvalidConfig)
	}
	if c.FrequencyShift < 0 {
		return fmt.Errorf("frequency shift %g must be non-negative: %w", c.FrequencyShift, ErrInvalidConfig)
	}
	if c.GaussianWidth <= 0 {
		return fmt.Errorf("gaussian width %g must be positive: %w", c.GaussianWidth, ErrInvalidConfig)
	}
	if c.EnergyThreshold <= 0 {
		return fmt.Errorf("energy threshold %g must be positive: %w", c.EnergyThreshold, ErrInvalidConfig)
	}
	return nil
}

// EchoEvent is one scheduled pulse.
type EchoEvent struct {
	Time       float64 // arrival time, seconds
	Amplitude  float64
	Frequency  float64 // Hz
	PrimeGap   int
	PrimeIndex int
	EchoNumber int // 1-based
}

// EchoGenerator schedules discrete post-merger pulses whose spacings follow
// prime gaps, t_n = t_merger + τ₀·Σ gaps, and evaluates their combined
// source contribution at a point in space and time.
type EchoGenerator struct {
	cfg EchoConfig

	primes   []int
	gaps     []int
	schedule []EchoEvent

	mergerDetected  bool
	lastFieldEnergy float64
}

// NewEchoGenerator validates the configuration, sieves primes, and builds
// the schedule relative to the configured merger time.
func NewEchoGenerator(cfg EchoConfig) (*EchoGenerator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &EchoGenerator{cfg: cfg}
	g.primes = GeneratePrimes(cfg.MaxPrimeValue)
	g.gaps = PrimeGaps(g.primes)
	g.schedule = g.buildSchedule()
	return g, nil
}

func (g *EchoGenerator) buildSchedule() []EchoEvent {
	if len(g.gaps) == 0 {
		return nil
	}

	n := g.cfg.MaxPrimes
	if n > len(g.gaps) {
		n = len(g.gaps)
	}

	schedule := make([]EchoEvent, 0, n)
	cumulative := 0.0
	for i := 0; i < n; i++ {
		gapIndex := g.cfg.PrimeStartIndex + i
		if gapIndex >= len(g.gaps) {
			break
		}
		gap := g.gaps[gapIndex]
		cumulative += float64(gap) * g.cfg.FundamentalTimescale

		num := i + 1
		schedule = append(schedule, EchoEvent{
			Time:       g.cfg.MergerTime + cumulative,
			Amplitude:  g.cfg.AmplitudeBase * math.Exp(-float64(num)/g.cfg.AmplitudeDecay),
			Frequency:  echoBaseFrequency + float64(num)*g.cfg.FrequencyShift,
			PrimeGap:   gap,
			PrimeIndex: gapIndex,
			EchoNumber: num,
		})
	}
	return schedule
}

// SetMergerTime anchors the schedule to t and marks the merger as detected.
func (g *EchoGenerator) SetMergerTime(t float64) {
	g.cfg.MergerTime = t
	g.mergerDetected = true
	g.schedule = g.buildSchedule()
}

// DetectMerger watches the field energy for an upward crossing of the
// configured threshold. The first crossing anchors the schedule and returns
// true; later calls are no-ops.
func (g *EchoGenerator) DetectMerger(fieldEnergy, currentTime float64) bool {
	if g.mergerDetected || !g.cfg.AutoDetectMerger {
		return false
	}
	if fieldEnergy > g.cfg.EnergyThreshold && g.lastFieldEnergy < g.cfg.EnergyThreshold {
		g.SetMergerTime(currentTime)
		return true
	}
	g.lastFieldEnergy = fieldEnergy
	return false
}

func (g *EchoGenerator) MergerDetected() bool  { return g.mergerDetected }
func (g *EchoGenerator) MergerTime() float64   { return g.cfg.MergerTime }
func (g *EchoGenerator) Config() EchoConfig    { return g.cfg }
func (g *EchoGenerator) Schedule() []EchoEvent { return g.schedule }
func (g *EchoGenerator) NumEchoes() int        { return len(g.schedule) }

// Prime returns the nth prime (0-indexed), or -1 when out of range.
func (g *EchoGenerator) Prime(n int) int {
	if n < 0 || n >= len(g.primes) {
		return -1
	}
	return g.primes[n]
}

// PrimeGap returns the gap after the nth prime, or -1 when out of range.
func (g *EchoGenerator) PrimeGap(n int) int {
	if n < 0 || n >= len(g.gaps) {
		return -1
	}
	return g.gaps[n]
}

// PrimeStatistics summarizes the sieved primes and their gaps.
func (g *EchoGenerator) PrimeStatistics() GapStats {
	return computeGapStats(g.primes, g.gaps)
}

// SourceAt evaluates the combined contribution of all active echoes at
// position pos relative to the echo center. Each echo is a temporal Gaussian
// pulse of width 2τ₀ carrying phase 2πf(t-t_n), localized by a spatial
// Gaussian of the configured width. Zero before the merger is detected.
func (g *EchoGenerator) SourceAt(t float64, pos, center field.Vec3) complex128 {
	if !g.mergerDetected || len(g.schedule) == 0 {
		return 0
	}

	active := g.ActiveEchoes(t, activeWindowSigma)
	if len(active) == 0 {
		return 0
	}

	d := pos.Sub(center)
	distSq := d.Dot(d)
	sigmaSq := g.cfg.GaussianWidth * g.cfg.GaussianWidth
	spatial := math.Exp(-distSq / (2 * sigmaSq))

	pulseWidth := 2 * g.cfg.FundamentalTimescale
	var total complex128
	for _, echo := range active {
		dt := t - echo.Time
		temporal := math.Exp(-dt * dt / (2 * pulseWidth * pulseWidth))
		phase := 2 * math.Pi * echo.Frequency * dt
		amp := echo.Amplitude * temporal * spatial
		total += complex(amp*math.Cos(phase), amp*math.Sin(phase))
	}
	return total
}

// EchoAmplitude returns the instantaneous temporal envelope of one echo.
func (g *EchoGenerator) EchoAmplitude(echo EchoEvent, t float64) float64 {
	dt := t - echo.Time
	pulseWidth := 2 * g.cfg.FundamentalTimescale
	return echo.Amplitude * math.Exp(-dt*dt/(2*pulseWidth*pulseWidth))
}

// ActiveEchoes returns the scheduled echoes within widthSigma·τ₀ of t.
func (g *EchoGenerator) ActiveEchoes(t, widthSigma float64) []EchoEvent {
	window := g.cfg.FundamentalTimescale * widthSigma
	var active []EchoEvent
	for _, echo := range g.schedule {
		if math.Abs(t-echo.Time) < window {
			active = append(active, echo)
		}
	}
	return active
}

// EchoActive reports whether any echo is active at t.
func (g *EchoGenerator) EchoActive(t float64) bool {
	return len(g.ActiveEchoes(t, activeWindowSigma)) > 0
}

// NextEcho returns the first scheduled echo strictly after t. The second
// return is false when none remain.
func (g *EchoGenerator) NextEcho(t float64) (EchoEvent, bool) {
	for _, echo := range g.schedule {
		if echo.Time > t {
			return echo, true
		}
	}
	return EchoEvent{}, false
}

// ExportSchedule writes the schedule as CSV.
func (g *EchoGenerator) ExportSchedule(path string) error {
	if path == "" {
		return fmt.Errorf("empty path: %w", ErrExport)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrExport, path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintln(w, "echo_number,time,dt_from_previous,amplitude,frequency,prime_gap,prime_index")

	prev := g.cfg.MergerTime
	for _, echo := range g.schedule {
		fmt.Fprintf(w, "%d,%s,%s,%s,%s,%d,%d\n",
			echo.EchoNumber,
			fmtFloat(echo.Time), fmtFloat(echo.Time-prev),
			fmtFloat(echo.Amplitude), fmtFloat(echo.Frequency),
			echo.PrimeGap, echo.PrimeIndex)
		prev = echo.Time
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrExport, path, err)
	}
	return nil
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
