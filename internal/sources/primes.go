package sources

// GeneratePrimes returns all primes up to and including maxValue, in
// ascending order, via the Sieve of Eratosthenes. Returns an empty slice
// for maxValue < 2.
func GeneratePrimes(maxValue int) []int {
	if maxValue < 2 {
		return nil
	}

	isComposite := make([]bool, maxValue+1)
	for i := 2; i*i <= maxValue; i++ {
		if isComposite[i] {
			continue
		}
		for j := i * i; j <= maxValue; j += i {
			isComposite[j] = true
		}
	}

	var primes []int
	for i := 2; i <= maxValue; i++ {
		if !isComposite[i] {
			primes = append(primes, i)
		}
	}
	return primes
}

// PrimeGaps returns the consecutive differences p[n+1]-p[n]. The result has
// length len(primes)-1, or zero for fewer than two primes.
func PrimeGaps(primes []int) []int {
	if len(primes) < 2 {
		return nil
	}
	gaps := make([]int, 0, len(primes)-1)
	for i := 1; i < len(primes); i++ {
		gaps = append(gaps, primes[i]-primes[i-1])
	}
	return gaps
}

// GapStats summarizes a prime-gap sequence.
type GapStats struct {
	NumPrimes int
	MaxPrime  int
	MeanGap   float64
	MaxGap    int
	MinGap    int
}

func computeGapStats(primes, gaps []int) GapStats {
	s := GapStats{NumPrimes: len(primes)}
	if len(primes) > 0 {
		s.MaxPrime = primes[len(primes)-1]
	}
	if len(gaps) == 0 {
		return s
	}

	sum := 0
	s.MaxGap, s.MinGap = gaps[0], gaps[0]
	for _, g := range gaps {
		sum += g
		if g > s.MaxGap {
			s.MaxGap = g
		}
		if g < s.MinGap {
			s.MinGap = g
		}
	}
	s.MeanGap = float64(sum) / float64(len(gaps))
	return s
}
