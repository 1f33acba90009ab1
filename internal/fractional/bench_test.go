package fractional

import "testing"

func benchSolver(b *testing.B, numPoints int) {
	s, err := NewSolver(DefaultConfig(), numPoints)
	if err != nil {
		b.Fatalf("NewSolver: %v", err)
	}
	field := make([]complex128, numPoints)
	d2 := make([]complex128, numPoints)
	alphas := make([]float64, numPoints)
	for i := range alphas {
		alphas[i] = 1.0 + 0.8*float64(i%16)/16.0
		d2[i] = complex(0.1, 0.05)
	}
	if err := s.PrecomputeKernels(20); err != nil {
		b.Fatalf("PrecomputeKernels: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.UpdateHistory(field, d2, alphas, 0.001); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUpdateHistory1k(b *testing.B)  { benchSolver(b, 1000) }
func BenchmarkUpdateHistory32k(b *testing.B) { benchSolver(b, 32768) }

func BenchmarkComputeDerivatives(b *testing.B) {
	s, err := NewSolver(DefaultConfig(), 32768)
	if err != nil {
		b.Fatalf("NewSolver: %v", err)
	}
	alphas := make([]float64, 32768)
	for i := range alphas {
		alphas[i] = 1.5
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.ComputeDerivatives(alphas); err != nil {
			b.Fatal(err)
		}
	}
}
