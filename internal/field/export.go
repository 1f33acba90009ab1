package field

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
)

// ExportCSV writes the per-point diagnostic table:
//
//	i,j,k,phi_real,phi_imag,alpha,grad_mag,potential
//
// This is an implementation convenience for offline inspection, not a
// stable contract; a failed write may leave a partial file behind.
func (f *SymmetryField) ExportCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrExport, path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "# SymmetryField export\n")
	fmt.Fprintf(w, "# nx=%d ny=%d nz=%d\n", f.cfg.NX, f.cfg.NY, f.cfg.NZ)
	fmt.Fprintf(w, "# time=%g\n", f.time)
	fmt.Fprintln(w, "i,j,k,phi_real,phi_imag,alpha,grad_mag,potential")

	for i := 0; i < f.cfg.NX; i++ {
		for j := 0; j < f.cfg.NY; j++ {
			for k := 0; k < f.cfg.NZ; k++ {
				idx := f.FlatIndex(i, j, k)
				phi := f.phi[idx]
				fmt.Fprintf(w, "%d,%d,%d,%s,%s,%s,%s,%s\n", i, j, k,
					fmtFloat(real(phi)), fmtFloat(imag(phi)),
					fmtFloat(f.alpha[idx]), fmtFloat(f.gradMag[idx]), fmtFloat(f.potential[idx]))
			}
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrExport, path, err)
	}
	return nil
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
