package calibration

import (
	"errors"
	"math"
)

// ErrSingular means the sample has too little variety for a
// least-squares fit (e.g. every delivery had the same unit count).
var ErrSingular = errors.New("singular design matrix")

// Sample is one completed appointment reduced to its regression inputs.
type Sample struct {
	Units              int
	Lines              int
	DeliveryNotesCount int
	ActualDurationMin  float64
}

// Fit solves the ordinary least squares system
//
//	minutes = TD + TA·units + TL·lines + TU·deliveryNotes
//
// via beta = (XᵀX)⁻¹ Xᵀy. Negative coefficients are clipped to zero
// and the result is rounded to two decimals. withIntercept=false drops
// the TD and TL columns for categories whose duration scales purely
// with units and notes.
func Fit(samples []Sample, withIntercept bool) (td, ta, tl, tu float64, err error) {
	n := len(samples)
	x := make([][]float64, n)
	y := make([]float64, n)

	for i, s := range samples {
		units := float64(s.Units)
		lines := float64(s.Lines)
		notes := float64(s.DeliveryNotesCount)
		if s.Lines == 0 {
			lines = 1
		}
		if s.DeliveryNotesCount == 0 {
			notes = 1
		}

		if withIntercept {
			x[i] = []float64{1, units, lines, notes}
		} else {
			x[i] = []float64{units, notes}
		}
		y[i] = s.ActualDurationMin
	}

	beta, err := solve(x, y)
	if err != nil {
		return 0, 0, 0, 0, err
	}

	if withIntercept {
		return clip(beta[0]), clip(beta[1]), clip(beta[2]), clip(beta[3]), nil
	}
	return 0, clip(beta[0]), 0, clip(beta[1]), nil
}

// MAE is the mean absolute error of a coefficient set over a sample.
func MAE(samples []Sample, td, ta, tl, tu float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		lines := float64(s.Lines)
		notes := float64(s.DeliveryNotesCount)
		if s.Lines == 0 {
			lines = 1
		}
		if s.DeliveryNotesCount == 0 {
			notes = 1
		}
		predicted := td + ta*float64(s.Units) + tl*lines + tu*notes
		sum += math.Abs(s.ActualDurationMin - predicted)
	}
	return round2(sum / float64(len(samples)))
}

// solve computes (XᵀX)⁻¹ Xᵀ y.
func solve(x [][]float64, y []float64) ([]float64, error) {
	xt := transpose(x)
	xtx := matMul(xt, x)
	inv, ok := invert(xtx)
	if !ok {
		return nil, ErrSingular
	}

	ycol := make([][]float64, len(y))
	for i, v := range y {
		ycol[i] = []float64{v}
	}
	xty := matMul(xt, ycol)
	betaCol := matMul(inv, xty)

	beta := make([]float64, len(betaCol))
	for i := range betaCol {
		beta[i] = betaCol[i][0]
	}
	return beta, nil
}

func matMul(a, b [][]float64) [][]float64 {
	rows, cols, inner := len(a), len(b[0]), len(b)
	c := make([][]float64, rows)
	for i := range c {
		c[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			for k := 0; k < inner; k++ {
				c[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return c
}

func transpose(a [][]float64) [][]float64 {
	rows, cols := len(a), len(a[0])
	t := make([][]float64, cols)
	for j := range t {
		t[j] = make([]float64, rows)
		for i := 0; i < rows; i++ {
			t[j][i] = a[i][j]
		}
	}
	return t
}

// invert runs Gauss-Jordan elimination with partial pivoting.
func invert(m [][]float64) ([][]float64, bool) {
	n := len(m)
	aug := make([][]float64, n)
	for i := range aug {
		aug[i] = make([]float64, 2*n)
		copy(aug[i], m[i])
		aug[i][n+i] = 1
	}

	for col := 0; col < n; col++ {
		maxRow := col
		for row := col + 1; row < n; row++ {
			if math.Abs(aug[row][col]) > math.Abs(aug[maxRow][col]) {
				maxRow = row
			}
		}
		aug[col], aug[maxRow] = aug[maxRow], aug[col]

		if math.Abs(aug[col][col]) < 1e-12 {
			return nil, false
		}

		pivot := aug[col][col]
		for j := 0; j < 2*n; j++ {
			aug[col][j] /= pivot
		}
		for row := 0; row < n; row++ {
			if row == col {
				continue
			}
			factor := aug[row][col]
			for j := 0; j < 2*n; j++ {
				aug[row][j] -= factor * aug[col][j]
			}
		}
	}

	out := make([][]float64, n)
	for i := range out {
		out[i] = aug[i][n:]
	}
	return out, true
}

func clip(v float64) float64 {
	if v < 0 {
		return 0
	}
	return round2(v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
