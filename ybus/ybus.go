package ybus

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/gridflow/pfcase"
)

// Build constructs Ybus, Yf and Yt for the given bus and branch arrays.
//
// Steps:
//  1. Allocate the three dense complex matrices (O(n²) space for Ybus).
//  2. Stamp each branch's four admittance terms into Ybus and its row of
//     Yf / Yt (O(m)).
//  3. Stamp each bus shunt onto the Ybus diagonal (O(n)).
//
// Returns ErrZeroImpedance / ErrBusRange on malformed branches.
//
// Complexity: O(n² + m) time, O(n² + m·n) space (dense storage).
func Build(baseMVA float64, buses []pfcase.Bus, branches []pfcase.Branch) (ybus, yf, yt *mat.CDense, err error) {
	n := len(buses)
	m := len(branches)
	ybus = mat.NewCDense(n, n, nil)
	// mat.NewCDense rejects zero-sized matrices; branch views exist only
	// when there are branches.
	if m > 0 {
		yf = mat.NewCDense(m, n, nil)
		yt = mat.NewCDense(m, n, nil)
	}

	// 2) Branch stamps.
	for i, br := range branches {
		if br.From < 0 || br.From >= n || br.To < 0 || br.To >= n {
			return nil, nil, nil, ErrBusRange
		}
		yff, yft, ytf, ytt, aerr := admittance(br)
		if aerr != nil {
			return nil, nil, nil, aerr
		}
		f, t := br.From, br.To
		ybus.Set(f, f, ybus.At(f, f)+yff)
		ybus.Set(f, t, ybus.At(f, t)+yft)
		ybus.Set(t, f, ybus.At(t, f)+ytf)
		ybus.Set(t, t, ybus.At(t, t)+ytt)
		yf.Set(i, f, yff)
		yf.Set(i, t, yft)
		yt.Set(i, f, ytf)
		yt.Set(i, t, ytt)
	}

	// 3) Bus shunts.
	for i, b := range buses {
		sh := complex(b.Gs, b.Bs) / complex(baseMVA, 0)
		ybus.Set(i, i, ybus.At(i, i)+sh)
	}

	return ybus, yf, yt, nil
}

// UpdateBranch swaps one branch's contribution inside previously built
// matrices: the old stamp is subtracted and the new one added, leaving
// every other entry untouched. old and new must address the same bus pair
// and the same row i of Yf / Yt.
func UpdateBranch(ybus, yf, yt *mat.CDense, i int, old, updated pfcase.Branch) error {
	offF, offT, offTF, offTT, err := admittance(old)
	if err != nil {
		return err
	}
	onF, onT, onTF, onTT, err := admittance(updated)
	if err != nil {
		return err
	}
	f, t := updated.From, updated.To
	ybus.Set(f, f, ybus.At(f, f)-offF+onF)
	ybus.Set(f, t, ybus.At(f, t)-offT+onT)
	ybus.Set(t, f, ybus.At(t, f)-offTF+onTF)
	ybus.Set(t, t, ybus.At(t, t)-offTT+onTT)
	yf.Set(i, f, onF)
	yf.Set(i, t, onT)
	yt.Set(i, f, onTF)
	yt.Set(i, t, onTT)
	return nil
}

// admittance computes the four π-model terms of a branch.
func admittance(br pfcase.Branch) (yff, yft, ytf, ytt complex128, err error) {
	if br.R == 0 && br.X == 0 {
		return 0, 0, 0, 0, ErrZeroImpedance
	}
	ys := 1 / complex(br.R, br.X)
	bc := complex(0, br.B/2)

	tapMag := br.Tap
	if tapMag == 0 {
		tapMag = 1 // unset tap means nominal ratio
	}
	tap := cmplx.Rect(tapMag, br.Shift*math.Pi/180)

	ytt = ys + bc
	yff = (ys + bc) / (tap * cmplx.Conj(tap))
	yft = -ys / cmplx.Conj(tap)
	ytf = -ys / tap
	return yff, yft, ytf, ytt, nil
}
