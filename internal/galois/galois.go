// Package galois implements GF(256) arithmetic for the primitive
// polynomial x^8+x^4+x^3+x^2+1 (0x11d) used by the FX.25 Reed-Solomon
// codec. Each Field builds its own log/antilog tables when it is
// created.
//
// Grounded on doismellburning/samoyed src/fx25_init.go init_rs_char,
// itself derived from Phil Karn's RS codec.
package galois

import "fmt"

// Field holds the alpha_to (antilog) and index_of (log) tables for one
// GF(2^m) instance, plus the primitive element and first consecutive
// root used to build RS generator polynomials over it.
type Field struct {
	SymSize uint // bits per symbol, always 8 here
	NN      uint // 2^SymSize - 1, the field's non-zero element count
	AlphaTo []byte
	IndexOf []byte
	GenPoly uint
	FCR     byte
	Prim    byte
	IPrim   int // index form of the multiplicative inverse of Prim
}

// NewField builds the log/antilog tables for a primitive polynomial.
// genpoly must be primitive over GF(2^symsize); returns an error
// otherwise (mirrors init_rs_char returning nil on bad input).
func NewField(symsize uint, genpoly uint, fcr, prim byte) (*Field, error) {
	if symsize == 0 || symsize > 8 {
		return nil, fmt.Errorf("galois: symsize %d out of range", symsize)
	}
	if uint(fcr) >= (1 << symsize) {
		return nil, fmt.Errorf("galois: fcr out of range")
	}
	if prim == 0 || uint(prim) >= (1<<symsize) {
		return nil, fmt.Errorf("galois: prim out of range")
	}

	f := &Field{
		SymSize: symsize,
		NN:      uint(1<<symsize) - 1,
		GenPoly: genpoly,
		FCR:     fcr,
		Prim:    prim,
	}
	f.AlphaTo = make([]byte, f.NN+1)
	f.IndexOf = make([]byte, f.NN+1)

	f.IndexOf[0] = byte(f.NN)
	f.AlphaTo[f.NN] = 0

	sr := 1
	for i := 0; i < int(f.NN); i++ {
		f.IndexOf[sr] = byte(i)
		f.AlphaTo[i] = byte(sr)
		sr <<= 1
		if sr&(1<<symsize) != 0 {
			sr ^= int(genpoly)
		}
		sr &= int(f.NN)
	}
	if sr != 1 {
		return nil, fmt.Errorf("galois: %#x is not a primitive polynomial for GF(2^%d)", genpoly, symsize)
	}

	iprim := 1
	for (iprim % int(prim)) != 0 {
		iprim += int(f.NN)
	}
	f.IPrim = iprim / int(prim)

	return f, nil
}

// Mod reduces x into [0, NN) the way the RS codec's MODNN macro does:
// a single wrap-around subtraction loop rather than a division, since
// x is always within 2*NN of the valid range in the hot encode/decode
// loops.
func (f *Field) Mod(x int) int {
	nn := int(f.NN)
	for x >= nn {
		x -= nn
		x = (x >> f.SymSize) + (x & nn)
	}
	return x
}
