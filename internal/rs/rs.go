// Package rs implements the Reed-Solomon encoder/decoder over GF(256)
// used by the FX.25 wrapper: three precomputed codecs for 16, 32 and 64
// check bytes, decode via Berlekamp-Massey, Chien search and Forney.
//
// Grounded on doismellburning/samoyed src/fx25_init.go (init_rs_char),
// src/fx25_encode.go (encode_rs_char) and src/fx25_extract.go
// (DECODE_RS), themselves derived from Phil Karn's public-domain RS
// codec. This port drops the erasure-locations parameter: FX.25 never
// supplies erasure positions, only raw byte errors.
package rs

import (
	"fmt"

	"github.com/n0call/samoyed-core/internal/galois"
)

// Primitive polynomial for GF(256): x^8+x^4+x^3+x^2+1.
const GenPoly = 0x11d

// Codec is one Reed-Solomon (N, N-NRoots) instance over GF(256).
type Codec struct {
	field   *galois.Field
	NRoots  int
	genpoly []byte // index form, degree NRoots
}

// NewCodec builds a codec with the given number of parity (check)
// bytes. nroots must be one of {16, 32, 64} for FX.25 compatibility,
// though any value < 255 will produce a working (if non-standard)
// codec.
func NewCodec(nroots int) (*Codec, error) {
	if nroots <= 0 || nroots >= 255 {
		return nil, fmt.Errorf("rs: nroots %d out of range", nroots)
	}
	f, err := galois.NewField(8, GenPoly, 1, 1)
	if err != nil {
		return nil, err
	}

	c := &Codec{field: f, NRoots: nroots}
	c.genpoly = make([]byte, nroots+1)
	c.genpoly[0] = 1

	fcr := int(f.FCR)
	prim := int(f.Prim)
	root := fcr * prim
	for i := 0; i < nroots; i, root = i+1, root+prim {
		c.genpoly[i+1] = 1
		for j := i; j > 0; j-- {
			if c.genpoly[j] != 0 {
				c.genpoly[j] = c.genpoly[j-1] ^ f.AlphaTo[f.Mod(int(f.IndexOf[c.genpoly[j]])+root)]
			} else {
				c.genpoly[j] = c.genpoly[j-1]
			}
		}
		c.genpoly[0] = f.AlphaTo[f.Mod(int(f.IndexOf[c.genpoly[0]])+root)]
	}
	for i := range c.genpoly {
		c.genpoly[i] = f.IndexOf[c.genpoly[i]]
	}
	return c, nil
}

// N is the full RS block size: 255 for an 8-bit symbol field.
func (c *Codec) N() int { return int(c.field.NN) }

// K is the maximum data payload for this codec: N - NRoots.
func (c *Codec) K() int { return c.N() - c.NRoots }

// Encode computes the NRoots parity bytes for data (len(data) <= K())
// and appends them, returning a full N()-byte codeword. data shorter
// than K() is implicitly left-padded with zero symbols (a "shortened"
// RS code, as FX.25 uses for all but its largest mode per tag).
func (c *Codec) Encode(data []byte) ([]byte, error) {
	if len(data) > c.K() {
		return nil, fmt.Errorf("rs: data length %d exceeds K=%d", len(data), c.K())
	}
	f := c.field
	nroots := c.NRoots
	parity := make([]byte, nroots)

	pad := c.K() - len(data)
	get := func(i int) byte {
		if i < pad {
			return 0
		}
		return data[i-pad]
	}

	for i := 0; i < c.K(); i++ {
		feedback := f.IndexOf[get(i)^parity[0]]
		if int(feedback) != int(f.NN) {
			for j := 1; j < nroots; j++ {
				parity[j] ^= f.AlphaTo[f.Mod(int(feedback)+int(c.genpoly[nroots-j]))]
			}
		}
		copy(parity, parity[1:])
		if int(feedback) != int(f.NN) {
			parity[nroots-1] = f.AlphaTo[f.Mod(int(feedback)+int(c.genpoly[0]))]
		} else {
			parity[nroots-1] = 0
		}
	}

	out := make([]byte, len(data)+nroots)
	copy(out, data)
	copy(out[len(data):], parity)
	return out, nil
}

// ErrUncorrectable is returned by Decode when the number of symbol
// errors exceeds NRoots/2 and the block cannot be repaired.
type ErrUncorrectable struct{ NRoots int }

func (e *ErrUncorrectable) Error() string {
	return fmt.Sprintf("rs: uncorrectable block (more than %d/2 symbol errors)", e.NRoots)
}

// Decode corrects a full N()-byte (or shortened, K-byte-padded)
// codeword in place and returns the number of symbols that were fixed.
// block must be exactly K+NRoots bytes, where K is the caller's data
// length (<= c.K()); shorter blocks are treated as shortened codewords
// implicitly zero-padded on the left, matching FX.25's tag-selected
// modes.
func (c *Codec) Decode(block []byte, k int) (fixed int, err error) {
	f := c.field
	nroots := c.NRoots
	nn := int(f.NN)
	pad := c.K() - k

	// Build the full NN-length codeword view with virtual left padding.
	full := make([]byte, nn)
	copy(full[pad:pad+k], block[:k])
	copy(full[c.K():], block[k:k+nroots])

	lambda := make([]byte, nroots+1)
	s := make([]byte, nroots)
	b := make([]byte, nroots+1)
	t := make([]byte, nroots+1)
	omega := make([]byte, nroots+1)
	root := make([]int, nroots)
	reg := make([]byte, nroots+1)
	loc := make([]int, nroots)

	a0 := byte(f.NN)

	for i := 0; i < nroots; i++ {
		s[i] = full[0]
	}
	for j := 1; j < nn; j++ {
		for i := 0; i < nroots; i++ {
			if s[i] == 0 {
				s[i] = full[j]
			} else {
				s[i] = full[j] ^ f.AlphaTo[f.Mod(int(f.IndexOf[s[i]])+(int(f.FCR)+i)*int(f.Prim))]
			}
		}
	}

	synError := byte(0)
	for i := 0; i < nroots; i++ {
		synError |= s[i]
		s[i] = f.IndexOf[s[i]]
	}
	if synError == 0 {
		return 0, nil
	}

	lambda[0] = 1

	copy(b, func() []byte {
		out := make([]byte, nroots+1)
		for i := range out {
			out[i] = f.IndexOf[lambda[i]]
		}
		return out
	}())

	elCount, count := 0, 0
	for r := 0; ; {
		r++
		if r > nroots {
			break
		}
		discr := byte(0)
		for i := 0; i < r; i++ {
			if lambda[i] != 0 && s[r-i-1] != a0 {
				discr ^= f.AlphaTo[f.Mod(int(f.IndexOf[lambda[i]])+int(s[r-i-1]))]
			}
		}
		discrIdx := f.IndexOf[discr]
		if discrIdx == a0 {
			copy(b[1:], b)
			b[0] = a0
		} else {
			t[0] = lambda[0]
			for i := 0; i < nroots; i++ {
				if b[i] != a0 {
					t[i+1] = lambda[i+1] ^ f.AlphaTo[f.Mod(int(discrIdx)+int(b[i]))]
				} else {
					t[i+1] = lambda[i+1]
				}
			}
			if 2*elCount <= r-1 {
				elCount = r - elCount
				for i := 0; i <= nroots; i++ {
					if lambda[i] == 0 {
						b[i] = a0
					} else {
						b[i] = byte(f.Mod(int(f.IndexOf[lambda[i]]) - int(discrIdx) + nn))
					}
				}
			} else {
				copy(b[1:], b)
				b[0] = a0
			}
			copy(lambda, t)
		}
	}

	degLambda := 0
	for i := 0; i < nroots+1; i++ {
		lambda[i] = f.IndexOf[lambda[i]]
		if lambda[i] != a0 {
			degLambda = i
		}
	}

	copy(reg[1:], lambda[1:nroots+1])
	iprim := f.IPrim
	k2 := iprim - 1
	count = 0
	for i := 1; i <= nn; i, k2 = i+1, f.Mod(k2+iprim) {
		q := byte(1)
		for j := degLambda; j > 0; j-- {
			if reg[j] != a0 {
				reg[j] = byte(f.Mod(int(reg[j]) + j))
				q ^= f.AlphaTo[reg[j]]
			}
		}
		if q != 0 {
			continue
		}
		root[count] = i
		loc[count] = k2
		count++
		if count == degLambda {
			break
		}
	}
	if degLambda != count {
		return 0, &ErrUncorrectable{NRoots: nroots}
	}

	degOmega := 0
	for i := 0; i < nroots; i++ {
		tmp := byte(0)
		jmax := degLambda
		if i < jmax {
			jmax = i
		}
		for j := jmax; j >= 0; j-- {
			if s[i-j] != a0 && lambda[j] != a0 {
				tmp ^= f.AlphaTo[f.Mod(int(s[i-j])+int(lambda[j]))]
			}
		}
		if tmp != 0 {
			degOmega = i
		}
		omega[i] = f.IndexOf[tmp]
	}
	omega[nroots] = a0

	for j := count - 1; j >= 0; j-- {
		num1 := byte(0)
		for i := degOmega; i >= 0; i-- {
			if omega[i] != a0 {
				num1 ^= f.AlphaTo[f.Mod(int(omega[i])+i*root[j])]
			}
		}
		num2 := f.AlphaTo[f.Mod(root[j]*(int(f.FCR)-1)+nn)]
		den := byte(0)
		limit := degLambda
		if nroots-1 < limit {
			limit = nroots - 1
		}
		limit &^= 1
		for i := limit; i >= 0; i -= 2 {
			if lambda[i+1] != a0 {
				den ^= f.AlphaTo[f.Mod(int(lambda[i+1])+i*root[j])]
			}
		}
		if den == 0 {
			return 0, &ErrUncorrectable{NRoots: nroots}
		}
		if num1 != 0 {
			full[loc[j]] ^= f.AlphaTo[f.Mod(int(f.IndexOf[num1])+int(f.IndexOf[num2])+nn-int(f.IndexOf[den]))]
		}
	}

	copy(block[:k], full[pad:pad+k])
	copy(block[k:k+nroots], full[c.K():])
	return count, nil
}
