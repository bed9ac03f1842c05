// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package misbehavior

import (
	secp "github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/tangle-network/lst/lst/reverts"
)

// Point is a compressed secp256k1 point as carried in round messages.
type Point [33]byte

// Scalar is a big endian secp256k1 scalar.
type Scalar [32]byte

func (p Point) jacobian() (*secp.JacobianPoint, error) {
	pk, err := secp.ParsePubKey(p[:])
	if err != nil {
		return nil, reverts.ErrMalformedRoundMessage
	}
	var j secp.JacobianPoint
	pk.AsJacobian(&j)
	return &j, nil
}

func (s Scalar) modN() (*secp.ModNScalar, error) {
	var k secp.ModNScalar
	b := [32]byte(s)
	if overflow := k.SetBytes(&b); overflow != 0 {
		return nil, reverts.ErrMalformedRoundMessage
	}
	return &k, nil
}

// NewPoint compresses p. The point at infinity has no encoding and yields the zero Point.
func NewPoint(p *secp.JacobianPoint) Point {
	var out Point
	if isInfinity(p) {
		return out
	}
	a := *p
	a.ToAffine()
	copy(out[:], secp.NewPublicKey(&a.X, &a.Y).SerializeCompressed())
	return out
}

// NewScalar encodes k.
func NewScalar(k *secp.ModNScalar) Scalar {
	return Scalar(k.Bytes())
}

func isInfinity(p *secp.JacobianPoint) bool {
	return (p.X.IsZero() && p.Y.IsZero()) || p.Z.IsZero()
}

func pointsEqual(a, b *secp.JacobianPoint) bool {
	if isInfinity(a) || isInfinity(b) {
		return isInfinity(a) && isInfinity(b)
	}
	x, y := *a, *b
	x.ToAffine()
	y.ToAffine()
	return x.X.Equals(&y.X) && x.Y.Equals(&y.Y)
}

// polynomial has point coefficients, lowest degree first.
type polynomial []secp.JacobianPoint

func parsePolynomial(coefs []Point) (polynomial, error) {
	f := make(polynomial, len(coefs))
	for i, c := range coefs {
		p, err := c.jacobian()
		if err != nil {
			return nil, err
		}
		f[i] = *p
	}
	return f, nil
}

// eval returns f(x) by Horner's rule.
func (f polynomial) eval(x uint32) *secp.JacobianPoint {
	var (
		xs       secp.ModNScalar
		acc, tmp secp.JacobianPoint
	)
	xs.SetInt(x)
	for i := len(f) - 1; i >= 0; i-- {
		secp.ScalarMultNonConst(&xs, &acc, &tmp)
		secp.AddNonConst(&tmp, &f[i], &acc)
	}
	return &acc
}

// add returns the coefficient-wise sum of f and g.
func (f polynomial) add(g polynomial) polynomial {
	if len(g) > len(f) {
		f, g = g, f
	}
	sum := make(polynomial, len(f))
	copy(sum, f)
	for i := range g {
		var r secp.JacobianPoint
		secp.AddNonConst(&sum[i], &g[i], &r)
		sum[i] = r
	}
	return sum
}

// baseMult returns G * k.
func baseMult(k *secp.ModNScalar) *secp.JacobianPoint {
	var r secp.JacobianPoint
	secp.ScalarBaseMultNonConst(k, &r)
	return &r
}
