// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

// Package fixed implements unsigned 128-bit fixed-point arithmetic with
// 18 decimal places, matching the FixedU128 type used by Substrate runtimes.
// All operations saturate instead of wrapping or failing.
package fixed

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/snowfork/go-substrate-rpc-client/v4/scale"
	"github.com/snowfork/go-substrate-rpc-client/v4/types"
)

// Accuracy of the fixed-point representation: one unit is 10^18 inner parts.
var div = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Inner values are capped at 2^128 - 1.
var maxInner = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// U128 is an unsigned fixed-point number with 18 decimal places.
// The zero value is usable and equals 0.
type U128 struct {
	inner *big.Int
}

func (f U128) innerOrZero() *big.Int {
	if f.inner == nil {
		return big.NewInt(0)
	}
	return f.inner
}

func clamp(v *big.Int) *big.Int {
	if v.Sign() < 0 {
		return big.NewInt(0)
	}
	if v.Cmp(maxInner) > 0 {
		return new(big.Int).Set(maxInner)
	}
	return v
}

// FromInner builds a U128 directly from its inner representation.
func FromInner(inner *big.Int) U128 {
	return U128{inner: clamp(new(big.Int).Set(inner))}
}

// FromRational builds the value n/d. A zero denominator saturates to the
// maximum value.
func FromRational(n, d uint64) U128 {
	if d == 0 {
		return U128{inner: new(big.Int).Set(maxInner)}
	}
	v := new(big.Int).SetUint64(n)
	v.Mul(v, div)
	v.Div(v, new(big.Int).SetUint64(d))
	return U128{inner: clamp(v)}
}

// FromUint builds the whole number v.
func FromUint(v uint64) U128 {
	return FromRational(v, 1)
}

// One is the identity value 1.0.
func One() U128 {
	return U128{inner: new(big.Int).Set(div)}
}

// Zero is the value 0.0.
func Zero() U128 {
	return U128{inner: big.NewInt(0)}
}

// Max is the largest representable value.
func Max() U128 {
	return U128{inner: new(big.Int).Set(maxInner)}
}

func (f U128) IsZero() bool {
	return f.innerOrZero().Sign() == 0
}

func (f U128) Inner() *big.Int {
	return new(big.Int).Set(f.innerOrZero())
}

func (f U128) Eq(other U128) bool {
	return f.innerOrZero().Cmp(other.innerOrZero()) == 0
}

func (f U128) Cmp(other U128) int {
	return f.innerOrZero().Cmp(other.innerOrZero())
}

// SaturatingMulInt multiplies an integer amount by the fixed-point value,
// truncating the fractional part. The result is clamped to [0, 2^128-1].
func (f U128) SaturatingMulInt(amount *big.Int) *big.Int {
	v := new(big.Int).Mul(f.innerOrZero(), amount)
	v.Div(v, div)
	return clamp(v)
}

// SaturatingMulBalance is SaturatingMulInt over a SCALE U128 balance.
func (f U128) SaturatingMulBalance(amount types.U128) types.U128 {
	if amount.Int == nil {
		return types.NewU128(*big.NewInt(0))
	}
	return types.U128{Int: f.SaturatingMulInt(amount.Int)}
}

// SaturatingMul multiplies two fixed-point values.
func (f U128) SaturatingMul(other U128) U128 {
	v := new(big.Int).Mul(f.innerOrZero(), other.innerOrZero())
	v.Div(v, div)
	return U128{inner: clamp(v)}
}

// String renders the value as a decimal number with trailing zeros trimmed.
func (f U128) String() string {
	inner := f.innerOrZero()
	whole := new(big.Int)
	frac := new(big.Int)
	whole.DivMod(inner, div, frac)
	if frac.Sign() == 0 {
		return whole.String()
	}
	fracStr := strings.TrimRight(fmt.Sprintf("%018s", frac.String()), "0")
	return fmt.Sprintf("%s.%s", whole.String(), fracStr)
}

// Parse reads a decimal number, e.g. "1.25", into a fixed-point value.
func Parse(s string) (U128, error) {
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	w, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return U128{}, fmt.Errorf("invalid fixed-point number %q", s)
	}
	v := new(big.Int).Mul(w, div)
	if frac != "" {
		// SetString would accept a sign here
		for _, c := range frac {
			if c < '0' || c > '9' {
				return U128{}, fmt.Errorf("invalid fixed-point number %q", s)
			}
		}
		if len(frac) > 18 {
			frac = frac[:18]
		}
		f, ok := new(big.Int).SetString(frac, 10)
		if !ok {
			return U128{}, fmt.Errorf("invalid fixed-point number %q", s)
		}
		scaling := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(18-len(frac))), nil)
		v.Add(v, f.Mul(f, scaling))
	}
	if v.Sign() < 0 || v.Cmp(maxInner) > 0 {
		return U128{}, fmt.Errorf("fixed-point number %q out of range", s)
	}
	return U128{inner: v}, nil
}

func (f U128) Encode(encoder scale.Encoder) error {
	return encoder.Encode(types.U128{Int: f.Inner()})
}

func (f *U128) Decode(decoder scale.Decoder) error {
	var v types.U128
	err := decoder.Decode(&v)
	if err != nil {
		return err
	}
	f.inner = clamp(v.Int)
	return nil
}
