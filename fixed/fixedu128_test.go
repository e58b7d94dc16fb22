package fixed

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowfork/go-substrate-rpc-client/v4/types"
)

func TestIdentityRate(t *testing.T) {
	amount := big.NewInt(123_456_789)
	assert.Equal(t, amount, One().SaturatingMulInt(amount))
}

func TestRationalRate(t *testing.T) {
	rate := FromRational(3, 2)
	assert.Equal(t, big.NewInt(150), rate.SaturatingMulInt(big.NewInt(100)))

	// fractional part truncates
	assert.Equal(t, big.NewInt(1), rate.SaturatingMulInt(big.NewInt(1)))
}

func TestZeroRate(t *testing.T) {
	assert.Equal(t, big.NewInt(0), Zero().SaturatingMulInt(big.NewInt(1_000_000)))
	assert.True(t, Zero().IsZero())
	assert.False(t, One().IsZero())
}

func TestMonotonicInRate(t *testing.T) {
	amount := big.NewInt(1_000_000)
	previous := big.NewInt(-1)
	for _, rate := range []U128{Zero(), FromRational(1, 2), One(), FromRational(3, 2), FromUint(100), Max()} {
		result := rate.SaturatingMulInt(amount)
		assert.True(t, result.Cmp(previous) >= 0, "rate %s decreased the result", rate.String())
		previous = result
	}
}

func TestSaturatingMulIntClampsAtMax(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 100)
	result := Max().SaturatingMulInt(huge)
	assert.Equal(t, maxInner, result)

	// and never wraps into a negative value
	assert.True(t, result.Sign() > 0)
}

func TestSaturatingMulBalance(t *testing.T) {
	amount := types.NewU128(*big.NewInt(42))
	assert.Equal(t, big.NewInt(42), One().SaturatingMulBalance(amount).Int)

	// nil inner balance behaves as zero
	assert.Equal(t, big.NewInt(0), One().SaturatingMulBalance(types.U128{}).Int)
}

func TestParseAndString(t *testing.T) {
	for _, tc := range []struct {
		input    string
		rendered string
	}{
		{"0", "0"},
		{"1", "1"},
		{"1.25", "1.25"},
		{"0.5", "0.5"},
		{"100.000000000000000001", "100.000000000000000001"},
	} {
		value, err := Parse(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.rendered, value.String())
	}

	for _, bad := range []string{
		"not-a-number",
		"-1",
		"1.-5",
		"1.+5",
		"1.2e3",
	} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestScaleRoundTrip(t *testing.T) {
	original := FromRational(110, 100)

	encoded, err := types.EncodeToBytes(original)
	require.NoError(t, err)
	// FixedU128 is 16 bytes on the wire
	assert.Len(t, encoded, 16)

	var decoded U128
	err = types.DecodeFromBytes(encoded, &decoded)
	require.NoError(t, err)
	assert.True(t, original.Eq(decoded))
}
