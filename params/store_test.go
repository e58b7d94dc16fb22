package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowfork/go-substrate-rpc-client/v4/types"
	"github.com/snowfork/messagebridge/fixed"
	"github.com/snowfork/messagebridge/messages"
)

func TestDefaults(t *testing.T) {
	store := NewStore()
	assert.True(t, store.ConversionRate().Eq(fixed.One()))
	assert.True(t, store.FeeMultiplier().Eq(fixed.One()))
	_, restricted := store.AllowedSender()
	assert.False(t, restricted)
}

func TestApplyIsIdempotent(t *testing.T) {
	store := NewStore()
	rate := fixed.FromRational(3, 2)

	store.Apply(NewConversionRate(rate))
	once := store.ConversionRate()

	store.Apply(NewConversionRate(rate))
	twice := store.ConversionRate()

	assert.True(t, once.Eq(twice))
	assert.True(t, twice.Eq(rate))
}

func TestApplyAllowedSender(t *testing.T) {
	store := NewStore()
	sender := messages.AccountID{2}

	store.Apply(NewAllowedSender(&sender))
	got, restricted := store.AllowedSender()
	require.True(t, restricted)
	assert.Equal(t, sender, got)

	store.Apply(NewAllowedSender(nil))
	_, restricted = store.AllowedSender()
	assert.False(t, restricted)
}

func TestZeroConversionRateIsAccepted(t *testing.T) {
	store := NewStore()
	store.Apply(NewConversionRate(fixed.Zero()))
	assert.True(t, store.ConversionRate().IsZero())
}

func TestParameterRoundTrip(t *testing.T) {
	sender := messages.AccountID{5}
	for _, parameter := range []Parameter{
		NewConversionRate(fixed.FromRational(7, 2)),
		NewFeeMultiplier(fixed.FromUint(3)),
		NewAllowedSender(&sender),
		NewAllowedSender(nil),
	} {
		encoded, err := types.EncodeToBytes(parameter)
		require.NoError(t, err)

		var decoded Parameter
		err = types.DecodeFromBytes(encoded, &decoded)
		require.NoError(t, err)

		assert.Equal(t, parameter.Tag, decoded.Tag)
		assert.True(t, parameter.Value.Eq(decoded.Value))
		if parameter.Sender == nil {
			assert.Nil(t, decoded.Sender)
		} else {
			require.NotNil(t, decoded.Sender)
			assert.Equal(t, *parameter.Sender, *decoded.Sender)
		}
	}
}
