package messages

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowfork/go-substrate-rpc-client/v4/types"
)

func TestMessagePayloadRoundTrip(t *testing.T) {
	sender := AccountID{1, 2, 3}
	original := MessagePayload{
		SpecVersion:        4242,
		Weight:             1_000_000_000,
		Origin:             SourceAccountOrigin(sender),
		DispatchFeePayment: PayDispatchFeeAtSourceChain,
		Call:               types.Bytes{0x04, 0x00, 0xff},
	}

	encoded, err := original.Encoded()
	require.NoError(t, err)

	var decoded MessagePayload
	err = types.DecodeFromBytes(encoded, &decoded)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestCallOriginRoundTrip(t *testing.T) {
	var signature [64]byte
	signature[0] = 0xaa
	for _, origin := range []CallOrigin{
		{Kind: CallOriginSourceRoot},
		SourceAccountOrigin(AccountID{7}),
		{
			Kind:            CallOriginTargetAccount,
			SourceAccount:   AccountID{8},
			TargetPublic:    [32]byte{9},
			TargetSignature: signature,
		},
	} {
		encoded, err := types.EncodeToBytes(origin)
		require.NoError(t, err)

		var decoded CallOrigin
		err = types.DecodeFromBytes(encoded, &decoded)
		require.NoError(t, err)
		assert.Equal(t, origin, decoded)
	}
}

func TestInboundLaneDataRoundTrip(t *testing.T) {
	original := InboundLaneData{
		Relayers: []UnrewardedRelayer{
			{BeginNonce: 1, EndNonce: 4, Relayer: AccountID{1}},
			{BeginNonce: 5, EndNonce: 5, Relayer: AccountID{2}},
		},
		LastConfirmedNonce: 0,
	}

	encoded, err := types.EncodeToBytes(original)
	require.NoError(t, err)

	var decoded InboundLaneData
	err = types.DecodeFromBytes(encoded, &decoded)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestLastDeliveredNonce(t *testing.T) {
	assert.Equal(t, MessageNonce(0), InboundLaneData{}.LastDeliveredNonce())
	assert.Equal(t, MessageNonce(10), InboundLaneData{LastConfirmedNonce: 10}.LastDeliveredNonce())
	assert.Equal(t, MessageNonce(15), InboundLaneData{
		Relayers:           []UnrewardedRelayer{{BeginNonce: 11, EndNonce: 15}},
		LastConfirmedNonce: 10,
	}.LastDeliveredNonce())
}

func TestPendingMessages(t *testing.T) {
	assert.Equal(t, MessageNonce(0), NewOutboundLaneData().PendingMessages())
	assert.Equal(t, MessageNonce(3), OutboundLaneData{
		LatestReceivedNonce:  7,
		LatestGeneratedNonce: 10,
	}.PendingMessages())
}

func TestInboundLaneDataSizeHint(t *testing.T) {
	// one relayer entry of (32-byte id + two nonces), the confirmed nonce
	// and one dispatch result byte
	assert.Equal(t, uint32(32+16+8+1), InboundLaneDataSizeHint(32, 1, 1))

	// saturates instead of overflowing
	max := ^uint32(0)
	assert.Equal(t, max, InboundLaneDataSizeHint(max, max, max))
}

func TestLaneIDHex(t *testing.T) {
	lane, err := NewLaneIDFromHex("0x00000001")
	require.NoError(t, err)
	assert.Equal(t, LaneID{0, 0, 0, 1}, lane)
	assert.Equal(t, "0x00000001", lane.Hex())

	_, err = NewLaneIDFromHex("0x01")
	assert.Error(t, err)
}

func TestMessageDataRoundTrip(t *testing.T) {
	original := MessageData{
		Payload: types.Bytes{1, 2, 3},
		Fee:     types.NewU128(*big.NewInt(1_000_000)),
	}

	encoded, err := types.EncodeToBytes(original)
	require.NoError(t, err)

	var decoded MessageData
	err = types.DecodeFromBytes(encoded, &decoded)
	require.NoError(t, err)
	assert.Equal(t, original.Payload, decoded.Payload)
	assert.True(t, original.Fee.Int.Cmp(decoded.Fee.Int) == 0)
}
