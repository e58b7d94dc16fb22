package inbound

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowfork/go-substrate-rpc-client/v4/types"
	"github.com/snowfork/messagebridge/bridge"
	"github.com/snowfork/messagebridge/messages"
	"github.com/snowfork/messagebridge/params"
)

var (
	testLane     = messages.LaneID{0, 0, 0, 0}
	testHeader   = types.NewH256([]byte{0xaa, 0xbb, 0xcc, 0xdd, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31})
	testRelayer  = messages.AccountID{9}
	testFee      = types.NewU128(*big.NewInt(1000))
	testPalletID = "BridgeKusamaMessages"
)

func testVerifier(headerChain HeaderChain) *Verifier {
	b := bridge.NewKusamaPolkadotBridge(params.NewStore())
	return NewVerifier(b, headerChain, []messages.LaneID{testLane})
}

func finalizedReader(t *testing.T) *RawStateReader {
	t.Helper()
	reader := NewRawStateReader()
	reader.Finalize(testHeader)
	return reader
}

// messagesProof builds a proof carrying one message per nonce in
// [start, end], all on the given lane.
func messagesProof(t *testing.T, lane messages.LaneID, start, end messages.MessageNonce) *MessagesProof {
	t.Helper()

	builder := NewProofBuilder()
	for nonce := start; nonce <= end; nonce++ {
		key, err := OutboundMessagesKey(testPalletID, messages.MessageKey{LaneID: lane, Nonce: nonce})
		require.NoError(t, err)
		value, err := types.EncodeToBytes(messages.MessageData{
			Payload: types.Bytes{1, 2, 3},
			Fee:     testFee,
		})
		require.NoError(t, err)
		require.NoError(t, builder.Put(key, value))
	}
	proof, err := builder.Build()
	require.NoError(t, err)

	return &MessagesProof{
		BridgedHeaderHash: testHeader,
		StorageProof:      proof,
		Lane:              lane,
		NoncesStart:       start,
		NoncesEnd:         end,
	}
}

func TestVerifyMessagesProof(t *testing.T) {
	v := testVerifier(finalizedReader(t))

	proved, err := v.VerifyMessagesProof(messagesProof(t, testLane, 1, 3), 3)
	require.NoError(t, err)

	laneMessages, ok := proved[testLane]
	require.True(t, ok)
	require.Len(t, laneMessages.Messages, 3)
	assert.Nil(t, laneMessages.LaneState)

	for i, message := range laneMessages.Messages {
		assert.Equal(t, testLane, message.Key.LaneID)
		assert.Equal(t, messages.MessageNonce(i+1), message.Key.Nonce)
		assert.Equal(t, types.Bytes{1, 2, 3}, message.Data.Payload)
		assert.Equal(t, testFee.Int, message.Data.Fee.Int)
	}
}

func TestVerifyMessagesProofWithLaneState(t *testing.T) {
	v := testVerifier(finalizedReader(t))

	proof := messagesProof(t, testLane, 1, 1)

	builder := NewProofBuilder()
	laneStateKey, err := OutboundLanesKey(testPalletID, testLane)
	require.NoError(t, err)
	laneState, err := types.EncodeToBytes(messages.OutboundLaneData{
		OldestUnprunedNonce:  1,
		LatestReceivedNonce:  0,
		LatestGeneratedNonce: 1,
	})
	require.NoError(t, err)
	require.NoError(t, builder.Put(laneStateKey, laneState))
	extra, err := builder.Build()
	require.NoError(t, err)
	proof.StorageProof = append(proof.StorageProof, extra...)

	proved, err := v.VerifyMessagesProof(proof, 1)
	require.NoError(t, err)

	require.NotNil(t, proved[testLane].LaneState)
	assert.Equal(t, messages.MessageNonce(1), proved[testLane].LaneState.LatestGeneratedNonce)
}

func TestRejectsProofOnDisabledLane(t *testing.T) {
	v := testVerifier(finalizedReader(t))

	// the entire batch is rejected, not filtered
	disabled := messages.LaneID{0, 0, 0, 1}
	proved, err := v.VerifyMessagesProof(messagesProof(t, disabled, 1, 2), 2)
	assert.ErrorIs(t, err, ErrInboundLaneDisabled)
	assert.Nil(t, proved)
}

func TestRejectsMixedBatchWithDisabledLane(t *testing.T) {
	v := testVerifier(finalizedReader(t))

	// one disallowed lane poisons the whole batch, allowed lanes included
	batch := messages.ProvedMessages{
		testLane:                    {},
		messages.LaneID{0, 0, 0, 1}: {},
	}
	assert.ErrorIs(t, v.verifyInboundLanes(batch), ErrInboundLaneDisabled)
	assert.NoError(t, v.verifyInboundLanes(messages.ProvedMessages{testLane: {}}))
}

func TestRejectsCountMismatch(t *testing.T) {
	v := testVerifier(finalizedReader(t))

	_, err := v.VerifyMessagesProof(messagesProof(t, testLane, 1, 3), 2)
	assert.ErrorIs(t, err, ErrMessagesCountMismatch)

	// inverted range proves zero messages
	proof := messagesProof(t, testLane, 1, 3)
	proof.NoncesStart = 3
	proof.NoncesEnd = 1
	_, err = v.VerifyMessagesProof(proof, 3)
	assert.ErrorIs(t, err, ErrMessagesCountMismatch)
}

func TestRejectsOversizedBatch(t *testing.T) {
	v := testVerifier(finalizedReader(t))

	proof := &MessagesProof{
		BridgedHeaderHash: testHeader,
		Lane:              testLane,
		NoncesStart:       1,
		NoncesEnd:         9000,
	}
	_, err := v.VerifyMessagesProof(proof, 9000)
	assert.ErrorIs(t, err, ErrMessagesCountMismatch)
}

func TestRejectsMissingMessage(t *testing.T) {
	v := testVerifier(finalizedReader(t))

	proof := messagesProof(t, testLane, 1, 2)
	proof.NoncesEnd = 3

	_, err := v.VerifyMessagesProof(proof, 3)
	assert.ErrorIs(t, err, ErrMissingMessage)
}

func TestRejectsUnfinalizedHeader(t *testing.T) {
	v := testVerifier(NewRawStateReader())

	_, err := v.VerifyMessagesProof(messagesProof(t, testLane, 1, 1), 1)
	assert.ErrorIs(t, err, ErrHeaderChain)
}

func TestRejectsUndecodableMessage(t *testing.T) {
	v := testVerifier(finalizedReader(t))

	// garbage and truncated values alike must surface as a decode error,
	// even where the scale decoder would panic rather than fail
	badValues := map[string][]byte{
		"garbage":      {0xff},
		"truncatedFee": {0x04, 0x01},
		"empty":        {},
	}

	for name, value := range badValues {
		t.Run(name, func(t *testing.T) {
			builder := NewProofBuilder()
			key, err := OutboundMessagesKey(testPalletID, messages.MessageKey{LaneID: testLane, Nonce: 1})
			require.NoError(t, err)
			require.NoError(t, builder.Put(key, value))
			storageProof, err := builder.Build()
			require.NoError(t, err)

			proof := &MessagesProof{
				BridgedHeaderHash: testHeader,
				StorageProof:      storageProof,
				Lane:              testLane,
				NoncesStart:       1,
				NoncesEnd:         1,
			}
			_, err = v.VerifyMessagesProof(proof, 1)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestVerifyDeliveryProof(t *testing.T) {
	v := testVerifier(finalizedReader(t))

	builder := NewProofBuilder()
	key, err := InboundLanesKey(testPalletID, testLane)
	require.NoError(t, err)
	value, err := types.EncodeToBytes(messages.InboundLaneData{
		Relayers: []messages.UnrewardedRelayer{
			{BeginNonce: 1, EndNonce: 4, Relayer: testRelayer},
		},
		LastConfirmedNonce: 0,
	})
	require.NoError(t, err)
	require.NoError(t, builder.Put(key, value))
	storageProof, err := builder.Build()
	require.NoError(t, err)

	lane, laneData, err := v.VerifyDeliveryProof(&MessagesDeliveryProof{
		BridgedHeaderHash: testHeader,
		StorageProof:      storageProof,
		Lane:              testLane,
	})
	require.NoError(t, err)
	assert.Equal(t, testLane, lane)
	require.NotNil(t, laneData)
	assert.Equal(t, messages.MessageNonce(4), laneData.LastDeliveredNonce())
}

func TestRejectsDeliveryProofOnDisabledLane(t *testing.T) {
	v := testVerifier(finalizedReader(t))

	// a valid proof on a lane outside the allow-list is rejected before any
	// storage is read
	disabled := messages.LaneID{0, 0, 0, 1}
	builder := NewProofBuilder()
	key, err := InboundLanesKey(testPalletID, disabled)
	require.NoError(t, err)
	value, err := types.EncodeToBytes(messages.InboundLaneData{
		Relayers: []messages.UnrewardedRelayer{
			{BeginNonce: 1, EndNonce: 2, Relayer: testRelayer},
		},
	})
	require.NoError(t, err)
	require.NoError(t, builder.Put(key, value))
	storageProof, err := builder.Build()
	require.NoError(t, err)

	_, laneData, err := v.VerifyDeliveryProof(&MessagesDeliveryProof{
		BridgedHeaderHash: testHeader,
		StorageProof:      storageProof,
		Lane:              disabled,
	})
	assert.ErrorIs(t, err, ErrConfirmationLaneDisabled)
	assert.Nil(t, laneData)
}

func TestDeliveryProofWithoutLaneState(t *testing.T) {
	v := testVerifier(finalizedReader(t))

	_, _, err := v.VerifyDeliveryProof(&MessagesDeliveryProof{
		BridgedHeaderHash: testHeader,
		Lane:              testLane,
	})
	assert.ErrorIs(t, err, ErrMissingLaneState)
}

func TestProofJSONRoundTrip(t *testing.T) {
	proof := messagesProof(t, testLane, 1, 2)

	dump := proof.ToJSON()
	restored, err := dump.FromJSON()
	require.NoError(t, err)
	assert.Equal(t, proof.BridgedHeaderHash, restored.BridgedHeaderHash)
	assert.Equal(t, proof.Lane, restored.Lane)
	assert.Equal(t, proof.NoncesStart, restored.NoncesStart)
	assert.Equal(t, proof.NoncesEnd, restored.NoncesEnd)
	assert.Equal(t, proof.StorageProof, restored.StorageProof)
}
