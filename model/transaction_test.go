package model

import (
	"bytes"
	"testing"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	prevHash1 = chainhash.HashH([]byte("prev-1"))
	prevHash2 = chainhash.HashH([]byte("prev-2"))
	ownerA    = bytes.Repeat([]byte{0x02}, 33)
	ownerB    = bytes.Repeat([]byte{0x03}, 33)
)

func testTransaction() *Transaction {
	return NewTransaction(
		[]*Input{
			NewInput(prevHash1, 0, []byte{0x30, 0x01}),
			NewInput(prevHash2, 3, []byte{0x30, 0x02}),
		},
		[]*Output{
			NewOutput(1000, ownerA),
			NewOutput(0, ownerB),
		},
	)
}

func TestTransactionHashIsStable(t *testing.T) {
	tx1 := testTransaction()
	tx2 := testTransaction()

	assert.Equal(t, tx1.Hash(), tx2.Hash())
	assert.Equal(t, chainhash.DoubleHashH(tx1.Bytes()), tx1.Hash())
	assert.Equal(t, tx1.Hash().String(), tx1.String())
}

func TestTransactionHashCoversSignatures(t *testing.T) {
	tx := testTransaction()

	inputs := tx.Inputs()
	inputs[0].Signature[1] ^= 0x01

	assert.NotEqual(t, tx.Hash(), NewTransaction(inputs, tx.Outputs()).Hash())
}

func TestTransactionIsImmutable(t *testing.T) {
	inputs := []*Input{NewInput(prevHash1, 0, []byte{0x01})}
	outputs := []*Output{NewOutput(10, ownerA)}

	tx := NewTransaction(inputs, outputs)
	hash := tx.Hash()

	// mutate everything the caller still holds
	inputs[0].Signature[0] = 0xff
	inputs[0].PrevIndex = 9
	outputs[0].Satoshis = 999
	outputs[0].OwnerKey[0] = 0xff

	// and everything handed out by the accessors
	tx.Inputs()[0].PrevIndex = 7
	tx.Input(0).Signature[0] = 0xee
	tx.Outputs()[0].Satoshis = 1
	tx.Output(0).OwnerKey[0] = 0xee

	assert.Equal(t, hash, tx.Hash())
	assert.Equal(t, hash, chainhash.DoubleHashH(tx.Bytes()))
	assert.Equal(t, uint32(0), tx.Input(0).PrevIndex)
	assert.Equal(t, []byte{0x01}, tx.Input(0).Signature)
	assert.Equal(t, int64(10), tx.Output(0).Satoshis)
	assert.Equal(t, ownerA, tx.Output(0).OwnerKey)
}

func TestTransactionAccessorsOutOfRange(t *testing.T) {
	tx := testTransaction()

	assert.Equal(t, 2, tx.InputCount())
	assert.Equal(t, 2, tx.OutputCount())
	assert.Nil(t, tx.Input(-1))
	assert.Nil(t, tx.Input(2))
	assert.Nil(t, tx.Output(2))
}

func TestSigningPayload(t *testing.T) {
	tx := testTransaction()

	t.Run("excludes signatures", func(t *testing.T) {
		inputs := tx.Inputs()
		inputs[0].Signature = []byte{0xde, 0xad, 0xbe, 0xef}
		inputs[1].Signature = nil

		resigned := NewTransaction(inputs, tx.Outputs())

		for i := 0; i < tx.InputCount(); i++ {
			expected, err := tx.SigningPayload(i)
			require.NoError(t, err)

			actual, err := resigned.SigningPayload(i)
			require.NoError(t, err)

			assert.Equal(t, expected, actual)
		}
	})

	t.Run("differs per input index", func(t *testing.T) {
		p0, err := tx.SigningPayload(0)
		require.NoError(t, err)

		p1, err := tx.SigningPayload(1)
		require.NoError(t, err)

		assert.NotEqual(t, p0, p1)
	})

	t.Run("binds outputs and references", func(t *testing.T) {
		p0, err := tx.SigningPayload(0)
		require.NoError(t, err)

		outputs := tx.Outputs()
		outputs[1].Satoshis = 1

		changedOutput, err := NewTransaction(tx.Inputs(), outputs).SigningPayload(0)
		require.NoError(t, err)
		assert.NotEqual(t, p0, changedOutput)

		inputs := tx.Inputs()
		inputs[1].PrevIndex = 4

		changedReference, err := NewTransaction(inputs, tx.Outputs()).SigningPayload(0)
		require.NoError(t, err)
		assert.NotEqual(t, p0, changedReference)
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := tx.SigningPayload(2)
		require.Error(t, err)

		_, err = tx.SigningPayload(-1)
		require.Error(t, err)
	})
}

func TestNewTransactionFromBytes(t *testing.T) {
	t.Run("parses canonical bytes", func(t *testing.T) {
		tx := NewTransaction(
			[]*Input{NewInput(prevHash1, 0, []byte{0x30, 0x01})},
			[]*Output{NewOutput(-5, ownerA), NewOutput(1<<40, nil)},
		)

		parsed, err := NewTransactionFromBytes(tx.Bytes())
		require.NoError(t, err)

		assert.Equal(t, tx.Hash(), parsed.Hash())
		assert.Equal(t, int64(-5), parsed.Output(0).Satoshis)
		assert.Equal(t, int64(1<<40), parsed.Output(1).Satoshis)
	})

	t.Run("rejects truncated bytes", func(t *testing.T) {
		b := testTransaction().Bytes()

		_, err := NewTransactionFromBytes(b[:len(b)-1])
		require.Error(t, err)
	})

	t.Run("rejects trailing bytes", func(t *testing.T) {
		b := append(testTransaction().Bytes(), 0x00)

		_, err := NewTransactionFromBytes(b)
		require.Error(t, err)
	})

	t.Run("rejects oversized count", func(t *testing.T) {
		_, err := NewTransactionFromBytes([]byte{0xfd, 0xff, 0xff})
		require.Error(t, err)
	})
}

func TestNilEntriesDoNotPanic(t *testing.T) {
	tx := NewTransaction([]*Input{nil}, []*Output{nil})

	assert.NotPanics(t, func() {
		_ = tx.Bytes()
		_, _ = tx.SigningPayload(0)
	})

	assert.Nil(t, tx.Input(0))
	assert.Nil(t, tx.Output(0))
}
