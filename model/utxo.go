package model

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// UTXOKeySize is the length of the canonical key encoding: the 32 byte tx hash followed by the little endian index.
const UTXOKeySize = chainhash.HashSize + 4

// UTXOKey identifies an output by the hash of the transaction that created it and its position in that
// transaction's output list. It is comparable and can be used as a map key.
type UTXOKey struct {
	TxHash chainhash.Hash
	Index  uint32
}

func NewUTXOKey(txHash chainhash.Hash, index uint32) UTXOKey {
	return UTXOKey{TxHash: txHash, Index: index}
}

func (k UTXOKey) Bytes() [UTXOKeySize]byte {
	var b [UTXOKeySize]byte

	copy(b[:chainhash.HashSize], k.TxHash[:])
	binary.LittleEndian.PutUint32(b[chainhash.HashSize:], k.Index)

	return b
}

func (k UTXOKey) String() string {
	return fmt.Sprintf("%s:%d", k.TxHash.String(), k.Index)
}

// Output is a spendable amount locked to an owner public key.
type Output struct {
	Satoshis int64
	OwnerKey []byte
}

func NewOutput(satoshis int64, ownerKey []byte) *Output {
	return &Output{
		Satoshis: satoshis,
		OwnerKey: bytes.Clone(ownerKey),
	}
}

// Clone returns a deep copy of the output, nil for a nil output.
func (o *Output) Clone() *Output {
	if o == nil {
		return nil
	}

	return NewOutput(o.Satoshis, o.OwnerKey)
}

func (o *Output) Equal(other *Output) bool {
	if o == nil || other == nil {
		return o == other
	}

	return o.Satoshis == other.Satoshis && bytes.Equal(o.OwnerKey, other.OwnerKey)
}

func (o *Output) String() string {
	if o == nil {
		return "<nil>"
	}

	return fmt.Sprintf("%d sat to %x", o.Satoshis, o.OwnerKey)
}

// Input spends the output identified by PrevTxHash and PrevIndex.
type Input struct {
	PrevTxHash chainhash.Hash
	PrevIndex  uint32
	Signature  []byte
}

func NewInput(prevTxHash chainhash.Hash, prevIndex uint32, signature []byte) *Input {
	return &Input{
		PrevTxHash: prevTxHash,
		PrevIndex:  prevIndex,
		Signature:  bytes.Clone(signature),
	}
}

func (i *Input) UTXOKey() UTXOKey {
	return NewUTXOKey(i.PrevTxHash, i.PrevIndex)
}

func (i *Input) Clone() *Input {
	if i == nil {
		return nil
	}

	return NewInput(i.PrevTxHash, i.PrevIndex, i.Signature)
}
