package model

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/bsv-blockchain/epochsettle/errors"
	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	safeconversion "github.com/bsv-blockchain/go-safe-conversion"
)

// Transaction is an immutable set of inputs and outputs. The hash is computed once, from the
// canonical serialization including signatures, when the transaction is constructed.
type Transaction struct {
	inputs  []*Input
	outputs []*Output
	hash    chainhash.Hash
}

// NewTransaction deep copies inputs and outputs. Nil entries are kept as they are so the
// validator can reject them.
func NewTransaction(inputs []*Input, outputs []*Output) *Transaction {
	tx := &Transaction{
		inputs:  make([]*Input, len(inputs)),
		outputs: make([]*Output, len(outputs)),
	}

	for i, input := range inputs {
		tx.inputs[i] = input.Clone()
	}

	for i, output := range outputs {
		tx.outputs[i] = output.Clone()
	}

	tx.hash = chainhash.DoubleHashH(tx.Bytes())

	return tx
}

// NewTransactionFromBytes parses the canonical serialization produced by Bytes.
func NewTransactionFromBytes(b []byte) (*Transaction, error) {
	r := bytes.NewReader(b)

	inputCount, err := readCount(r)
	if err != nil {
		return nil, errors.NewProcessingError("could not read input count", err)
	}

	inputs := make([]*Input, 0, inputCount)

	for i := uint64(0); i < inputCount; i++ {
		input := &Input{}

		if _, err = io.ReadFull(r, input.PrevTxHash[:]); err != nil {
			return nil, errors.NewProcessingError("could not read input %d previous tx hash", i, err)
		}

		if err = binary.Read(r, binary.LittleEndian, &input.PrevIndex); err != nil {
			return nil, errors.NewProcessingError("could not read input %d previous index", i, err)
		}

		if input.Signature, err = readBytes(r); err != nil {
			return nil, errors.NewProcessingError("could not read input %d signature", i, err)
		}

		inputs = append(inputs, input)
	}

	outputCount, err := readCount(r)
	if err != nil {
		return nil, errors.NewProcessingError("could not read output count", err)
	}

	outputs := make([]*Output, 0, outputCount)

	for i := uint64(0); i < outputCount; i++ {
		output := &Output{}

		var satoshis uint64
		if err = binary.Read(r, binary.LittleEndian, &satoshis); err != nil {
			return nil, errors.NewProcessingError("could not read output %d satoshis", i, err)
		}

		output.Satoshis = int64(satoshis) // nolint:gosec

		if output.OwnerKey, err = readBytes(r); err != nil {
			return nil, errors.NewProcessingError("could not read output %d owner key", i, err)
		}

		outputs = append(outputs, output)
	}

	if r.Len() != 0 {
		return nil, errors.NewProcessingError("%d trailing bytes after transaction", r.Len())
	}

	return NewTransaction(inputs, outputs), nil
}

func (tx *Transaction) Hash() chainhash.Hash {
	return tx.hash
}

func (tx *Transaction) String() string {
	return tx.hash.String()
}

func (tx *Transaction) InputCount() int {
	return len(tx.inputs)
}

func (tx *Transaction) OutputCount() int {
	return len(tx.outputs)
}

// Input returns a copy of the input at position i, nil when i is out of range.
func (tx *Transaction) Input(i int) *Input {
	if i < 0 || i >= len(tx.inputs) {
		return nil
	}

	return tx.inputs[i].Clone()
}

// Output returns a copy of the output at position i, nil when i is out of range.
func (tx *Transaction) Output(i int) *Output {
	if i < 0 || i >= len(tx.outputs) {
		return nil
	}

	return tx.outputs[i].Clone()
}

func (tx *Transaction) Inputs() []*Input {
	inputs := make([]*Input, len(tx.inputs))
	for i, input := range tx.inputs {
		inputs[i] = input.Clone()
	}

	return inputs
}

func (tx *Transaction) Outputs() []*Output {
	outputs := make([]*Output, len(tx.outputs))
	for i, output := range tx.outputs {
		outputs[i] = output.Clone()
	}

	return outputs
}

// Bytes returns the canonical serialization:
//
//	varint(#inputs) { prevTxHash[32] prevIndex[4 LE] varint(len) signature }
//	varint(#outputs) { satoshis[8 LE] varint(len) ownerKey }
//
// Nil inputs and outputs are written as their zero value.
func (tx *Transaction) Bytes() []byte {
	var buf bytes.Buffer

	buf.Write(bt.VarInt(uint64(len(tx.inputs))).Bytes())

	for _, input := range tx.inputs {
		writeOutpoint(&buf, input)

		if input == nil {
			buf.Write(bt.VarInt(0).Bytes())
			continue
		}

		writeBytes(&buf, input.Signature)
	}

	writeOutputs(&buf, tx.outputs)

	return buf.Bytes()
}

// SigningPayload returns the message the owner of the output spent by input index signs:
//
//	index[4 LE] varint(#inputs) { prevTxHash[32] prevIndex[4 LE] } varint(#outputs) { satoshis[8 LE] varint(len) ownerKey }
//
// Every signature is excluded, so changing one input's signature cannot affect the payload of another.
func (tx *Transaction) SigningPayload(index int) ([]byte, error) {
	if index < 0 || index >= len(tx.inputs) {
		return nil, errors.NewInvalidArgumentError("input index %d out of range, transaction has %d inputs", index, len(tx.inputs))
	}

	idx, err := safeconversion.IntToUint32(index)
	if err != nil {
		return nil, errors.NewInvalidArgumentError("input index %d does not fit in uint32", index, err)
	}

	var buf bytes.Buffer

	_ = binary.Write(&buf, binary.LittleEndian, idx)

	buf.Write(bt.VarInt(uint64(len(tx.inputs))).Bytes())

	for _, input := range tx.inputs {
		writeOutpoint(&buf, input)
	}

	writeOutputs(&buf, tx.outputs)

	return buf.Bytes(), nil
}

func writeOutpoint(buf *bytes.Buffer, input *Input) {
	if input == nil {
		input = &Input{}
	}

	buf.Write(input.PrevTxHash[:])
	_ = binary.Write(buf, binary.LittleEndian, input.PrevIndex)
}

func writeOutputs(buf *bytes.Buffer, outputs []*Output) {
	buf.Write(bt.VarInt(uint64(len(outputs))).Bytes())

	for _, output := range outputs {
		if output == nil {
			output = &Output{}
		}

		_ = binary.Write(buf, binary.LittleEndian, uint64(output.Satoshis)) // nolint:gosec

		writeBytes(buf, output.OwnerKey)
	}
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	buf.Write(bt.VarInt(uint64(len(b))).Bytes())
	buf.Write(b)
}

func readCount(r *bytes.Reader) (uint64, error) {
	var count bt.VarInt
	if _, err := count.ReadFrom(r); err != nil {
		return 0, err
	}

	// every entry takes at least one byte, anything larger is a corrupt length
	if uint64(count) > uint64(r.Len()) {
		return 0, errors.NewProcessingError("count %d exceeds remaining %d bytes", uint64(count), r.Len())
	}

	return uint64(count), nil
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	length, err := readCount(r)
	if err != nil {
		return nil, err
	}

	if length == 0 {
		return nil, nil
	}

	b := make([]byte, length)
	if _, err = io.ReadFull(r, b); err != nil {
		return nil, err
	}

	return b, nil
}
