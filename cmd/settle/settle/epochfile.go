package settle

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/bsv-blockchain/epochsettle/errors"
	"github.com/bsv-blockchain/epochsettle/model"
	"github.com/bsv-blockchain/epochsettle/stores/utxo"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EpochFile is the on-disk form of an epoch: the pool it starts from and its ordered candidates.
// Hashes are in the usual reversed hex form, keys and signatures in plain hex.
type EpochFile struct {
	Pool       []UTXOJSON        `json:"pool"`
	Candidates []TransactionJSON `json:"candidates"`
}

type UTXOJSON struct {
	TxID     string `json:"txid"`
	Vout     uint32 `json:"vout"`
	Satoshis int64  `json:"satoshis"`
	Owner    string `json:"owner"`
}

// TransactionJSON is either a raw serialized transaction in Hex, or Inputs and Outputs.
type TransactionJSON struct {
	TxID    string       `json:"txid,omitempty"`
	Hex     string       `json:"hex,omitempty"`
	Inputs  []InputJSON  `json:"inputs,omitempty"`
	Outputs []OutputJSON `json:"outputs,omitempty"`
}

type InputJSON struct {
	TxID      string `json:"txid"`
	Vout      uint32 `json:"vout"`
	Signature string `json:"signature,omitempty"`
}

type OutputJSON struct {
	Satoshis int64  `json:"satoshis"`
	Owner    string `json:"owner"`
}

// ReadEpochFile reads and decodes the epoch file at path.
func ReadEpochFile(path string) (*EpochFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewProcessingError("could not read epoch file %s", path, err)
	}

	f := &EpochFile{}
	if err = json.Unmarshal(b, f); err != nil {
		return nil, errors.NewInvalidArgumentError("could not decode epoch file %s", path, err)
	}

	return f, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.NewProcessingError("could not encode output", err)
	}

	if _, err = w.Write(append(b, '\n')); err != nil {
		return errors.NewProcessingError("could not write output", err)
	}

	return nil
}

// LoadPool adds every pool entry of the file to store.
func (f *EpochFile) LoadPool(store utxo.Store) error {
	for i, entry := range f.Pool {
		txHash, err := chainhash.NewHashFromStr(entry.TxID)
		if err != nil {
			return errors.NewInvalidArgumentError("pool entry %d: invalid txid %q", i, entry.TxID, err)
		}

		owner, err := decodeHex(entry.Owner)
		if err != nil {
			return errors.NewInvalidArgumentError("pool entry %d: invalid owner", i, err)
		}

		if err = store.Add(model.NewUTXOKey(*txHash, entry.Vout), model.NewOutput(entry.Satoshis, owner)); err != nil {
			return errors.NewInvalidArgumentError("pool entry %d", i, err)
		}
	}

	return nil
}

// Transactions decodes the candidates in file order.
func (f *EpochFile) Transactions() ([]*model.Transaction, error) {
	txs := make([]*model.Transaction, len(f.Candidates))

	for i, candidate := range f.Candidates {
		tx, err := candidate.Transaction()
		if err != nil {
			return nil, errors.NewInvalidArgumentError("candidate %d", i, err)
		}

		txs[i] = tx
	}

	return txs, nil
}

func (t TransactionJSON) Transaction() (*model.Transaction, error) {
	if t.Hex != "" {
		b, err := hex.DecodeString(t.Hex)
		if err != nil {
			return nil, errors.NewInvalidArgumentError("invalid hex", err)
		}

		return model.NewTransactionFromBytes(b)
	}

	inputs := make([]*model.Input, len(t.Inputs))

	for i, in := range t.Inputs {
		txHash, err := chainhash.NewHashFromStr(in.TxID)
		if err != nil {
			return nil, errors.NewInvalidArgumentError("input %d: invalid txid %q", i, in.TxID, err)
		}

		signature, err := decodeHex(in.Signature)
		if err != nil {
			return nil, errors.NewInvalidArgumentError("input %d: invalid signature", i, err)
		}

		inputs[i] = model.NewInput(*txHash, in.Vout, signature)
	}

	outputs := make([]*model.Output, len(t.Outputs))

	for i, out := range t.Outputs {
		owner, err := decodeHex(out.Owner)
		if err != nil {
			return nil, errors.NewInvalidArgumentError("output %d: invalid owner", i, err)
		}

		outputs[i] = model.NewOutput(out.Satoshis, owner)
	}

	return model.NewTransaction(inputs, outputs), nil
}

// NewTransactionJSON encodes tx in the inputs and outputs form.
func NewTransactionJSON(tx *model.Transaction) TransactionJSON {
	t := TransactionJSON{
		TxID:    tx.String(),
		Inputs:  make([]InputJSON, 0, tx.InputCount()),
		Outputs: make([]OutputJSON, 0, tx.OutputCount()),
	}

	for _, in := range tx.Inputs() {
		if in == nil {
			continue
		}

		t.Inputs = append(t.Inputs, InputJSON{TxID: in.PrevTxHash.String(), Vout: in.PrevIndex, Signature: hex.EncodeToString(in.Signature)})
	}

	for _, out := range tx.Outputs() {
		if out == nil {
			continue
		}

		t.Outputs = append(t.Outputs, OutputJSON{Satoshis: out.Satoshis, Owner: hex.EncodeToString(out.OwnerKey)})
	}

	return t
}

// PoolJSON lists every entry of r in a stable order.
func PoolJSON(r utxo.Reader) []UTXOJSON {
	keys := utxo.SortedKeys(r)
	entries := make([]UTXOJSON, 0, len(keys))

	for _, key := range keys {
		output, err := r.Get(key)
		if err != nil {
			continue
		}

		entries = append(entries, UTXOJSON{
			TxID:     key.TxHash.String(),
			Vout:     key.Index,
			Satoshis: output.Satoshis,
			Owner:    hex.EncodeToString(output.OwnerKey),
		})
	}

	return entries
}

func decodeHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}

	return hex.DecodeString(s)
}
