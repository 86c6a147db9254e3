package errors

import (
	"fmt"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrDataI is an interface for error data that can be set, retrieved, and encoded.
type ErrDataI interface {
	EncodeErrorData() []byte
	Error() string
	GetData(key string) interface{}
	SetData(key string, value interface{})
}

// ErrData is a generic error data structure that implements the ErrDataI interface.
type ErrData map[string]interface{}

// Error returns a string representation of the error data.
func (e *ErrData) Error() string {
	return fmt.Sprintf(" %v", *e)
}

// SetData sets a key-value pair in the error data.
func (e *ErrData) SetData(key string, value interface{}) {
	if e == nil {
		return
	}

	(*e)[key] = value
}

// GetData retrieves the value associated with a key in the error data.
func (e *ErrData) GetData(key string) interface{} {
	if e == nil {
		return nil
	}

	return (*e)[key]
}

// EncodeErrorData encodes the error data to a byte slice using JSON encoding.
func (e *ErrData) EncodeErrorData() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return []byte{}
	}

	return data
}

// UtxoErrData identifies the UTXO a pool operation failed on.
type UtxoErrData struct {
	TxHash chainhash.Hash `json:"txHash"`
	Index  uint32         `json:"index"`
}

func (e *UtxoErrData) Error() string {
	return fmt.Sprintf("utxo %s:%d", e.TxHash, e.Index)
}

func (e *UtxoErrData) SetData(_ string, _ interface{}) {}

func (e *UtxoErrData) GetData(key string) interface{} {
	switch key {
	case "txHash":
		return e.TxHash
	case "index":
		return e.Index
	default:
		return nil
	}
}

func (e *UtxoErrData) EncodeErrorData() []byte {
	data, err := json.Marshal(struct {
		TxHash string `json:"txHash"`
		Index  uint32 `json:"index"`
	}{e.TxHash.String(), e.Index})
	if err != nil {
		return []byte{}
	}

	return data
}

// NewUnknownUTXOError returns an ERR_UTXO_UNKNOWN error carrying the outpoint that was not found.
func NewUnknownUTXOError(txHash chainhash.Hash, index uint32) error {
	e := New(ERR_UTXO_UNKNOWN, "utxo %s:%d not found", txHash, index)
	e.data = &UtxoErrData{TxHash: txHash, Index: index}

	return e
}

// NewDuplicateUTXOError returns an ERR_UTXO_DUPLICATE error carrying the outpoint that already exists.
func NewDuplicateUTXOError(txHash chainhash.Hash, index uint32) error {
	e := New(ERR_UTXO_DUPLICATE, "utxo %s:%d already exists", txHash, index)
	e.data = &UtxoErrData{TxHash: txHash, Index: index}

	return e
}
