package test

import (
	"testing"

	"github.com/bsv-blockchain/epochsettle/model"
	"github.com/bsv-blockchain/epochsettle/services/validator"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	bec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/stretchr/testify/require"
)

// TxOption is a function that modifies the transaction creation options
type TxOption func(*TxOptions)

type input struct {
	prevTxHash chainhash.Hash
	prevIndex  uint32
	privKey    *bec.PrivateKey
	signature  []byte
}

// TxOptions holds all the configurable options for transaction creation
type TxOptions struct {
	fallbackPrivKey *bec.PrivateKey
	inputs          []input
	outputs         []*model.Output
}

// WithPrivateKey specifies the key used to sign inputs that have no key of their own.
func WithPrivateKey(privKey *bec.PrivateKey) TxOption {
	return func(opts *TxOptions) {
		opts.fallbackPrivKey = privKey
	}
}

// WithInput spends prevTxHash:prevIndex. You can add this option multiple times to add multiple inputs.
func WithInput(prevTxHash chainhash.Hash, prevIndex uint32, priv ...*bec.PrivateKey) TxOption {
	var p *bec.PrivateKey
	if len(priv) > 0 {
		p = priv[0]
	}

	return func(opts *TxOptions) {
		opts.inputs = append(opts.inputs, input{prevTxHash: prevTxHash, prevIndex: prevIndex, privKey: p})
	}
}

// WithParentOutput spends output vout of parent.
func WithParentOutput(parent *model.Transaction, vout uint32, priv ...*bec.PrivateKey) TxOption {
	return WithInput(parent.Hash(), vout, priv...)
}

// WithSignedInput spends prevTxHash:prevIndex with the given signature bytes instead of signing.
func WithSignedInput(prevTxHash chainhash.Hash, prevIndex uint32, signature []byte) TxOption {
	return func(opts *TxOptions) {
		opts.inputs = append(opts.inputs, input{prevTxHash: prevTxHash, prevIndex: prevIndex, signature: signature})
	}
}

// WithOutput adds an output. You can add this option multiple times to add multiple outputs.
func WithOutput(satoshis int64, ownerKey []byte) TxOption {
	return func(opts *TxOptions) {
		opts.outputs = append(opts.outputs, model.NewOutput(satoshis, ownerKey))
	}
}

// WithOutputs adds numOutputs identical outputs.
func WithOutputs(numOutputs int, satoshis int64, ownerKey []byte) TxOption {
	return func(opts *TxOptions) {
		for i := 0; i < numOutputs; i++ {
			opts.outputs = append(opts.outputs, model.NewOutput(satoshis, ownerKey))
		}
	}
}

// Create builds a transaction and signs every input that was not given an explicit signature.
func Create(t testing.TB, options ...TxOption) *model.Transaction {
	t.Helper()

	opts := &TxOptions{}
	for _, option := range options {
		option(opts)
	}

	inputs := make([]*model.Input, len(opts.inputs))
	for i, in := range opts.inputs {
		inputs[i] = model.NewInput(in.prevTxHash, in.prevIndex, in.signature)
	}

	// signatures are not part of the signing payload, so the unsigned transaction yields the same payloads
	unsigned := model.NewTransaction(inputs, opts.outputs)

	for i, in := range opts.inputs {
		if in.signature != nil {
			continue
		}

		privKey := in.privKey
		if privKey == nil {
			privKey = opts.fallbackPrivKey
		}

		require.NotNil(t, privKey, "no private key provided for input %d and no fallback private key set", i)

		payload, err := unsigned.SigningPayload(i)
		require.NoError(t, err)

		inputs[i].Signature, err = validator.Sign(privKey, payload)
		require.NoError(t, err)
	}

	return model.NewTransaction(inputs, opts.outputs)
}

// Genesis returns a transaction that exists only to provide outputs for a bootstrap pool. It is
// never validated; its single input spends nothing.
func Genesis(seed string, outputs ...*model.Output) *model.Transaction {
	return model.NewTransaction(
		[]*model.Input{model.NewInput(chainhash.HashH([]byte(seed)), 0, []byte{0x00})},
		outputs,
	)
}

// PoolEntries maps every output of tx to its UTXOKey, for seeding a pool with memory.FromMap.
func PoolEntries(txs ...*model.Transaction) map[model.UTXOKey]*model.Output {
	entries := make(map[model.UTXOKey]*model.Output)

	for _, tx := range txs {
		for i, output := range tx.Outputs() {
			entries[model.NewUTXOKey(tx.Hash(), uint32(i))] = output // nolint:gosec
		}
	}

	return entries
}
