/*
Package validator decides whether a single transaction may be applied to a UTXO pool.

A transaction is valid against a pool when all of the following hold:

 1. Existence: every input references an output present in the pool.
 2. Authorization: every input carries a signature, by the owner of the referenced output,
    over the transaction's signing payload for that input index.
 3. No input is referenced twice within the transaction.
 4. Every output amount is zero or positive, and the output total fits in an int64.
 5. Conservation: the input total is at least the output total. Any surplus is an implicit
    fee that is not paid to anyone and disappears from the pool.

A transaction without inputs satisfies the rules as long as it creates no value. Absent fields
(a nil transaction, nil inputs or outputs, an output without an owner key) are rejected as
malformed like any other invalid transaction. Whether an empty signature is acceptable is up to
the SignatureVerifier. Validation never mutates the pool.
*/
package validator

import (
	"bytes"
	"math"
	"time"

	"github.com/bsv-blockchain/epochsettle/errors"
	"github.com/bsv-blockchain/epochsettle/model"
	"github.com/bsv-blockchain/epochsettle/settings"
	"github.com/bsv-blockchain/epochsettle/stores/utxo"
	"github.com/bsv-blockchain/epochsettle/ulogger"
)

// TxValidatorI is implemented by TxValidator; the epoch processor depends on this interface.
type TxValidatorI interface {
	// ValidateTransaction returns nil when tx is valid against pool, otherwise a rejection error
	// whose reason can be read with RejectionReason.
	ValidateTransaction(pool utxo.Reader, tx *model.Transaction, opts ...Option) error

	// IsValid is ValidateTransaction as a predicate.
	IsValid(pool utxo.Reader, tx *model.Transaction) bool

	// CheckStructure applies the checks that do not depend on pool state.
	CheckStructure(tx *model.Transaction) error

	// VerifyInputSignatures verifies the signature of every input whose output is in pool.
	VerifyInputSignatures(pool utxo.Reader, tx *model.Transaction) VerifiedInputs
}

// SignatureVerdict is the outcome of verifying one input against OwnerKey.
type SignatureVerdict struct {
	OwnerKey []byte
	Valid    bool
}

// VerifiedInputs holds a verdict per input position; nil entries were not verified.
type VerifiedInputs []*SignatureVerdict

type TxValidator struct {
	logger   ulogger.Logger
	settings *settings.Settings
	verifier SignatureVerifier
	options  *TxValidatorOptions
}

// NewTxValidator creates a validator using the verifier registered under tSettings.Validator.Verifier,
// unless one is supplied with WithSignatureVerifier.
func NewTxValidator(logger ulogger.Logger, tSettings *settings.Settings, opts ...TxValidatorOption) (*TxValidator, error) {
	initPrometheusMetrics()

	options := NewTxValidatorOptions(opts...)

	verifier := options.verifier
	if verifier == nil {
		createVerifier, ok := SignatureVerifierFactory[tSettings.Validator.Verifier]
		if !ok {
			return nil, errors.NewConfigurationError("no signature verifier registered for %q", tSettings.Validator.Verifier)
		}

		verifier = createVerifier(logger)
	}

	return &TxValidator{
		logger:   logger,
		settings: tSettings,
		verifier: verifier,
		options:  options,
	}, nil
}

func (tv *TxValidator) ValidateTransaction(pool utxo.Reader, tx *model.Transaction, opts ...Option) error {
	if tv == nil {
		return errors.NewTxInvalidError("tx validator is nil")
	}

	initPrometheusMetrics()

	start := time.Now()

	err := tv.validateTransaction(pool, tx, ProcessOptions(opts...))

	prometheusTransactionValidate.Observe(float64(time.Since(start).Microseconds()) / 1_000_000)

	if err != nil {
		prometheusInvalidTransactions.WithLabelValues(RejectionReason(err)).Inc()
	}

	return err
}

func (tv *TxValidator) IsValid(pool utxo.Reader, tx *model.Transaction) bool {
	return tv.ValidateTransaction(pool, tx) == nil
}

func (tv *TxValidator) validateTransaction(pool utxo.Reader, tx *model.Transaction, options *Options) error {
	if err := tv.CheckStructure(tx); err != nil {
		return err
	}

	inputs := tx.Inputs()

	// 1) every input must resolve before any owner key can be used
	spent, err := tv.checkExistence(pool, inputs)
	if err != nil {
		return err
	}

	// 2) every input must be signed by the owner of the output it spends
	if err = tv.checkSignatures(tx, inputs, spent, options); err != nil {
		return err
	}

	// 5) inputs must cover outputs, the rest is an untracked fee
	return tv.checkConservation(tx, spent)
}

// CheckStructure applies the checks that do not depend on pool state: malformed fields, duplicate
// inputs and output amounts. Its verdict for a transaction never changes.
func (tv *TxValidator) CheckStructure(tx *model.Transaction) error {
	if tx == nil {
		return reject(errors.ERR_TX_INVALID, ReasonMalformed, "transaction is nil")
	}

	// 3) no two inputs may spend the same outpoint
	if err := tv.checkInputs(tx); err != nil {
		return err
	}

	// 4) outputs must be non-negative and their total representable
	return tv.checkOutputs(tx)
}

func (tv *TxValidator) checkInputs(tx *model.Transaction) error {
	// fixed size 36 byte key: 32 bytes tx hash + 4 bytes output index
	seenInputs := make(map[[model.UTXOKeySize]byte]struct{}, tx.InputCount())

	for index, input := range tx.Inputs() {
		if input == nil {
			return reject(errors.ERR_TX_INVALID, ReasonMalformed, "transaction %s input %d is nil", tx, index)
		}

		key := input.UTXOKey().Bytes()

		if _, exists := seenInputs[key]; exists {
			return reject(errors.ERR_TX_INVALID_DOUBLE_SPEND, ReasonDuplicateInput, "transaction %s input %d spends %s more than once", tx, index, input.UTXOKey())
		}

		seenInputs[key] = struct{}{}
	}

	return nil
}

func (tv *TxValidator) checkOutputs(tx *model.Transaction) error {
	var total int64

	for index, output := range tx.Outputs() {
		if output == nil {
			return reject(errors.ERR_TX_INVALID, ReasonMalformed, "transaction %s output %d is nil", tx, index)
		}

		if len(output.OwnerKey) == 0 {
			return reject(errors.ERR_TX_INVALID, ReasonMalformed, "transaction %s output %d has no owner key", tx, index)
		}

		if output.Satoshis < 0 {
			return reject(errors.ERR_TX_INVALID, ReasonNegativeOutput, "transaction %s output %d satoshis %d is negative", tx, index, output.Satoshis)
		}

		if total > math.MaxInt64-output.Satoshis {
			return reject(errors.ERR_TX_INVALID, ReasonOutputOverflow, "transaction %s output total overflows at output %d", tx, index)
		}

		total += output.Satoshis
	}

	return nil
}

func (tv *TxValidator) checkExistence(pool utxo.Reader, inputs []*model.Input) ([]*model.Output, error) {
	spent := make([]*model.Output, len(inputs))

	for index, input := range inputs {
		output, err := pool.Get(input.UTXOKey())
		if err != nil {
			return nil, reject(errors.ERR_TX_INVALID, ReasonUnknownUTXO, "input %d spends unknown utxo %s", index, input.UTXOKey(), err)
		}

		spent[index] = output
	}

	return spent, nil
}

func (tv *TxValidator) checkSignatures(tx *model.Transaction, inputs []*model.Input, spent []*model.Output, options *Options) error {
	for index, input := range inputs {
		if verdict := cachedVerdict(options.verifiedInputs, index, spent[index].OwnerKey); verdict != nil {
			prometheusSignatureCacheHits.Inc()

			if !verdict.Valid {
				return reject(errors.ERR_TX_INVALID_SIGNATURE, ReasonInvalidSignature, "transaction %s input %d signature is invalid", tx, index)
			}

			continue
		}

		valid, err := tv.verifyInput(tx, index, input, spent[index])
		if err != nil {
			return reject(errors.ERR_TX_INVALID, ReasonMalformed, "transaction %s input %d signing payload", tx, index, err)
		}

		if !valid {
			return reject(errors.ERR_TX_INVALID_SIGNATURE, ReasonInvalidSignature, "transaction %s input %d signature is invalid", tx, index)
		}
	}

	return nil
}

func (tv *TxValidator) verifyInput(tx *model.Transaction, index int, input *model.Input, output *model.Output) (bool, error) {
	payload, err := tx.SigningPayload(index)
	if err != nil {
		return false, err
	}

	prometheusSignatureVerifications.Inc()

	return tv.verifier.Verify(output.OwnerKey, payload, input.Signature), nil
}

func cachedVerdict(verified VerifiedInputs, index int, ownerKey []byte) *SignatureVerdict {
	if index >= len(verified) || verified[index] == nil {
		return nil
	}

	if !bytes.Equal(verified[index].OwnerKey, ownerKey) {
		return nil
	}

	return verified[index]
}

func (tv *TxValidator) checkConservation(tx *model.Transaction, spent []*model.Output) error {
	var inputTotal int64

	for index, output := range spent {
		if output.Satoshis < 0 {
			return reject(errors.ERR_TX_INVALID, ReasonMalformed, "transaction %s input %d spends a negative amount", tx, index)
		}

		if inputTotal > math.MaxInt64-output.Satoshis {
			return reject(errors.ERR_TX_INVALID, ReasonInputOverflow, "transaction %s input total overflows at input %d", tx, index)
		}

		inputTotal += output.Satoshis
	}

	// checkOutputs has already ruled out negative amounts and overflow
	var outputTotal int64
	for _, output := range tx.Outputs() {
		outputTotal += output.Satoshis
	}

	if inputTotal < outputTotal {
		return reject(errors.ERR_TX_INVALID, ReasonInsufficientInputs, "transaction %s input satoshis is less than output satoshis: %d < %d", tx, inputTotal, outputTotal)
	}

	return nil
}

// VerifyInputSignatures verifies, against pool, the signature of every input whose referenced output
// is present. Structurally invalid transactions return nil. The result is meant to be passed to
// ValidateTransaction with WithVerifiedInputs.
func (tv *TxValidator) VerifyInputSignatures(pool utxo.Reader, tx *model.Transaction) VerifiedInputs {
	initPrometheusMetrics()

	if tv.CheckStructure(tx) != nil {
		return nil
	}

	inputs := tx.Inputs()
	verified := make(VerifiedInputs, len(inputs))

	for index, input := range inputs {
		output, err := pool.Get(input.UTXOKey())
		if err != nil {
			continue
		}

		valid, err := tv.verifyInput(tx, index, input, output)
		if err != nil {
			continue
		}

		verified[index] = &SignatureVerdict{
			OwnerKey: output.OwnerKey,
			Valid:    valid,
		}
	}

	return verified
}
