package validator

import (
	"github.com/bsv-blockchain/epochsettle/errors"
)

// RejectReason names the rule a transaction failed.
type RejectReason string

const (
	ReasonMalformed          RejectReason = "malformed"
	ReasonDuplicateInput     RejectReason = "duplicate_input"
	ReasonNegativeOutput     RejectReason = "negative_output"
	ReasonOutputOverflow     RejectReason = "output_overflow"
	ReasonUnknownUTXO        RejectReason = "unknown_utxo"
	ReasonInvalidSignature   RejectReason = "invalid_signature"
	ReasonInputOverflow      RejectReason = "input_overflow"
	ReasonInsufficientInputs RejectReason = "insufficient_inputs"
)

const reasonKey = "reason"

func reject(code errors.ERR, reason RejectReason, format string, params ...interface{}) error {
	err := errors.New(code, format, params...)
	err.SetData(reasonKey, string(reason))

	return err
}

// RejectionReason returns the rule err was rejected for, "" for nil, and "unknown" for errors that
// did not come from the validator.
func RejectionReason(err error) string {
	if err == nil {
		return ""
	}

	var tErr *errors.Error
	if errors.As(err, &tErr) {
		if reason, ok := tErr.GetData(reasonKey).(string); ok {
			return reason
		}
	}

	return "unknown"
}
