// Package errors provides utilities for categorizing and handling errors in the settlement core.
package errors

// IsRejection reports whether err is an expected, business-rule rejection of a transaction,
// as opposed to a defect. Rejections never leave the single-transaction boundary.
func IsRejection(err error) bool {
	if err == nil {
		return false
	}

	var tErr *Error
	if As(err, &tErr) {
		switch tErr.Code() {
		case ERR_TX_INVALID,
			ERR_TX_INVALID_DOUBLE_SPEND,
			ERR_TX_INVALID_SIGNATURE:
			return true
		}
	}

	return false
}

// IsInvariantViolation reports whether err signals that the pool and the committer are out of
// sync. Callers must stop advancing the epoch when this returns true.
func IsInvariantViolation(err error) bool {
	if err == nil {
		return false
	}

	return Is(err, ErrInvariantViolation)
}

// GetErrorCategory returns a short label for err, used for metrics and logging.
func GetErrorCategory(err error) string {
	if err == nil {
		return "none"
	}

	var tErr *Error
	if !As(err, &tErr) {
		return "unknown"
	}

	switch tErr.Code() {
	case ERR_TX_INVALID, ERR_TX_INVALID_DOUBLE_SPEND, ERR_TX_INVALID_SIGNATURE:
		return "rejection"
	case ERR_UTXO_UNKNOWN, ERR_UTXO_DUPLICATE:
		return "utxo"
	case ERR_INVARIANT_VIOLATION:
		return "invariant"
	case ERR_CONFIGURATION:
		return "configuration"
	case ERR_INVALID_ARGUMENT:
		return "validation"
	default:
		return "other"
	}
}
