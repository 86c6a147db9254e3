package validator

import (
	"github.com/bsv-blockchain/epochsettle/ulogger"
)

// SignatureVerifier checks that signature is a valid signature of message by the owner of publicKey.
// Implementations must be pure and safe for concurrent use.
type SignatureVerifier interface {
	Verify(publicKey, message, signature []byte) bool
}

// VerifierFunc adapts an ordinary function to a SignatureVerifier.
type VerifierFunc func(publicKey, message, signature []byte) bool

func (f VerifierFunc) Verify(publicKey, message, signature []byte) bool {
	return f(publicKey, message, signature)
}

// SignatureVerifierCreator creates a verifier registered under a validator_verifier name.
type SignatureVerifierCreator func(logger ulogger.Logger) SignatureVerifier

// SignatureVerifierFactory stores the registered verifier creators, keyed by validator_verifier name.
var SignatureVerifierFactory = make(map[string]SignatureVerifierCreator)
