package validator

import (
	"github.com/bsv-blockchain/epochsettle/errors"
	"github.com/bsv-blockchain/epochsettle/settings"
	"github.com/bsv-blockchain/epochsettle/ulogger"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	bec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

func init() {
	SignatureVerifierFactory[settings.VerifierECDSA] = func(logger ulogger.Logger) SignatureVerifier {
		return NewECDSAVerifier(logger)
	}
}

// ECDSAVerifier verifies DER encoded secp256k1 signatures over the double sha256 of the message,
// against compressed or uncompressed public keys.
type ECDSAVerifier struct {
	logger ulogger.Logger
}

func NewECDSAVerifier(logger ulogger.Logger) *ECDSAVerifier {
	return &ECDSAVerifier{
		logger: logger,
	}
}

func (v *ECDSAVerifier) Verify(publicKey, message, signature []byte) bool {
	if len(publicKey) == 0 || len(signature) == 0 {
		return false
	}

	pubKey, err := bec.ParsePubKey(publicKey)
	if err != nil {
		v.logger.Debugf("[ECDSAVerifier] invalid public key %x: %v", publicKey, err)
		return false
	}

	sig, err := bec.ParseDERSignature(signature)
	if err != nil {
		v.logger.Debugf("[ECDSAVerifier] invalid signature %x: %v", signature, err)
		return false
	}

	return sig.Verify(chainhash.DoubleHashB(message), pubKey)
}

// Sign produces the signature ECDSAVerifier accepts for message.
func Sign(privateKey *bec.PrivateKey, message []byte) ([]byte, error) {
	if privateKey == nil {
		return nil, errors.NewInvalidArgumentError("private key is nil")
	}

	sig, err := privateKey.Sign(chainhash.DoubleHashB(message))
	if err != nil {
		return nil, errors.NewProcessingError("could not sign message", err)
	}

	return sig.Serialize(), nil
}
