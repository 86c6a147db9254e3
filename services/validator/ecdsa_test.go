package validator_test

import (
	"testing"

	"github.com/bsv-blockchain/epochsettle/services/validator"
	"github.com/bsv-blockchain/epochsettle/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestECDSAVerifier(t *testing.T) {
	v := validator.NewECDSAVerifier(ulogger.TestLogger{})
	message := []byte("epoch 42")

	signature, err := validator.Sign(alice.PrivateKey, message)
	require.NoError(t, err)

	assert.True(t, v.Verify(alice.PublicKey, message, signature))
	assert.True(t, v.Verify(alice.PrivateKey.PubKey().Uncompressed(), message, signature))

	assert.False(t, v.Verify(bob.PublicKey, message, signature))
	assert.False(t, v.Verify(alice.PublicKey, []byte("epoch 43"), signature))
	assert.False(t, v.Verify(alice.PublicKey, message, nil))
	assert.False(t, v.Verify(nil, message, signature))
	assert.False(t, v.Verify([]byte{0x02, 0x01}, message, signature))
	assert.False(t, v.Verify(alice.PublicKey, message, []byte{0x30, 0x02, 0x01}))

	_, err = validator.Sign(nil, message)
	require.Error(t, err)
}

func TestVerifierFunc(t *testing.T) {
	var called bool

	var v validator.SignatureVerifier = validator.VerifierFunc(func(_, _, _ []byte) bool {
		called = true
		return true
	})

	assert.True(t, v.Verify(nil, nil, nil))
	assert.True(t, called)
}

func TestECDSAVerifierRegistered(t *testing.T) {
	create, ok := validator.SignatureVerifierFactory["ecdsa"]
	require.True(t, ok)

	_, isECDSA := create(ulogger.TestLogger{}).(*validator.ECDSAVerifier)
	assert.True(t, isECDSA)
}
