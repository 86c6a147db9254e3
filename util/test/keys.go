package test

import (
	bec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

// KeyPair is a private key with its compressed public key, the form owner keys take in outputs.
type KeyPair struct {
	PrivateKey *bec.PrivateKey
	PublicKey  []byte
}

// NewKeyPair derives a deterministic key pair from seed, so fixtures are stable between runs.
func NewKeyPair(seed string) *KeyPair {
	privateKey, publicKey := bec.PrivateKeyFromBytes([]byte("EPOCHSETTLE_TEST_KEY_" + seed))

	return &KeyPair{
		PrivateKey: privateKey,
		PublicKey:  publicKey.Compressed(),
	}
}
