package test

import (
	"sync/atomic"
)

// AcceptAllVerifier accepts every signature.
type AcceptAllVerifier struct{}

func (AcceptAllVerifier) Verify(_, _, _ []byte) bool {
	return true
}

// RejectAllVerifier rejects every signature.
type RejectAllVerifier struct{}

func (RejectAllVerifier) Verify(_, _, _ []byte) bool {
	return false
}

// CountingVerifier delegates to Verifier and counts calls; safe for concurrent use.
type CountingVerifier struct {
	Verifier interface {
		Verify(publicKey, message, signature []byte) bool
	}
	calls atomic.Int64
}

func (v *CountingVerifier) Verify(publicKey, message, signature []byte) bool {
	v.calls.Add(1)
	return v.Verifier.Verify(publicKey, message, signature)
}

func (v *CountingVerifier) Calls() int64 {
	return v.calls.Load()
}

func (v *CountingVerifier) Reset() {
	v.calls.Store(0)
}
