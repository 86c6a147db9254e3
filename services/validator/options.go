package validator

// TxValidatorOptions configures a TxValidator at construction time.
type TxValidatorOptions struct {
	verifier SignatureVerifier
}

type TxValidatorOption func(*TxValidatorOptions)

func NewTxValidatorOptions(opts ...TxValidatorOption) *TxValidatorOptions {
	options := &TxValidatorOptions{}
	for _, o := range opts {
		o(options)
	}

	return options
}

// WithSignatureVerifier replaces the verifier selected by validator_verifier.
func WithSignatureVerifier(verifier SignatureVerifier) TxValidatorOption {
	return func(o *TxValidatorOptions) {
		o.verifier = verifier
	}
}

// Options are per call validation options.
type Options struct {
	verifiedInputs VerifiedInputs
}

// Option is a function that sets some option on the Options struct
type Option func(*Options)

func NewDefaultOptions() *Options {
	return &Options{}
}

func ProcessOptions(opts ...Option) *Options {
	options := NewDefaultOptions()
	for _, o := range opts {
		o(options)
	}

	return options
}

// WithVerifiedInputs supplies signature verdicts computed earlier, see TxValidator.VerifyInputSignatures.
// A verdict is only used when the owner key it was computed with matches the owner key in the pool
// being validated against.
func WithVerifiedInputs(verified VerifiedInputs) Option {
	return func(o *Options) {
		o.verifiedInputs = verified
	}
}
