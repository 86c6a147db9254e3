// Package settle is the command line front end of the epoch processor. It settles or checks an
// epoch described in a JSON epoch file and prints the outcome as JSON.
package settle

import (
	"context"
	"encoding/hex"
	"io"
	"os"

	"github.com/bsv-blockchain/epochsettle/errors"
	"github.com/bsv-blockchain/epochsettle/model"
	"github.com/bsv-blockchain/epochsettle/services/epoch"
	"github.com/bsv-blockchain/epochsettle/services/validator"
	"github.com/bsv-blockchain/epochsettle/settings"
	"github.com/bsv-blockchain/epochsettle/stores/utxo"
	"github.com/bsv-blockchain/epochsettle/stores/utxo/factory"
	"github.com/bsv-blockchain/epochsettle/ulogger"
	bec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/urfave/cli/v2"
)

// RunResult is printed by the run command.
//
// Rejected counts candidates the validator refused. When settlement stopped on an invariant
// violation, Failed is the candidate that could not be applied and Unprocessed counts the
// candidates after it.
type RunResult struct {
	Accepted    []string   `json:"accepted"`
	Rejected    int        `json:"rejected"`
	Failed      string     `json:"failed,omitempty"`
	Unprocessed int        `json:"unprocessed"`
	Error       string     `json:"error,omitempty"`
	Pool        []UTXOJSON `json:"pool"`
}

// Verdict is printed by the validate command for each candidate.
type Verdict struct {
	Index  int    `json:"index"`
	TxID   string `json:"txid,omitempty"`
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
}

type KeyPairJSON struct {
	PrivateKey string `json:"privateKey"`
	PublicKey  string `json:"publicKey"`
}

var (
	epochFlag = &cli.StringFlag{
		Name:     "epoch",
		Aliases:  []string{"e"},
		Usage:    "path of the epoch file",
		Required: true,
	}
	outFlag = &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "write the result to this file instead of stdout",
	}
)

// NewApp returns the settle command line application. Results go to stdout unless --out is given.
func NewApp(logger ulogger.Logger, tSettings *settings.Settings, stdout io.Writer, version string) *cli.App {
	return &cli.App{
		Name:    "settle",
		Usage:   "Settle epochs of transactions against a UTXO pool",
		Version: version,
		Writer:  stdout,
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Settle the epoch and print the accepted transactions and the resulting pool",
				Flags: []cli.Flag{epochFlag, outFlag},
				Action: func(c *cli.Context) error {
					return run(c.Context, logger, tSettings, c.String("epoch"), output(c, stdout))
				},
			},
			{
				Name:  "validate",
				Usage: "Check every candidate against the initial pool, without settling",
				Flags: []cli.Flag{epochFlag, outFlag},
				Action: func(c *cli.Context) error {
					return validate(c.Context, logger, tSettings, c.String("epoch"), output(c, stdout))
				},
			},
			{
				Name:  "sign",
				Usage: "Sign every unsigned candidate input with the given key",
				Flags: []cli.Flag{
					epochFlag,
					outFlag,
					&cli.StringFlag{
						Name:     "key",
						Aliases:  []string{"k"},
						Usage:    "hex encoded private key",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					return sign(c.String("epoch"), c.String("key"), output(c, stdout))
				},
			},
			{
				Name:  "keygen",
				Usage: "Generate a key pair for use as an output owner",
				Action: func(c *cli.Context) error {
					return keygen(stdout)
				},
			},
		},
	}
}

// output opens --out lazily so that nothing is created when the command fails before writing.
func output(c *cli.Context, stdout io.Writer) func(v interface{}) error {
	return func(v interface{}) error {
		path := c.String("out")
		if path == "" {
			return writeJSON(stdout, v)
		}

		f, err := os.Create(path)
		if err != nil {
			return errors.NewProcessingError("could not create %s", path, err)
		}

		defer f.Close()

		return writeJSON(f, v)
	}
}

func load(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, path string) (utxo.Store, []*model.Transaction, error) {
	f, err := ReadEpochFile(path)
	if err != nil {
		return nil, nil, err
	}

	pool, err := factory.NewStore(ctx, logger, tSettings, "settle")
	if err != nil {
		return nil, nil, err
	}

	if err = f.LoadPool(pool); err != nil {
		return nil, nil, err
	}

	candidates, err := f.Transactions()
	if err != nil {
		return nil, nil, err
	}

	logger.Infof("[settle] loaded %s: %d utxos, %d candidates", path, pool.Len(), len(candidates))

	return pool, candidates, nil
}

func run(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, path string, write func(v interface{}) error) error {
	pool, candidates, err := load(ctx, logger, tSettings, path)
	if err != nil {
		return err
	}

	tv, err := validator.NewTxValidator(logger, tSettings)
	if err != nil {
		return err
	}

	processor := epoch.New(logger, tSettings, pool, tv)

	accepted, settleErr := processor.Settle(ctx, candidates)

	result := RunResult{
		Accepted: make([]string, len(accepted)),
		Rejected: len(candidates) - len(accepted),
		Pool:     PoolJSON(processor.Pool()),
	}

	for i, tx := range accepted {
		result.Accepted[i] = tx.String()
	}

	if settleErr != nil {
		result.Error = settleErr.Error()

		if idx, ok := epoch.FailedCandidate(settleErr); ok {
			result.Failed = candidates[idx].String()
			result.Rejected = idx - len(accepted)
			result.Unprocessed = len(candidates) - idx - 1
		}
	}

	if err = write(result); err != nil {
		return err
	}

	return settleErr
}

func validate(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, path string, write func(v interface{}) error) error {
	pool, candidates, err := load(ctx, logger, tSettings, path)
	if err != nil {
		return err
	}

	tv, err := validator.NewTxValidator(logger, tSettings)
	if err != nil {
		return err
	}

	verdicts := make([]Verdict, len(candidates))

	for i, tx := range candidates {
		verdicts[i] = Verdict{Index: i, TxID: tx.String(), Valid: true}

		if err = tv.ValidateTransaction(pool, tx); err != nil {
			verdicts[i].Valid = false
			verdicts[i].Reason = validator.RejectionReason(err)
			verdicts[i].Error = err.Error()
		}
	}

	return write(verdicts)
}

func sign(path, privateKeyHex string, write func(v interface{}) error) error {
	keyBytes, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return errors.NewInvalidArgumentError("invalid private key", err)
	}

	if len(keyBytes) != 32 {
		return errors.NewInvalidArgumentError("private key must be 32 bytes, got %d", len(keyBytes))
	}

	privateKey, _ := bec.PrivateKeyFromBytes(keyBytes)

	f, err := ReadEpochFile(path)
	if err != nil {
		return err
	}

	for i, candidate := range f.Candidates {
		tx, err := candidate.Transaction()
		if err != nil {
			return errors.NewInvalidArgumentError("candidate %d", i, err)
		}

		signed := NewTransactionJSON(tx)

		for idx := range signed.Inputs {
			if signed.Inputs[idx].Signature != "" {
				continue
			}

			payload, err := tx.SigningPayload(idx)
			if err != nil {
				return err
			}

			signature, err := validator.Sign(privateKey, payload)
			if err != nil {
				return err
			}

			signed.Inputs[idx].Signature = hex.EncodeToString(signature)
		}

		// signatures change the transaction hash
		signedTx, err := signed.Transaction()
		if err != nil {
			return err
		}

		signed.TxID = signedTx.String()
		f.Candidates[i] = signed
	}

	return write(f)
}

func keygen(stdout io.Writer) error {
	privateKey, err := bec.NewPrivateKey()
	if err != nil {
		return errors.NewProcessingError("could not generate private key", err)
	}

	return writeJSON(stdout, KeyPairJSON{
		PrivateKey: hex.EncodeToString(privateKey.Serialize()),
		PublicKey:  hex.EncodeToString(privateKey.PubKey().Compressed()),
	})
}
