package settle

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/bsv-blockchain/epochsettle/errors"
	"github.com/bsv-blockchain/epochsettle/model"
	"github.com/bsv-blockchain/epochsettle/ulogger"
	"github.com/bsv-blockchain/epochsettle/util/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = test.NewKeyPair("alice")
	bob   = test.NewKeyPair("bob")
)

var genesis = test.Genesis("cli",
	model.NewOutput(1000, alice.PublicKey),
	model.NewOutput(500, alice.PublicKey),
)

func writeEpochFile(t *testing.T, f *EpochFile) string {
	t.Helper()

	b, err := json.Marshal(f)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "epoch.json")
	require.NoError(t, os.WriteFile(path, b, 0o600))

	return path
}

func genesisPool() []UTXOJSON {
	pool := make([]UTXOJSON, 0, genesis.OutputCount())

	for i, output := range genesis.Outputs() {
		pool = append(pool, UTXOJSON{
			TxID:     genesis.String(),
			Vout:     uint32(i), // nolint:gosec
			Satoshis: output.Satoshis,
			Owner:    hex.EncodeToString(output.OwnerKey),
		})
	}

	return pool
}

func runApp(t *testing.T, args ...string) (*bytes.Buffer, error) {
	t.Helper()

	var stdout bytes.Buffer

	app := NewApp(ulogger.TestLogger{}, test.CreateBaseTestSettings(), &stdout, "test")

	return &stdout, app.Run(append([]string{"settle"}, args...))
}

func TestRun(t *testing.T) {
	toBob := test.Create(t,
		test.WithPrivateKey(alice.PrivateKey),
		test.WithParentOutput(genesis, 0),
		test.WithOutput(900, bob.PublicKey),
	)

	conflicting := test.Create(t,
		test.WithPrivateKey(alice.PrivateKey),
		test.WithParentOutput(genesis, 0),
		test.WithOutput(1000, alice.PublicKey),
	)

	chained := test.Create(t,
		test.WithPrivateKey(bob.PrivateKey),
		test.WithParentOutput(toBob, 0),
		test.WithOutput(900, alice.PublicKey),
	)

	path := writeEpochFile(t, &EpochFile{
		Pool: genesisPool(),
		Candidates: []TransactionJSON{
			NewTransactionJSON(toBob),
			{Hex: hex.EncodeToString(conflicting.Bytes())},
			NewTransactionJSON(chained),
		},
	})

	stdout, err := runApp(t, "run", "--epoch", path)
	require.NoError(t, err)

	var result RunResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))

	assert.Equal(t, []string{toBob.String(), chained.String()}, result.Accepted)
	assert.Equal(t, 1, result.Rejected)
	assert.Zero(t, result.Unprocessed)
	assert.Empty(t, result.Failed)
	assert.Empty(t, result.Error)

	require.Len(t, result.Pool, 2)

	totals := map[string]int64{}
	for _, entry := range result.Pool {
		totals[entry.TxID] += entry.Satoshis
	}

	assert.Equal(t, map[string]int64{genesis.String(): 500, chained.String(): 900}, totals)
}

func TestRunWritesOutFile(t *testing.T) {
	path := writeEpochFile(t, &EpochFile{Pool: genesisPool()})
	out := filepath.Join(t.TempDir(), "result.json")

	stdout, err := runApp(t, "run", "-e", path, "-o", out)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	b, err := os.ReadFile(out)
	require.NoError(t, err)

	var result RunResult
	require.NoError(t, json.Unmarshal(b, &result))
	assert.Empty(t, result.Accepted)
	assert.Len(t, result.Pool, 2)
}

func TestRunInvariantViolation(t *testing.T) {
	tx := test.Create(t,
		test.WithPrivateKey(alice.PrivateKey),
		test.WithParentOutput(genesis, 0),
		test.WithOutput(1000, bob.PublicKey),
	)

	forged := test.Create(t,
		test.WithPrivateKey(bob.PrivateKey),
		test.WithParentOutput(genesis, 1),
		test.WithOutput(500, bob.PublicKey),
	)

	later := test.Create(t,
		test.WithPrivateKey(alice.PrivateKey),
		test.WithParentOutput(genesis, 1),
		test.WithOutput(500, bob.PublicKey),
	)

	pool := append(genesisPool(), UTXOJSON{TxID: tx.String(), Vout: 0, Satoshis: 1, Owner: hex.EncodeToString(bob.PublicKey)})

	path := writeEpochFile(t, &EpochFile{
		Pool: pool,
		Candidates: []TransactionJSON{
			NewTransactionJSON(forged),
			NewTransactionJSON(tx),
			NewTransactionJSON(later),
		},
	})

	stdout, err := runApp(t, "run", "--epoch", path)
	require.Error(t, err)
	assert.True(t, errors.IsInvariantViolation(err))

	var result RunResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	assert.Empty(t, result.Accepted)
	assert.Equal(t, 1, result.Rejected)
	assert.Equal(t, tx.String(), result.Failed)
	assert.Equal(t, 1, result.Unprocessed)
	assert.NotEmpty(t, result.Error)
	assert.Len(t, result.Pool, 3)
}

func TestValidate(t *testing.T) {
	valid := test.Create(t,
		test.WithPrivateKey(alice.PrivateKey),
		test.WithParentOutput(genesis, 0),
		test.WithOutput(1000, bob.PublicKey),
	)

	// valid against the initial pool even though it conflicts with the first candidate
	alsoValid := test.Create(t,
		test.WithPrivateKey(alice.PrivateKey),
		test.WithParentOutput(genesis, 0),
		test.WithOutput(10, bob.PublicKey),
	)

	forged := test.Create(t,
		test.WithPrivateKey(bob.PrivateKey),
		test.WithParentOutput(genesis, 1),
		test.WithOutput(500, bob.PublicKey),
	)

	path := writeEpochFile(t, &EpochFile{
		Pool: genesisPool(),
		Candidates: []TransactionJSON{
			NewTransactionJSON(valid),
			NewTransactionJSON(alsoValid),
			NewTransactionJSON(forged),
		},
	})

	stdout, err := runApp(t, "validate", "--epoch", path)
	require.NoError(t, err)

	var verdicts []Verdict
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &verdicts))
	require.Len(t, verdicts, 3)

	assert.True(t, verdicts[0].Valid)
	assert.True(t, verdicts[1].Valid)
	assert.False(t, verdicts[2].Valid)
	assert.Equal(t, "invalid_signature", verdicts[2].Reason)
	assert.Equal(t, forged.String(), verdicts[2].TxID)
}

func TestSignThenRun(t *testing.T) {
	unsigned := TransactionJSON{
		Inputs: []InputJSON{
			{TxID: genesis.String(), Vout: 0},
			{TxID: genesis.String(), Vout: 1},
		},
		Outputs: []OutputJSON{
			{Satoshis: 1500, Owner: hex.EncodeToString(bob.PublicKey)},
		},
	}

	path := writeEpochFile(t, &EpochFile{
		Pool:       genesisPool(),
		Candidates: []TransactionJSON{unsigned},
	})

	signedPath := filepath.Join(t.TempDir(), "signed.json")

	_, err := runApp(t, "sign", "--epoch", path, "--key", hex.EncodeToString(alice.PrivateKey.Serialize()), "--out", signedPath)
	require.NoError(t, err)

	signed, err := ReadEpochFile(signedPath)
	require.NoError(t, err)
	require.Len(t, signed.Candidates, 1)

	for _, in := range signed.Candidates[0].Inputs {
		assert.NotEmpty(t, in.Signature)
	}

	stdout, err := runApp(t, "run", "--epoch", signedPath)
	require.NoError(t, err)

	var result RunResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	assert.Equal(t, []string{signed.Candidates[0].TxID}, result.Accepted)
}

func TestSignRejectsBadKey(t *testing.T) {
	path := writeEpochFile(t, &EpochFile{Pool: genesisPool()})

	_, err := runApp(t, "sign", "--epoch", path, "--key", "zz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	_, err = runApp(t, "sign", "--epoch", path, "--key", "0102")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestKeygen(t *testing.T) {
	stdout, err := runApp(t, "keygen")
	require.NoError(t, err)

	var keys KeyPairJSON
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &keys))

	privateKey, err := hex.DecodeString(keys.PrivateKey)
	require.NoError(t, err)
	assert.Len(t, privateKey, 32)

	publicKey, err := hex.DecodeString(keys.PublicKey)
	require.NoError(t, err)
	assert.Len(t, publicKey, 33)
}

func TestBadInput(t *testing.T) {
	t.Run("missing epoch flag", func(t *testing.T) {
		_, err := runApp(t, "run")
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := runApp(t, "run", "--epoch", filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrProcessing))
	})

	t.Run("not json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "epoch.json")
		require.NoError(t, os.WriteFile(path, []byte("{pool"), 0o600))

		_, err := runApp(t, "validate", "--epoch", path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
	})

	t.Run("duplicate pool entry", func(t *testing.T) {
		pool := genesisPool()
		path := writeEpochFile(t, &EpochFile{Pool: append(pool, pool[0])})

		_, err := runApp(t, "run", "--epoch", path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrDuplicateUTXO))
	})

	t.Run("bad txid", func(t *testing.T) {
		path := writeEpochFile(t, &EpochFile{
			Pool:       genesisPool(),
			Candidates: []TransactionJSON{{Inputs: []InputJSON{{TxID: "xyz"}}}},
		})

		_, err := runApp(t, "run", "--epoch", path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
	})

	t.Run("truncated hex transaction", func(t *testing.T) {
		path := writeEpochFile(t, &EpochFile{
			Pool:       genesisPool(),
			Candidates: []TransactionJSON{{Hex: hex.EncodeToString(genesis.Bytes()[:10])}},
		})

		_, err := runApp(t, "run", "--epoch", path)
		require.Error(t, err)
	})
}

func TestTransactionJSONRoundTrip(t *testing.T) {
	tx := test.Create(t,
		test.WithPrivateKey(alice.PrivateKey),
		test.WithParentOutput(genesis, 0),
		test.WithParentOutput(genesis, 1),
		test.WithOutput(700, bob.PublicKey),
		test.WithOutput(800, alice.PublicKey),
	)

	decoded, err := NewTransactionJSON(tx).Transaction()
	require.NoError(t, err)
	assert.Equal(t, tx.Hash(), decoded.Hash())

	decoded, err = TransactionJSON{Hex: hex.EncodeToString(tx.Bytes())}.Transaction()
	require.NoError(t, err)
	assert.Equal(t, tx.Hash(), decoded.Hash())
}
