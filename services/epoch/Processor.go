/*
Package epoch settles epochs: ordered batches of candidate transactions applied to a UTXO pool.

Settlement is order dependent. Candidates are considered one at a time in the order given and each
is validated against the pool as left by every candidate accepted before it, so when two
candidates spend the same output the earlier one wins, and a candidate may spend outputs created
by an earlier candidate of the same epoch. Reordering a batch can change what is accepted.
*/
package epoch

import (
	"context"
	"sync"
	"time"

	"github.com/bsv-blockchain/epochsettle/errors"
	"github.com/bsv-blockchain/epochsettle/model"
	"github.com/bsv-blockchain/epochsettle/services/validator"
	"github.com/bsv-blockchain/epochsettle/settings"
	"github.com/bsv-blockchain/epochsettle/stores/utxo"
	"github.com/bsv-blockchain/epochsettle/tracing"
	"github.com/bsv-blockchain/epochsettle/ulogger"
	safeconversion "github.com/bsv-blockchain/go-safe-conversion"
)

// Processor owns a private UTXO pool and applies epochs to it. Settle calls are serialized.
type Processor struct {
	logger    ulogger.Logger
	settings  *settings.Settings
	validator validator.TxValidatorI
	mu        sync.Mutex
	pool      utxo.Store
}

// New returns a processor working on a deep copy of pool. Changes made to pool after New returns
// are not seen by the processor, and the processor never changes pool.
func New(logger ulogger.Logger, tSettings *settings.Settings, pool utxo.Store, txValidator validator.TxValidatorI) *Processor {
	initPrometheusMetrics()

	p := &Processor{
		logger:    logger,
		settings:  tSettings,
		validator: txValidator,
		pool:      pool.Clone(),
	}

	prometheusUtxoPoolSize.Set(float64(p.pool.Len()))

	return p
}

// Settle considers every candidate in order, applying each valid one to the pool before the next
// is considered, and returns the accepted transactions in acceptance order.
//
// Invalid candidates are skipped, never returned as errors. The only error is an invariant
// violation: the pool refusing to apply a transaction the validator accepted. Settle then undoes
// the partial effects of that transaction and returns what it had accepted before it, together
// with an errors.ErrInvariantViolation. The caller should not settle further epochs on this
// processor.
func (p *Processor) Settle(ctx context.Context, candidates []*model.Transaction) ([]*model.Transaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}

	span := tracing.Start(ctx, "EpochProcessor:Settle",
		tracing.WithHistogram(prometheusEpochSettle),
	)
	defer span.Finish()

	start := time.Now()

	prometheusEpochCandidates.Add(float64(len(candidates)))
	prometheusEpochSettleSize.Observe(float64(len(candidates)))
	span.SetInt("candidates", len(candidates))

	verified := p.precheck(span.Ctx, candidates)

	accepted := make([]*model.Transaction, 0, len(candidates))

	for idx, tx := range candidates {
		opts := []validator.Option{}
		if verified != nil {
			opts = append(opts, validator.WithVerifiedInputs(verified[idx]))
		}

		if err := p.validator.ValidateTransaction(p.pool, tx, opts...); err != nil {
			p.reject(idx, tx, err)
			continue
		}

		if err := p.commit(tx); err != nil {
			prometheusEpochInvariantViolations.Inc()
			p.logger.Errorf("[EpochProcessor] invariant violation applying candidate %d %s after %d accepted: %v", idx, tx, len(accepted), err)

			var violation *errors.Error
			if errors.As(err, &violation) {
				violation.SetData(candidateKey, idx)
			}

			span.SetInt("accepted", len(accepted))
			span.RecordError(err)

			prometheusUtxoPoolSize.Set(float64(p.pool.Len()))

			return accepted, err
		}

		accepted = append(accepted, tx)
		prometheusEpochAccepted.Inc()
	}

	span.SetInt("accepted", len(accepted))
	prometheusUtxoPoolSize.Set(float64(p.pool.Len()))

	p.logger.Infof("[EpochProcessor] settled epoch: %d candidates, %d accepted, %d rejected, pool size %d, in %s",
		len(candidates), len(accepted), len(candidates)-len(accepted), p.pool.Len(), time.Since(start))

	return accepted, nil
}

func (p *Processor) reject(idx int, tx *model.Transaction, err error) {
	reason := validator.RejectionReason(err)

	prometheusEpochRejected.WithLabelValues(reason).Inc()

	if !p.settings.Epoch.LogRejections {
		return
	}

	if tx == nil {
		p.logger.Debugf("[EpochProcessor] rejected candidate %d: %s: %v", idx, reason, err)
		return
	}

	p.logger.Debugf("[EpochProcessor] rejected candidate %d %s: %s: %v", idx, tx, reason, err)
}

// commit removes every output tx spends and adds every output it creates. When the pool refuses
// a mutation the ones already made are undone, leaving the pool as it was before commit.
const candidateKey = "candidate"

// FailedCandidate returns the index of the candidate that could not be applied, when err is an
// invariant violation returned by Settle. Candidates before it were accepted or rejected, those
// after it were never considered.
func FailedCandidate(err error) (int, bool) {
	var violation *errors.Error
	if !errors.As(err, &violation) {
		return 0, false
	}

	idx, ok := violation.GetData(candidateKey).(int)

	return idx, ok
}

func (p *Processor) commit(tx *model.Transaction) error {
	var (
		removed = make(map[model.UTXOKey]*model.Output, tx.InputCount())
		order   = make([]model.UTXOKey, 0, tx.InputCount())
		added   = make([]model.UTXOKey, 0, tx.OutputCount())
	)

	for _, input := range tx.Inputs() {
		key := input.UTXOKey()

		output, err := p.pool.Get(key)
		if err == nil {
			err = p.pool.Remove(key)
		}

		if err != nil {
			p.rollback(tx, removed, order, added)
			return errors.NewInvariantViolationError("could not spend %s for accepted transaction %s", key, tx, err)
		}

		removed[key] = output
		order = append(order, key)
	}

	txHash := tx.Hash()

	for i, output := range tx.Outputs() {
		vout, err := safeconversion.IntToUint32(i)
		if err != nil {
			p.rollback(tx, removed, order, added)
			return errors.NewInvariantViolationError("output %d of accepted transaction %s is not addressable", i, tx, err)
		}

		key := model.NewUTXOKey(txHash, vout)

		if err = p.pool.Add(key, output); err != nil {
			p.rollback(tx, removed, order, added)
			return errors.NewInvariantViolationError("could not create %s for accepted transaction %s", key, tx, err)
		}

		added = append(added, key)
	}

	return nil
}

func (p *Processor) rollback(tx *model.Transaction, removed map[model.UTXOKey]*model.Output, order, added []model.UTXOKey) {
	for i := len(added) - 1; i >= 0; i-- {
		if err := p.pool.Remove(added[i]); err != nil {
			p.logger.Errorf("[EpochProcessor] rollback of %s could not remove %s: %v", tx, added[i], err)
		}
	}

	for i := len(order) - 1; i >= 0; i-- {
		if err := p.pool.Add(order[i], removed[order[i]]); err != nil {
			p.logger.Errorf("[EpochProcessor] rollback of %s could not restore %s: %v", tx, order[i], err)
		}
	}

	p.logger.Warnf("[EpochProcessor] rolled back %s: restored %d spent outputs, removed %d created outputs", tx, len(order), len(added))
}

// Pool returns a read only view of the current pool. It must not be used concurrently with Settle.
func (p *Processor) Pool() utxo.Reader {
	return readOnlyPool{p.pool}
}

// Snapshot returns an independent deep copy of the current pool.
func (p *Processor) Snapshot() utxo.Store {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.pool.Clone()
}

// readOnlyPool hides the mutating methods of the pool it wraps.
type readOnlyPool struct {
	utxo.Reader
}
