package epoch

import (
	"context"
	"time"

	"github.com/bsv-blockchain/epochsettle/model"
	"github.com/bsv-blockchain/epochsettle/services/validator"
	"github.com/bsv-blockchain/epochsettle/tracing"
	"github.com/bsv-blockchain/epochsettle/util"
	"golang.org/x/sync/errgroup"
)

// precheck verifies, concurrently and against the pool as it stands before the epoch, the
// signature of every candidate input that spends an output already in the pool. It returns one
// VerifiedInputs per candidate, or nil when the batch is too small to be worth it.
//
// The commit loop only reuses a verdict when the live pool still holds the same owner key for that
// input, and signature verification depends on nothing else, so the outcome of Settle is the same
// as without a precheck. The pool is not written to until precheck returns.
func (p *Processor) precheck(ctx context.Context, candidates []*model.Transaction) []validator.VerifiedInputs {
	if !p.settings.ParallelPrecheck(len(candidates)) {
		return nil
	}

	span := tracing.Start(ctx, "EpochProcessor:Precheck",
		tracing.WithHistogram(prometheusEpochPrecheck),
	)
	defer span.Finish()

	start := time.Now()

	verified := make([]validator.VerifiedInputs, len(candidates))

	g, _ := errgroup.WithContext(span.Ctx)
	util.SafeSetLimit(g, p.settings.Epoch.PrecheckConcurrency)

	for idx, tx := range candidates {
		g.Go(func() error {
			verified[idx] = p.validator.VerifyInputSignatures(p.pool, tx)
			return nil
		})
	}

	// the workers never fail, a nil entry just means the signature is verified in the commit loop
	_ = g.Wait()

	p.logger.Debugf("[EpochProcessor] prechecked %d candidates with concurrency %d in %s", len(candidates), p.settings.Epoch.PrecheckConcurrency, time.Since(start))

	return verified
}
