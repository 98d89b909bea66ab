package actor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainsafe/goldengate-middleware/pkg/config"
	"github.com/chainsafe/goldengate-middleware/pkg/ethereum"
	"github.com/chainsafe/goldengate-middleware/pkg/intent"
	"github.com/chainsafe/goldengate-middleware/pkg/intentstore"
	"github.com/chainsafe/goldengate-middleware/pkg/lifecycle"
)

// SolverDriver acts for a solver: it bids on new intents, settles the bids the
// owner accepts and withdraws the ones that are not.
type SolverDriver struct {
	cfg          *config.SolverConfig
	policy       BidPolicy
	engine       *lifecycle.Engine
	submitter    *Submitter
	signer       ethereum.Signer
	logger       *zap.Logger
	sources      map[uint64]struct{}
	destinations map[uint64]struct{}
	now          func() time.Time

	mu       sync.Mutex
	proposed map[intent.IntentKey]struct{}
	bids     map[intent.BidKey]time.Time
}

// NewSolverDriver creates the solver role with its own signer
func NewSolverDriver(cfg *config.SolverConfig, engine *lifecycle.Engine, submitter *Submitter, signer ethereum.Signer, logger *zap.Logger) *SolverDriver {
	return &SolverDriver{
		cfg:          cfg,
		policy:       NewBidPolicy(cfg),
		engine:       engine,
		submitter:    submitter,
		signer:       signer,
		logger:       logger.With(zap.String("role", "solver"), zap.String("address", signer.Address().Hex())),
		sources:      chainSet(cfg.SourceChains),
		destinations: chainSet(cfg.DestinationChains),
		now:          time.Now,
		proposed:     make(map[intent.IntentKey]struct{}),
		bids:         make(map[intent.BidKey]time.Time),
	}
}

// Address returns the solver's account
func (d *SolverDriver) Address() common.Address {
	return d.signer.Address()
}

// forwarding is where the intent deposit is paid on the source chain
func (d *SolverDriver) forwarding() common.Address {
	if d.cfg.Forwarding != "" {
		return common.HexToAddress(d.cfg.Forwarding)
	}
	return d.Address()
}

// releaseDestination receives funds released after settlement
func (d *SolverDriver) releaseDestination() common.Address {
	if d.cfg.Destination != "" {
		return common.HexToAddress(d.cfg.Destination)
	}
	return d.Address()
}

// Load resumes tracking of the solver's live bids after a restart
func (d *SolverDriver) Load(ctx context.Context) error {
	bids, err := d.engine.Store().ListBids(ctx,
		intentstore.WithProposer(d.Address()),
		intentstore.WithBidStates(intent.BidProposed, intent.BidAccepted, intent.BidRejected))
	if err != nil {
		return fmt.Errorf("failed to load bids: %w", err)
	}
	d.mu.Lock()
	for _, b := range bids {
		seen := b.Timestamp
		if seen.IsZero() {
			seen = b.CreatedAt
		}
		d.bids[b.Key] = seen
		d.proposed[b.Intent] = struct{}{}
	}
	d.mu.Unlock()
	d.logger.Info("Loaded live bids", zap.Int("count", len(bids)))
	return nil
}

// OnNewIntent bids on an intent the solver serves. At most one proposal is sent per intent.
func (d *SolverDriver) OnNewIntent(ctx context.Context, ev *ethereum.NewIntentEvent) error {
	if _, ok := d.sources[ev.ChainID]; !ok {
		return nil
	}
	if ev.DestinationChainID == nil || !ev.DestinationChainID.IsUint64() {
		return nil
	}
	if _, ok := d.destinations[ev.DestinationChainID.Uint64()]; !ok {
		return nil
	}
	key := intent.NewIntentKey(ev.ChainID, ev.IntentUID)

	d.mu.Lock()
	_, done := d.proposed[key]
	d.mu.Unlock()
	if done {
		return nil
	}

	in, err := d.engine.Store().GetIntent(ctx, key)
	if errors.Is(err, intent.ErrIntentNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if in.State != intent.StateOpen {
		return nil
	}
	bids, err := d.engine.Store().ListBidsForIntent(ctx, key)
	if err != nil {
		return err
	}
	for _, b := range bids {
		if b.Proposer == d.Address() {
			d.markProposed(key)
			return nil
		}
	}

	offer, ok := d.policy.Offer(in)
	if !ok {
		d.logger.Debug("Skipping intent",
			zap.String("intent", key.String()),
			zap.String("amount", ethereum.FormatEther(in.Amount)),
			zap.String("min_amount_recv", ethereum.FormatEther(in.MinAmountRecv)))
		return nil
	}

	res := d.engine.ProposeSolution(ctx, key, lifecycle.Proposal{
		Amount:      offer,
		Destination: in.Beneficiary,
		Forwarding:  d.forwarding(),
	})
	if err := resultErr(res); err != nil {
		return err
	}
	d.logger.Info("Proposing solution",
		zap.String("intent", key.String()),
		zap.String("offer", ethereum.FormatEther(offer)))
	if _, err := d.submitter.Apply(ctx, d.signer, res); err != nil {
		return err
	}
	d.markProposed(key)
	return nil
}

func (d *SolverDriver) markProposed(key intent.IntentKey) {
	d.mu.Lock()
	d.proposed[key] = struct{}{}
	d.mu.Unlock()
}

// OnNewIntentBid learns the proposer of a bid and tracks the solver's own bids
func (d *SolverDriver) OnNewIntentBid(ctx context.Context, ev *ethereum.NewIntentBidEvent) error {
	if _, ok := d.destinations[ev.ChainID]; !ok {
		return nil
	}
	gw, err := d.submitter.Gateway(ev.ChainID)
	if err != nil {
		return err
	}
	view, err := gw.GetBid(ctx, ev.BidUID)
	if err != nil {
		return fmt.Errorf("failed to read bid %s: %w", ev.BidUID, err)
	}
	key := intent.NewBidKey(ev.ChainID, ev.BidUID)
	if res := d.engine.ObserveBid(ctx, key, view); res.Outcome == lifecycle.OutcomeError {
		return res.Err
	}
	if view.Proposer != d.Address() {
		return nil
	}

	d.mu.Lock()
	if _, ok := d.bids[key]; !ok {
		d.bids[key] = d.now()
	}
	d.mu.Unlock()
	d.logger.Info("Tracking own bid", zap.String("bid", key.String()))
	return nil
}

// Tick advances every tracked bid
func (d *SolverDriver) Tick(ctx context.Context) error {
	d.mu.Lock()
	keys := make([]intent.BidKey, 0, len(d.bids))
	for k := range d.bids {
		keys = append(keys, k)
	}
	d.mu.Unlock()

	var errs []error
	for _, k := range keys {
		if err := d.progress(ctx, k); err != nil {
			errs = append(errs, fmt.Errorf("bid %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

// Run drives settlement and withdrawal until ctx is cancelled
func (d *SolverDriver) Run(ctx context.Context) error {
	if err := d.Load(ctx); err != nil {
		return err
	}
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.Tick(ctx); err != nil {
				d.logger.Warn("Solver tick failed", zap.Error(err))
			}
		}
	}
}

func (d *SolverDriver) progress(ctx context.Context, key intent.BidKey) error {
	store := d.engine.Store()
	b, err := store.GetBid(ctx, key)
	if errors.Is(err, intent.ErrBidNotFound) {
		d.forget(key)
		return nil
	}
	if err != nil {
		return err
	}

	// acceptance has no event: read it from the source chain
	if b.State == intent.BidProposed || b.State == intent.BidAccepted {
		fulfiller, err := d.observeIntent(ctx, b.Intent)
		if err != nil {
			return err
		}
		if b, err = store.GetBid(ctx, key); err != nil {
			return err
		}
		if b.State == intent.BidAccepted {
			if fulfiller != d.Address() {
				return nil
			}
			return d.submit(ctx, "Settling accepted bid", key, d.engine.Settle(ctx, b.Intent, key))
		}
	}

	switch b.State {
	case intent.BidProposed:
		if d.cfg.WithdrawAfter <= 0 || d.now().Before(d.seenAt(key).Add(d.cfg.WithdrawAfter)) {
			return nil
		}
		if err := d.submit(ctx, "Withdrawing unaccepted bid", key, d.engine.WithdrawBid(ctx, key)); err != nil {
			return err
		}
	case intent.BidRejected:
		if err := d.submit(ctx, "Withdrawing rejected bid", key, d.engine.WithdrawBid(ctx, key)); err != nil {
			return err
		}
	case intent.BidExecuted:
		if d.cfg.ReleaseFunds {
			res := d.engine.ReleaseFunds(ctx, b.Intent, d.releaseDestination())
			if err := d.submit(ctx, "Releasing settled funds", key, res); err != nil {
				return err
			}
		}
	}
	d.forget(key)
	return nil
}

// observeIntent reads the intent view and feeds it to the engine, returning the
// fulfiller recorded on chain
func (d *SolverDriver) observeIntent(ctx context.Context, key intent.IntentKey) (common.Address, error) {
	gw, err := d.submitter.Gateway(key.ChainID)
	if err != nil {
		return common.Address{}, err
	}
	view, err := gw.GetIntent(ctx, key.UIDInt())
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to read intent %s: %w", key, err)
	}
	if res := d.engine.ObserveIntent(ctx, key, view); res.Outcome == lifecycle.OutcomeError {
		return common.Address{}, res.Err
	}
	return view.Fulfiller, nil
}

func (d *SolverDriver) submit(ctx context.Context, msg string, key intent.BidKey, res lifecycle.Result) error {
	if err := resultErr(res); err != nil {
		return err
	}
	if !res.Applied() {
		return nil
	}
	d.logger.Info(msg, zap.String("bid", key.String()))
	_, err := d.submitter.Apply(ctx, d.signer, res)
	return err
}

func (d *SolverDriver) seenAt(key intent.BidKey) time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bids[key]
}

func (d *SolverDriver) forget(key intent.BidKey) {
	d.mu.Lock()
	delete(d.bids, key)
	d.mu.Unlock()
}
