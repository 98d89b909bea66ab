package actor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainsafe/goldengate-middleware/pkg/config"
	"github.com/chainsafe/goldengate-middleware/pkg/db"
	"github.com/chainsafe/goldengate-middleware/pkg/ethereum"
	"github.com/chainsafe/goldengate-middleware/pkg/intent"
	"github.com/chainsafe/goldengate-middleware/pkg/intentstore"
	"github.com/chainsafe/goldengate-middleware/pkg/lifecycle"
)

const (
	tickInterval = time.Second
	// pendingReloadWindow bounds which returned intents Load re-checks on chain
	pendingReloadWindow = 24 * time.Hour
)

// UserDriver acts for the intent owner: it opens intents, accepts bids according
// to its accept policy and returns intents left without an acceptable bid.
type UserDriver struct {
	cfg       *config.UserConfig
	engine    *lifecycle.Engine
	submitter *Submitter
	signer    ethereum.Signer
	logger    *zap.Logger
	sources   map[uint64]struct{}
	now       func() time.Time

	mu      sync.Mutex
	tracked map[intent.IntentKey]*ownIntent
	// pending holds acceptances and returns sent but not yet seen on chain
	pending map[intent.IntentKey]time.Time
}

type ownIntent struct {
	openedAt   time.Time
	firstBidAt time.Time
}

// NewUserDriver creates the owner role with its own signer
func NewUserDriver(cfg *config.UserConfig, engine *lifecycle.Engine, submitter *Submitter, signer ethereum.Signer, logger *zap.Logger) *UserDriver {
	return &UserDriver{
		cfg:       cfg,
		engine:    engine,
		submitter: submitter,
		signer:    signer,
		logger:    logger.With(zap.String("role", "user"), zap.String("address", signer.Address().Hex())),
		sources:   chainSet(cfg.SourceChains),
		now:       time.Now,
		tracked:   make(map[intent.IntentKey]*ownIntent),
		pending:   make(map[intent.IntentKey]time.Time),
	}
}

// Address returns the owner's account
func (d *UserDriver) Address() common.Address {
	return d.signer.Address()
}

// SubmitIntent deposits amount on the source chain and opens an intent. The intent
// uid is assigned by the contract and learned from the NewIntent event.
func (d *UserDriver) SubmitIntent(ctx context.Context, sourceChainID uint64, amount, minAmountRecv *big.Int, destinationChainID uint64, beneficiary common.Address) (*db.Submission, error) {
	if _, ok := d.sources[sourceChainID]; !ok {
		return nil, fmt.Errorf("chain %d is not a source chain of the user", sourceChainID)
	}
	if destinationChainID == 0 || destinationChainID > math.MaxUint32 {
		return nil, fmt.Errorf("invalid destination chain %d", destinationChainID)
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, errors.New("amount must be positive")
	}
	if minAmountRecv == nil || minAmountRecv.Sign() < 0 || minAmountRecv.Cmp(amount) > 0 {
		return nil, fmt.Errorf("minAmountRecv must be between 0 and %s", amount)
	}
	if beneficiary == (common.Address{}) {
		return nil, errors.New("beneficiary is required")
	}

	return d.submitter.Execute(ctx, d.signer, lifecycle.Action{
		ChainID: sourceChainID,
		Call:    ethereum.InitiateNativeIntentCall(amount, minAmountRecv, uint32(destinationChainID), beneficiary),
		Intent:  intent.IntentKey{ChainID: sourceChainID},
	})
}

// Load resumes tracking of the owner's open intents after a restart. Acceptances
// and returns not confirmed yet are checked again once ConfirmTimeout passes.
func (d *UserDriver) Load(ctx context.Context) error {
	own, err := d.engine.Store().ListIntents(ctx,
		intentstore.WithOwner(d.Address()),
		intentstore.WithStates(intent.StateOpen, intent.StateBidAccepted, intent.StateReturned))
	if err != nil {
		return fmt.Errorf("failed to load own intents: %w", err)
	}
	now := d.now()
	open, unconfirmed := 0, 0
	for _, in := range own {
		if _, ok := d.sources[in.Key.ChainID]; !ok {
			continue
		}
		switch in.State {
		case intent.StateOpen:
			openedAt := in.Timestamp
			if openedAt.IsZero() {
				openedAt = in.CreatedAt
			}
			d.track(in.Key, openedAt)
			open++
		case intent.StateReturned:
			if in.UpdatedAt.Before(now.Add(-pendingReloadWindow)) {
				continue
			}
			fallthrough
		default:
			if d.cfg.ConfirmTimeout > 0 {
				d.markPending(in.Key)
				unconfirmed++
			}
		}
	}
	d.logger.Info("Loaded own intents", zap.Int("open", open), zap.Int("unconfirmed", unconfirmed))
	return nil
}

// OnNewIntent learns the owner of a new intent and tracks the ones opened by this user
func (d *UserDriver) OnNewIntent(ctx context.Context, ev *ethereum.NewIntentEvent) error {
	if _, ok := d.sources[ev.ChainID]; !ok {
		return nil
	}
	gw, err := d.submitter.Gateway(ev.ChainID)
	if err != nil {
		return err
	}
	view, err := gw.GetIntent(ctx, ev.IntentUID)
	if err != nil {
		return fmt.Errorf("failed to read intent %s: %w", ev.IntentUID, err)
	}
	key := intent.NewIntentKey(ev.ChainID, ev.IntentUID)
	if res := d.engine.ObserveIntent(ctx, key, view); res.Outcome == lifecycle.OutcomeError {
		return res.Err
	}
	if view.Owner != d.Address() {
		return nil
	}

	openedAt := view.Timestamp
	if openedAt.IsZero() {
		openedAt = d.now()
	}
	d.track(key, openedAt)
	d.logger.Info("Tracking own intent", zap.String("intent", key.String()))
	return nil
}

// OnNewIntentBid learns the proposer of a bid on one of the user's intents and
// applies the accept policy
func (d *UserDriver) OnNewIntentBid(ctx context.Context, ev *ethereum.NewIntentBidEvent) error {
	if ev.SourceChainID == nil || !ev.SourceChainID.IsUint64() {
		return nil
	}
	key := intent.NewIntentKey(ev.SourceChainID.Uint64(), ev.SourceIntentUID)
	own := d.get(key)
	if own == nil {
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
	if res := d.engine.ObserveBid(ctx, intent.NewBidKey(ev.ChainID, ev.BidUID), view); res.Outcome == lifecycle.OutcomeError {
		return res.Err
	}

	d.mu.Lock()
	if own.firstBidAt.IsZero() {
		own.firstBidAt = d.now()
	}
	d.mu.Unlock()

	if d.cfg.AcceptPolicy != config.AcceptFirstAcceptable {
		return nil
	}
	return d.decide(ctx, key)
}

// Tick re-evaluates every tracked intent: closes collection windows and sends
// rejectBids for intents open longer than RejectAfter. Acceptances and returns
// still unconfirmed after ConfirmTimeout are checked against the chain first.
func (d *UserDriver) Tick(ctx context.Context) error {
	var errs []error
	for _, k := range d.duePending() {
		if err := d.confirm(ctx, k); err != nil {
			errs = append(errs, fmt.Errorf("intent %s: %w", k, err))
		}
	}

	d.mu.Lock()
	keys := make([]intent.IntentKey, 0, len(d.tracked))
	for k := range d.tracked {
		keys = append(keys, k)
	}
	d.mu.Unlock()

	for _, k := range keys {
		if err := d.decide(ctx, k); err != nil {
			errs = append(errs, fmt.Errorf("intent %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

// Run drives the reject timer and collection windows until ctx is cancelled
func (d *UserDriver) Run(ctx context.Context) error {
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
				d.logger.Warn("User tick failed", zap.Error(err))
			}
		}
	}
}

// Accept accepts bidKey for intentKey and sends acceptBid. It backs the manual
// policy and is used by the automatic ones.
func (d *UserDriver) Accept(ctx context.Context, intentKey intent.IntentKey, bidKey intent.BidKey) ([]*db.Submission, error) {
	res := d.engine.AcceptBid(ctx, intentKey, bidKey)
	if err := resultErr(res); err != nil {
		return nil, err
	}
	return d.send(ctx, intentKey, res)
}

// Reject returns an open intent to its owner by sending rejectBids
func (d *UserDriver) Reject(ctx context.Context, key intent.IntentKey) ([]*db.Submission, error) {
	res := d.engine.RejectBids(ctx, key)
	if err := resultErr(res); err != nil {
		return nil, err
	}
	return d.send(ctx, key, res)
}

// send submits the call of an acceptance or return. The intent is no longer
// tracked as open; a reverted call is rolled back at once, anything else waits
// for the chain to confirm it.
func (d *UserDriver) send(ctx context.Context, key intent.IntentKey, res lifecycle.Result) ([]*db.Submission, error) {
	d.untrack(key)
	if len(res.Actions) == 0 {
		return nil, nil
	}
	subs, err := d.submitter.Apply(ctx, d.signer, res)
	if ethereum.IsRevert(err) {
		d.logger.Warn("Transition reverted on chain, reopening intent",
			zap.String("intent", key.String()),
			zap.Error(err))
		if rerr := d.reopen(ctx, key); rerr != nil {
			d.logger.Warn("Failed to reopen intent", zap.String("intent", key.String()), zap.Error(rerr))
			d.markPending(key)
		}
		return subs, err
	}
	if d.cfg.ConfirmTimeout > 0 {
		d.markPending(key)
	}
	return subs, err
}

// confirm checks a pending acceptance or return against the chain
func (d *UserDriver) confirm(ctx context.Context, key intent.IntentKey) error {
	if err := d.reopen(ctx, key); err != nil {
		return err
	}
	d.clearPending(key)
	return nil
}

// reopen reads the intent view and, if the chain still shows the intent open,
// rolls the local transition back and tracks the intent again. A chain that has
// moved confirms the transition instead.
func (d *UserDriver) reopen(ctx context.Context, key intent.IntentKey) error {
	gw, err := d.submitter.Gateway(key.ChainID)
	if err != nil {
		return err
	}
	view, err := gw.GetIntent(ctx, key.UIDInt())
	if err != nil {
		return fmt.Errorf("failed to read intent %s: %w", key, err)
	}

	res := d.engine.ReopenIntent(ctx, key, view)
	switch res.Outcome {
	case lifecycle.OutcomeApplied, lifecycle.OutcomeDuplicate:
		d.clearPending(key)
		d.track(key, d.now())
		d.logger.Info("Intent reopened, transition not confirmed on chain", zap.String("intent", key.String()))
		return nil
	case lifecycle.OutcomeError:
		return res.Err
	}

	if res := d.engine.ObserveIntent(ctx, key, view); res.Outcome == lifecycle.OutcomeError {
		return res.Err
	}
	d.clearPending(key)
	return nil
}

func (d *UserDriver) decide(ctx context.Context, key intent.IntentKey) error {
	own := d.get(key)
	if own == nil {
		return nil
	}
	store := d.engine.Store()
	in, err := store.GetIntent(ctx, key)
	if errors.Is(err, intent.ErrIntentNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if in.State != intent.StateOpen {
		d.untrack(key)
		return nil
	}
	bids, err := store.ListBidsForIntent(ctx, key)
	if err != nil {
		return err
	}

	now := d.now()
	d.mu.Lock()
	if own.firstBidAt.IsZero() && len(bids) > 0 {
		own.firstBidAt = now
	}
	windowClosed := !own.firstBidAt.IsZero() && !now.Before(own.firstBidAt.Add(d.cfg.CollectionWindow))
	openedAt := own.openedAt
	d.mu.Unlock()

	var chosen *intent.Bid
	switch d.cfg.AcceptPolicy {
	case config.AcceptFirstAcceptable:
		chosen = SelectBid(d.cfg.AcceptPolicy, in, bids)
	case config.AcceptBestOffer:
		if windowClosed {
			chosen = SelectBid(d.cfg.AcceptPolicy, in, bids)
		}
	}
	if chosen != nil {
		d.logger.Info("Accepting bid",
			zap.String("intent", key.String()),
			zap.String("bid", chosen.Key.String()),
			zap.String("amount", ethereum.FormatEther(chosen.AmountProposed)),
			zap.String("policy", d.cfg.AcceptPolicy))
		_, err := d.Accept(ctx, key, chosen.Key)
		return err
	}

	if d.cfg.RejectAfter > 0 && !now.Before(openedAt.Add(d.cfg.RejectAfter)) {
		d.logger.Info("Rejecting bids of expired intent",
			zap.String("intent", key.String()),
			zap.Duration("reject_after", d.cfg.RejectAfter))
		_, err := d.Reject(ctx, key)
		return err
	}
	return nil
}

func (d *UserDriver) track(key intent.IntentKey, openedAt time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.tracked[key]; !ok {
		d.tracked[key] = &ownIntent{openedAt: openedAt}
	}
}

func (d *UserDriver) untrack(key intent.IntentKey) {
	d.mu.Lock()
	delete(d.tracked, key)
	d.mu.Unlock()
}

func (d *UserDriver) markPending(key intent.IntentKey) {
	d.mu.Lock()
	d.pending[key] = d.now()
	d.mu.Unlock()
}

func (d *UserDriver) clearPending(key intent.IntentKey) {
	d.mu.Lock()
	delete(d.pending, key)
	d.mu.Unlock()
}

// duePending returns the pending intents older than ConfirmTimeout
func (d *UserDriver) duePending() []intent.IntentKey {
	if d.cfg.ConfirmTimeout <= 0 {
		return nil
	}
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()
	var due []intent.IntentKey
	for k, since := range d.pending {
		if !now.Before(since.Add(d.cfg.ConfirmTimeout)) {
			due = append(due, k)
		}
	}
	return due
}

func (d *UserDriver) get(key intent.IntentKey) *ownIntent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tracked[key]
}

func chainSet(ids []uint64) map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
