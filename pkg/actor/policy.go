package actor

import (
	"math/big"

	"github.com/chainsafe/goldengate-middleware/pkg/config"
	"github.com/chainsafe/goldengate-middleware/pkg/intent"
)

const bpsDenominator = 10_000

// SelectBid returns the bid the owner's policy accepts among bids of in, or nil.
// bids must be in arrival order. The manual policy never selects.
func SelectBid(policy string, in *intent.Intent, bids []*intent.Bid) *intent.Bid {
	var chosen *intent.Bid
	for _, b := range bids {
		if !acceptable(in, b) {
			continue
		}
		switch policy {
		case config.AcceptFirstAcceptable:
			return b
		case config.AcceptBestOffer:
			if chosen == nil || b.AmountProposed.Cmp(chosen.AmountProposed) > 0 {
				chosen = b
			}
		default:
			return nil
		}
	}
	return chosen
}

func acceptable(in *intent.Intent, b *intent.Bid) bool {
	return b.State == intent.BidProposed && intent.CheckAcceptance(in, b) == nil
}

// BidPolicy decides whether and how much a solver offers for an intent
type BidPolicy struct {
	// FeeBps is kept from the intent amount, in basis points
	FeeBps uint64
	// MaxAmount skips intents above it. nil means no cap.
	MaxAmount *big.Int
}

// NewBidPolicy reads the bid policy from the solver configuration
func NewBidPolicy(cfg *config.SolverConfig) BidPolicy {
	return BidPolicy{FeeBps: cfg.FeeBps, MaxAmount: cfg.MaxAmount()}
}

// Offer returns the amount to propose for in, and false when the solver passes
func (p BidPolicy) Offer(in *intent.Intent) (*big.Int, bool) {
	if in.Amount == nil || in.Amount.Sign() <= 0 || p.FeeBps > bpsDenominator {
		return nil, false
	}
	if p.MaxAmount != nil && in.Amount.Cmp(p.MaxAmount) > 0 {
		return nil, false
	}
	offer := new(big.Int).Mul(in.Amount, big.NewInt(int64(bpsDenominator-p.FeeBps)))
	offer.Quo(offer, big.NewInt(bpsDenominator))
	if offer.Sign() <= 0 || !intent.MeetsMinimum(in, offer) {
		return nil, false
	}
	return offer, true
}
