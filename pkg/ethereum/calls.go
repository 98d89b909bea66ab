package ethereum

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Method names a state-changing GoldenGate function
type Method string

const (
	MethodInitiateNativeIntent  Method = "initiateNativeIntent"
	MethodProposeNativeSolution Method = "proposeNativeSolution"
	MethodAcceptBid             Method = "acceptBid"
	MethodSettleNativeIntent    Method = "settleNativeIntent"
	MethodWithdrawNativeBid     Method = "withdrawNativeBid"
	MethodRejectBids            Method = "rejectBids"
	MethodReleaseFunds          Method = "realseFundsToSettler"
)

// Call is one contract call ready to be signed and sent
type Call struct {
	Method Method
	Args   []interface{}
	// Value is the native amount attached to payable calls
	Value *big.Int
	// GasLimit overrides the chain default when non-zero
	GasLimit uint64
}

// Payable reports whether the call carries value
func (c Call) Payable() bool {
	return c.Method == MethodInitiateNativeIntent || c.Method == MethodProposeNativeSolution
}

// InitiateNativeIntentCall deposits amount on the source chain and opens an intent
func InitiateNativeIntentCall(amount, minAmountRecv *big.Int, destinationChainID uint32, beneficiary common.Address) Call {
	return Call{
		Method: MethodInitiateNativeIntent,
		Args:   []interface{}{minAmountRecv, destinationChainID, beneficiary},
		Value:  amount,
	}
}

// ProposeNativeSolutionCall deposits amountProposed on the destination chain as a bid
func ProposeNativeSolutionCall(amountProposed, sourceChainID, intentUID *big.Int, destination, forwarding common.Address) Call {
	return Call{
		Method: MethodProposeNativeSolution,
		Args:   []interface{}{sourceChainID, intentUID, destination, forwarding},
		Value:  amountProposed,
	}
}

// AcceptBidCall accepts bidUID for intentUID on the source chain
func AcceptBidCall(bidUID, intentUID *big.Int) Call {
	return Call{Method: MethodAcceptBid, Args: []interface{}{bidUID, intentUID}}
}

// SettleNativeIntentCall pays the beneficiary from an accepted bid on the destination chain
func SettleNativeIntentCall(sourceChainID, intentUID, bidUID *big.Int) Call {
	return Call{Method: MethodSettleNativeIntent, Args: []interface{}{sourceChainID, intentUID, bidUID}}
}

// WithdrawNativeBidCall returns a non-accepted bid's deposit to the solver
func WithdrawNativeBidCall(bidUID *big.Int) Call {
	return Call{Method: MethodWithdrawNativeBid, Args: []interface{}{bidUID}}
}

// RejectBidsCall closes an open intent and refunds its owner
func RejectBidsCall(intentUID *big.Int) Call {
	return Call{Method: MethodRejectBids, Args: []interface{}{intentUID}}
}

// ReleaseFundsCall releases a fulfilled intent's deposit to the settler's destination address
func ReleaseFundsCall(intentUID *big.Int, destination common.Address) Call {
	return Call{Method: MethodReleaseFunds, Args: []interface{}{intentUID, destination}}
}
