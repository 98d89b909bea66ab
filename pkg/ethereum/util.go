package ethereum

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

// IntentKeyHash mirrors the contract's generateKey: keccak256 over the two
// 32-byte big-endian words (sourceChainId, intentUid).
func IntentKeyHash(sourceChainID, intentUID *big.Int) [32]byte {
	var out [32]byte
	h := crypto.Keccak256(
		common.LeftPadBytes(sourceChainID.Bytes(), 32),
		common.LeftPadBytes(intentUID.Bytes(), 32),
	)
	copy(out[:], h)
	return out
}

// FormatEther renders a wei amount with 18 decimals for logs and operator output
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -18).String()
}

// ParseEther converts a decimal ether string such as "0.001" into wei
func ParseEther(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return d.Shift(18).BigInt(), nil
}
