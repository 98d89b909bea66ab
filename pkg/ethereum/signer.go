package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/chainsafe/goldengate-middleware/pkg/config"
)

// Signer is the signing identity of one role. Each role owns its own signer.
type Signer interface {
	Address() common.Address
	TransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error)
}

// NewSigner builds the signer described by cfg
func NewSigner(cfg config.SignerConfig) (Signer, error) {
	switch cfg.Type {
	case config.SignerTypePrivateKey, "":
		return NewPrivateKeySigner(cfg.PrivateKey)
	case config.SignerTypeAWSKMS:
		return NewAWSKMSSigner(cfg.KMSKeyID, cfg.KMSRegion)
	default:
		return nil, fmt.Errorf("unsupported signer type %q", cfg.Type)
	}
}

// PrivateKeySigner signs with a raw secp256k1 key
type PrivateKeySigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewPrivateKeySigner creates a signer from a hex-encoded private key
func NewPrivateKeySigner(privateKeyHex string) (*PrivateKeySigner, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to load private key: %w", err)
	}
	return &PrivateKeySigner{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

// Address returns the account the signer controls
func (s *PrivateKeySigner) Address() common.Address {
	return s.address
}

// TransactOpts returns options signing for chainID
func (s *PrivateKeySigner) TransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(s.privateKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	auth.Context = ctx
	return auth, nil
}
