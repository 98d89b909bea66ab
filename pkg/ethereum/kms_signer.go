package ethereum

import (
	"bytes"
	"context"
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"fmt"
	"math/big"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/kms"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	errNotAuthorized = errors.New("not authorized to sign this account")

	secp256k1N     = crypto.S256().Params().N
	secp256k1HalfN = new(big.Int).Rsh(secp256k1N, 1)
)

// KMSAPI is the subset of the AWS KMS client used for signing
type KMSAPI interface {
	GetPublicKeyWithContext(ctx aws.Context, input *kms.GetPublicKeyInput, opts ...request.Option) (*kms.GetPublicKeyOutput, error)
	SignWithContext(ctx aws.Context, input *kms.SignInput, opts ...request.Option) (*kms.SignOutput, error)
}

// AWSKMSSigner signs with an ECC_SECG_P256K1 key held in AWS KMS
type AWSKMSSigner struct {
	client    KMSAPI
	keyID     string
	publicKey []byte
	address   common.Address
}

// NewAWSKMSSigner connects to KMS in region and derives the address of keyID
func NewAWSKMSSigner(keyID, region string) (*AWSKMSSigner, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewAWSKMSSignerWithClient(context.Background(), kms.New(sess), keyID)
}

// NewAWSKMSSignerWithClient derives the signer address using an existing KMS client
func NewAWSKMSSignerWithClient(ctx context.Context, client KMSAPI, keyID string) (*AWSKMSSigner, error) {
	out, err := client.GetPublicKeyWithContext(ctx, &kms.GetPublicKeyInput{KeyId: aws.String(keyID)})
	if err != nil {
		return nil, fmt.Errorf("failed to get KMS public key: %w", err)
	}

	var spki struct {
		Algorithm pkix.AlgorithmIdentifier
		PublicKey asn1.BitString
	}
	if _, err := asn1.Unmarshal(out.PublicKey, &spki); err != nil {
		return nil, fmt.Errorf("failed to parse KMS public key: %w", err)
	}
	pub, err := crypto.UnmarshalPubkey(spki.PublicKey.Bytes)
	if err != nil {
		return nil, fmt.Errorf("KMS key is not secp256k1: %w", err)
	}

	return &AWSKMSSigner{
		client:    client,
		keyID:     keyID,
		publicKey: spki.PublicKey.Bytes,
		address:   crypto.PubkeyToAddress(*pub),
	}, nil
}

// Address returns the account the signer controls
func (s *AWSKMSSigner) Address() common.Address {
	return s.address
}

// TransactOpts returns options whose Signer delegates to KMS
func (s *AWSKMSSigner) TransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error) {
	signer := types.LatestSignerForChainID(chainID)
	return &bind.TransactOpts{
		From:    s.address,
		Context: ctx,
		Signer: func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if addr != s.address {
				return nil, errNotAuthorized
			}
			sig, err := s.SignHash(ctx, signer.Hash(tx).Bytes())
			if err != nil {
				return nil, err
			}
			return tx.WithSignature(signer, sig)
		},
	}, nil
}

// SignHash returns a 65-byte [R || S || V] signature over a 32-byte digest
func (s *AWSKMSSigner) SignHash(ctx context.Context, digest []byte) ([]byte, error) {
	out, err := s.client.SignWithContext(ctx, &kms.SignInput{
		KeyId:            aws.String(s.keyID),
		Message:          digest,
		MessageType:      aws.String(kms.MessageTypeDigest),
		SigningAlgorithm: aws.String(kms.SigningAlgorithmSpecEcdsaSha256),
	})
	if err != nil {
		return nil, fmt.Errorf("KMS sign failed: %w", err)
	}

	var der struct{ R, S *big.Int }
	if _, err := asn1.Unmarshal(out.Signature, &der); err != nil {
		return nil, fmt.Errorf("failed to parse KMS signature: %w", err)
	}

	// Ethereum only accepts low-s signatures
	if der.S.Cmp(secp256k1HalfN) > 0 {
		der.S = new(big.Int).Sub(secp256k1N, der.S)
	}

	sig := make([]byte, 65)
	der.R.FillBytes(sig[0:32])
	der.S.FillBytes(sig[32:64])
	for v := byte(0); v < 2; v++ {
		sig[64] = v
		recovered, err := crypto.Ecrecover(digest, sig)
		if err == nil && bytes.Equal(recovered, s.publicKey) {
			return sig, nil
		}
	}
	return nil, errors.New("failed to recover KMS signature public key")
}
