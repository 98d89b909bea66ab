package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	cli "github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/chainsafe/goldengate-middleware/pkg/auth"
	"github.com/chainsafe/goldengate-middleware/pkg/config"
	"github.com/chainsafe/goldengate-middleware/pkg/db"
	"github.com/chainsafe/goldengate-middleware/pkg/ethereum"
)

const (
	defaultTokenTTL = time.Hour
	gwei            = 1_000_000_000
)

// session is one chain client plus the signer for the invocation
type session struct {
	client *ethereum.Client
	signer ethereum.Signer
	logger *zap.Logger
	wait   bool
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	level := "info"
	if c.Bool("debug") {
		level = "debug"
	}
	return config.NewLogger(config.LoggingConfig{Level: level, Format: "console", OutputPath: "stderr"}, "goldengate")
}

// chainConfig selects the chain from the configuration file and applies the
// gas price flag
func chainConfig(c *cli.Context) (*config.ChainConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	id := c.Uint64("chain")
	chain := cfg.Chain(id)
	if chain == nil {
		return nil, fmt.Errorf("chain %d is not configured", id)
	}
	if p := c.Uint64("gas-price-gwei"); p > 0 {
		chain.GasPriceWei = new(big.Int).Mul(new(big.Int).SetUint64(p), big.NewInt(gwei)).String()
	}
	return chain, nil
}

func signerConfig(c *cli.Context) (config.SignerConfig, error) {
	switch {
	case c.String("kms-key-id") != "":
		return config.SignerConfig{
			Type:      config.SignerTypeAWSKMS,
			KMSKeyID:  c.String("kms-key-id"),
			KMSRegion: c.String("kms-region"),
		}, nil
	case c.String("private-key") != "":
		return config.SignerConfig{Type: config.SignerTypePrivateKey, PrivateKey: c.String("private-key")}, nil
	default:
		return config.SignerConfig{}, fmt.Errorf("either --private-key or --kms-key-id must be set")
	}
}

func openSession(c *cli.Context, withSigner bool) (*session, error) {
	logger, err := newLogger(c)
	if err != nil {
		return nil, err
	}
	chain, err := chainConfig(c)
	if err != nil {
		return nil, err
	}
	s := &session{logger: logger, wait: c.Bool("wait")}
	if withSigner {
		sc, err := signerConfig(c)
		if err != nil {
			return nil, err
		}
		if s.signer, err = ethereum.NewSigner(sc); err != nil {
			return nil, err
		}
	}
	// nonces come from the node for one-shot invocations
	if s.client, err = ethereum.NewClient(c.Context, chain, db.NewMemoryStore(), logger); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) close() {
	s.client.Close()
	_ = s.logger.Sync()
}

// send submits call and optionally waits for its receipt
func (s *session) send(ctx context.Context, call ethereum.Call) error {
	txHash, err := s.client.Submit(ctx, s.signer, call)
	if err != nil {
		return err
	}
	fmt.Printf("%s sent: %s\n", call.Method, txHash.Hex())
	if !s.wait {
		return nil
	}
	receipt, err := s.client.WaitMined(ctx, txHash)
	if err != nil {
		return fmt.Errorf("waiting for %s: %w", txHash.Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("transaction %s failed in block %s", txHash.Hex(), receipt.BlockNumber)
	}
	fmt.Printf("mined in block %s, gas used %d\n", receipt.BlockNumber, receipt.GasUsed)
	return nil
}

// withSigned runs build against a signed session and sends the call it returns
func withSigned(build func(c *cli.Context, s *session) (ethereum.Call, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := openSession(c, true)
		if err != nil {
			return err
		}
		defer s.close()
		call, err := build(c, s)
		if err != nil {
			return err
		}
		return s.send(c.Context, call)
	}
}

func parseUID(c *cli.Context, name string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(c.String(name), 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid --%s %q", name, c.String(name))
	}
	return v, nil
}

func parseAmount(c *cli.Context, name string) (*big.Int, error) {
	v, err := ethereum.ParseEther(c.String(name))
	if err != nil || v.Sign() <= 0 {
		return nil, fmt.Errorf("invalid --%s %q", name, c.String(name))
	}
	return v, nil
}

// addressOr parses an optional address flag, falling back to def
func addressOr(c *cli.Context, name string, def common.Address) (common.Address, error) {
	v := c.String(name)
	if v == "" {
		return def, nil
	}
	if !common.IsHexAddress(v) {
		return common.Address{}, fmt.Errorf("invalid --%s %q", name, v)
	}
	return common.HexToAddress(v), nil
}

var submitIntentAction = withSigned(func(c *cli.Context, s *session) (ethereum.Call, error) {
	amount, err := parseAmount(c, "amount")
	if err != nil {
		return ethereum.Call{}, err
	}
	minAmount, err := parseAmount(c, "min-amount")
	if err != nil {
		return ethereum.Call{}, err
	}
	if minAmount.Cmp(amount) > 0 {
		return ethereum.Call{}, fmt.Errorf("--min-amount exceeds --amount")
	}
	dest := c.Uint64("destination-chain")
	if dest > uint64(^uint32(0)) {
		return ethereum.Call{}, fmt.Errorf("--destination-chain %d does not fit uint32", dest)
	}
	beneficiary, err := addressOr(c, "beneficiary", s.signer.Address())
	if err != nil {
		return ethereum.Call{}, err
	}
	return ethereum.InitiateNativeIntentCall(amount, minAmount, uint32(dest), beneficiary), nil
})

var proposeAction = withSigned(func(c *cli.Context, s *session) (ethereum.Call, error) {
	amount, err := parseAmount(c, "amount")
	if err != nil {
		return ethereum.Call{}, err
	}
	uid, err := parseUID(c, "intent")
	if err != nil {
		return ethereum.Call{}, err
	}
	destination, err := addressOr(c, "destination", s.signer.Address())
	if err != nil {
		return ethereum.Call{}, err
	}
	forwarding, err := addressOr(c, "forwarding", s.signer.Address())
	if err != nil {
		return ethereum.Call{}, err
	}
	source := new(big.Int).SetUint64(c.Uint64("source-chain"))
	return ethereum.ProposeNativeSolutionCall(amount, source, uid, destination, forwarding), nil
})

var acceptAction = withSigned(func(c *cli.Context, _ *session) (ethereum.Call, error) {
	intentUID, err := parseUID(c, "intent")
	if err != nil {
		return ethereum.Call{}, err
	}
	bidUID, err := parseUID(c, "bid")
	if err != nil {
		return ethereum.Call{}, err
	}
	return ethereum.AcceptBidCall(bidUID, intentUID), nil
})

var settleAction = withSigned(func(c *cli.Context, _ *session) (ethereum.Call, error) {
	intentUID, err := parseUID(c, "intent")
	if err != nil {
		return ethereum.Call{}, err
	}
	bidUID, err := parseUID(c, "bid")
	if err != nil {
		return ethereum.Call{}, err
	}
	source := new(big.Int).SetUint64(c.Uint64("source-chain"))
	return ethereum.SettleNativeIntentCall(source, intentUID, bidUID), nil
})

var withdrawAction = withSigned(func(c *cli.Context, _ *session) (ethereum.Call, error) {
	bidUID, err := parseUID(c, "bid")
	if err != nil {
		return ethereum.Call{}, err
	}
	return ethereum.WithdrawNativeBidCall(bidUID), nil
})

var rejectAction = withSigned(func(c *cli.Context, _ *session) (ethereum.Call, error) {
	intentUID, err := parseUID(c, "intent")
	if err != nil {
		return ethereum.Call{}, err
	}
	return ethereum.RejectBidsCall(intentUID), nil
})

var releaseAction = withSigned(func(c *cli.Context, s *session) (ethereum.Call, error) {
	intentUID, err := parseUID(c, "intent")
	if err != nil {
		return ethereum.Call{}, err
	}
	destination, err := addressOr(c, "destination", s.signer.Address())
	if err != nil {
		return ethereum.Call{}, err
	}
	return ethereum.ReleaseFundsCall(intentUID, destination), nil
})

func getIntentAction(c *cli.Context) error {
	uid, err := parseUID(c, "intent")
	if err != nil {
		return err
	}
	s, err := openSession(c, false)
	if err != nil {
		return err
	}
	defer s.close()

	v, err := s.client.GetIntent(c.Context, uid)
	if err != nil {
		return err
	}
	if !v.Exists() {
		return fmt.Errorf("intent %s not found on chain %d", uid, c.Uint64("chain"))
	}
	return printJSON(map[string]any{
		"uid":                  uid.String(),
		"amount":               ethereum.FormatEther(v.Amount),
		"min_amount_recv":      ethereum.FormatEther(v.MinAmountRecv),
		"destination_chain_id": v.DestinationChainID,
		"beneficiary":          v.Beneficiary.Hex(),
		"owner":                v.Owner.Hex(),
		"fulfiller":            v.Fulfiller.Hex(),
		"executed":             v.Executed,
		"returned":             v.Returned,
		"timestamp":            v.Timestamp,
	})
}

func getBidAction(c *cli.Context) error {
	uid, err := parseUID(c, "bid")
	if err != nil {
		return err
	}
	s, err := openSession(c, false)
	if err != nil {
		return err
	}
	defer s.close()

	v, err := s.client.GetBid(c.Context, uid)
	if err != nil {
		return err
	}
	if !v.Exists() {
		return fmt.Errorf("bid %s not found on chain %d", uid, c.Uint64("chain"))
	}
	return printJSON(map[string]any{
		"uid":             uid.String(),
		"source_chain_id": v.SourceChainID.String(),
		"intent_uid":      v.IntentUID.String(),
		"amount_proposed": ethereum.FormatEther(v.AmountProposed),
		"proposer":        v.Proposer.Hex(),
		"destination":     v.Destination.Hex(),
		"forwarding":      v.Forwarding.Hex(),
		"executed":        v.Executed,
		"returned":        v.Returned,
		"timestamp":       v.Timestamp,
	})
}

func generateKeyAction(c *cli.Context) error {
	uid, err := parseUID(c, "intent")
	if err != nil {
		return err
	}
	source := new(big.Int).SetUint64(c.Uint64("source-chain"))
	local := ethereum.IntentKeyHash(source, uid)
	fmt.Printf("local:    0x%s\n", hex.EncodeToString(local[:]))

	s, err := openSession(c, false)
	if err != nil {
		return err
	}
	defer s.close()

	remote, err := s.client.GenerateKey(c.Context, source, uid)
	if err != nil {
		return err
	}
	fmt.Printf("contract: 0x%s\n", hex.EncodeToString(remote[:]))
	if remote != local {
		return fmt.Errorf("contract key differs from local computation")
	}
	return nil
}

func adminTokenAction(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	v, err := auth.NewTokenValidator(cfg.Admin.JWTSecret, cfg.Admin.Issuer)
	if err != nil {
		return err
	}
	token, err := v.IssueToken(c.String("subject"), c.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
