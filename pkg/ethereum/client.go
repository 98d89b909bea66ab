package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v4"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/chainsafe/goldengate-middleware/internal/metrics"
	"github.com/chainsafe/goldengate-middleware/pkg/config"
	"github.com/chainsafe/goldengate-middleware/pkg/ethereum/contracts"
)

// Backend is the node interface the gateway needs. *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	ChainID(ctx context.Context) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	TransactionByHash(ctx context.Context, txHash common.Hash) (*types.Transaction, bool, error)
}

// Client is the gateway to one chain hosting a GoldenGate contract
type Client struct {
	config   *config.ChainConfig
	backend  Backend
	closer   func()
	chainID  *big.Int
	address  common.Address
	contract *contracts.GoldenGate
	limiter  *rate.Limiter
	nonces   *NonceManager
	logger   *zap.Logger
}

// NewClient dials the chain RPC and binds the GoldenGate contract
func NewClient(ctx context.Context, cfg *config.ChainConfig, nonceStore NonceStore, logger *zap.Logger) (*Client, error) {
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s RPC: %w", cfg.Name, err)
	}

	remoteID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get chain id from %s: %w", cfg.Name, err)
	}
	if remoteID.Uint64() != cfg.ChainID {
		client.Close()
		return nil, fmt.Errorf("chain %s: rpc reports chain id %s, configured %d", cfg.Name, remoteID, cfg.ChainID)
	}

	c, err := NewClientWithBackend(cfg, client, nonceStore, logger)
	if err != nil {
		client.Close()
		return nil, err
	}
	c.closer = client.Close

	logger.Info("Connected to chain",
		zap.String("chain", cfg.Name),
		zap.Uint64("chain_id", cfg.ChainID),
		zap.String("rpc_url", cfg.RPCURL),
		zap.String("contract", c.address.Hex()))

	return c, nil
}

// NewClientWithBackend binds the contract on an existing backend
func NewClientWithBackend(cfg *config.ChainConfig, backend Backend, nonceStore NonceStore, logger *zap.Logger) (*Client, error) {
	address := common.HexToAddress(cfg.Contract)
	contract, err := contracts.NewGoldenGate(address, backend)
	if err != nil {
		return nil, fmt.Errorf("failed to load GoldenGate contract: %w", err)
	}

	limit := rate.Inf
	if cfg.RPCRateLimit > 0 {
		limit = rate.Limit(cfg.RPCRateLimit)
	}
	burst := cfg.RPCBurst
	if burst <= 0 {
		burst = 1
	}

	logger = logger.With(zap.String("chain", cfg.Name), zap.Uint64("chain_id", cfg.ChainID))

	return &Client{
		config:   cfg,
		backend:  backend,
		chainID:  new(big.Int).SetUint64(cfg.ChainID),
		address:  address,
		contract: contract,
		limiter:  rate.NewLimiter(limit, burst),
		nonces:   NewNonceManager(cfg.ChainID, backend, nonceStore, logger),
		logger:   logger,
	}, nil
}

// Close closes the RPC connection
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// ChainID returns the configured chain id
func (c *Client) ChainID() uint64 {
	return c.config.ChainID
}

// Name returns the configured chain name
func (c *Client) Name() string {
	return c.config.Name
}

// ContractAddress returns the bound GoldenGate address
func (c *Client) ContractAddress() common.Address {
	return c.address
}

// retry runs op with rate limiting and exponential backoff on transport errors
func (c *Client) retry(ctx context.Context, name string, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.config.Retry.InitialInterval
	b.MaxInterval = c.config.Retry.MaxInterval
	b.MaxElapsedTime = c.config.Retry.MaxElapsedTime

	attempt := 0
	return backoff.Retry(func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		if attempt > 0 {
			metrics.RPCRetries.WithLabelValues(c.config.Name).Inc()
		}
		attempt++

		err := op()
		if err == nil {
			return nil
		}
		if !IsTransport(err) {
			return backoff.Permanent(err)
		}
		c.logger.Debug("Retrying RPC call", zap.String("op", name), zap.Int("attempt", attempt), zap.Error(err))
		return err
	}, backoff.WithContext(b, ctx))
}

// LatestBlock returns the current head block number
func (c *Client) LatestBlock(ctx context.Context) (uint64, error) {
	var number uint64
	err := c.retry(ctx, "HeaderByNumber", func() error {
		header, err := c.backend.HeaderByNumber(ctx, nil)
		if err != nil {
			return classify("HeaderByNumber", err)
		}
		number = header.Number.Uint64()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return number, nil
}

// SafeBlock returns the newest block with the configured number of confirmations
func (c *Client) SafeBlock(ctx context.Context) (uint64, error) {
	latest, err := c.LatestBlock(ctx)
	if err != nil {
		return 0, err
	}
	if latest < c.config.ConfirmationBlocks {
		return 0, nil
	}
	return latest - c.config.ConfirmationBlocks, nil
}

// QueryNewIntents returns NewIntent events in [from, to]
func (c *Client) QueryNewIntents(ctx context.Context, from, to uint64) ([]*NewIntentEvent, error) {
	var events []*NewIntentEvent
	err := c.retry(ctx, "FilterNewIntent", func() error {
		events = events[:0]
		iter, err := c.contract.FilterNewIntent(&bind.FilterOpts{Start: from, End: &to, Context: ctx}, nil)
		if err != nil {
			return classify("FilterNewIntent", err)
		}
		defer iter.Close()

		for iter.Next() {
			ev := iter.Event
			events = append(events, &NewIntentEvent{
				ChainID:            c.config.ChainID,
				IntentUID:          ev.IntentUid,
				AmountDeposited:    ev.AmountDeposited,
				MinAmountRecv:      ev.MinAmountRecv,
				DestinationChainID: ev.ChainIdDestination,
				Beneficiary:        ev.BeneficiaryAddress,
				BlockNumber:        ev.Raw.BlockNumber,
				TxHash:             ev.Raw.TxHash,
				LogIndex:           ev.Raw.Index,
			})
		}
		return classify("FilterNewIntent", iter.Error())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query NewIntent events: %w", err)
	}
	return events, nil
}

// QueryNewIntentBids returns NewIntentBid events in [from, to]
func (c *Client) QueryNewIntentBids(ctx context.Context, from, to uint64) ([]*NewIntentBidEvent, error) {
	var events []*NewIntentBidEvent
	err := c.retry(ctx, "FilterNewIntentBid", func() error {
		events = events[:0]
		iter, err := c.contract.FilterNewIntentBid(&bind.FilterOpts{Start: from, End: &to, Context: ctx}, nil, nil, nil)
		if err != nil {
			return classify("FilterNewIntentBid", err)
		}
		defer iter.Close()

		for iter.Next() {
			ev := iter.Event
			events = append(events, &NewIntentBidEvent{
				ChainID:         c.config.ChainID,
				SourceChainID:   ev.SourceChainId,
				SourceIntentUID: ev.SourceIntentUid,
				BidUID:          ev.BidUid,
				AmountProposed:  ev.AmountProposed,
				BlockNumber:     ev.Raw.BlockNumber,
				TxHash:          ev.Raw.TxHash,
				LogIndex:        ev.Raw.Index,
			})
		}
		return classify("FilterNewIntentBid", iter.Error())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query NewIntentBid events: %w", err)
	}
	return events, nil
}

// GetIntent reads the contract view of an intent created on this chain
func (c *Client) GetIntent(ctx context.Context, intentUID *big.Int) (*IntentView, error) {
	var view *IntentView
	err := c.retry(ctx, "getIntent", func() error {
		out, err := c.contract.GetIntent(&bind.CallOpts{Context: ctx}, intentUID)
		if err != nil {
			return classify("getIntent", err)
		}
		view = intentViewFrom(out)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get intent %s: %w", intentUID, err)
	}
	return view, nil
}

// GetBid reads the contract view of a bid posted on this chain
func (c *Client) GetBid(ctx context.Context, bidUID *big.Int) (*BidView, error) {
	var view *BidView
	err := c.retry(ctx, "getBid", func() error {
		out, err := c.contract.GetBid(&bind.CallOpts{Context: ctx}, bidUID)
		if err != nil {
			return classify("getBid", err)
		}
		view = bidViewFrom(out)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get bid %s: %w", bidUID, err)
	}
	return view, nil
}

// GenerateKey calls the contract's generateKey view
func (c *Client) GenerateKey(ctx context.Context, sourceChainID, intentUID *big.Int) ([32]byte, error) {
	var key [32]byte
	err := c.retry(ctx, "generateKey", func() error {
		out, err := c.contract.GenerateKey(&bind.CallOpts{Context: ctx}, sourceChainID, intentUID)
		if err != nil {
			return classify("generateKey", err)
		}
		key = out
		return nil
	})
	return key, err
}

// Submit signs and broadcasts call without waiting for a receipt.
// The transaction is signed once per nonce and the same bytes are re-broadcast on
// transport errors, so a lost acknowledgement never produces a second transaction.
// Reverts are returned as *RevertError and a stale nonce is refreshed once.
func (c *Client) Submit(ctx context.Context, signer Signer, call Call) (common.Hash, error) {
	start := time.Now()
	method := string(call.Method)

	var txHash common.Hash
	err := c.nonces.WithNonce(ctx, signer.Address(), func(nonce uint64) error {
		opts, err := c.transactOpts(ctx, signer, call, nonce)
		if err != nil {
			return err
		}
		opts.NoSend = true

		var tx *types.Transaction
		err = c.retry(ctx, method, func() error {
			signed, err := c.transact(opts, call)
			if err != nil {
				return classify(method, err)
			}
			tx = signed
			return nil
		})
		if err != nil {
			return err
		}
		if err := c.broadcast(ctx, method, tx); err != nil {
			return err
		}
		txHash = tx.Hash()
		return nil
	})

	metrics.SubmissionDuration.WithLabelValues(c.config.Name, method).Observe(time.Since(start).Seconds())

	if err != nil {
		status := "failed"
		if IsRevert(err) {
			status = "reverted"
		}
		metrics.TransactionsSent.WithLabelValues(c.config.Name, method, status).Inc()
		c.logger.Warn("Transaction submission failed",
			zap.String("method", method),
			zap.String("from", signer.Address().Hex()),
			zap.Error(err))
		return common.Hash{}, err
	}

	metrics.TransactionsSent.WithLabelValues(c.config.Name, method, "submitted").Inc()
	c.logger.Info("Transaction submitted",
		zap.String("method", method),
		zap.String("from", signer.Address().Hex()),
		zap.String("tx_hash", txHash.Hex()))

	return txHash, nil
}

// broadcast sends a signed transaction, retrying transport errors with the same
// bytes. After a transport error the node may already hold the transaction, so
// "already known" counts as success and a nonce rejection is checked against the
// transaction hash before it is reported as stale.
func (c *Client) broadcast(ctx context.Context, method string, tx *types.Transaction) error {
	maybeSent := false
	return c.retry(ctx, method, func() error {
		err := c.backend.SendTransaction(ctx, tx)
		if err == nil || isAlreadyKnown(err) {
			return nil
		}
		cerr := classify(method, err)
		if errors.Is(cerr, ErrStaleNonce) && maybeSent {
			known, kerr := c.txKnown(ctx, tx.Hash())
			if kerr != nil {
				return kerr
			}
			if known {
				c.logger.Info("Transaction already accepted by node",
					zap.String("method", method),
					zap.String("tx_hash", tx.Hash().Hex()))
				return nil
			}
		}
		if IsTransport(cerr) {
			maybeSent = true
		}
		return cerr
	})
}

// txKnown reports whether the node has txHash pending or mined
func (c *Client) txKnown(ctx context.Context, txHash common.Hash) (bool, error) {
	_, _, err := c.backend.TransactionByHash(ctx, txHash)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ethereum.NotFound) {
		return false, nil
	}
	return false, classify("TransactionByHash", err)
}

func (c *Client) transact(opts *bind.TransactOpts, call Call) (*types.Transaction, error) {
	raw := &contracts.GoldenGateTransactorRaw{Contract: &c.contract.GoldenGateTransactor}
	return raw.Transact(opts, string(call.Method), call.Args...)
}

func (c *Client) transactOpts(ctx context.Context, signer Signer, call Call, nonce uint64) (*bind.TransactOpts, error) {
	opts, err := signer.TransactOpts(ctx, c.chainID)
	if err != nil {
		return nil, err
	}

	opts.Nonce = new(big.Int).SetUint64(nonce)
	opts.GasLimit = c.gasLimit(call)
	if call.Value != nil {
		opts.Value = new(big.Int).Set(call.Value)
	}

	gasPrice, err := c.gasPrice(ctx)
	if err != nil {
		return nil, err
	}
	opts.GasPrice = gasPrice
	return opts, nil
}

func (c *Client) gasLimit(call Call) uint64 {
	if call.GasLimit != 0 {
		return call.GasLimit
	}
	if call.Method == MethodProposeNativeSolution && c.config.ProposeGasLimit != 0 {
		return c.config.ProposeGasLimit
	}
	return c.config.GasLimit
}

// gasPrice returns the fixed price if configured, else the node's suggestion capped
// at the configured maximum. nil leaves pricing to the binding.
func (c *Client) gasPrice(ctx context.Context) (*big.Int, error) {
	if fixed := c.config.GasPrice(); fixed != nil {
		return fixed, nil
	}
	maxPrice := c.config.MaxGasPrice()
	if maxPrice == nil {
		return nil, nil
	}

	var suggested *big.Int
	err := c.retry(ctx, "SuggestGasPrice", func() error {
		p, err := c.backend.SuggestGasPrice(ctx)
		if err != nil {
			return classify("SuggestGasPrice", err)
		}
		suggested = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas price: %w", err)
	}

	if suggested.Cmp(maxPrice) > 0 {
		c.logger.Warn("Suggested gas price exceeds maximum",
			zap.String("suggested", suggested.String()),
			zap.String("max", maxPrice.String()))
		return maxPrice, nil
	}
	return suggested, nil
}

// WaitMined blocks until tx is mined. Only the operator CLI uses it; the
// coordinator never waits for receipts.
func (c *Client) WaitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		receipt, err := c.backend.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, classify("TransactionReceipt", err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
