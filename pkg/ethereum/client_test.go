package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/goldengate-middleware/pkg/config"
	"github.com/chainsafe/goldengate-middleware/pkg/ethereum/contracts"
)

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

var (
	testContract    = common.HexToAddress("0xFfe8e2f2aA5BB81E13EDc3b5c51be045d97f1A1A")
	testBeneficiary = common.HexToAddress("0x3000000000000000000000000000000000000003")
)

func testChainConfig() *config.ChainConfig {
	return &config.ChainConfig{
		Name:               "sepolia",
		ChainID:            11155111,
		RPCURL:             "http://localhost:8545",
		Contract:           testContract.Hex(),
		ConfirmationBlocks: 2,
		GasLimit:           200000,
		ProposeGasLimit:    2000000,
		GasPriceWei:        "10000000000",
		Retry: config.RetryConfig{
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
			MaxElapsedTime:  time.Second,
		},
	}
}

func newTestClient(t *testing.T, backend *MockBackend, store NonceStore) *Client {
	t.Helper()
	c, err := NewClientWithBackend(testChainConfig(), backend, store, zap.NewNop())
	require.NoError(t, err)
	return c
}

func newTestSigner(t *testing.T) *PrivateKeySigner {
	t.Helper()
	s, err := NewPrivateKeySigner("0x" + testKey)
	require.NoError(t, err)
	return s
}

func TestQueryNewIntents(t *testing.T) {
	backend := &MockBackend{
		FilterLogsFunc: func(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
			if q.FromBlock.Uint64() != 100 || q.ToBlock.Uint64() != 110 {
				return nil, fmt.Errorf("unexpected range %s-%s", q.FromBlock, q.ToBlock)
			}
			return []types.Log{
				newIntentLog(testContract, 101, 1, 1_000_000_000_000_000, 900_000_000_000_000, 534353, testBeneficiary),
				newIntentLog(testContract, 105, 2, 2000, 1500, 534353, testBeneficiary),
			}, nil
		},
	}
	c := newTestClient(t, backend, nil)

	events, err := c.QueryNewIntents(context.Background(), 100, 110)
	require.NoError(t, err)
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, uint64(11155111), first.ChainID)
	assert.Equal(t, int64(1), first.IntentUID.Int64())
	assert.Equal(t, "1000000000000000", first.AmountDeposited.String())
	assert.Equal(t, "900000000000000", first.MinAmountRecv.String())
	assert.Equal(t, int64(534353), first.DestinationChainID.Int64())
	assert.Equal(t, testBeneficiary, first.Beneficiary)
	assert.Equal(t, uint64(101), first.BlockNumber)
	assert.Equal(t, uint64(105), events[1].BlockNumber)
}

func TestQueryNewIntentBids(t *testing.T) {
	backend := &MockBackend{
		FilterLogsFunc: func(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
			return []types.Log{newIntentBidLog(testContract, 7, 11155111, 1, 4, 900)}, nil
		},
	}
	c := newTestClient(t, backend, nil)

	events, err := c.QueryNewIntentBids(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(11155111), events[0].SourceChainID.Int64())
	assert.Equal(t, int64(1), events[0].SourceIntentUID.Int64())
	assert.Equal(t, int64(4), events[0].BidUID.Int64())
	assert.Equal(t, int64(900), events[0].AmountProposed.Int64())
}

func TestQuery_RetriesTransportErrors(t *testing.T) {
	var calls int32
	backend := &MockBackend{
		FilterLogsFunc: func(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
			if atomic.AddInt32(&calls, 1) < 3 {
				return nil, errors.New("dial tcp: connection refused")
			}
			return []types.Log{newIntentLog(testContract, 1, 9, 10, 5, 1, testBeneficiary)}, nil
		},
	}
	c := newTestClient(t, backend, nil)

	events, err := c.QueryNewIntents(context.Background(), 0, 5)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetIntentAndBid(t *testing.T) {
	parsed := goldenGateABI()
	owner := common.HexToAddress("0x1000000000000000000000000000000000000001")
	solver := common.HexToAddress("0x2000000000000000000000000000000000000002")

	backend := &MockBackend{
		CallContractFunc: func(ctx context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
			switch {
			case methodIs(call.Data, "getIntent"):
				return parsed.Methods["getIntent"].Outputs.Pack(contracts.GoldenGateIntent{
					Amount:             big.NewInt(1000),
					MinAmountRecv:      big.NewInt(900),
					ChainId:            534353,
					BeneficiaryAddress: testBeneficiary,
					Owner:              owner,
					Fulfiller:          solver,
					Timestamp:          big.NewInt(1700000000),
				})
			case methodIs(call.Data, "getBid"):
				return parsed.Methods["getBid"].Outputs.Pack(contracts.GoldenGateBid{
					SourceChainId:  big.NewInt(11155111),
					IntentUid:      big.NewInt(1),
					AmountProposed: big.NewInt(900),
					Proposer:       solver,
					Destination:    solver,
					Forwarding:     solver,
					Executed:       true,
					Timestamp:      big.NewInt(1700000100),
				})
			}
			return nil, errors.New("unexpected call")
		},
	}
	c := newTestClient(t, backend, nil)

	iv, err := c.GetIntent(context.Background(), big.NewInt(1))
	require.NoError(t, err)
	assert.True(t, iv.Exists())
	assert.Equal(t, uint32(534353), iv.DestinationChainID)
	assert.Equal(t, solver, iv.Fulfiller)
	assert.Equal(t, int64(1700000000), iv.Timestamp.Unix())

	bv, err := c.GetBid(context.Background(), big.NewInt(4))
	require.NoError(t, err)
	assert.True(t, bv.Exists())
	assert.True(t, bv.Executed)
	assert.False(t, bv.Returned)
	assert.Equal(t, int64(900), bv.AmountProposed.Int64())
}

func TestSubmit_AllocatesSequentialNonces(t *testing.T) {
	backend := &MockBackend{
		PendingNonceAtFunc: func(ctx context.Context, account common.Address) (uint64, error) {
			return 5, nil
		},
	}
	store := &MockNonceStore{}
	c := newTestClient(t, backend, store)
	signer := newTestSigner(t)

	call := ProposeNativeSolutionCall(big.NewInt(900), big.NewInt(11155111), big.NewInt(1), signer.Address(), signer.Address())
	_, err := c.Submit(context.Background(), signer, call)
	require.NoError(t, err)
	_, err = c.Submit(context.Background(), signer, AcceptBidCall(big.NewInt(4), big.NewInt(1)))
	require.NoError(t, err)

	txs := backend.sent()
	require.Len(t, txs, 2)
	assert.Equal(t, uint64(5), txs[0].Nonce())
	assert.Equal(t, uint64(6), txs[1].Nonce())
	assert.Equal(t, uint64(2000000), txs[0].Gas())
	assert.Equal(t, uint64(200000), txs[1].Gas())
	assert.Equal(t, int64(900), txs[0].Value().Int64())
	assert.Equal(t, int64(10_000_000_000), txs[0].GasPrice().Int64())
	assert.Equal(t, testContract, *txs[0].To())

	from, err := types.Sender(types.LatestSignerForChainID(big.NewInt(11155111)), txs[1])
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), from)

	n, found, _ := store.GetNonce(context.Background(), 11155111, signer.Address().Hex())
	assert.True(t, found)
	assert.Equal(t, uint64(6), n)
}

func TestSubmit_PersistedNonceWinsOnStartup(t *testing.T) {
	backend := &MockBackend{
		PendingNonceAtFunc: func(ctx context.Context, account common.Address) (uint64, error) {
			return 3, nil
		},
	}
	signer := newTestSigner(t)
	store := &MockNonceStore{}
	require.NoError(t, store.SetNonce(context.Background(), 11155111, signer.Address().Hex(), 9))
	c := newTestClient(t, backend, store)

	_, err := c.Submit(context.Background(), signer, RejectBidsCall(big.NewInt(1)))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), backend.sent()[0].Nonce())
}

func TestSubmit_StaleNonceRefreshesOnce(t *testing.T) {
	var pendingCalls, sendCalls int32
	backend := &MockBackend{
		PendingNonceAtFunc: func(ctx context.Context, account common.Address) (uint64, error) {
			if atomic.AddInt32(&pendingCalls, 1) == 1 {
				return 1, nil
			}
			return 7, nil
		},
		SendTransactionFunc: func(ctx context.Context, tx *types.Transaction) error {
			if atomic.AddInt32(&sendCalls, 1) == 1 {
				return errors.New("nonce too low: next nonce 7, tx nonce 1")
			}
			return nil
		},
	}
	c := newTestClient(t, backend, nil)
	signer := newTestSigner(t)

	_, err := c.Submit(context.Background(), signer, WithdrawNativeBidCall(big.NewInt(4)))
	require.NoError(t, err)
	txs := backend.sent()
	require.Len(t, txs, 1)
	assert.Equal(t, uint64(7), txs[0].Nonce())
	assert.Equal(t, int32(2), atomic.LoadInt32(&pendingCalls))
}

func TestSubmit_StaleNonceTwiceFails(t *testing.T) {
	var sendCalls int32
	backend := &MockBackend{
		SendTransactionFunc: func(ctx context.Context, tx *types.Transaction) error {
			atomic.AddInt32(&sendCalls, 1)
			return errors.New("nonce too low")
		},
	}
	c := newTestClient(t, backend, nil)

	_, err := c.Submit(context.Background(), newTestSigner(t), RejectBidsCall(big.NewInt(1)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStaleNonce))
	assert.Equal(t, int32(2), atomic.LoadInt32(&sendCalls))
}

func TestSubmit_RevertIsNotRetried(t *testing.T) {
	var sendCalls int32
	backend := &MockBackend{
		SendTransactionFunc: func(ctx context.Context, tx *types.Transaction) error {
			atomic.AddInt32(&sendCalls, 1)
			return errors.New("execution reverted: intent not open")
		},
	}
	c := newTestClient(t, backend, nil)

	_, err := c.Submit(context.Background(), newTestSigner(t), AcceptBidCall(big.NewInt(4), big.NewInt(1)))
	require.Error(t, err)
	assert.True(t, IsRevert(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&sendCalls))
}

func TestSubmit_TransportRetriesKeepNonce(t *testing.T) {
	var sendCalls int32
	backend := &MockBackend{
		PendingNonceAtFunc: func(ctx context.Context, account common.Address) (uint64, error) {
			return 2, nil
		},
		SendTransactionFunc: func(ctx context.Context, tx *types.Transaction) error {
			if atomic.AddInt32(&sendCalls, 1) < 3 {
				return errors.New("i/o timeout")
			}
			return nil
		},
	}
	c := newTestClient(t, backend, nil)

	hash, err := c.Submit(context.Background(), newTestSigner(t), SettleNativeIntentCall(big.NewInt(11155111), big.NewInt(1), big.NewInt(4)))
	require.NoError(t, err)
	txs := backend.sent()
	require.Len(t, txs, 1)
	assert.Equal(t, uint64(2), txs[0].Nonce())
	assert.Equal(t, txs[0].Hash(), hash)
}

func TestSubmit_LostAckIsNotResent(t *testing.T) {
	pool := newMempool(1)
	backend := &MockBackend{
		PendingNonceAtFunc: func(ctx context.Context, account common.Address) (uint64, error) {
			return 4, nil
		},
		SendTransactionFunc: pool.send,
		TransactionByHashFn: pool.lookup,
	}
	store := &MockNonceStore{}
	c := newTestClient(t, backend, store)
	signer := newTestSigner(t)

	hash, err := c.Submit(context.Background(), signer, AcceptBidCall(big.NewInt(4), big.NewInt(1)))
	require.NoError(t, err)
	assert.Equal(t, 1, pool.size())
	tx, _, err := pool.lookup(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), tx.Nonce())

	n, found, _ := store.GetNonce(context.Background(), 11155111, signer.Address().Hex())
	assert.True(t, found)
	assert.Equal(t, uint64(4), n)

	// the next call continues from the accepted transaction
	_, err = c.Submit(context.Background(), signer, RejectBidsCall(big.NewInt(1)))
	require.NoError(t, err)
	assert.Equal(t, 2, pool.size())
}

func TestSubmit_MinedAfterLostAck(t *testing.T) {
	var pendingCalls, sendCalls int32
	var first common.Hash
	backend := &MockBackend{
		PendingNonceAtFunc: func(ctx context.Context, account common.Address) (uint64, error) {
			atomic.AddInt32(&pendingCalls, 1)
			return 2, nil
		},
		SendTransactionFunc: func(ctx context.Context, tx *types.Transaction) error {
			if atomic.AddInt32(&sendCalls, 1) == 1 {
				first = tx.Hash()
				return errors.New("i/o timeout")
			}
			return errors.New("nonce too low: next nonce 3, tx nonce 2")
		},
		TransactionByHashFn: func(ctx context.Context, txHash common.Hash) (*types.Transaction, bool, error) {
			if txHash == first {
				return nil, false, nil
			}
			return nil, false, ethereum.NotFound
		},
	}
	c := newTestClient(t, backend, nil)

	hash, err := c.Submit(context.Background(), newTestSigner(t), SettleNativeIntentCall(big.NewInt(11155111), big.NewInt(1), big.NewInt(4)))
	require.NoError(t, err)
	assert.Equal(t, first, hash)
	assert.Equal(t, int32(2), atomic.LoadInt32(&sendCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&pendingCalls))
}

func TestSubmit_UnknownAfterLostAckRefreshes(t *testing.T) {
	var pendingCalls, sendCalls int32
	backend := &MockBackend{
		PendingNonceAtFunc: func(ctx context.Context, account common.Address) (uint64, error) {
			if atomic.AddInt32(&pendingCalls, 1) == 1 {
				return 2, nil
			}
			return 5, nil
		},
		SendTransactionFunc: func(ctx context.Context, tx *types.Transaction) error {
			switch atomic.AddInt32(&sendCalls, 1) {
			case 1:
				return errors.New("i/o timeout")
			case 2:
				return errors.New("nonce too low")
			}
			return nil
		},
	}
	c := newTestClient(t, backend, nil)

	_, err := c.Submit(context.Background(), newTestSigner(t), RejectBidsCall(big.NewInt(1)))
	require.NoError(t, err)
	txs := backend.sent()
	require.Len(t, txs, 1)
	assert.Equal(t, uint64(5), txs[0].Nonce())
	assert.Equal(t, int32(2), atomic.LoadInt32(&pendingCalls))
}

func TestGasPrice_CappedSuggestion(t *testing.T) {
	cfg := testChainConfig()
	cfg.GasPriceWei = ""
	cfg.MaxGasPriceWei = "5000"
	backend := &MockBackend{
		SuggestGasPriceFunc: func(ctx context.Context) (*big.Int, error) { return big.NewInt(9000), nil },
	}
	c, err := NewClientWithBackend(cfg, backend, nil, zap.NewNop())
	require.NoError(t, err)

	price, err := c.gasPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5000), price.Int64())
}

func TestSafeBlock(t *testing.T) {
	backend := &MockBackend{
		HeaderByNumberFunc: func(ctx context.Context, number *big.Int) (*types.Header, error) {
			return &types.Header{Number: big.NewInt(100)}, nil
		},
	}
	c := newTestClient(t, backend, nil)

	safe, err := c.SafeBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(98), safe)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err       string
		stale     bool
		revert    bool
		transport bool
	}{
		{err: "nonce too low", stale: true},
		{err: "replacement transaction underpriced", stale: true},
		{err: "already known", transport: true},
		{err: "execution reverted: bid too small", revert: true},
		{err: "insufficient funds for gas * price + value", revert: true},
		{err: "dial tcp 127.0.0.1:8545: connection refused", transport: true},
		{err: "502 Bad Gateway", transport: true},
	}
	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			err := classify("acceptBid", errors.New(tt.err))
			assert.Equal(t, tt.stale, errors.Is(err, ErrStaleNonce))
			assert.Equal(t, tt.revert, IsRevert(err))
			assert.Equal(t, tt.transport, IsTransport(err))
		})
	}

	assert.Nil(t, classify("x", nil))
	assert.ErrorIs(t, classify("x", context.Canceled), context.Canceled)
	assert.False(t, IsTransport(classify("x", context.Canceled)))
}

func TestIntentKeyHash(t *testing.T) {
	a := IntentKeyHash(big.NewInt(11155111), big.NewInt(1))
	b := IntentKeyHash(big.NewInt(11155111), big.NewInt(2))
	assert.NotEqual(t, a, b)

	want := crypto.Keccak256(
		common.LeftPadBytes(big.NewInt(11155111).Bytes(), 32),
		common.LeftPadBytes(big.NewInt(1).Bytes(), 32),
	)
	assert.Equal(t, want, a[:])
}

func TestEtherFormatting(t *testing.T) {
	wei, err := ParseEther("0.001")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000", wei.String())
	assert.Equal(t, "0.0009", FormatEther(big.NewInt(900_000_000_000_000)))

	_, err = ParseEther("one")
	assert.Error(t, err)
}
