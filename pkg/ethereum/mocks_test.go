package ethereum

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"sync"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/chainsafe/goldengate-middleware/pkg/ethereum/contracts"
)

// MockBackend is a func-field implementation of Backend. Unset methods return zero values.
type MockBackend struct {
	Backend

	mu  sync.Mutex
	txs []*types.Transaction

	CallContractFunc     func(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	FilterLogsFunc       func(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	HeaderByNumberFunc   func(ctx context.Context, number *big.Int) (*types.Header, error)
	PendingNonceAtFunc   func(ctx context.Context, account common.Address) (uint64, error)
	SendTransactionFunc  func(ctx context.Context, tx *types.Transaction) error
	SuggestGasPriceFunc  func(ctx context.Context) (*big.Int, error)
	TransactionReceiptFn func(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	TransactionByHashFn  func(ctx context.Context, txHash common.Hash) (*types.Transaction, bool, error)
}

func (m *MockBackend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

func (m *MockBackend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

func (m *MockBackend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if m.CallContractFunc != nil {
		return m.CallContractFunc(ctx, call, blockNumber)
	}
	return nil, nil
}

func (m *MockBackend) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	if m.FilterLogsFunc != nil {
		return m.FilterLogsFunc(ctx, q)
	}
	return nil, nil
}

func (m *MockBackend) SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errors.New("subscriptions not supported")
}

func (m *MockBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	if m.HeaderByNumberFunc != nil {
		return m.HeaderByNumberFunc(ctx, number)
	}
	return &types.Header{Number: big.NewInt(0)}, nil
}

func (m *MockBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	if m.PendingNonceAtFunc != nil {
		return m.PendingNonceAtFunc(ctx, account)
	}
	return 0, nil
}

func (m *MockBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	if m.SuggestGasPriceFunc != nil {
		return m.SuggestGasPriceFunc(ctx)
	}
	return big.NewInt(1_000_000_000), nil
}

func (m *MockBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (m *MockBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	return 100000, nil
}

func (m *MockBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if m.SendTransactionFunc != nil {
		if err := m.SendTransactionFunc(ctx, tx); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.txs = append(m.txs, tx)
	m.mu.Unlock()
	return nil
}

func (m *MockBackend) ChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(11155111), nil
}

func (m *MockBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if m.TransactionReceiptFn != nil {
		return m.TransactionReceiptFn(ctx, txHash)
	}
	return nil, ethereum.NotFound
}

func (m *MockBackend) TransactionByHash(ctx context.Context, txHash common.Hash) (*types.Transaction, bool, error) {
	if m.TransactionByHashFn != nil {
		return m.TransactionByHashFn(ctx, txHash)
	}
	return nil, false, ethereum.NotFound
}

// mempool accepts each distinct transaction once and answers later copies of the
// same hash the way geth does
type mempool struct {
	mu       sync.Mutex
	pool     map[common.Hash]*types.Transaction
	dropAcks int
}

func newMempool(dropAcks int) *mempool {
	return &mempool{pool: make(map[common.Hash]*types.Transaction), dropAcks: dropAcks}
}

func (p *mempool) send(ctx context.Context, tx *types.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.pool[tx.Hash()]; ok {
		return errors.New("already known")
	}
	for _, other := range p.pool {
		if other.Nonce() == tx.Nonce() {
			return errors.New("nonce too low")
		}
	}
	p.pool[tx.Hash()] = tx
	if p.dropAcks > 0 {
		p.dropAcks--
		return errors.New("read tcp 127.0.0.1:8545: i/o timeout")
	}
	return nil
}

func (p *mempool) lookup(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if tx, ok := p.pool[hash]; ok {
		return tx, true, nil
	}
	return nil, false, ethereum.NotFound
}

func (p *mempool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pool)
}

func (m *MockBackend) sent() []*types.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*types.Transaction(nil), m.txs...)
}

// MockNonceStore is an in-memory NonceStore
type MockNonceStore struct {
	mu     sync.Mutex
	nonces map[string]uint64
}

func (s *MockNonceStore) GetNonce(ctx context.Context, chainID uint64, address string) (uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nonces[address]
	return n, ok, nil
}

func (s *MockNonceStore) SetNonce(ctx context.Context, chainID uint64, address string, nonce uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nonces == nil {
		s.nonces = make(map[string]uint64)
	}
	s.nonces[address] = nonce
	return nil
}

func goldenGateABI() *abi.ABI {
	parsed, err := contracts.GoldenGateMetaData.GetAbi()
	if err != nil {
		panic(err)
	}
	return parsed
}

func uintTopic(v int64) common.Hash {
	return common.BigToHash(big.NewInt(v))
}

// newIntentLog builds a NewIntent log as the contract would emit it
func newIntentLog(contract common.Address, block uint64, uid, amount, minRecv, dest int64, beneficiary common.Address) types.Log {
	ev := goldenGateABI().Events[EventNewIntent]
	data, err := ev.Inputs.NonIndexed().Pack(big.NewInt(amount), big.NewInt(minRecv), big.NewInt(dest), beneficiary)
	if err != nil {
		panic(err)
	}
	return types.Log{
		Address:     contract,
		Topics:      []common.Hash{ev.ID, uintTopic(uid)},
		Data:        data,
		BlockNumber: block,
		TxHash:      common.BigToHash(big.NewInt(int64(block)*1000 + uid)),
	}
}

// newIntentBidLog builds a NewIntentBid log as the contract would emit it
func newIntentBidLog(contract common.Address, block uint64, sourceChain, intentUID, bidUID, amount int64) types.Log {
	ev := goldenGateABI().Events[EventNewIntentBid]
	data, err := ev.Inputs.NonIndexed().Pack(big.NewInt(amount))
	if err != nil {
		panic(err)
	}
	return types.Log{
		Address:     contract,
		Topics:      []common.Hash{ev.ID, uintTopic(sourceChain), uintTopic(intentUID), uintTopic(bidUID)},
		Data:        data,
		BlockNumber: block,
	}
}

// methodIs reports whether calldata targets the named method
func methodIs(data []byte, name string) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], goldenGateABI().Methods[name].ID)
}
