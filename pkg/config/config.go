package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variables that override secrets from the config file
const (
	EnvUserPrivateKey   = "GOLDENGATE_USER_PRIVATE_KEY"
	EnvSolverPrivateKey = "GOLDENGATE_SOLVER_PRIVATE_KEY"
	EnvDatabasePassword = "GOLDENGATE_DATABASE_PASSWORD"
	EnvAdminJWTSecret   = "GOLDENGATE_ADMIN_JWT_SECRET"
)

// Signer types
const (
	SignerTypePrivateKey = "private_key"
	SignerTypeAWSKMS     = "aws_kms"
)

// Accept policies for the user role
const (
	AcceptFirstAcceptable = "first_acceptable"
	AcceptBestOffer       = "best_offer"
	AcceptManual          = "manual"
)

// Config represents the coordinator configuration
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Database       DatabaseConfig       `yaml:"database"`
	Chains         []ChainConfig        `yaml:"chains" validate:"required,min=1,dive"`
	User           UserConfig           `yaml:"user"`
	Solver         SolverConfig         `yaml:"solver"`
	Reconciliation ReconciliationConfig `yaml:"reconciliation"`
	Monitoring     MonitoringConfig     `yaml:"monitoring"`
	Admin          AdminConfig          `yaml:"admin"`
	Logging        LoggingConfig        `yaml:"logging"`
	Shutdown       ShutdownConfig       `yaml:"shutdown"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port int    `yaml:"port" default:"8080" validate:"min=1,max=65535"`

	ReadTimeout    time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" default:"30s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" default:"60s"`
	RequestTimeout time.Duration `yaml:"request_timeout" default:"60s"`
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig contains database connection settings.
// When disabled the coordinator keeps all state in memory.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"5432"`
	User     string `yaml:"user" default:"postgres"`
	Password string `yaml:"password"`
	Database string `yaml:"database" default:"goldengate"`
	SSLMode  string `yaml:"ssl_mode" default:"disable" validate:"oneof=disable require verify-ca verify-full"`
}

// RetryConfig controls exponential backoff for RPC transport failures
type RetryConfig struct {
	InitialInterval time.Duration `yaml:"initial_interval" default:"500ms"`
	MaxInterval     time.Duration `yaml:"max_interval" default:"10s"`
	MaxElapsedTime  time.Duration `yaml:"max_elapsed_time" default:"1m"`
}

// ChainConfig describes one chain hosting a GoldenGate contract
type ChainConfig struct {
	Name               string        `yaml:"name" validate:"required"`
	ChainID            uint64        `yaml:"chain_id" validate:"required"`
	RPCURL             string        `yaml:"rpc_url" validate:"required,url"`
	Contract           string        `yaml:"contract" validate:"required,eth_addr"`
	ConfirmationBlocks uint64        `yaml:"confirmation_blocks" default:"2"`
	PollingInterval    time.Duration `yaml:"polling_interval" default:"12s"`
	StartBlock         uint64        `yaml:"start_block"`
	LookbackBlocks     uint64        `yaml:"lookback_blocks" default:"1000"`
	MaxBlockRange      uint64        `yaml:"max_block_range" default:"2000" validate:"min=1"`
	GasLimit           uint64        `yaml:"gas_limit" default:"200000"`
	ProposeGasLimit    uint64        `yaml:"propose_gas_limit" default:"2000000"`
	GasPriceWei        string        `yaml:"gas_price_wei" validate:"omitempty,numeric"`
	MaxGasPriceWei     string        `yaml:"max_gas_price_wei" validate:"omitempty,numeric"`
	RPCRateLimit       float64       `yaml:"rpc_rate_limit" default:"10"`
	RPCBurst           int           `yaml:"rpc_burst" default:"5"`
	Retry              RetryConfig   `yaml:"retry"`
}

// GasPrice returns the fixed gas price, or nil when the node should suggest one
func (c *ChainConfig) GasPrice() *big.Int {
	return parseWei(c.GasPriceWei)
}

// MaxGasPrice returns the gas price cap, or nil when uncapped
func (c *ChainConfig) MaxGasPrice() *big.Int {
	return parseWei(c.MaxGasPriceWei)
}

// SignerConfig selects the signing identity of one role
type SignerConfig struct {
	Type       string `yaml:"type" default:"private_key" validate:"oneof=private_key aws_kms"`
	PrivateKey string `yaml:"private_key"`
	KMSKeyID   string `yaml:"kms_key_id"`
	KMSRegion  string `yaml:"kms_region"`
}

// UserConfig configures the intent owner role
type UserConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Signer           SignerConfig  `yaml:"signer"`
	SourceChains     []uint64      `yaml:"source_chains"`
	AcceptPolicy     string        `yaml:"accept_policy" default:"first_acceptable" validate:"oneof=first_acceptable best_offer manual"`
	CollectionWindow time.Duration `yaml:"collection_window" default:"30s"`
	// RejectAfter is how long an intent may stay open before rejectBids is sent. Zero disables it.
	RejectAfter time.Duration `yaml:"reject_after" default:"10m"`
	// ConfirmTimeout is how long an acceptBid or rejectBids may stay unconfirmed on
	// chain before the local transition is rolled back. Zero disables the check;
	// reverted calls are always rolled back.
	ConfirmTimeout time.Duration `yaml:"confirm_timeout" default:"10m"`
}

// SolverConfig configures the solver role
type SolverConfig struct {
	Enabled           bool          `yaml:"enabled"`
	Signer            SignerConfig  `yaml:"signer"`
	SourceChains      []uint64      `yaml:"source_chains"`
	DestinationChains []uint64      `yaml:"destination_chains"`
	Destination       string        `yaml:"destination" validate:"omitempty,eth_addr"`
	Forwarding        string        `yaml:"forwarding" validate:"omitempty,eth_addr"`
	FeeBps            uint64        `yaml:"fee_bps" validate:"max=10000"`
	MaxAmountWei      string        `yaml:"max_amount_wei" validate:"omitempty,numeric"`
	WithdrawAfter     time.Duration `yaml:"withdraw_after" default:"30m"`
	ReleaseFunds      bool          `yaml:"release_funds"`
}

// MaxAmount returns the largest intent amount the solver bids on, or nil when uncapped
func (c *SolverConfig) MaxAmount() *big.Int {
	return parseWei(c.MaxAmountWei)
}

// ReconciliationConfig contains settings for chain view reconciliation
type ReconciliationConfig struct {
	Enabled  bool          `yaml:"enabled" default:"true"`
	Interval time.Duration `yaml:"interval" default:"1m"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled bool `yaml:"enabled" default:"true"`
}

// AdminConfig protects the admin API with HS256 bearer tokens
type AdminConfig struct {
	Enabled   bool   `yaml:"enabled"`
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer" default:"goldengate"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level" default:"info"`
	Format     string `yaml:"format" default:"json" validate:"oneof=json console"`
	OutputPath string `yaml:"output_path" default:"stdout"`
}

// ShutdownConfig contains graceful shutdown settings
type ShutdownConfig struct {
	Timeout time.Duration `yaml:"timeout" default:"30s"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document, applies defaults and environment overrides, and validates the result
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvUserPrivateKey); v != "" {
		cfg.User.Signer.PrivateKey = v
	}
	if v := os.Getenv(EnvSolverPrivateKey); v != "" {
		cfg.Solver.Signer.PrivateKey = v
	}
	if v := os.Getenv(EnvDatabasePassword); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv(EnvAdminJWTSecret); v != "" {
		cfg.Admin.JWTSecret = v
	}
}

// Validate checks struct tags and the cross-field rules tags cannot express
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	seen := make(map[uint64]struct{}, len(c.Chains))
	for _, ch := range c.Chains {
		if _, ok := seen[ch.ChainID]; ok {
			return fmt.Errorf("duplicate chain_id %d", ch.ChainID)
		}
		seen[ch.ChainID] = struct{}{}
	}

	if c.User.Enabled {
		if err := validateSigner("user", &c.User.Signer); err != nil {
			return err
		}
		if err := c.requireChains("user.source_chains", c.User.SourceChains); err != nil {
			return err
		}
	}
	if c.Solver.Enabled {
		if err := validateSigner("solver", &c.Solver.Signer); err != nil {
			return err
		}
		if err := c.requireChains("solver.source_chains", c.Solver.SourceChains); err != nil {
			return err
		}
		if err := c.requireChains("solver.destination_chains", c.Solver.DestinationChains); err != nil {
			return err
		}
	}
	if c.User.Enabled && c.Solver.Enabled && c.User.Signer == c.Solver.Signer {
		return errors.New("user and solver must use distinct signers")
	}
	if c.Admin.Enabled && c.Admin.JWTSecret == "" {
		return errors.New("admin.jwt_secret is required when admin is enabled")
	}
	if c.Database.Enabled && c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	return nil
}

func (c *Config) requireChains(field string, ids []uint64) error {
	if len(ids) == 0 {
		return fmt.Errorf("%s is required", field)
	}
	for _, id := range ids {
		if c.Chain(id) == nil {
			return fmt.Errorf("%s references unknown chain %d", field, id)
		}
	}
	return nil
}

func validateSigner(role string, s *SignerConfig) error {
	switch s.Type {
	case SignerTypePrivateKey:
		if s.PrivateKey == "" {
			return fmt.Errorf("%s.signer.private_key is required", role)
		}
	case SignerTypeAWSKMS:
		if s.KMSKeyID == "" || s.KMSRegion == "" {
			return fmt.Errorf("%s.signer.kms_key_id and kms_region are required", role)
		}
	}
	return nil
}

// Chain returns the configuration of the given chain, or nil if it is not configured
func (c *Config) Chain(chainID uint64) *ChainConfig {
	for i := range c.Chains {
		if c.Chains[i].ChainID == chainID {
			return &c.Chains[i]
		}
	}
	return nil
}

// GetConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func parseWei(s string) *big.Int {
	if s == "" {
		return nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil
	}
	return v
}
