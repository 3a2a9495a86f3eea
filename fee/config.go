// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package fee

import (
	"encoding/binary"
	"time"

	"github.com/Fantom-foundation/Otello/go/backend"
	"github.com/Fantom-foundation/Otello/go/common"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	// HundredPercent is the fixed-point scale of the miner cut,
	// in parts per 100'000.
	HundredPercent uint32 = 100_000
	// MaxMinerCut caps the miner cut at 90%.
	MaxMinerCut uint32 = 90_000
	// MinGasPrice is the lowest accepted gas price, 1 Gwei.
	MinGasPrice uint64 = 1_000_000_000
	// GracePeriod is the fixed delay between a gas price change request
	// and its activation, protecting transactions already built against
	// the old price.
	GracePeriod = 180 * time.Second
)

// Config status values.
const (
	StatusActive uint32 = 0
)

const configVersion = 1

// Errors reported by configuration validation.
const (
	ErrNotInitialized     = common.ConstError("fee configuration not initialized")
	ErrAlreadyInitialized = common.ConstError("contract already initialized")
	ErrMissingGasPrice    = common.ConstError("All required fee parameters not specified: missing gas_price")
	ErrMissingMinerCut    = common.ConstError("All required fee parameters not specified: missing miner_cut")
	ErrMinerCutTooHigh    = common.ConstError("miner_cut must <= 90%")
	ErrGasPriceTooLow     = common.ConstError("gas_price must >= 1Gwei")
	ErrTxGasPriceTooLow   = common.ConstError("gas price is too low")
)

// Config is the fee configuration singleton. The gas price field always
// holds the currently effective price; pending changes wait in the price
// queue until their activation time has been reached.
type Config struct {
	Version          uint8
	ChainID          uint64
	GenesisTime      time.Time
	IngressBridgeFee uint64 // native asset units charged on ingress transfers
	GasPrice         uint64
	MinerCut         uint32 // parts per 100'000
	Status           uint32
	GasParameters    GasParameters
}

// GasParameters are the intrinsic gas cost parameters consumed by the
// transaction envelope.
type GasParameters struct {
	MinimumGasPrice uint64
	TxNewAccount    uint64
	NewAccount      uint64
	TxCreate        uint64
	CodeDeposit     uint64
	SSet            uint64
}

// DefaultGasParameters provides the v1 cost schedule.
func DefaultGasParameters() GasParameters {
	return GasParameters{
		NewAccount:  25000,
		TxCreate:    32000,
		CodeDeposit: 200,
		SSet:        20000,
	}
}

// Parameters is a partial fee parameter update; absent fields leave the
// present configuration untouched.
type Parameters struct {
	GasPrice         *uint64
	MinerCut         *uint32
	IngressBridgeFee *uint64
}

// PriceEntry is one pending gas price change, activating once the ledger
// time reaches its activation time.
type PriceEntry struct {
	Time  time.Time
	Price uint64
}

// Store keeps the fee configuration singleton and the queue of pending
// gas price changes.
type Store struct {
	db backend.LevelDB
}

// NewStore creates a fee configuration store on the given database.
func NewStore(db backend.LevelDB) *Store {
	return &Store{db: db}
}

// Init writes the initial configuration. The gas price and the miner cut
// must be supplied explicitly; the ingress bridge fee may default to
// zero. Initializing twice is rejected.
func (s *Store) Init(now time.Time, chainID uint64, params Parameters) error {
	if _, err := s.Config(); err == nil {
		return ErrAlreadyInitialized
	} else if err != ErrNotInitialized {
		return err
	}
	if params.GasPrice == nil {
		return ErrMissingGasPrice
	}
	if params.MinerCut == nil {
		return ErrMissingMinerCut
	}
	if *params.MinerCut > MaxMinerCut {
		return ErrMinerCutTooHigh
	}
	if *params.GasPrice < MinGasPrice {
		return ErrGasPriceTooLow
	}
	config := Config{
		Version:       configVersion,
		ChainID:       chainID,
		GenesisTime:   now.Truncate(time.Second),
		GasPrice:      *params.GasPrice,
		MinerCut:      *params.MinerCut,
		Status:        StatusActive,
		GasParameters: DefaultGasParameters(),
	}
	if params.IngressBridgeFee != nil {
		config.IngressBridgeFee = *params.IngressBridgeFee
	}
	return s.putConfig(config)
}

// SetFeeParams applies a partial parameter update. The miner cut and the
// ingress bridge fee take effect immediately; a gas price change is
// deflected into the price queue and activates only after the grace
// period has elapsed. Two changes requested within the same time unit
// collapse to the latter value at the shared activation time.
func (s *Store) SetFeeParams(now time.Time, params Parameters) error {
	config, err := s.Config()
	if err != nil {
		return err
	}
	if params.MinerCut != nil {
		if *params.MinerCut > MaxMinerCut {
			return ErrMinerCutTooHigh
		}
		config.MinerCut = *params.MinerCut
	}
	if params.IngressBridgeFee != nil {
		config.IngressBridgeFee = *params.IngressBridgeFee
	}
	if params.GasPrice != nil {
		if *params.GasPrice < MinGasPrice {
			return ErrGasPriceTooLow
		}
		activation := now.Add(GracePeriod).Truncate(time.Second)
		if err := s.db.Put(priceKey(activation), priceValue(*params.GasPrice), nil); err != nil {
			return err
		}
	}
	return s.putConfig(config)
}

// SetGasParameters replaces the intrinsic gas cost schedule as a unit.
func (s *Store) SetGasParameters(params GasParameters) error {
	config, err := s.Config()
	if err != nil {
		return err
	}
	config.GasParameters = params
	return s.putConfig(config)
}

// ProcessPriceQueue applies all pending gas price changes whose
// activation time has been reached, in activation order, each exactly
// once. It is triggered opportunistically by state-changing events the
// system already observes.
func (s *Store) ProcessPriceQueue(now time.Time) error {
	config, err := s.Config()
	if err != nil {
		return err
	}

	iter := s.db.NewIterator(util.BytesPrefix([]byte{byte(backend.PriceQueueKey)}), nil)
	defer iter.Release()

	applied := false
	for iter.Next() {
		activation := time.Unix(int64(binary.BigEndian.Uint64(iter.Key()[1:9])), 0)
		if activation.After(now) {
			break
		}
		config.GasPrice = binary.BigEndian.Uint64(iter.Value())
		if err := s.db.Delete(iter.Key(), nil); err != nil {
			return err
		}
		applied = true
	}
	if err := iter.Error(); err != nil {
		return err
	}
	if !applied {
		return nil
	}
	return s.putConfig(config)
}

// PriceQueue lists the pending gas price changes in activation order.
func (s *Store) PriceQueue() ([]PriceEntry, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte{byte(backend.PriceQueueKey)}), nil)
	defer iter.Release()

	var queue []PriceEntry
	for iter.Next() {
		queue = append(queue, PriceEntry{
			Time:  time.Unix(int64(binary.BigEndian.Uint64(iter.Key()[1:9])), 0),
			Price: binary.BigEndian.Uint64(iter.Value()),
		})
	}
	return queue, iter.Error()
}

// CheckTxGasPrice validates the gas price declared by a transaction
// against the currently effective one.
func (s *Store) CheckTxGasPrice(txGasPrice uint64) error {
	config, err := s.Config()
	if err != nil {
		return err
	}
	if txGasPrice < config.GasPrice {
		return ErrTxGasPriceTooLow
	}
	return nil
}

// Config reads the configuration singleton.
func (s *Store) Config() (Config, error) {
	data, err := s.db.Get(configKey(), nil)
	if err != nil {
		if err == errors.ErrNotFound {
			return Config{}, ErrNotInitialized
		}
		return Config{}, err
	}
	return configFromBytes(data), nil
}

func (s *Store) putConfig(config Config) error {
	return s.db.Put(configKey(), configToBytes(config), nil)
}

const configSize = 1 + 8 + 8 + 8 + 8 + 4 + 4 + 6*8

func configToBytes(config Config) []byte {
	out := make([]byte, configSize)
	out[0] = config.Version
	binary.BigEndian.PutUint64(out[1:9], config.ChainID)
	binary.BigEndian.PutUint64(out[9:17], uint64(config.GenesisTime.Unix()))
	binary.BigEndian.PutUint64(out[17:25], config.IngressBridgeFee)
	binary.BigEndian.PutUint64(out[25:33], config.GasPrice)
	binary.BigEndian.PutUint32(out[33:37], config.MinerCut)
	binary.BigEndian.PutUint32(out[37:41], config.Status)
	gas := config.GasParameters
	for i, param := range []uint64{gas.MinimumGasPrice, gas.TxNewAccount, gas.NewAccount, gas.TxCreate, gas.CodeDeposit, gas.SSet} {
		binary.BigEndian.PutUint64(out[41+8*i:49+8*i], param)
	}
	return out
}

func configFromBytes(data []byte) Config {
	config := Config{
		Version:          data[0],
		ChainID:          binary.BigEndian.Uint64(data[1:9]),
		GenesisTime:      time.Unix(int64(binary.BigEndian.Uint64(data[9:17])), 0),
		IngressBridgeFee: binary.BigEndian.Uint64(data[17:25]),
		GasPrice:         binary.BigEndian.Uint64(data[25:33]),
		MinerCut:         binary.BigEndian.Uint32(data[33:37]),
		Status:           binary.BigEndian.Uint32(data[37:41]),
	}
	params := make([]uint64, 6)
	for i := range params {
		params[i] = binary.BigEndian.Uint64(data[41+8*i : 49+8*i])
	}
	config.GasParameters = GasParameters{
		MinimumGasPrice: params[0],
		TxNewAccount:    params[1],
		NewAccount:      params[2],
		TxCreate:        params[3],
		CodeDeposit:     params[4],
		SSet:            params[5],
	}
	return config
}

func configKey() []byte {
	return backend.ConfigStoreKey.StrToDBKey("config").ToBytes()
}

func priceKey(activation time.Time) []byte {
	timestamp := binary.BigEndian.AppendUint64([]byte{}, uint64(activation.Unix()))
	return backend.PriceQueueKey.ToDBKey(timestamp).ToBytes()
}

func priceValue(price uint64) []byte {
	return binary.BigEndian.AppendUint64([]byte{}, price)
}
