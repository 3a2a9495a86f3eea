package backend

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// TableSpace divide key-value storage into spaces by adding a prefix to the key.
type TableSpace byte

const (
	// AddressIndexKey is a tablespace mapping addresses to account ids
	AddressIndexKey TableSpace = 'A'
	// AccountStoreKey is a tablespace for account rows keyed by account id
	AccountStoreKey TableSpace = 'C'
	// SlotStoreKey is a tablespace for storage slots keyed by account id and slot key
	SlotStoreKey TableSpace = 'S'
	// CodeDepotKey is a tablespace for code blobs keyed by code id
	CodeDepotKey TableSpace = 'D'
	// CodeHashIndexKey is a tablespace mapping code hashes to code ids
	CodeHashIndexKey TableSpace = 'c'
	// StorageGCQueueKey is a tablespace for the FIFO queue of orphaned storage namespaces
	StorageGCQueueKey TableSpace = 'G'
	// CodeGCQueueKey is a tablespace for the FIFO queue of zero-referenced code blobs
	CodeGCQueueKey TableSpace = 'g'
	// ConfigStoreKey is a tablespace for the fee configuration singleton
	ConfigStoreKey TableSpace = 'F'
	// PriceQueueKey is a tablespace for pending gas price changes keyed by activation time
	PriceQueueKey TableSpace = 'Q'
	// VaultStoreKey is a tablespace for vault balances keyed by owner address
	VaultStoreKey TableSpace = 'V'
)

// DbKey expects max size of the 40B key (an 8B account id plus a 32B slot key)
// plus one byte for the table prefix.
type DbKey [41]byte

func (d DbKey) ToBytes() []byte {
	return d[:]
}

// ToDBKey converts the input key to its respective table space key
func (t TableSpace) ToDBKey(key []byte) DbKey {
	var dbKey DbKey
	dbKey[0] = byte(t)
	if n := copy(dbKey[1:], key); n < len(key) {
		panic(fmt.Sprintf("input key does not fit into dbkey: len(key) > len(DbKey)-1: %d > %d", len(key), len(dbKey)-1))
	}
	return dbKey
}

// StrToDBKey converts the input string key to its respective table space key
func (t TableSpace) StrToDBKey(key string) DbKey {
	var dbKey DbKey
	dbKey[0] = byte(t)
	copy(dbKey[1:], key)
	return dbKey
}

// LevelDB is an interface missing in original LevelDB design.
// It contains methods common for the LevelDB instance and its Transactions.
// It allows for easy switching between transactional and non-transactional accesses.
type LevelDB interface {

	// Get gets the value for the given key. It returns ErrNotFound if the
	// DB does not contain the key.
	//
	// The returned slice is its own copy, it is safe to modify the contents
	// of the returned slice.
	// It is safe to modify the contents of the argument after Get returns.
	Get(key []byte, ro *opt.ReadOptions) (value []byte, err error)

	// Has returns true if the DB does contain the given key.
	//
	// It is safe to modify the contents of the argument after Has returns.
	Has(key []byte, ro *opt.ReadOptions) (bool, error)

	// NewIterator returns an iterator for the latest snapshot of the
	// underlying DB.
	// The returned iterator is not safe for concurrent use, but it is safe to use
	// multiple iterators concurrently, with each in a dedicated goroutine.
	//
	// Slice allows slicing the iterator to only contains keys in the given
	// range. A nil Range.Start is treated as a key before all keys in the
	// DB. And a nil Range.Limit is treated as a key after all keys in
	// the DB.
	//
	// The iterator must be released after use, by calling Release method.
	//
	// Also read Iterator documentation of the leveldb/iterator package.
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator

	// Put sets the value for the given key. It overwrites any previous value
	// for that key; a DB is not a multi-map.
	//
	// It is safe to modify the contents of the arguments after Put returns.
	Put(key, value []byte, wo *opt.WriteOptions) error

	// Delete deletes the value for the given key.
	//
	// It is safe to modify the contents of the arguments after Delete returns.
	Delete(key []byte, wo *opt.WriteOptions) error

	// Write apply the given batch to the DB. The batch records will be applied
	// sequentially. Write might be used concurrently, when used concurrently and
	// batch is small enough, write will try to merge the batches.
	//
	// It is safe to modify the contents of the arguments after Write returns but
	// not before. Write will not modify content of the batch.
	Write(batch *leveldb.Batch, wo *opt.WriteOptions) error
}

// OpenLevelDb opens the LevelDB connection on the given directory path.
func OpenLevelDb(path string, options *opt.Options) (*leveldb.DB, error) {
	return leveldb.OpenFile(path, options)
}
