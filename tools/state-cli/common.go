package main

import (
	"github.com/Fantom-foundation/Otello/go/backend"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
	"github.com/urfave/cli/v2"
)

var dbDirectoryFlag = cli.StringFlag{
	Name:     "dir",
	Usage:    "the targeted state DB directory",
	Required: true,
}

// open opens the LevelDB instance holding the state tables.
func open(dir string) (*leveldb.DB, error) {
	return backend.OpenLevelDb(dir, nil)
}

// countRows counts the entries stored in the given table space.
func countRows(db *leveldb.DB, table backend.TableSpace) (int, error) {
	iter := db.NewIterator(util.BytesPrefix([]byte{byte(table)}), nil)
	defer iter.Release()
	count := 0
	for iter.Next() {
		count++
	}
	return count, iter.Error()
}
