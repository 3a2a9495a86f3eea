package main

import (
	"fmt"
	"log"

	"github.com/Fantom-foundation/Otello/go/backend"
	"github.com/Fantom-foundation/Otello/go/fee"
	"github.com/urfave/cli/v2"
)

var getInfoCommand = cli.Command{
	Action: getInfo,
	Name:   "info",
	Usage:  "prints summary information about a state DB directory",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
	},
}

func getInfo(ctx *cli.Context) (err error) {
	dir := ctx.String(dbDirectoryFlag.Name)
	log.Printf("Opening state in %v ...", dir)
	db, err := open(dir)
	if err != nil {
		return err
	}
	defer func() {
		log.Printf("Closing state in %v ...", dir)
		if closeError := db.Close(); closeError != nil && err == nil {
			err = closeError
		}
	}()

	tables := []struct {
		name  string
		space backend.TableSpace
	}{
		{"accounts", backend.AccountStoreKey},
		{"storage slots", backend.SlotStoreKey},
		{"code blobs", backend.CodeDepotKey},
		{"vaults", backend.VaultStoreKey},
		{"queued storage sweeps", backend.StorageGCQueueKey},
		{"queued code sweeps", backend.CodeGCQueueKey},
	}
	for _, table := range tables {
		count, err := countRows(db, table.space)
		if err != nil {
			return err
		}
		fmt.Printf("%-22s %d\n", table.name+":", count)
	}

	store := fee.NewStore(db)
	config, err := store.Config()
	if err == fee.ErrNotInitialized {
		fmt.Printf("fee configuration:     not initialized\n")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("chain id:              %d\n", config.ChainID)
	fmt.Printf("gas price:             %d\n", config.GasPrice)
	fmt.Printf("miner cut:             %d/100000\n", config.MinerCut)
	fmt.Printf("ingress bridge fee:    %d\n", config.IngressBridgeFee)

	queue, err := store.PriceQueue()
	if err != nil {
		return err
	}
	for _, entry := range queue {
		fmt.Printf("pending price change:  %d at %v\n", entry.Price, entry.Time.UTC())
	}
	return nil
}
