package main

import (
	"fmt"
	"log"

	"github.com/Fantom-foundation/Otello/go/state"
	"github.com/urfave/cli/v2"
)

var gcBudgetFlag = cli.UintFlag{
	Name:  "budget",
	Usage: "number of row deletions performed per drain increment",
	Value: 1000,
}

var collectGarbageCommand = cli.Command{
	Action: collectGarbage,
	Name:   "gc",
	Usage:  "drains the reclamation queues of a state DB directory",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&gcBudgetFlag,
	},
}

func collectGarbage(ctx *cli.Context) (err error) {
	dir := ctx.String(dbDirectoryFlag.Name)
	budget := uint32(ctx.Uint(gcBudgetFlag.Name))
	if budget == 0 {
		return fmt.Errorf("budget must be positive")
	}

	log.Printf("Opening state in %v ...", dir)
	db, err := open(dir)
	if err != nil {
		return err
	}
	defer func() {
		if closeError := db.Close(); closeError != nil && err == nil {
			err = closeError
		}
	}()

	s, err := state.NewState(db)
	if err != nil {
		return err
	}
	increments := 0
	for {
		done, err := s.CollectGarbage(budget)
		if err != nil {
			return err
		}
		increments++
		if done {
			break
		}
	}
	fmt.Printf("reclamation queues drained in %d increments\n", increments)
	return nil
}
