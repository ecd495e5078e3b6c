// main is the entry point of the sentinel CLI.
package main

import (
	"github.com/sentinelhq/sentinel/cmd"
	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/internal/iocache"
)

func main() {
	cmd.SetStoreManager(iocache.Manager)

	err := cmd.Execute()
	iocache.CloseStores()
	if err != nil {
		contract.LogFatal("sentinel failed", err)
	}
	contract.SyncLogger()
}
