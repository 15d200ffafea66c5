// Command fastutil-bench drives the striped concurrent collections.
//
// Usage:
//
//	fastutil-bench run --collection long2long --workers 8 --duration 30s
//	fastutil-bench run --collection mutex-map --workers 8 --duration 30s
//	fastutil-bench snapshot create --dir ./snaps --entries 1000000 --key-file snap.key
//	fastutil-bench snapshot restore --dir ./snaps --key-file snap.key --verify
//	fastutil-bench persist save --dir ./kv --collection long-set
//	fastutil-bench config show -c bench.yaml
//
// Settings are read from the --config file and FASTUTIL_ environment
// variables (FASTUTIL_WORKLOAD__READ_RATIO=0.95), with flags taking
// precedence.
package main

import (
	"fmt"
	"os"

	"github.com/twelveoclock/fastutil-concurrent/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
