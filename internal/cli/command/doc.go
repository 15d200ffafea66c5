// Package command defines the fastutil-bench commands with urfave/cli/v2.
//
//	run       drive a concurrent workload against one collection
//	snapshot  create, restore, list, prune and delete snapshot files
//	persist   save and load a collection through the badger store
//	config    print or validate the effective configuration
//	version   print build information
//
// Every command loads the configuration the same way: defaults, the file
// given by --config, FASTUTIL_ environment variables, then flags.
package command
