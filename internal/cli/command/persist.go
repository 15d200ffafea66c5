package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/twelveoclock/fastutil-concurrent/internal/storage"
	"github.com/twelveoclock/fastutil-concurrent/pkg/codec"
	"github.com/twelveoclock/fastutil-concurrent/pkg/cset"
)

var persistKeys = flagKeys{
	"dir":         "storage.dir",
	"sync-writes": "storage.badger.sync_writes",
}

func persistFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Badger data directory"},
		&cli.BoolFlag{Name: "sync-writes", Usage: "Fsync every write"},
	}, extra...)
}

// PersistCommand returns the persist subcommand group.
func PersistCommand() *cli.Command {
	return &cli.Command{
		Name:  "persist",
		Usage: "Store collections in the embedded badger database",
		Subcommands: []*cli.Command{
			{
				Name:  "save",
				Usage: "Generate a collection and store it, replacing any stored copy",
				Flags: persistFlags(append(collectionFlags(),
					&cli.IntFlag{Name: "entries", Aliases: []string{"n"}, Usage: "Number of entries", Value: 100_000},
				)...),
				Action: persistSave,
			},
			{
				Name:  "load",
				Usage: "Load a stored collection",
				Flags: persistFlags(append(collectionFlags(),
					&cli.BoolFlag{Name: "verify", Usage: "Check loaded map values against the generator"},
				)...),
				Action: persistLoad,
			},
			{
				Name:   "count",
				Usage:  "Count the stored entries of a collection",
				Flags:  persistFlags(collectionFlags()...),
				Action: persistCount,
			},
			{
				Name:   "drop",
				Usage:  "Delete a stored collection",
				Flags:  persistFlags(collectionFlags()...),
				Action: persistDrop,
			},
			{
				Name:   "stats",
				Usage:  "Show database size and GC statistics",
				Flags:  persistFlags(),
				Action: persistStats,
			},
			{
				Name:   "gc",
				Usage:  "Run value log garbage collection",
				Flags:  persistFlags(),
				Action: persistGC,
			},
			{
				Name:      "backup",
				Usage:     "Write a full database dump",
				ArgsUsage: "FILE",
				Flags:     persistFlags(),
				Action:    persistBackup,
			},
			{
				Name:      "restore",
				Usage:     "Load a database dump written by backup",
				ArgsUsage: "FILE",
				Flags:     persistFlags(),
				Action:    persistRestore,
			},
		},
	}
}

// withStore opens the database for the duration of fn.
func withStore(c *cli.Context, fn func(e *env, kv *storage.BadgerEngine) error) error {
	e, err := setup(c, persistKeys)
	if err != nil {
		return err
	}
	if e.cfg.Storage.InMemory {
		e.log.Warn("storage.in_memory is set; nothing outlives this command")
	}

	kv, err := storage.NewBadgerEngine(e.cfg.Storage, e.log)
	if err != nil {
		return err
	}
	err = fn(e, kv)
	if cerr := kv.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

type saveResult struct {
	Collection string        `json:"collection" yaml:"collection"`
	Kind       string        `json:"kind" yaml:"kind"`
	Saved      int           `json:"saved" yaml:"saved"`
	Elapsed    time.Duration `json:"elapsed" yaml:"elapsed"`
}

func persistSave(c *cli.Context) error {
	kind := c.String("collection")
	if err := checkCollection(kind); err != nil {
		return err
	}
	return withStore(c, func(e *env, kv *storage.BadgerEngine) error {
		store := storage.NewCollectionStore(kv, e.log)
		ctx := context.Background()
		name := c.String("name")
		n := c.Int("entries")
		opts := sampleOptions(c, n)

		start := time.Now()
		var saved int
		var err error
		if kind == sampleMap {
			saved, err = storage.SaveMap(ctx, store, name, newSampleMap(n, opts...), codec.Int64(), codec.Int64())
		} else {
			saved, err = storage.SaveSet(ctx, store, name, newSampleSet(n, opts...), codec.Int64())
		}
		if err != nil {
			return err
		}
		return e.print(saveResult{Collection: name, Kind: kind, Saved: saved, Elapsed: time.Since(start)})
	})
}

func persistLoad(c *cli.Context) error {
	kind := c.String("collection")
	if err := checkCollection(kind); err != nil {
		return err
	}
	return withStore(c, func(e *env, kv *storage.BadgerEngine) error {
		store := storage.NewCollectionStore(kv, e.log)
		ctx := context.Background()
		name := c.String("name")
		opts := sampleOptions(c, 0)

		start := time.Now()
		res := restoreResult{Collection: name, Kind: kind}
		if kind == sampleMap {
			dst := newSampleMap(0, opts...)
			if _, err := storage.LoadMap(ctx, store, name, dst, codec.Int64(), codec.Int64()); err != nil {
				return err
			}
			res.Restored, res.Stripes = dst.Len(), dst.Stripes()
			if c.Bool("verify") {
				res.Mismatches = mismatches(dst)
			}
		} else {
			dst := cset.NewLong(opts...)
			if _, err := storage.LoadSet(ctx, store, name, dst, codec.Int64()); err != nil {
				return err
			}
			res.Restored, res.Stripes = dst.Len(), dst.Stripes()
		}
		res.Elapsed = time.Since(start)
		return e.print(res)
	})
}

func persistCount(c *cli.Context) error {
	return withStore(c, func(e *env, kv *storage.BadgerEngine) error {
		name := c.String("name")
		n, err := storage.NewCollectionStore(kv, e.log).Count(context.Background(), name)
		if err != nil {
			return err
		}
		return e.print(map[string]int{name: n})
	})
}

func persistDrop(c *cli.Context) error {
	return withStore(c, func(e *env, kv *storage.BadgerEngine) error {
		name := c.String("name")
		if err := storage.NewCollectionStore(kv, e.log).DeleteCollection(context.Background(), name); err != nil {
			return err
		}
		e.log.Info("collection dropped", "collection", name)
		return nil
	})
}

func persistStats(c *cli.Context) error {
	return withStore(c, func(e *env, kv *storage.BadgerEngine) error {
		stats, err := kv.Stats(context.Background())
		if err != nil {
			return err
		}
		return e.print(stats)
	})
}

func persistGC(c *cli.Context) error {
	return withStore(c, func(e *env, kv *storage.BadgerEngine) error {
		runs, err := kv.GC(c.Context)
		if err != nil {
			return err
		}
		return e.print(map[string]uint64{"files_rewritten": runs})
	})
}

func persistBackup(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("backup file path is required")
	}
	return withStore(c, func(e *env, kv *storage.BadgerEngine) error {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("create backup file: %w", err)
		}
		if err := kv.Backup(context.Background(), f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
}

func persistRestore(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("backup file path is required")
	}
	return withStore(c, func(e *env, kv *storage.BadgerEngine) error {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open backup file: %w", err)
		}
		defer f.Close()
		return kv.Restore(context.Background(), f)
	})
}
