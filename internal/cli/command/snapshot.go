package command

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/twelveoclock/fastutil-concurrent/internal/cli/output"
	"github.com/twelveoclock/fastutil-concurrent/internal/storage/snapshot"
	"github.com/twelveoclock/fastutil-concurrent/pkg/codec"
	"github.com/twelveoclock/fastutil-concurrent/pkg/cset"
)

var snapshotKeys = flagKeys{
	"dir":        "snapshot.dir",
	"key-file":   "snapshot.key_file",
	"keep":       "snapshot.retention_count",
	"keep-days":  "snapshot.retention_days",
	"passphrase": "snapshot.passphrase",
}

func snapshotFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Snapshot directory"},
		&cli.StringFlag{Name: "key-file", Usage: "File holding the 32-byte sealing key (raw or hex)"},
		&cli.StringFlag{Name: "passphrase", Usage: "Derive the sealing key from a passphrase (prefer FASTUTIL_SNAPSHOT__PASSPHRASE)"},
	}, extra...)
}

// SnapshotCommand returns the snapshot subcommand group.
func SnapshotCommand() *cli.Command {
	return &cli.Command{
		Name:    "snapshot",
		Aliases: []string{"snap"},
		Usage:   "Write, read and manage snapshot files",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Generate a collection and snapshot it",
				Flags: snapshotFlags(append(collectionFlags(),
					&cli.IntFlag{Name: "entries", Aliases: []string{"n"}, Usage: "Number of entries", Value: 100_000},
					&cli.BoolFlag{Name: "prune", Usage: "Apply the retention policy afterwards"},
				)...),
				Action: snapshotCreate,
			},
			{
				Name:      "restore",
				Usage:     "Load a snapshot into a new collection",
				ArgsUsage: "[ID]",
				Flags: snapshotFlags(append(collectionFlags(),
					&cli.BoolFlag{Name: "verify", Usage: "Check restored map values against the generator"},
				)...),
				Action: snapshotRestore,
			},
			{
				Name:   "list",
				Usage:  "List snapshots, newest first",
				Flags:  snapshotFlags(),
				Action: snapshotList,
			},
			{
				Name:  "prune",
				Usage: "Delete snapshots outside the retention policy",
				Flags: snapshotFlags(
					&cli.IntFlag{Name: "keep", Usage: "Keep the newest N snapshots (negative disables)"},
					&cli.IntFlag{Name: "keep-days", Usage: "Keep snapshots newer than N days (negative disables)"},
				),
				Action: snapshotPrune,
			},
			{
				Name:      "delete",
				Usage:     "Delete one snapshot",
				ArgsUsage: "ID",
				Flags:     snapshotFlags(),
				Action:    snapshotDelete,
			},
			{
				Name:      "keygen",
				Usage:     "Write a new random sealing key, hex encoded",
				ArgsUsage: "FILE",
				Action:    snapshotKeygen,
			},
		},
	}
}

func snapshotManager(c *cli.Context) (*env, *snapshot.Manager, func(), error) {
	e, err := setup(c, snapshotKeys)
	if err != nil {
		return nil, nil, nil, err
	}
	sc, err := e.cfg.SnapshotConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	release := func() { snapshot.ZeroKey(sc.Seal.Key) }

	m, err := snapshot.NewManager(sc)
	if err != nil {
		release()
		return nil, nil, nil, err
	}
	return e, m, release, nil
}

func snapshotCreate(c *cli.Context) error {
	kind := c.String("collection")
	if err := checkCollection(kind); err != nil {
		return err
	}
	e, m, release, err := snapshotManager(c)
	if err != nil {
		return err
	}
	defer release()

	n := c.Int("entries")
	opts := sampleOptions(c, n)
	start := time.Now()

	var info *snapshot.Info
	if kind == sampleMap {
		info, err = snapshot.CreateMap(m, c.String("name"), newSampleMap(n, opts...), codec.Int64(), codec.Int64())
	} else {
		info, err = snapshot.CreateSet(m, c.String("name"), newSampleSet(n, opts...), codec.Int64())
	}
	if err != nil {
		return err
	}
	e.log.Info("snapshot created",
		"id", info.ID,
		"count", info.Count,
		"sealed", info.Sealed,
		"duration", time.Since(start),
	)

	if c.Bool("prune") {
		pruned, err := m.Prune()
		if err != nil {
			return err
		}
		e.log.Info("snapshots pruned", "deleted", pruned)
	}
	return e.print(info)
}

// restoreResult is printed by snapshot restore and persist load.
type restoreResult struct {
	ID         string        `json:"id,omitempty" yaml:"id,omitempty"`
	Collection string        `json:"collection" yaml:"collection"`
	Kind       string        `json:"kind" yaml:"kind"`
	Restored   int           `json:"restored" yaml:"restored"`
	Stripes    int           `json:"stripes" yaml:"stripes"`
	Mismatches int           `json:"mismatches,omitempty" yaml:"mismatches,omitempty"`
	Elapsed    time.Duration `json:"elapsed" yaml:"elapsed"`
}

func snapshotRestore(c *cli.Context) error {
	kind := c.String("collection")
	if err := checkCollection(kind); err != nil {
		return err
	}
	e, m, release, err := snapshotManager(c)
	if err != nil {
		return err
	}
	defer release()

	id := c.Args().First()
	opts := sampleOptions(c, 0)
	start := time.Now()

	res := restoreResult{Kind: kind}
	if kind == sampleMap {
		dst := newSampleMap(0, opts...)
		info, err := snapshot.RestoreMap(m, id, dst, codec.Int64(), codec.Int64())
		if err != nil {
			return err
		}
		res.ID, res.Collection = info.ID, info.Collection
		res.Restored, res.Stripes = dst.Len(), dst.Stripes()
		if c.Bool("verify") {
			res.Mismatches = mismatches(dst)
		}
	} else {
		dst := cset.NewLong(opts...)
		info, err := snapshot.RestoreSet(m, id, dst, codec.Int64())
		if err != nil {
			return err
		}
		res.ID, res.Collection = info.ID, info.Collection
		res.Restored, res.Stripes = dst.Len(), dst.Stripes()
	}
	res.Elapsed = time.Since(start)

	if res.Mismatches > 0 {
		e.log.Warn("restored values differ from generator", "mismatches", res.Mismatches)
	}
	return e.print(res)
}

func snapshotList(c *cli.Context) error {
	e, m, release, err := snapshotManager(c)
	if err != nil {
		return err
	}
	defer release()

	infos, err := m.List()
	if err != nil {
		return err
	}
	if e.format != output.FormatTable {
		return e.print(infos)
	}

	t := &output.Table{Headers: []string{"ID", "KIND", "COLLECTION", "COUNT", "SEALED", "SIZE", "CREATED"}}
	for _, info := range infos {
		t.AddRow(
			info.ID,
			string(info.Kind),
			info.Collection,
			fmt.Sprint(info.Count),
			fmt.Sprint(info.Sealed),
			fmt.Sprint(info.Size),
			time.UnixMilli(info.CreatedAt).Format(time.RFC3339),
		)
	}
	return e.print(t)
}

func snapshotPrune(c *cli.Context) error {
	e, m, release, err := snapshotManager(c)
	if err != nil {
		return err
	}
	defer release()

	n, err := m.Prune()
	if err != nil {
		return err
	}
	return e.print(map[string]int{"deleted": n})
}

func snapshotDelete(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("snapshot id is required")
	}
	e, m, release, err := snapshotManager(c)
	if err != nil {
		return err
	}
	defer release()

	if err := m.Delete(id); err != nil {
		return err
	}
	e.log.Info("snapshot deleted", "id", id)
	return nil
}

func snapshotKeygen(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("key file path is required")
	}
	key, err := snapshot.GenerateKey()
	if err != nil {
		return err
	}
	defer snapshot.ZeroKey(key)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create key file: %w", err)
	}
	if _, err := fmt.Fprintln(f, hex.EncodeToString(key)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
