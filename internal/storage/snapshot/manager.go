package snapshot

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/blake2b"
)

var magicBytes = []byte("FUTLSNAP")

const (
	filePrefix    = "snapshot-"
	fileExtension = ".snap"
	checksumSize  = blake2b.Size256
	headerVersion = 1

	// maxHeaderSize bounds the header length read from a file.
	maxHeaderSize = 1 << 20

	DefaultRetentionCount = 5
	DefaultRetentionDays  = 7
)

// Kind tells which collection type a snapshot holds.
type Kind string

const (
	KindMap Kind = "map"
	KindSet Kind = "set"
)

type header struct {
	Version    int    `json:"version"`
	ID         string `json:"id"`
	Kind       Kind   `json:"kind"`
	Collection string `json:"collection,omitempty"`
	CreatedAt  int64  `json:"created_at"`
	Count      uint64 `json:"count"`
	Sealed     bool   `json:"sealed"`
	Salt       []byte `json:"salt,omitempty"`

	// DefaultValue is the codec encoding of a map's default return value.
	DefaultValue []byte `json:"default_value,omitempty"`
}

var (
	ErrInvalidMagic     = errors.New("snapshot: invalid magic bytes")
	ErrChecksumMismatch = errors.New("snapshot: checksum mismatch")
	ErrNotFound         = errors.New("snapshot: not found")
	ErrNoSnapshots      = errors.New("snapshot: no snapshots available")
	ErrKindMismatch     = errors.New("snapshot: collection kind mismatch")
	ErrSealed           = errors.New("snapshot: snapshot is sealed and no key is configured")
	ErrInvalidID        = errors.New("snapshot: invalid snapshot id")
)

// Config configures the snapshot manager.
type Config struct {
	Dir string `koanf:"dir"`

	// RetentionCount keeps the newest N snapshots. Zero means the default,
	// negative disables the rule.
	RetentionCount int `koanf:"retention_count"`

	// RetentionDays keeps snapshots modified within N days. Zero means the
	// default, negative disables the rule.
	RetentionDays int `koanf:"retention_days"`

	Seal SealConfig `koanf:"-"`
}

// DefaultConfig returns the default configuration for dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:            dir,
		RetentionCount: DefaultRetentionCount,
		RetentionDays:  DefaultRetentionDays,
	}
}

// Manager creates, lists, restores and prunes snapshot files in one directory.
type Manager struct {
	cfg Config
}

// NewManager creates the snapshot directory if needed.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("snapshot: dir is required")
	}
	if err := cfg.Seal.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return nil, fmt.Errorf("snapshot: create dir: %w", err)
	}
	if cfg.RetentionCount == 0 {
		cfg.RetentionCount = DefaultRetentionCount
	}
	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = DefaultRetentionDays
	}

	return &Manager{cfg: cfg}, nil
}

// Info contains metadata about a snapshot.
type Info struct {
	ID         string `json:"id" yaml:"id"`
	Kind       Kind   `json:"kind" yaml:"kind"`
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`
	Count      int64  `json:"count" yaml:"count"`
	CreatedAt  int64  `json:"created_at" yaml:"created_at"`
	Sealed     bool   `json:"sealed" yaml:"sealed"`
	Size       int64  `json:"size" yaml:"size"`
	Path       string `json:"path" yaml:"path"`
	Checksum   string `json:"checksum" yaml:"checksum"`
}

func (h *header) info(path string, size int64, sum []byte) *Info {
	return &Info{
		ID:         h.ID,
		Kind:       h.Kind,
		Collection: h.Collection,
		Count:      int64(h.Count),
		CreatedAt:  h.CreatedAt,
		Sealed:     h.Sealed,
		Size:       size,
		Path:       path,
		Checksum:   hex.EncodeToString(sum),
	}
}

// write stores a new snapshot. body is the plain record stream.
func (m *Manager) write(hdr *header, body []byte) (*Info, error) {
	now := time.Now()
	id := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()

	hdr.Version = headerVersion
	hdr.ID = id
	hdr.CreatedAt = now.UnixMilli()

	var key []byte
	if m.cfg.Seal.Enabled() {
		salt, err := m.cfg.Seal.newSalt()
		if err != nil {
			return nil, err
		}
		hdr.Sealed = true
		hdr.Salt = salt
		if key, err = m.cfg.Seal.boxKey(id, salt); err != nil {
			return nil, err
		}
		defer ZeroKey(key)
	}

	hdrJSON, err := json.Marshal(hdr)
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal header: %w", err)
	}
	if key != nil {
		if body, err = seal(key, hdrJSON, body); err != nil {
			return nil, err
		}
	}

	tempPath := filepath.Join(m.cfg.Dir, filePrefix+id+".tmp")
	file, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("snapshot: create temp file: %w", err)
	}
	defer os.Remove(tempPath)

	hash, _ := blake2b.New256(nil)
	w := bufio.NewWriter(io.MultiWriter(file, hash))

	var hdrLen [4]byte
	binary.BigEndian.PutUint32(hdrLen[:], uint32(len(hdrJSON)))
	for _, part := range [][]byte{magicBytes, hdrLen[:], hdrJSON, body} {
		if _, err := w.Write(part); err != nil {
			file.Close()
			return nil, fmt.Errorf("snapshot: write: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return nil, fmt.Errorf("snapshot: write: %w", err)
	}

	// Checksum trailer (not included in hash).
	sum := hash.Sum(nil)
	if _, err := file.Write(sum); err != nil {
		file.Close()
		return nil, fmt.Errorf("snapshot: write checksum: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return nil, fmt.Errorf("snapshot: sync: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("snapshot: close: %w", err)
	}

	stat, err := os.Stat(tempPath)
	if err != nil {
		return nil, err
	}

	finalPath := m.path(id)
	if err := os.Rename(tempPath, finalPath); err != nil {
		return nil, fmt.Errorf("snapshot: rename: %w", err)
	}

	return hdr.info(finalPath, stat.Size(), sum), nil
}

func (m *Manager) path(id string) string {
	return filepath.Join(m.cfg.Dir, filePrefix+id+fileExtension)
}

// checkID rejects anything that is not a canonical ULID, so an id can never
// name a file outside Dir.
func checkID(id string) error {
	if _, err := ulid.ParseStrict(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// readFile verifies a snapshot file and returns its header and plain body.
// With openBody unset only the header is decoded.
func (m *Manager) readFile(path string, openBody bool) (*header, []byte, *Info, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil, ErrNotFound
		}
		return nil, nil, nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, nil, nil, err
	}
	if stat.Size() < int64(len(magicBytes))+4+checksumSize {
		return nil, nil, nil, ErrChecksumMismatch
	}

	// Verify checksum.
	dataLen := stat.Size() - checksumSize
	expected := make([]byte, checksumSize)
	if _, err := io.ReadFull(io.NewSectionReader(f, dataLen, checksumSize), expected); err != nil {
		return nil, nil, nil, err
	}
	h, _ := blake2b.New256(nil)
	if _, err := io.Copy(h, io.NewSectionReader(f, 0, dataLen)); err != nil {
		return nil, nil, nil, err
	}
	if !bytes.Equal(h.Sum(nil), expected) {
		return nil, nil, nil, ErrChecksumMismatch
	}

	br := bufio.NewReader(io.NewSectionReader(f, 0, dataLen))

	magic := make([]byte, len(magicBytes))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, nil, nil, err
	}
	if !bytes.Equal(magic, magicBytes) {
		return nil, nil, nil, ErrInvalidMagic
	}

	var hdrLenBuf [4]byte
	if _, err := io.ReadFull(br, hdrLenBuf[:]); err != nil {
		return nil, nil, nil, err
	}
	hdrLen := binary.BigEndian.Uint32(hdrLenBuf[:])
	if hdrLen == 0 || hdrLen > maxHeaderSize {
		return nil, nil, nil, fmt.Errorf("snapshot: invalid header length %d", hdrLen)
	}
	hdrJSON := make([]byte, hdrLen)
	if _, err := io.ReadFull(br, hdrJSON); err != nil {
		return nil, nil, nil, err
	}

	var hdr header
	if err := json.Unmarshal(hdrJSON, &hdr); err != nil {
		return nil, nil, nil, fmt.Errorf("snapshot: unmarshal header: %w", err)
	}
	if hdr.Version != headerVersion {
		return nil, nil, nil, fmt.Errorf("snapshot: unsupported version %d", hdr.Version)
	}
	info := hdr.info(path, stat.Size(), expected)
	if !openBody {
		return &hdr, nil, info, nil
	}

	body, err := io.ReadAll(br)
	if err != nil {
		return nil, nil, nil, err
	}
	if hdr.Sealed {
		if !m.cfg.Seal.Enabled() {
			return nil, nil, nil, ErrSealed
		}
		key, err := m.cfg.Seal.boxKey(hdr.ID, hdr.Salt)
		if err != nil {
			return nil, nil, nil, err
		}
		defer ZeroKey(key)
		if body, err = open(key, hdrJSON, body); err != nil {
			return nil, nil, nil, err
		}
	}

	return &hdr, body, info, nil
}

// load returns the header and plain body of snapshot id. An empty id selects
// the newest snapshot of kind that verifies, skipping corrupted files.
func (m *Manager) load(id string, kind Kind) (*header, []byte, *Info, error) {
	if id != "" {
		if err := checkID(id); err != nil {
			return nil, nil, nil, err
		}
		hdr, body, info, err := m.readFile(m.path(id), true)
		if err != nil {
			return nil, nil, nil, err
		}
		if hdr.Kind != kind {
			return nil, nil, nil, fmt.Errorf("%w: %s holds a %s", ErrKindMismatch, id, hdr.Kind)
		}
		return hdr, body, info, nil
	}

	paths, err := m.paths()
	if err != nil {
		return nil, nil, nil, err
	}
	for i := len(paths) - 1; i >= 0; i-- {
		hdr, body, info, err := m.readFile(paths[i], true)
		if err != nil {
			if errors.Is(err, ErrChecksumMismatch) || errors.Is(err, ErrInvalidMagic) {
				continue
			}
			return nil, nil, nil, err
		}
		if hdr.Kind == kind {
			return hdr, body, info, nil
		}
	}
	return nil, nil, nil, ErrNoSnapshots
}

// paths returns snapshot file paths, oldest first.
func (m *Manager) paths() ([]string, error) {
	entries, err := os.ReadDir(m.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileExtension) {
			paths = append(paths, filepath.Join(m.cfg.Dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// List returns the metadata of every readable snapshot, newest first.
// Corrupted files are skipped.
func (m *Manager) List() ([]*Info, error) {
	paths, err := m.paths()
	if err != nil {
		return nil, err
	}

	var infos []*Info
	for _, p := range slices.Backward(paths) {
		_, _, info, err := m.readFile(p, false)
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Latest returns the newest readable snapshot.
func (m *Manager) Latest() (*Info, error) {
	infos, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, ErrNoSnapshots
	}
	return infos[0], nil
}

// Delete removes snapshot id.
func (m *Manager) Delete(id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := os.Remove(m.path(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("snapshot: delete %s: %w", id, err)
	}
	return nil
}

// Prune applies the retention policy and returns the number of deleted files.
// The newest snapshot is always kept.
func (m *Manager) Prune() (int, error) {
	paths, err := m.paths()
	if err != nil {
		return 0, err
	}
	if len(paths) <= 1 {
		return 0, nil
	}

	keep := make(map[string]struct{}, len(paths))

	// Keep last RetentionCount.
	if m.cfg.RetentionCount > 0 {
		start := max(len(paths)-m.cfg.RetentionCount, 0)
		for _, p := range paths[start:] {
			keep[p] = struct{}{}
		}
	}

	// Keep those within RetentionDays based on mtime.
	if m.cfg.RetentionDays > 0 {
		cutoff := time.Now().Add(-time.Duration(m.cfg.RetentionDays) * 24 * time.Hour)
		for _, p := range paths {
			st, err := os.Stat(p)
			if err != nil {
				continue
			}
			if st.ModTime().After(cutoff) {
				keep[p] = struct{}{}
			}
		}
	}

	keep[paths[len(paths)-1]] = struct{}{}

	deleted := 0
	for _, p := range paths {
		if _, ok := keep[p]; ok {
			continue
		}
		if err := os.Remove(p); err == nil {
			deleted++
		}
	}
	return deleted, nil
}
