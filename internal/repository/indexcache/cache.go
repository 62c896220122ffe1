// Package indexcache persists a built vector index and its embedding matrix on
// disk so process restarts skip the full-corpus embedding call.
package indexcache

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pitchlens/pitchlens/internal/index"
)

var metaMagic = [4]byte{'P', 'L', 'M', 'D'}

const metaVersion uint16 = 1

// Cache reads and writes the two index artifacts: <name>.index holds the
// serialized flat index, <name>.meta holds the raw embedding matrix plus the
// corpus fingerprint.
type Cache struct {
	dir    string
	name   string
	logger *zap.Logger
}

// New creates a cache rooted at dir, keyed by the logical index name.
func New(dir, name string, logger *zap.Logger) *Cache {
	return &Cache{dir: dir, name: name, logger: logger}
}

func (c *Cache) indexPath() string { return filepath.Join(c.dir, c.name+".index") }
func (c *Cache) metaPath() string  { return filepath.Join(c.dir, c.name+".meta") }

// TryLoad returns the persisted index and matrix if both artifacts exist,
// deserialize cleanly, and the recorded corpus length matches corpusLen.
// Every failure mode is a cache miss, never an error: the caller falls back
// to a fresh build.
//
// The length check mirrors the original fingerprint semantics; a corpus edit
// that keeps the item count serves the stale cache. The stored content digest
// only produces a warning in that case so the drift is at least visible.
func (c *Cache) TryLoad(corpusLen int, digest string) (*index.Flat, [][]float32, bool) {
	metaData, err := os.ReadFile(c.metaPath())
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("Failed to read index metadata", zap.String("path", c.metaPath()), zap.Error(err))
		}
		return nil, nil, false
	}

	meta, err := decodeMeta(bytes.NewReader(metaData))
	if err != nil {
		c.logger.Warn("Corrupt index metadata, rebuilding", zap.String("path", c.metaPath()), zap.Error(err))
		return nil, nil, false
	}

	if meta.corpusLen != corpusLen {
		c.logger.Info("Cached corpus size differs, rebuilding",
			zap.Int("cached", meta.corpusLen),
			zap.Int("current", corpusLen),
		)
		return nil, nil, false
	}
	if meta.digest != "" && digest != "" && meta.digest != digest {
		c.logger.Warn("Corpus content changed but size matches; serving cached index",
			zap.String("cached_digest", meta.digest),
			zap.String("current_digest", digest),
		)
	}

	indexData, err := os.ReadFile(c.indexPath())
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("Failed to read index blob", zap.String("path", c.indexPath()), zap.Error(err))
		}
		return nil, nil, false
	}

	idx, err := index.Decode(bytes.NewReader(indexData), int64(len(indexData)))
	if err != nil {
		c.logger.Warn("Corrupt index blob, rebuilding", zap.String("path", c.indexPath()), zap.Error(err))
		return nil, nil, false
	}

	return idx, meta.embeddings, true
}

// Save writes both artifacts. Failures are returned for logging but must be
// treated as non-fatal: the in-memory index stays usable either way.
func (c *Cache) Save(idx *index.Flat, embeddings [][]float32, corpusLen int, digest string) error {
	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	var indexBuf bytes.Buffer
	if err := idx.Encode(&indexBuf); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := writeAtomic(c.indexPath(), indexBuf.Bytes()); err != nil {
		return fmt.Errorf("write index blob: %w", err)
	}

	var metaBuf bytes.Buffer
	if err := encodeMeta(&metaBuf, metadata{
		corpusLen:  corpusLen,
		digest:     digest,
		embeddings: embeddings,
	}); err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := writeAtomic(c.metaPath(), metaBuf.Bytes()); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	return nil
}

// writeAtomic writes via a temp file and rename so a crashed write never
// leaves a half-written artifact behind.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

type metadata struct {
	corpusLen  int
	digest     string
	embeddings [][]float32
}

func encodeMeta(w io.Writer, m metadata) error {
	if _, err := w.Write(metaMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, metaVersion); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(m.corpusLen)); err != nil {
		return err
	}
	digest := []byte(m.digest)
	if err := binary.Write(w, binary.LittleEndian, int32(len(digest))); err != nil {
		return err
	}
	if _, err := w.Write(digest); err != nil {
		return err
	}
	return index.EncodeMatrix(w, m.embeddings)
}

func decodeMeta(r *bytes.Reader) (metadata, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return metadata{}, fmt.Errorf("read magic: %w", err)
	}
	if magic != metaMagic {
		return metadata{}, fmt.Errorf("bad metadata magic %q", magic[:])
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return metadata{}, fmt.Errorf("read version: %w", err)
	}
	if version != metaVersion {
		return metadata{}, fmt.Errorf("unsupported metadata version %d", version)
	}

	var corpusLen int32
	if err := binary.Read(r, binary.LittleEndian, &corpusLen); err != nil {
		return metadata{}, fmt.Errorf("read corpus length: %w", err)
	}
	if corpusLen < 0 {
		return metadata{}, fmt.Errorf("invalid corpus length %d", corpusLen)
	}

	var digestLen int32
	if err := binary.Read(r, binary.LittleEndian, &digestLen); err != nil {
		return metadata{}, fmt.Errorf("read digest length: %w", err)
	}
	if digestLen < 0 || digestLen > 1024 {
		return metadata{}, fmt.Errorf("invalid digest length %d", digestLen)
	}
	digest := make([]byte, digestLen)
	if _, err := io.ReadFull(r, digest); err != nil {
		return metadata{}, fmt.Errorf("read digest: %w", err)
	}

	embeddings, err := index.DecodeMatrix(r, int64(r.Len()))
	if err != nil {
		return metadata{}, fmt.Errorf("read embeddings: %w", err)
	}

	return metadata{
		corpusLen:  int(corpusLen),
		digest:     string(digest),
		embeddings: embeddings,
	}, nil
}
