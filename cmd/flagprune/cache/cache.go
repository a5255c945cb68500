// Package cache implements an incremental run cache that lets a repeated
// invocation skip files whose content and flag configuration haven't
// changed since the last run. It persists via github.com/dekarrin/rezi/v2,
// a binary encoding library.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/dekarrin/rezi/v2"
)

// fileFormat identifies the cache file for forward-compatible loading.
const fileFormat = "flagprune-cache"

const fileVersion = 1

// Entry records the digests that made a prior transform of one file a
// no-op, or produced a given result.
type Entry struct {
	SourceDigest string
	ConfigDigest string
}

// Cache maps file path to its last-seen Entry.
type Cache struct {
	Entries map[string]Entry
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{Entries: make(map[string]Entry)}
}

// Digest returns a stable hex digest of b, used for both source content and
// serialized config comparisons.
func Digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Unchanged reports whether path's entry matches the given digests, meaning
// the file can be skipped this run.
func (c *Cache) Unchanged(path string, sourceDigest, configDigest string) bool {
	e, ok := c.Entries[path]
	return ok && e.SourceDigest == sourceDigest && e.ConfigDigest == configDigest
}

// Record stores path's digests for the next run.
func (c *Cache) Record(path string, sourceDigest, configDigest string) {
	c.Entries[path] = Entry{SourceDigest: sourceDigest, ConfigDigest: configDigest}
}

type marshaledCache struct {
	Filetype string `json:"filetype"`
	Version  int    `json:"version"`
	Blob     string `json:"blob"`
}

// Save persists the cache to path as rezi-encoded bytes wrapped in a small
// JSON envelope carrying a format tag and version for forward compatibility.
func Save(path string, c *Cache) error {
	buf := &bytes.Buffer{}
	rzw, err := rezi.NewWriter(buf, &rezi.Format{Compression: true})
	if err != nil {
		return err
	}
	if err := rzw.Enc(c.Entries); err != nil {
		return err
	}
	if err := rzw.Close(); err != nil {
		return err
	}

	mc := marshaledCache{
		Filetype: fileFormat,
		Version:  fileVersion,
		Blob:     hex.EncodeToString(buf.Bytes()),
	}

	data, err := json.MarshalIndent(mc, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Load reads a cache file previously written by Save. A missing file yields
// an empty cache rather than an error, since "no cache yet" is the expected
// state on a repo's first run.
func Load(path string) (*Cache, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}

	var mc marshaledCache
	if err := json.Unmarshal(data, &mc); err != nil {
		return nil, err
	}

	blob, err := hex.DecodeString(mc.Blob)
	if err != nil {
		return nil, err
	}

	rzr, err := rezi.NewReader(bytes.NewReader(blob), &rezi.Format{Compression: true})
	if err != nil {
		return nil, err
	}

	entries := make(map[string]Entry)
	if err := rzr.Dec(&entries); err != nil {
		return nil, err
	}

	return &Cache{Entries: entries}, nil
}
