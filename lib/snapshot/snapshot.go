// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

// Package snapshot stores pre-compose copies of the target documents
// so a composition can be rolled back. Each snapshot is one CBOR file
// under the snapshot root: a small index (note, creation time) plus
// per-file entries carrying a keyed BLAKE3 hash and a compressed
// payload. Restore verifies every hash before writing anything, so a
// corrupted snapshot never half-applies.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/sarg3nt/dynamic-dev-container-sub000/lib/codec"
)

// fileDomainKey is the 32-byte key for BLAKE3 keyed hashing of
// snapshot payloads. The bytes are the ASCII domain name zero-padded
// to 32 bytes, readable in hex dumps. Changing it invalidates all
// existing snapshots.
var fileDomainKey = [32]byte{
	'd', 'c', 'c', '.', 's', 'n', 'a', 'p', 's', 'h', 'o', 't', '.',
	'f', 'i', 'l', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// snapshotVersion is the on-disk format version.
const snapshotVersion = 1

// snapshotExtension is the snapshot file suffix.
const snapshotExtension = ".snap"

// File is one document captured by or restored from a snapshot.
type File struct {
	// Path is the file path relative to the target directory.
	Path string

	// Data is the file content.
	Data []byte
}

// Info describes a stored snapshot.
type Info struct {
	// ID is the snapshot identifier (UTC timestamp-derived, sortable).
	ID string

	// Created is the snapshot creation time.
	Created time.Time

	// Note is the free-form note recorded at save time.
	Note string

	// Paths are the captured file paths.
	Paths []string
}

// archive is the on-disk CBOR document.
type archive struct {
	Version int       `cbor:"version"`
	Created time.Time `cbor:"created"`
	Note    string    `cbor:"note"`
	Entries []entry   `cbor:"entries"`
}

// entry is one captured file.
type entry struct {
	Path        string   `cbor:"path"`
	Size        int64    `cbor:"size"`
	Hash        [32]byte `cbor:"hash"`
	Compression uint8    `cbor:"compression"`
	Payload     []byte   `cbor:"payload"`
}

// Store manages the snapshot directory.
type Store struct {
	root string
}

// NewStore returns a store rooted at dir. The directory is created on
// first save.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Save captures files as a new snapshot and returns its ID. Saving
// zero files is an error — the caller should skip the snapshot step
// when no target documents exist yet.
func (s *Store) Save(files []File, note string) (string, error) {
	if len(files) == 0 {
		return "", fmt.Errorf("nothing to snapshot")
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("creating snapshot root: %w", err)
	}

	now := time.Now().UTC()
	doc := archive{
		Version: snapshotVersion,
		Created: now,
		Note:    note,
	}
	for _, file := range files {
		payload, tag, err := compress(file.Data)
		if err != nil {
			return "", fmt.Errorf("compressing %s: %w", file.Path, err)
		}
		doc.Entries = append(doc.Entries, entry{
			Path:        filepath.ToSlash(file.Path),
			Size:        int64(len(file.Data)),
			Hash:        hashPayload(file.Data),
			Compression: uint8(tag),
			Payload:     payload,
		})
	}

	data, err := codec.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}

	id := now.Format("20060102-150405")
	path := filepath.Join(s.root, id+snapshotExtension)
	// Same-second saves get a numeric suffix rather than overwriting.
	for suffix := 2; ; suffix++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		id = fmt.Sprintf("%s-%d", now.Format("20060102-150405"), suffix)
		path = filepath.Join(s.root, id+snapshotExtension)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	return id, nil
}

// List returns the stored snapshots, newest first.
func (s *Store) List() ([]Info, error) {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot root: %w", err)
	}

	var infos []Info
	for _, dirEntry := range entries {
		name := dirEntry.Name()
		if dirEntry.IsDir() || !strings.HasSuffix(name, snapshotExtension) {
			continue
		}
		doc, err := s.read(strings.TrimSuffix(name, snapshotExtension))
		if err != nil {
			return nil, err
		}
		info := Info{
			ID:      strings.TrimSuffix(name, snapshotExtension),
			Created: doc.Created,
			Note:    doc.Note,
		}
		for _, e := range doc.Entries {
			info.Paths = append(info.Paths, e.Path)
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID > infos[j].ID })
	return infos, nil
}

// Files decodes and verifies a snapshot's contents without writing
// anything.
func (s *Store) Files(id string) ([]File, error) {
	doc, err := s.read(id)
	if err != nil {
		return nil, err
	}

	var files []File
	for _, e := range doc.Entries {
		data, err := decompress(e.Payload, CompressionTag(e.Compression), int(e.Size))
		if err != nil {
			return nil, fmt.Errorf("snapshot %s, file %s: %w", id, e.Path, err)
		}
		if hashPayload(data) != e.Hash {
			return nil, fmt.Errorf("snapshot %s, file %s: hash mismatch (corrupted snapshot)", id, e.Path)
		}
		files = append(files, File{Path: filepath.FromSlash(e.Path), Data: data})
	}
	return files, nil
}

// Restore writes a snapshot's files back under targetDir. All hashes
// are verified before the first write.
func (s *Store) Restore(id string, targetDir string) ([]string, error) {
	files, err := s.Files(id)
	if err != nil {
		return nil, err
	}

	var restored []string
	for _, file := range files {
		destination := filepath.Join(targetDir, file.Path)
		if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
			return restored, err
		}
		if err := os.WriteFile(destination, file.Data, 0o644); err != nil {
			return restored, fmt.Errorf("restoring %s: %w", file.Path, err)
		}
		restored = append(restored, file.Path)
	}
	return restored, nil
}

// read loads and decodes one snapshot file.
func (s *Store) read(id string) (*archive, error) {
	data, err := os.ReadFile(filepath.Join(s.root, id+snapshotExtension))
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", id, err)
	}
	var doc archive
	if err := codec.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", id, err)
	}
	if doc.Version != snapshotVersion {
		return nil, fmt.Errorf("snapshot %s: unsupported format version %d", id, doc.Version)
	}
	return &doc, nil
}

// hashPayload computes the file-domain keyed BLAKE3 hash of data.
func hashPayload(data []byte) [32]byte {
	hasher, err := blake3.NewKeyed(fileDomainKey[:])
	if err != nil {
		// NewKeyed only fails on a wrong key length; the key is a
		// compile-time constant.
		panic("snapshot: blake3 keyed hasher: " + err.Error())
	}
	hasher.Write(data)
	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest
}
