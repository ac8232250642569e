// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/renameio"

	"github.com/tomtom215/venuerec/internal/recommend"
)

const (
	filePrefix  = "artifacts_v"
	fileSuffix  = ".gob.gz"
	currentFile = "CURRENT"

	maxSaveAttempts = 16
)

// ErrNoArtifacts is returned when the store holds no artifact versions.
var ErrNoArtifacts = errors.New("no artifacts stored")

// ArtifactMetadata contains information about a stored artifact set.
type ArtifactMetadata struct {
	// Version is the artifact version (monotonically increasing).
	Version int `json:"version"`

	// TrainedAt is when the set was trained.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the set was written.
	SavedAt time.Time `json:"saved_at"`

	// VenueCount is the number of snapshot rows.
	VenueCount int `json:"venue_count"`

	// CityCount is the number of distinct cities in the snapshot.
	CityCount int `json:"city_count"`

	// LocationWeight is the training-time coordinate weight.
	LocationWeight float64 `json:"location_weight"`

	// Checksum is the SHA-256 checksum of the uncompressed payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size in bytes.
	SizeBytes int64 `json:"size_bytes"`
}

// payload is the gob-encoded body of an artifact file.
type payload struct {
	TrainedAt time.Time
	Bundle    *recommend.FeatureBundle
	Snapshot  *recommend.Snapshot
	Index     *recommend.SpatialIndex
}

// storedArtifacts is the on-disk format for artifact files.
type storedArtifacts struct {
	Metadata       ArtifactMetadata
	CompressedData []byte
}

// Store manages versioned artifact files in one directory.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// latest is the highest version on disk, current the one CURRENT names.
	latest  int
	current int
}

// NewStore creates a store at the given directory, creating it if needed.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &Store{baseDir: baseDir}

	versions, err := s.scanVersions()
	if err != nil {
		return nil, fmt.Errorf("scan existing artifacts: %w", err)
	}
	if len(versions) > 0 {
		s.latest = versions[0]
	}

	current, err := s.readCurrent()
	if err != nil {
		return nil, err
	}
	s.current = current

	return s, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.baseDir
}

// scanVersions returns every version on disk, newest first.
func (s *Store) scanVersions() ([]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	var versions []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if v, ok := parseArtifactFilename(entry.Name()); ok {
			versions = append(versions, v)
		}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

// parseArtifactFilename extracts the version from a name like "artifacts_v3.gob.gz".
func parseArtifactFilename(name string) (int, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix))
	if err != nil || v < 1 {
		return 0, false
	}
	return v, true
}

// nextVersion returns one past the highest version known in memory or
// present on disk. Callers must hold mu.
func (s *Store) nextVersion() (int, error) {
	versions, err := s.scanVersions()
	if err != nil {
		return 0, fmt.Errorf("scan artifacts: %w", err)
	}
	latest := s.latest
	if len(versions) > 0 {
		latest = max(latest, versions[0])
	}
	return latest + 1, nil
}

// createVersion writes data as a new version file. It fails with an error
// matching os.ErrExist when the version is already on disk: the content is
// staged in a temp file and hard-linked into place, and the link never
// replaces an existing name.
func (s *Store) createVersion(version int, data []byte) error {
	path := s.artifactPath(version)
	pending, err := renameio.TempFile(s.baseDir, path)
	if err != nil {
		return err
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(data); err != nil {
		return err
	}
	if err := pending.Chmod(0o640); err != nil {
		return err
	}
	if err := pending.Sync(); err != nil {
		return err
	}
	return os.Link(pending.Name(), path)
}

// readCurrent reads the CURRENT pointer. A missing pointer yields 0.
func (s *Store) readCurrent() (int, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, currentFile))
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read current pointer: %w", err)
	}

	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || v < 0 {
		return 0, fmt.Errorf("corrupt current pointer %q", strings.TrimSpace(string(data)))
	}
	return v, nil
}

// Save writes set as the next version and moves CURRENT to it.
// On success set.Version and set.Checksum are filled in.
func (s *Store) Save(ctx context.Context, set *recommend.ArtifactSet) (int, error) {
	if err := set.Validate(); err != nil {
		return 0, fmt.Errorf("refusing to save: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(payload{
		TrainedAt: set.TrainedAt,
		Bundle:    set.Bundle,
		Snapshot:  set.Snapshot,
		Index:     set.Index,
	}); err != nil {
		return 0, fmt.Errorf("encode artifacts: %w", err)
	}

	rawData := buf.Bytes()
	hash := sha256.Sum256(rawData)
	checksum := hex.EncodeToString(hash[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return 0, fmt.Errorf("compress artifacts: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return 0, fmt.Errorf("finalize compression: %w", err)
	}

	version, err := s.nextVersion()
	if err != nil {
		return 0, err
	}
	sf := storedArtifacts{
		Metadata: ArtifactMetadata{
			TrainedAt:      set.TrainedAt,
			SavedAt:        time.Now(),
			VenueCount:     set.Snapshot.Len(),
			CityCount:      set.Snapshot.CityCount(),
			LocationWeight: set.LocationWeight(),
			Checksum:       checksum,
			SizeBytes:      int64(compressed.Len()),
		},
		CompressedData: compressed.Bytes(),
	}

	// Another process sharing baseDir may claim a number between the scan
	// and the write; move on to the next one rather than replace its file.
	for attempt := 1; ; attempt++ {
		sf.Metadata.Version = version
		var file bytes.Buffer
		if err := gob.NewEncoder(&file).Encode(sf); err != nil {
			return 0, fmt.Errorf("encode artifact file: %w", err)
		}

		err := s.createVersion(version, file.Bytes())
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) || attempt == maxSaveAttempts {
			return 0, fmt.Errorf("write artifact file: %w", err)
		}
		version++
	}
	s.latest = version

	if err := s.writeCurrent(version); err != nil {
		return 0, err
	}

	set.Version = version
	set.Checksum = checksum
	return version, nil
}

// Activate points CURRENT at an existing version, e.g. to roll back.
func (s *Store) Activate(ctx context.Context, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(s.artifactPath(version)); err != nil {
		return fmt.Errorf("activate version %d: %w", version, err)
	}
	return s.writeCurrent(version)
}

// writeCurrent atomically replaces the CURRENT pointer. Caller holds mu.
func (s *Store) writeCurrent(version int) error {
	data := []byte(strconv.Itoa(version) + "\n")
	if err := renameio.WriteFile(filepath.Join(s.baseDir, currentFile), data, 0o640); err != nil {
		return fmt.Errorf("write current pointer: %w", err)
	}
	s.current = version
	return nil
}

// Load reads and validates an artifact set. Version 0 loads the version
// named by CURRENT. Every failure wraps recommend.ErrModelUnavailable.
func (s *Store) Load(ctx context.Context, version int) (*recommend.ArtifactSet, *ArtifactMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	if version == 0 {
		version = s.current
		if version == 0 {
			return nil, nil, fmt.Errorf("%w: %w", recommend.ErrModelUnavailable, ErrNoArtifacts)
		}
	}

	sf, err := s.readFile(version)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", recommend.ErrModelUnavailable, err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: decompress artifacts: %v", recommend.ErrModelUnavailable, err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read decompressed data: %v", recommend.ErrModelUnavailable, err)
	}

	hash := sha256.Sum256(rawData)
	checksum := hex.EncodeToString(hash[:])
	if checksum != sf.Metadata.Checksum {
		return nil, nil, fmt.Errorf("%w: checksum mismatch: expected %s, got %s",
			recommend.ErrModelUnavailable, sf.Metadata.Checksum, checksum)
	}

	var p payload
	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(&p); err != nil {
		return nil, nil, fmt.Errorf("%w: decode artifacts: %v", recommend.ErrModelUnavailable, err)
	}

	set := &recommend.ArtifactSet{
		Version:   sf.Metadata.Version,
		TrainedAt: p.TrainedAt,
		Checksum:  checksum,
		Bundle:    p.Bundle,
		Snapshot:  p.Snapshot,
		Index:     p.Index,
	}
	if err := set.Validate(); err != nil {
		return nil, nil, fmt.Errorf("version %d: %w", version, err)
	}

	meta := sf.Metadata
	return set, &meta, nil
}

// LoadCurrent loads the version named by CURRENT.
func (s *Store) LoadCurrent(ctx context.Context) (*recommend.ArtifactSet, *ArtifactMetadata, error) {
	return s.Load(ctx, 0)
}

// readFile opens and decodes the outer artifact file.
func (s *Store) readFile(version int) (*storedArtifacts, error) {
	f, err := os.Open(s.artifactPath(version)) //nolint:gosec // path is built from an integer version
	if err != nil {
		return nil, fmt.Errorf("open artifact file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedArtifacts
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read artifact file: %w", err)
	}
	return &sf, nil
}

// CurrentVersion returns the version named by CURRENT.
func (s *Store) CurrentVersion() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current > 0
}

// Refresh re-reads CURRENT and the directory listing, picking up versions
// written by another process such as cmd/trainer.
func (s *Store) Refresh() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions, err := s.scanVersions()
	if err != nil {
		return 0, fmt.Errorf("scan artifacts: %w", err)
	}
	if len(versions) > 0 && versions[0] > s.latest {
		s.latest = versions[0]
	}

	current, err := s.readCurrent()
	if err != nil {
		return 0, err
	}
	s.current = current
	return current, nil
}

// List returns metadata for every readable version, newest first.
// Unreadable files are skipped.
func (s *Store) List(ctx context.Context) ([]ArtifactMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions, err := s.scanVersions()
	if err != nil {
		return nil, fmt.Errorf("scan artifacts: %w", err)
	}

	list := make([]ArtifactMetadata, 0, len(versions))
	for _, v := range versions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sf, err := s.readFile(v)
		if err != nil {
			continue
		}
		list = append(list, sf.Metadata)
	}
	return list, nil
}

// Prune removes old versions, keeping the newest keepVersions. Neither the
// version named by CURRENT on disk nor the one this Store activated is
// removed. It returns the number of files deleted.
func (s *Store) Prune(ctx context.Context, keepVersions int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keepVersions < 1 {
		keepVersions = 1
	}

	// CURRENT may have been moved by another process since this Store
	// last looked, so the pointer on disk is protected as well.
	onDisk, err := s.readCurrent()
	if err != nil {
		return 0, err
	}

	versions, err := s.scanVersions()
	if err != nil {
		return 0, fmt.Errorf("scan artifacts: %w", err)
	}

	removed := 0
	for i := keepVersions; i < len(versions); i++ {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if versions[i] == s.current || versions[i] == onDisk {
			continue
		}
		if err := os.Remove(s.artifactPath(versions[i])); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("delete version %d: %w", versions[i], err)
		}
		removed++
	}
	return removed, nil
}

// artifactPath returns the file path for a version.
func (s *Store) artifactPath(version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s%d%s", filePrefix, version, fileSuffix))
}

// Register gob types for serialization.
//
//nolint:gochecknoinits // gob.Register must be called in init for type registration
func init() {
	gob.Register(payload{})
	gob.Register(storedArtifacts{})
	gob.Register(ArtifactMetadata{})
}
