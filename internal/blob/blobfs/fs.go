// Package blobfs stores backup blobs in a local directory: one data file
// and one YAML metadata sidecar per blob.
package blobfs

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yiblet/clipsync/internal/blob"
	"github.com/zeebo/xxh3"
	"gopkg.in/yaml.v3"
)

const (
	dataExt = ".blob"
	metaExt = ".yaml"
)

// meta is the sidecar document written next to each blob.
type meta struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	Tags     map[string]string `yaml:"tags,omitempty"`
	Size     int64             `yaml:"size"`
	Checksum string            `yaml:"checksum"`
	Modified time.Time         `yaml:"modified"`
}

func (m *meta) info() blob.Info {
	return blob.Info{
		ID:           m.ID,
		Name:         m.Name,
		Tags:         m.Tags,
		Size:         m.Size,
		ModifiedTime: m.Modified,
	}
}

// Store is a filesystem-backed blob.Store rooted at a directory
type Store struct {
	root string
	now  func() time.Time
}

var _ blob.Store = (*Store)(nil)

// New creates a Store rooted at root, creating the directory if needed
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &Store{root: root, now: time.Now}, nil
}

// Root returns the root directory path
func (s *Store) Root() string {
	return s.root
}

// Open implements fs.FS over the blob directory
func (s *Store) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return os.Open(filepath.Join(s.root, name))
}

// ReadDir implements fs.ReadDirFS
func (s *Store) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	return os.ReadDir(filepath.Join(s.root, name))
}

// writeFile writes data atomically: readers see the old file or the new
// one, never a partial write
func (s *Store) writeFile(name string, data []byte) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "writefile", Path: name, Err: fs.ErrInvalid}
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.root, name))
}

func (s *Store) remove(name string) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrInvalid}
	}
	err := os.Remove(filepath.Join(s.root, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func checksum(data []byte) string {
	sum := xxh3.Hash128(data).Bytes()
	return hex.EncodeToString(sum[:])
}

// validID rejects ids that could escape the root directory
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Upload writes data under a fresh uuid. The sidecar is written last, so a
// blob is only listed once its data is complete.
func (s *Store) Upload(ctx context.Context, name string, tags map[string]string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	if err := s.writeFile(id+dataExt, data); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	m := meta{
		ID:       id,
		Name:     name,
		Tags:     tags,
		Size:     int64(len(data)),
		Checksum: checksum(data),
		Modified: s.now().UTC(),
	}
	doc, err := yaml.Marshal(&m)
	if err != nil {
		s.remove(id + dataExt)
		return "", fmt.Errorf("failed to marshal blob metadata: %w", err)
	}
	if err := s.writeFile(id+metaExt, doc); err != nil {
		s.remove(id + dataExt)
		return "", fmt.Errorf("failed to write blob metadata: %w", err)
	}

	return id, nil
}

// Download reads blob id and verifies its checksum
func (s *Store) Download(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, fmt.Errorf("blob %q: %w", id, blob.ErrNotFound)
	}

	m, err := s.readMeta(id + metaExt)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("blob %s: %w", id, blob.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(s, id+dataExt)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("blob %s: %w", id, blob.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}

	if checksum(data) != m.Checksum {
		return nil, fmt.Errorf("blob %s: %w", id, blob.ErrChecksum)
	}
	return data, nil
}

// Delete removes blob id; missing blobs are ignored
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validID(id) {
		return nil
	}

	// metadata first so a half-deleted blob is no longer listed
	if err := s.remove(id + metaExt); err != nil {
		return fmt.Errorf("failed to delete blob metadata: %w", err)
	}
	if err := s.remove(id + dataExt); err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// List returns the blobs whose name starts with scope, newest first
func (s *Store) List(ctx context.Context, scope string) ([]blob.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := s.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to read blob directory: %w", err)
	}

	var infos []blob.Info
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, metaExt) || strings.HasPrefix(name, ".") {
			continue
		}

		m, err := s.readMeta(name)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(m.Name, scope) {
			continue
		}
		infos = append(infos, m.info())
	}

	slices.SortFunc(infos, func(a, b blob.Info) int {
		if c := b.ModifiedTime.Compare(a.ModifiedTime); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return infos, nil
}

func (s *Store) readMeta(name string) (*meta, error) {
	doc, err := fs.ReadFile(s, name)
	if err != nil {
		return nil, err
	}
	var m meta
	if err := yaml.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("failed to parse blob metadata %s: %w", name, err)
	}
	return &m, nil
}
