// Package store archives simulated paths as compressed, content-addressed objects.
package store

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	ObjectsDir = "objects"
	RefsDir    = "refs"
)

var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidRef = errors.New("invalid ref name")
)

// Store is a directory of sha256-named objects sharded by the first two hex
// digits, plus named refs listing object hashes.
type Store struct {
	Root string
}

func New(root string) *Store {
	return &Store{Root: root}
}

func (s *Store) Init() error {
	paths := []string{
		filepath.Join(s.Root, ObjectsDir),
		filepath.Join(s.Root, RefsDir),
	}

	for _, p := range paths {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return fmt.Errorf("failed to init store at %s: %w", p, err)
		}
	}
	return nil
}

func (s *Store) Exists() bool {
	info, err := os.Stat(s.Root)
	return err == nil && info.IsDir()
}

// Put writes data and returns its hash. Writing the same data twice is a no-op.
func (s *Store) Put(data []byte) (string, error) {
	hash := s.hash(data)
	shardDir := filepath.Join(s.Root, ObjectsDir, hash[:2])
	if err := os.MkdirAll(shardDir, 0o755); err != nil {
		return "", fmt.Errorf("shard creation failed: %w", err)
	}

	path := filepath.Join(shardDir, hash[2:])
	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return "", err
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("fsync failed: %w", err)
	}
	return hash, nil
}

func (s *Store) Get(hash string) ([]byte, error) {
	path, err := s.objectPath(hash)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", hash, err)
	}
	return data, nil
}

func (s *Store) Delete(hash string) error {
	path, err := s.objectPath(hash)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// List returns every object hash in lexical order.
func (s *Store) List() ([]string, error) {
	var hashes []string
	objRoot := filepath.Join(s.Root, ObjectsDir)

	err := filepath.Walk(objRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			shard := filepath.Base(filepath.Dir(path))
			hashes = append(hashes, shard+info.Name())
		}
		return nil
	})
	sort.Strings(hashes)
	return hashes, err
}

// Resolve expands a unique hash prefix of at least 3 characters.
func (s *Store) Resolve(prefix string) (string, error) {
	if len(prefix) < 3 {
		return "", fmt.Errorf("hash prefix too short: %q", prefix)
	}
	if strings.Trim(prefix, "0123456789abcdef") != "" {
		return "", fmt.Errorf("%w: %q is not a hex hash prefix", ErrNotFound, prefix)
	}

	dir := filepath.Join(s.Root, ObjectsDir, prefix[:2])
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	}

	var match string
	for _, f := range files {
		if strings.HasPrefix(f.Name(), prefix[2:]) {
			if match != "" {
				return "", fmt.Errorf("ambiguous hash prefix %s", prefix)
			}
			match = prefix[:2] + f.Name()
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: no object matching prefix %s", ErrNotFound, prefix)
	}
	return match, nil
}

// WriteRef records an ordered list of object hashes under name.
func (s *Store) WriteRef(name string, hashes []string) error {
	if err := checkRefName(name); err != nil {
		return err
	}
	var buf bytes.Buffer
	for _, h := range hashes {
		buf.WriteString(h)
		buf.WriteByte('\n')
	}
	path := filepath.Join(s.Root, RefsDir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write ref %s: %w", name, err)
	}
	return nil
}

// ReadRef returns the hashes recorded under name.
func (s *Store) ReadRef(name string) ([]string, error) {
	if err := checkRefName(name); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.Root, RefsDir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: ref %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var hashes []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			hashes = append(hashes, line)
		}
	}
	return hashes, sc.Err()
}

// Refs returns every ref name in lexical order.
func (s *Store) Refs() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.Root, RefsDir))
	if err != nil {
		return nil, fmt.Errorf("read refs: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Prune deletes every object no ref points to and returns the deleted hashes.
func (s *Store) Prune() ([]string, error) {
	refs, err := s.Refs()
	if err != nil {
		return nil, err
	}
	live := make(map[string]struct{})
	for _, name := range refs {
		hashes, err := s.ReadRef(name)
		if err != nil {
			return nil, err
		}
		for _, h := range hashes {
			live[h] = struct{}{}
		}
	}

	objects, err := s.List()
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	var deleted []string
	for _, h := range objects {
		if _, ok := live[h]; ok {
			continue
		}
		if err := s.Delete(h); err != nil {
			return deleted, fmt.Errorf("delete object %s: %w", h, err)
		}
		deleted = append(deleted, h)
	}
	return deleted, nil
}

// PutPath encodes and stores one path.
func (s *Store) PutPath(path []float64) (string, error) {
	data, err := EncodePath(path)
	if err != nil {
		return "", err
	}
	return s.Put(data)
}

// GetPath loads and decodes one path.
func (s *Store) GetPath(hash string) ([]float64, error) {
	data, err := s.Get(hash)
	if err != nil {
		return nil, err
	}
	return DecodePath(data)
}

func checkRefName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidRef, name)
	}
	return nil
}

func (s *Store) objectPath(hash string) (string, error) {
	if len(hash) != sha256.Size*2 {
		return "", fmt.Errorf("invalid object hash %q", hash)
	}
	return filepath.Join(s.Root, ObjectsDir, hash[:2], hash[2:]), nil
}

func (s *Store) hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
