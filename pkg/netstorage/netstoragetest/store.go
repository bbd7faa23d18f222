package netstoragetest

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tendant/netstorage/pkg/netstorage"
)

var (
	errNotFound = errors.New("object not found")
	errNotEmpty = errors.New("directory not empty")
	errNotDir   = errors.New("not a directory")
	errIsDir    = errors.New("is a directory")
)

type entry struct {
	typ    netstorage.FileType
	data   []byte
	target string
	mtime  time.Time
}

// Store is an in-memory tree of files and directories keyed by wire path.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	now     func() time.Time
}

// NewStore creates an empty store holding only the given root directories.
func NewStore(roots ...string) *Store {
	s := &Store{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
	for _, root := range roots {
		s.mkdirAll(netstorage.PathFromString(root))
	}
	return s
}

// SetClock replaces the clock used for modification times.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Put stores data at path, creating missing parent directories.
func (s *Store) Put(path string, data []byte) error {
	p := netstorage.PathFromString(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[p.String()]; ok && e.typ == netstorage.FileTypeDir {
		return errIsDir
	}
	s.mkdirAll(p.Dir())
	s.entries[p.String()] = &entry{
		typ:   netstorage.FileTypeFile,
		data:  append([]byte(nil), data...),
		mtime: s.now(),
	}
	return nil
}

// Symlink records a symlink at path pointing to target.
func (s *Store) Symlink(path, target string) {
	p := netstorage.PathFromString(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.mkdirAll(p.Dir())
	s.entries[p.String()] = &entry{typ: netstorage.FileTypeSymlink, target: target, mtime: s.now()}
}

// Mkdir creates path and its parents.
func (s *Store) Mkdir(path string) error {
	p := netstorage.PathFromString(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[p.String()]; ok && e.typ != netstorage.FileTypeDir {
		return errNotDir
	}
	s.mkdirAll(p)
	return nil
}

func (s *Store) mkdirAll(p netstorage.Path) {
	for !p.IsRoot() {
		if _, ok := s.entries[p.String()]; ok {
			return
		}
		s.entries[p.String()] = &entry{typ: netstorage.FileTypeDir, mtime: s.now()}
		p = p.Dir()
	}
}

// Get returns the content of the file at path.
func (s *Store) Get(path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[netstorage.PathFromString(path).String()]
	if !ok {
		return nil, errNotFound
	}
	if e.typ == netstorage.FileTypeDir {
		return nil, errIsDir
	}
	return append([]byte(nil), e.data...), nil
}

// Exists reports whether anything is stored at path.
func (s *Store) Exists(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[netstorage.PathFromString(path).String()]
	return ok
}

// Stat describes the entry at path.
func (s *Store) Stat(path string) (netstorage.File, error) {
	p := netstorage.PathFromString(path)

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[p.String()]
	if !ok {
		return netstorage.File{}, errNotFound
	}
	return s.describe(p, e), nil
}

// List returns the direct children of the directory at path, by name.
func (s *Store) List(path string) ([]netstorage.File, error) {
	dir := netstorage.PathFromString(path)

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[dir.String()]
	if !ok {
		return nil, errNotFound
	}
	if e.typ != netstorage.FileTypeDir {
		return nil, errNotDir
	}

	var files []netstorage.File
	for _, key := range s.childKeys(dir) {
		files = append(files, s.describe(netstorage.PathFromString(key), s.entries[key]))
	}
	return files, nil
}

// Delete removes the non-directory entry at path.
func (s *Store) Delete(path string) error {
	p := netstorage.PathFromString(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[p.String()]
	if !ok {
		return errNotFound
	}
	if e.typ == netstorage.FileTypeDir {
		return errIsDir
	}
	delete(s.entries, p.String())
	return nil
}

// Rmdir removes the empty directory at path.
func (s *Store) Rmdir(path string) error {
	p := netstorage.PathFromString(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[p.String()]
	if !ok {
		return errNotFound
	}
	if e.typ != netstorage.FileTypeDir {
		return errNotDir
	}
	if len(s.childKeys(p)) > 0 {
		return errNotEmpty
	}
	delete(s.entries, p.String())
	return nil
}

// Usage counts the files and bytes below path.
func (s *Store) Usage(path string) (files, bytes int64, err error) {
	dir := netstorage.PathFromString(path)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.entries[dir.String()]; !ok {
		return 0, 0, errNotFound
	}
	prefix := dir.String() + netstorage.Separator
	for key, e := range s.entries {
		if e.typ != netstorage.FileTypeFile || !strings.HasPrefix(key, prefix) {
			continue
		}
		files++
		bytes += int64(len(e.data))
	}
	return files, bytes, nil
}

// Paths returns every stored path in lexical order.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) childKeys(dir netstorage.Path) []string {
	var keys []string
	for key := range s.entries {
		p := netstorage.PathFromString(key)
		if !p.IsRoot() && p.Dir().Equal(dir) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) describe(p netstorage.Path, e *entry) netstorage.File {
	f := netstorage.File{
		Path:  p.Dir(),
		Type:  e.typ,
		Name:  p.Base(),
		MTime: e.mtime,
	}
	switch e.typ {
	case netstorage.FileTypeFile:
		sum := md5.Sum(e.data)
		f.Size = int64(len(e.data))
		f.MD5 = hex.EncodeToString(sum[:])
	case netstorage.FileTypeDir:
		prefix := p.String() + netstorage.Separator
		for key, child := range s.entries {
			if child.typ == netstorage.FileTypeFile && strings.HasPrefix(key, prefix) {
				f.Files++
				f.Bytes += int64(len(child.data))
			}
		}
	case netstorage.FileTypeSymlink:
		f.Target = e.target
	}
	return f
}
