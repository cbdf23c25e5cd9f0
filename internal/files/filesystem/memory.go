package filesystem

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sync"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory files
type memoryFileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return false }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

type memoryFile struct {
	content []byte
	info    *memoryFileInfo
}

// MemoryFileSystem implements FileSystemProvider in memory for tests.
// Relative paths are resolved against root.
type MemoryFileSystem struct {
	mu    sync.RWMutex
	files map[string]*memoryFile
	root  string
}

// NewMemoryFileSystem creates an empty in-memory filesystem rooted at root.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	return &MemoryFileSystem{
		files: make(map[string]*memoryFile),
		root:  path.Clean(filepath.ToSlash(root)),
	}
}

// AddFile adds or replaces a file.
func (mfs *MemoryFileSystem) AddFile(filePath string, content string) {
	mfs.AddBytes(filePath, []byte(content))
}

// AddBytes adds or replaces a file with raw content, for dumps that are not
// valid UTF-8.
func (mfs *MemoryFileSystem) AddBytes(filePath string, content []byte) {
	abs := mfs.resolve(filePath)
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.files[abs] = &memoryFile{
		content: append([]byte(nil), content...),
		info: &memoryFileInfo{
			name:    path.Base(abs),
			size:    int64(len(content)),
			modTime: time.Now(),
		},
	}
}

func (mfs *MemoryFileSystem) resolve(p string) string {
	p = filepath.ToSlash(p)
	if !path.IsAbs(p) {
		p = path.Join(mfs.root, p)
	}
	return path.Clean(p)
}

func (mfs *MemoryFileSystem) lookup(op, p string) (*memoryFile, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	f, ok := mfs.files[mfs.resolve(p)]
	if !ok {
		return nil, &fs.PathError{Op: op, Path: p, Err: fs.ErrNotExist}
	}
	return f, nil
}

func (mfs *MemoryFileSystem) Open(p string) (io.ReadCloser, error) {
	f, err := mfs.lookup("open", p)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(f.content)), nil
}

func (mfs *MemoryFileSystem) ReadFile(p string) ([]byte, error) {
	f, err := mfs.lookup("read", p)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), f.content...), nil
}

func (mfs *MemoryFileSystem) Stat(p string) (FileInfo, error) {
	f, err := mfs.lookup("stat", p)
	if err != nil {
		return nil, err
	}
	return f.info, nil
}
