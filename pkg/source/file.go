package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/JorgeRod2594/feature-hub/pkg/feature"
)

// File reads modules from a directory. Sources are root-relative paths
// like "apps/checkout.json"; the backend never escapes its root.
type File struct {
	fsys    fs.FS
	maxSize int64
	decoder *Decoder
}

// FileOption configures a File backend.
type FileOption func(*File)

// WithFileMaxSize caps the module size in bytes.
func WithFileMaxSize(n int64) FileOption {
	return func(f *File) { f.maxSize = n }
}

// NewFile creates a backend rooted at dir.
func NewFile(dir string, dec *Decoder, opts ...FileOption) *File {
	return NewFileFS(os.DirFS(dir), dec, opts...)
}

// NewFileFS creates a backend over an existing filesystem.
func NewFileFS(fsys fs.FS, dec *Decoder, opts ...FileOption) *File {
	f := &File{fsys: fsys, maxSize: DefaultMaxModuleSize, decoder: dec}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// LoadModule implements manager.ModuleLoader.
func (f *File) LoadModule(ctx context.Context, src string) (*feature.Definition, error) {
	rel, ok := relModulePath(src)
	if !ok {
		return nil, fmt.Errorf("module source %q: %w", src, ErrNotFound)
	}

	file, err := f.fsys.Open(rel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("module %q: %w", src, ErrNotFound)
		}
		return nil, fmt.Errorf("read module %q: %w", src, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("read module %q: %w", src, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("module %q: %w", src, ErrNotFound)
	}
	if f.maxSize > 0 && info.Size() > f.maxSize {
		return nil, fmt.Errorf("module %q: %w", src, ErrTooLarge)
	}

	data, err := readCapped(file, f.maxSize)
	if err != nil {
		return nil, fmt.Errorf("read module %q: %w", src, err)
	}
	return f.decoder.Decode(ctx, src, data)
}

// relModulePath sanitizes a module source into a root-relative path.
// It rejects traversal and absolute-path tricks so loading cannot
// escape the root.
func relModulePath(src string) (string, bool) {
	rel := srcPath(src)
	if rel == "" {
		return "", false
	}

	// Reject NUL early (can appear via %00).
	if strings.IndexByte(rel, 0) != -1 {
		return "", false
	}

	// Reject platform-dependent separators.
	if strings.Contains(rel, "\\") {
		return "", false
	}

	if strings.HasPrefix(rel, "/") {
		return "", false
	}

	// Reject dot-segments before cleaning to avoid "cleaning away"
	// traversal attempts.
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if clean == "." || clean == "" || !fs.ValidPath(clean) {
		return "", false
	}
	return clean, true
}
