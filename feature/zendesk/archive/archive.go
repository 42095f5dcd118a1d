package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"forum-importer/core/storage"

	"github.com/minio/minio-go/v7"
)

// ErrMemberNotFound is returned when the dump has no member of the requested name.
var ErrMemberNotFound = errors.New("archive member not found")

// Marker is the member whose location identifies the dump's root.
const Marker = "users.xml"

// Reader opens member documents of a dump by name, e.g. "users.xml".
type Reader interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Dir reads a dump unpacked into a local directory.
type Dir struct {
	root string
}

// NewDir opens the dump at root. When root holds no Marker but exactly one
// subdirectory, that subdirectory is used instead.
func NewDir(root string) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dump path %s is not a directory", root)
	}

	if _, err := os.Stat(filepath.Join(root, Marker)); err == nil {
		return &Dir{root: root}, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list dump directory: %w", err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	if len(dirs) == 1 {
		nested := filepath.Join(root, dirs[0])
		if _, err := os.Stat(filepath.Join(nested, Marker)); err == nil {
			return &Dir{root: nested}, nil
		}
	}
	return &Dir{root: root}, nil
}

// Root returns the directory members are read from.
func (d *Dir) Root() string {
	return d.root
}

// Open opens a member file.
func (d *Dir) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(d.root, filepath.Base(name)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrMemberNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, nil
}

// Bucket reads a dump stored under a prefix of an object storage bucket.
type Bucket struct {
	client  storage.Client
	bucket  string
	prefix  string
	members map[string]struct{}
}

// NewBucket lists the dump under prefix. Members may sit directly under the
// prefix or in one folder below it.
func NewBucket(ctx context.Context, client storage.Client, bucket, prefix string) (*Bucket, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	var keys []string
	for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list dump objects: %w", obj.Err)
		}
		keys = append(keys, obj.Key)
	}

	root := prefix
	for _, key := range keys {
		if path.Base(key) != Marker {
			continue
		}
		dir := path.Dir(key) + "/"
		if dir == "./" {
			dir = ""
		}
		// Accept the marker at the prefix or one folder below it.
		if dir == prefix || strings.Count(strings.TrimPrefix(dir, prefix), "/") == 1 {
			root = dir
			break
		}
	}

	b := &Bucket{client: client, bucket: bucket, prefix: root, members: make(map[string]struct{})}
	for _, key := range keys {
		if rest, ok := strings.CutPrefix(key, root); ok && !strings.Contains(rest, "/") {
			b.members[rest] = struct{}{}
		}
	}
	return b, nil
}

// Prefix returns the object key prefix members are read from.
func (b *Bucket) Prefix() string {
	return b.prefix
}

// Open streams a member object.
func (b *Bucket) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if _, ok := b.members[name]; !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrMemberNotFound)
	}
	obj, err := b.client.GetObject(ctx, b.bucket, b.prefix+name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s%s: %w", b.prefix, name, err)
	}
	return obj, nil
}
