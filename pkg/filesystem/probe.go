package filesystem

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/damonswayn/agentconfig/pkg/errors"
	"github.com/damonswayn/agentconfig/pkg/types"
)

// Kind classifies what currently sits at a path.
type Kind string

const (
	KindAbsent    Kind = "absent"
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
	KindSymlink   Kind = "symlink"
)

// Probe answers existence, kind and identity questions about paths without
// ever following symlinks.
type Probe struct {
	fs types.FS
}

// NewProbe creates a probe over the given filesystem.
func NewProbe(filesys types.FS) *Probe {
	return &Probe{fs: filesys}
}

// Exists reports whether anything sits at path. Dangling symlinks exist.
func (p *Probe) Exists(path string) bool {
	_, err := p.fs.Lstat(path)
	return err == nil
}

// KindOf returns the kind of the node at path. For symlinks the second
// return value is the literal, unresolved link target.
func (p *Probe) KindOf(path string) (Kind, string, error) {
	info, err := p.fs.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return KindAbsent, "", nil
		}
		return KindAbsent, "", errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path)
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := p.fs.Readlink(path)
		if err != nil {
			return KindSymlink, "", errors.Wrapf(err, errors.ErrFileAccess, "cannot read link %s", path)
		}
		return KindSymlink, target, nil
	}

	if info.IsDir() {
		return KindDirectory, "", nil
	}

	return KindFile, "", nil
}

// ContentHash returns a stable digest of the node at path. Files hash
// their bytes; directories hash their sorted entries structurally, tagging
// each entry with its name and kind so directory identity is comparable
// across runs regardless of traversal order. Symlinks hash their literal
// target string and are never followed.
func (p *Probe) ContentHash(path string) (string, error) {
	digest, err := p.rawHash(path)
	if err != nil {
		return "", err
	}
	return "sha256:" + hex.EncodeToString(digest), nil
}

func (p *Probe) rawHash(path string) ([]byte, error) {
	kind, linkTarget, err := p.KindOf(path)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindFile:
		data, err := p.fs.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path)
		}
		sum := sha256.Sum256(data)
		return sum[:], nil

	case KindDirectory:
		h := sha256.New()
		if err := p.hashDirInto(h, path); err != nil {
			return nil, err
		}
		return h.Sum(nil), nil

	case KindSymlink:
		sum := sha256.Sum256([]byte(linkTarget))
		return sum[:], nil

	default:
		return nil, errors.Newf(errors.ErrNotFound, "cannot hash %s: path does not exist", path)
	}
}

func (p *Probe) hashDirInto(h hash.Hash, dir string) error {
	entries, err := p.fs.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read directory %s", dir)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		child := filepath.Join(dir, entry.Name())
		kind, _, err := p.KindOf(child)
		if err != nil {
			return err
		}

		h.Write([]byte(entry.Name()))
		h.Write([]byte{0})
		h.Write([]byte(kind))
		h.Write([]byte{0})

		childDigest, err := p.rawHash(child)
		if err != nil {
			return err
		}
		h.Write(childDigest)
	}

	return nil
}

// CanCreateSymlinks empirically checks whether the platform allows symlink
// creation by attempting one in a scratch temporary directory.
func (p *Probe) CanCreateSymlinks() bool {
	dir, err := os.MkdirTemp("", "agentconfig-lnk-*")
	if err != nil {
		return false
	}
	defer func() { _ = os.RemoveAll(dir) }()

	link := filepath.Join(dir, "probe")
	return p.fs.Symlink(dir, link) == nil
}
