// Package snapshotstore keeps tree snapshots and their seals in a local
// directory.
//
// Each tree has its own sub directory, named by a uuid:
//
//	<dir>/<id>/snapshot.json   (snapshot.cbor with WithCBOR)
//	<dir>/<id>/seal.cbor
package snapshotstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-merkletree/snapshot"
	"github.com/google/uuid"
)

var (
	ErrSnapshotNotFound = errors.New("snapshotstore: snapshot not found")
	ErrSealNotFound     = errors.New("snapshotstore: seal not found")
	ErrPathIsNotDir     = errors.New("snapshotstore: path is not a directory")
	ErrWriteIncomplete  = errors.New("snapshotstore: write incomplete")
)

const (
	snapshotJSONFile = "snapshot.json"
	snapshotCBORFile = "snapshot.cbor"
	sealFile         = "seal.cbor"
)

type Options struct {
	cbor    bool
	dirMode os.FileMode
}

type Option func(*Options)

// WithCBOR stores new snapshots as CBOR rather than JSON. Either form is read.
func WithCBOR() Option {
	return func(o *Options) { o.cbor = true }
}

func WithDirMode(mode os.FileMode) Option {
	return func(o *Options) { o.dirMode = mode }
}

type Store struct {
	log   logger.Logger
	dir   string
	opts  Options
	codec snapshot.CBORCodec
}

// NewStore returns a store rooted at dir, creating dir if it does not exist.
func NewStore(log logger.Logger, dir string, opts ...Option) (*Store, error) {
	o := Options{dirMode: os.FileMode(0755)}
	for _, opt := range opts {
		opt(&o)
	}

	fi, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err = os.MkdirAll(dir, o.dirMode); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case !fi.IsDir():
		return nil, fmt.Errorf("%w: %s", ErrPathIsNotDir, dir)
	}

	codec, err := snapshot.NewCBORCodec()
	if err != nil {
		return nil, err
	}
	return &Store{log: log, dir: dir, opts: o, codec: codec}, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) treeDir(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String())
}

// Put stores snap under id, replacing any snapshot already there.
func (s *Store) Put(ctx context.Context, id uuid.UUID, snap snapshot.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	name, stale := snapshotJSONFile, snapshotCBORFile
	var data []byte
	var err error
	if s.opts.cbor {
		name, stale = snapshotCBORFile, snapshotJSONFile
		data, err = s.codec.MarshalCBOR(snap)
	} else {
		data, err = snapshot.MarshalJSON(snap)
	}
	if err != nil {
		return err
	}

	dir := s.treeDir(id)
	if err := os.MkdirAll(dir, s.opts.dirMode); err != nil {
		return err
	}
	if err := writeAll(filepath.Join(dir, name), data); err != nil {
		return err
	}
	// only one form of the snapshot may exist for an id
	if err := os.Remove(filepath.Join(dir, stale)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	s.log.Debugf("put snapshot %s: %d leaves, %s", id, len(snap.Values), name)
	return nil
}

// Get reads and validates the snapshot stored under id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (snapshot.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return snapshot.Snapshot{}, err
	}
	dir := s.treeDir(id)

	data, err := os.ReadFile(filepath.Join(dir, snapshotJSONFile))
	if err == nil {
		return snapshot.UnmarshalJSON(data)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return snapshot.Snapshot{}, err
	}

	data, err = os.ReadFile(filepath.Join(dir, snapshotCBORFile))
	if errors.Is(err, fs.ErrNotExist) {
		return snapshot.Snapshot{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	return s.codec.UnmarshalCBOR(data)
}

// PutSeal stores an encoded seal for the tree with id. The snapshot must be
// stored first.
func (s *Store) PutSeal(ctx context.Context, id uuid.UUID, seal []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := s.treeDir(id)
	fi, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: %s", ErrPathIsNotDir, dir)
	}
	if err := writeAll(filepath.Join(dir, sealFile), seal); err != nil {
		return err
	}
	s.log.Debugf("put seal %s: %d bytes", id, len(seal))
	return nil
}

// GetSeal returns the encoded seal for id. See sealing.DecodeSignedRoot
func (s *Store) GetSeal(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.treeDir(id), sealFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSealNotFound, id)
	}
	return data, err
}

// List returns the ids of the stored trees in ascending order. Entries that
// are not uuid named directories are ignored.
func (s *Store) List(ctx context.Context) ([]uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id, err := uuid.Parse(e.Name())
		if err != nil {
			s.log.Debugf("list: skipping %s: %v", e.Name(), err)
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

// Delete removes the snapshot and seal stored for id.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := s.treeDir(id)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	s.log.Infof("delete %s", id)
	return os.RemoveAll(dir)
}

func writeAll(filename string, data []byte) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := f.Write(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return fmt.Errorf("%w: %s", ErrWriteIncomplete, filename)
	}
	return f.Sync()
}
