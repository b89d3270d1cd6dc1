package store

import (
	"errors"
	"io/fs"

	"github.com/peterbourgon/diskv/v3"
)

type diskvStore struct {
	d *diskv.Diskv
}

// OpenDiskv stores each key as a file directly under dir.
func OpenDiskv(dir string) (KV, error) {
	d := diskv.New(diskv.Options{
		BasePath:     dir,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 1024 * 1024, // 1MB
	})
	return &diskvStore{d: d}, nil
}

func (s *diskvStore) Get(key string) ([]byte, error) {
	b, err := s.d.Read(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *diskvStore) Set(key string, value []byte) error {
	return s.d.Write(key, value)
}

func (s *diskvStore) Delete(key string) error {
	if !s.d.Has(key) {
		return nil
	}
	return s.d.Erase(key)
}

func (s *diskvStore) Close() error { return nil }
