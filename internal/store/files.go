package store

import (
	"context"
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"

	"calpersonal/internal/model"
)

const fileExt = ".json"

// FileStore keeps each document as a flat JSON file under one directory.
type FileStore struct {
	d   *diskv.Diskv
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir: dir,
		d: diskv.New(diskv.Options{
			BasePath:          dir,
			TempDir:           filepath.Join(dir, ".tmp"),
			AdvancedTransform: flatTransform,
			InverseTransform:  func(pk *diskv.PathKey) string { return pk.FileName },
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
	}
}

func flatTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{FileName: key}
}

// Path returns the on-disk location of a document.
func (s *FileStore) Path(doc string) string {
	return filepath.Join(s.dir, doc+fileExt)
}

func (s *FileStore) Load(ctx context.Context) Cache {
	return Cache{
		Events: decodeEvents(s.read(EventsDoc)),
		Tasks:  decodeTasks(s.read(TasksDoc)),
	}
}

func (s *FileStore) read(doc string) []byte {
	b, err := s.d.Read(doc + fileExt)
	if err != nil {
		// Missing on first run; anything else is treated the same way.
		return nil
	}
	return b
}

func (s *FileStore) SaveEvents(ctx context.Context, events EventIndex) error {
	b, err := encodeEvents(events)
	if err != nil {
		return err
	}
	return s.d.Write(EventsDoc+fileExt, b)
}

func (s *FileStore) SaveTasks(ctx context.Context, tasks []model.TaskEntry) error {
	b, err := encodeTasks(tasks)
	if err != nil {
		return err
	}
	return s.d.Write(TasksDoc+fileExt, b)
}

func (s *FileStore) Close() error { return nil }
