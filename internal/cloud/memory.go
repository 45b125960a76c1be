package cloud

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "budgettracker/internal/errors"
)

// Operation names counted and failed by MemoryStore.
const (
	OpFindFolders  = "FindFolders"
	OpCreateFolder = "CreateFolder"
	OpFindFiles    = "FindFiles"
	OpCreateFile   = "CreateFile"
	OpUpdateFile   = "UpdateFile"
	OpGetFile      = "GetFile"
	OpDownload     = "Download"
	OpDelete       = "Delete"
)

type memoryObject struct {
	File
	folder  bool
	parent  string
	content []byte
}

// MemoryStore is an ObjectStore held in process memory. It backs the
// "memory" cloud provider for local development and is used by tests,
// which can count calls, inject failures and slow operations down.
//
// Modification times increase by at least one millisecond per write.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]*memoryObject
	seq     int
	last    time.Time
	calls   map[string]int
	fail    map[string]error
	failID  map[string]error
	delay   time.Duration
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]*memoryObject),
		calls:   make(map[string]int),
		fail:    make(map[string]error),
		failID:  make(map[string]error),
	}
}

// Calls returns how many times op was invoked.
func (m *MemoryStore) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// FailOn makes every call of op return err until cleared with a nil err.
func (m *MemoryStore) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, op)
		return
	}
	m.fail[op] = err
}

// FailDelete makes deleting fileID return err.
func (m *MemoryStore) FailDelete(fileID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failID[fileID] = err
}

// SetDelay makes every call sleep for d before doing its work.
func (m *MemoryStore) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// PutFolder adds a folder with the given creation time, bypassing counters.
func (m *MemoryStore) PutFolder(name, parentID string, created time.Time) File {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(name, parentID, nil, true, created.UTC())
}

// PutFile adds a file with the given modification time, bypassing counters.
func (m *MemoryStore) PutFile(folderID, name string, content []byte, modified time.Time) File {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(name, folderID, content, false, modified.UTC())
}

func (m *MemoryStore) FindFolders(ctx context.Context, name, parentID string) ([]File, error) {
	if err := m.begin(ctx, OpFindFolders); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(name, parentID, true), nil
}

func (m *MemoryStore) CreateFolder(ctx context.Context, name, parentID string) (File, error) {
	if err := m.begin(ctx, OpCreateFolder); err != nil {
		return File{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(name, parentID, nil, true, m.now()), nil
}

func (m *MemoryStore) FindFiles(ctx context.Context, name, folderID string) ([]File, error) {
	if err := m.begin(ctx, OpFindFiles); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(name, folderID, false), nil
}

func (m *MemoryStore) CreateFile(ctx context.Context, folderID, name string, content []byte) (File, error) {
	if err := m.begin(ctx, OpCreateFile); err != nil {
		return File{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if folderID != "" {
		if parent, ok := m.objects[folderID]; !ok || !parent.folder {
			return File{}, apperrors.WithMessage(apperrors.ErrNotFound, fmt.Sprintf("folder %s not found", folderID))
		}
	}
	return m.insert(name, folderID, content, false, m.now()), nil
}

func (m *MemoryStore) UpdateFile(ctx context.Context, fileID string, content []byte) (File, error) {
	if err := m.begin(ctx, OpUpdateFile); err != nil {
		return File{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, err := m.lookup(fileID)
	if err != nil {
		return File{}, err
	}
	obj.content = append([]byte(nil), content...)
	obj.Size = int64(len(content))
	obj.ModifiedTime = m.now()
	return obj.File, nil
}

func (m *MemoryStore) GetFile(ctx context.Context, fileID string) (File, error) {
	if err := m.begin(ctx, OpGetFile); err != nil {
		return File{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, err := m.lookup(fileID)
	if err != nil {
		return File{}, err
	}
	return obj.File, nil
}

func (m *MemoryStore) Download(ctx context.Context, fileID string) ([]byte, error) {
	if err := m.begin(ctx, OpDownload); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, err := m.lookup(fileID)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), obj.content...), nil
}

func (m *MemoryStore) Delete(ctx context.Context, fileID string) error {
	if err := m.begin(ctx, OpDelete); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failID[fileID]; err != nil {
		return err
	}
	if _, err := m.lookup(fileID); err != nil {
		return err
	}
	delete(m.objects, fileID)
	return nil
}

func (m *MemoryStore) begin(ctx context.Context, op string) error {
	m.mu.Lock()
	m.calls[op]++
	delay := m.delay
	err := m.fail[op]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

func (m *MemoryStore) find(name, parentID string, folders bool) []File {
	var out []File
	for _, obj := range m.objects {
		if obj.folder != folders {
			continue
		}
		if name != "" && obj.Name != name {
			continue
		}
		if parentID != "" && obj.parent != parentID {
			continue
		}
		out = append(out, obj.File)
	}
	return out
}

func (m *MemoryStore) lookup(fileID string) (*memoryObject, error) {
	obj, ok := m.objects[fileID]
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrNotFound, fmt.Sprintf("file %s not found", fileID))
	}
	return obj, nil
}

func (m *MemoryStore) insert(name, parentID string, content []byte, folder bool, ts time.Time) File {
	m.seq++
	obj := &memoryObject{
		File: File{
			ID:           fmt.Sprintf("mem-%d", m.seq),
			Name:         name,
			Size:         int64(len(content)),
			CreatedTime:  ts,
			ModifiedTime: ts,
		},
		folder:  folder,
		parent:  parentID,
		content: append([]byte(nil), content...),
	}
	m.objects[obj.ID] = obj
	return obj.File
}

// now must be called with mu held.
func (m *MemoryStore) now() time.Time {
	t := time.Now().UTC().Truncate(time.Millisecond)
	if !t.After(m.last) {
		t = m.last.Add(time.Millisecond)
	}
	m.last = t
	return t
}
