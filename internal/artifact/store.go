package artifact

import (
	"sync"

	"github.com/shaiso/Prospector/internal/domain"
)

// Store — реестр артефактов в памяти процесса. Содержимое файлов
// хранится на диске, Store отвечает только за учётные записи.
type Store struct {
	mu    sync.RWMutex
	byID  map[string]domain.ArtifactRecord
	order []string // id в порядке регистрации
}

// NewStore создаёт пустой реестр.
func NewStore() *Store {
	return &Store{
		byID: make(map[string]domain.ArtifactRecord),
	}
}

// Put регистрирует артефакт. Повторная регистрация того же id
// заменяет запись, не меняя её позицию в списке.
func (s *Store) Put(rec domain.ArtifactRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[rec.ID]; !exists {
		s.order = append(s.order, rec.ID)
	}
	s.byID[rec.ID] = rec
}

// Get возвращает запись по id.
func (s *Store) Get(id string) (domain.ArtifactRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	return rec, ok
}

// List возвращает записи, новые первыми.
func (s *Store) List() []domain.ArtifactRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ArtifactRecord, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.byID[s.order[i]])
	}
	return out
}
