package repo

import (
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"userhub/internal/domain"
)

// MemoryUserRepo is a map-backed UserRepository with the same uniqueness and
// soft-delete semantics as the GORM one. Used by tests and by dev mode when
// no database is configured.
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]*domain.User
	order []string // insertion order, oldest first
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]*domain.User)}
}

func (r *MemoryUserRepo) Create(u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Soft-deleted rows still hold the unique index in the GORM store, so
	// their emails stay taken here too.
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	cp := *u
	r.users[u.ID] = &cp
	r.order = append(r.order, u.ID)
	return nil
}

func (r *MemoryUserRepo) FindByID(id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok || u.DeletedAt.Valid {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUserRepo) FindByEmail(email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.DeletedAt.Valid {
			continue
		}
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepo) List(offset, limit int) ([]domain.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	live := r.liveNewestFirst()
	return window(live, offset, limit), int64(len(live)), nil
}

func (r *MemoryUserRepo) Search(q string, withDeleted bool, offset, limit int) ([]domain.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rows []domain.User
	for i := len(r.order) - 1; i >= 0; i-- {
		u := r.users[r.order[i]]
		if u.DeletedAt.Valid && !withDeleted {
			continue
		}
		if s := strings.ToLower(strings.TrimSpace(q)); s != "" {
			if !strings.Contains(strings.ToLower(u.Email), s) && !strings.Contains(strings.ToLower(u.Name), s) {
				continue
			}
		}
		rows = append(rows, *u)
	}
	return window(rows, offset, limit), int64(len(rows)), nil
}

func (r *MemoryUserRepo) Update(u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.users {
		if id == u.ID {
			continue
		}
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.UpdatedAt = time.Now()
	cp := *u
	if prev, ok := r.users[u.ID]; ok {
		cp.CreatedAt = prev.CreatedAt
	}
	r.users[u.ID] = &cp
	return nil
}

func (r *MemoryUserRepo) SoftDelete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.DeletedAt.Valid {
		return nil
	}
	u.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	return nil
}

func (r *MemoryUserRepo) Count() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, u := range r.users {
		if !u.DeletedAt.Valid {
			n++
		}
	}
	return n, nil
}

func (r *MemoryUserRepo) liveNewestFirst() []domain.User {
	var rows []domain.User
	for i := len(r.order) - 1; i >= 0; i-- {
		u := r.users[r.order[i]]
		if u.DeletedAt.Valid {
			continue
		}
		rows = append(rows, *u)
	}
	return rows
}

func window(rows []domain.User, offset, limit int) []domain.User {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
