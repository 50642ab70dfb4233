package memory

import (
	"context"

	"github.com/emsops/dispatch-api/internal/model"
	"github.com/emsops/dispatch-api/internal/repository"
)

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// Create appends a new user. The id is the registry length + 1; the
// username must not already exist (case-sensitive exact match).
func (r *UserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.users {
		if existing.Username == user.Username {
			return nil, repository.ErrDuplicateUsername
		}
	}

	created := copyUser(user)
	created.ID = int64(len(r.store.users) + 1)
	r.store.users = append(r.store.users, created)

	return copyUser(created), nil
}

func (r *UserRepository) Get(ctx context.Context, id int64) (*model.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if u.ID == id {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

// GetByCredentials matches username and password exactly. Credentials
// are stored and compared in plaintext.
func (r *UserRepository) GetByCredentials(ctx context.Context, username, password string) (*model.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if u.Username == username && u.Password == password {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	users := make([]*model.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		users = append(users, copyUser(u))
	}
	return users, nil
}

func (r *UserRepository) CountByRole(ctx context.Context, role model.UserRole) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, u := range r.store.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}
