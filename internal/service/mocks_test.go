package service

import (
	"context"
	"errors"

	"github.com/filmvault/filmvault/internal/domain"
	"github.com/filmvault/filmvault/internal/repository"
)

// MockUserRepository is a map-backed implementation of
// repository.UserRepository for service tests.
type MockUserRepository struct {
	users   map[string]*domain.User
	order   []string
	saveErr error
	getErr  error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	for _, existing := range m.users {
		if existing.Username == user.Username {
			return domain.ErrUserAlreadyExists
		}
		if existing.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	m.users[user.ID] = user
	m.order = append(m.order, user.ID)
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, id string, fn func(user *domain.User) error) error {
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if err := fn(user); err != nil {
		if errors.Is(err, repository.ErrNoChange) {
			return nil
		}
		return err
	}
	// The mutation stays applied even when the persist is failing,
	// matching the in-memory-authoritative repository semantics.
	if m.saveErr != nil {
		return m.saveErr
	}
	return nil
}

func (m *MockUserRepository) Save(ctx context.Context, user *domain.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(m.users))
	for _, id := range m.order {
		if user, ok := m.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(ctx, username)
	if err == repository.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	if err == repository.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

// MockSessionRepository is an in-memory repository.SessionRepository.
type MockSessionRepository struct {
	userID string
	setErr error
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{}
}

func (m *MockSessionRepository) CurrentUserID(ctx context.Context) (string, error) {
	if m.userID == "" {
		return "", repository.ErrNotFound
	}
	return m.userID, nil
}

func (m *MockSessionRepository) SetCurrentUserID(ctx context.Context, userID string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.userID = userID
	return nil
}

func (m *MockSessionRepository) Clear(ctx context.Context) error {
	m.userID = ""
	return nil
}
