// AngelaMos | 2026
// fakes_test.go

package user

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/carterperez-dev/templates/account-service/internal/core"
	"github.com/carterperez-dev/templates/account-service/internal/notify"
)

type memoryRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*User

	creates int
	updates int

	err error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{nextID: 1, users: make(map[int64]*User)}
}

func (r *memoryRepository) seed(name, email string, role Role) *User {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := &User{
		ID:           r.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: "hashed:seed",
		Role:         role,
		Active:       true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	r.users[u.ID] = u
	r.nextID++

	clone := *u
	return &clone
}

func (r *memoryRepository) get(id int64) *User {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil
	}
	clone := *u
	return &clone
}

func (r *memoryRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *memoryRepository) emailTaken(email string, exceptID int64) bool {
	for _, u := range r.users {
		if u.ID != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *memoryRepository) Create(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}
	if r.emailTaken(user.Email, 0) {
		return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	}

	now := time.Now()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.nextID++
	r.creates++

	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id int64) (*User, error) {
	if r.err != nil {
		return nil, r.err
	}
	if u := r.get(id); u != nil {
		return u, nil
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func (r *memoryRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
}

func (r *memoryRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return false, r.err
	}
	return r.emailTaken(email, 0), nil
}

func (r *memoryRepository) Update(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if r.emailTaken(user.Email, user.ID) {
		return fmt.Errorf("update user: %w", core.ErrDuplicateKey)
	}

	user.UpdatedAt = time.Now()
	r.updates++

	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memoryRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *memoryRepository) IncrementTokenVersion(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("increment token version: %w", core.ErrNotFound)
	}
	u.TokenVersion++
	return nil
}

func (r *memoryRepository) List(_ context.Context, params ListUsersParams) ([]User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	params.Normalize()

	var all []User
	for _, u := range r.users {
		if params.Role != "" && string(u.Role) != params.Role {
			continue
		}
		if params.Active != nil && u.Active != *params.Active {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	start := min(params.Offset(), total)
	end := min(start+params.PageSize, total)
	return all[start:end], total, nil
}

func (r *memoryRepository) CountByRole(_ context.Context) (map[Role]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := map[Role]int{}
	for _, u := range r.users {
		counts[u.Role]++
	}
	return counts, nil
}

type recordingSender struct {
	mu   sync.Mutex
	sent []notify.Welcome
	to   []string
	err  error
}

func (s *recordingSender) SendWelcome(_ context.Context, to string, msg notify.Welcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.to = append(s.to, to)
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type prefixHasher struct{}

func (prefixHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	repo    *memoryRepository
	sender  *recordingSender
	service *Service

	admin   *User
	manager *User
	member  *User
}

func newFixture() *fixture {
	repo := newMemoryRepository()
	sender := &recordingSender{}

	f := &fixture{
		repo:    repo,
		sender:  sender,
		service: NewService(repo, sender, prefixHasher{}, discardLogger(), "https://app.example.com/login"),
	}
	f.admin = repo.seed("Admin", "admin@example.com", RoleAdministrator)
	f.manager = repo.seed("Manager", "manager@example.com", RoleManager)
	f.member = repo.seed("Member", "member@example.com", RoleUser)
	return f
}

func actorOf(u *User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

func ptr[T any](v T) *T {
	return &v
}
