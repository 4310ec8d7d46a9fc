package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/fjod/tradehub/internal/domain"
	"github.com/fjod/tradehub/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

const (
	DemoEmail    = "demo@tradehub.com"
	DemoPassword = "demo123"
)

type account struct {
	user         domain.User
	passwordHash []byte
}

// Session is the single signed-in user of the storefront. The user profile is
// persisted under its own storage key; its presence means authenticated.
type Session struct {
	mu       sync.RWMutex
	accounts []account
	current  *domain.User
	slot     *storage.Slot[domain.User]
	cost     int
}

// New seeds the demo account and restores a persisted session.
func New(ctx context.Context, store storage.Store) (*Session, error) {
	return newSession(ctx, store, bcrypt.DefaultCost)
}

func newSession(ctx context.Context, store storage.Store, cost int) (*Session, error) {
	s := &Session{
		slot: storage.NewSlot[domain.User](store, storage.KeyAuth),
		cost: cost,
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	s.accounts = append(s.accounts, account{
		user: domain.User{
			ID:     1,
			Email:  DemoEmail,
			Name:   "Demo User",
			Avatar: avatarURL("Demo User"),
		},
		passwordHash: hash,
	})

	user, ok, err := s.slot.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if ok {
		s.current = &user
	}
	return s, nil
}

func avatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=D2691E&color=fff"
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Session) findLocked(email string) int {
	for i, a := range s.accounts {
		if a.user.Email == email {
			return i
		}
	}
	return -1
}

func (s *Session) persistLocked(ctx context.Context, u domain.User) error {
	if err := s.slot.Save(ctx, u); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrOperationFailed, err)
	}
	s.current = &u
	return nil
}

// Login signs in with email and password.
func (s *Session) Login(ctx context.Context, email, password string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findLocked(normalizeEmail(email))
	if i < 0 {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.accounts[i].passwordHash, []byte(password)); err != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	u := s.accounts[i].user
	if err := s.persistLocked(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Signup registers a new account and signs it in.
func (s *Session) Signup(ctx context.Context, name, email, password string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = normalizeEmail(email)
	if s.findLocked(email) >= 0 {
		return domain.User{}, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	name = strings.TrimSpace(name)
	u := domain.User{
		ID:     int64(len(s.accounts) + 1),
		Email:  email,
		Name:   name,
		Avatar: avatarURL(name),
	}
	if err := s.persistLocked(ctx, u); err != nil {
		return domain.User{}, err
	}
	s.accounts = append(s.accounts, account{user: u, passwordHash: hash})
	return u, nil
}

func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.slot.Delete(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrOperationFailed, err)
	}
	s.current = nil
	return nil
}

// ProfileUpdate holds the editable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name   *string
	Avatar *string
}

func (s *Session) UpdateProfile(ctx context.Context, upd ProfileUpdate) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return domain.User{}, domain.ErrUnauthenticated
	}

	u := *s.current
	if upd.Name != nil {
		u.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	if err := s.persistLocked(ctx, u); err != nil {
		return domain.User{}, err
	}

	if i := s.findLocked(u.Email); i >= 0 {
		s.accounts[i].user = u
	}
	return u, nil
}

// Current returns the signed-in user, if any.
func (s *Session) Current() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return domain.User{}, false
	}
	return *s.current, true
}

func (s *Session) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}
