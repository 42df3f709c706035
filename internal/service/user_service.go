package service

import (
	"errors"
	"strings"

	"userhub/internal/domain"
	"userhub/pkg/utils"
)

// ErrInvalidCredentials is the single sentinel for failed authentication.
// Callers cannot tell an unknown email from a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

var ErrNotFound = errors.New("user not found")

// ErrSelfDelete rejects an admin deleting their own account.
var ErrSelfDelete = errors.New("cannot delete yourself")

type UserService struct {
	repo domain.UserRepository
}

func NewUserService(repo domain.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Signup validates a candidate, enforces case-insensitive email uniqueness
// and persists the new user. On any failure nothing is written and the
// caller gets the full set of field errors.
func (s *UserService) Signup(c domain.Candidate) (*domain.User, domain.FieldErrors, error) {
	c.PasswordRequired = true
	errs := c.Validate()

	email := domain.NormalizeEmail(c.Email)
	if _, taken := errs["email"]; !taken && email != "" {
		existing, err := s.repo.FindByEmail(email)
		if err != nil {
			return nil, nil, err
		}
		if existing != nil {
			errs.Add("email", "has already been taken")
		}
	}
	if errs.Has() {
		return nil, errs, nil
	}

	u := &domain.User{
		ID:             utils.NewID(),
		Name:           strings.TrimSpace(c.Name),
		Email:          email,
		PasswordDigest: utils.HashPassword(c.Password),
	}
	if err := s.repo.Create(u); err != nil {
		// Unique-index backstop for races past the check above.
		if errors.Is(err, domain.ErrDuplicateEmail) {
			errs.Add("email", "has already been taken")
			return nil, errs, nil
		}
		return nil, nil, err
	}
	return u, nil, nil
}

// Authenticate verifies a plaintext candidate against the stored digest.
// Lookup is case-insensitive via email normalization.
func (s *UserService) Authenticate(email, password string) (*domain.User, error) {
	u, err := s.repo.FindByEmail(domain.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordDigest) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) Get(id string) (*domain.User, error) {
	u, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// Update applies a profile edit. A blank password keeps the current digest;
// an email change re-runs the uniqueness check. Invalid input persists
// nothing and the stored record keeps its last valid values.
func (s *UserService) Update(id string, c domain.Candidate) (*domain.User, domain.FieldErrors, error) {
	u, err := s.Get(id)
	if err != nil {
		return nil, nil, err
	}

	c.PasswordRequired = false
	errs := c.Validate()

	email := domain.NormalizeEmail(c.Email)
	if _, bad := errs["email"]; !bad && email != "" && email != u.Email {
		existing, err := s.repo.FindByEmail(email)
		if err != nil {
			return nil, nil, err
		}
		if existing != nil && existing.ID != u.ID {
			errs.Add("email", "has already been taken")
		}
	}
	if errs.Has() {
		return nil, errs, nil
	}

	u.Name = strings.TrimSpace(c.Name)
	u.Email = email
	if c.WantsPasswordChange() {
		u.PasswordDigest = utils.HashPassword(c.Password)
	}
	if err := s.repo.Update(u); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			errs.Add("email", "has already been taken")
			return nil, errs, nil
		}
		return nil, nil, err
	}
	return u, nil, nil
}

type Page struct {
	Users      []domain.User
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

// List returns one fixed-size page of users, newest first. Pages are
// 1-based; out-of-range pages come back empty.
func (s *UserService) List(page, perPage int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 30
	}
	users, total, err := s.repo.List((page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	return &Page{Users: users, Total: total, Page: page, PerPage: perPage, TotalPages: pages}, nil
}

// ToggleAdmin flips the admin flag and persists it immediately.
func (s *UserService) ToggleAdmin(id string) (*domain.User, error) {
	u, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	u.Admin = !u.Admin
	if err := s.repo.Update(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete soft-deletes the target. Admin-only enforcement lives at the
// transport layer; the self-delete guard lives here.
func (s *UserService) Delete(actorID, id string) error {
	if actorID == id {
		return ErrSelfDelete
	}
	u, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.repo.SoftDelete(u.ID)
}

// RotateRememberToken issues and persists a fresh remember token.
func (s *UserService) RotateRememberToken(u *domain.User) (string, error) {
	tok := utils.NewRememberToken()
	u.RememberToken = tok
	if err := s.repo.Update(u); err != nil {
		return "", err
	}
	return tok, nil
}

// ExchangeRememberToken resumes a session from a remember token. The compare
// is constant-time; any mismatch yields the credentials sentinel.
func (s *UserService) ExchangeRememberToken(email, token string) (*domain.User, error) {
	u, err := s.repo.FindByEmail(domain.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil || u.RememberToken == "" || !utils.TokensEqual(token, u.RememberToken) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) CountUsers() (int64, error) { return s.repo.Count() }

// SearchUsers backs the admin listing.
func (s *UserService) SearchUsers(q string, withDeleted bool, offset, limit int) ([]domain.User, int64, error) {
	return s.repo.Search(q, withDeleted, offset, limit)
}
