package domain

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	NameMaxLen     = 50
	EmailMaxLen    = 255
	PasswordMinLen = 6
)

// Permissive email shape: letters/digits/+/-/_/. local part, dotted domain.
var emailPattern = regexp.MustCompile(`(?i)^[a-z0-9+\-_.]+@[a-z0-9\-.]+\.[a-z]+$`)

type User struct {
	ID             string `gorm:"primaryKey;size:36"`
	Name           string `gorm:"size:64;not null"`
	Email          string `gorm:"uniqueIndex;size:255;not null"`
	PasswordDigest string `gorm:"size:100;not null"`
	RememberToken  string `gorm:"size:64"`
	Admin          bool   `gorm:"not null;default:false"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string { return "users" }

// NormalizeEmail lower-cases and trims an email. Always applied before
// validation, uniqueness checks and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FieldErrors collects per-field validation messages.
type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) { e[field] = append(e[field], msg) }

func (e FieldErrors) Has() bool { return len(e) > 0 }

func (e FieldErrors) Error() string {
	var b strings.Builder
	first := true
	for f, msgs := range e {
		for _, m := range msgs {
			if !first {
				b.WriteString("; ")
			}
			b.WriteString(f + " " + m)
			first = false
		}
	}
	return b.String()
}

// Candidate holds the mutable fields of a signup or profile-edit submission.
// Password fields are transient: only the bcrypt digest is ever persisted.
type Candidate struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string

	// PasswordRequired is true on create; on update a blank password means
	// "keep the current digest" and skips the password rules.
	PasswordRequired bool
}

// Validate applies the field rules after normalization and returns every
// violation keyed by field. It never touches storage; uniqueness is the
// service's job.
func (c Candidate) Validate() FieldErrors {
	errs := FieldErrors{}

	name := strings.TrimSpace(c.Name)
	if name == "" {
		errs.Add("name", "can't be blank")
	} else if len(name) > NameMaxLen {
		errs.Add("name", "is too long (maximum is 50 characters)")
	}

	email := NormalizeEmail(c.Email)
	switch {
	case email == "":
		errs.Add("email", "can't be blank")
	case len(email) > EmailMaxLen:
		errs.Add("email", "is too long (maximum is 255 characters)")
	case !emailPattern.MatchString(email):
		errs.Add("email", "is invalid")
	}

	if c.PasswordRequired || c.Password != "" || c.PasswordConfirmation != "" {
		if c.Password == "" {
			errs.Add("password", "can't be blank")
		} else if len(c.Password) < PasswordMinLen {
			errs.Add("password", "is too short (minimum is 6 characters)")
		}
		if c.Password != c.PasswordConfirmation {
			errs.Add("password_confirmation", "doesn't match password")
		}
	}

	return errs
}

// WantsPasswordChange reports whether the candidate carries a new password.
func (c Candidate) WantsPasswordChange() bool {
	return c.PasswordRequired || c.Password != "" || c.PasswordConfirmation != ""
}

// UserRepository is the persistence contract the service layer works against.
// FindByEmail expects an already-normalized (lower-case) email.
type UserRepository interface {
	Create(u *User) error
	FindByID(id string) (*User, error)
	FindByEmail(email string) (*User, error)
	List(offset, limit int) ([]User, int64, error)
	Search(q string, withDeleted bool, offset, limit int) ([]User, int64, error)
	Update(u *User) error
	SoftDelete(id string) error
	Count() (int64, error)
}

// ErrDuplicateEmail is returned by repositories when the unique index on
// email rejects a write that raced past the application-level check.
var ErrDuplicateEmail = duplicateEmailError{}

type duplicateEmailError struct{}

func (duplicateEmailError) Error() string { return "email has already been taken" }
