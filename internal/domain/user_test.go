package domain

import (
	"strings"
	"testing"
)

func TestCandidateValidate(t *testing.T) {
	valid := Candidate{
		Name:                 "Example User",
		Email:                "user@example.com",
		Password:             "foobar",
		PasswordConfirmation: "foobar",
		PasswordRequired:     true,
	}

	tests := []struct {
		name      string
		mutate    func(c *Candidate)
		wantField string // "" means valid
	}{
		{name: "valid candidate", mutate: func(c *Candidate) {}},
		{
			name:      "blank name",
			mutate:    func(c *Candidate) { c.Name = "   " },
			wantField: "name",
		},
		{
			name:      "name at 51 chars",
			mutate:    func(c *Candidate) { c.Name = strings.Repeat("a", 51) },
			wantField: "name",
		},
		{
			name:   "name at 50 chars is fine",
			mutate: func(c *Candidate) { c.Name = strings.Repeat("a", 50) },
		},
		{
			name:      "blank email",
			mutate:    func(c *Candidate) { c.Email = "" },
			wantField: "email",
		},
		{
			name:      "email without domain dot",
			mutate:    func(c *Candidate) { c.Email = "user@example" },
			wantField: "email",
		},
		{
			name:      "email without at sign",
			mutate:    func(c *Candidate) { c.Email = "user.example.com" },
			wantField: "email",
		},
		{
			name:      "email with space",
			mutate:    func(c *Candidate) { c.Email = "user @example.com" },
			wantField: "email",
		},
		{
			name:   "plus and dots in local part",
			mutate: func(c *Candidate) { c.Email = "first.last+tag@sub.example.co.uk" },
		},
		{
			name:   "mixed case with underscore and hyphen",
			mutate: func(c *Candidate) { c.Email = "A_US-ER@f.b.org" },
		},
		{
			name:      "password at 5 chars",
			mutate:    func(c *Candidate) { c.Password = "aaaaa"; c.PasswordConfirmation = "aaaaa" },
			wantField: "password",
		},
		{
			name:      "blank password on create",
			mutate:    func(c *Candidate) { c.Password = ""; c.PasswordConfirmation = "" },
			wantField: "password",
		},
		{
			name:      "mismatched confirmation",
			mutate:    func(c *Candidate) { c.PasswordConfirmation = "barbaz" },
			wantField: "password_confirmation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			errs := c.Validate()
			if tt.wantField == "" {
				if errs.Has() {
					t.Fatalf("expected valid, got errors: %v", errs)
				}
				return
			}
			if len(errs[tt.wantField]) == 0 {
				t.Fatalf("expected error on %q, got %v", tt.wantField, errs)
			}
		})
	}
}

func TestCandidateValidateUpdateSkipsBlankPassword(t *testing.T) {
	c := Candidate{
		Name:  "Example User",
		Email: "user@example.com",
		// no password fields, PasswordRequired false: an edit keeping the
		// current digest
	}
	if errs := c.Validate(); errs.Has() {
		t.Fatalf("expected valid, got %v", errs)
	}
	if c.WantsPasswordChange() {
		t.Fatal("blank password on update must not count as a change")
	}

	c.Password = "short"
	c.PasswordConfirmation = "short"
	errs := c.Validate()
	if len(errs["password"]) == 0 {
		t.Fatalf("providing a too-short password on update must fail, got %v", errs)
	}
}

func TestNormalizeEmail(t *testing.T) {
	got := NormalizeEmail("  Foo@ExAMPle.CoM ")
	if got != "foo@example.com" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}

func TestFieldErrorsError(t *testing.T) {
	errs := FieldErrors{}
	errs.Add("name", "can't be blank")
	if errs.Error() != "name can't be blank" {
		t.Fatalf("Error() = %q", errs.Error())
	}
	if !errs.Has() {
		t.Fatal("Has() = false")
	}
}
