package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	resp "userhub/internal/transport/http/response"
)

func TestSignupFlow(t *testing.T) {
	e := newTestEnv(t, 30)

	// Blank submission: nothing persisted, per-field errors surfaced.
	env := e.do(t, http.MethodPost, e.api.URL+"/api/v1/signup", "", gin.H{
		"name": "", "email": "", "password": "", "password_confirmation": "",
	})
	if env.Code != resp.CodeUnprocessable {
		t.Fatalf("blank signup: code=%d, want 422", env.Code)
	}
	errs := fieldErrorsOf(t, env)
	for _, f := range []string{"name", "email", "password"} {
		if len(errs[f]) == 0 {
			t.Errorf("missing error on %q: %v", f, errs)
		}
	}
	if n, _ := e.svc.CountUsers(); n != 0 {
		t.Fatalf("count after invalid signup = %d, want 0", n)
	}

	// Valid submission: one user created, session established.
	sess := e.signup(t, "Example User", "User@Example.com", "foobar")
	if n, _ := e.svc.CountUsers(); n != 1 {
		t.Fatalf("count after valid signup = %d, want 1", n)
	}
	if sess.Token == "" || sess.RememberToken == "" {
		t.Fatal("signup must establish a session")
	}
	if sess.User.Email != "user@example.com" {
		t.Fatalf("signup stored email %q, want lower case", sess.User.Email)
	}

	// The session works immediately.
	me := e.do(t, http.MethodGet, e.api.URL+"/api/v1/me", sess.Token, nil)
	if me.Code != 0 {
		t.Fatalf("me after signup: code=%d msg=%q", me.Code, me.Msg)
	}

	// Same email, different case: rejected, count unchanged.
	env = e.do(t, http.MethodPost, e.api.URL+"/api/v1/signup", "", gin.H{
		"name": "Copycat", "email": "USER@EXAMPLE.COM",
		"password": "foobar", "password_confirmation": "foobar",
	})
	if env.Code != resp.CodeUnprocessable {
		t.Fatalf("duplicate signup: code=%d, want 422", env.Code)
	}
	if n, _ := e.svc.CountUsers(); n != 1 {
		t.Fatalf("count after duplicate signup = %d, want 1", n)
	}
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t, 30)
	e.signup(t, "Example User", "user@example.com", "foobar")

	env := e.do(t, http.MethodPost, e.api.URL+"/api/v1/auth/login", "", gin.H{
		"email": "USER@example.com", "password": "foobar",
	})
	if env.Code != 0 {
		t.Fatalf("login: code=%d msg=%q", env.Code, env.Msg)
	}
	var sess sessionData
	decodeData(t, env, &sess)
	if sess.Token == "" {
		t.Fatal("login response missing token")
	}

	env = e.do(t, http.MethodPost, e.api.URL+"/api/v1/auth/login", "", gin.H{
		"email": "user@example.com", "password": "wrongpw",
	})
	if env.Code != resp.CodeUnauthorized {
		t.Fatalf("bad password: code=%d, want 401", env.Code)
	}
}

func TestRememberTokenRefresh(t *testing.T) {
	e := newTestEnv(t, 30)
	sess := e.signup(t, "Example User", "user@example.com", "foobar")

	env := e.do(t, http.MethodPost, e.api.URL+"/api/v1/auth/refresh", "", gin.H{
		"email": "user@example.com", "remember_token": sess.RememberToken,
	})
	if env.Code != 0 {
		t.Fatalf("refresh: code=%d msg=%q", env.Code, env.Msg)
	}
	var out struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &out)
	me := e.do(t, http.MethodGet, e.api.URL+"/api/v1/me", out.Token, nil)
	if me.Code != 0 {
		t.Fatalf("me with refreshed token: code=%d", me.Code)
	}

	env = e.do(t, http.MethodPost, e.api.URL+"/api/v1/auth/refresh", "", gin.H{
		"email": "user@example.com", "remember_token": "forged",
	})
	if env.Code != resp.CodeUnauthorized {
		t.Fatalf("forged token: code=%d, want 401", env.Code)
	}
}

func TestPublicProfileShow(t *testing.T) {
	e := newTestEnv(t, 30)
	sess := e.signup(t, "Example User", "user@example.com", "foobar")

	env := e.do(t, http.MethodGet, e.api.URL+"/api/v1/users/"+sess.User.ID, "", nil)
	if env.Code != 0 {
		t.Fatalf("show: code=%d msg=%q", env.Code, env.Msg)
	}
	var profile map[string]any
	decodeData(t, env, &profile)
	if profile["name"] != "Example User" {
		t.Fatalf("profile name = %v", profile["name"])
	}
	if _, leaked := profile["email"]; leaked {
		t.Fatal("public profile must not expose the email")
	}

	env = e.do(t, http.MethodGet, e.api.URL+"/api/v1/users/no-such-id", "", nil)
	if env.Code != resp.CodeNotFound {
		t.Fatalf("unknown id: code=%d, want 404", env.Code)
	}
}

func TestIndexRequiresAuthAndPaginates(t *testing.T) {
	e := newTestEnv(t, 3)

	env := e.do(t, http.MethodGet, e.api.URL+"/api/v1/users", "", nil)
	if env.Code != resp.CodeUnauthorized {
		t.Fatalf("unauthenticated index: code=%d, want 401", env.Code)
	}

	var viewer sessionData
	for i := 0; i < 7; i++ {
		viewer = e.signup(t, fmt.Sprintf("User %d", i), fmt.Sprintf("user%d@example.com", i), "foobar")
	}

	type indexData struct {
		Users []struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			Deletable bool   `json:"deletable"`
		} `json:"users"`
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PerPage    int   `json:"perPage"`
		TotalPages int   `json:"totalPages"`
	}

	env = e.do(t, http.MethodGet, e.api.URL+"/api/v1/users?page=1", viewer.Token, nil)
	if env.Code != 0 {
		t.Fatalf("index: code=%d msg=%q", env.Code, env.Msg)
	}
	var pg indexData
	decodeData(t, env, &pg)
	if pg.Total != 7 || pg.TotalPages != 3 || len(pg.Users) != 3 || pg.PerPage != 3 {
		t.Fatalf("page 1: %+v", pg)
	}
	// Non-admin viewer never gets a delete affordance.
	for _, row := range pg.Users {
		if row.Deletable {
			t.Fatalf("non-admin viewer saw deletable row %q", row.ID)
		}
	}

	env = e.do(t, http.MethodGet, e.api.URL+"/api/v1/users?page=3", viewer.Token, nil)
	decodeData(t, env, &pg)
	if len(pg.Users) != 1 {
		t.Fatalf("page 3 len = %d, want 1", len(pg.Users))
	}

	// Admin viewer: every row deletable except their own.
	adminTok, adminID := e.adminSession(t, "boss@example.com")
	env = e.do(t, http.MethodGet, e.api.URL+"/api/v1/users?page=1", adminTok, nil)
	decodeData(t, env, &pg)
	for _, row := range pg.Users {
		want := row.ID != adminID
		if row.Deletable != want {
			t.Fatalf("row %q deletable=%v, want %v", row.ID, row.Deletable, want)
		}
	}
}

func TestEditProfile(t *testing.T) {
	e := newTestEnv(t, 30)
	sess := e.signup(t, "Before", "before@example.com", "foobar")
	other := e.signup(t, "Other", "other@example.com", "foobar")

	url := e.api.URL + "/api/v1/users/" + sess.User.ID

	// Unauthenticated edit is rejected.
	env := e.do(t, http.MethodPatch, url, "", gin.H{"name": "Hax", "email": "hax@example.com"})
	if env.Code != resp.CodeUnauthorized {
		t.Fatalf("unauthenticated edit: code=%d, want 401", env.Code)
	}

	// Editing someone else's profile is rejected.
	env = e.do(t, http.MethodPatch, url, other.Token, gin.H{"name": "Hax", "email": "hax@example.com"})
	if env.Code != resp.CodeForbidden {
		t.Fatalf("cross-user edit: code=%d, want 403", env.Code)
	}

	// Mismatched confirmation: error indicator, nothing persisted.
	env = e.do(t, http.MethodPatch, url, sess.Token, gin.H{
		"name": "After", "email": "after@example.com",
		"password": "newpass", "password_confirmation": "other",
	})
	if env.Code != resp.CodeUnprocessable {
		t.Fatalf("mismatched edit: code=%d, want 422", env.Code)
	}
	if len(fieldErrorsOf(t, env)["password_confirmation"]) == 0 {
		t.Fatal("expected confirmation error")
	}
	me := e.do(t, http.MethodGet, e.api.URL+"/api/v1/me", sess.Token, nil)
	var kept struct {
		Name string `json:"name"`
	}
	decodeData(t, me, &kept)
	if kept.Name != "Before" {
		t.Fatalf("failed edit persisted name %q", kept.Name)
	}

	// Valid edit: applied, and the session stays valid under the new name.
	env = e.do(t, http.MethodPatch, url, sess.Token, gin.H{
		"name": "After", "email": "After@Example.com",
	})
	if env.Code != 0 {
		t.Fatalf("valid edit: code=%d msg=%q", env.Code, env.Msg)
	}
	me = e.do(t, http.MethodGet, e.api.URL+"/api/v1/me", sess.Token, nil)
	if me.Code != 0 {
		t.Fatalf("session after edit: code=%d", me.Code)
	}
	var after struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	decodeData(t, me, &after)
	if after.Name != "After" || after.Email != "after@example.com" {
		t.Fatalf("edit not applied: %+v", after)
	}
}
