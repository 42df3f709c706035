package handler

import (
	"net/http"
	"testing"

	resp "userhub/internal/transport/http/response"
)

func TestAdminEndpointsRequireAdmin(t *testing.T) {
	e := newTestEnv(t, 30)
	user := e.signup(t, "Plain User", "plain@example.com", "foobar")

	env := e.do(t, http.MethodGet, e.admin.URL+"/admin/v1/users", "", nil)
	if env.Code != resp.CodeUnauthorized {
		t.Fatalf("no token: code=%d, want 401", env.Code)
	}

	env = e.do(t, http.MethodGet, e.admin.URL+"/admin/v1/users", user.Token, nil)
	if env.Code != resp.CodeForbidden {
		t.Fatalf("non-admin token: code=%d, want 403", env.Code)
	}

	env = e.do(t, http.MethodDelete, e.admin.URL+"/admin/v1/users/"+user.User.ID, user.Token, nil)
	if env.Code != resp.CodeForbidden {
		t.Fatalf("non-admin delete: code=%d, want 403", env.Code)
	}
}

func TestAdminListing(t *testing.T) {
	e := newTestEnv(t, 30)
	e.signup(t, "Alice", "alice@example.com", "foobar")
	e.signup(t, "Bob", "bob@example.com", "foobar")
	adminTok, _ := e.adminSession(t, "boss@example.com")

	type listData struct {
		Total int64 `json:"total"`
		Items []struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
			Admin bool   `json:"admin"`
		} `json:"items"`
	}

	env := e.do(t, http.MethodGet, e.admin.URL+"/admin/v1/users", adminTok, nil)
	if env.Code != 0 {
		t.Fatalf("list: code=%d msg=%q", env.Code, env.Msg)
	}
	var out listData
	decodeData(t, env, &out)
	if out.Total != 3 || len(out.Items) != 3 {
		t.Fatalf("list: total=%d len=%d", out.Total, len(out.Items))
	}

	env = e.do(t, http.MethodGet, e.admin.URL+"/admin/v1/users?q=alice", adminTok, nil)
	decodeData(t, env, &out)
	if out.Total != 1 || out.Items[0].Email != "alice@example.com" {
		t.Fatalf("search: %+v", out)
	}
}

func TestAdminToggle(t *testing.T) {
	e := newTestEnv(t, 30)
	target := e.signup(t, "Target", "target@example.com", "foobar")
	adminTok, _ := e.adminSession(t, "boss@example.com")

	url := e.admin.URL + "/admin/v1/users/" + target.User.ID + "/toggle-admin"

	env := e.do(t, http.MethodPost, url, adminTok, nil)
	if env.Code != 0 {
		t.Fatalf("toggle: code=%d msg=%q", env.Code, env.Msg)
	}
	var out struct {
		Admin bool `json:"admin"`
	}
	decodeData(t, env, &out)
	if !out.Admin {
		t.Fatal("first toggle must set the flag")
	}
	u, err := e.svc.Get(target.User.ID)
	if err != nil || !u.Admin {
		t.Fatalf("flag not persisted: admin=%v err=%v", u != nil && u.Admin, err)
	}

	env = e.do(t, http.MethodPost, url, adminTok, nil)
	decodeData(t, env, &out)
	if out.Admin {
		t.Fatal("second toggle must clear the flag")
	}

	env = e.do(t, http.MethodPost, e.admin.URL+"/admin/v1/users/no-such-id/toggle-admin", adminTok, nil)
	if env.Code != resp.CodeNotFound {
		t.Fatalf("unknown id: code=%d, want 404", env.Code)
	}
}

func TestAdminDelete(t *testing.T) {
	e := newTestEnv(t, 30)
	target := e.signup(t, "Target", "target@example.com", "foobar")
	adminTok, adminID := e.adminSession(t, "boss@example.com")

	// Admins never delete themselves.
	env := e.do(t, http.MethodDelete, e.admin.URL+"/admin/v1/users/"+adminID, adminTok, nil)
	if env.Code != resp.CodeForbidden {
		t.Fatalf("self delete: code=%d, want 403", env.Code)
	}

	env = e.do(t, http.MethodDelete, e.admin.URL+"/admin/v1/users/"+target.User.ID, adminTok, nil)
	if env.Code != 0 {
		t.Fatalf("delete: code=%d msg=%q", env.Code, env.Msg)
	}
	if n, _ := e.svc.CountUsers(); n != 1 {
		t.Fatalf("count after delete = %d, want 1", n)
	}

	// Deleted users disappear from the public surface too.
	show := e.do(t, http.MethodGet, e.api.URL+"/api/v1/users/"+target.User.ID, "", nil)
	if show.Code != resp.CodeNotFound {
		t.Fatalf("deleted profile: code=%d, want 404", show.Code)
	}

	env = e.do(t, http.MethodDelete, e.admin.URL+"/admin/v1/users/"+target.User.ID, adminTok, nil)
	if env.Code != resp.CodeNotFound {
		t.Fatalf("double delete: code=%d, want 404", env.Code)
	}

	// The deleted row still holds the email's unique index: signing up with
	// it again is rejected.
	env = e.do(t, http.MethodPost, e.api.URL+"/api/v1/signup", "", map[string]string{
		"name": "Reborn", "email": "target@example.com",
		"password": "foobar", "password_confirmation": "foobar",
	})
	if env.Code != resp.CodeUnprocessable {
		t.Fatalf("re-signup of deleted email: code=%d, want 422", env.Code)
	}
	if len(fieldErrorsOf(t, env)["email"]) == 0 {
		t.Fatal("expected email taken error")
	}
}
