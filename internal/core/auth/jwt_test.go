package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	j := &JWTer{Secret: []byte("secret"), Issuer: "userhub-test", TTL: time.Hour}

	tok, err := j.Issue("uid-123", true)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := j.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UID != "uid-123" || !claims.Admin {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseRejectsWrongSecretAndIssuer(t *testing.T) {
	j := &JWTer{Secret: []byte("secret"), Issuer: "userhub-test", TTL: time.Hour}
	tok, err := j.Issue("uid-123", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := &JWTer{Secret: []byte("other"), Issuer: "userhub-test", TTL: time.Hour}
	if _, err := other.Parse(tok); err == nil {
		t.Fatal("token accepted with wrong secret")
	}

	wrongIssuer := &JWTer{Secret: []byte("secret"), Issuer: "someone-else", TTL: time.Hour}
	if _, err := wrongIssuer.Parse(tok); err == nil {
		t.Fatal("token accepted with wrong issuer")
	}
}
