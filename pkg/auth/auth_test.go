package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestAccessSetFilter(t *testing.T) {
	all := AllAccess()
	if got := all.Filter([]string{"a", "b"}); len(got) != 2 {
		t.Fatalf("expected all-access filter to pass everything through, got %v", got)
	}

	restricted := NewAccessSet("a")
	if got := restricted.Filter([]string{"a", "b"}); len(got) != 1 || got[0] != "a" {
		t.Fatalf("expected restricted filter to keep only allowed entries, got %v", got)
	}
}

func TestMemoryAuthenticatorCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryAuthenticator()

	id, key, err := m.Create(ctx, NewAccessSet("algo-1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, err := m.Authenticate(ctx, id, key)
	if err != nil || !ok {
		t.Fatalf("expected valid credential to authenticate, got ok=%v err=%v", ok, err)
	}

	ok, err = m.Authenticate(ctx, id, "wrong-key")
	if err != nil || ok {
		t.Fatalf("expected wrong key to fail authentication, got ok=%v err=%v", ok, err)
	}

	access, found, err := m.AccessFor(ctx, id)
	if err != nil || !found {
		t.Fatalf("expected access set to be found, got found=%v err=%v", found, err)
	}
	if !access.Allows("algo-1") || access.Allows("algo-2") {
		t.Fatalf("unexpected access set: %+v", access)
	}
}

func TestMemoryAuthenticatorRevoke(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryAuthenticator()
	id, _, _ := m.Create(ctx, AllAccess())

	if err := m.Revoke(ctx, id); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := m.Revoke(ctx, id); err == nil {
		t.Fatalf("expected error revoking already-revoked credential")
	}
}

func TestFileAuthenticatorPersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")

	f1, err := NewFileAuthenticator(path)
	if err != nil {
		t.Fatalf("new file authenticator: %v", err)
	}
	id, key, err := f1.Create(ctx, NewAccessSet("algo-1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected credential file to exist: %v", err)
	}

	f2, err := NewFileAuthenticator(path)
	if err != nil {
		t.Fatalf("re-open file authenticator: %v", err)
	}
	ok, err := f2.Authenticate(ctx, id, key)
	if err != nil || !ok {
		t.Fatalf("expected credential written by one instance to be visible to another, got ok=%v err=%v", ok, err)
	}
}
