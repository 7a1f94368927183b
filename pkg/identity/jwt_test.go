package identity

import (
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	manager, err := NewJWTManager("test-secret-key-0123456789", "medanalyzer", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	user := &User{ID: 7, Username: "drsmith", Role: RoleDoctor}
	token, err := manager.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "drsmith" || claims.Role != RoleDoctor {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTRejectsTamperedToken(t *testing.T) {
	manager, err := NewJWTManager("test-secret-key-0123456789", "medanalyzer", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	token, err := manager.IssueToken(&User{ID: 1, Username: "a", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := manager.ValidateToken(token + "x"); err == nil {
		t.Fatal("expected tampered token to be rejected")
	}
	if _, err := manager.ValidateToken(""); err == nil {
		t.Fatal("expected empty token to be rejected")
	}
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	manager, err := NewJWTManager("test-secret-key-0123456789", "medanalyzer", time.Minute)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	manager.nowFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := manager.IssueToken(&User{ID: 1, Username: "a", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	manager.nowFunc = time.Now
	if _, err := manager.ValidateToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestJWTRejectsShortSecret(t *testing.T) {
	if _, err := NewJWTManager("short", "medanalyzer", time.Hour); err == nil {
		t.Fatal("expected short secret to be rejected")
	}
}
