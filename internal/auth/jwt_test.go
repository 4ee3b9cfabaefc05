package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	token, exp, err := Issue("prof-a", RoleInstructor, "rollcall", "secret", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatal("expiry must be in the future")
	}

	claims, err := Parse(token, "secret", "rollcall")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.Subject != "prof-a" || claims.Role != RoleInstructor {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.IsAdmin() {
		t.Error("instructor must not be admin")
	}
}

func TestParseRejectsWrongKeyAndIssuer(t *testing.T) {
	token, _, err := Issue("stu-1", RoleStudent, "rollcall", "secret", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := Parse(token, "other-secret", "rollcall"); err == nil {
		t.Error("expected signature failure")
	}
	if _, err := Parse(token, "secret", "someone-else"); err == nil {
		t.Error("expected issuer mismatch")
	}
}
