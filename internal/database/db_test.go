package database

import (
	"strings"
	"testing"
)

func TestDSNPinsUTCSession(t *testing.T) {
	got := dsn("app", "secret", "db.internal", "3306", "school")
	for _, want := range []string{
		"tcp(db.internal:3306)",
		"/school",
		"parseTime=true",
		"loc=UTC",
		"time_zone=",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("dsn missing %q: %s", want, got)
		}
	}
}

func TestDSNEmptyPassword(t *testing.T) {
	got := dsn("app", "", "localhost", "3306", "school")
	if !strings.HasPrefix(got, "app@tcp(") {
		t.Errorf("dsn with empty password = %s, want user-only credentials", got)
	}
}
