package database

import (
	"strings"
	"testing"

	"github.com/iliyamo/production-manager/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.Config{
		DBUser: "app",
		DBPass: "s3cret",
		DBHost: "db.local",
		DBPort: "3306",
		DBName: "produccion",
	}
	dsn := DSN(cfg)

	for _, want := range []string{
		"app:s3cret@tcp(db.local:3306)/produccion",
		"parseTime=true",
		"charset=utf8mb4",
	} {
		if !strings.Contains(dsn, want) {
			t.Errorf("DSN() = %q, missing %q", dsn, want)
		}
	}
}

func TestDSN_NoPassword(t *testing.T) {
	dsn := DSN(config.Config{DBUser: "app", DBHost: "localhost", DBPort: "3306", DBName: "x"})
	if !strings.HasPrefix(dsn, "app@tcp(localhost:3306)/x") {
		t.Errorf("DSN() = %q", dsn)
	}
}
