package config

import (
	"strings"
	"testing"
)

func TestBuildDSNPinsConnectionToUTC(t *testing.T) {
	cfg := AppConfig{
		DBUser:     "fit",
		DBPassword: "secret",
		DBHost:     "127.0.0.1",
		DBPort:     "3306",
		DBName:     "fitcircle",
	}

	dsn := buildDSN(cfg)

	if !strings.Contains(dsn, "loc=UTC") {
		t.Fatalf("dsn %q must pin loc=UTC: day and week keys are UTC-midnight values and the driver converts parameters into loc before sending", dsn)
	}
	if !strings.Contains(dsn, "parseTime=True") {
		t.Fatalf("dsn %q must enable parseTime for DATE/DATETIME scanning", dsn)
	}
	if !strings.HasPrefix(dsn, "fit:secret@tcp(127.0.0.1:3306)/fitcircle?") {
		t.Fatalf("dsn %q has unexpected shape", dsn)
	}
}

func TestBuildDSNPrefersDatabaseURI(t *testing.T) {
	cfg := AppConfig{DatabaseURI: "fit:pw@tcp(db:3306)/fitcircle?parseTime=True&loc=UTC"}
	if got := buildDSN(cfg); got != cfg.DatabaseURI {
		t.Fatalf("buildDSN=%q, want verbatim DatabaseURI", got)
	}
}
