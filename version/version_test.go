package version

import (
	"strings"
	"testing"
)

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	if info.Version == "" {
		t.Error("expected non-empty version")
	}
	if info.BuildDate.IsZero() {
		t.Error("expected a build date")
	}
	if info.Version == "dev" && info.IsRelease {
		t.Error("dev builds must not report as release")
	}
}

func TestGetShortVersion(t *testing.T) {
	short := GetShortVersion()
	if short == "" {
		t.Fatal("expected non-empty short version")
	}
	if !strings.HasPrefix(short, Version) {
		t.Errorf("short version %q does not start with %q", short, Version)
	}
}
