package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveLogFilePathDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd failed: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	got, err := resolveLogFilePath(Options{})
	if err != nil {
		t.Fatalf("resolve default log path failed: %v", err)
	}
	if filepath.Base(got) != defaultLogFilename {
		t.Fatalf("filename = %s, want %s", filepath.Base(got), defaultLogFilename)
	}
	if filepath.Base(filepath.Dir(got)) != defaultLogDirName {
		t.Fatalf("dir = %s, want %s", filepath.Dir(got), defaultLogDirName)
	}
	if _, err := os.Stat(filepath.Dir(got)); err != nil {
		t.Fatalf("log dir should have been created: %v", err)
	}
}

func TestReleaseModeWritesFileDebugModeDoesNot(t *testing.T) {
	cases := []struct {
		mode      string
		wantsFile bool
	}{
		{"release", true},
		{"debug", false},
	}
	for _, tc := range cases {
		tmpDir := t.TempDir()
		log := New(tc.mode, Options{Dir: tmpDir, Filename: "storefront.log"})
		log.Info("settlement-log-line")
		_ = log.Sync()

		path := filepath.Join(tmpDir, "storefront.log")
		content, err := os.ReadFile(path)
		if tc.wantsFile {
			if err != nil {
				t.Fatalf("%s: read log file failed: %v", tc.mode, err)
			}
			if !strings.Contains(string(content), "settlement-log-line") {
				t.Fatalf("%s: log file missing message, got=%s", tc.mode, content)
			}
			continue
		}
		if !os.IsNotExist(err) {
			t.Fatalf("%s: should not create a log file, err=%v", tc.mode, err)
		}
	}
}

func TestSugarAvailableBeforeInit(t *testing.T) {
	if S() == nil {
		t.Fatalf("sugared logger must fall back before Init")
	}
	if SW("component", "checkout") == nil {
		t.Fatalf("scoped sugar must fall back before Init")
	}
}

func TestNormalizePositiveInt(t *testing.T) {
	if got := normalizePositiveInt(0, 7); got != 7 {
		t.Fatalf("zero should fall back, got %d", got)
	}
	if got := normalizePositiveInt(-3, 7); got != 7 {
		t.Fatalf("negative should fall back, got %d", got)
	}
	if got := normalizePositiveInt(42, 7); got != 42 {
		t.Fatalf("positive should pass through, got %d", got)
	}
}
