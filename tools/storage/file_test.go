package storage

import (
	"os"
	"path/filepath"
	"testing"

	"gitlab.com/vodservice/video-pipeline/config"
	"gitlab.com/vodservice/video-pipeline/pkg/logger"
)

func newTestStorage(t *testing.T) (FileOperationsI, string) {
	t.Helper()
	cfg := config.Config{UploadDir: t.TempDir()}
	return NewFileStorage(&cfg, logger.NewNop()), cfg.UploadDir
}

func TestEnsureBaseDirs(t *testing.T) {
	files, base := newTestStorage(t)

	if err := files.EnsureBaseDirs(); err != nil {
		t.Fatal(err)
	}

	for _, dir := range []string{"temp", "videos", "thumbnails"} {
		info, err := os.Stat(filepath.Join(base, dir))
		if err != nil || !info.IsDir() {
			t.Errorf("base dir %s missing: %v", dir, err)
		}
	}

	// Idempotent on an existing layout.
	if err := files.EnsureBaseDirs(); err != nil {
		t.Errorf("second EnsureBaseDirs: %v", err)
	}
}

func TestEnsureAssetDirs(t *testing.T) {
	files, base := newTestStorage(t)

	videoDir, thumbDir, err := files.EnsureAssetDirs("abc-123")
	if err != nil {
		t.Fatal(err)
	}

	if videoDir != filepath.Join(base, "videos", "abc-123") {
		t.Errorf("videoDir = %q", videoDir)
	}
	if thumbDir != filepath.Join(base, "thumbnails", "abc-123") {
		t.Errorf("thumbDir = %q", thumbDir)
	}
	for _, dir := range []string{videoDir, thumbDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("asset dir %s missing: %v", dir, err)
		}
	}
}

func TestTempPathAndRelative(t *testing.T) {
	files, base := newTestStorage(t)

	if got, want := files.TempPath("x.mp4"), filepath.Join(base, "temp", "x.mp4"); got != want {
		t.Errorf("TempPath = %q, want %q", got, want)
	}

	rel, err := files.Relative(filepath.Join(base, "videos", "id", "720p.mp4"))
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("videos", "id", "720p.mp4"); rel != want {
		t.Errorf("Relative = %q, want %q", rel, want)
	}
}

func TestRemoveFile(t *testing.T) {
	files, base := newTestStorage(t)

	path := filepath.Join(base, "victim")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := files.RemoveFile(path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still exists")
	}

	if err := files.RemoveFile(path); err == nil {
		t.Error("removing a missing file should error")
	}
}
