package ops

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DrillResult is where a backup drill left its artifacts.
type DrillResult struct {
	Archive    string
	RestoreDir string
	Digest     string
}

// Drill backs dataDir up into workDir, restores the archive next to it and
// checks the restored tree hashes the same as the source.
func Drill(dataDir, workDir string, now time.Time) (DrillResult, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return DrillResult{}, err
	}
	ts := now.UTC().Format("20060102T150405Z")
	res := DrillResult{
		Archive:    filepath.Join(workDir, "safetasks-drill-"+ts+".tar.gz"),
		RestoreDir: filepath.Join(workDir, "safetasks-drill-restore-"+ts),
	}

	if err := BackupDataDir(dataDir, res.Archive); err != nil {
		return res, fmt.Errorf("backup: %w", err)
	}
	if err := RestoreDataDir(res.Archive, res.RestoreDir); err != nil {
		return res, fmt.Errorf("restore: %w", err)
	}

	src, err := DirDigest(dataDir)
	if err != nil {
		return res, err
	}
	restored, err := DirDigest(res.RestoreDir)
	if err != nil {
		return res, err
	}
	if src != restored {
		return res, fmt.Errorf("digest mismatch after restore: src=%s restored=%s", src, restored)
	}
	res.Digest = src
	return res, nil
}

// DirDigest hashes the relative paths and contents of every regular file
// under root, in path order.
func DirDigest(root string) (string, error) {
	root = filepath.Clean(root)
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(files)

	h := sha256.New()
	for _, rel := range files {
		_, _ = io.WriteString(h, rel+"\n")
		if err := copyFileInto(h, filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			return "", err
		}
		_, _ = io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// BackupName is the default archive name for a backup taken at now.
func BackupName(now time.Time) string {
	return "safetasks-" + now.UTC().Format("20060102T150405Z") + ".tar.gz"
}
