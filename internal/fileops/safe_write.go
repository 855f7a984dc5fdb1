// file: internal/fileops/safe_write.go
// version: 2.0.0
// guid: 9c0d1e2f-3a4b-5c6d-7e8f-9a0b1c2d3e4f

package fileops

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
)

// TagWriteGuard wraps an in-place tag rewrite with a sidecar backup so a
// failed write never leaves a half-written container behind.
type TagWriteGuard struct {
	Path       string
	BackupPath string
	checksum   string
}

// NewTagWriteGuard copies path to a ".tagbak" sidecar and records the
// original checksum. Call Restore on write failure, Commit on success.
func NewTagWriteGuard(path string) (*TagWriteGuard, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	backup := path + ".tagbak"
	if err := copyFile(path, backup); err != nil {
		return nil, fmt.Errorf("backup %s: %w", path, err)
	}
	sum, err := checksumFile(backup)
	if err != nil {
		os.Remove(backup)
		return nil, fmt.Errorf("checksum backup %s: %w", backup, err)
	}
	return &TagWriteGuard{Path: path, BackupPath: backup, checksum: sum}, nil
}

// Restore puts the backup back in place of the (possibly corrupted)
// target and removes the sidecar.
func (g *TagWriteGuard) Restore() error {
	sum, err := checksumFile(g.BackupPath)
	if err != nil {
		return fmt.Errorf("verify backup %s: %w", g.BackupPath, err)
	}
	if sum != g.checksum {
		return fmt.Errorf("backup %s failed checksum verification", g.BackupPath)
	}
	if err := os.Rename(g.BackupPath, g.Path); err != nil {
		// Rename can fail across mounts; fall back to copy+delete.
		if copyErr := copyFile(g.BackupPath, g.Path); copyErr != nil {
			return fmt.Errorf("restore %s: %w", g.Path, copyErr)
		}
		os.Remove(g.BackupPath)
	}
	log.Printf("[WARN] fileops: restored %s from backup after failed write", g.Path)
	return nil
}

// Commit discards the backup after a successful write.
func (g *TagWriteGuard) Commit() {
	if err := os.Remove(g.BackupPath); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] fileops: could not remove backup %s: %v", g.BackupPath, err)
	}
}

// SafeCopy copies src to dst and verifies the copy by checksum.
func SafeCopy(src, dst string) error {
	if err := copyFile(src, dst); err != nil {
		return err
	}
	srcSum, err := checksumFile(src)
	if err != nil {
		return err
	}
	dstSum, err := checksumFile(dst)
	if err != nil {
		return err
	}
	if srcSum != dstSum {
		os.Remove(dst)
		return fmt.Errorf("copy verification failed for %s", dst)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
