package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BackupInfo describes one <db>.bak-<suffix> file.
type BackupInfo struct {
	Path    string
	Suffix  string
	ModTime time.Time
	Size    int64
}

// BackupSuffix is the timestamp suffix used for new backups.
func BackupSuffix(t time.Time) string {
	return t.Format("20060102-150405")
}

// Backup copies the database at path to path.bak-<suffix>. The store must
// be closed (or checkpointed) for the copy to be complete.
func Backup(path, suffix string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	bak := path + ".bak-" + suffix
	if err := os.WriteFile(bak, src, 0o600); err != nil {
		return "", err
	}
	return bak, nil
}

// ListBackups returns the backups of the database at path, newest first.
func ListBackups(path string) ([]BackupInfo, error) {
	dir := filepath.Dir(path)
	prefix := filepath.Base(path) + ".bak-"
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []BackupInfo
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.HasPrefix(name, prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, BackupInfo{
			Path:    filepath.Join(dir, name),
			Suffix:  strings.TrimPrefix(name, prefix),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModTime.After(out[j].ModTime) })
	return out, nil
}

// RestoreBackup replaces the database at path with its backup for suffix.
// Stale WAL files are removed so sqlite does not replay them on top.
func RestoreBackup(path, suffix string) error {
	src := path + ".bak-" + suffix
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("backup not found: %s", src)
	}
	if err := copyFile(src, path); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	for _, ext := range []string{"-wal", "-shm"} {
		_ = os.Remove(path + ext)
	}
	return nil
}

func copyFile(src, dst string) error {
	b, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	tmp := dst + ".tmp-" + BackupSuffix(time.Now())
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}
