package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

const backupSuffix = ".orig"

// PatchResult summarizes one apply pass.
type PatchResult struct {
	Patched    bool
	Remapped   int
	BackupPath string
}

// BackupPathFor returns the backup path derived from a session path.
func BackupPathFor(path string) string {
	return path + backupSuffix
}

// Apply patches the session file at path in place. The order is fixed:
// back up the original bytes, verify the backup, record the remap edits,
// serialize, then atomically replace the session file. A failure at any
// step leaves the original file unmodified. With no Remap decisions the
// filesystem is not touched at all.
func Apply(path string, original []byte, doc *Document, decisions []Decision) (*PatchResult, error) {
	if countRemaps(decisions) == 0 {
		return &PatchResult{}, nil
	}
	backup := BackupPathFor(path)
	if err := writeBackup(backup, original); err != nil {
		return nil, err
	}
	LogDebug("backup written to %s", backup)
	n := ApplyRemaps(doc, decisions)
	patched := doc.Serialize()
	if err := WriteAtomic(path, patched); err != nil {
		return nil, &PatchError{Path: path, Err: err}
	}
	return &PatchResult{Patched: true, Remapped: n, BackupPath: backup}, nil
}

func countRemaps(decisions []Decision) int {
	n := 0
	for _, d := range decisions {
		if d.Kind == DecisionRemap {
			n++
		}
	}
	return n
}

// writeBackup writes the original bytes to path, refusing to clobber an
// existing file, and verifies the result.
func writeBackup(path string, original []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return &BackupError{Path: path, Err: ErrBackupExists}
		}
		return &BackupError{Path: path, Err: err}
	}
	if _, err := f.Write(original); err != nil {
		f.Close()
		return &BackupError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &BackupError{Path: path, Err: err}
	}
	return verifyBackup(path, original)
}

// verifyBackup re-reads the backup and compares blake3 digests with the
// original bytes. The destructive write is only reached once this passes.
func verifyBackup(path string, original []byte) error {
	written, err := os.ReadFile(path)
	if err != nil {
		return &BackupError{Path: path, Err: err}
	}
	want := blake3.Sum256(original)
	got := blake3.Sum256(written)
	if got != want {
		return &BackupError{
			Path: path,
			Err:  fmt.Errorf("backup does not match original (%x != %x)", got, want),
		}
	}
	return nil
}

// WriteAtomic writes contents to a temporary file in the target's
// directory and renames it over path, so no reader ever observes a
// half-written session file. An existing file's permissions are kept;
// a new file is created 0644.
func WriteAtomic(path string, contents []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(contents); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
