package repositories

import (
	"os"
	"path/filepath"
)

// writeFileAtomic writes data through a temporary file in the target
// directory and renames it into place, so readers never observe a torn
// file and a failed write leaves the original untouched.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, writeErr := tmp.Write(data); writeErr != nil {
		tmp.Close()
		os.Remove(tmpName)
		return writeErr
	}
	if closeErr := tmp.Close(); closeErr != nil {
		os.Remove(tmpName)
		return closeErr
	}
	if chmodErr := os.Chmod(tmpName, perm); chmodErr != nil {
		os.Remove(tmpName)
		return chmodErr
	}
	if renameErr := os.Rename(tmpName, path); renameErr != nil {
		os.Remove(tmpName)
		return renameErr
	}
	return nil
}
