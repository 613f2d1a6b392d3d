package storage

import (
	"io/fs"
	"os"
	"path/filepath"
)

// walSuffixes are the files SQLite keeps beside a database opened in WAL mode.
var walSuffixes = []string{"", "-wal", "-shm"}

// DatabaseUsageBytes returns the on-disk size of the deal database at dbPath,
// including its write-ahead log and shared-memory index. Recent writes live in
// the WAL until a checkpoint, so the main file alone under-reports.
func DatabaseUsageBytes(dbPath string) (int64, error) {
	if dbPath == "" || dbPath == ":memory:" {
		return 0, nil
	}
	var total int64
	for _, suffix := range walSuffixes {
		n, err := fileSize(dbPath + suffix)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// IndexUsageBytes returns the size of the search index directory. An empty
// path is a memory-only index.
func IndexUsageBytes(indexPath string) (int64, error) {
	if indexPath == "" {
		return 0, nil
	}
	var total int64
	err := filepath.WalkDir(indexPath, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}

// UsageBytes is the combined size of the deal database and search index.
func UsageBytes(dbPath, indexPath string) (int64, error) {
	db, err := DatabaseUsageBytes(dbPath)
	if err != nil {
		return 0, err
	}
	idx, err := IndexUsageBytes(indexPath)
	if err != nil {
		return 0, err
	}
	return db + idx, nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
