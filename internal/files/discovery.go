package files

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"wellpulse/internal/config"
)

// FileInfo represents information about a discovered file.
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Discovery provides file discovery operations rooted at a base path.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindCSVFiles finds all CSV files in the specified directory.
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	return d.findByExtension(dir, ".csv")
}

// FindExcelFiles finds all Excel workbooks in the specified directory.
func (d *Discovery) FindExcelFiles(dir string) ([]FileInfo, error) {
	return d.findByExtension(dir, ".xlsx", ".xls")
}

func (d *Discovery) findByExtension(dir string, exts ...string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := strings.ToLower(entry.Name())
		matched := false
		for _, ext := range exts {
			if strings.HasSuffix(name, ext) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// FindFilesByPattern finds files matching a glob pattern.
func (d *Discovery) FindFilesByPattern(dir string, pattern string) ([]FileInfo, error) {
	searchPattern := filepath.Join(d.resolve(dir), pattern)

	matches, err := filepath.Glob(searchPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Path:    match,
			Name:    filepath.Base(match),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// FindCleanedFiles finds dated cleaned dataset exports in the directory.
func (d *Discovery) FindCleanedFiles(dir string) ([]FileInfo, error) {
	return d.FindFilesByPattern(dir, config.CleanedFilePattern)
}

// LatestRaw returns the most recently modified raw production dataset in
// the directory. CSV and XLSX drops both qualify; raw drops carry no stamp
// in the name, so modification time decides.
func (d *Discovery) LatestRaw(dir string) (FileInfo, bool, error) {
	var candidates []FileInfo
	for _, pattern := range []string{config.RawFilePrefix + "*.csv", config.RawFilePrefix + "*.xlsx"} {
		matches, err := d.FindFilesByPattern(dir, pattern)
		if err != nil {
			return FileInfo{}, false, err
		}
		candidates = append(candidates, matches...)
	}
	latest, ok := GetLatestFile(candidates)
	return latest, ok, nil
}

// LatestCleaned returns the newest cleaned dataset export. Exports carry a
// date stamp in the name; the stamp wins over file modification time so a
// re-written older export does not shadow a newer dataset.
func (d *Discovery) LatestCleaned(dir string) (FileInfo, bool, error) {
	candidates, err := d.FindCleanedFiles(dir)
	if err != nil {
		return FileInfo{}, false, err
	}
	if len(candidates) == 0 {
		return FileInfo{}, false, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		si, iOK := cleanedStamp(candidates[i].Name)
		sj, jOK := cleanedStamp(candidates[j].Name)
		if iOK && jOK && !si.Equal(sj) {
			return si.After(sj)
		}
		if iOK != jOK {
			return iOK
		}
		return candidates[i].ModTime.After(candidates[j].ModTime)
	})
	return candidates[0], true, nil
}

// cleanedStamp parses the YYYYMMDD stamp out of a cleaned export name.
func cleanedStamp(name string) (time.Time, bool) {
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, config.CleanedFilePrefix), ".csv")
	t, err := time.Parse(config.DateStampLayout, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ListArtifacts walks the directory tree and returns every regular file,
// newest first.
func (d *Discovery) ListArtifacts(dir string) ([]FileInfo, error) {
	root := d.resolve(dir)

	var files []FileInfo
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil
		}
		files = append(files, FileInfo{
			Path:    path,
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

// GetLatestFile returns the most recently modified file from a list.
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}
