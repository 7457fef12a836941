package consolidate

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ErrNoShards indicates the pattern matched no usable shard files; no
// destination file is created in that case.
var ErrNoShards = errors.New("no shards matched pattern")

// DefaultDestName is the conventional consolidated output filename.
const DefaultDestName = "litter_results_all.csv"

// Merge rebuilds destName inside dir from every shard matching pattern.
// Shards are taken in ascending name order; the first usable shard
// contributes its header, the rest contribute only data rows. Zero-byte
// files and non-regular files are skipped. Returns the destination path.
func Merge(dir, pattern, destName string) (string, error) {
	if destName == "" {
		destName = DefaultDestName
	}
	dest := filepath.Join(dir, destName)

	// Full rebuild: drop the previous consolidation before globbing so it
	// can never be swallowed as an input shard.
	if err := os.Remove(dest); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("remove previous consolidation: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("glob shards: %w", err)
	}
	sort.Strings(matches)

	shards := make([]string, 0, len(matches))
	for _, match := range matches {
		if match == dest {
			continue
		}
		info, err := os.Stat(match)
		if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
			continue
		}
		shards = append(shards, match)
	}
	if len(shards) == 0 {
		return "", ErrNoShards
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create consolidation: %w", err)
	}

	headerWritten := false
	for _, shard := range shards {
		if err := appendShard(out, shard, &headerWritten); err != nil {
			_ = out.Close()
			_ = os.Remove(dest)
			return "", err
		}
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close consolidation: %w", err)
	}
	return dest, nil
}

// AppendRows appends the data rows of src to dst, writing src's header only
// when dst does not exist yet or is empty. A missing src is a no-op.
func AppendRows(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read shard %s: %w", filepath.Base(src), err)
	}
	if len(data) == 0 {
		return nil
	}

	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create shard directory: %w", err)
		}
	}

	info, err := os.Stat(dst)
	dstEmpty := errors.Is(err, fs.ErrNotExist) || (err == nil && info.Size() == 0)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", filepath.Base(dst), err)
	}

	header, rows := splitHeader(data)
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(dst), err)
	}
	if dstEmpty {
		if _, err := out.Write(ensureNewline(header)); err != nil {
			_ = out.Close()
			return fmt.Errorf("append header: %w", err)
		}
	}
	if len(rows) > 0 {
		if _, err := out.Write(ensureNewline(rows)); err != nil {
			_ = out.Close()
			return fmt.Errorf("append rows: %w", err)
		}
	}
	return out.Close()
}

func appendShard(out *os.File, shard string, headerWritten *bool) error {
	data, err := os.ReadFile(shard)
	if err != nil {
		return fmt.Errorf("read shard %s: %w", filepath.Base(shard), err)
	}
	header, rows := splitHeader(data)
	if !*headerWritten {
		if _, err := out.Write(ensureNewline(header)); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		*headerWritten = true
	}
	if len(rows) > 0 {
		if _, err := out.Write(ensureNewline(rows)); err != nil {
			return fmt.Errorf("write rows from %s: %w", filepath.Base(shard), err)
		}
	}
	return nil
}

func splitHeader(data []byte) (header, rows []byte) {
	idx := bytes.IndexByte(data, '\n')
	if idx < 0 {
		return data, nil
	}
	return data[:idx+1], data[idx+1:]
}

func ensureNewline(data []byte) []byte {
	if len(data) == 0 || data[len(data)-1] == '\n' {
		return data
	}
	return append(append([]byte(nil), data...), '\n')
}
