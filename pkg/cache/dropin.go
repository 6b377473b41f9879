package cache

import (
	"bufio"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/qdirstat-go/qdirstat/pkg/exclude"
	"github.com/qdirstat-go/qdirstat/pkg/logging"
	"github.com/qdirstat-go/qdirstat/pkg/scan"
	"github.com/qdirstat-go/qdirstat/pkg/tree"
)

// Opener returns a scan.CacheOpener bound to tr and excludeRules, for
// wiring a scanner's cache drop-in detection to this package without
// pkg/scan depending on it directly.
func Opener(tr *tree.Tree, excludeRules *exclude.List, logger *logging.Logger) scan.CacheOpener {
	return func(path string, dir *tree.Node) (scan.CacheDecoder, bool, error) {
		firstDirPath, err := peekFirstDirPath(path)
		if err != nil {
			return nil, false, err
		}
		if firstDirPath != dir.Path() {
			return nil, false, nil
		}

		reader, err := NewReader(path, tr, dir.Parent(), excludeRules, logger)
		if err != nil {
			return nil, false, err
		}
		return reader, true, nil
	}
}

// peekFirstDirPath scans path for its first D-line's decoded path, without
// disturbing any state a full Reader would need — it opens and closes its
// own handle to the file.
func peekFirstDirPath(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", err
	}
	defer gz.Close()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), 4<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "[") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if isDirCode(fields[0]) {
			return decodePathField(fields[1]), nil
		}
	}
	return "", scanner.Err()
}
