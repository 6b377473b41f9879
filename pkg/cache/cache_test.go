package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/qdirstat-go/qdirstat/pkg/exclude"
	"github.com/qdirstat-go/qdirstat/pkg/filesystem"
	"github.com/qdirstat-go/qdirstat/pkg/tree"
)

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func buildSampleTree(t *testing.T, rootPath string) (*tree.Tree, *tree.Node) {
	t.Helper()
	tr := tree.NewTree(nil)
	mtime := time.Unix(1700000000, 0)

	root := tree.NewDir(rootPath, &filesystem.RawStat{
		Mode: filesystem.ModeTypeDirectory | 0755, ModificationTime: mtime, UID: 1000, GID: 1000,
	})
	must(t, tr.InsertChild(tr.Root(), root))

	plain := tree.NewFile("plain.txt", &filesystem.RawStat{
		Mode: filesystem.ModeTypeFile | 0644, Size: 100, Blocks: 8, ModificationTime: mtime, UID: 1000, GID: 1000,
	})
	must(t, tr.InsertChild(root, plain))

	sparse := tree.NewFile("sparse.img", &filesystem.RawStat{
		Mode: filesystem.ModeTypeFile | 0600, Size: 10 * 1024 * 1024, Blocks: 8, ModificationTime: mtime,
	})
	must(t, tr.InsertChild(root, sparse))

	hardlinked := tree.NewFile("linked.dat", &filesystem.RawStat{
		Mode: filesystem.ModeTypeFile | 0644, Size: 4096, Blocks: 8, Nlink: 2, ModificationTime: mtime,
	})
	must(t, tr.InsertChild(root, hardlinked))

	sub := tree.NewDir("sub", &filesystem.RawStat{Mode: filesystem.ModeTypeDirectory | 0755, ModificationTime: mtime})
	must(t, tr.InsertChild(root, sub))

	nested := tree.NewFile("nested.txt", &filesystem.RawStat{Mode: filesystem.ModeTypeFile | 0644, Size: 7, Blocks: 8, ModificationTime: mtime})
	must(t, tr.InsertChild(sub, nested))

	return tr, root
}

func decodeAll(t *testing.T, r *Reader) {
	t.Helper()
	for i := 0; i < 10000; i++ {
		done, err := r.DecodeChunk()
		must(t, err)
		if done {
			return
		}
	}
	t.Fatal("decoding did not finish")
}

func TestWriteTreeThenReadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "data")
	_, origRoot := buildSampleTree(t, root)

	cachePath := filepath.Join(dir, "cache.gz")
	must(t, WriteTree(cachePath, []*tree.Node{origRoot}, nil))

	tr2 := tree.NewTree(nil)
	reader, err := NewReader(cachePath, tr2, nil, exclude.NewList(), nil)
	must(t, err)
	decodeAll(t, reader)
	must(t, reader.Close())

	top := reader.Toplevel()
	if top == nil {
		t.Fatal("expected a toplevel Dir after decoding")
	}
	if top.Path() != root {
		t.Errorf("toplevel path = %q, want %q", top.Path(), root)
	}
	if top.ReadState() != tree.ReadStateCached {
		t.Errorf("toplevel ReadState = %v, want Cached", top.ReadState())
	}

	if got, want := top.Aggregates().TotalFiles, 4; got != want {
		t.Errorf("TotalFiles = %d, want %d", got, want)
	}
	if got, want := top.Aggregates().TotalSubDirs, 1; got != want {
		t.Errorf("TotalSubDirs = %d, want %d", got, want)
	}

	plain := tr2.Locate(filepath.Join(root, "plain.txt"), false)
	if plain == nil {
		t.Fatal("expected to locate plain.txt after round trip")
	}
	if plain.ByteSize() != 100 {
		t.Errorf("plain.txt ByteSize = %d, want 100", plain.ByteSize())
	}

	hardlinked := tr2.Locate(filepath.Join(root, "linked.dat"), false)
	if hardlinked == nil {
		t.Fatal("expected to locate linked.dat after round trip")
	}
	if hardlinked.LinkCount() != 2 {
		t.Errorf("linked.dat LinkCount = %d, want 2", hardlinked.LinkCount())
	}

	nested := tr2.Locate(filepath.Join(root, "sub", "nested.txt"), false)
	if nested == nil {
		t.Fatal("expected to locate sub/nested.txt after round trip")
	}
}

func TestReadApplyExcludePolicy(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "data")
	_, origRoot := buildSampleTree(t, root)

	cachePath := filepath.Join(dir, "cache.gz")
	must(t, WriteTree(cachePath, []*tree.Node{origRoot}, nil))

	rule, err := exclude.NewRule("sub", exclude.SyntaxGlob, exclude.ScopeBaseName)
	must(t, err)
	rules := exclude.NewList(rule)

	tr2 := tree.NewTree(nil)
	reader, err := NewReader(cachePath, tr2, nil, rules, nil)
	must(t, err)
	decodeAll(t, reader)
	must(t, reader.Close())

	sub := tr2.Locate(filepath.Join(root, "sub"), false)
	if sub == nil {
		t.Fatal("excluded dir should still be inserted")
	}
	if sub.ReadState() != tree.ReadStateOnRequestOnly {
		t.Errorf("sub.ReadState() = %v, want OnRequestOnly", sub.ReadState())
	}
	if !sub.IsExcluded() {
		t.Error("sub should be flagged IsExcluded")
	}
}

func TestDropInOpenerMatchesOnlyItsOwnAnchor(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "data")
	_, origRoot := buildSampleTree(t, root)

	cachePath := filepath.Join(dir, "cache.gz")
	must(t, WriteTree(cachePath, []*tree.Node{origRoot}, nil))

	tr2 := tree.NewTree(nil)
	opener := Opener(tr2, exclude.NewList(), nil)

	matching := tree.NewDir(root, &filesystem.RawStat{Mode: filesystem.ModeTypeDirectory})
	must(t, tr2.InsertChild(tr2.Root(), matching))
	decoder, ok, err := opener(cachePath, matching)
	must(t, err)
	if !ok {
		t.Fatal("expected the opener to recognize its own anchor path")
	}
	if decoder == nil {
		t.Fatal("expected a non-nil decoder")
	}

	tr3 := tree.NewTree(nil)
	opener3 := Opener(tr3, exclude.NewList(), nil)
	mismatched := tree.NewDir(filepath.Join(dir, "elsewhere"), &filesystem.RawStat{Mode: filesystem.ModeTypeDirectory})
	must(t, tr3.InsertChild(tr3.Root(), mismatched))
	_, ok3, err3 := opener3(cachePath, mismatched)
	must(t, err3)
	if ok3 {
		t.Error("opener should not claim a cache file anchored elsewhere")
	}
}
