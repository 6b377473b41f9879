package tree

import "testing"

func TestLocatePseudoDirExplicit(t *testing.T) {
	tr, top := buildSimpleDir(t)

	found := tr.Locate("/home/user/<Files>", true)
	if found != top.dotEntry {
		t.Errorf("Locate with findPseudoDirs should return the DotEntry itself, got %v", found)
	}

	if tr.Locate("/home/user/<Files>", false) != nil {
		t.Error("Locate should not resolve the pseudo-name when findPseudoDirs is false")
	}
}

func TestLocateAtticChild(t *testing.T) {
	tr := NewTree(nil)
	top := NewDir("/a", dirStat())
	must(t, tr.InsertChild(tr.Root(), top))
	top.attic = newNode(KindAttic, atticName)
	top.attic.parent = top
	junk := NewFile("junk.tmp", regularFileStat(1, 1, 1))
	must(t, tr.InsertChild(top.attic, junk))

	found := tr.Locate("/a/junk.tmp", false)
	if found != junk {
		t.Errorf("Locate should find a file routed to the Attic, got %v", found)
	}
}

func TestLocateMissingTopLevel(t *testing.T) {
	tr, _ := buildSimpleDir(t)
	if tr.Locate("/does/not/exist", false) != nil {
		t.Error("Locate should return nil when no top-level entry matches")
	}
}
