package tree

import "strings"

// LocateFrom resolves path starting the search at anchor rather than at the
// tree's top level, by walking path components against anchor's own
// descendants. Used by the cache reader, whose declared starting point may
// be any Dir already in the tree, not necessarily a top-level one.
//
// Unlike Locate, this does not special-case the DotEntry/Attic pseudo-names;
// it is only ever asked to resolve real filesystem paths during cache
// replay.
func (t *Tree) LocateFrom(anchor *Node, path string) *Node {
	if anchor == nil || !anchor.IsValid() {
		return nil
	}

	base := anchor.Path()
	if path == base {
		return anchor
	}

	rest := strings.TrimPrefix(path, base)
	if rest == path && base != "" {
		return nil // path is not under anchor at all
	}
	rest = strings.TrimPrefix(rest, "/")

	cur := anchor
	for _, comp := range strings.Split(rest, "/") {
		if comp == "" {
			continue
		}
		next := findChildByName(cur, comp)
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// findChildByName looks for a direct child of n (including its DotEntry's
// and Attic's children) named name.
func findChildByName(n *Node, name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	if n.dotEntry != nil {
		for _, c := range n.dotEntry.children {
			if c.name == name {
				return c
			}
		}
	}
	if n.attic != nil {
		for _, c := range n.attic.children {
			if c.name == name {
				return c
			}
		}
	}
	return nil
}
