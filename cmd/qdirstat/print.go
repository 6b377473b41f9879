package main

import (
	"fmt"
	"strings"

	"github.com/qdirstat-go/qdirstat/pkg/duformat"
	"github.com/qdirstat-go/qdirstat/pkg/platform/terminal"
	"github.com/qdirstat-go/qdirstat/pkg/tree"
)

// printTree writes an indented listing of node and its subtree, with the
// same size/permission columns a QDirStat detail view shows, sanitizing
// names before they reach the terminal.
func printTree(node *tree.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	agg := node.Aggregates()
	name := terminal.NeutralizeControlCharacters(node.Name())
	fmt.Printf("%s%-10s %s  %s\n", indent, duformat.Size(agg.TotalSize), duformat.Permissions(node.Mode()), name)

	for _, child := range node.Children() {
		printTree(child, depth+1)
	}
	if dotEntry := node.DotEntry(); dotEntry != nil {
		for _, file := range dotEntry.Children() {
			printTree(file, depth+1)
		}
	}
}
