package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schemadesk/engine/internal/filetree"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the project file tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return withProject(cmd, func(ctx context.Context, p *project) error {
			tree := p.engine.Tree()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), tree)
			}
			session := p.engine.Session()
			current := ""
			if session.Current != nil {
				current = session.Current.CurrentPath
			}
			printTree(cmd.OutOrStdout(), tree, current)
			return nil
		})
	},
}

func init() {
	treeCmd.Flags().Bool("json", false, "Print the tree as JSON")
	rootCmd.AddCommand(treeCmd)
}

// printTree writes one line per node, folders suffixed with '/', and marks
// the current file with '*'
func printTree(w io.Writer, root *filetree.Node, current string) {
	fmt.Fprintln(w, root.FullPath)
	var walk func(n *filetree.Node, depth int)
	walk = func(n *filetree.Node, depth int) {
		for _, child := range n.Children {
			name := child.PartName
			if child.IsFolder() {
				name += "/"
			} else if child.CurrentPath == current {
				name += " *"
			}
			fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth+1), name)
			if child.IsFolder() {
				walk(child, depth+1)
			}
		}
	}
	walk(root, 0)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
