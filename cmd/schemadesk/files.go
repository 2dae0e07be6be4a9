package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schemadesk/engine/internal/api/validation"
	"github.com/schemadesk/engine/internal/filetree"
)

var newCmd = &cobra.Command{
	Use:   "new <folder>",
	Short: "Create a data file and its default config in a project folder",
	Long: `Create a new data file holding an empty array, paired with a config file
holding the default schema. The folder is project-relative and must exist.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, err := validation.ValidateParentPath("folder", args[0])
		if err != nil {
			return err
		}
		if parent == "" {
			return fmt.Errorf("folder cannot be empty")
		}
		return withProject(cmd, func(ctx context.Context, p *project) error {
			// an unknown folder would create an untitled file that is never saved
			if _, ok := findFolder(p, parent); !ok {
				return fmt.Errorf("folder not found: %s", parent)
			}
			res, err := p.engine.NewFile(ctx, parent)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Node.CurrentPath)
			return nil
		})
	},
}

var defaultsCmd = &cobra.Command{
	Use:   "defaults <file>",
	Short: "Print the default document for a file's schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := validation.ValidateFilePath("file", args[0])
		if err != nil {
			return err
		}
		return withProject(cmd, func(ctx context.Context, p *project) error {
			doc, err := p.engine.DefaultDocument(ctx, path)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), doc)
		})
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema <file>",
	Short: "Print the JSON Schema derived from a file's config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := validation.ValidateFilePath("file", args[0])
		if err != nil {
			return err
		}
		return withProject(cmd, func(ctx context.Context, p *project) error {
			schema, err := p.engine.ReadConfig(ctx, path)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), schema.JSONSchema())
		})
	},
}

func init() {
	rootCmd.AddCommand(newCmd, defaultsCmd, schemaCmd)
}

func findFolder(p *project, rel string) (*filetree.Node, bool) {
	return filetree.FindFolder(p.engine.Tree(), rel)
}
