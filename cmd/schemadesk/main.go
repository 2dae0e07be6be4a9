// Command schemadesk serves and inspects a SchemaDesk project.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "schemadesk",
	Short: "Schema-driven JSON document editor engine",
	Long: `schemadesk manages a project folder of JSON data files, each paired with a
schema config file (name.json -> name.config.json).

The serve command runs the HTTP API and websocket relay used by the editor UI.
The other commands operate on the project directly and exit.`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Config file (yaml or toml)")
	flags.StringP("project", "p", "", "Project root (defaults to the last opened project)")
	flags.String("data-dir", "", "State directory")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
