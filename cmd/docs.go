package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// docsCmd generates Markdown documentation pages for the CLI.
var docsCmd = &cobra.Command{
	Use:    "docs [dir]",
	Short:  "Generate Markdown documentation for plinkstr",
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		dir := "./docs"
		if len(args) > 0 {
			dir = args[0]
		}
		if err := doc.GenMarkdownTree(RootCmd, dir); err != nil {
			log.Fatalf("failed to generate docs: %v", err)
		}
	},
}

func init() {
	RootCmd.AddCommand(docsCmd)
}
