// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// gen-docs writes the reference of the proxydns commands and their
// configuration flags, one file per command.
package main

//go:generate go run gen-docs.go --path ../../docs
//go:generate go run gen-docs.go --path ../../docs/man --format man

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	proxydnscmd "github.com/telekom/proxydns/cmd"
)

const (
	formatMarkdown = "markdown"
	formatMan      = "man"
	formatYAML     = "yaml"
)

func main() {
	if err := newCmdGenDocs().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCmdGenDocs() *cobra.Command {
	var path, format string

	cmd := &cobra.Command{
		Use:   "gen-docs",
		Short: "Generates the proxydns command reference",
		Long:  "Generates the reference of the proxydns commands, including every configuration flag and its environment key",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return generate(proxydnscmd.BuildCmd(""), path, format)
		},
	}
	cmd.Flags().StringVar(&path, "path", "docs", "directory the reference is written to")
	cmd.Flags().StringVar(&format, "format", formatMarkdown, "output format, one of markdown, man or yaml")
	return cmd
}

// generate writes the reference of root and its subcommands to dir
func generate(root *cobra.Command, dir, format string) error {
	root.DisableAutoGenTag = true
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	var err error
	switch format {
	case formatMarkdown:
		err = doc.GenMarkdownTree(root, dir)
	case formatMan:
		err = doc.GenManTree(root, &doc.GenManHeader{Title: "PROXYDNS", Section: "1", Source: "proxydns"}, dir)
	case formatYAML:
		err = doc.GenYamlTree(root, dir)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to generate %s docs in %s: %w", format, filepath.Clean(dir), err)
	}
	return nil
}
