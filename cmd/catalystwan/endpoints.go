package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/broady/catalystwan"
	"github.com/broady/catalystwan/endpoints"
	"github.com/broady/catalystwan/internal/srcpos"
)

type EndpointsCmd struct {
	Out      string `help:"Write to this file instead of stdout." short:"o" type:"path"`
	LinkBase string `help:"Base URL for source links, e.g. https://github.com/org/repo/blob/main/." name:"link-base"`
	Root     string `help:"Module root that source links are relative to." default:"." type:"existingdir"`
}

func (c *EndpointsCmd) Run(g *Globals) error {
	var linker catalystwan.Linker
	if c.LinkBase != "" {
		root, err := filepath.Abs(c.Root)
		if err != nil {
			return err
		}
		idx, err := srcpos.Load(root, "./endpoints")
		if err != nil {
			return fmt.Errorf("index sources: %w", err)
		}
		linker = &srcpos.Linker{Index: idx, Root: root, BaseURL: c.LinkBase}
	}

	if c.Out == "" {
		return endpoints.Registry().Markdown(g.Stdout, linker)
	}
	f, err := os.Create(c.Out)
	if err != nil {
		return err
	}
	if err := endpoints.Registry().Markdown(f, linker); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(g.Stderr, "✓ Wrote %d operations to %s\n", endpoints.Registry().Len(), c.Out)
	return nil
}
