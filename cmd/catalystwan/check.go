package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/broady/catalystwan/endpoints"
)

type CheckCmd struct {
	Verbose bool `help:"List every operation with its guards." short:"v"`
}

// Run reports the declarations. Invalid declarations panic while the
// endpoints package initializes, so reaching Run means they all loaded.
func (c *CheckCmd) Run(g *Globals) error {
	ops := endpoints.Registry().Operations()
	groups := make(map[string]int)
	for _, info := range ops {
		group, _, _ := strings.Cut(info.Name, ".")
		groups[group]++
	}
	fmt.Fprintf(g.Stdout, "✓ Loaded %d operations in %d groups\n", len(ops), len(groups))
	if !c.Verbose {
		return nil
	}

	w := tabwriter.NewWriter(g.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OPERATION\tMETHOD\tURL\tVERSIONS\tVIEW\tSOURCE")
	for _, info := range ops {
		versions, view := "-", "-"
		if v := info.Versions(); v != nil {
			versions = fmt.Sprintf("%s (%s)", v.Specifier, v.Policy)
		}
		if r := info.View(); r != nil {
			names := make([]string, len(r.Allowed))
			for i, role := range r.Allowed {
				names[i] = role.String()
			}
			view = fmt.Sprintf("%s (%s)", strings.Join(names, ","), r.Policy)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", info.Name, info.Method, info.Template, versions, view, info.Source)
	}
	return w.Flush()
}
