package main

import (
	_ "embed"
	"fmt"
	"io"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var embeddedVersion string

// buildVersion describes the running binary.
type buildVersion struct {
	Release  string
	Module   string
	Go       string
	Revision string
	Modified bool
}

func currentBuild() buildVersion {
	info, _ := debug.ReadBuildInfo()
	return newBuildVersion(strings.TrimSpace(embeddedVersion), info)
}

// newBuildVersion prefers the module version stamped by `go install
// ...@version`. Other builds report "devel-<VERSION>" plus the short VCS
// revision when one was recorded.
func newBuildVersion(base string, info *debug.BuildInfo) buildVersion {
	v := buildVersion{Release: "devel-" + base}
	if info == nil {
		v.Release = base
		return v
	}
	v.Module = info.Main.Path
	v.Go = info.GoVersion
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			v.Revision = s.Value
		case "vcs.modified":
			v.Modified = s.Value == "true"
		}
	}
	switch {
	case info.Main.Version != "" && info.Main.Version != "(devel)":
		v.Release = info.Main.Version
	case len(v.Revision) >= 7:
		v.Release += "+" + v.Revision[:7]
	}
	return v
}

// Version returns the version string.
func Version() string {
	return currentBuild().Release
}

func (v buildVersion) write(w io.Writer, verbose bool) error {
	if !verbose {
		_, err := fmt.Fprintln(w, v.Release)
		return err
	}
	rev := v.Revision
	if rev != "" && v.Modified {
		rev += " (modified)"
	}
	for _, line := range [][2]string{
		{"version", v.Release},
		{"module", v.Module},
		{"go", v.Go},
		{"revision", rev},
	} {
		if line[1] == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%-10s%s\n", line[0]+":", line[1]); err != nil {
			return err
		}
	}
	return nil
}
