package main

import (
	"github.com/alecthomas/kong"
)

type CLI struct {
	Version    VersionCmd    `cmd:"" help:"Print version information."`
	Endpoints  EndpointsCmd  `cmd:"" help:"Write the table of declared operations as markdown."`
	Check      CheckCmd      `cmd:"" help:"Load every declaration and list the operations."`
	ServerInfo ServerInfoCmd `cmd:"" name:"server-info" help:"Query /client/server on a manager."`
}

type VersionCmd struct {
	Verbose bool `short:"v" help:"Also print the module path, Go version and VCS revision."`
}

func (c *VersionCmd) Run(g *Globals) error {
	return currentBuild().write(g.Stdout, c.Verbose)
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("catalystwan"),
		kong.Description("Declarative vManage API bindings: documentation and connectivity checks."),
		kong.UsageOnError(),
		kong.Bind(defaultGlobals()),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
