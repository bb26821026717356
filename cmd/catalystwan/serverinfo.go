package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/broady/catalystwan"
	"github.com/broady/catalystwan/endpoints"
	"github.com/broady/catalystwan/httptransport"
	"github.com/broady/catalystwan/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"gopkg.in/yaml.v3"
)

type ServerInfoCmd struct {
	Config  string `help:"Path to the connection config (YAML)." short:"c" required:"" type:"existingfile"`
	Format  string `help:"Output format." enum:"yaml,json" default:"yaml" short:"f"`
	Metrics bool   `help:"Print transport metrics after the call."`
}

// serverSummary is what the command prints.
type serverSummary struct {
	Server          string   `json:"server,omitempty" yaml:"server,omitempty"`
	PlatformVersion string   `json:"platformVersion" yaml:"platformVersion"`
	APIVersion      string   `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	Role            string   `json:"role" yaml:"role"`
	User            string   `json:"user,omitempty" yaml:"user,omitempty"`
	Roles           []string `json:"roles,omitempty" yaml:"roles,omitempty"`
	Ready           any      `json:"ready,omitempty" yaml:"ready,omitempty"`
}

func (c *ServerInfoCmd) Run(g *Globals) error {
	cfg, err := httptransport.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	logger := cfg.Logger(g.Stderr)

	reg := prometheus.NewRegistry()
	if cfg.UserAgent == "" {
		cfg.UserAgent = "catalystwan/" + Version()
	}
	client, err := httptransport.NewFromConfig(cfg,
		httptransport.WithLogger(logger),
		httptransport.WithMetrics(httptransport.NewMetrics(reg)),
	)
	if err != nil {
		return err
	}
	host := catalystwan.NewEndpoints(client).
		WithBasePath(cfg.BasePath).
		WithLogger(logger).
		WithInterceptor(middleware.LoggingInterceptor(logger))
	api := endpoints.NewAPIContainer(host)

	ctx := context.Background()
	info, err := api.Client.Server(ctx)
	if err != nil {
		return fmt.Errorf("query server info: %w", err)
	}
	if v := info.APIVersion(); v != nil {
		client.SetAPIVersion(v)
	}
	if r := info.Role(); r != catalystwan.RoleUnknown {
		client.SetSessionRole(r)
	}

	summary := serverSummary{
		PlatformVersion: info.PlatformVersion,
		Role:            client.SessionRole().String(),
		Roles:           info.Roles,
	}
	if info.Server != nil {
		summary.Server = *info.Server
	}
	if info.User != nil {
		summary.User = *info.User
	}
	if v := client.APIVersion(); v != nil {
		summary.APIVersion = v.String()
	}
	if ready, err := api.Client.ServerReady(ctx); err != nil {
		logger.WarnContext(ctx, "server readiness unavailable", "error", err)
	} else {
		summary.Ready = ready
	}

	if err := writeSummary(g.Stdout, c.Format, summary); err != nil {
		return err
	}
	if c.Metrics {
		return writeMetrics(g.Stdout, reg)
	}
	return nil
}

func writeSummary(w io.Writer, format string, s serverSummary) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
