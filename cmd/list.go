package cmd

import (
	"fmt"

	"github.com/df07/go-material-eval/pkg/material"
	"github.com/df07/go-material-eval/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

func newTable(ctx *cli.Context, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader(header)
	return table
}

// List the material kinds a config may name.
func ListKinds(ctx *cli.Context) error {
	setupLogging(ctx)

	table := newTable(ctx, "Kind", "Type name")
	for _, k := range material.Kinds() {
		table.Append([]string{fmt.Sprintf("%d", k), k.String()})
	}
	table.Render()
	return nil
}

// List the built-in material presets and scenes.
func ListPresets(ctx *cli.Context) error {
	setupLogging(ctx)

	table := newTable(ctx, "Preset", "Kind", "Description")
	for _, p := range scene.ListPresets() {
		table.Append([]string{p.Name, p.Kind, p.Description})
	}
	table.SetFooter([]string{"", "SCENES", fmt.Sprintf("%v", scene.ListScenes())})
	table.Render()
	return nil
}
