package main

import (
	"os"
	"runtime"

	"github.com/df07/go-material-eval/cmd"
	"github.com/urfave/cli"
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "material-eval"
	app.Usage = "evaluate renderer materials at surface points"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}

	seedFlag := cli.Int64Flag{
		Name:  "seed",
		Value: 42,
		Usage: "seed for point and wavelength sampling",
	}
	workersFlag := cli.IntFlag{
		Name:  "workers, w",
		Value: runtime.NumCPU(),
		Usage: "number of shading workers",
	}

	app.Commands = []cli.Command{
		{
			Name:   "kinds",
			Usage:  "list material kinds",
			Action: cmd.ListKinds,
		},
		{
			Name:   "presets",
			Usage:  "list built-in material presets and scenes",
			Action: cmd.ListPresets,
		},
		{
			Name:  "probe",
			Usage: "shade the materials of a config file",
			Description: `
Build every material and preset named in a JSON config, place each on the probe
shape at the configured (u, v) and print its BSDF flags, the value of f for the
configured pair of directions, and whether a BSSRDF was produced.`,
			ArgsUsage: "config.json",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "points, n",
					Usage: "override the number of points shaded per material",
				},
				workersFlag,
				seedFlag,
			},
			Action: cmd.Probe,
		},
		{
			Name:  "table",
			Usage: "tabulate the subsurface beam diffusion profile",
			Flags: []cli.Flag{
				cli.Float64Flag{
					Name:  "g",
					Usage: "phase function asymmetry",
				},
				cli.Float64Flag{
					Name:  "eta",
					Value: 1.33,
					Usage: "relative index of refraction",
				},
				cli.IntFlag{
					Name:  "rho",
					Value: 100,
					Usage: "number of albedo samples",
				},
				cli.IntFlag{
					Name:  "radius",
					Value: 64,
					Usage: "number of radius samples",
				},
				cli.IntFlag{
					Name:  "rows",
					Value: 10,
					Usage: "approximate number of rows to print",
				},
			},
			Action: cmd.TabulateBSSRDF,
		},
		{
			Name:  "mix-stats",
			Usage: "measure how often a mix selects each child",
			Flags: []cli.Flag{
				cli.Float64Flag{
					Name:  "amount, a",
					Value: 0.5,
					Usage: "mix amount",
				},
				cli.IntFlag{
					Name:  "points, n",
					Value: 10000,
					Usage: "number of points to shade",
				},
				seedFlag,
			},
			Action: cmd.MixStats,
		},
		{
			Name:      "scene",
			Usage:     "shade a built-in scene through its camera",
			ArgsUsage: "[scene name]",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 200,
					Usage: "image width",
				},
				cli.IntFlag{
					Name:  "stride",
					Value: 4,
					Usage: "shade every stride'th pixel in each direction",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "optional PNG file for the response image",
				},
				workersFlag,
				seedFlag,
			},
			Action: cmd.ShadeScene,
		},
		{
			Name:  "serve",
			Usage: "serve the inspection and shading API",
			Description: `
GET  /api/scenes   built-in scenes and material presets
GET  /api/inspect  shade the surface seen through pixel (x, y) of a scene
POST /api/shade    shade the materials of a probe config`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "port, p",
					Value: 8080,
					Usage: "port to serve on",
				},
				workersFlag,
			},
			Action: cmd.Serve,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		os.Exit(1)
	}
}
