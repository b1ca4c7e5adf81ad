// Command jester runs the demo: a title scene and a field of bouncing
// sprites. Enter switches to the field, Escape goes back, arrow keys scroll
// the camera, and Q quits.
//
// Run with -headless to drive the same scenes without a window, optionally
// replaying a JSON input script.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"os/signal"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/jester"
	"github.com/phanxgames/jester/backend/ebitenbackend"
	"github.com/phanxgames/jester/backend/headless"
)

var (
	headlessFlag = flag.Bool("headless", false, "run without a window")
	frames       = flag.Int("frames", 0, "headless: stop after this many frames (0 = until the script ends)")
	scriptPath   = flag.String("script", "", "headless: JSON input script to replay")
	shotDir      = flag.String("screenshots", "screenshots", "directory for screenshots")
	width        = flag.Int("width", 800, "window width")
	height       = flag.Int("height", 600, "window height")
	count        = flag.Int("sprites", 2000, "number of sprites in the field scene")
	atlasPath    = flag.String("atlas", "", "optional TexturePacker JSON atlas for the field sprites")
	debug        = flag.Bool("debug", false, "log per-frame batch stats")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	jester.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "jester: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var (
		backend  jester.Backend
		textures textureMaker
	)
	if *headlessFlag {
		opts := []headless.Option{headless.WithScreenshotDir(*shotDir)}
		if *scriptPath != "" {
			script, err := headless.LoadScriptFile(*scriptPath)
			if err != nil {
				return err
			}
			opts = append(opts, headless.WithScript(script))
			if *frames == 0 {
				opts = append(opts, headless.WithCloseOnScriptEnd())
			}
		}
		if *frames > 0 {
			opts = append(opts, headless.WithCloseAfter(*frames))
		} else if *scriptPath == "" {
			return fmt.Errorf("-headless needs -frames or -script")
		}
		hb := headless.New(opts...)
		backend, textures = hb, hb.RegisterImage
	} else {
		eb := ebitenbackend.New(
			ebitenbackend.WithScreenshotDir(*shotDir),
			ebitenbackend.WithClearColor(color.RGBA{R: 30, G: 30, B: 40, A: 255}),
		)
		backend = eb
		textures = func(img image.Image) jester.TextureID {
			return eb.RegisterImage(ebiten.NewImageFromImage(img))
		}
	}

	app := jester.NewApp("Jester", backend,
		jester.WithSize(*width, *height),
		jester.WithResizable(true),
		jester.WithDebug(*debug),
		jester.WithPoolCapacity(*count+16),
	)

	art := &artwork{
		box:  textures(checker(32, color.RGBA{R: 80, G: 180, B: 255, A: 255}, color.RGBA{R: 40, G: 90, B: 200, A: 255})),
		ball: textures(disc(32, color.RGBA{R: 255, G: 200, B: 60, A: 255})),
	}
	if *atlasPath != "" {
		atlas, err := app.LoadAtlasFile(*atlasPath)
		if err != nil {
			return err
		}
		art.atlas = atlas
	}
	jester.InsertResource(app.Resources(), art)

	app.AddScene(&titleScene{}).AddScene(&fieldScene{count: *count})
	jester.SetStartScene[*titleScene](app)
	return app.Run(ctx)
}
