// Command patchdemo renders a synthetic image stack through a patch viewport
// and saves the result as PNG.
//
// The viewport is driven like a toolkit would drive it: paint the damaged
// area, wait for filled patches, dispatch their repaint requests, and
// repeat until every visible patch is clean.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"os"
	"slices"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/patchview"
	"github.com/gogpu/patchview/geom"
	"github.com/gogpu/patchview/stack"
	"github.com/gogpu/patchview/surface"
)

// options holds the command line settings.
type options struct {
	width   int
	height  int
	output  string
	debug   bool
	timeout time.Duration
}

func main() {
	var (
		opts    options
		config  = flag.String("config", "", "TOML config file")
		watch   = flag.Bool("watch", false, "re-render whenever the config file changes")
		verbose = flag.Bool("v", false, "log patch activity")
	)
	flag.IntVar(&opts.width, "width", 800, "scene width")
	flag.IntVar(&opts.height, "height", 600, "scene height")
	flag.StringVar(&opts.output, "output", "patchdemo.png", "output file")
	flag.BoolVar(&opts.debug, "debug", false, "draw patch debug markers")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "give up after this long")
	flag.Parse()

	if *verbose {
		patchview.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg, err := loadConfig(*config)
	if err != nil {
		log.Fatal(err)
	}
	if err := render(cfg, opts); err != nil {
		log.Fatal(err)
	}

	if *watch {
		if *config == "" {
			log.Fatal("-watch needs -config")
		}
		if err := watchConfig(*config, opts); err != nil {
			log.Fatal(err)
		}
	}
}

func loadConfig(path string) (patchview.Config, error) {
	if path == "" {
		return patchview.DefaultConfig(), nil
	}
	return patchview.LoadConfig(path)
}

// render draws the demo stack once and saves it.
func render(cfg patchview.Config, opts options) error {
	damage := &surface.Damage{}
	vp, err := patchview.New(damage,
		patchview.WithConfig(cfg),
		patchview.WithDebugPatches(opts.debug || cfg.ShowDebugPatches))
	if err != nil {
		return err
	}
	defer func() { _ = vp.Close() }()

	checker := stack.NewLayer("checker", stack.SourceFunc(checkerboard))
	checker.Opacity = 0.35
	stk := stack.NewStacked(stack.NewLayer("gradient", stack.SourceFunc(gradient)), checker)
	if err := vp.SetStack(stk); err != nil {
		return err
	}
	if err := vp.SetSceneShape(opts.width, opts.height); err != nil {
		return fmt.Errorf("invalid scene: %w", err)
	}

	brush(vp, 0)

	surf := surface.NewImageSurface(opts.width, opts.height)
	surf.Clear(color.Black)
	damage.InvalidateAll()

	start := time.Now()
	frames, err := run(vp, damage, surf, opts.timeout)
	if err != nil {
		return err
	}

	if err := savePNG(opts.output, surf.Image()); err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}

	p := message.NewPrinter(language.English)
	log.Print(p.Sprintf("Rendered %d patches of %dpx in %d frames (%v): %v",
		len(vp.CompositePatches()), cfg.PatchSize, frames, time.Since(start).Round(time.Millisecond), vp.Stats()))
	log.Print(p.Sprintf("Demo saved to %s (%d×%d, %d pixels)", opts.output, opts.width, opts.height, opts.width*opts.height))
	return nil
}

// run paints damaged areas and dispatches fills until no fill is pending.
func run(vp *patchview.Viewport, damage *surface.Damage, surf *surface.ImageSurface, timeout time.Duration) (int, error) {
	deadline := time.After(timeout)
	frames := 0
	for {
		if damage.HasDirtyRegions() {
			clips := []geom.Rect{surf.Viewport()}
			if !damage.NeedsFullRedraw() {
				clips = slices.Clone(damage.Rects())
			}
			damage.ClearDirty()
			for _, clip := range clips {
				vp.DrawBackground(surf, clip)
				vp.DrawForeground(surf, clip)
			}
			frames++
		}

		// Nothing pending means no more notifications will be posted.
		if vp.Stats().Pending == 0 {
			if vp.Dispatch() > 0 {
				continue
			}
			if !clean(vp) {
				log.Print("Some patches failed to render")
			}
			return frames, nil
		}

		select {
		case <-vp.Events():
			vp.Dispatch()
		case <-deadline:
			return frames, context.DeadlineExceeded
		}
	}
}

// clean reports whether every composite patch has been filled.
func clean(vp *patchview.Viewport) bool {
	for _, p := range vp.CompositePatches() {
		p.Lock()
		dirty := p.Dirty
		p.Unlock()
		if dirty {
			return false
		}
	}
	return true
}

// brush paints a translucent stroke into overlay patch id.
func brush(vp *patchview.Viewport, id int) {
	err := vp.UpdateOverlay(id, func(img *image.RGBA) {
		b := img.Bounds()
		for i := range min(b.Dx(), b.Dy()) {
			for w := range 6 {
				img.SetRGBA(min(i+w, b.Dx()-1), i, color.RGBA{R: 200, G: 200, A: 200})
			}
		}
	})
	if err != nil {
		log.Printf("No overlay: %v", err)
	}
}

// gradient renders a data-space ramp: red grows along the primary axis,
// blue along the secondary.
func gradient(ctx context.Context, region image.Rectangle) (image.Image, error) {
	img := image.NewRGBA(region)
	for x := region.Min.X; x < region.Max.X; x++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for y := region.Min.Y; y < region.Max.Y; y++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: 64, B: uint8(y), A: 255})
		}
	}
	return img, nil
}

// checkerboard renders 32 pixel squares aligned to the data origin.
func checkerboard(ctx context.Context, region image.Rectangle) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img := image.NewRGBA(region)
	for x := region.Min.X; x < region.Max.X; x++ {
		for y := region.Min.Y; y < region.Max.Y; y++ {
			if (x/32+y/32)%2 == 0 {
				img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			}
		}
	}
	return img, nil
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
