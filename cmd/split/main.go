package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/gnusam/sprite-splitter/internal/config"
	"github.com/gnusam/sprite-splitter/internal/export"
	"github.com/gnusam/sprite-splitter/internal/naming"
	"github.com/gnusam/sprite-splitter/internal/pipeline"
	"github.com/gnusam/sprite-splitter/internal/sheet"
	"github.com/gnusam/sprite-splitter/internal/sprite"
)

func main() {
	outputDir := flag.String("output", "sprites", "Output directory")
	keepBG := flag.Bool("keep-bg", false, "Skip background removal")
	tolerance := flag.Float64("tolerance", 10, "Background color distance threshold (0-100 slider scale)")
	verbatim := flag.Bool("verbatim", false, "Copy crops pixel-for-pixel instead of homogenizing")
	size := flag.Int("size", 512, "Homogenized output size in pixels")
	padding := flag.Float64("padding", 10, "Homogenized padding percent")
	webp := flag.Bool("webp", false, "Also write lossless WebP next to each PNG")
	identify := flag.String("identify", "", "Identify service endpoint (empty: keep item_<n> names)")
	timeout := flag.Duration("timeout", 60*time.Second, "Per identify call timeout")

	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: split [flags] sheet.png [sheet2.png ...]")
		os.Exit(1)
	}

	proc := config.Processing{
		RemoveBackground:    !*keepBG,
		BackgroundTolerance: *tolerance,
		Homogenize:          !*verbatim,
		TargetSize:          *size,
		PaddingPercent:      *padding,
	}
	if err := proc.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := zap.NewNop()
	var queue *naming.Queue
	if *identify != "" {
		queue = naming.NewQueue(naming.NewHTTPIdentifier(*identify, *timeout, logger), logger)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	failed := 0
	for _, path := range flag.Args() {
		if err := splitSheet(path, *outputDir, proc, queue, *webp); err != nil {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", path, err)
			failed++
		}
	}

	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())
	if failed > 0 {
		os.Exit(1)
	}
}

func splitSheet(path, outputDir string, proc config.Processing, queue *naming.Queue, webp bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	src, format, err := sheet.Decode(f)
	f.Close()
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s %dx%d\n", filepath.Base(path), format, src.W, src.H)

	ctx := context.Background()
	res, err := pipeline.Run(ctx, src, proc, zap.NewNop())
	if err != nil {
		return err
	}

	if queue != nil {
		nameSprites(ctx, queue, res)
	}

	written := 0
	for _, sp := range res.Sprites {
		if sp.State == sprite.StateError {
			fmt.Fprintf(os.Stderr, "  sprite %d: %s\n", sp.Index, sp.Err)
			continue
		}

		outPath := filepath.Join(outputDir, sp.FileName())
		if err := os.WriteFile(outPath, sp.PNG, 0644); err != nil {
			return err
		}
		if webp {
			data, err := export.EncodeWebP(sp.Output)
			if err != nil {
				fmt.Fprintf(os.Stderr, "  sprite %d: %v\n", sp.Index, err)
			} else if err := os.WriteFile(outPath[:len(outPath)-4]+".webp", data, 0644); err != nil {
				return err
			}
		}
		written++
	}

	fmt.Printf("  %d sprite(s) -> %s\n", written, outputDir)

	return export.WriteManifest(filepath.Join(outputDir, "manifest.json"), res.Sprites)
}

// nameSprites runs the throttled queue to completion and applies the
// suggestions before files are written.
func nameSprites(ctx context.Context, queue *naming.Queue, res *pipeline.Result) {
	images := make([]naming.Image, 0, len(res.Sprites))
	for _, sp := range res.Sprites {
		if sp.State != sprite.StateError {
			images = append(images, naming.Image{Index: sp.Index, PNG: sp.PNG})
		}
	}

	for u := range queue.Run(ctx, res.Generation, images) {
		if u.Run != res.Generation {
			continue
		}
		sp := res.Sprites[u.Index]
		sp.State = u.State
		if u.State == sprite.StateReady && u.Name != "" {
			sp.SuggestedName = u.Name
		}
	}
}
