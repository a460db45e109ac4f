// inspectsheet prints what detection would find in a sheet without
// writing anything: background estimate, raw regions and merged boxes.
// Useful for picking a tolerance before a real run.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gnusam/sprite-splitter/internal/background"
	"github.com/gnusam/sprite-splitter/internal/detect"
	"github.com/gnusam/sprite-splitter/internal/sheet"
)

func main() {
	keepBG := flag.Bool("keep-bg", false, "Skip background removal")
	tolerance := flag.Float64("tolerance", 10, "Background color distance threshold")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: inspectsheet [flags] sheet.png")
		os.Exit(1)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	src, format, err := sheet.Decode(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sheet: %s %dx%d\n", format, src.W, src.H)

	est := background.EstimateBackground(src)
	fmt.Printf("Background: corner=%s dominant=%s match=%v\n", est.Corner, est.Dominant, est.CornerIsDominant)

	if !*keepBG {
		background.Remove(src, *tolerance)
	}

	regions := detect.FindRegions(src)
	merged := detect.MergeOverlapping(regions)
	fmt.Printf("Regions: %d raw, %d after merge\n", len(regions), len(merged))

	for i, b := range merged {
		fmt.Printf("  [%d] x=%d y=%d w=%d h=%d\n", i, b.X, b.Y, b.Width, b.Height)
	}

	if len(merged) == 0 {
		fmt.Println("No sprites found. Try a different tolerance or -keep-bg.")
	}
}
