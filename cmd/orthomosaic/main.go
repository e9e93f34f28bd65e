// Command orthomosaic assembles a pose-tagged sequence of aerial
// photographs into a single orthorectified mosaic.
//
// Usage:
//
//	orthomosaic -poses poses.txt -images ./photos -out mosaic.png [-config mosaic.ini]
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/nmichlo/orthomosaic-go/internal/cliutil"
	"github.com/nmichlo/orthomosaic-go/internal/config"
	"github.com/nmichlo/orthomosaic-go/internal/imageio"
	"github.com/nmichlo/orthomosaic-go/internal/mosaic"
	"github.com/nmichlo/orthomosaic-go/internal/pose"
)

func main() {
	posesPath := flag.String("poses", "", "path to the pose file (required)")
	imageDir := flag.String("images", "", "directory containing the pose file's referenced images (required)")
	outPath := flag.String("out", "mosaic.png", "path to write the final mosaic")
	configPath := flag.String("config", "", "optional ini file overriding assembler defaults")
	flag.Parse()

	if *posesPath == "" || *imageDir == "" {
		fmt.Fprintln(os.Stderr, "orthomosaic: -poses and -images are required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*posesPath, *imageDir, *outPath, *configPath); err != nil {
		log.Fatalf("orthomosaic: %v", err)
	}
}

func run(posesPath, imageDir, outPath, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	records, err := pose.ReadFile(posesPath)
	if err != nil {
		return fmt.Errorf("read pose file: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("pose file %s contains no frames", posesPath)
	}

	intermediate := outPath
	assembler := mosaic.New(cfg, intermediate)
	defer assembler.Close()

	log.Printf("ingesting %d frames from %s", len(records), imageDir)
	if err := assembler.Ingest(records, imageDir); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	cols, _ := cliutil.TerminalSize(80, 24)
	barWidth := cols - 40
	if barWidth < 10 {
		barWidth = 10
	}

	bar := progressbar.NewOptions(len(records)-1,
		progressbar.OptionSetDescription("combining frames"),
		progressbar.OptionSetWidth(barWidth),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("frame"),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)

	result, assembleErr := assembler.Assemble(func(completed, total int) {
		_ = bar.Set(completed)
	})
	_ = bar.Finish()

	if assembleErr != nil {
		log.Printf("assembly stopped early: %v", assembleErr)
		if result.Empty() {
			return assembleErr
		}
		// A halted assembly still leaves a usable
		// mosaic up to the failing frame; persist it before surfacing
		// the error so a caller isn't left with nothing on disk.
	}

	if err := imageio.Save(outPath, result); err != nil {
		return fmt.Errorf("save final mosaic: %w", err)
	}

	mean, stddev := assembler.Stats().MeanMatches()
	log.Printf("assembled %d frame(s); mean matches/combine=%.1f (stddev %.1f); mosaic %dx%d",
		len(records), mean, stddev, result.Cols(), result.Rows())

	footprint := assembler.Footprint()
	log.Printf("mosaic footprint (world-canvas frame): %v", footprint)

	return assembleErr
}
