package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"picketfence/internal/models"
	"picketfence/pkg/config"
	"picketfence/pkg/phantom"
	"picketfence/pkg/picketfence"
	"picketfence/pkg/scene"
	"picketfence/pkg/visualization"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "picketfence.yaml", "Configuration file (defaults are used when missing)")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	scenePath := flag.String("scene", "", "Scene YAML describing images and junction contours")
	phantomDir := flag.String("phantom", "", "Write a synthetic picket-fence scene to this directory and analyse it")
	model := flag.String("model", "", "MLC model override, e.g. VarianMillenniumMLC120 or HD120")
	images := flag.String("images", "", "Image selection override: none, first, last or all")
	preview := flag.String("preview", "", "Write an overlay preview per analysed image (.png, .jpg or .tif)")
	previewScale := flag.Int("preview-scale", 1, "Integer enlargement of the preview")
	verbose := flag.Bool("v", false, "Enable per-stage trace logging")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write configuration: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *model != "" {
		cfg.Analysis.MLCModel = *model
	}
	if *images != "" {
		cfg.Analysis.ImageSelection = *images
	}

	writers := picketfence.LogWriters{Ops: os.Stderr, Diag: os.Stderr}
	if *verbose {
		writers.Trace = os.Stderr
	}
	picketfence.SetLogWriters(writers)

	if *phantomDir != "" {
		path, err := writePhantom(*phantomDir)
		if err != nil {
			log.Fatalf("Failed to write phantom: %v", err)
		}
		fmt.Printf("Synthetic scene written to %s\n", path)
		*scenePath = path
	}
	if *scenePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	sc, err := scene.Load(*scenePath)
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}
	arrays, err := sc.Arrays(filepath.Dir(*scenePath))
	if err != nil {
		log.Fatalf("Failed to read images: %v", err)
	}
	store, err := sc.Store()
	if err != nil {
		log.Fatalf("Failed to read contours: %v", err)
	}
	junctionCollections := len(store.Collections)

	which, err := picketfence.ParseImageSelection(cfg.Analysis.ImageSelection)
	if err != nil {
		log.Fatalf("Invalid image selection: %v", err)
	}
	analyzer, err := picketfence.NewAnalyzer(cfg)
	if err != nil {
		log.Fatalf("Failed to create analyzer: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("================================")
	fmt.Println("PICKET-FENCE MLC LEAF-POSITION ANALYSIS")
	fmt.Println("================================")
	fmt.Printf("Images: %d array(s), selection %s; junction contours: %d\n",
		len(arrays), which, store.Count())

	startTime := time.Now()
	results, runErr := analyzer.Run(ctx, arrays, store, analyzer.Select(store), which)
	processingTime := time.Since(startTime)

	for _, res := range results {
		fmt.Printf("\nImage array %d (run %s)\n", res.ArrayIndex, res.RunID)
		fmt.Println("--------------------------------")
		if res.Err != nil {
			fmt.Printf("Analysis failed: %v\n", res.Err)
			continue
		}
		if err := res.Report.WriteSummary(os.Stdout); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		if *preview != "" {
			collections := append(append([]models.ContourCollection(nil),
				store.Collections[:junctionCollections]...), res.Report.Overlays.Collections...)
			path := previewPath(*preview, res.ArrayIndex, len(results))
			if err := savePreview(arrays[res.ArrayIndex].Images[0], collections, path, *previewScale); err != nil {
				log.Printf("Warning: %v", err)
			} else {
				fmt.Printf("Preview saved to: %s\n", path)
			}
		}
	}

	fmt.Printf("\nAnalysis completed in %.2f seconds using up to %d worker(s)\n",
		processingTime.Seconds(), cfg.Processing.Workers)
	if runErr != nil {
		log.Fatalf("Analysis failed: %v", runErr)
	}
}

// writePhantom renders the default synthetic fence into dir and returns the
// scene file path.
func writePhantom(dir string) (string, error) {
	o := phantom.DefaultOptions()
	o.SplitJunctions = true
	img, store, err := phantom.Generate(o)
	if err != nil {
		return "", err
	}
	spec, err := scene.WriteImage(filepath.Join(dir, "phantom.tif"), img)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "scene.yaml")
	sc := &scene.Scene{Images: []scene.ImageSpec{spec}, Contours: scene.Describe(store)}
	return path, sc.Save(path)
}

// previewPath adds the array index before the extension when several
// images are previewed.
func previewPath(base string, index, total int) string {
	if total <= 1 {
		return base
	}
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(base, ext), index, ext)
}

func savePreview(img *models.Image, collections []models.ContourCollection, path string, scale int) error {
	viewer, err := visualization.NewViewer(img)
	if err != nil {
		return err
	}
	viewer.Scale = scale
	return viewer.Save(path, collections)
}
