package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"phasepack/pkg/config"
	"phasepack/pkg/phasepack"
	"phasepack/pkg/visualization"
)

var methods = []string{"phasecong", "moments", "phasecongmono", "phasesym", "phasesymmono"}

func main() {
	// Parse command line arguments
	inputPath := flag.String("input", "", "Input image (PNG or JPEG)")
	configPath := flag.String("config", "phasepack.yaml", "YAML configuration file (defaults are used if it does not exist)")
	method := flag.String("method", "phasecong", "Feature detector: "+strings.Join(methods, ", "))
	outputDir := flag.String("output", "", "Directory for the result maps (overrides output.dir)")
	heatmap := flag.Bool("heatmap", false, "Also render heat map plots of every result map")
	numCores := flag.Int("cores", 0, "Number of CPU cores to use (overrides processing.numCores)")
	writeConfig := flag.String("write-config", "", "Write a default configuration file to this path and exit")
	verbose := flag.Bool("v", false, "Print progress information")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.CreateDefaultConfigFile(*writeConfig); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to: %s\n", *writeConfig)
		return
	}

	if *inputPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *numCores > 0 {
		cfg.Processing.NumCores = *numCores
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *heatmap {
		cfg.Output.Heatmap = true
	}
	if *verbose {
		cfg.Output.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	img, err := loadImage(*inputPath)
	if err != nil {
		log.Fatalf("Failed to load image: %v", err)
	}
	rows, cols := img.Dims()

	if cfg.Output.Verbose {
		fmt.Println("================================")
		fmt.Println("PHASE CONGRUENCY AND PHASE SYMMETRY FEATURE DETECTION")
		fmt.Println("================================")
		fmt.Printf("Input: %s (%dx%d)\n", *inputPath, cols, rows)
		fmt.Printf("Method: %s, cores: %d\n", *method, cfg.Processing.NumCores)
	}

	startTime := time.Now()
	maps, threshold, err := run(*method, img, cfg)
	if err != nil {
		log.Fatalf("%s failed: %v", *method, err)
	}
	processingTime := time.Since(startTime)

	if err := visualization.SaveMaps(cfg.Output.Dir, maps, cfg.Output.Heatmap); err != nil {
		log.Fatalf("Failed to save results: %v", err)
	}

	if cfg.Output.Verbose {
		fmt.Printf("\nCompleted in %.2f seconds\n", processingTime.Seconds())
		if threshold >= 0 {
			fmt.Printf("Noise threshold: %.6g\n", threshold)
		}
		fmt.Printf("Results saved to: %s\n", cfg.Output.Dir)
		printSummary(os.Stdout, maps)
	}
}

// printSummary lists the value range of every map, sorted by name.
func printSummary(w io.Writer, maps map[string]mat.Matrix) {
	names := make([]string, 0, len(maps))
	for name := range maps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		lo, hi := visualization.NewViewer(maps[name]).Range()
		fmt.Fprintf(w, "- %-14s [%.4g, %.4g]\n", name, lo, hi)
	}
}

// loadImage decodes an image file into its luminance.
func loadImage(path string) (*mat.Dense, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", filepath.Base(path), err)
	}
	return phasepack.FromImage(img), nil
}

// run executes one detector and names its output maps. The returned
// threshold is negative when the method does not report one.
func run(method string, img mat.Matrix, cfg *config.Config) (map[string]mat.Matrix, float64, error) {
	switch method {
	case "phasecong":
		res, err := phasepack.PhaseCong(img, cfg.CongParams())
		if err != nil {
			return nil, 0, err
		}
		maps := map[string]mat.Matrix{
			"M":           res.Max,
			"m":           res.Min,
			"orientation": res.Orientation,
			"featuretype": res.FeatureType,
		}
		for o, pc := range res.PC {
			maps[fmt.Sprintf("pc_%02d", o)] = pc
		}
		return maps, res.T, nil

	case "moments":
		res, err := phasepack.PhaseCongMoments(img, cfg.CongParams())
		if err != nil {
			return nil, 0, err
		}
		return map[string]mat.Matrix{"M": res.Max, "m": res.Min}, -1, nil

	case "phasecongmono":
		res, err := phasepack.PhaseCongMono(img, cfg.CongMonoParams())
		if err != nil {
			return nil, 0, err
		}
		return map[string]mat.Matrix{
			"pc":          res.PC,
			"orientation": res.Orientation,
			"featuretype": res.FeatureType,
		}, res.T, nil

	case "phasesym":
		res, err := phasepack.PhaseSym(img, cfg.SymParams())
		if err != nil {
			return nil, 0, err
		}
		return symMaps(res), res.T, nil

	case "phasesymmono":
		res, err := phasepack.PhaseSymMono(img, cfg.SymMonoParams())
		if err != nil {
			return nil, 0, err
		}
		return symMaps(res), res.T, nil

	default:
		return nil, 0, fmt.Errorf("unknown method %q (must be one of %s)", method, strings.Join(methods, ", "))
	}
}

func symMaps(res *phasepack.SymResult) map[string]mat.Matrix {
	return map[string]mat.Matrix{
		"symmetry":    res.Symmetry,
		"orientation": res.Orientation,
		"totalenergy": res.TotalEnergy,
	}
}
