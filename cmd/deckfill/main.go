// Package main provides the CLI entry point for deckfill.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hmasato/deckfill/pkg/deckfill"
)

var (
	outputPath  string
	dryRun      bool
	configPath  string
	staticPairs []string
	timestamped bool
	sheetName   string
	verbose     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "deckfill [template.pptx] [workbook.xlsx]",
		Short: "Fill presentation placeholders from a workbook",
		Long: `deckfill replaces <%token%> placeholders in a .pptx template with text,
linked charts, and styled tables sourced from a companion .xlsx workbook.`,
		Args: cobra.ExactArgs(2),
		RunE: run,
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file or directory (default: template directory)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report planned substitutions as JSON without writing output")
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.Flags().StringArrayVar(&staticPairs, "static", nil, "key=value bookkeeping rows to append to the workbook (repeatable)")
	rootCmd.Flags().BoolVar(&timestamped, "timestamp", false, "Timestamp the generated file name")
	rootCmd.Flags().StringVar(&sheetName, "substitutions-sheet", "", "Name of the scalar key/value tab (default: substitutions)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log substitutions to stderr")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// config mirrors the CLI flags for repeated invocations; flags win over
// config values.
type config struct {
	SubstitutionsSheet string            `yaml:"substitutions_sheet"`
	OutputDir          string            `yaml:"output_dir"`
	Timestamp          bool              `yaml:"timestamp"`
	StaticSheet        string            `yaml:"static_sheet"`
	Static             map[string]string `yaml:"static"`
}

func loadConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	templatePath, workbookPath := args[0], args[1]

	for _, p := range []string{templatePath, workbookPath} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", p)
		}
	}

	cfg := &config{}
	if configPath != "" {
		loaded, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if sheetName == "" {
		sheetName = cfg.SubstitutionsSheet
	}
	if !timestamped {
		timestamped = cfg.Timestamp
	}

	opts := deckfill.Options{SubstitutionsSheet: sheetName}
	if verbose {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if dryRun {
		report, err := deckfill.Plan(templatePath, workbookPath, opts)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	outFile := resolveOutputPath(templatePath, cfg)
	result, err := deckfill.Update(templatePath, workbookPath, outFile, opts)
	if err != nil {
		return err
	}

	if pairs := collectStatic(cfg); len(pairs) > 0 {
		sheet := cfg.StaticSheet
		if sheet == "" {
			sheet = "generated"
		}
		if err := deckfill.WriteStaticData(workbookPath, sheet, pairs); err != nil {
			return fmt.Errorf("write static data: %w", err)
		}
	}

	fmt.Printf("generated %s\n", outFile)
	if len(result.MissingSheetTokens) > 0 {
		fmt.Printf("unresolved tokens: %s\n", strings.Join(result.MissingSheetTokens, ", "))
	}
	return nil
}

// resolveOutputPath decides where the generated presentation lands. An
// explicit .pptx path is used as-is; anything else is treated as a target
// directory, with the file named after the template, optionally
// timestamped.
func resolveOutputPath(templatePath string, cfg *config) string {
	if outputPath != "" && strings.HasSuffix(outputPath, ".pptx") {
		return outputPath
	}

	dir := outputPath
	if dir == "" {
		dir = cfg.OutputDir
	}
	if dir == "" {
		dir = filepath.Dir(templatePath)
	}

	stem := strings.TrimSuffix(filepath.Base(templatePath), filepath.Ext(templatePath))
	if timestamped {
		return filepath.Join(dir, fmt.Sprintf("%s-%s.pptx", stem, time.Now().Format("20060102-150405")))
	}
	return filepath.Join(dir, stem+"-filled.pptx")
}

// collectStatic merges config static entries with --static flags; flags are
// appended after config entries and win on duplicate keys by coming later.
func collectStatic(cfg *config) [][2]string {
	var pairs [][2]string
	for key, value := range cfg.Static {
		pairs = append(pairs, [2]string{key, value})
	}
	for _, raw := range staticPairs {
		key, value, found := strings.Cut(raw, "=")
		if !found || key == "" {
			continue
		}
		pairs = append(pairs, [2]string{key, value})
	}
	return pairs
}
