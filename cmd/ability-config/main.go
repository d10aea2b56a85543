package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rentora/ability"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "convert":
		handleConvert()
	case "validate":
		handleValidate()
	case "stats":
		handleStats()
	case "apply":
		handleApply()
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("ability-config - Guard configuration tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ability-config convert <input> <output>  - Convert between formats")
	fmt.Println("  ability-config validate <file>           - Validate configuration")
	fmt.Println("  ability-config stats <file>              - Show configuration statistics")
	fmt.Println("  ability-config apply <file>              - Dry-run apply against a guard")
	fmt.Println()
	fmt.Println("Supported formats: .ability, .dsl, .yaml, .yml, .json, .bin")
}

func handleConvert() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: ability-config convert <input> <output>")
		os.Exit(1)
	}

	inputFile := os.Args[2]
	outputFile := os.Args[3]

	cfg, err := loadConfig(inputFile)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := saveConfig(cfg, outputFile); err != nil {
		fmt.Printf("Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Converted %s -> %s\n", inputFile, outputFile)

	inStat, _ := os.Stat(inputFile)
	outStat, _ := os.Stat(outputFile)
	if inStat != nil && outStat != nil {
		reduction := (1 - float64(outStat.Size())/float64(inStat.Size())) * 100
		if reduction > 0 {
			fmt.Printf("Size reduced by %.1f%% (%d -> %d bytes)\n",
				reduction, inStat.Size(), outStat.Size())
		} else {
			fmt.Printf("Size increased by %.1f%% (%d -> %d bytes)\n",
				-reduction, inStat.Size(), outStat.Size())
		}
	}
}

func handleValidate() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: ability-config validate <file>")
		os.Exit(1)
	}

	filename := os.Args[2]
	cfg, err := loadConfig(filename)
	if err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Configuration is valid\n")
	fmt.Printf("  Version: %d\n", cfg.Version)
	fmt.Printf("  Operations: %d\n", len(cfg.Operations))
}

func handleStats() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: ability-config stats <file>")
		os.Exit(1)
	}

	filename := os.Args[2]
	cfg, err := loadConfig(filename)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	stat, _ := os.Stat(filename)

	fmt.Println("Configuration Statistics")
	fmt.Println("========================")
	if stat != nil {
		fmt.Printf("File size: %d bytes\n", stat.Size())
	}
	fmt.Printf("Version: %d\n", cfg.Version)
	fmt.Println()

	totalChecks := 0
	recordChecks := 0
	fieldChecks := 0
	bySubject := map[string]int{}
	for _, op := range cfg.Operations {
		totalChecks += len(op.Checks)
		for _, c := range op.Checks {
			if c.Record {
				recordChecks++
			}
			if len(c.Fields) > 0 {
				fieldChecks++
			}
			bySubject[c.Subject]++
		}
	}

	fmt.Println("Components:")
	fmt.Printf("  Operations: %d\n", len(cfg.Operations))
	fmt.Printf("  Checks:     %d\n", totalChecks)
	fmt.Println()

	if totalChecks > 0 {
		fmt.Println("Check Details:")
		fmt.Printf("  Record-scoped:  %d\n", recordChecks)
		fmt.Printf("  Field-scoped:   %d\n", fieldChecks)
		fmt.Printf("  Avg per op:     %.1f\n", float64(totalChecks)/float64(len(cfg.Operations)))
		fmt.Println()
		fmt.Println("Checks by subject:")
		for subject, n := range bySubject {
			fmt.Printf("  %-14s %d\n", subject, n)
		}
		fmt.Println()
	}

	fmt.Println("Cache Configuration:")
	fmt.Printf("  Record TTL:         %dms\n", cfg.Cache.RecordTTL)
	fmt.Printf("  Record max entries: %d\n", cfg.Cache.RecordMaxEntries)
}

func handleApply() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: ability-config apply <file>")
		os.Exit(1)
	}

	filename := os.Args[2]
	cfg, err := loadConfig(filename)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	guard := ability.NewGuard()
	if err := guard.ApplyConfig(cfg); err != nil {
		fmt.Printf("Error applying config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Configuration applied successfully\n")
	fmt.Printf("  Operations attached: %d\n", len(guard.Operations()))
}

func loadConfig(filename string) (*ability.Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".ability", ".dsl":
		parser := ability.NewDSLParser()
		return parser.Parse(data)
	case ".yaml", ".yml":
		loader := ability.NewConfigLoader()
		return loader.LoadYAML(data)
	case ".json":
		loader := ability.NewConfigLoader()
		return loader.LoadJSON(data)
	case ".bin":
		loader := ability.NewConfigLoader()
		return loader.LoadBinary(data)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

func saveConfig(cfg *ability.Config, filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))

	var data []byte
	var err error

	switch ext {
	case ".ability", ".dsl":
		data, err = ability.NewDSLEncoder().Encode(cfg)
	case ".yaml", ".yml":
		data, err = cfg.ToYAML()
	case ".json":
		data, err = cfg.ToJSON()
	case ".bin":
		data, err = cfg.ToBinary()
	default:
		return fmt.Errorf("unsupported file format: %s", ext)
	}

	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}
