package api_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/whit3rabbit/textmixer/pkg/api"
)

// Example shows basic usage of the textmixer library with an in-memory table.
func Example() {
	obf, err := api.NewObfuscator(api.Options{
		Table: &api.Table{
			Engine: "string",
			Rules: []api.Rule{
				{Key: "1", Replacement: "O"},
				{Key: "2", Replacement: "Tw"},
				{Key: "3", Replacement: "Th"},
				{Key: "4", Replacement: "Fo"},
				{Key: "5", Replacement: "Fi"},
				{Key: "6", Replacement: "Si"},
				{Key: "7", Replacement: "Se"},
				{Key: "8", Replacement: "E"},
				{Key: "9", Replacement: "N"},
			},
		},
	})
	if err != nil {
		log.Fatalf("Failed to create obfuscator: %v", err)
	}

	hidden := obf.Obfuscate("854917632")
	fmt.Println(hidden)
	fmt.Println(obf.Disentangle(hidden))

	// Output:
	// EFiFoNOSeSiThTw
	// 854917632
}

// ExampleObfuscator_Validate demonstrates how an ambiguous table is reported.
func ExampleObfuscator_Validate() {
	obf, err := api.NewObfuscator(api.Options{
		Table: &api.Table{Rules: []api.Rule{
			{Key: "a", Replacement: "b"},
			{Key: "b", Replacement: "c"},
		}},
	})
	if err != nil {
		log.Fatalf("Failed to create obfuscator: %v", err)
	}

	report := obf.Validate()
	fmt.Println(report.Valid(), len(report.Ambiguities))
	// Output: false 1
}

// ExampleObfuscator_ObfuscateAll demonstrates batch processing.
func ExampleObfuscator_ObfuscateAll() {
	obf, err := api.NewObfuscator(api.Options{
		Table: &api.Table{Map: map[string]string{"6": "666", "T": "t", "L": "777"}},
	})
	if err != nil {
		log.Fatalf("Failed to create obfuscator: %v", err)
	}

	out, err := obf.ObfuscateAll(context.Background(), []string{"T6", "L", "XnQ6eyTmK_ca-rLE_6U4"})
	if err != nil {
		log.Fatalf("Failed to obfuscate batch: %v", err)
	}
	for _, s := range out {
		fmt.Println(s)
	}
	// Output:
	// t666
	// 777
	// XnQ666eytmK_ca-r777E_666U4
}

// ExampleObfuscator_ObfuscateFileToFile demonstrates how to obfuscate a file
// with a rule table stored on disk.
func ExampleObfuscator_ObfuscateFileToFile() {
	tempDir, err := os.MkdirTemp("", "textmixer-example")
	if err != nil {
		log.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tempDir)

	rulesPath := filepath.Join(tempDir, "rules.yaml")
	rules := "engine: char\nrules:\n  - key: a\n    replacement: b\n    operation: uppercase\n    indexes: [0, 2]\n"
	if err := os.WriteFile(rulesPath, []byte(rules), 0644); err != nil {
		log.Fatalf("Failed to write rule file: %v", err)
	}

	inputPath := filepath.Join(tempDir, "input.txt")
	if err := os.WriteFile(inputPath, []byte("aaaa"), 0644); err != nil {
		log.Fatalf("Failed to write input file: %v", err)
	}

	obf, err := api.NewObfuscator(api.Options{RulesPath: rulesPath})
	if err != nil {
		log.Fatalf("Failed to create obfuscator: %v", err)
	}

	outputPath := filepath.Join(tempDir, "output", "hidden.txt")
	if err := obf.ObfuscateFileToFile(inputPath, outputPath); err != nil {
		log.Fatalf("Failed to obfuscate file: %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		log.Fatalf("Failed to read output file: %v", err)
	}
	fmt.Println(string(content))
	// Output: AbAb
}
