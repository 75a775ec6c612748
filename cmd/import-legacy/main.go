package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/dpshade/quick-hb/internal/errors"
	"github.com/dpshade/quick-hb/internal/service"
	"github.com/dpshade/quick-hb/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: import-legacy <data.json>")
		os.Exit(1)
	}
	path := os.Args[1]

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		err = errors.FileNotFoundError(path, err)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.NewCLIErrorHandler(false).HandleError(err))
		os.Exit(1)
	}

	records, err := storage.DecodeLegacyJSON(bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error parsing %s: %v\n", path, err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Println("No records found - nothing to import")
		return
	}

	svc, err := service.NewService()
	if err != nil {
		fmt.Printf("Error initializing service: %v\n", err)
		os.Exit(1)
	}
	if err := svc.InitLibrary(); err != nil {
		fmt.Printf("Error initializing library: %v\n", err)
		os.Exit(1)
	}

	existing, err := svc.ListRecords()
	if err != nil {
		fmt.Printf("Error listing records: %v\n", err)
		os.Exit(1)
	}

	replaced := 0
	fmt.Printf("Found %d records in %s:\n", len(records), path)
	for _, rec := range records {
		marker := " "
		if _, ok := existing.ByID(rec.ID); ok {
			marker = "*"
			replaced++
		}
		fmt.Printf(" %s %-24s %-16s %s\n", marker, rec.ID, rec.Section, rec.Title())
	}
	if replaced > 0 {
		fmt.Printf("\n%d records marked with * already exist and will be overwritten.\n", replaced)
	}

	fmt.Printf("\nImport into %s? (y/N): ", svc.BaseDir())
	var response string
	fmt.Scanln(&response)

	if strings.ToLower(response) != "y" {
		fmt.Println("Import cancelled")
		return
	}

	n, err := svc.Import(bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error importing: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Import completed! %d records written\n", n)
}
