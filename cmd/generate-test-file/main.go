package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pstuifzand/jsontree/internal/model"
	"github.com/pstuifzand/jsontree/internal/storage"
)

func main() {
	numItems := flag.Int("items", 1000, "Number of items to generate")
	output := flag.String("output", "large_test.json", "Output file path")
	depth := flag.Int("depth", 3, "Maximum nesting depth")
	flag.Parse()

	if *numItems < 1 {
		fmt.Fprintf(os.Stderr, "items must be at least 1\n")
		os.Exit(1)
	}

	doc, err := generateDocument(*numItems, *depth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build document: %v\n", err)
		os.Exit(1)
	}

	data, err := doc.Save()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode document: %v\n", err)
		os.Exit(1)
	}

	if err := storage.NewJSONStore(*output).Write(data); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated document with %d items\n", len(doc.AllItems()))
	fmt.Printf("Saved to: %s\n", *output)
	fmt.Printf("File size: %.2f MB\n", float64(len(data))/(1024*1024))
}

func generateDocument(totalItems int, maxDepth int) (*model.Document, error) {
	doc := model.NewDocument()
	remaining := totalItems
	for remaining > 0 {
		item := generateItemRecursive(&remaining, 0, maxDepth)
		if err := doc.AppendChild(nil, item); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func generateItemRecursive(remaining *int, currentDepth int, maxDepth int) *model.Item {
	index := *remaining
	*remaining--

	// Items with room below them become containers
	if currentDepth < maxDepth && *remaining > 0 {
		dt := model.ContainerTypes[index%len(model.ContainerTypes)]
		item := model.NewItem(generateTitle(index), dt).WithVarID(fmt.Sprintf("c%d", index))
		numChildren := getChildCount(*remaining, maxDepth-currentDepth)
		for i := 0; i < numChildren && *remaining > 0; i++ {
			item.WithChildren(generateItemRecursive(remaining, currentDepth+1, maxDepth))
		}
		return item
	}

	dt := model.LeafTypes[index%len(model.LeafTypes)]
	item := model.NewItem(generateTitle(index), dt).
		WithVarID(fmt.Sprintf("v%d", index)).
		WithSources(fmt.Sprintf("src.%s.%d", generateDescription(index), index))
	if index%4 == 0 {
		item.WithMetadata(map[string]string{"generated": "true", "index": fmt.Sprint(index)})
	}
	return item
}

func getChildCount(remaining int, depthLeft int) int {
	if depthLeft == 1 {
		if remaining > 10 {
			return 5
		}
		return max(remaining/2, 1)
	}
	if remaining > 50 {
		return 3
	}
	return 2
}

func generateTitle(index int) string {
	categories := []string{
		"Customer", "Order", "Invoice", "Address", "Payment",
		"Shipment", "Product", "Contact", "Account", "Contract",
	}

	category := categories[index%len(categories)]
	return fmt.Sprintf("%s %d", category, index)
}

func generateDescription(index int) string {
	descriptions := []string{
		"crm", "erp", "billing", "warehouse", "ledger", "portal",
	}

	return descriptions[index%len(descriptions)]
}
