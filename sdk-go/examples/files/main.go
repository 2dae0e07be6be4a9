package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	schemadesk "github.com/schemadesk/engine/sdk-go"
)

func main() {
	addr := "localhost:8080"
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}

	ctx := context.Background()

	c, err := schemadesk.NewClient(addr)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer c.Close()

	if err := c.HealthCheck(ctx); err != nil {
		log.Fatalf("Server not healthy: %v", err)
	}

	// An empty parent creates an untitled scratch file that only lives in the session
	node, err := c.Files.Create(ctx, "")
	if err != nil {
		log.Fatalf("Failed to create file: %v", err)
	}
	fmt.Printf("Created %s\n", node.CurrentPath)
	if _, err := c.Session.Close(ctx, node.CurrentPath); err != nil {
		log.Printf("Failed to close %s: %v", node.CurrentPath, err)
	}

	tree, err := c.Files.Tree(ctx)
	if err != nil {
		log.Fatalf("Failed to read tree: %v", err)
	}
	for _, child := range tree.Children {
		if !child.IsFile() {
			continue
		}

		defaults, err := c.Files.Defaults(ctx, child.CurrentPath)
		if err != nil {
			log.Printf("Failed to read defaults for %s: %v", child.CurrentPath, err)
			continue
		}
		data, err := c.Files.Data(ctx, child.CurrentPath)
		if err != nil {
			log.Printf("Failed to read %s: %v", child.CurrentPath, err)
			continue
		}

		var items []json.RawMessage
		if json.Unmarshal(data, &items) == nil {
			fmt.Printf("%s: %d items, new items start as %s\n", child.CurrentPath, len(items), defaults)
		} else {
			fmt.Printf("%s: %s\n", child.CurrentPath, data)
		}
	}
}
