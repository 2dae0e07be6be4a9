package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schemadesk/engine/internal/explorer"
	"github.com/schemadesk/engine/internal/filetree"
	"github.com/schemadesk/engine/internal/schemafield"
	"github.com/schemadesk/engine/internal/storage"
)

// sampleFile is one seeded data file and the schema it is edited with
type sampleFile struct {
	folder string
	name   string
	schema func() *schemafield.Field
}

func main() {
	// Project and state directories default to the ones the server uses
	projectDir := "./project"
	if len(os.Args) > 1 {
		projectDir = os.Args[1]
	}
	dataDir := "./data"
	if len(os.Args) > 2 {
		dataDir = os.Args[2]
	}

	ctx := context.Background()

	samples := []sampleFile{
		{"pages", "home.json", pageSchema},
		{"pages", "about.json", pageSchema},
		{"settings", "site.json", siteSchema},
		{"navigation", "menu.json", menuSchema},
	}

	for _, s := range samples {
		if err := os.MkdirAll(filepath.Join(projectDir, s.folder), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create folder %s: %v\n", s.folder, err)
			os.Exit(1)
		}
	}

	backend, err := storage.NewBuilder().
		WithDataDir(dataDir).
		WithProjectRoot(projectDir).
		BuildAndStart(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build storage: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = backend.Stop(ctx) }()

	files := backend.Files()
	engine, err := explorer.New(explorer.Options{
		Base:      files.Root(),
		Gateway:   files,
		State:     backend.State(),
		Recents:   backend.Recents(),
		Validator: schemafield.NewValidator(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create engine: %v\n", err)
		os.Exit(1)
	}
	if _, err := engine.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load project: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Creating files...")
	for _, s := range samples {
		target := filetree.JoinPath(s.folder, s.name)
		if _, ok := filetree.FindFile(engine.Tree(), target); ok {
			fmt.Printf("File already exists: %s\n", target)
			continue
		}

		res, err := engine.NewFile(ctx, s.folder)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create file in %q: %v\n", s.folder, err)
			continue
		}
		if _, err := engine.RenameFile(ctx, res.Node.CurrentPath, target); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to rename %s to %s: %v\n", res.Node.CurrentPath, target, err)
			continue
		}

		schema := s.schema()
		config, err := schemafield.Encode(schema)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode schema for %s: %v\n", target, err)
			continue
		}
		if err := files.WriteFile(ctx, filetree.ConfigPath(target), config); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config for %s: %v\n", target, err)
			continue
		}

		doc, err := engine.DefaultDocument(ctx, target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to build document for %s: %v\n", target, err)
			continue
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode document for %s: %v\n", target, err)
			continue
		}
		if _, err := engine.SaveData(ctx, target, data); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save %s: %v\n", target, err)
			continue
		}

		fmt.Printf("Created file: %s\n", target)
	}

	if _, err := engine.SetCurrentPath(ctx, filetree.JoinPath("pages", "home.json")); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open pages/home.json: %v\n", err)
	}

	fmt.Printf("\nDone! Start the server with: schemadesk serve --project %s --data-dir %s\n", projectDir, dataDir)
}

func pageSchema() *schemafield.Field {
	page := schemafield.NewObject()
	must(page.AddField("Title", "title", schemafield.NewString().Setup(map[string]any{
		"defaultValue": "Untitled page",
		"maxLen":       60,
	})))
	must(page.AddField("Body", "body", schemafield.NewString().Setup(map[string]any{
		"type":   "multiline",
		"maxLen": 2000,
	})))
	must(page.AddField("Published", "published", schemafield.NewBoolean()))
	must(page.AddField("Publish date", "publishedAt", schemafield.NewString().Setup(map[string]any{
		"defaultValue": "2026-01-01",
		"enableWhen":   "published == true",
	})))
	return page
}

func siteSchema() *schemafield.Field {
	site := schemafield.NewObject()
	must(site.AddField("Site name", "name", schemafield.NewString().Setup(map[string]any{
		"defaultValue": "Example",
	})))
	must(site.AddField("Theme", "theme", schemafield.NewSelect().Setup(map[string]any{
		"options":      []any{"light", "dark"},
		"defaultValue": "light",
	})))
	must(site.AddField("Items per page", "pageSize", schemafield.NewNumber().Setup(map[string]any{
		"defaultValue": 10,
	})))
	must(site.AddField("Logo", "logo", schemafield.NewFile()))
	return site
}

func menuSchema() *schemafield.Field {
	item := schemafield.NewObject()
	must(item.AddField("Label", "label", schemafield.NewString().Setup(map[string]any{
		"defaultValue": "Home",
	})))
	must(item.AddField("Link", "href", schemafield.NewString().Setup(map[string]any{
		"defaultValue": "/",
	})))
	return schemafield.NewArray(item)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
