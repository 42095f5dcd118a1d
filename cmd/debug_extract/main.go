package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"forum-importer/core/config"
	"forum-importer/core/reconcile"
	"forum-importer/core/storage"
	"forum-importer/feature/zendesk/extract"
	"forum-importer/feature/zendesk/importer"

	"go.uber.org/zap"
)

// printWriter prints staged values instead of storing them.
type printWriter struct {
	enc *json.Encoder
}

func (w printWriter) Insert(_ context.Context, _ reconcile.Kind, values map[string]any) (bool, error) {
	return true, w.enc.Encode(values)
}

func main() {
	kind := reconcile.KindUser
	if len(os.Args) > 1 {
		kind = reconcile.Kind(os.Args[1])
	}
	src, ok := extract.SourceFor(kind)
	if !ok {
		log.Fatalf("unknown kind %q (user, forum, entry, post)", kind)
	}

	// Load config
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	var client storage.Client
	if cfg.Import.Source == importer.SourceBucket {
		client, err = storage.NewClient(cfg.Storage)
		if err != nil {
			log.Fatal(err)
		}
	}

	ctx := context.Background()
	reader, err := importer.OpenArchive(ctx, cfg.Import, client, cfg.Storage.Bucket)
	if err != nil {
		log.Fatal(err)
	}

	rc, err := reader.Open(ctx, src.File)
	if err != nil {
		log.Fatal(err)
	}
	defer rc.Close()

	doc, err := extract.Parse(rc)
	if err != nil {
		log.Fatal(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	x := extract.NewExtractor(printWriter{enc: enc}, reconcile.Discard{}, zap.NewNop())

	n, err := x.Extract(ctx, doc, src.EntryTag, src.Kind, src.Fields, src.Extra)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Fprintf(os.Stderr, "%s: %d records\n", src.File, n)
}
