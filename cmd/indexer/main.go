// Command indexer runs one snapshot rebuild against the live catalog and
// optionally resolves a query against it. Operational smoke tool; the bot
// itself rebuilds on demand.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tcg-price-bot/internal/catalog"
	"github.com/tcg-price-bot/internal/index"
	"github.com/tcg-price-bot/internal/normalizer"
)

func main() {
	baseURL := flag.String("base-url", "https://tcgcsv.com/tcgplayer", "catalog base URL")
	categoryID := flag.Int("category", 3, "catalog category id")
	limit := flag.Int("limit", 5, "max matches to print")
	flag.Parse()

	logger, err := zap.NewDevelopmentConfig().Build()
	if err != nil {
		log.Fatal("Cannot initialize logger: ", err)
	}
	defer logger.Sync()

	client := catalog.NewClient(catalog.Config{
		BaseURL:    *baseURL,
		CategoryID: *categoryID,
		Timeout:    30 * time.Second,
	}, logger)

	controller := index.NewSnapshotController(client, index.DefaultControllerConfig(), index.DefaultConfig(), logger)

	ctx := context.Background()
	snap, err := controller.ForceRefresh(ctx)
	if err != nil {
		logger.Fatal("Rebuild failed", zap.Error(err))
	}

	fmt.Printf("snapshot: %d products across %d groups, built at %s\n",
		len(snap.Products), snap.Groups, snap.BuiltAt.Format(time.RFC3339))

	query := strings.Join(flag.Args(), " ")
	if query == "" {
		return
	}

	textNormalizer, err := normalizer.NewTextNormalizer()
	if err != nil {
		logger.Fatal("Failed to build text normalizer", zap.Error(err))
	}

	for i, r := range snap.Index.Search(textNormalizer.NormalizeSearch(query), *limit) {
		fmt.Printf("%d. [%.3f] %s (%s) %s\n", i+1, r.Score, r.Item.Name, r.Item.GroupName, r.Item.PriceSummary())
	}
}
