package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"hindinews/pkg/config"
	"hindinews/pkg/content"
	"hindinews/pkg/feeds"
	"hindinews/pkg/logging"
	"hindinews/pkg/sources"
)

func main() {
	var (
		max    = flag.Int("max", 10, "Max candidates to print")
		enrich = flag.Bool("enrich", false, "Also scrape each article page for body and image")
		level  = flag.String("log-level", "warn", "Log level")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := logging.New(os.Stderr, *level)

	list, err := cfg.Sources()
	if err != nil {
		log.Fatalf("Failed to load sources: %v", err)
	}
	registry := sources.NewRegistry(list...)

	if flag.NArg() == 0 {
		fmt.Println("Usage: feedcheck [flags] <source-key>")
		fmt.Println()
		fmt.Println("Sources:")
		for _, src := range registry.Ordered() {
			fmt.Printf("  %-28s priority=%d kind=%s\n", src.Key, src.Priority, src.Kind)
		}
		os.Exit(2)
	}

	src, ok := registry.Get(flag.Arg(0))
	if !ok {
		log.Fatalf("Unknown source %q", flag.Arg(0))
	}

	ctx := context.Background()
	fetcher := feeds.NewFeedFetcher(feeds.Config{Timeout: cfg.FeedTimeout, ItemCapOverride: cfg.ItemCapOverride}, logger)

	start := time.Now()
	candidates := fetcher.Fetch(ctx, src)

	n := min(*max, len(candidates))
	fmt.Printf("Found %d candidates in %s. Showing first %d:\n\n", len(candidates), time.Since(start).Round(time.Millisecond), n)

	enricher := content.NewEnricher(cfg.BodyTimeout, cfg.ImageTimeout, logger)
	for i := 0; i < n; i++ {
		c := candidates[i]
		fmt.Printf("Candidate %d:\n", i+1)
		fmt.Printf("  Title: %s\n", c.Title)
		fmt.Printf("  URL: %s\n", c.URL)
		if !c.PublishedAt.IsZero() {
			fmt.Printf("  Published: %s\n", c.PublishedAt.Format(time.RFC3339))
		}
		if c.Image != "" {
			fmt.Printf("  Image: %s\n", c.Image)
		}
		if *enrich {
			body, image := enricher.Enrich(ctx, c.URL)
			fmt.Printf("  Scraped body: %d runes\n", len([]rune(body)))
			if image != "" {
				fmt.Printf("  Scraped image: %s\n", image)
			}
		}
		fmt.Println()
	}
}
