package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"shopmall/internal/config"
	"shopmall/internal/db"
	"shopmall/internal/importer"
	"shopmall/internal/repository/product"
	"shopmall/internal/repository/store"
)

func main() {
	var (
		filePath string
		storeID  string
	)
	flag.StringVar(&filePath, "file", "", "Path to store catalog CSV export")
	flag.StringVar(&storeID, "store", "", "Store id to import into")
	flag.Parse()

	if filePath == "" || storeID == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	// Fail early when the target store does not exist.
	if _, err := store.NewPostgres(pool).OwnerID(ctx, storeID); err != nil {
		logger.Fatalf("lookup store %q: %v", storeID, err)
	}

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, product.NewPostgres(pool, logger), storeID)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Imported %d products into store %s in %s\n", count, storeID, time.Since(start).Truncate(time.Millisecond))
}
