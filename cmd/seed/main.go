package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"creditwatch/adapters/postgres"
	"creditwatch/domain/dataset"
	"creditwatch/internal/migration"
	"creditwatch/internal/testkit"
)

// seed fills the prediction log with synthetic loan applications so the
// drift monitor has something to compare in a fresh environment
func main() {
	count := flag.Int("count", 500, "records to insert")
	shifted := flag.Bool("shifted", false, "generate a drifted population")
	flag.Parse()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	config := testkit.DefaultLoanConfig()
	if *shifted {
		config = testkit.ShiftedLoanConfig()
	}
	config.Count = *count
	config.Seed = time.Now().UnixNano()

	batch := testkit.NewLoanDataGenerator(config).Generate()
	predictions := testkit.Predictions(batch)
	labels := batch.BinaryColumn(dataset.ColumnLoanStatus)

	predictionLog := postgres.NewPredictionLog(db, 30*24*time.Hour, 24*time.Hour)

	inserted := 0
	for i, rec := range batch.Records() {
		features := dataset.Record{}
		for name, value := range rec {
			if !dataset.IsReservedColumn(name) {
				features[name] = value
			}
		}
		var actual *int
		if i < len(labels) {
			actual = &labels[i]
		}
		if err := predictionLog.Insert(ctx, features, predictions[i], actual); err != nil {
			log.Fatalf("Failed to insert record %d: %v", i, err)
		}
		inserted++
	}

	log.Printf("Seeded %d prediction log records (shifted=%v)", inserted, *shifted)
}
