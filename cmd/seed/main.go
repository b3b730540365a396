// Command seed loads the demo departments, users and balances into a
// SQLite database.
//
//	seed -db vacations.db          load if absent
//	seed -db vacations.db -reset   wipe first
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/warp/vacationflow/seed"
	"github.com/warp/vacationflow/store/sqlite"
)

func main() {
	dbPath := flag.String("db", "vacations.db", "SQLite database path")
	reset := flag.Bool("reset", false, "Delete all data before seeding")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if *reset {
		if err := store.Reset(ctx); err != nil {
			log.Fatalf("Failed to reset database: %v", err)
		}
	}

	res, err := seed.Load(ctx, store, time.Now())
	if err != nil {
		log.Fatalf("Failed to load demo data: %v", err)
	}
	if res.Skipped {
		log.Println("Demo data already present; use -reset to reload")
		return
	}
	log.Printf("Demo users share the password %q", seed.DemoPassword)
}
