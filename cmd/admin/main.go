package main

import (
	"bufio"
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/fnpsdn/netinv/internal/admincli"
	"github.com/fnpsdn/netinv/internal/server/config"
	"github.com/fnpsdn/netinv/internal/server/repositories/repomanager"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)
	if err := admincli.Bootstrap(ctx, db, rm, reader, os.Stdout); err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

}
