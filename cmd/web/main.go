package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"mocktest/internal/app"
	"mocktest/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("env file error: %v", err)
	}
	cfg := app.LoadConfig()

	if cfg.JWTSecret == app.DefaultJWTSecret && cfg.IsProduction() {
		log.Printf("warning: JWT_SECRET is not set, using the development secret")
	}

	driver, err := db.ParseDriver(cfg.DBDriver)
	if err != nil {
		log.Printf("config error: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	dbConn, err := db.OpenWithConfig(ctx, driver, cfg.DBDSN, db.Config{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifeMins) * time.Minute,
	})
	cancel()
	if err != nil {
		log.Printf("database error: %v", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.NewRouter(cfg, dbConn),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("mocktest api listening on %s (db=%s)", cfg.HTTPAddr, driver)
	if err := srv.ListenAndServe(); err != nil {
		log.Printf("server stopped: %v", err)
		os.Exit(1)
	}
}
