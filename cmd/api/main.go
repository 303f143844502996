package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shinyyama/realestate-backend/internal/config"
	"github.com/shinyyama/realestate-backend/internal/db"
	"github.com/shinyyama/realestate-backend/internal/gateway"
	appmw "github.com/shinyyama/realestate-backend/internal/middleware"
	"github.com/shinyyama/realestate-backend/internal/server"
	"github.com/shinyyama/realestate-backend/internal/storage"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("auto migrate error: %v", err)
	}

	var verifier appmw.TokenVerifier
	if cfg.FirebaseProjectID != "" {
		verifier, err = appmw.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.GoogleCredentialsFile)
		if err != nil {
			log.Fatalf("failed to init firebase auth: %v", err)
		}
		log.Printf("auth: firebase project=%s", cfg.FirebaseProjectID)
	} else {
		verifier = appmw.NewJWTVerifier(cfg.JWTSecret)
		log.Printf("auth: jwt hs256")
	}

	var images storage.ImageStore
	if cfg.StorageBucket != "" {
		gcs, err := storage.NewGCS(ctx, cfg.StorageBucket, cfg.GoogleCredentialsFile)
		if err != nil {
			log.Fatalf("storage init error: %v", err)
		}
		defer gcs.Close()
		images = gcs
	} else {
		log.Printf("STORAGE_BUCKET not set; listing image uploads disabled")
	}

	gw := gateway.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.Currency, cfg.GatewayTimeout)
	srv := server.New(cfg, conn, gw, verifier, images)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting server on %s", addr)
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server stopped: %v", err)
		}
	case <-ctx.Done():
		log.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
}
