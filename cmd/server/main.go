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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/aurelia-jewels/aurelia/internal/catalog"
	"github.com/aurelia-jewels/aurelia/internal/config"
	"github.com/aurelia-jewels/aurelia/internal/es"
	"github.com/aurelia-jewels/aurelia/internal/guest"
	"github.com/aurelia-jewels/aurelia/internal/handlers"
	"github.com/aurelia-jewels/aurelia/internal/logging"
	"github.com/aurelia-jewels/aurelia/internal/mykafka"
	cartsvc "github.com/aurelia-jewels/aurelia/internal/service/cart"
	"github.com/aurelia-jewels/aurelia/internal/service/token"
	wishsvc "github.com/aurelia-jewels/aurelia/internal/service/wishlist"
	"github.com/aurelia-jewels/aurelia/internal/shopping"
	httpserver "github.com/aurelia-jewels/aurelia/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	prod, err := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	if err != nil {
		log.Fatal(err)
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}
	indexer := &es.Indexer{Client: esClient, Index: "product"}

	// Guests snapshot products either straight from the shared database
	// or over HTTP from a separately deployed catalog.
	var resolver catalog.Resolver = catalog.NewDBResolver(db)
	if configuration.CATALOG_URL != "" {
		resolver = catalog.NewClient(configuration.CATALOG_URL)
	}

	keeper := guest.NewSessionKeeper(db, logger)
	guestCart := guest.NewCartStore(db, resolver, logger)
	guestWishlist := guest.NewWishlistStore(db, resolver, logger)
	cartService := &cartsvc.Service{DB: db}
	wishlistService := &wishsvc.Service{DB: db}
	shop := shopping.NewFacade(guestCart, guestWishlist, cartService, wishlistService, prod, logger)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	deps := httpserver.Deps{
		DB:              db,
		AuthHandler:     &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: prod, Shop: shop},
		ProductHandler:  &handlers.ProductHandler{DB: db, Producer: prod, Indexer: indexer},
		CartHandler:     &handlers.CartHandler{Shop: shop, Producer: prod},
		WishlistHandler: &handlers.WishlistHandler{Shop: shop, Producer: prod},
		OrderHandler:    &handlers.OrderHandler{DB: db, Producer: prod},
		SearchHandler:   &handlers.SearchHandler{ES: esClient, Index: "product"},
		TokenService:    &token.TokenService{DB: db, RefreshSecret: refreshSecret, JWTSecret: jwtSecret},
		SessionKeeper:   keeper,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
