package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/storefront/storefront-api/internal/infrastructure/db/mongo"
	"github.com/storefront/storefront-api/internal/pkg/config"
	"github.com/storefront/storefront-api/internal/seed"
)

// connectMongo opens the database described by cfg. The caller disconnects.
func connectMongo(ctx context.Context, cfg *config.Config) (*mongodriver.Client, *mongodriver.Database, error) {
	return mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
}

// storefront indexes
var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, log, err := boot(ctx)
		if err != nil {
			return err
		}

		client, db, err := connectMongo(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("indexes created")
		return nil
	},
}

// storefront seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the product catalog with the bundled fixture",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, log, err := boot(ctx)
		if err != nil {
			return err
		}

		products, err := seed.Products(time.Now().UTC())
		if err != nil {
			return err
		}

		client, db, err := connectMongo(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		if err := mongo.NewProductRepository(db).ReplaceAll(ctx, products); err != nil {
			return fmt.Errorf("seed products: %w", err)
		}
		log.Info().Int("products", len(products)).Msg("catalog seeded")
		return nil
	},
}
