package main

import (
	"context"
	"fmt"

	"tenderd/internal/db"
	"tenderd/internal/procurement"
	"tenderd/internal/seed"
	"tenderd/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with sample procurements and contractors",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		logger := logrus.New()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logger.Info("Connected to database")

		procurementRepo := store.NewProcurementRepository(pool)
		contractorRepo := store.NewContractorRepository(pool)
		bidRepo := store.NewBidRepository(pool)
		documentRepo := store.NewDocumentRepository(pool)

		catalog := procurement.NewCatalog(procurementRepo, documentRepo, contractorRepo, bidRepo, logger)
		registry := procurement.NewRegistry(contractorRepo, bidRepo, procurementRepo, logger)

		logger.Info("Seeding contractors...")
		if err := seed.SeedContractors(ctx, registry); err != nil {
			return fmt.Errorf("failed to seed contractors: %w", err)
		}

		logger.Info("Seeding procurements...")
		if err := seed.SeedProcurements(ctx, catalog); err != nil {
			return fmt.Errorf("failed to seed procurements: %w", err)
		}

		logger.Info("Seed data applied")

		return nil
	},
}
