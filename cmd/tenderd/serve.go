package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tenderd/internal/db"
	"tenderd/internal/mail"
	"tenderd/internal/procurement"
	"tenderd/internal/server"
	"tenderd/internal/storage"
	"tenderd/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}
	if config.AuthIssuerURL == "" {
		return fmt.Errorf("set AUTH_ISSUER_URL")
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	s3Client := s3.NewFromConfig(awsConfig)
	uploads := storage.NewS3Storage(s3Client, config.UploadBucket)

	var mailer procurement.Mailer
	if config.MailSender != "" {
		mailer = mail.NewSESMailer(sesv2.NewFromConfig(awsConfig), config.MailSender)
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	procurementRepo := store.NewProcurementRepository(pool)
	contractorRepo := store.NewContractorRepository(pool)
	bidRepo := store.NewBidRepository(pool)
	documentRepo := store.NewDocumentRepository(pool)

	catalog := procurement.NewCatalog(procurementRepo, documentRepo, contractorRepo, bidRepo, logger)
	registry := procurement.NewRegistry(contractorRepo, bidRepo, procurementRepo, logger)
	bids := procurement.NewBids(bidRepo, procurementRepo, contractorRepo, mailer, logger)

	jwkCache, err := jwk.NewCache(context.Background(), httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", config.AuthIssuerURL)

	err = jwkCache.Register(context.Background(), jwksURL)
	if err != nil {
		return fmt.Errorf("failed to register jwks url with cache: %w", err)
	}

	srv := server.New(
		config,
		logger,
		catalog,
		registry,
		bids,
		uploads,
		jwkCache,
		jwksURL,
	)

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
