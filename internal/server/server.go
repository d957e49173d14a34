package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tenderd/internal/procurement"
	"tenderd/internal/storage"
	"tenderd/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type Service struct {
	logger   *logrus.Logger
	config   *types.Config
	catalog  *procurement.Catalog
	registry *procurement.Registry
	bids     *procurement.Bids
	uploads  *storage.S3Storage

	jwksCache *jwk.Cache
	jwksURL   string

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	catalog *procurement.Catalog,
	registry *procurement.Registry,
	bids *procurement.Bids,
	uploads *storage.S3Storage,
	jwkCache *jwk.Cache,
	jwksURL string,
) *Service {
	mux := flow.New()

	s := &Service{
		logger:   logger,
		config:   config,
		catalog:  catalog,
		registry: registry,
		bids:     bids,
		uploads:  uploads,

		jwksCache: jwkCache,
		jwksURL:   jwksURL,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	// Public surface: browsing notices and the bidder flow.
	r.HandleFunc("/procurements", s.handleListProcurements, http.MethodGet)
	r.HandleFunc("/procurements/:procurementID", s.handleGetProcurement, http.MethodGet)
	r.HandleFunc("/procurements/:procurementID/documents", s.handleListDocuments, http.MethodGet)

	r.HandleFunc("/procurements/:procurementID/bids", s.handleSubmitBid, http.MethodPost)
	r.HandleFunc("/bids/:bidID", s.handleUpdateBid, http.MethodPatch)
	r.HandleFunc("/bids/:bidID/withdraw", s.handleWithdrawBid, http.MethodPost)

	// Admin surface.
	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/procurements", s.handleCreateProcurement, http.MethodPost)
		r.HandleFunc("/procurements/:procurementID", s.handleUpdateProcurement, http.MethodPatch)
		r.HandleFunc("/procurements/:procurementID", s.handleDeleteProcurement, http.MethodDelete)
		r.HandleFunc("/procurements/:procurementID/documents", s.handleAddDocument, http.MethodPost)
		r.HandleFunc("/documents/:documentID", s.handleRemoveDocument, http.MethodDelete)

		r.HandleFunc("/procurements/:procurementID/bids", s.handleListBids, http.MethodGet)
		r.HandleFunc("/bids/:bidID", s.handleGetBid, http.MethodGet)
		r.HandleFunc("/bids/:bidID/status", s.handleChangeBidStatus, http.MethodPost)

		r.HandleFunc("/contractors", s.handleListContractors, http.MethodGet)
		r.HandleFunc("/contractors", s.handleCreateContractor, http.MethodPost)
		r.HandleFunc("/contractors/import", s.handleImportContractors, http.MethodPost)
		r.HandleFunc("/contractors/number/:contractorNo", s.handleGetContractorByNumber, http.MethodGet)
		r.HandleFunc("/contractors/:contractorID", s.handleGetContractor, http.MethodGet)
		r.HandleFunc("/contractors/:contractorID", s.handleUpdateContractor, http.MethodPatch)
		r.HandleFunc("/contractors/:contractorID/bids", s.handleContractorBids, http.MethodGet)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
