package server

import (
	"context"
	"net/http"
	"time"

	"tenderd/pkg/types"
)

func (s *Service) handleListContractors(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var filter types.ContractorFilter
	if err := decoder.Decode(&filter, r.URL.Query()); err != nil {
		s.logger.WithError(err).Debug("failed to decode contractor filter")
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid query parameters"})
		return
	}

	contractors, err := s.registry.Contractors(ctx, filter)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, contractors)
}

func (s *Service) handleCreateContractor(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var input types.CreateContractorInput
	if err := decodeBody(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	contractor, err := s.registry.CreateContractor(ctx, input)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, contractor)
}

func (s *Service) handleGetContractor(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	contractor, err := s.registry.Contractor(ctx, r.PathValue("contractorID"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, contractor)
}

func (s *Service) handleGetContractorByNumber(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	contractor, err := s.registry.ContractorByNumber(ctx, r.PathValue("contractorNo"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, contractor)
}

func (s *Service) handleUpdateContractor(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var input types.UpdateContractorInput
	if err := decodeBody(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	contractor, err := s.registry.UpdateContractor(ctx, r.PathValue("contractorID"), input)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, contractor)
}

func (s *Service) handleContractorBids(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	bids, err := s.registry.ContractorBids(ctx, r.PathValue("contractorID"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, bids)
}

// handleImportContractors takes a CSV upload (multipart field "file") or a
// raw CSV body and reports per-row outcomes.
func (s *Service) handleImportContractors(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	reader := r.Body
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid multipart payload"})
			return
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "missing file upload"})
			return
		}
		defer file.Close()
		reader = file
	}

	rows, err := readImportRows(reader)
	if err != nil {
		s.respondError(w, err)
		return
	}

	report, err := s.registry.Import(ctx, rows)
	if err != nil {
		s.respondError(w, err)
		return
	}

	status := http.StatusOK
	if len(report.Errors) > 0 {
		// Partial failure: the batch finished but some rows were rejected.
		status = http.StatusMultiStatus
	}

	s.respondJSON(w, status, report)
}
