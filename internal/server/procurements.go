package server

import (
	"context"
	"net/http"
	"time"

	"tenderd/pkg/types"
)

func (s *Service) handleListProcurements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var filter types.ProcurementFilter
	if err := decoder.Decode(&filter, r.URL.Query()); err != nil {
		s.logger.WithError(err).Debug("failed to decode procurement filter")
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid query parameters"})
		return
	}

	procurements, err := s.catalog.Procurements(ctx, filter)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, procurements)
}

func (s *Service) handleGetProcurement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	procurement, err := s.catalog.Procurement(ctx, r.PathValue("procurementID"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, procurement)
}

func (s *Service) handleCreateProcurement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var input types.CreateProcurementInput
	if err := decodeBody(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	if input.CreatedBy == "" {
		input.CreatedBy = actorFromContext(r.Context()).ID
	}

	procurement, err := s.catalog.CreateProcurement(ctx, input)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, procurement)
}

func (s *Service) handleUpdateProcurement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var input types.UpdateProcurementInput
	if err := decodeBody(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	procurement, err := s.catalog.UpdateProcurement(ctx, r.PathValue("procurementID"), input)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, procurement)
}

func (s *Service) handleDeleteProcurement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	procurement, err := s.catalog.DeleteProcurement(ctx, r.PathValue("procurementID"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, procurement)
}

func (s *Service) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	documents, err := s.catalog.Documents(ctx, r.PathValue("procurementID"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, documents)
}

// handleAddDocument accepts either a JSON body referencing an external URL
// or a multipart upload whose file lands in the bucket first.
func (s *Service) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	procurementID := r.PathValue("procurementID")

	var input types.AddDocumentInput

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid multipart payload"})
			return
		}

		upload, err := s.storeUpload(ctx, r, "file", "procurements/"+procurementID)
		if err != nil {
			s.respondError(w, err)
			return
		}

		input.Name = r.FormValue("name")
		if input.Name == "" {
			input.Name = upload.filename
		}
		input.URL = upload.url
		input.MimeType = &upload.contentType
		input.Size = &upload.size
	} else {
		if err := decodeBody(r, &input); err != nil {
			s.respondError(w, err)
			return
		}
	}

	document, err := s.catalog.AddDocument(ctx, procurementID, input)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, document)
}

func (s *Service) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.catalog.RemoveDocument(ctx, r.PathValue("documentID")); err != nil {
		s.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
