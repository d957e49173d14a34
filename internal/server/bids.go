package server

import (
	"context"
	"net/http"
	"time"

	"tenderd/pkg/types"
)

// handleSubmitBid accepts JSON or a multipart submission carrying the
// proposal document, which is stored before the bid is recorded.
func (s *Service) handleSubmitBid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	procurementID := r.PathValue("procurementID")

	var input types.CreateBidInput

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid multipart payload"})
			return
		}

		if err := decoder.Decode(&input, r.MultipartForm.Value); err != nil {
			s.logger.WithError(err).Debug("failed to decode bid form")
			s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid form fields"})
			return
		}

		if _, _, err := r.FormFile("proposal"); err == nil {
			upload, err := s.storeUpload(ctx, r, "proposal", "proposals/"+procurementID)
			if err != nil {
				s.respondError(w, err)
				return
			}
			input.ProposalURL = &upload.url
		}
	} else {
		if err := decodeBody(r, &input); err != nil {
			s.respondError(w, err)
			return
		}
	}

	bid, err := s.bids.SubmitBid(ctx, procurementID, input)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, bid)
}

func (s *Service) handleUpdateBid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var input types.UpdateBidInput
	if err := decodeBody(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	bid, err := s.bids.UpdateBid(ctx, r.PathValue("bidID"), input)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, bid)
}

func (s *Service) handleWithdrawBid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	bid, err := s.bids.WithdrawBid(ctx, r.PathValue("bidID"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, bid)
}

func (s *Service) handleGetBid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	bid, err := s.bids.Bid(ctx, r.PathValue("bidID"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, bid)
}

func (s *Service) handleListBids(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var filter types.BidFilter
	if err := decoder.Decode(&filter, r.URL.Query()); err != nil {
		s.logger.WithError(err).Debug("failed to decode bid filter")
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid query parameters"})
		return
	}

	bids, err := s.bids.BidsByProcurement(ctx, r.PathValue("procurementID"), filter)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, bids)
}

func (s *Service) handleChangeBidStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var input types.ChangeBidStatusInput
	if err := decodeBody(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	actor := actorFromContext(r.Context())

	bid, err := s.bids.ChangeBidStatus(ctx, r.PathValue("bidID"), actor, input)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, bid)
}
