package httpapi

import (
	"net/http"

	"github.com/pankajredekar/stockroom/internal/inventory"
	"github.com/pankajredekar/stockroom/internal/service"
)

type scanRequest struct {
	Code     string `json:"code"`
	Action   string `json:"action"`
	Quantity *int   `json:"quantity"`
}

type adjustRequest struct {
	Action   string `json:"action"`
	Quantity *int   `json:"quantity"`
}

// ResultResponse is the body returned by scan and adjust.
type ResultResponse struct {
	service.Result
	AskAction bool `json:"ask_action,omitempty"`
}

func outcomeStatus(o inventory.Outcome) int {
	switch o {
	case inventory.OutcomeSuccess, inventory.OutcomeAwaitingAction:
		return http.StatusOK
	case inventory.OutcomeNotFound:
		return http.StatusNotFound
	case inventory.OutcomeInsufficientStock:
		return http.StatusConflict
	case inventory.OutcomeInvalidAction, inventory.OutcomeInvalidQuantity:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, res service.Result, err error) {
	status := outcomeStatus(res.Outcome)
	if status == http.StatusInternalServerError {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, status, ResultResponse{
		Result:    res,
		AskAction: res.Outcome == inventory.OutcomeAwaitingAction,
	})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	res, err := s.deps.Stock.Scan(r.Context(), service.ScanRequest{
		Code:     req.Code,
		Action:   req.Action,
		Quantity: req.Quantity,
	})
	s.writeResult(w, r, res, err)
}

func (s *Server) handleAdjust(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req adjustRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := s.deps.Stock.Adjust(r.Context(), service.AdjustRequest{
		ProductID: id,
		Action:    req.Action,
		Quantity:  req.Quantity,
	})
	s.writeResult(w, r, res, err)
}
