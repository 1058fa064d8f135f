package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/sailwallet/txengine/internal/coinselect"
	"github.com/sailwallet/txengine/internal/engine"
	"github.com/sailwallet/txengine/internal/metrics"
	"github.com/sailwallet/txengine/internal/money"
	"github.com/sailwallet/txengine/internal/txstore"
)

func (s *Server) createTransaction(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "failed to read body"})
	}
	if er := validatePayload(s.schema, raw); er != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: er.Error()})
	}

	var req createTransactionRequest
	if er := json.Unmarshal(raw, &req); er != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: er.Error()})
	}

	source, err := parseAccount(req.Source)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "source: " + err.Error()})
	}
	target, err := parseAccount(req.Target)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "target: " + err.Error()})
	}

	deps := s.deps
	if req.Fiat != "" {
		fiat, er := money.FiatFromCode(req.Fiat)
		if er != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: er.Error()})
		}
		deps.Fiat = fiat
	}

	eng, err := engine.New(source, target, engine.Action(req.Action), deps)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	flow := engine.NewFlow(eng)
	pt, err := flow.Initialize(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	}

	id := uuid.New()
	s.flows.put(id, &flowEntry{
		flow:      flow,
		source:    source,
		target:    target,
		action:    engine.Action(req.Action),
		createdAt: time.Now(),
	})

	s.logger.WithFields(logrus.Fields{
		"flow_id": id,
		"action":  req.Action,
		"source":  req.Source.Kind,
		"target":  req.Target.Kind,
	}).Info("created transaction flow")

	return c.JSON(http.StatusCreated, toTransactionResponse(id.String(), flow.State(), pt, ""))
}

func (s *Server) getTransaction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid flow id")
	}

	entry, err := s.flows.get(id)
	if err != nil {
		return s.getRecorded(c, id)
	}

	var txHash string
	if res, ok := entry.flow.Result(); ok {
		txHash = res.TxHash
	}
	return c.JSON(http.StatusOK, toTransactionResponse(id.String(), entry.flow.State(), entry.flow.PendingTransaction(), txHash))
}

// getRecorded serves executed transactions whose in-memory flow is
// gone from the persistent store.
func (s *Server) getRecorded(c echo.Context, id uuid.UUID) error {
	if s.store == nil {
		return echo.NewHTTPError(http.StatusNotFound, "transaction not found")
	}
	rec, err := s.store.GetByID(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "transaction not found")
	}
	return c.JSON(http.StatusOK, toRecordResponse(rec))
}

func (s *Server) updateAmount(c echo.Context) error {
	entry, id, err := s.lookup(c)
	if err != nil {
		return err
	}

	var req updateAmountRequest
	if er := c.Bind(&req); er != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: er.Error()})
	}

	amount, err := parseAmount(req.Amount, entry.source.Currency)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	pt, err := entry.flow.UpdateAmount(c.Request().Context(), amount)
	if err != nil {
		return s.flowError(c, id, entry, pt, err)
	}
	return c.JSON(http.StatusOK, toTransactionResponse(id.String(), entry.flow.State(), pt, ""))
}

func (s *Server) updateFeeLevel(c echo.Context) error {
	entry, id, err := s.lookup(c)
	if err != nil {
		return err
	}

	var req updateFeeLevelRequest
	if er := c.Bind(&req); er != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: er.Error()})
	}

	var custom *money.Value
	if req.CustomAmount != "" {
		v, er := parseAmount(req.CustomAmount, entry.source.Currency)
		if er != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: er.Error()})
		}
		custom = &v
	}

	pt, err := entry.flow.UpdateFeeLevel(c.Request().Context(), engine.FeeLevel(req.Level), custom)
	if err != nil {
		return s.flowError(c, id, entry, pt, err)
	}
	return c.JSON(http.StatusOK, toTransactionResponse(id.String(), entry.flow.State(), pt, ""))
}

func (s *Server) validateTransaction(c echo.Context) error {
	entry, id, err := s.lookup(c)
	if err != nil {
		return err
	}

	if er := entry.flow.Validate(c.Request().Context()); er != nil {
		return s.flowError(c, id, entry, entry.flow.PendingTransaction(), er)
	}
	return c.JSON(http.StatusOK, toTransactionResponse(id.String(), entry.flow.State(), entry.flow.PendingTransaction(), ""))
}

func (s *Server) executeTransaction(c echo.Context) error {
	entry, id, err := s.lookup(c)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := entry.flow.Execute(c.Request().Context())
	if err != nil {
		metrics.RecordExecution(string(entry.action), "failed", time.Since(start))
		return s.flowError(c, id, entry, entry.flow.PendingTransaction(), err)
	}
	metrics.RecordExecution(string(entry.action), "completed", time.Since(start))

	s.record(c, id, entry, res)

	return c.JSON(http.StatusOK, toTransactionResponse(id.String(), entry.flow.State(), entry.flow.PendingTransaction(), res.TxHash))
}

func (s *Server) deleteTransaction(c echo.Context) error {
	_, id, err := s.lookup(c)
	if err != nil {
		return err
	}
	s.flows.delete(id)
	return c.NoContent(http.StatusNoContent)
}

// record persists the executed transaction and, for on-chain results,
// schedules confirmation tracking. Failures here are logged, not
// surfaced: the money already moved.
func (s *Server) record(c echo.Context, id uuid.UUID, entry *flowEntry, res engine.TransactionResult) {
	if s.store == nil {
		return
	}

	ctx := c.Request().Context()
	pt := entry.flow.PendingTransaction()

	rec := txstore.Record{
		ID:       id,
		Chain:    entry.source.Chain,
		Action:   string(entry.action),
		TxHash:   res.TxHash,
		Amount:   res.Amount.Amount(),
		Currency: res.Amount.Currency().Code,
		Fee:      pt.FeeAmount.Amount(),
		Status:   txstore.StatusBroadcast,
	}
	if !res.IsHashed() {
		rec.Status = txstore.StatusConfirmed
	}
	if err := s.store.Create(ctx, rec); err != nil {
		s.logger.WithError(err).Error("failed to record transaction")
		return
	}

	if res.IsHashed() && s.tracks != nil {
		err := s.tracks.Track(ctx, trackRequest(id, entry, res))
		if err != nil {
			s.logger.WithError(err).Error("failed to schedule tracking")
		}
	}
}

// lookup resolves the flow id path param to a registry entry.
func (s *Server) lookup(c echo.Context) (*flowEntry, uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid flow id")
	}
	entry, err := s.flows.get(id)
	if err != nil {
		return nil, uuid.Nil, echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return entry, id, nil
}

// flowError maps engine errors to HTTP responses. Validation and coin
// selection errors are recoverable user input and answer 422 with a
// code; superseded operations return 409.
func (s *Server) flowError(c echo.Context, id uuid.UUID, entry *flowEntry, pt engine.PendingTransaction, err error) error {
	if ve, ok := engine.AsValidation(err); ok {
		metrics.RecordValidationFailure(string(entry.action), string(ve.Code))
		bound := toValuePayload(ve.Bound)
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{
			Error: ve.Error(),
			Code:  string(ve.Code),
			Bound: &bound,
		})
	}

	switch {
	case errors.Is(err, engine.ErrSuperseded):
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, engine.ErrQuoteExpired), errors.Is(err, engine.ErrNoQuote):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, coinselect.ErrInsufficientFunds):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "insufficient_funds"})
	case errors.Is(err, coinselect.ErrInvalidAmount):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "invalid_amount"})
	case errors.Is(err, coinselect.ErrEmptyCandidateSet):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "empty_candidate_set"})
	}

	s.logger.WithError(err).WithField("flow_id", id).Error("flow operation failed")
	return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
}
