package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/goldengate-middleware/pkg/app/errors"
	apphttp "github.com/chainsafe/goldengate-middleware/pkg/app/http"
	"github.com/chainsafe/goldengate-middleware/pkg/auth"
	"github.com/chainsafe/goldengate-middleware/pkg/db"
	"github.com/chainsafe/goldengate-middleware/pkg/intent"
)

// HTTP is the HTTP transport of Service
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers the read endpoints and, when validator is not nil,
// the admin endpoints behind bearer token authentication
func RegisterRoutes(r chi.Router, service Service, validator *auth.TokenValidator, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/intents", apphttp.HandleError(h.listIntents))
	r.Get("/intents/{chain}/{uid}", apphttp.HandleError(h.getIntent))
	r.Get("/intents/{chain}/{uid}/bids", apphttp.HandleError(h.listBids))
	r.Get("/submissions", apphttp.HandleError(h.listSubmissions))
	r.Get("/status", apphttp.HandleError(h.status))

	if validator == nil {
		return
	}
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireToken(validator))
		r.Post("/intents/{chain}/{uid}/accept/{bidChain}/{bidUid}", apphttp.HandleError(h.acceptBid))
		r.Post("/intents/{chain}/{uid}/reject", apphttp.HandleError(h.rejectBids))
	})
}

func (h *HTTP) listIntents(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()
	var q IntentQuery
	var err error

	if q.ChainID, err = uintParam(query.Get("chain"), "chain"); err != nil {
		return err
	}
	if q.DestinationChainID, err = uintParam(query.Get("destination"), "destination"); err != nil {
		return err
	}
	if q.Limit, err = limitParam(query.Get("limit")); err != nil {
		return err
	}
	if v := query.Get("state"); v != "" {
		for _, s := range strings.Split(v, ",") {
			state := intent.State(strings.TrimSpace(s))
			switch state {
			case intent.StateOpen, intent.StateBidAccepted, intent.StateFulfilled, intent.StateReturned:
				q.States = append(q.States, state)
			default:
				return apperrors.BadRequestError(nil, "invalid state "+s)
			}
		}
	}
	if v := query.Get("owner"); v != "" {
		if !common.IsHexAddress(v) {
			return apperrors.BadRequestError(nil, "invalid owner address")
		}
		owner := common.HexToAddress(v)
		q.Owner = &owner
	}

	intents, err := h.service.ListIntents(r.Context(), q)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, map[string]any{"intents": intents})
	return nil
}

func (h *HTTP) getIntent(w http.ResponseWriter, r *http.Request) error {
	key, err := intentKey(r)
	if err != nil {
		return err
	}
	in, err := h.service.GetIntent(r.Context(), key)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, in)
	return nil
}

func (h *HTTP) listBids(w http.ResponseWriter, r *http.Request) error {
	key, err := intentKey(r)
	if err != nil {
		return err
	}
	bids, err := h.service.ListBids(r.Context(), key)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, map[string]any{"bids": bids})
	return nil
}

func (h *HTTP) listSubmissions(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()
	var f db.SubmissionFilter
	var err error

	if f.ChainID, err = uintParam(query.Get("chain"), "chain"); err != nil {
		return err
	}
	if f.Limit, err = limitParam(query.Get("limit")); err != nil {
		return err
	}
	if v := query.Get("intent_uid"); v != "" {
		if _, _, err := intent.ParseKey("0", v); err != nil {
			return apperrors.BadRequestError(err, "invalid intent_uid")
		}
		f.IntentUID = v
	}
	if v := query.Get("status"); v != "" {
		status := db.SubmissionStatus(v)
		switch status {
		case db.SubmissionPending, db.SubmissionSubmitted, db.SubmissionReverted, db.SubmissionFailed:
			f.Status = status
		default:
			return apperrors.BadRequestError(nil, "invalid status "+v)
		}
	}

	subs, err := h.service.ListSubmissions(r.Context(), f)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, map[string]any{"submissions": subs})
	return nil
}

func (h *HTTP) status(w http.ResponseWriter, r *http.Request) error {
	st, err := h.service.Status(r.Context())
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, st)
	return nil
}

func (h *HTTP) acceptBid(w http.ResponseWriter, r *http.Request) error {
	key, err := intentKey(r)
	if err != nil {
		return err
	}
	chainID, uid, err := intent.ParseKey(chi.URLParam(r, "bidChain"), chi.URLParam(r, "bidUid"))
	if err != nil {
		return apperrors.BadRequestError(err, "invalid bid key")
	}
	bidKey := intent.NewBidKey(chainID, uid)

	subject, _ := auth.SubjectFromContext(r.Context())
	h.logger.Info("Admin accepting bid",
		zap.String("subject", subject),
		zap.String("intent", key.String()),
		zap.String("bid", bidKey.String()))

	resp, err := h.service.AcceptBid(r.Context(), key, bidKey)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) rejectBids(w http.ResponseWriter, r *http.Request) error {
	key, err := intentKey(r)
	if err != nil {
		return err
	}

	subject, _ := auth.SubjectFromContext(r.Context())
	h.logger.Info("Admin rejecting bids",
		zap.String("subject", subject),
		zap.String("intent", key.String()))

	resp, err := h.service.RejectBids(r.Context(), key)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func intentKey(r *http.Request) (intent.IntentKey, error) {
	chainID, uid, err := intent.ParseKey(chi.URLParam(r, "chain"), chi.URLParam(r, "uid"))
	if err != nil {
		return intent.IntentKey{}, apperrors.BadRequestError(err, "invalid intent key")
	}
	return intent.NewIntentKey(chainID, uid), nil
}

func uintParam(v, name string) (uint64, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, apperrors.BadRequestError(err, "invalid "+name)
	}
	return n, nil
}

func limitParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apperrors.BadRequestError(err, "invalid limit")
	}
	return n, nil
}
