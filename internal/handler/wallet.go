package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tide-labs/timevault-api/internal/common"
	"github.com/tide-labs/timevault-api/internal/config"
	"github.com/tide-labs/timevault-api/internal/crypto"
	"github.com/tide-labs/timevault-api/internal/engine"
	"github.com/tide-labs/timevault-api/internal/model"
	"github.com/tide-labs/timevault-api/internal/session"
	"github.com/tide-labs/timevault-api/internal/store"

	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
)

// WalletHandler orchestrates login, wallet creation and wallet execution
// around the external engine and the wallet state store.
type WalletHandler struct {
	sessions *session.Carrier
	store    store.Store
	engine   engine.Engine
	locks    *store.KeyedMutex
	salt     string
	auxKey   [32]byte
	// echoState returns the wallet state blob to the client after create,
	// for client-side backup in single-tenant (file backend) deployments
	echoState bool
	log       zerolog.Logger
}

// NewWalletHandler creates a new WalletHandler with config values
func NewWalletHandler(sessions *session.Carrier, st store.Store, eng engine.Engine, echoState bool, log zerolog.Logger) (*WalletHandler, error) {
	auxKey, err := common.ParseAuxKey(config.GetAuxKey())
	if err != nil {
		return nil, err
	}

	return &WalletHandler{
		sessions:  sessions,
		store:     st,
		engine:    eng,
		locks:     store.NewKeyedMutex(),
		salt:      config.GetSalt(),
		auxKey:    auxKey,
		echoState: echoState,
		log:       log,
	}, nil
}

// Login handles POST /login
// @Summary      Authenticate
// @Description  Derives the wallet seed from credentials and starts a cookie session
// @Tags         wallet
// @Accept       json
// @Param        request  body  model.AuthRequest  true  "Credentials"
// @Success      200  {string}  string
// @Router       /login [post]
func (h *WalletHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	seed := crypto.DeriveSeed(req.Username, req.Password, h.salt)

	if err := h.sessions.Emit(w, session.Identity{Username: req.Username, Seed: seed}); err != nil {
		h.log.Error().Err(err).Msg("failed to emit session cookies")
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("User logged in, session started."))
}

// Create handles POST /create
// @Summary      Create wallet
// @Description  Builds a time-locked wallet over the validity window and persists its state
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.CreateRequest  true  "Creation parameters"
// @Success      200      {object}  model.CreateResponse
// @Failure      401      {object}  model.ErrorResponse
// @Router       /create [post]
func (h *WalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.sessions.Authorize(r, func(username, seed string) error {
		h.create(r.Context(), w, &req, username, seed)
		return nil
	})
	if errors.Is(err, session.ErrUnauthorized) {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
	}
}

func (h *WalletHandler) create(ctx context.Context, w http.ResponseWriter, req *model.CreateRequest, username, seed string) {
	roundPubkey, err := common.DecodeRoundPubkey(req.RoundPubkey)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	schedule := common.BlockSchedule(req.CurrentBlock, req.Validity)

	h.locks.Lock(username)
	defer h.locks.Unlock(username)

	payload, state, err := h.engine.Create(ctx, username, seed, h.auxKey, schedule, roundPubkey)
	if err != nil {
		h.log.Error().Err(err).Str("username", username).Msg("engine create failed")
		writeError(w, http.StatusInternalServerError, engineMessage(err))
		return
	}

	// Creation must not be reported successful unless the state is durable.
	if err := h.store.Write(ctx, username, state); err != nil {
		h.log.Error().Err(err).Str("username", username).Msg("failed to persist wallet state")
		writeError(w, http.StatusInternalServerError, "failed to persist wallet state")
		return
	}

	resp := model.CreateResponse{
		Username: username,
		Payload:  payload,
		QR:       walletQR(username, h.log),
	}
	if h.echoState {
		resp.State = state
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// Execute handles POST /execute
// @Summary      Execute wallet call
// @Description  Prepares a signed payload executing the inner call at the next block
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.ExecuteRequest  true  "Execution parameters"
// @Success      200      {object}  model.ExecuteResponse
// @Failure      401      {object}  model.ErrorResponse
// @Failure      404      {object}  model.ErrorResponse
// @Router       /execute [post]
func (h *WalletHandler) Execute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.sessions.Authorize(r, func(username, seed string) error {
		h.execute(r.Context(), w, &req, username, seed)
		return nil
	})
	if errors.Is(err, session.ErrUnauthorized) {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
	}
}

func (h *WalletHandler) execute(ctx context.Context, w http.ResponseWriter, req *model.ExecuteRequest, username, seed string) {
	h.locks.Lock(username)
	defer h.locks.Unlock(username)

	state, err := h.store.Load(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no wallet for user")
			return
		}
		h.log.Error().Err(err).Str("username", username).Msg("failed to load wallet state")
		writeError(w, http.StatusInternalServerError, "failed to load wallet state")
		return
	}

	innerCall := req.RuntimeCall
	if len(innerCall) == 0 {
		call, err := model.BuildTransferCall(req.To, req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		innerCall = call.Encode()
	} else if _, err := model.DecodeCall(innerCall); err != nil {
		// malformed inner call is always a client fault
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	targetHeight := req.CurrentBlock + 1

	payload, err := h.engine.PrepareExecute(ctx, username, seed, targetHeight, state, innerCall)
	if err != nil {
		h.log.Error().Err(err).Str("username", username).Msg("engine prepare-execute failed")
		writeError(w, http.StatusInternalServerError, engineMessage(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(model.ExecuteResponse{
		Username: username,
		Payload:  payload,
	})
}

// engineMessage formats an engine failure for the client. Engine-reported
// kinds translate to their fixed messages; transport faults fall back to the
// generic one so no raw error leaks.
func engineMessage(err error) string {
	var engErr *engine.Error
	if errors.As(err, &engErr) {
		return engine.Translate(engErr.Kind)
	}
	return engine.Translate("")
}

// walletQR renders the wallet handle as a base64 PNG QR code. Cosmetic:
// failure is logged, not surfaced.
func walletQR(username string, log zerolog.Logger) string {
	png, err := qrcode.Encode(username, qrcode.Medium, 256)
	if err != nil {
		log.Warn().Err(err).Msg("failed to generate wallet QR code")
		return ""
	}
	return base64.StdEncoding.EncodeToString(png)
}

// writeError writes the uniform JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}
