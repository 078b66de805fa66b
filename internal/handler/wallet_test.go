package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tide-labs/timevault-api/internal/config"
	"github.com/tide-labs/timevault-api/internal/engine"
	"github.com/tide-labs/timevault-api/internal/model"
	"github.com/tide-labs/timevault-api/internal/session"
	"github.com/tide-labs/timevault-api/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine records its inputs and returns canned results.
type fakeEngine struct {
	createErr    error
	executeErr   error
	createCalls  int
	executeCalls int
	lastSchedule []uint64
	lastTarget   uint64
	lastCall     []byte
}

func (f *fakeEngine) Create(_ context.Context, username, seed string, _ [32]byte, schedule []uint64, _ []byte) (json.RawMessage, []byte, error) {
	f.createCalls++
	f.lastSchedule = schedule
	if f.createErr != nil {
		return nil, nil, f.createErr
	}
	return json.RawMessage(`{"signed":"create-payload"}`), []byte("state-" + username), nil
}

func (f *fakeEngine) PrepareExecute(_ context.Context, username, seed string, targetHeight uint64, state []byte, innerCall []byte) (json.RawMessage, error) {
	f.executeCalls++
	f.lastTarget = targetHeight
	f.lastCall = innerCall
	if f.executeErr != nil {
		return nil, f.executeErr
	}
	return json.RawMessage(`{"signed":"execute-payload"}`), nil
}

// failStore always fails writes.
type failStore struct{ store.Store }

func (failStore) Write(context.Context, string, []byte) error {
	return errors.New("disk on fire")
}

func testAuxKey() string {
	parts := make([]string, 32)
	for i := range parts {
		parts[i] = "7"
	}
	return strings.Join(parts, ",")
}

func newTestHandler(t *testing.T, eng engine.Engine, st store.Store) *WalletHandler {
	t.Helper()
	t.Setenv("SALT", "test-salt")
	t.Setenv("AUX_KEY", testAuxKey())
	require.NoError(t, config.Init())

	if st == nil {
		var err error
		st, err = store.NewFileStore(filepath.Join(t.TempDir(), "wallet.tvw"))
		require.NoError(t, err)
	}

	sessions, err := session.NewCarrier("test-salt")
	require.NoError(t, err)

	h, err := NewWalletHandler(sessions, st, eng, true, zerolog.Nop())
	require.NoError(t, err)
	return h
}

func login(t *testing.T, h *WalletHandler, username, password string) []*http.Cookie {
	t.Helper()
	body, _ := json.Marshal(model.AuthRequest{Username: username, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Result().Cookies()
}

func post(h http.HandlerFunc, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestLoginSetsSessionCookies(t *testing.T) {
	h := newTestHandler(t, &fakeEngine{}, nil)

	cookies := login(t, h, "alice", "pw")
	names := map[string]bool{}
	for _, c := range cookies {
		names[c.Name] = true
	}
	assert.True(t, names["username"] && names["seed"], "expected username and seed cookies, got %v", names)
}

func TestLoginRejectsEmptyCredentials(t *testing.T) {
	h := newTestHandler(t, &fakeEngine{}, nil)

	rec := post(h.Login, "/login", model.AuthRequest{Username: "alice"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEndToEnd(t *testing.T) {
	eng := &fakeEngine{}
	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "wallet.tvw"))
	require.NoError(t, err)
	h := newTestHandler(t, eng, st)

	cookies := login(t, h, "alice", "pw")
	rec := post(h.Create, "/create", model.CreateRequest{
		Validity:     3,
		CurrentBlock: 10,
		RoundPubkey:  "0xabcd",
	}, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, []uint64{12, 13, 14}, eng.lastSchedule)

	var resp model.CreateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Username)
	assert.JSONEq(t, `{"signed":"create-payload"}`, string(resp.Payload))
	assert.Equal(t, []byte("state-alice"), resp.State)
	assert.NotEmpty(t, resp.QR)

	// state is durably persisted under the username
	loaded, err := st.Load(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []byte("state-alice"), loaded)
}

func TestCreateRequiresAuth(t *testing.T) {
	eng := &fakeEngine{}
	h := newTestHandler(t, eng, nil)

	rec := post(h.Create, "/create", model.CreateRequest{
		Validity:     3,
		CurrentBlock: 10,
		RoundPubkey:  "0xabcd",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, eng.createCalls, "engine must not be called without identity")
}

func TestCreateBadPubkey(t *testing.T) {
	eng := &fakeEngine{}
	h := newTestHandler(t, eng, nil)

	cookies := login(t, h, "alice", "pw")
	rec := post(h.Create, "/create", model.CreateRequest{
		Validity:     3,
		CurrentBlock: 10,
		RoundPubkey:  "0xnothex",
	}, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, eng.createCalls)
}

func TestCreateEngineFailure(t *testing.T) {
	eng := &fakeEngine{createErr: &engine.Error{Kind: engine.KindTlockFailed}}
	h := newTestHandler(t, eng, nil)

	cookies := login(t, h, "alice", "pw")
	rec := post(h.Create, "/create", model.CreateRequest{
		Validity:     3,
		CurrentBlock: 10,
		RoundPubkey:  "0xabcd",
	}, cookies)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Timevault: Tlock failed")
}

func TestCreateStoreFailure(t *testing.T) {
	h := newTestHandler(t, &fakeEngine{}, failStore{})

	cookies := login(t, h, "alice", "pw")
	rec := post(h.Create, "/create", model.CreateRequest{
		Validity:     3,
		CurrentBlock: 10,
		RoundPubkey:  "0xabcd",
	}, cookies)
	// creation must not be reported successful when persistence failed
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestExecuteEndToEnd(t *testing.T) {
	eng := &fakeEngine{}
	h := newTestHandler(t, eng, nil)

	cookies := login(t, h, "alice", "pw")
	rec := post(h.Create, "/create", model.CreateRequest{
		Validity:     3,
		CurrentBlock: 10,
		RoundPubkey:  "0xabcd",
	}, cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	call, err := model.BuildTransferCall(strings.Repeat("ab", 32), 1000)
	require.NoError(t, err)

	rec = post(h.Execute, "/execute", model.ExecuteRequest{
		RuntimeCall:  call.Encode(),
		CurrentBlock: 11,
	}, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.EqualValues(t, 12, eng.lastTarget)
	assert.Equal(t, call.Encode(), eng.lastCall, "inner call must reach the engine untouched")

	var resp model.ExecuteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.JSONEq(t, `{"signed":"execute-payload"}`, string(resp.Payload))
}

func TestExecuteBuildsTransferCall(t *testing.T) {
	eng := &fakeEngine{}
	h := newTestHandler(t, eng, nil)

	cookies := login(t, h, "alice", "pw")
	rec := post(h.Create, "/create", model.CreateRequest{
		Validity:     3,
		CurrentBlock: 10,
		RoundPubkey:  "0xabcd",
	}, cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = post(h.Execute, "/execute", model.ExecuteRequest{
		CurrentBlock: 11,
		Amount:       1000,
		To:           "0x" + strings.Repeat("cd", 32),
	}, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	decoded, err := model.DecodeCall(eng.lastCall)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, decoded.Amount)
}

func TestExecuteNoWallet(t *testing.T) {
	eng := &fakeEngine{}
	h := newTestHandler(t, eng, nil)

	cookies := login(t, h, "mallory", "pw")
	call, err := model.BuildTransferCall(strings.Repeat("ab", 32), 1)
	require.NoError(t, err)

	rec := post(h.Execute, "/execute", model.ExecuteRequest{
		RuntimeCall:  call.Encode(),
		CurrentBlock: 11,
	}, cookies)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no wallet for user")
	assert.Zero(t, eng.executeCalls, "a missing wallet must not reach the engine")
}

func TestExecuteMalformedCall(t *testing.T) {
	eng := &fakeEngine{}
	h := newTestHandler(t, eng, nil)

	cookies := login(t, h, "alice", "pw")
	rec := post(h.Create, "/create", model.CreateRequest{
		Validity:     3,
		CurrentBlock: 10,
		RoundPubkey:  "0xabcd",
	}, cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = post(h.Execute, "/execute", model.ExecuteRequest{
		RuntimeCall:  []byte{0xff, 0x01, 0x02},
		CurrentBlock: 11,
	}, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, eng.executeCalls)
}

func TestExecuteEngineFailure(t *testing.T) {
	eng := &fakeEngine{executeErr: &engine.Error{Kind: engine.KindNoLeafFound}}
	h := newTestHandler(t, eng, nil)

	cookies := login(t, h, "alice", "pw")
	rec := post(h.Create, "/create", model.CreateRequest{
		Validity:     3,
		CurrentBlock: 10,
		RoundPubkey:  "0xabcd",
	}, cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	call, err := model.BuildTransferCall(strings.Repeat("ab", 32), 1)
	require.NoError(t, err)
	rec = post(h.Execute, "/execute", model.ExecuteRequest{
		RuntimeCall:  call.Encode(),
		CurrentBlock: 11,
	}, cookies)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Timevault: No leaf found")
}
