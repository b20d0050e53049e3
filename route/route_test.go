package route

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"git.thinkinpower.net/ribdb/bdata"
	"git.thinkinpower.net/ribdb/data"
	"git.thinkinpower.net/ribdb/mod"
	"git.thinkinpower.net/ribdb/otp"
	"git.thinkinpower.net/ribdb/rib"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codeSender struct {
	mu    sync.Mutex
	codes map[string]string
}

func (s *codeSender) Send(key, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[key] = code
	return nil
}

func (s *codeSender) code(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[key]
}

type response struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type testServer struct {
	engine *gin.Engine
	sender *codeSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, data.BankCodeFileName), []byte("022=Ecobank Guinée\n"), 0644))

	banks := bdata.NewBankDirectory(dir)
	require.NoError(t, banks.Load())
	db := bdata.NewMemoryDatabase()
	require.NoError(t, db.Init(bdata.BeneficiaryConfig{DataDir: dir}))

	sender := &codeSender{codes: make(map[string]string)}
	otps := otp.NewStore(otp.Config{TTL: time.Minute, MaxAttempts: 3, Length: 6}, sender)

	r := gin.New()
	Register(r, bdata.NewRegistry(db, banks, rib.DefaultIbanPrefix), otps)
	return &testServer{engine: r, sender: sender}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		content, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(content)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func goldenRib() mod.RibRequest {
	return mod.RibRequest{BankCode: "022", BranchCode: "001", AccountNumber: "0001234567", CheckDigits: "77"}
}

func TestIndex(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ribdb/index", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hello ribdb")
}

func TestRibKey(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/ribdb/rib/key", mod.RibRequest{BankCode: "22", BranchCode: "1", AccountNumber: "1234567"})
	require.Equal(t, mod.ResponseCodeSuccess, resp.Code, resp.Msg)

	var d mod.RibData
	require.NoError(t, json.Unmarshal(resp.Data, &d))
	assert.Equal(t, "77", d.CheckDigits)
	assert.Equal(t, "022001000123456777", d.Rib)
	assert.Equal(t, "GN82022001000123456777", d.Iban)
	assert.Equal(t, "Ecobank Guinée", d.BankName)
}

func TestRibValidate(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/ribdb/rib/validate", goldenRib())
	assert.Equal(t, mod.ResponseCodeSuccess, resp.Code)

	req := goldenRib()
	req.CheckDigits = "12"
	resp = s.do(t, http.MethodPost, "/ribdb/rib/validate", req)
	assert.Equal(t, mod.ResponseCodeCheckDigitMismatch, resp.Code)
	assert.Equal(t, "Clé RIB invalide. Clé attendue : 77, clé saisie : 12", resp.Msg)
	var e mod.RibError
	require.NoError(t, json.Unmarshal(resp.Data, &e))
	assert.Equal(t, string(rib.KindCheckDigitMismatch), e.Kind)
	assert.Equal(t, "77", e.Expected)
	assert.Equal(t, "12", e.Declared)

	req = goldenRib()
	req.BankCode = "12"
	resp = s.do(t, http.MethodPost, "/ribdb/rib/validate", req)
	assert.Equal(t, mod.ResponseCodeInvalidParams, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &e))
	assert.Equal(t, string(rib.KindInvalidBankCode), e.Kind)
	assert.Equal(t, []string{rib.FieldBankCode}, e.Fields)

	resp = s.do(t, http.MethodPost, "/ribdb/rib/validate", mod.RibRequest{})
	assert.Equal(t, mod.ResponseCodeMissingParams, resp.Code)
}

func TestRibValidate_BadBody(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/ribdb/rib/validate", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, mod.ResponseCodeFailure, resp.Code)
}

func TestRibParse(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/ribdb/rib/parse/"+url.PathEscape("GN82 022 001 0001234567 77"), nil)
	require.Equal(t, mod.ResponseCodeSuccess, resp.Code, resp.Msg)
	var d mod.RibData
	require.NoError(t, json.Unmarshal(resp.Data, &d))
	assert.Equal(t, "0001234567", d.AccountNumber)

	resp = s.do(t, http.MethodGet, "/ribdb/rib/parse/12345", nil)
	assert.Equal(t, mod.ResponseCodeInvalidParams, resp.Code)
}

func TestAddBank(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/ribdb/bank/030/"+url.PathEscape("Orabank Guinée"), nil)
	require.Equal(t, mod.ResponseCodeSuccess, resp.Code, resp.Msg)

	resp = s.do(t, http.MethodPost, "/ribdb/rib/key", mod.RibRequest{BankCode: "030", BranchCode: "001", AccountNumber: "1"})
	var d mod.RibData
	require.NoError(t, json.Unmarshal(resp.Data, &d))
	assert.Equal(t, "Orabank Guinée", d.BankName)

	resp = s.do(t, http.MethodPost, "/ribdb/bank/30/Short", nil)
	assert.Equal(t, mod.ResponseCodeInvalidParams, resp.Code)
}

func TestBeneficiaryWorkflow(t *testing.T) {
	s := newTestServer(t)
	const phone = "+224620000000"

	resp := s.do(t, http.MethodPost, "/ribdb/beneficiary", mod.BeneficiaryRequest{Name: "Fatoumata Camara", Phone: phone, RibRequest: goldenRib()})
	require.Equal(t, mod.ResponseCodeSuccess, resp.Code, resp.Msg)
	var b mod.Beneficiary
	require.NoError(t, json.Unmarshal(resp.Data, &b))
	assert.Equal(t, mod.BeneficiaryStatusCreated, b.Status)
	assert.Equal(t, "GN82022001000123456777", b.Iban)

	// back office cannot skip verification
	resp = s.do(t, http.MethodPost, "/ribdb/beneficiary/"+b.Id+"/status/verified", nil)
	assert.Equal(t, mod.ResponseCodeTransitionRefused, resp.Code)
	resp = s.do(t, http.MethodPost, "/ribdb/beneficiary/"+b.Id+"/status/available", nil)
	assert.Equal(t, mod.ResponseCodeTransitionRefused, resp.Code)

	resp = s.do(t, http.MethodPost, "/ribdb/beneficiary/"+b.Id+"/otp", nil)
	require.Equal(t, mod.ResponseCodeSuccess, resp.Code, resp.Msg)
	code := s.sender.code(phone)
	require.NotEmpty(t, code)

	resp = s.do(t, http.MethodPost, "/ribdb/beneficiary/"+b.Id+"/verify", verifyRequest{Code: "x"})
	assert.Equal(t, mod.ResponseCodeInvalidParams, resp.Code)

	resp = s.do(t, http.MethodPost, "/ribdb/beneficiary/"+b.Id+"/verify", verifyRequest{Code: code})
	require.Equal(t, mod.ResponseCodeSuccess, resp.Code, resp.Msg)
	require.NoError(t, json.Unmarshal(resp.Data, &b))
	assert.Equal(t, mod.BeneficiaryStatusVerified, b.Status)

	resp = s.do(t, http.MethodPost, "/ribdb/beneficiary/"+b.Id+"/otp", nil)
	assert.Equal(t, mod.ResponseCodeTransitionRefused, resp.Code)

	for _, status := range []string{"validated", "available", "suspended"} {
		resp = s.do(t, http.MethodPost, "/ribdb/beneficiary/"+b.Id+"/status/"+status, nil)
		require.Equal(t, mod.ResponseCodeSuccess, resp.Code, resp.Msg)
	}

	resp = s.do(t, http.MethodPost, "/ribdb/beneficiary/"+b.Id+"/status/disponible", nil)
	assert.Equal(t, mod.ResponseCodeInvalidParams, resp.Code)

	resp = s.do(t, http.MethodGet, "/ribdb/beneficiary/"+b.Id, nil)
	require.Equal(t, mod.ResponseCodeSuccess, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &b))
	assert.Equal(t, mod.BeneficiaryStatusSuspended, b.Status)

	resp = s.do(t, http.MethodGet, "/ribdb/beneficiary", nil)
	var list []mod.Beneficiary
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Len(t, list, 1)
}

func TestBeneficiary_OtpBoundToBeneficiary(t *testing.T) {
	s := newTestServer(t)
	const phone = "+224620000001"

	create := func(account, key string) mod.Beneficiary {
		req := goldenRib()
		req.AccountNumber, req.CheckDigits = account, key
		resp := s.do(t, http.MethodPost, "/ribdb/beneficiary", mod.BeneficiaryRequest{Name: "Mamadou Bah", Phone: phone, RibRequest: req})
		require.Equal(t, mod.ResponseCodeSuccess, resp.Code, resp.Msg)
		var b mod.Beneficiary
		require.NoError(t, json.Unmarshal(resp.Data, &b))
		return b
	}
	first := create("0001234567", "77")
	second := create("1234567890", "21")

	resp := s.do(t, http.MethodPost, "/ribdb/beneficiary/"+first.Id+"/otp", nil)
	require.Equal(t, mod.ResponseCodeSuccess, resp.Code, resp.Msg)
	code := s.sender.code(phone)
	require.NotEmpty(t, code)

	resp = s.do(t, http.MethodPost, "/ribdb/beneficiary/"+second.Id+"/verify", verifyRequest{Code: code})
	assert.Equal(t, mod.ResponseCodeInvalidParams, resp.Code)
	resp = s.do(t, http.MethodGet, "/ribdb/beneficiary/"+second.Id, nil)
	require.NoError(t, json.Unmarshal(resp.Data, &second))
	assert.Equal(t, mod.BeneficiaryStatusCreated, second.Status)

	resp = s.do(t, http.MethodPost, "/ribdb/beneficiary/"+first.Id+"/verify", verifyRequest{Code: code})
	require.Equal(t, mod.ResponseCodeSuccess, resp.Code, resp.Msg)
}

func TestBeneficiary_Errors(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/ribdb/beneficiary/unknown", nil)
	assert.Equal(t, mod.ResponseCodeNotFound, resp.Code)

	req := mod.BeneficiaryRequest{Name: "Alpha", Phone: "1", RibRequest: goldenRib()}
	req.CheckDigits = "00"
	resp = s.do(t, http.MethodPost, "/ribdb/beneficiary", req)
	assert.Equal(t, mod.ResponseCodeCheckDigitMismatch, resp.Code)

	resp = s.do(t, http.MethodPost, "/ribdb/beneficiary", mod.BeneficiaryRequest{Phone: "1", RibRequest: goldenRib()})
	assert.Equal(t, mod.ResponseCodeMissingParams, resp.Code)

	resp = s.do(t, http.MethodPost, "/ribdb/beneficiary/unknown/verify", verifyRequest{})
	assert.Equal(t, mod.ResponseCodeMissingParams, resp.Code)
}
