package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/banachtech/zebra-digital/config"
	"github.com/banachtech/zebra-digital/keystore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, server *Server, path string, body interface{}, authorized bool) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	request, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	require.NoError(t, err)
	request.Header.Set("Content-Type", "application/json")
	if authorized {
		request.Header.Set(authorizationHeaderKey, authorizationTypeBearer+" "+testKey)
	}

	recorder := httptest.NewRecorder()
	server.router.ServeHTTP(recorder, request)
	return recorder
}

func decodeNumber(t *testing.T, body map[string]interface{}, field string) float64 {
	t.Helper()
	s, ok := body[field].(string)
	require.True(t, ok, "%s missing in %v", field, body)
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	f, _ := d.Float64()
	return f
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func testMarket() object {
	return object{
		"spot":           100,
		"risk_free_rate": 0.05,
		"volatility":     0.2,
		"reference_date": "2024-01-02",
	}
}

func testContract(atExpiry bool) object {
	return object{
		"type":             "call",
		"payoff":           "cash",
		"strike":           110,
		"cash":             10,
		"expiry":           "2025-01-01",
		"payoff_at_expiry": atExpiry,
	}
}

// object is a JSON object literal.
type object = map[string]interface{}

func with(base object, key string, value interface{}) object {
	out := object{}
	for k, v := range base {
		out[k] = v
	}
	if value == nil {
		delete(out, key)
	} else {
		out[key] = value
	}
	return out
}

func TestAnalyticPricer(t *testing.T) {
	server := newTestServer(keystore.NewMemStore(keystore.Key{Prefix: testPrefix(), Hash: testHash}))

	type testCases struct {
		name          string
		body          object
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}

	for _, test := range []testCases{
		{
			name: "AT_EXPIRY",
			body: object{"market": testMarket(), "contract": testContract(true)},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				body := decode(t, recorder)
				require.InDelta(t, 6.452014993908848, decodeNumber(t, body, "value"), 1e-8)
				require.Equal(t, analyticEngine, body["engine"])
				require.NotContains(t, body, "delta")
				require.NotEmpty(t, body["request_id"])
			},
		},
		{
			name: "AT_HIT",
			body: object{"market": testMarket(), "contract": testContract(false)},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				body := decode(t, recorder)
				require.InDelta(t, 6.679707931559405, decodeNumber(t, body, "value"), 1e-8)
				require.Greater(t, decodeNumber(t, body, "delta"), 0.0)
				require.Contains(t, body, "gamma")
				require.Contains(t, body, "rho")
			},
		},
		{
			name: "FLAT_VOL_CURVE",
			body: object{
				"market": with(with(testMarket(), "volatility", nil), "vol_curve", []object{
					{"date": "2024-07-01", "vol": 0.2},
					{"date": "2025-06-30", "vol": 0.2},
				}),
				"contract": testContract(true),
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				require.InDelta(t, 6.452014993908848, decodeNumber(t, decode(t, recorder), "value"), 1e-8)
			},
		},
		{
			name: "MISSING_SPOT",
			body: object{"market": with(testMarket(), "spot", nil), "contract": testContract(true)},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "MISSING_VOL",
			body: object{"market": with(testMarket(), "volatility", nil), "contract": testContract(true)},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "BAD_DATE",
			body: object{"market": testMarket(), "contract": with(testContract(true), "expiry", "01/01/2025")},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "UNKNOWN_PAYOFF",
			body: object{"market": testMarket(), "contract": with(testContract(true), "payoff", "vanilla")},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "CASH_MISSING",
			body: object{"market": testMarket(), "contract": with(testContract(true), "cash", nil)},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "UNKNOWN_OPTION_TYPE",
			body: object{"market": testMarket(), "contract": with(testContract(true), "type", "straddle")},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
			},
		},
		{
			name: "EXPIRED",
			body: object{"market": testMarket(), "contract": with(testContract(true), "expiry", "2023-12-01")},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
			},
		},
		{
			name: "FORWARD_START",
			body: object{"market": testMarket(), "contract": with(testContract(true), "earliest", "2024-06-03")},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
				require.Contains(t, recorder.Body.String(), "unsupported exercise window")
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			test.checkResponse(t, post(t, server, "/v1/digital/analytic", test.body, true))
		})
	}
}

func TestUnauthorizedPricer(t *testing.T) {
	server := newTestServer(keystore.NewMemStore())
	for _, path := range []string{"/v1/digital/analytic", "/v1/digital/mc", "/v1/digital/implied"} {
		recorder := post(t, server, path, object{"market": testMarket(), "contract": testContract(true)}, false)
		require.Equal(t, http.StatusUnauthorized, recorder.Code, path)
	}
}

func TestMonteCarloPricer(t *testing.T) {
	server := newTestServer(keystore.NewMemStore(keystore.Key{Prefix: testPrefix(), Hash: testHash}))
	base := object{"market": testMarket(), "contract": testContract(false), "seed": 7}

	type testCases struct {
		name          string
		body          object
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}

	for _, test := range []testCases{
		{
			name: "OK",
			body: base,
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				body := decode(t, recorder)
				value, e := decodeNumber(t, body, "value"), decodeNumber(t, body, "error_estimate")
				require.InDelta(t, 6.679707931559405, value, 4*e)
				require.Equal(t, float64(20000), body["samples"])
				require.Equal(t, "converged", body["state"])
			},
		},
		{
			name: "SAMPLES_OVERRIDE",
			body: with(base, "samples", 3000),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				require.Equal(t, float64(3000), decode(t, recorder)["samples"])
			},
		},
		{
			name: "TOLERANCE_EXHAUSTED",
			body: with(with(base, "tolerance", 1e-4), "max_samples", 2000),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				body := decode(t, recorder)
				require.Equal(t, "exhausted_samples", body["state"])
				require.Greater(t, decodeNumber(t, body, "error_estimate"), 1e-4)
			},
		},
		{
			name: "TOLERANCE_WITHOUT_MAX",
			body: with(base, "tolerance", 1e-9),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
			},
		},
		{
			name: "BOTH_CRITERIA",
			body: with(with(base, "samples", 1000), "tolerance", 0.1),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "TOO_MANY_SAMPLES",
			body: with(base, "samples", 50000000),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "CONTROL_VARIATE_ASSET",
			body: with(with(base, "control_variate", true), "contract", with(testContract(false), "payoff", "asset")),
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			test.checkResponse(t, post(t, server, "/v1/digital/mc", test.body, true))
		})
	}
}

func TestImpliedPricer(t *testing.T) {
	server := newTestServer(keystore.NewMemStore(keystore.Key{Prefix: testPrefix(), Hash: testHash}))

	recorder := post(t, server, "/v1/digital/implied", object{
		"market":   with(testMarket(), "volatility", 0.4),
		"contract": testContract(true),
		"price":    6.452014993908848,
	}, true)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.InDelta(t, 0.2, decodeNumber(t, decode(t, recorder), "implied_volatility"), 1e-3)

	recorder = post(t, server, "/v1/digital/implied", object{
		"market":   testMarket(),
		"contract": testContract(true),
		"price":    20,
	}, true)
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(keystore.NewMemStore(keystore.Key{Prefix: testPrefix(), Hash: testHash}))
	require.Equal(t, http.StatusOK, post(t, server, "/v1/digital/analytic", object{"market": testMarket(), "contract": testContract(true)}, true).Code)

	recorder := httptest.NewRecorder()
	request, err := http.NewRequest(http.MethodGet, "/metrics", nil)
	require.NoError(t, err)
	server.router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.True(t, strings.Contains(recorder.Body.String(), `zebra_pricing_requests_total{engine="analytic_digital",outcome="ok"}`))
}

func TestNewMCConfig(t *testing.T) {
	cfg := config.NewConfig().Engine
	mcCfg, err := NewMCConfig(*cfg)
	require.NoError(t, err)
	require.True(t, mcCfg.RNG.AllowsErrorEstimate())
	require.Equal(t, cfg.RequiredSamples, mcCfg.RequiredSamples)

	cfg.RNG = "halton"
	mcCfg, err = NewMCConfig(*cfg)
	require.NoError(t, err)
	require.False(t, mcCfg.RNG.AllowsErrorEstimate())

	cfg.RNG = "sobol"
	_, err = NewMCConfig(*cfg)
	require.Error(t, err)
}
