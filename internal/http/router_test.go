package http

import (
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpH "github.com/yungbote/heartcheck/internal/http/handlers"
	"github.com/yungbote/heartcheck/internal/http/response"
	"github.com/yungbote/heartcheck/internal/model"
	"github.com/yungbote/heartcheck/internal/model/loader"
	"github.com/yungbote/heartcheck/internal/model/mock"
	"github.com/yungbote/heartcheck/internal/observability"
	"github.com/yungbote/heartcheck/internal/prediction"
)

type fixedLoader struct{ clf model.Classifier }

func (f fixedLoader) Load(context.Context) (model.Classifier, error) { return f.clf, nil }
func (f fixedLoader) Loaded() bool { return true }

func sampleForm() url.Values {
	return url.Values{
		"age":             {"54"},
		"sex":             {"Male"},
		"chest_pain_type": {"ASY"},
		"resting_bp":      {"130"},
		"cholesterol":     {"246"},
		"fasting_bs":      {"150"},
		"resting_ecg":     {"Normal"},
		"max_hr":          {"150"},
		"exercise_angina": {"Yes"},
		"oldpeak":         {"1.5"},
		"st_slope":        {"Flat"},
	}
}

func sampleJSON() string {
	out := map[string]string{}
	for k, v := range sampleForm() {
		out[k] = v[0]
	}
	b, _ := json.Marshal(out)
	return string(b)
}

type testRouter struct {
	engine  *gin.Engine
	loader  handlersReady
	metrics *observability.Metrics
}

type handlersReady interface {
	prediction.Loader
	httpH.ReadyChecker
}

func newTestRouter(t *testing.T, l handlersReady) testRouter {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := observability.NewMetrics()
	svc, err := prediction.NewService(l, nil, prediction.WithMetrics(m))
	require.NoError(t, err)

	engine := NewRouter(RouterConfig{
		Metrics:         m,
		MaxRequestBytes: 4096,
		FormHandler:     httpH.NewFormHandler(nil, svc),
		PredictHandler:  httpH.NewPredictHandler(nil, svc),
		HealthHandler:   httpH.NewHealthHandler(l),
	})
	return testRouter{engine: engine, loader: l, metrics: m}
}

func (tr testRouter) do(req *nethttp.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	tr.engine.ServeHTTP(rec, req)
	return rec
}

func postForm(values url.Values) *nethttp.Request {
	req := httptest.NewRequest(nethttp.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postJSON(path, body string) *nethttp.Request {
	req := httptest.NewRequest(nethttp.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestFormShow(t *testing.T) {
	tr := newTestRouter(t, fixedLoader{clf: mock.New(0)})

	rec := tr.do(httptest.NewRequest(nethttp.MethodGet, "/", nil))
	require.Equal(t, nethttp.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Run Model")
	assert.Equal(t, 6, strings.Count(body, `type="text"`))
	assert.Equal(t, 5, strings.Count(body, "<select "))
	assert.NotContains(t, body, `id="result"`)
}

func TestFormSubmit_Result(t *testing.T) {
	cases := map[int]string{
		1: "Patient has heart disease.",
		0: "Patient does NOT have heart disease.",
	}
	for label, want := range cases {
		tr := newTestRouter(t, fixedLoader{clf: mock.New(label)})

		rec := tr.do(postForm(sampleForm()))
		require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), want)
		// Submitted values are kept in the form.
		assert.Contains(t, rec.Body.String(), `value="Flat" selected`)
	}
}

func TestFormSubmit_ValidationMessages(t *testing.T) {
	clf := mock.New(1)
	tr := newTestRouter(t, fixedLoader{clf: clf})

	values := sampleForm()
	values.Set("age", "")
	values.Set("st_slope", "")

	rec := tr.do(postForm(values))
	require.Equal(t, nethttp.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Please fill in all required fields.")
	assert.Contains(t, body, "Please fill in all dropdown selections.")
	assert.NotContains(t, body, `id="result"`)
	assert.Zero(t, clf.Calls())
}

func TestFormSubmit_ModelFailure(t *testing.T) {
	tr := newTestRouter(t, fixedLoader{clf: &mock.Classifier{Err: errors.New("tree 3 is corrupt")}})

	rec := tr.do(postForm(sampleForm()))
	assert.Equal(t, nethttp.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "corrupt")
	assert.Contains(t, rec.Body.String(), "could not produce a prediction")
}

func TestAPIPredict(t *testing.T) {
	tr := newTestRouter(t, fixedLoader{clf: mock.New(1)})

	rec := tr.do(postJSON("/v1/predict", sampleJSON()))
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())

	var out prediction.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 1, out.Label)
	assert.Equal(t, prediction.MessageDisease, out.Message)
	assert.True(t, out.HasHeartDisease)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestAPIPredict_NumericJSON(t *testing.T) {
	tr := newTestRouter(t, fixedLoader{clf: mock.New(0)})

	rec := tr.do(postJSON("/v1/predict", `{"age":54,"sex":"Male","chest_pain_type":"ASY","resting_bp":130,"cholesterol":246,"fasting_bs":150,"resting_ecg":"Normal","max_hr":150,"exercise_angina":"Yes","oldpeak":1.5,"st_slope":"Flat"}`))
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), prediction.MessageNoDisease)

	rec = tr.do(postJSON("/v1/predict", `{"age":true}`))
	require.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be a string or a number")
}

func TestAPIPredict_ValidationEnvelope(t *testing.T) {
	tr := newTestRouter(t, fixedLoader{clf: mock.New(1)})

	rec := tr.do(postJSON("/v1/predict", `{"age":"","sex":"Male","chest_pain_type":"ASY","resting_bp":"130","cholesterol":"246","fasting_bs":"150","resting_ecg":"Normal","max_hr":"150","exercise_angina":"Yes","oldpeak":"1.5","st_slope":"Sideways"}`))
	require.Equal(t, nethttp.StatusUnprocessableEntity, rec.Code)

	var env response.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, response.CodeValidation, env.Error.Code)
	assert.Equal(t, "required", env.Error.Fields["age"])
	assert.Equal(t, "unknown option", env.Error.Fields["st_slope"])
	assert.Len(t, env.Error.Messages, 2)
}

func TestAPIPredict_Failures(t *testing.T) {
	tr := newTestRouter(t, fixedLoader{clf: &mock.Classifier{Err: errors.New("boom")}})

	rec := tr.do(postJSON("/v1/predict", sampleJSON()))
	require.Equal(t, nethttp.StatusInternalServerError, rec.Code)
	var env response.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, response.CodePredictionFailed, env.Error.Code)
	assert.NotContains(t, env.Error.Message, "boom")

	rec = tr.do(postJSON("/v1/predict", `{"age":`))
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec = tr.do(postJSON("/v1/predict", `{"age":"`+strings.Repeat("9", 8192)+`"}`))
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
}

func TestAPIEncode(t *testing.T) {
	clf := mock.New(1)
	tr := newTestRouter(t, fixedLoader{clf: clf})

	rec := tr.do(postJSON("/v1/encode", sampleJSON()))
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Columns  []string `json:"columns"`
		Features []struct {
			Name  string  `json:"name"`
			Value float64 `json:"value"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Features, 20)
	assert.Equal(t, "Age", out.Columns[0])
	assert.Equal(t, "FastingBS", out.Features[3].Name)
	assert.Equal(t, 1.0, out.Features[3].Value)
	assert.Zero(t, clf.Calls())
}

func TestFormShow_SampleModelHidesMetrics(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "models", "heart_xgb.json"))
	require.NoError(t, err)
	clf, err := loader.Decode(raw, "", model.DefaultThreshold)
	require.NoError(t, err)
	tr := newTestRouter(t, fixedLoader{clf: clf})

	rec := tr.do(httptest.NewRequest(nethttp.MethodGet, "/", nil))
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "accuracy metrics not applicable")
	assert.NotContains(t, rec.Body.String(), "<th>Train</th>")

	rec = tr.do(httptest.NewRequest(nethttp.MethodGet, "/v1/model", nil))
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sample":true`)
	assert.NotContains(t, rec.Body.String(), `"metrics"`)
}

func TestAPIModel(t *testing.T) {
	tr := newTestRouter(t, fixedLoader{clf: mock.New(0)})

	rec := tr.do(httptest.NewRequest(nethttp.MethodGet, "/v1/model", nil))
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"mock"`)
	assert.Contains(t, rec.Body.String(), "ST_Slope_Up")
}

func TestReadyz(t *testing.T) {
	l := loader.New(nil, loader.Options{Kind: model.KindMock, MockLabel: 1}, nil)
	tr := newTestRouter(t, l)

	rec := tr.do(httptest.NewRequest(nethttp.MethodGet, "/readyz", nil))
	assert.Equal(t, nethttp.StatusServiceUnavailable, rec.Code)

	_, err := l.Load(context.Background())
	require.NoError(t, err)

	rec = tr.do(httptest.NewRequest(nethttp.MethodGet, "/readyz", nil))
	assert.Equal(t, nethttp.StatusOK, rec.Code)

	rec = tr.do(httptest.NewRequest(nethttp.MethodGet, "/healthz", nil))
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRequestIDIsEchoed(t *testing.T) {
	tr := newTestRouter(t, fixedLoader{clf: mock.New(0)})

	req := httptest.NewRequest(nethttp.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := tr.do(req)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))
	assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"))
}

func TestMetricsEndpoint(t *testing.T) {
	tr := newTestRouter(t, fixedLoader{clf: mock.New(1)})

	tr.do(postJSON("/v1/predict", sampleJSON()))
	rec := tr.do(httptest.NewRequest(nethttp.MethodGet, "/metrics", nil))
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hc_predictions_total{label="1"} 1`)
	assert.Contains(t, rec.Body.String(), `route="/v1/predict"`)
}
