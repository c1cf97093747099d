package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/heartcheck/internal/config"
	"github.com/yungbote/heartcheck/internal/features"
	"github.com/yungbote/heartcheck/internal/model"
	"github.com/yungbote/heartcheck/internal/model/tree"
	"github.com/yungbote/heartcheck/internal/platform/gcp"
	"github.com/yungbote/heartcheck/internal/platform/logger"
)

func leaf(label int) tree.Node {
	return tree.Node{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: label, IsLeaf: true}
}

func writeArtifact(t *testing.T) string {
	t.Helper()
	env := map[string]any{
		"kind":          "decision_tree",
		"feature_names": features.Names(),
		"tree": []tree.Node{
			{FeatureIdx: int(features.STSlopeUp), Threshold: 0.5, LeftChild: 1, RightChild: 2},
			leaf(1),
			leaf(0),
		},
	}
	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal artifact: %v", err)
	}
	path := filepath.Join(t.TempDir(), "heart_tree.json")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func testConfig(artifact string) *config.Config {
	return &config.Config{
		Env: "test",
		HTTP: config.HTTPConfig{
			Addr:              "127.0.0.1:0",
			ReadHeaderTimeout: time.Second,
			ShutdownTimeout:   2 * time.Second,
			MaxRequestBytes:   1 << 16,
			MetricsEnabled:    true,
		},
		Model: config.ModelConfig{
			Artifact:  artifact,
			Threshold: model.DefaultThreshold,
		},
		Log: config.LogConfig{Level: "error"},
	}
}

func TestNewLoadsModelAndServes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	a, err := New(context.Background(), testConfig(writeArtifact(t)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if !a.Services.Loader.Loaded() {
		t.Fatalf("model not loaded after New")
	}

	body := `{"age":"54","sex":"Male","chest_pain_type":"ASY","resting_bp":"130","cholesterol":"246","fasting_bs":"150","resting_ecg":"Normal","max_hr":"150","exercise_angina":"Yes","oldpeak":"1.5","st_slope":"Flat"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	a.Router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "Patient has heart disease.") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	a.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), "hc_model_loaded 1") {
		t.Fatalf("model gauge not set:\n%s", rr.Body.String())
	}
}

func TestNewAbortsOnMissingArtifact(t *testing.T) {
	_, err := New(context.Background(), testConfig(filepath.Join(t.TempDir(), "absent.json")))
	if !errors.Is(err, model.ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got=%v", err)
	}
}

func TestNewAbortsOnCorruptArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	if err := os.WriteFile(path, []byte("\x80\x04pickle"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := New(context.Background(), testConfig(path))
	if !errors.Is(err, model.ErrDeserialization) {
		t.Fatalf("expected ErrDeserialization, got=%v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig("")
	cfg.Model.Kind = string(model.KindMock)

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestWireArtifactSourceClassifiesStorageErrors(t *testing.T) {
	orig := newStorageClient
	t.Cleanup(func() { newStorageClient = orig })

	cases := []struct {
		name string
		err  error
		want ArtifactSourceBootstrapErrorCode
	}{
		{"invalid mode", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidMode, Mode: "s3"}, ArtifactSourceBootstrapErrorInvalidMode},
		{"missing host", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorMissingEmulatorHost}, ArtifactSourceBootstrapErrorMissingEmulatorHost},
		{"invalid host", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidEmulatorHost}, ArtifactSourceBootstrapErrorInvalidEmulatorHost},
		{"connect", errors.New("dial tcp: refused"), ArtifactSourceBootstrapErrorConnectFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			newStorageClient = func(context.Context, gcp.StorageConfig) (*storage.Client, error) {
				return nil, tc.err
			}
			_, _, err := wireArtifactSource(context.Background(), logger.Nop(), testConfig("gs://models/heart.json"))

			var got *ArtifactSourceBootstrapError
			if !errors.As(err, &got) {
				t.Fatalf("expected ArtifactSourceBootstrapError, got=%T", err)
			}
			if got.Code != tc.want {
				t.Fatalf("code: want=%q got=%q", tc.want, got.Code)
			}
			if got.Location != "gs://models/heart.json" {
				t.Fatalf("location: got=%q", got.Location)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("cause not wrapped: %v", err)
			}
		})
	}
}

func TestWireArtifactSourceLocations(t *testing.T) {
	src, closeFn, err := wireArtifactSource(context.Background(), logger.Nop(), testConfig("file:///srv/models/heart.json"))
	if err != nil {
		t.Fatalf("file location: %v", err)
	}
	if src.URI() != "/srv/models/heart.json" {
		t.Fatalf("uri=%q", src.URI())
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, _, err = wireArtifactSource(context.Background(), logger.Nop(), testConfig("s3://bucket/key"))
	var got *ArtifactSourceBootstrapError
	if !errors.As(err, &got) || got.Code != ArtifactSourceBootstrapErrorInvalidLocation {
		t.Fatalf("expected invalid_location, got=%v", err)
	}

	cfg := testConfig("")
	cfg.Model.Kind = string(model.KindMock)
	src, _, err = wireArtifactSource(context.Background(), logger.Nop(), cfg)
	if err != nil || src != nil {
		t.Fatalf("mock kind should need no source: src=%v err=%v", src, err)
	}
}
