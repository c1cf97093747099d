package gcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/heartcheck/internal/model"
)

func TestObjectSourceEmulator(t *testing.T) {
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("HC_RUN_GCS_EMULATOR_INTEGRATION")), "true") {
		t.Skip("set HC_RUN_GCS_EMULATOR_INTEGRATION=true to run emulator integration tests")
	}
	emulatorHost := strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST"))
	if emulatorHost == "" {
		emulatorHost = "http://127.0.0.1:4443"
	}
	emulatorHost = strings.TrimRight(emulatorHost, "/")
	if !isEmulatorReachable(t, emulatorHost) {
		t.Skipf("storage emulator not reachable at %s", emulatorHost)
	}
	t.Setenv("STORAGE_EMULATOR_HOST", emulatorHost)

	bucket := fmt.Sprintf("hc-it-models-%d", time.Now().UnixNano())
	createBucketIfMissing(t, emulatorHost, bucket)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := NewStorageClient(ctx, StorageConfig{Mode: ObjectStorageModeGCSEmulator, EmulatorHost: emulatorHost})
	if err != nil {
		t.Fatalf("NewStorageClient: %v", err)
	}
	defer client.Close()

	w := client.Bucket(bucket).Object("models/heart.json").NewWriter(ctx)
	if _, err := io.Copy(w, strings.NewReader(`{"kind":"decision_tree"}`)); err != nil {
		t.Fatalf("write object: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	src := NewObjectSource(client, bucket, "models/heart.json")
	rc, err := src.Open(ctx)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	body, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != `{"kind":"decision_tree"}` {
		t.Fatalf("body=%s", body)
	}

	_, err = NewObjectSource(client, bucket, "models/absent.json").Open(ctx)
	if !errors.Is(err, model.ErrArtifactNotFound) {
		t.Fatalf("missing object: want ErrArtifactNotFound, got %v", err)
	}
}

func isEmulatorReachable(t *testing.T, emulatorHost string) bool {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(emulatorHost + "/storage/v1/b?project=local-dev")
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 500
}

func createBucketIfMissing(t *testing.T, emulatorHost string, bucket string) {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"name": bucket})
	if err != nil {
		t.Fatalf("json.Marshal(bucket): %v", err)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequest(http.MethodPost, emulatorHost+"/storage/v1/b?project=local-dev", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("http.NewRequest(create bucket): %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("create bucket %q: %v", bucket, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusConflict {
		return
	}
	b, _ := io.ReadAll(resp.Body)
	t.Fatalf("create bucket %q failed: status=%d body=%s", bucket, resp.StatusCode, strings.TrimSpace(string(b)))
}
