package integration

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/upsrv/upserver/internal/app/uploadhttp"
	"github.com/upsrv/upserver/internal/chunkstore"
	"github.com/upsrv/upserver/internal/engine"
	catalog "github.com/upsrv/upserver/internal/repo"
	"github.com/upsrv/upserver/pkg/uploadproto"
)

// testServer поднимает сервер загрузок поверх каталога uploadDir; restore
// имитирует рестарт процесса поверх уже существующего staging'а.
func testServer(t *testing.T, uploadDir string, restore bool) *httptest.Server {
	t.Helper()

	store, err := chunkstore.New(filepath.Join(uploadDir, ".staging"))
	if err != nil {
		t.Fatal(err)
	}

	cat := catalog.NewMemoryStore()
	eng := engine.New(engine.Deps{
		Store:            store,
		Catalog:          cat,
		UploadDir:        uploadDir,
		DefaultChunkSize: 1024,
	})

	if restore {
		if _, err := eng.Recover(); err != nil {
			t.Fatal(err)
		}
	}

	srv := httptest.NewServer(uploadhttp.New(uploadhttp.Deps{
		Engine:    eng,
		Catalog:   cat,
		UploadDir: uploadDir,
	}))
	t.Cleanup(srv.Close)

	return srv
}

type createdUpload struct {
	ID          string `json:"upload_id"`
	ChunkSize   int64  `json:"chunk_size"`
	TotalChunks int    `json:"total_chunks"`
}

type uploadStatus struct {
	State    string `json:"state"`
	Received []int  `json:"received"`
	Missing  []int  `json:"missing"`
	Total    int    `json:"total_chunks"`
}

type chunkAck struct {
	AlreadyHad bool `json:"already_had"`
	Received   int  `json:"received_count"`
}

func createUpload(t *testing.T, base, name string, size, chunkSize int64) createdUpload {
	t.Helper()

	body, _ := json.Marshal(map[string]any{
		"file_name":  name,
		"size":       size,
		"chunk_size": chunkSize,
	})
	resp, err := http.Post(base+"/uploads", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("create upload: %s: %s", resp.Status, b)
	}

	var out createdUpload
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

func putChunk(t *testing.T, base, id string, idx int, payload []byte) chunkAck {
	t.Helper()

	ack, status := tryPutChunk(t, base, id, idx, payload, chunkSum(payload))
	if status != http.StatusOK {
		t.Fatalf("put chunk %d: status %d", idx, status)
	}
	return ack
}

// tryPutChunk возвращает статус вместо падения — для негативных сценариев.
func tryPutChunk(t *testing.T, base, id string, idx int, payload []byte, sha string) (chunkAck, int) {
	t.Helper()

	u := fmt.Sprintf(uploadproto.ChunkPathFormat, base, id, idx)
	req, err := http.NewRequest(http.MethodPut, u, bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	if sha != "" {
		req.Header.Set(uploadproto.HeaderChecksum, sha)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var ack chunkAck
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
			t.Fatal(err)
		}
	}
	return ack, resp.StatusCode
}

func getStatus(t *testing.T, base, id string) (uploadStatus, int) {
	t.Helper()

	resp, err := http.Get(base + "/uploads/" + id)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var st uploadStatus
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
			t.Fatal(err)
		}
	}
	return st, resp.StatusCode
}

func completeUpload(t *testing.T, base, id string) (int, string) {
	t.Helper()

	resp, err := http.Post(fmt.Sprintf(uploadproto.CompletePathFormat, base, id), "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func downloadFile(t *testing.T, base, name string) []byte {
	t.Helper()

	resp, err := http.Get(base + "/files/" + name)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("download %s: %s", name, resp.Status)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func chunkSum(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
