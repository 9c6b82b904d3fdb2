// Package uploadclient — HTTP-клиент возобновляемых загрузок. Умеет заливать
// файл с нуля, возобновлять прерванную сессию по списку missing и показывать
// прогресс в терминале.
package uploadclient

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/upsrv/upserver/pkg/uploadproto"
)

const defaultConcurrency = 4

// Session описывает созданную на сервере сессию загрузки.
type Session struct {
	ID          string `json:"upload_id"`
	ChunkSize   int64  `json:"chunk_size"`
	TotalChunks int    `json:"total_chunks"`
}

// Status — снимок прогресса сессии, как его отдаёт сервер.
type Status struct {
	ID          string `json:"upload_id"`
	Name        string `json:"file_name"`
	Size        int64  `json:"size"`
	ChunkSize   int64  `json:"chunk_size"`
	TotalChunks int    `json:"total_chunks"`
	State       string `json:"state"`
	Received    []int  `json:"received"`
	Missing     []int  `json:"missing"`
}

// Ack — подтверждение приёма одного куска.
type Ack struct {
	AlreadyHad bool `json:"already_had"`
	Received   int  `json:"received_count"`
	Total      int  `json:"total_chunks"`
}

// Result — итог успешно собранного файла.
type Result struct {
	Name string `json:"file_name"`
	Size int64  `json:"size"`
	Path string `json:"path"`
}

// Client общается с одним сервером загрузок.
type Client struct {
	base string
	c    *http.Client

	// Concurrency ограничивает число одновременных PUT'ов кусков.
	Concurrency int
}

// New создаёт клиент для сервера по базовому URL.
func New(base string) *Client {
	return &Client{
		base:        base,
		c:           &http.Client{},
		Concurrency: defaultConcurrency,
	}
}

// Create регистрирует сессию загрузки на сервере.
func (cl *Client) Create(ctx context.Context, name string, size, chunkSize int64) (Session, error) {
	payload, err := json.Marshal(map[string]any{
		"file_name":  name,
		"size":       size,
		"chunk_size": chunkSize,
	})
	if err != nil {
		return Session{}, err
	}

	u := fmt.Sprintf(uploadproto.UploadsPathFormat, cl.base)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out Session
	if err := cl.do(req, http.StatusCreated, &out); err != nil {
		return Session{}, err
	}
	return out, nil
}

// Status запрашивает состояние сессии.
func (cl *Client) Status(ctx context.Context, uploadID string) (Status, error) {
	u := fmt.Sprintf(uploadproto.UploadPathFormat, cl.base, uploadID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Status{}, err
	}

	var out Status
	if err := cl.do(req, http.StatusOK, &out); err != nil {
		return Status{}, err
	}
	return out, nil
}

// PutChunk отправляет один кусок с контрольной суммой.
func (cl *Client) PutChunk(ctx context.Context, uploadID string, index int, r io.Reader, size int64, sha string) (Ack, error) {
	u := fmt.Sprintf(uploadproto.ChunkPathFormat, cl.base, uploadID, index)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, r)
	if err != nil {
		return Ack{}, err
	}
	req.ContentLength = size
	req.Header.Set("Content-Length", strconv.FormatInt(size, 10))
	if sha != "" {
		req.Header.Set(uploadproto.HeaderChecksum, sha)
	}

	var out Ack
	if err := cl.do(req, http.StatusOK, &out); err != nil {
		return Ack{}, err
	}
	return out, nil
}

// Complete просит сервер собрать файл из принятых кусков.
func (cl *Client) Complete(ctx context.Context, uploadID string) (Result, error) {
	u := fmt.Sprintf(uploadproto.CompletePathFormat, cl.base, uploadID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return Result{}, err
	}

	var out Result
	if err := cl.do(req, http.StatusOK, &out); err != nil {
		return Result{}, err
	}
	return out, nil
}

// Abort отменяет сессию; незнакомый id сервер трактует как уже убранную сессию.
func (cl *Client) Abort(ctx context.Context, uploadID string) error {
	u := fmt.Sprintf(uploadproto.UploadPathFormat, cl.base, uploadID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	return cl.do(req, http.StatusNoContent, nil)
}

// do выполняет запрос и декодирует JSON-ответ при совпадении статуса.
func (cl *Client) do(req *http.Request, wantStatus int, out any) error {
	resp, err := cl.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: %s: %s", req.Method, req.URL.Path, resp.Status, bytes.TrimSpace(body))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// chunkSha считает sha256 секции файла, не загружая её целиком в память.
func chunkSha(f *os.File, off, length int64) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, io.NewSectionReader(f, off, length)); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func baseName(path string) string {
	return filepath.Base(filepath.Clean(path))
}
