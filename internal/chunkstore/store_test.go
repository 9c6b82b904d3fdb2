package chunkstore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/upsrv/upserver/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "staging"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func testMeta(id string, size, chunkSize int64) SessionMeta {
	return SessionMeta{
		ID:        id,
		Name:      "file.bin",
		Size:      size,
		ChunkSize: chunkSize,
		CreatedAt: time.Now(),
	}
}

func TestTotalChunks(t *testing.T) {
	cases := []struct {
		size, chunkSize int64
		want            int
	}{
		{12_000_000, 5_000_000, 3},
		{10, 10, 1},
		{11, 10, 2},
		{1, 1024, 1},
		{0, 1024, 0},
		{1024, 0, 0},
	}

	for _, c := range cases {
		if got := TotalChunks(c.size, c.chunkSize); got != c.want {
			t.Errorf("TotalChunks(%d, %d) = %d, want %d", c.size, c.chunkSize, got, c.want)
		}
	}
}

func TestChunkLength(t *testing.T) {
	// 12M при кусках 5M: 5M, 5M, 2M.
	if got := ChunkLength(12_000_000, 5_000_000, 0); got != 5_000_000 {
		t.Errorf("chunk 0 length = %d", got)
	}
	if got := ChunkLength(12_000_000, 5_000_000, 2); got != 2_000_000 {
		t.Errorf("chunk 2 length = %d", got)
	}
	if got := ChunkLength(12_000_000, 5_000_000, 3); got != 0 {
		t.Errorf("out of range length = %d", got)
	}
	if got := ChunkLength(12_000_000, 5_000_000, -1); got != 0 {
		t.Errorf("negative index length = %d", got)
	}
}

func TestWriteReadEnumerate(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateSession(testMeta("sess1", 3072, 1024)); err != nil {
		t.Fatal(err)
	}

	// Пишем куски не по порядку.
	for _, idx := range []int{2, 0, 1} {
		payload := bytes.Repeat([]byte{byte(idx + 1)}, 1024)
		rec, err := s.Write("sess1", idx, bytes.NewReader(payload), 1024, "")
		if err != nil {
			t.Fatalf("write %d: %v", idx, err)
		}
		if rec.Size != 1024 {
			t.Fatalf("record size = %d", rec.Size)
		}

		sum := sha256.Sum256(payload)
		if rec.Sha256 != hex.EncodeToString(sum[:]) {
			t.Fatalf("record sha mismatch for chunk %d", idx)
		}
	}

	indices, err := s.Enumerate("sess1")
	if err != nil {
		t.Fatal(err)
	}
	if len(indices) != 3 || indices[0] != 0 || indices[1] != 1 || indices[2] != 2 {
		t.Fatalf("enumerate = %v, want [0 1 2]", indices)
	}

	rc, err := s.Read("sess1", 1)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, bytes.Repeat([]byte{2}, 1024)) {
		t.Fatalf("read back wrong content")
	}
}

func TestWrite_RejectsBadLength(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateSession(testMeta("sess2", 2048, 1024)); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Write("sess2", 0, bytes.NewReader(make([]byte, 100)), 1024, ""); !errors.Is(err, models.ErrChunkSizeMismatch) {
		t.Fatalf("short body: got %v", err)
	}
	if _, err := s.Write("sess2", 0, bytes.NewReader(make([]byte, 2000)), 1024, ""); !errors.Is(err, models.ErrChunkSizeMismatch) {
		t.Fatalf("long body: got %v", err)
	}

	// Неудачная запись не публикует файл куска.
	indices, err := s.Enumerate("sess2")
	if err != nil {
		t.Fatal(err)
	}
	if len(indices) != 0 {
		t.Fatalf("enumerate after failed writes = %v", indices)
	}
}

func TestWrite_ChecksumGuardsExistingChunk(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateSession(testMeta("sess3", 1024, 1024)); err != nil {
		t.Fatal(err)
	}

	good := bytes.Repeat([]byte{0xAB}, 1024)
	sum := sha256.Sum256(good)
	if _, err := s.Write("sess3", 0, bytes.NewReader(good), 1024, hex.EncodeToString(sum[:])); err != nil {
		t.Fatal(err)
	}

	// Повторная запись с неверным хешем отклоняется, прежний кусок цел.
	bad := bytes.Repeat([]byte{0xCD}, 1024)
	if _, err := s.Write("sess3", 0, bytes.NewReader(bad), 1024, hex.EncodeToString(sum[:])); !errors.Is(err, models.ErrChunkCorrupt) {
		t.Fatalf("corrupt overwrite: got %v", err)
	}

	rc, err := s.Read("sess3", 0)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, good) {
		t.Fatalf("existing chunk damaged by rejected overwrite")
	}
}

func TestEnumerate_IgnoresForeignFiles(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateSession(testMeta("sess4", 1024, 1024)); err != nil {
		t.Fatal(err)
	}

	dir := s.sessionDir("sess4")
	_ = os.WriteFile(filepath.Join(dir, "chunk_000007.tmp"), []byte("partial"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)

	indices, err := s.Enumerate("sess4")
	if err != nil {
		t.Fatal(err)
	}
	if len(indices) != 0 {
		t.Fatalf("enumerate = %v, want empty", indices)
	}
}

func TestDeleteSession(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateSession(testMeta("sess5", 1024, 1024)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Write("sess5", 0, bytes.NewReader(make([]byte, 1024)), 1024, ""); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteSession("sess5"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(s.sessionDir("sess5")); !os.IsNotExist(err) {
		t.Fatalf("session dir survived delete")
	}

	if _, err := s.Enumerate("sess5"); !errors.Is(err, models.ErrSessionNotFound) {
		t.Fatalf("enumerate after delete: got %v", err)
	}
}

func TestRecover(t *testing.T) {
	root := filepath.Join(t.TempDir(), "staging")
	s, err := New(root)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.CreateSession(testMeta("good", 3072, 1024)); err != nil {
		t.Fatal(err)
	}
	for _, idx := range []int{0, 2} {
		if _, err := s.Write("good", idx, bytes.NewReader(make([]byte, 1024)), 1024, ""); err != nil {
			t.Fatal(err)
		}
	}

	// Кусок неправильной длины: как будто rename прошёл, а запись — нет.
	if err := os.WriteFile(filepath.Join(s.sessionDir("good"), "chunk_000001"), []byte("torn"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Каталог без session.json восстановлению не подлежит.
	if err := os.MkdirAll(filepath.Join(root, "orphan"), 0o755); err != nil {
		t.Fatal(err)
	}

	recovered, err := s.Recover()
	if err != nil {
		t.Fatal(err)
	}
	if len(recovered) != 1 {
		t.Fatalf("recovered %d sessions, want 1", len(recovered))
	}

	rec := recovered[0]
	if rec.Meta.ID != "good" || rec.Meta.Size != 3072 {
		t.Fatalf("unexpected meta: %+v", rec.Meta)
	}
	if len(rec.Chunks) != 2 {
		t.Fatalf("chunks = %v, want indices 0 and 2", rec.Chunks)
	}
	if _, ok := rec.Chunks[1]; ok {
		t.Fatalf("torn chunk counted as received")
	}

	// Рваный файл удалён, чтобы не мешать перезаливке.
	if _, err := os.Stat(filepath.Join(s.sessionDir("good"), "chunk_000001")); !os.IsNotExist(err) {
		t.Fatalf("torn chunk file not removed")
	}
}
