package integration

import (
	"bytes"
	"net/http"
	"testing"
)

// Сценарий падения процесса: первый сервер принимает часть кусков и
// "умирает", второй поднимается поверх того же каталога и восстанавливает
// маску принятого исключительно по файлам на диске.
func Test_CrashRecovery_RebuildsMask(t *testing.T) {
	dir := t.TempDir()

	payload := bytes.Repeat([]byte{0xEE, 0x11}, 1536) // 3072 байта → 3 куска
	chunkAt := func(idx int) []byte {
		return payload[idx*1024 : (idx+1)*1024]
	}

	srv1 := testServer(t, dir, false)
	created := createUpload(t, srv1.URL, "crash.bin", int64(len(payload)), 1024)
	putChunk(t, srv1.URL, created.ID, 0, chunkAt(0))
	putChunk(t, srv1.URL, created.ID, 2, chunkAt(2))
	srv1.Close()

	// Новый процесс поверх того же каталога.
	srv2 := testServer(t, dir, true)

	st, code := getStatus(t, srv2.URL, created.ID)
	if code != http.StatusOK {
		t.Fatalf("status after restart: %d", code)
	}
	if len(st.Received) != 2 || st.Received[0] != 0 || st.Received[1] != 2 {
		t.Fatalf("recovered mask = %v, want [0 2]", st.Received)
	}
	if len(st.Missing) != 1 || st.Missing[0] != 1 {
		t.Fatalf("missing = %v, want [1]", st.Missing)
	}

	// Досылаем только недостающее и собираем файл.
	putChunk(t, srv2.URL, created.ID, 1, chunkAt(1))
	if code, body := completeUpload(t, srv2.URL, created.ID); code != http.StatusOK {
		t.Fatalf("complete after recovery: %d: %s", code, body)
	}

	got := downloadFile(t, srv2.URL, "crash.bin")
	if !bytes.Equal(got, payload) {
		t.Fatalf("recovered upload content mismatch")
	}
}

// Рестарт без единого принятого куска: сессия восстанавливается в created и
// принимает куски как обычно.
func Test_CrashRecovery_EmptySession(t *testing.T) {
	dir := t.TempDir()

	srv1 := testServer(t, dir, false)
	created := createUpload(t, srv1.URL, "empty.bin", 1024, 1024)
	srv1.Close()

	srv2 := testServer(t, dir, true)

	st, code := getStatus(t, srv2.URL, created.ID)
	if code != http.StatusOK {
		t.Fatalf("status after restart: %d", code)
	}
	if st.State != "created" {
		t.Fatalf("state = %s, want created", st.State)
	}

	putChunk(t, srv2.URL, created.ID, 0, bytes.Repeat([]byte{0x0F}, 1024))
	if code, body := completeUpload(t, srv2.URL, created.ID); code != http.StatusOK {
		t.Fatalf("complete: %d: %s", code, body)
	}
}
