package models

import "time"

// SessionState — состояние жизненного цикла сессии загрузки.
type SessionState string

const (
	SessionCreated   SessionState = "created"
	SessionReceiving SessionState = "receiving"
	SessionCompleted SessionState = "completed"
	SessionFinalized SessionState = "finalized"
	SessionAborted   SessionState = "aborted"
	SessionExpired   SessionState = "expired"
)

// Terminal сообщает, допускает ли состояние дальнейшие переходы.
func (s SessionState) Terminal() bool {
	switch s {
	case SessionFinalized, SessionAborted, SessionExpired:
		return true
	}
	return false
}

// Chunk описывает один принятый и сохранённый на диске кусок файла.
type Chunk struct {
	Index  int    `json:"index"`
	Size   int64  `json:"size"`
	Sha256 string `json:"sha256"`
}

// SessionStatus — снимок состояния сессии для клиента, который возобновляет загрузку.
type SessionStatus struct {
	ID          string       `json:"upload_id"`
	Name        string       `json:"file_name"`
	Size        int64        `json:"size"`
	ChunkSize   int64        `json:"chunk_size"`
	TotalChunks int          `json:"total_chunks"`
	State       SessionState `json:"state"`
	Received    []int        `json:"received"`
	Missing     []int        `json:"missing"`
}

// ChunkAck возвращается после успешного приёма куска.
type ChunkAck struct {
	AlreadyHad bool `json:"already_had"`
	Received   int  `json:"received_count"`
	Total      int  `json:"total_chunks"`
}

// CreateResult описывает параметры только что созданной сессии.
type CreateResult struct {
	ID          string `json:"upload_id"`
	ChunkSize   int64  `json:"chunk_size"`
	TotalChunks int    `json:"total_chunks"`
}

// FinalizeResult возвращается после успешной сборки файла.
type FinalizeResult struct {
	Name string `json:"file_name"`
	Size int64  `json:"size"`
	Path string `json:"path"`
}

// Upload содержит запись каталога о завершённой загрузке.
type Upload struct {
	ID          string    `json:"upload_id"`
	Name        string    `json:"file_name"`
	Size        int64     `json:"size"`
	TotalChunks int       `json:"total_chunks"`
	Sha256      string    `json:"sha256"`
	FinishedAt  time.Time `json:"finished_at"`
}
