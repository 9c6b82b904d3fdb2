package models

import "errors"

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrSessionNotFound   = errors.New("upload session not found")
	ErrSessionClosed     = errors.New("upload session closed")
	ErrChunkSizeMismatch = errors.New("chunk size mismatch")
	ErrChunkCorrupt      = errors.New("chunk checksum mismatch")
	ErrIncompleteUpload  = errors.New("upload incomplete")
	ErrSizeMismatch      = errors.New("assembled size mismatch")
	ErrStorage           = errors.New("storage failure")
)
