package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrQuotaExceeded       = errors.New("monthly minutes limit reached")
	ErrAlreadyClaimed      = errors.New("video already claimed for processing")
	ErrTranscriptionExists = errors.New("transcription already exists for this language")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrInvalidSource       = errors.New("invalid media source")
	ErrFileTooLarge        = errors.New("file too large")
)
