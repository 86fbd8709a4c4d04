package domain

import "errors"

var (
	ErrUnknownDocumentType = errors.New("unknown document type")
	ErrPrimaryLayerFailed  = errors.New("primary extraction layer failed")
	ErrEmptyDocument       = errors.New("document has no bytes or reference")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)
