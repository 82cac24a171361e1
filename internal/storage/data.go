package storage

// Persistence

type WriteResult struct {
	docID       string // identity (filename without extension)
	path        string
	contentHash string
}

func NewWriteResult(
	docID string,
	path string,
	contentHash string,
) WriteResult {
	return WriteResult{
		docID:       docID,
		path:        path,
		contentHash: contentHash,
	}
}

func (w *WriteResult) DocID() string {
	return w.docID
}

func (w *WriteResult) Path() string {
	return w.path
}

func (w *WriteResult) ContentHash() string {
	return w.contentHash
}
