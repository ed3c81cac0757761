package vectorstore

import "go.uber.org/zap"

// NewMemoryIndex creates an in-memory index for testing.
// Caller must close both the index and the backend when done.
func NewMemoryIndex() (*Index, *Backend, error) {
	backend, err := OpenBackend("", true, zap.NewNop())
	if err != nil {
		return nil, nil, err
	}

	index, err := NewIndex(backend, zap.NewNop())
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	return index, backend, nil
}
