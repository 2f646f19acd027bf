package excel

import (
	"context"
	"sync"

	"creditwatch/domain/dataset"
	"creditwatch/ports"
)

// FileReferenceProvider serves the reference batch from a file and
// delegates the current window to another provider (the prediction log).
// The file is read once and cached.
type FileReferenceProvider struct {
	reader   *BatchReader
	fallback ports.BatchProvider

	once      sync.Once
	reference *dataset.Batch
	readErr   error
}

// NewFileReferenceProvider wraps a provider with a file-pinned reference
func NewFileReferenceProvider(filePath string, fallback ports.BatchProvider) *FileReferenceProvider {
	return &FileReferenceProvider{
		reader:   NewBatchReader(filePath),
		fallback: fallback,
	}
}

// Reference returns the batch loaded from the file
func (p *FileReferenceProvider) Reference(ctx context.Context) (*dataset.Batch, error) {
	p.once.Do(func() {
		p.reference, p.readErr = p.reader.Read()
	})
	return p.reference, p.readErr
}

// Current delegates to the wrapped provider
func (p *FileReferenceProvider) Current(ctx context.Context) (*dataset.Batch, error) {
	return p.fallback.Current(ctx)
}
