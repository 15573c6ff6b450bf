package usecase

import (
	"bytes"
	"context"
	"io"

	"github.com/kirillkom/legal-intel/internal/core/domain"
)

type statusCall struct {
	status domain.DocumentStatus
	errMsg string
}

type repoFake struct {
	docs          []domain.Document
	doc           *domain.Document
	created       []*domain.Document
	getErr        error
	listErr       error
	createErr     error
	saveErr       error
	statusErr     error
	failStatusErr error
	countErr      error
	counts        map[string]int
	statusCalls   []statusCall
	savedMetaID   string
	savedMeta     domain.Metadata
	deleted       []string
}

func (f *repoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, doc)
	return nil
}

func (f *repoFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	copyDoc := *f.doc
	return &copyDoc, nil
}

func (f *repoFake) List(_ context.Context, limit, offset int) ([]domain.Document, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if offset >= len(f.docs) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.docs) {
		end = len(f.docs)
	}
	return f.docs[offset:end], nil
}

func (f *repoFake) ListByStatus(_ context.Context, status domain.DocumentStatus) ([]domain.Document, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Document
	for _, doc := range f.docs {
		if doc.Status == status {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *repoFake) UpdateStatus(_ context.Context, _ string, status domain.DocumentStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, statusCall{status: status, errMsg: errMessage})
	if status == domain.StatusFailed && f.failStatusErr != nil {
		return f.failStatusErr
	}
	if f.statusErr != nil {
		return f.statusErr
	}
	return nil
}

func (f *repoFake) CompleteWithMetadata(_ context.Context, id string, meta domain.Metadata) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedMetaID = id
	f.savedMeta = meta
	return nil
}

func (f *repoFake) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *repoFake) CountByStatus(context.Context) (map[string]int, error) {
	if f.countErr != nil {
		return nil, f.countErr
	}
	return f.counts, nil
}

type storageFake struct {
	saveErr     error
	keys        []string
	deletedKeys []string
	data        map[string][]byte
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if f.data == nil {
		f.data = map[string][]byte{}
	}
	f.keys = append(f.keys, key)
	f.data[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data[key])), nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	f.deletedKeys = append(f.deletedKeys, key)
	return nil
}

type queueFake struct {
	publishErr error
	published  []string
}

func (f *queueFake) PublishDocumentUploaded(_ context.Context, documentID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *queueFake) SubscribeDocumentUploaded(context.Context, func(context.Context, string) error) error {
	return nil
}

type textExtractorFake struct {
	text string
	err  error
}

func (f *textExtractorFake) Extract(context.Context, *domain.Document) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type metadataExtractorFake struct {
	meta domain.Metadata
	err  error
}

func (f *metadataExtractorFake) ExtractMetadata(context.Context, string, string) (domain.Metadata, error) {
	if f.err != nil {
		return domain.Metadata{}, f.err
	}
	return f.meta, nil
}
