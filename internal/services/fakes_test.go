package services

import (
	"context"
	"errors"
	"sync"

	"github.com/beamlak/srts/internal/models"
)

// fakeClient is an in-memory client.Client
type fakeClient struct {
	mu         sync.Mutex
	items      []models.IndexItem
	searchErr  error
	fetched    map[string]*models.DownloadResult
	fetchErr   error
	fetchCalls int
	queries    []string
}

func (f *fakeClient) SearchByQuery(ctx context.Context, query string) ([]models.IndexItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.items, nil
}

func (f *fakeClient) Fetch(_ context.Context, rawURL string) (*models.DownloadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	res, ok := f.fetched[rawURL]
	if !ok {
		return nil, errors.New("no fixture for " + rawURL)
	}
	return res, nil
}

// fakeStore is an in-memory storage.HistoryStore
type fakeStore struct {
	records   []models.HistoryRecord
	insertErr error
	listErr   error
	nextID    int64
}

func (s *fakeStore) Insert(_ context.Context, rec *models.HistoryRecord) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.nextID++
	rec.ID = s.nextID
	s.records = append(s.records, *rec)
	return nil
}

func (s *fakeStore) List(_ context.Context) ([]models.HistoryRecord, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.HistoryRecord, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

func (s *fakeStore) Ping(context.Context) error { return nil }

func (s *fakeStore) Close() error { return nil }
