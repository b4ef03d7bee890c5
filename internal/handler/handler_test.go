package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/majupersonalizados/briefing/internal/ctxkeys"
	"github.com/majupersonalizados/briefing/internal/model"
	"github.com/majupersonalizados/briefing/internal/wizard"
)

const testBaseURL = "https://files.example.com/briefing-files"

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	block   chan struct{}
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (m *memStorage) Save(ctx context.Context, key string, body io.Reader, contentType string) error {
	if m.block != nil {
		<-m.block
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStorage) PublicURL(key string) string {
	return testBaseURL + "/" + key
}

func (m *memStorage) KeyFromURL(u string) (string, bool) {
	if !strings.HasPrefix(u, testBaseURL+"/") {
		return "", false
	}
	return strings.TrimPrefix(u, testBaseURL+"/"), true
}

type fakeSubmitter struct {
	mu        sync.Mutex
	submitted []*model.Briefing
	err       error
}

func (f *fakeSubmitter) Submit(ctx context.Context, draft *model.Briefing) (*model.Briefing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	draft.ID = int64(len(f.submitted) + 1)
	f.submitted = append(f.submitted, draft)
	return draft, nil
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submitted)
}

func newTestStore(st *memStorage, sub *fakeSubmitter) *wizard.Store {
	return wizard.NewStore(wizard.Deps{
		Storage:   st,
		Submitter: sub,
		Timing: wizard.Timing{
			Tick:      time.Millisecond,
			Increment: func() float64 { return 25 },
		},
	}, time.Hour)
}

// withFlow attaches the flow stored under id, the way LoadBriefing does.
func withFlow(r *http.Request, store *wizard.Store, id string) *http.Request {
	id, flow := store.Get(id)
	return r.WithContext(ctxkeys.WithFlow(r.Context(), id, flow))
}

func htmx(r *http.Request) *http.Request {
	r.Header.Set("HX-Request", "true")
	return r
}

func formRequest(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

var errBoom = errors.New("boom")
