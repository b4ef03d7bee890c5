package wizard

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/majupersonalizados/briefing/internal/metrics"
	"github.com/majupersonalizados/briefing/internal/model"
	"github.com/majupersonalizados/briefing/internal/storage"
)

const simulatedCap = 90

// File is an attachment read from the upload form.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func randomIncrement() float64 {
	return rand.Float64() * 10
}

// UploadAlert is the message shown when a file could not be stored.
func UploadAlert(name string) string {
	return fmt.Sprintf("Erro ao fazer upload de %s", name)
}

// Upload stores every file concurrently and returns once all have finished.
// Each file succeeds or fails on its own: a success appends its public URL
// to the draft, a failure only leaves an alert.
func (f *Flow) Upload(ctx context.Context, files []File) {
	<-f.StartUpload(ctx, files)
}

// StartUpload registers a task per file before returning, then uploads in
// the background. The returned channel closes when every file has finished.
func (f *Flow) StartUpload(ctx context.Context, files []File) <-chan struct{} {
	tasks := make([]*model.UploadTask, len(files))

	f.mu.Lock()
	for i, file := range files {
		tasks[i] = &model.UploadTask{ID: uuid.NewString(), Name: file.Name}
		f.uploads = append(f.uploads, tasks[i])
	}
	f.mu.Unlock()

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.uploadOne(ctx, tasks[i], file)
		}()
	}
	go func() {
		wg.Wait()
		close(done)
	}()

	return done
}

func (f *Flow) uploadOne(ctx context.Context, task *model.UploadTask, file File) {
	stop := make(chan struct{})
	stopped := make(chan struct{})
	go f.simulateProgress(task, stop, stopped)

	key := storage.NewKey(file.Name)
	err := f.deps.Storage.Save(ctx, key, bytes.NewReader(file.Data), file.ContentType)

	close(stop)
	<-stopped

	metrics.Uploads.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		slog.Error("attachment upload failed", "error", err, "name", file.Name)
		f.mu.Lock()
		f.alerts = append(f.alerts, UploadAlert(file.Name))
		f.removeTask(task.ID)
		f.mu.Unlock()
		return
	}

	publicURL := f.deps.Storage.PublicURL(key)
	slog.Info("attachment uploaded", "name", file.Name, "key", key, "bytes", len(file.Data))

	f.mu.Lock()
	task.Progress = 100
	f.draft.VisualIdentityFiles = append(f.draft.VisualIdentityFiles, publicURL)
	f.mu.Unlock()

	linger := time.NewTimer(f.deps.Timing.Linger)
	select {
	case <-linger.C:
	case <-ctx.Done():
		linger.Stop()
	}

	f.mu.Lock()
	f.removeTask(task.ID)
	f.mu.Unlock()
}

// simulateProgress nudges the task forward until stop closes. It never
// passes the cap, so only a finished upload shows 100.
func (f *Flow) simulateProgress(task *model.UploadTask, stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(f.deps.Timing.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			inc := f.deps.Timing.Increment()
			f.mu.Lock()
			task.Progress = min(task.Progress+max(inc, 0), simulatedCap)
			f.mu.Unlock()
		}
	}
}

// removeTask must be called with f.mu held.
func (f *Flow) removeTask(id string) {
	f.uploads = slices.DeleteFunc(f.uploads, func(t *model.UploadTask) bool {
		return t.ID == id
	})
}
