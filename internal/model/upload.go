package model

// UploadTask tracks one in-flight attachment upload. Never persisted.
type UploadTask struct {
	ID       string
	Name     string
	Progress float64 // 0-100, never decreases
}

// Percent returns the progress rounded down for display.
func (t UploadTask) Percent() int {
	return int(t.Progress)
}
