package service

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var ErrFetchFailed = errors.New("failed to fetch attachment")

var whitespace = regexp.MustCompile(`\s+`)

type ArchiveService struct {
	client *http.Client
}

// NewArchiveService builds the zip bundler. A zero timeout leaves fetches
// bounded only by the request context.
func NewArchiveService(timeout time.Duration) *ArchiveService {
	return &ArchiveService{
		client: &http.Client{Timeout: timeout},
	}
}

type archiveEntry struct {
	name string
	data []byte
}

// Bundle downloads every URL concurrently and writes them to w as a zip.
// Nothing is written unless all downloads succeed.
func (s *ArchiveService) Bundle(ctx context.Context, urls []string, w io.Writer) error {
	entries := make([]archiveEntry, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		g.Go(func() error {
			data, err := s.fetch(ctx, u)
			if err != nil {
				return fmt.Errorf("%w %d: %w", ErrFetchFailed, i+1, err)
			}
			entries[i] = archiveEntry{name: EntryName(u, i), data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		name := uniqueName(e.name, seen)
		f, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", name, err)
		}
		_, err = f.Write(e.data)
		if err != nil {
			return fmt.Errorf("failed to write %s to archive: %w", name, err)
		}
	}

	err := zw.Close()
	if err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}

	slog.Debug("archive built", "files", len(entries))
	return nil
}

func (s *ArchiveService) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// EntryName is the trailing path segment of the URL, or arquivo_<n> when empty.
func EntryName(rawURL string, index int) string {
	var name string
	if u, err := url.Parse(rawURL); err == nil {
		name = path.Base(u.Path)
	}
	if name == "" || name == "." || name == "/" {
		return fmt.Sprintf("arquivo_%d", index+1)
	}
	return name
}

// uniqueName suffixes repeated names so no entry shadows another.
func uniqueName(name string, seen map[string]int) string {
	n := seen[name]
	seen[name] = n + 1
	if n == 0 {
		return name
	}
	ext := path.Ext(name)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n+1, ext)
}

// ArchiveFilename names the bundle after the company, whitespace runs becoming "_".
func ArchiveFilename(companyName string) string {
	return "briefing_" + whitespace.ReplaceAllString(companyName, "_") + "_arquivos.zip"
}

// ContentDisposition returns an attachment header with an ASCII fallback
// filename plus the UTF-8 original.
func ContentDisposition(filename string) string {
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		asciiFilename(filename), url.PathEscape(filename))
}

func asciiFilename(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	for _, r := range stripped {
		if r > unicode.MaxASCII || r < 0x20 || r == '"' || r == '\\' {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
