package service

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/majupersonalizados/briefing/internal/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrPageNotFound = errors.New("page not found")

type LegalPage struct {
	Title       string
	Slug        string
	Content     string
	LastUpdated string
}

// LegalService serves the privacy notice and similar pages from markdown
// files under legal/ in the content filesystem.
type LegalService struct {
	contentFS fs.FS
	reload    bool
	parser    *markdown.Parser

	mu    sync.RWMutex
	pages map[string]*LegalPage
}

// NewLegalService reads pages from contentFS. With reload set every Page
// call re-reads the files, which is what development wants.
func NewLegalService(contentFS fs.FS, reload bool) *LegalService {
	return &LegalService{
		contentFS: contentFS,
		reload:    reload,
		parser:    markdown.NewParser(),
		pages:     make(map[string]*LegalPage),
	}
}

func (s *LegalService) LoadPages() error {
	files, err := fs.ReadDir(s.contentFS, "legal")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read legal directory: %w", err)
	}

	pages := make(map[string]*LegalPage, len(files))
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".md") {
			continue
		}

		slug := strings.TrimSuffix(file.Name(), ".md")
		page, err := s.loadPage(slug)
		if err != nil {
			return fmt.Errorf("failed to load page %s: %w", slug, err)
		}

		pages[slug] = page
	}

	s.mu.Lock()
	s.pages = pages
	s.mu.Unlock()
	return nil
}

func (s *LegalService) loadPage(slug string) (*LegalPage, error) {
	content, err := fs.ReadFile(s.contentFS, path.Join("legal", slug+".md"))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	html, meta, err := s.parser.ParseWithFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markdown: %w", err)
	}

	title, _ := meta["title"].(string)
	if title == "" {
		title = cases.Title(language.BrazilianPortuguese).String(strings.ReplaceAll(slug, "-", " "))
	}

	var lastUpdated string
	dateValue, ok := meta["lastUpdated"]
	if ok {
		lastUpdated = parseDate(dateValue)
	}

	return &LegalPage{
		Title:       title,
		Slug:        slug,
		Content:     string(html),
		LastUpdated: lastUpdated,
	}, nil
}

func (s *LegalService) Page(slug string) (*LegalPage, error) {
	if s.reload {
		err := s.LoadPages()
		if err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	page, ok := s.pages[slug]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, slug)
	}

	return page, nil
}

var monthsPT = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// longDatePT formats t as "10 de janeiro de 2026".
func longDatePT(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthsPT[t.Month()-1], t.Year())
}

// parseDate accepts the date shapes frontmatter authors tend to write.
func parseDate(value any) string {
	var dateStr string

	switch v := value.(type) {
	case string:
		dateStr = v
	case time.Time:
		return longDatePT(v)
	default:
		return ""
	}

	formats := []string{
		"2006-01-02",
		"2006/01/02",
		"02/01/2006",
		time.RFC3339,
	}

	for _, format := range formats {
		t, err := time.Parse(format, dateStr)
		if err == nil {
			return longDatePT(t)
		}
	}

	return dateStr
}
