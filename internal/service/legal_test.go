package service

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegalService_Page(t *testing.T) {
	contentFS := fstest.MapFS{
		"legal/privacidade.md": {Data: []byte("---\ntitle: Política de Privacidade\nlastUpdated: \"2026-01-10\"\n---\nUsamos seus dados apenas para o briefing.\n")},
		"legal/termos-de-uso.md": {Data: []byte("Termos.\n")},
		"legal/notes.txt":        {Data: []byte("ignored")},
	}

	s := NewLegalService(contentFS, false)
	require.NoError(t, s.LoadPages())

	page, err := s.Page("privacidade")
	require.NoError(t, err)
	assert.Equal(t, "Política de Privacidade", page.Title)
	assert.Equal(t, "10 de janeiro de 2026", page.LastUpdated)
	assert.Contains(t, page.Content, "Usamos seus dados")

	page, err = s.Page("termos-de-uso")
	require.NoError(t, err)
	assert.Equal(t, "Termos De Uso", page.Title)
	assert.Empty(t, page.LastUpdated)

	_, err = s.Page("notes")
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestLegalService_MissingDirectory(t *testing.T) {
	s := NewLegalService(fstest.MapFS{}, true)

	_, err := s.Page("privacidade")
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestLegalService_Reload(t *testing.T) {
	contentFS := fstest.MapFS{
		"legal/privacidade.md": {Data: []byte("v1")},
	}
	s := NewLegalService(contentFS, true)

	page, err := s.Page("privacidade")
	require.NoError(t, err)
	assert.Contains(t, page.Content, "v1")

	contentFS["legal/privacidade.md"] = &fstest.MapFile{Data: []byte("v2")}
	page, err = s.Page("privacidade")
	require.NoError(t, err)
	assert.Contains(t, page.Content, "v2")
}

func TestParseDate(t *testing.T) {
	assert.Equal(t, "5 de março de 2026", parseDate("2026-03-05"))
	assert.Equal(t, "5 de março de 2026", parseDate("05/03/2026"))
	assert.Equal(t, "5 de março de 2026", parseDate(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "em breve", parseDate("em breve"))
	assert.Equal(t, "", parseDate(42))
}
