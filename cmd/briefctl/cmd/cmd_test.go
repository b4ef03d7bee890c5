package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/majupersonalizados/briefing/internal/db"
	"github.com/majupersonalizados/briefing/internal/model"
	"github.com/majupersonalizados/briefing/internal/repository"
	"github.com/majupersonalizados/briefing/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordCmd(t *testing.T) {
	t.Run("argument", func(t *testing.T) {
		var out bytes.Buffer
		c := HashPasswordCmd()
		c.SetOut(&out)
		c.SetArgs([]string{"bordado-rosa-2026"})

		require.NoError(t, c.Execute())
		hash := strings.TrimSpace(out.String())
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("bordado-rosa-2026")))
	})

	t.Run("stdin", func(t *testing.T) {
		var out bytes.Buffer
		c := HashPasswordCmd()
		c.SetOut(&out)
		c.SetIn(strings.NewReader("linha-de-entrada-42\n"))
		c.SetArgs([]string{})

		require.NoError(t, c.Execute())
		hash := strings.TrimSpace(out.String())
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("linha-de-entrada-42")))
	})

	t.Run("weak", func(t *testing.T) {
		c := HashPasswordCmd()
		c.SetOut(&bytes.Buffer{})
		c.SetErr(&bytes.Buffer{})
		c.SetArgs([]string{"curta"})
		assert.ErrorIs(t, c.Execute(), validation.ErrPasswordTooShort)

		var out bytes.Buffer
		c = HashPasswordCmd()
		c.SetOut(&out)
		c.SetArgs([]string{"--allow-weak", "curta"})
		require.NoError(t, c.Execute())
		assert.NotEmpty(t, strings.TrimSpace(out.String()))
	})

	t.Run("empty", func(t *testing.T) {
		c := HashPasswordCmd()
		c.SetOut(&bytes.Buffer{})
		c.SetErr(&bytes.Buffer{})
		c.SetIn(strings.NewReader(""))
		c.SetArgs([]string{})

		assert.ErrorIs(t, c.Execute(), errEmptyPassword)
	})
}

func TestExportBriefings(t *testing.T) {
	conn, err := db.Init("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.RunMigrations(conn.DB, "sqlite"))

	repo := repository.NewBriefingRepository(conn)
	ctx := context.Background()

	var out bytes.Buffer
	n, err := exportBriefings(ctx, repo, &out)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.JSONEq(t, "[]", out.String())

	b := model.NewBriefing()
	b.CompanyName = "Maju"
	b.ContactInfo = model.ContactInfo{Name: "Ana", Email: "ana@example.com", Phone: "1"}
	require.NoError(t, repo.Create(ctx, b))

	out.Reset()
	n, err = exportBriefings(ctx, repo, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Maju", got[0]["companyName"])
}

type failingRepo struct{ repository.BriefingRepository }

func (failingRepo) All(context.Context) ([]*model.Briefing, error) {
	return nil, errors.New("connection refused")
}

func TestExportBriefings_Error(t *testing.T) {
	var out bytes.Buffer
	_, err := exportBriefings(context.Background(), failingRepo{}, &out)
	assert.ErrorContains(t, err, "connection refused")
	assert.Zero(t, out.Len())
}

func TestIsUpToDate(t *testing.T) {
	assert.False(t, isUpToDate("does/not/exist.css", nil))
}
