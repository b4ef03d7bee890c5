package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/majupersonalizados/briefing/internal/model"
)

var (
	ErrBriefingNotFound = errors.New("briefing not found")
)

type BriefingRepository interface {
	Create(ctx context.Context, briefing *model.Briefing) error
	ByID(ctx context.Context, id int64) (*model.Briefing, error)
	All(ctx context.Context) ([]*model.Briefing, error)
}

type briefingRepository struct {
	db *sqlx.DB
}

func NewBriefingRepository(db *sqlx.DB) BriefingRepository {
	return &briefingRepository{db: db}
}

// Create inserts the briefing in a single statement and fills in the
// assigned ID and creation time. There is no update path.
func (r *briefingRepository) Create(ctx context.Context, briefing *model.Briefing) error {
	createdAt := time.Now().UTC()

	query := `INSERT INTO briefings (company_name, contact_info, target_audience, slogans, prior_experience,
	                                 launch_event_date, files_link, visual_identity_files, logo_preference,
	                                 colors_typography, reference_links, expectations, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		briefing.CompanyName,
		briefing.ContactInfo,
		briefing.TargetAudience,
		briefing.Slogans,
		briefing.PriorExperience,
		briefing.LaunchEventDate,
		briefing.FilesLink,
		briefing.VisualIdentityFiles,
		briefing.LogoPreference,
		briefing.ColorsTypography,
		briefing.ReferenceLinks,
		briefing.Expectations,
		createdAt,
	).Scan(&id)
	if err != nil {
		return err
	}

	briefing.ID = id
	briefing.CreatedAt = createdAt
	return nil
}

func (r *briefingRepository) ByID(ctx context.Context, id int64) (*model.Briefing, error) {
	briefing := &model.Briefing{}
	query := `SELECT * FROM briefings WHERE id = $1`

	err := r.db.GetContext(ctx, briefing, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBriefingNotFound
	}
	if err != nil {
		return nil, err
	}

	return briefing, nil
}

// All returns every briefing, newest first.
func (r *briefingRepository) All(ctx context.Context) ([]*model.Briefing, error) {
	var briefings []*model.Briefing
	query := `SELECT * FROM briefings ORDER BY created_at DESC, id DESC`

	err := r.db.SelectContext(ctx, &briefings, query)
	if err != nil {
		return nil, err
	}

	return briefings, nil
}
