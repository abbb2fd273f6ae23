package repository

import (
	"context"
	"database/sql"

	"slotwise/core/database"
	"slotwise/core/logger"
	"slotwise/modules/provider/entity"
)

type CredentialRepository interface {
	GetByCalendarID(ctx context.Context, calendarID string) (*entity.CalendarCredential, error)
	Upsert(ctx context.Context, cred *entity.CalendarCredential) error
}

type credentialRepository struct {
	db database.IDatabase
}

func NewCredentialRepository(db database.IDatabase) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) GetByCalendarID(ctx context.Context, calendarID string) (*entity.CalendarCredential, error) {
	query := `
		SELECT calendar_id, access_token, refresh_token, token_expires_at, created_at, updated_at
		FROM calendar_credentials WHERE calendar_id = $1
	`

	var cred entity.CalendarCredential
	err := r.db.GetContext(ctx, &cred, query, calendarID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("CredentialRepository:GetByCalendarID", err)
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) Upsert(ctx context.Context, cred *entity.CalendarCredential) error {
	query := `
		INSERT INTO calendar_credentials (calendar_id, access_token, refresh_token, token_expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (calendar_id) DO UPDATE
		SET access_token = $2, refresh_token = $3, token_expires_at = $4, updated_at = NOW()
	`

	err := r.db.ExecContext(ctx, query,
		cred.CalendarID, cred.AccessToken, cred.RefreshToken, cred.TokenExpiresAt)
	if err != nil {
		logger.Error("CredentialRepository:Upsert", err)
		return err
	}
	return nil
}
