package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ozytarget/invozy-backend/internal/db"
	"github.com/ozytarget/invozy-backend/internal/domain"
)

type SettingsRepository struct {
	DB *db.Postgres
}

func (r SettingsRepository) Get(ctx context.Context, ownerUserID int64) (*domain.Settings, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT owner_user_id, company_name, address, phone, email, logo_url, tax_id, currency_code, default_terms, updated_at
		FROM user_settings
		WHERE owner_user_id=$1
	`, ownerUserID)
	var s domain.Settings
	if err := row.Scan(
		&s.OwnerUserID, &s.CompanyName, &s.Address, &s.Phone, &s.Email,
		&s.LogoURL, &s.TaxID, &s.CurrencyCode, &s.DefaultTerms, &s.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r SettingsRepository) Save(ctx context.Context, s domain.Settings) (*domain.Settings, error) {
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO user_settings (owner_user_id, company_name, address, phone, email, logo_url, tax_id, currency_code, default_terms, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, now())
		ON CONFLICT (owner_user_id) DO UPDATE SET
			company_name=EXCLUDED.company_name,
			address=EXCLUDED.address,
			phone=EXCLUDED.phone,
			email=EXCLUDED.email,
			logo_url=EXCLUDED.logo_url,
			tax_id=EXCLUDED.tax_id,
			currency_code=EXCLUDED.currency_code,
			default_terms=EXCLUDED.default_terms,
			updated_at=now()
		RETURNING owner_user_id, company_name, address, phone, email, logo_url, tax_id, currency_code, default_terms, updated_at
	`, s.OwnerUserID, s.CompanyName, s.Address, s.Phone, s.Email, s.LogoURL, s.TaxID, s.CurrencyCode, s.DefaultTerms).Scan(
		&s.OwnerUserID, &s.CompanyName, &s.Address, &s.Phone, &s.Email,
		&s.LogoURL, &s.TaxID, &s.CurrencyCode, &s.DefaultTerms, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
