package sqlite

import (
	"context"

	"github.com/mayur-driod/FloodWatch/internal/auth/domain"
)

type identitiesRepo struct {
	q dbtx
}

const identityColumns = `id, user_id, provider, subject_id, access_token, refresh_token, session_state, created_at, updated_at`

func (r *identitiesRepo) GetByProviderSubject(ctx context.Context, provider, subjectID string) (domain.ExternalIdentity, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+identityColumns+`
		 FROM external_identities WHERE provider = ? AND subject_id = ?`,
		provider, subjectID)

	var ident domain.ExternalIdentity
	err := row.Scan(
		&ident.ID,
		&ident.UserID,
		&ident.Provider,
		&ident.SubjectID,
		&ident.AccessToken,
		&ident.RefreshToken,
		&ident.SessionState,
		&ident.CreatedAt,
		&ident.UpdatedAt,
	)
	if err != nil {
		return domain.ExternalIdentity{}, mapErr(err)
	}
	return ident, nil
}

func (r *identitiesRepo) Create(ctx context.Context, ident domain.ExternalIdentity) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO external_identities
		   (id, user_id, provider, subject_id, access_token, refresh_token, session_state)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ident.ID,
		ident.UserID,
		ident.Provider,
		ident.SubjectID,
		ident.AccessToken,
		ident.RefreshToken,
		ident.SessionState,
	)
	return mapErr(err)
}

func (r *identitiesRepo) UpdateTokens(ctx context.Context, provider, subjectID, accessToken, refreshToken, sessionState string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE external_identities
		 SET access_token = ?, refresh_token = ?, session_state = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE provider = ? AND subject_id = ?`,
		accessToken, refreshToken, sessionState, provider, subjectID)
	return mapErr(err)
}

func (r *identitiesRepo) ListByUser(ctx context.Context, userID string) ([]domain.ExternalIdentity, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+identityColumns+`
		 FROM external_identities WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var idents []domain.ExternalIdentity
	for rows.Next() {
		var ident domain.ExternalIdentity
		if err := rows.Scan(
			&ident.ID,
			&ident.UserID,
			&ident.Provider,
			&ident.SubjectID,
			&ident.AccessToken,
			&ident.RefreshToken,
			&ident.SessionState,
			&ident.CreatedAt,
			&ident.UpdatedAt,
		); err != nil {
			return nil, mapErr(err)
		}
		idents = append(idents, ident)
	}
	return idents, mapErr(rows.Err())
}
