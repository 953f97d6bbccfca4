package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/credvault/internal/pkg/credential"
	"github.com/shandysiswandi/credvault/internal/pkg/goerror"
)

const credentialColumns = `id, object_ref, credential_type, password_hash, password_salt,
	algorithm, is_revoked, version, created_at, updated_at`

func scanCredential(row pgx.Row) (*credential.Record, error) {
	var (
		rec  credential.Record
		typ  string
		hash string
	)
	err := row.Scan(&rec.ID, &rec.ObjectRef, &typ, &hash, &rec.Salt,
		&rec.Algorithm, &rec.Revoked, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rec.Type = credential.Type(typ)
	rec.Hash = []byte(hash)
	return &rec, nil
}

func (s *DB) GetCredential(ctx context.Context, ref string, typ credential.Type) (_ *credential.Record, err error) {
	ctx, span := s.startSpan(ctx, "GetCredential")
	defer func() { s.endSpan(span, err) }()

	const query = `SELECT ` + credentialColumns + `
		FROM vault_credentials
		WHERE object_ref = $1 AND credential_type = $2`

	rec, err := scanCredential(s.conn.QueryRow(ctx, query, ref, string(typ)))
	if err != nil {
		return nil, s.mapError(err)
	}

	return rec, nil
}

func (s *DB) ListCredentialsByObject(ctx context.Context, ref string) (_ []credential.Record, err error) {
	ctx, span := s.startSpan(ctx, "ListCredentialsByObject")
	defer func() { s.endSpan(span, err) }()

	const query = `SELECT ` + credentialColumns + `
		FROM vault_credentials
		WHERE object_ref = $1
		ORDER BY credential_type`

	rows, err := s.conn.Query(ctx, query, ref)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var out []credential.Record
	for rows.Next() {
		rec, err := scanCredential(rows)
		if err != nil {
			return nil, s.mapError(err)
		}
		out = append(out, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}

func (s *DB) CreateCredential(ctx context.Context, rec *credential.Record) (err error) {
	ctx, span := s.startSpan(ctx, "CreateCredential")
	defer func() { s.endSpan(span, err) }()

	const query = `INSERT INTO vault_credentials (` + credentialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = s.conn.Exec(ctx, query,
		rec.ID, rec.ObjectRef, string(rec.Type), string(rec.Hash), rec.Salt,
		rec.Algorithm, rec.Revoked, rec.Version, rec.CreatedAt, rec.UpdatedAt)

	err = s.mapError(err)
	return err
}

// UpdateCredential writes the secret columns and revocation together. A row
// that moved past expectVersion reports goerror.ErrConflict.
func (s *DB) UpdateCredential(ctx context.Context, rec *credential.Record, expectVersion int64) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateCredential")
	defer func() { s.endSpan(span, err) }()

	const query = `UPDATE vault_credentials
		SET password_hash = $1, password_salt = $2, algorithm = $3, is_revoked = $4,
			version = $5, updated_at = $6
		WHERE object_ref = $7 AND credential_type = $8 AND version = $9`

	tag, err := s.conn.Exec(ctx, query,
		string(rec.Hash), rec.Salt, rec.Algorithm, rec.Revoked,
		rec.Version, rec.UpdatedAt,
		rec.ObjectRef, string(rec.Type), expectVersion)
	if err != nil {
		err = s.mapError(err)
		return err
	}

	if tag.RowsAffected() == 0 {
		err = goerror.ErrConflict
		return err
	}

	return nil
}

func (s *DB) DeleteCredential(ctx context.Context, ref string, typ credential.Type) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteCredential")
	defer func() { s.endSpan(span, err) }()

	const query = `DELETE FROM vault_credentials WHERE object_ref = $1 AND credential_type = $2`

	tag, err := s.conn.Exec(ctx, query, ref, string(typ))
	if err != nil {
		err = s.mapError(err)
		return err
	}

	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
		return err
	}

	return nil
}
