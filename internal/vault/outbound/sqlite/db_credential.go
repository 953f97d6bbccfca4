package sqlite

import (
	"context"
	"time"

	"github.com/shandysiswandi/credvault/internal/pkg/credential"
	"github.com/shandysiswandi/credvault/internal/pkg/goerror"
)

const credentialColumns = `id, object_ref, credential_type, password_hash, password_salt,
	algorithm, is_revoked, version, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

// Timestamps are stored as RFC 3339 text in UTC.
func scanCredential(row scanner) (*credential.Record, error) {
	var (
		rec                  credential.Record
		typ, hash            string
		createdAt, updatedAt string
	)
	err := row.Scan(&rec.ID, &rec.ObjectRef, &typ, &hash, &rec.Salt,
		&rec.Algorithm, &rec.Revoked, &rec.Version, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, err
	}

	rec.Type = credential.Type(typ)
	rec.Hash = []byte(hash)
	return &rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (s *DB) GetCredential(ctx context.Context, ref string, typ credential.Type) (_ *credential.Record, err error) {
	ctx, span := s.startSpan(ctx, "GetCredential")
	defer func() { s.endSpan(span, err) }()

	const query = `SELECT ` + credentialColumns + `
		FROM vault_credentials
		WHERE object_ref = ? AND credential_type = ?`

	rec, err := scanCredential(s.Reader.QueryRowContext(ctx, query, ref, string(typ)))
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}

	return rec, nil
}

func (s *DB) ListCredentialsByObject(ctx context.Context, ref string) (_ []credential.Record, err error) {
	ctx, span := s.startSpan(ctx, "ListCredentialsByObject")
	defer func() { s.endSpan(span, err) }()

	const query = `SELECT ` + credentialColumns + `
		FROM vault_credentials
		WHERE object_ref = ?
		ORDER BY credential_type`

	rows, err := s.Reader.QueryContext(ctx, query, ref)
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.Writer.ExecContext(ctx, query,
		rec.ID, rec.ObjectRef, string(rec.Type), string(rec.Hash), rec.Salt,
		rec.Algorithm, rec.Revoked, rec.Version, formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt))

	err = s.mapError(err)
	return err
}

func (s *DB) UpdateCredential(ctx context.Context, rec *credential.Record, expectVersion int64) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateCredential")
	defer func() { s.endSpan(span, err) }()

	const query = `UPDATE vault_credentials
		SET password_hash = ?, password_salt = ?, algorithm = ?, is_revoked = ?,
			version = ?, updated_at = ?
		WHERE object_ref = ? AND credential_type = ? AND version = ?`

	res, err := s.Writer.ExecContext(ctx, query,
		string(rec.Hash), rec.Salt, rec.Algorithm, rec.Revoked,
		rec.Version, formatTime(rec.UpdatedAt),
		rec.ObjectRef, string(rec.Type), expectVersion)
	if err != nil {
		err = s.mapError(err)
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = goerror.ErrConflict
		return err
	}

	return nil
}

func (s *DB) DeleteCredential(ctx context.Context, ref string, typ credential.Type) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteCredential")
	defer func() { s.endSpan(span, err) }()

	const query = `DELETE FROM vault_credentials WHERE object_ref = ? AND credential_type = ?`

	res, err := s.Writer.ExecContext(ctx, query, ref, string(typ))
	if err != nil {
		err = s.mapError(err)
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = goerror.ErrNotFound
		return err
	}

	return nil
}
