package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgimportdoc/pkg/pgimportdoc"
)

// Session is the pgx-backed implementation of pgimportdoc.Session.
//
// It pins one connection from the pool for its whole lifetime, so that
// session-scoped state (SET client_encoding) applies to the command executed
// afterwards.
type Session struct {
	pool   *pgxpool.Pool
	conn   *pgxpool.Conn
	closed bool
}

var _ pgimportdoc.Session = (*Session)(nil)

// NewSession acquires a dedicated connection from the pool. On failure the
// pool is closed before returning; the caller never owns a half-open session.
func NewSession(ctx context.Context, pool *pgxpool.Pool) (*Session, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to acquire connection: %v: %w", err, pgimportdoc.ErrConnectionFailed)
	}
	return &Session{pool: pool, conn: conn}, nil
}

// SetClientEncoding issues SET client_encoding TO <encoding> on the pinned
// connection and returns the server's command tag.
func (s *Session) SetClientEncoding(ctx context.Context, encoding string) (string, error) {
	sql := "SET client_encoding TO " + pgx.Identifier{encoding}.Sanitize()
	tag, err := s.conn.Exec(ctx, sql)
	if err != nil {
		return "", wrapServerError("set client encoding", err)
	}
	return tag.String(), nil
}

// ExecDocument runs the command with the single bound parameter, using the
// extended query protocol directly so the parameter travels with an explicit
// type OID and wire format. Results are requested in text format for
// printing.
func (s *Session) ExecDocument(ctx context.Context, command string, param pgimportdoc.BoundParameter) (pgimportdoc.ExecutionResult, error) {
	var paramOIDs []uint32
	if param.OID != 0 {
		paramOIDs = []uint32{param.OID}
	}

	rr := s.conn.Conn().PgConn().ExecParams(
		ctx,
		command,
		[][]byte{param.Value},
		paramOIDs,
		[]int16{param.WireFormat},
		[]int16{pgtype.TextFormatCode},
	)
	res := rr.Read()
	if res.Err != nil {
		return pgimportdoc.ExecutionResult{}, wrapServerError("execute command", res.Err)
	}

	result := pgimportdoc.ExecutionResult{
		Status:       res.CommandTag.String(),
		RowsReturned: len(res.FieldDescriptions) > 0,
		RowCount:     len(res.Rows),
		ColumnCount:  len(res.FieldDescriptions),
	}

	if result.RowCount > 0 && result.ColumnCount > 0 {
		// nil marks a SQL NULL in the first column of the first row
		if value := res.Rows[0][0]; value != nil {
			result.Value = string(value)
			result.HasValue = true
		}
	}

	return result, nil
}

// Close releases the pinned connection and the pool. Idempotent.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.conn.Release()
	s.pool.Close()
}

// wrapServerError surfaces the server's error text, with SQLSTATE and
// severity when the failure carries a structured PostgreSQL error.
func wrapServerError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %s (SQLSTATE %s): %s: %w",
			op, pgErr.Severity, pgErr.Code, pgErr.Message, pgimportdoc.ErrExecutionFailed)
	}
	return fmt.Errorf("%s: %v: %w", op, err, pgimportdoc.ErrExecutionFailed)
}
