/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/flamego/session"
	"github.com/jackc/pgx/v5"
)

// DefaultSessionLifetime is how long an idle wizard session is kept.
const DefaultSessionLifetime = 24 * time.Hour

// SessionStoreConfig configures the PostgreSQL wizard session store.
type SessionStoreConfig struct {
	// Lifetime is the idle time before a session expires.
	Lifetime time.Duration
	// Encoder defaults to session.GobEncoder.
	Encoder session.Encoder
	// Decoder defaults to session.GobDecoder.
	Decoder session.Decoder
}

// SessionStore keeps wizard sessions in the wizard_sessions table so
// partially completed assessments survive restarts.
type SessionStore struct {
	lifetime time.Duration
	encoder  session.Encoder
	decoder  session.Decoder
}

// SessionIniter returns the session.Initer for SessionStore. It accepts an
// optional SessionStoreConfig.
func SessionIniter() session.Initer {
	return func(_ context.Context, args ...interface{}) (session.Store, error) {
		var config SessionStoreConfig
		if len(args) > 0 {
			var ok bool
			config, ok = args[0].(SessionStoreConfig)
			if !ok {
				return nil, fmt.Errorf("%w: got %T", ErrInvalidSessionConfig, args[0])
			}
		}

		if config.Lifetime <= 0 {
			config.Lifetime = DefaultSessionLifetime
		}
		if config.Encoder == nil {
			config.Encoder = session.GobEncoder
		}
		if config.Decoder == nil {
			config.Decoder = session.GobDecoder
		}

		return &SessionStore{
			lifetime: config.Lifetime,
			encoder:  config.Encoder,
			decoder:  config.Decoder,
		}, nil
	}
}

// The session middleware writes the cookie itself.
func noopIDWriter(http.ResponseWriter, *http.Request, string) {}

// Exist reports whether an unexpired session with sid is stored.
func (s *SessionStore) Exist(ctx context.Context, sid string) bool {
	if pool == nil {
		return false
	}

	var exists bool
	err := pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM wizard_sessions WHERE id = $1 AND expires_at > NOW())`,
		sid,
	).Scan(&exists)

	return err == nil && exists
}

// Read loads the session with sid, or returns an empty one when it is
// missing, expired or undecodable.
func (s *SessionStore) Read(ctx context.Context, sid string) (session.Session, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	var data []byte
	err := pool.QueryRow(ctx,
		`SELECT data FROM wizard_sessions WHERE id = $1 AND expires_at > NOW()`,
		sid,
	).Scan(&data)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	if len(data) == 0 {
		return session.NewBaseSession(sid, s.encoder, noopIDWriter), nil
	}

	values, err := s.decoder(data)
	if err != nil {
		logger.Warn("Discarding undecodable session", "error", err)
		return session.NewBaseSession(sid, s.encoder, noopIDWriter), nil
	}

	return session.NewBaseSessionWithData(sid, s.encoder, noopIDWriter, values), nil
}

// Destroy removes the session with sid.
func (s *SessionStore) Destroy(ctx context.Context, sid string) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	if _, err := pool.Exec(ctx, `DELETE FROM wizard_sessions WHERE id = $1`, sid); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}

	return nil
}

// Touch extends the expiry of the session with sid.
func (s *SessionStore) Touch(ctx context.Context, sid string) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	_, err := pool.Exec(ctx,
		`UPDATE wizard_sessions SET expires_at = $1 WHERE id = $2`,
		time.Now().Add(s.lifetime), sid,
	)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}

	return nil
}

// Save upserts the encoded session.
func (s *SessionStore) Save(ctx context.Context, sess session.Session) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	data, err := sess.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO wizard_sessions (id, data, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			data = EXCLUDED.data,
			expires_at = EXCLUDED.expires_at`,
		sess.ID(), data, time.Now().Add(s.lifetime),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// GC deletes expired sessions.
func (s *SessionStore) GC(ctx context.Context) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	tag, err := pool.Exec(ctx, `DELETE FROM wizard_sessions WHERE expires_at < NOW()`)
	if err != nil {
		return fmt.Errorf("failed to collect sessions: %w", err)
	}

	if n := tag.RowsAffected(); n > 0 {
		logger.Debug("Removed expired sessions", "count", n)
	}

	return nil
}
