package websocket

import (
	"context"
	"strings"
	"testing"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

type stubSessions struct {
	tokens map[string]int32
}

func (s *stubSessions) ValidateToken(_ context.Context, token string) (*domain.Session, error) {
	if id, ok := s.tokens[token]; ok {
		return &domain.Session{UserID: id}, nil
	}
	return nil, domain.ErrSessionNotFound
}

type stubJWT struct {
	subjects map[string]int32
}

func (s *stubJWT) ResolveToken(_ context.Context, token string) (int32, error) {
	if id, ok := s.subjects[token]; ok {
		return id, nil
	}
	return 0, domain.ErrUserNotFound
}

func isSession(token string) bool {
	return strings.HasPrefix(token, "ffs_")
}

func TestSessionTokenValidator(t *testing.T) {
	v := NewSessionTokenValidator(&stubSessions{tokens: map[string]int32{"ffs_good": 7}}, isSession, nil)

	tests := []struct {
		name    string
		token   string
		want    int32
		wantErr bool
	}{
		{"valid session", "ffs_good", 7, false},
		{"padded session", "  ffs_good ", 7, false},
		{"unknown session", "ffs_bad", 0, true},
		{"empty", "", 0, true},
		{"jwt without provider", "eyJhbGciOi.x.y", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateToken(context.Background(), tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSessionTokenValidator_WithJWT(t *testing.T) {
	v := NewSessionTokenValidator(
		&stubSessions{tokens: map[string]int32{"ffs_good": 7}},
		isSession,
		&stubJWT{subjects: map[string]int32{"eyJ.good.sig": 9}},
	)

	got, err := v.ValidateToken(context.Background(), "eyJ.good.sig")
	assert.NoError(t, err)
	assert.Equal(t, int32(9), got)

	_, err = v.ValidateToken(context.Background(), "eyJ.bad.sig")
	assert.ErrorIs(t, err, ErrInvalidToken)

	got, err = v.ValidateToken(context.Background(), "ffs_good")
	assert.NoError(t, err)
	assert.Equal(t, int32(7), got, "session tokens never reach the JWT resolver")
}
