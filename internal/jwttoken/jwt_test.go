package jwttoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comptrack/internal/domain"
	dErrors "comptrack/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("test-signing-key")
	userID := uuid.New()

	token, err := svc.Generate(userID, domain.RoleSpecialist, time.Hour)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, string(domain.RoleSpecialist), claims.Role)
}

func TestValidate_WrongKey(t *testing.T) {
	token, err := NewService("key-one").Generate(uuid.New(), domain.RoleSuperAdmin, time.Hour)
	require.NoError(t, err)

	_, err = NewService("key-two").Validate(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidate_Expired(t *testing.T) {
	svc := NewService("test-signing-key")
	token, err := svc.Generate(uuid.New(), domain.RolePIC, -time.Minute)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
