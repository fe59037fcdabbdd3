package services

import (
	"testing"

	"feedgram/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService(t *testing.T) {
	f := newFixture(t)

	t.Run("Register", func(t *testing.T) {
		tests := []struct {
			name     string
			username string
			password string
			wantErr  error
		}{
			{"valid", "carol", "correct horse", nil},
			{"short password", "dave", "short", ErrInvalid},
			{"short username", "ed", "long enough", ErrInvalid},
			{"bad characters", "frank!", "long enough", ErrInvalid},
			{"duplicate", "carol", "another one", repositories.ErrDuplicate},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				user, err := f.userSvc.Register(tt.username, tt.password)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
					return
				}
				require.NoError(t, err)
				assert.NotZero(t, user.ID)
				assert.NotEqual(t, tt.password, user.PasswordHash)
			})
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		user, err := f.userSvc.Authenticate("carol", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, "carol", user.Username)

		_, err = f.userSvc.Authenticate("carol", "wrong horse")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = f.userSvc.Authenticate("nobody", "correct horse")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("GetUser", func(t *testing.T) {
		user, err := f.userSvc.Authenticate("carol", "correct horse")
		require.NoError(t, err)
		got, err := f.userSvc.GetUser(user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Username, got.Username)
	})
}
