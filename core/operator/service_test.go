package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/mahudhurio/core"
)

func testService(t *testing.T, username, password string) Verifier {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}
	conf := &core.Config{}
	conf.Operator.Username = username
	conf.Operator.PasswordHash = hash
	return NewService(conf)
}

func TestService_Verify(t *testing.T) {
	svc := testService(t, "Prof.Moyo", "s3cr3t-pass")

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "valid credentials", username: "prof.moyo", password: "s3cr3t-pass"},
		{name: "username is case-insensitive", username: " PROF.MOYO ", password: "s3cr3t-pass"},
		{name: "wrong password", username: "prof.moyo", password: "wrong", wantErr: ErrBadCredentials},
		{name: "unknown username", username: "someone.else", password: "s3cr3t-pass", wantErr: ErrBadCredentials},
		{name: "empty password", username: "prof.moyo", password: "", wantErr: ErrBadCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := svc.Verify(tt.username, tt.password)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				assert.Empty(t, op.Username)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "prof.moyo", op.Username)
		})
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cr3t-pass")
	assert.NoError(t, err)
	assert.NotEqual(t, "s3cr3t-pass", hash)

	// hashes are salted; two calls never collide
	hash2, err := HashPassword("s3cr3t-pass")
	assert.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}
