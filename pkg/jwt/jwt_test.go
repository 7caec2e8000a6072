package jwt_test

import (
	"testing"

	"github.com/jhoicas/stockledger/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	id := jwt.Identity{UserID: "u-1", TenantID: "t-1", Role: "planner"}
	token, err := jwt.Generate("secreto", "stockledger", id, 5)
	require.NoError(t, err)

	got, err := jwt.Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := jwt.Generate("secreto", "stockledger", jwt.Identity{UserID: "u", TenantID: "t"}, 5)
	require.NoError(t, err)
	_, err = jwt.Parse("otro", token)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	token, err := jwt.Generate("secreto", "stockledger", jwt.Identity{UserID: "u", TenantID: "t"}, -5)
	require.NoError(t, err)
	_, err = jwt.Parse("secreto", token)
	assert.Error(t, err)
}

func TestParse_SinTenant(t *testing.T) {
	token, err := jwt.Generate("secreto", "stockledger", jwt.Identity{UserID: "u"}, 5)
	require.NoError(t, err)
	_, err = jwt.Parse("secreto", token)
	assert.Error(t, err)
}
