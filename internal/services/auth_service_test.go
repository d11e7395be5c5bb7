package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"olivosverdes/internal/repos"
	"olivosverdes/internal/services"
)

func TestAuth_RegisterLoginLogout(t *testing.T) {
	f := newFixture(t)
	svc := &services.AuthService{Users: repos.NewUserRepo(f.db), Cost: bcrypt.MinCost}
	ctx := context.Background()

	u, err := svc.Register(ctx, "sid-1", services.Registration{
		Name: "Carla", Email: "Carla@Example.com", Password: "Fruta#2026", Confirm: "Fruta#2026",
		Phone: "222 555 0101", Address: "Av. Juárez 10", City: "Puebla",
	})
	require.NoError(t, err)
	assert.Equal(t, "carla@example.com", u.Email)

	cur, err := svc.CurrentUser(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, cur.ID)

	prof, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, prof)
	assert.Equal(t, "Puebla", prof.City)

	require.NoError(t, svc.Logout(ctx, "sid-1"))
	_, err = svc.CurrentUser(ctx, "sid-1")
	assert.Error(t, err)

	_, err = svc.Login(ctx, "sid-2", "carla@example.com", "wrong")
	assert.ErrorIs(t, err, services.ErrBadCreds)
	_, err = svc.Login(ctx, "sid-2", "carla@example.com", "Fruta#2026")
	require.NoError(t, err)
}

func TestAuth_RegisterValidation(t *testing.T) {
	f := newFixture(t)
	svc := &services.AuthService{Users: repos.NewUserRepo(f.db), Cost: bcrypt.MinCost}

	_, err := svc.Register(context.Background(), "sid", services.Registration{
		Name: "", Email: "nope", Password: "Fruta#2026", Confirm: "Fruta#2027", Phone: "x",
	})
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Global)
	for _, field := range []string{"name", "email", "confirm", "phone", "address", "city"} {
		assert.Contains(t, verr.Fields, field)
	}

	_, err = svc.Register(context.Background(), "sid", services.Registration{
		Name: "Ana", Email: "ana@olivosverdes.test", Password: "Fruta#2026", Confirm: "Fruta#2026",
		Phone: "222 555 0101", Address: "Centro", City: "Puebla",
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
}
