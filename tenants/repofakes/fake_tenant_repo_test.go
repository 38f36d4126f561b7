package tenantrepofakes_test

import (
	"testing"

	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/tenants"
	tenantrepofakes "github.com/jrsteele09/go-auth-client/tenants/repofakes"
	"github.com/stretchr/testify/require"
)

func TestFakeTenantRepo(t *testing.T) {
	repo := tenantrepofakes.NewFakeTenantRepo()

	for _, id := range []string{"c3", "c1", "c2"} {
		require.NoError(t, repo.Upsert(&tenants.Company{
			ID:       id,
			Name:     "Company " + id,
			Branches: []tenants.Branch{{ID: id + "-hq"}},
		}))
	}

	c, err := repo.Get("c1")
	require.NoError(t, err)
	require.Equal(t, "c1", c.Branches[0].CompanyID)
	require.True(t, c.HasBranch("c1-hq"))
	require.False(t, c.HasBranch("c2-hq"))

	page, err := repo.List(1, 5)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "c2", page[0].ID)

	empty, err := repo.List(10, 5)
	require.NoError(t, err)
	require.Empty(t, empty)

	require.NoError(t, repo.Delete("c1"))
	_, err = repo.Get("c1")
	require.ErrorIs(t, err, autherrors.ErrTenantNotFound)
}
