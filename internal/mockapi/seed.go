package mockapi

import (
	"fmt"

	"github.com/jrsteele09/go-auth-client/tenants"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

// SeedDemo loads two companies and two users: "alice" belongs to one company,
// "bob" to both.
func (s *Server) SeedDemo() error {
	companies := []tenants.Company{
		{
			ID:   "acme",
			Name: "Acme Ltd",
			Branches: []tenants.Branch{
				{ID: "acme-north", Name: "North"},
				{ID: "acme-south", Name: "South"},
			},
		},
		{
			ID:   "globex",
			Name: "Globex Corp",
			Branches: []tenants.Branch{
				{ID: "globex-hq", Name: "Head Office"},
			},
		},
	}
	for _, c := range companies {
		if err := s.AddCompany(c); err != nil {
			return err
		}
	}

	users := []User{
		{ID: "u-alice", Username: "alice", Email: "alice@example.com", Name: "Alice", CompanyIDs: []string{"acme"}},
		{ID: "u-bob", Username: "bob", Email: "bob@example.com", Name: "Bob", CompanyIDs: []string{"acme", "globex"}},
	}
	for _, u := range users {
		if err := s.AddUser(u, DemoPassword); err != nil {
			return fmt.Errorf("[Server SeedDemo] %s: %w", u.Username, err)
		}
	}
	return nil
}
