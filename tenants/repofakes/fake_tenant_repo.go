package tenantrepofakes

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/tenants"
)

var _ tenants.Repo = (*FakeTenantRepo)(nil)

type FakeTenantRepo struct {
	companies map[string]*tenants.Company
	lock      sync.RWMutex
}

func NewFakeTenantRepo() tenants.Repo {
	return &FakeTenantRepo{
		companies: make(map[string]*tenants.Company),
	}
}

func (tr *FakeTenantRepo) Upsert(company *tenants.Company) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	for i := range company.Branches {
		company.Branches[i].CompanyID = company.ID
	}
	tr.companies[company.ID] = company
	return nil
}

func (tr *FakeTenantRepo) Delete(companyID string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	delete(tr.companies, companyID)
	return nil
}

func (tr *FakeTenantRepo) Get(companyID string) (*tenants.Company, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	company, ok := tr.companies[companyID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", autherrors.ErrTenantNotFound, companyID)
	}
	return company, nil
}

func (tr *FakeTenantRepo) List(offset, limit int) ([]*tenants.Company, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	companies := make([]*tenants.Company, 0, len(tr.companies))
	for _, c := range tr.companies {
		companies = append(companies, c)
	}

	sort.Slice(companies, func(i, j int) bool {
		return companies[i].ID < companies[j].ID
	})

	if offset >= len(companies) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(companies) {
		end = len(companies)
	}
	return companies[offset:end], nil
}
