package tenants

type Repo interface {
	Upsert(company *Company) error
	Delete(companyID string) error
	Get(companyID string) (*Company, error)
	List(offset, limit int) ([]*Company, error)
}
