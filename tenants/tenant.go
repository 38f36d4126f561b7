package tenants

// Company is a tenant of the business API. Users belong to one or more
// companies and operate within one or more of a company's branches.
type Company struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Branches []Branch `json:"branches,omitempty"`
}

// Branch is an operating unit of a company.
type Branch struct {
	ID        string `json:"id"`
	CompanyID string `json:"companyId"`
	Name      string `json:"name"`
}

// HasBranch reports whether branchID belongs to the company.
func (c *Company) HasBranch(branchID string) bool {
	for _, b := range c.Branches {
		if b.ID == branchID {
			return true
		}
	}
	return false
}
