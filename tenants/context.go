package tenants

import (
	"slices"
	"strings"
	"sync"
)

// Header names used to scope requests to a tenant.
const (
	HeaderCompanyID = "X-Company-ID"
	HeaderBranchID  = "X-Branch-ID"
)

// Selection is the currently selected company and branches.
type Selection struct {
	CompanyID string
	BranchIDs []string
}

func (s Selection) IsZero() bool {
	return s.CompanyID == "" && len(s.BranchIDs) == 0
}

// BranchHeader returns the branch ids comma joined, as sent in X-Branch-ID.
func (s Selection) BranchHeader() string {
	return strings.Join(s.BranchIDs, ",")
}

// ParseBranchHeader splits a comma joined X-Branch-ID value.
func ParseBranchHeader(value string) []string {
	var ids []string
	for _, id := range strings.Split(value, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Reader is the read-only view the request pipeline uses to annotate calls.
type Reader interface {
	Current() (Selection, bool)
}

// Context holds the process wide tenant selection. It is mutated by login and
// tenant switch flows and read by the request pipeline.
type Context struct {
	selection Selection
	lock      sync.RWMutex
}

var _ Reader = (*Context)(nil)

func NewContext() *Context {
	return &Context{}
}

// Select replaces the selection. Branch ids are copied.
func (c *Context) Select(companyID string, branchIDs ...string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.selection = Selection{CompanyID: companyID, BranchIDs: slices.Clone(branchIDs)}
}

// Current returns a copy of the selection and whether one is set.
func (c *Context) Current() (Selection, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if c.selection.IsZero() {
		return Selection{}, false
	}
	return Selection{CompanyID: c.selection.CompanyID, BranchIDs: slices.Clone(c.selection.BranchIDs)}, true
}

func (c *Context) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.selection = Selection{}
}
