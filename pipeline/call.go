package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/tenants"
	"golang.org/x/oauth2"
)

// HeaderRequestID correlates the original send and the replay of one call.
const HeaderRequestID = "X-Request-ID"

// Call is one logical outgoing call. It is built once from the caller's
// request, which is never mutated; every send is a fresh clone.
type Call struct {
	request        *http.Request
	body           []byte
	id             string
	alreadyRetried bool
}

// NewCall buffers the request body so the call can be sent twice with the
// same bytes. The caller's body is consumed and closed.
func NewCall(req *http.Request) (*Call, error) {
	c := &Call{request: req, id: req.Header.Get(HeaderRequestID)}
	if c.id == "" {
		c.id = uuid.New().String()
	}
	if req.Body == nil || req.Body == http.NoBody {
		return c, nil
	}
	defer req.Body.Close()
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("buffer request body: %w", err)
	}
	c.body = body
	return c, nil
}

func (c *Call) ID() string {
	return c.id
}

func (c *Call) AlreadyRetried() bool {
	return c.alreadyRetried
}

func (c *Call) Path() string {
	return c.request.URL.Path
}

func (c *Call) Context() context.Context {
	return c.request.Context()
}

// outgoing returns a clone of the request annotated with the credential and
// tenant headers.
func (c *Call) outgoing(access string, sel tenants.Selection, hasTenant bool) *http.Request {
	out := c.request.Clone(c.request.Context())
	if c.body != nil {
		out.Body = io.NopCloser(bytes.NewReader(c.body))
		out.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(c.body)), nil
		}
		out.ContentLength = int64(len(c.body))
	}

	out.Header.Set(HeaderRequestID, c.id)
	if access != "" {
		(&oauth2.Token{AccessToken: access, TokenType: "Bearer"}).SetAuthHeader(out)
	}
	if hasTenant {
		if sel.CompanyID != "" {
			out.Header.Set(tenants.HeaderCompanyID, sel.CompanyID)
		}
		if len(sel.BranchIDs) > 0 {
			out.Header.Set(tenants.HeaderBranchID, sel.BranchHeader())
		}
	}
	return out
}
