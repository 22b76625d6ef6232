package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okta/okta-sdk-golang/v2/okta"
	"github.com/okta/okta-sdk-golang/v2/okta/query"
)

const defaultPageLimit = 200

// OktaClient talks to the Okta Users API through the Okta SDK.
type OktaClient struct {
	client    *okta.Client
	pageLimit int64
}

// NewOktaClient builds an SSWS-authenticated SDK client. The SDK response
// cache is disabled; freshness is owned by the user cache region.
func NewOktaClient(ctx context.Context, orgURL, token string, pageLimit int, opts ...okta.ConfigSetter) (*OktaClient, error) {
	if pageLimit <= 0 {
		pageLimit = defaultPageLimit
	}

	setters := append([]okta.ConfigSetter{
		okta.WithOrgUrl(strings.TrimRight(orgURL, "/")),
		okta.WithToken(token),
		okta.WithCache(false),
		okta.WithRequestTimeout(15),
	}, opts...)

	_, client, err := okta.NewClient(ctx, setters...)
	if err != nil {
		return nil, fmt.Errorf("okta: new client: %w", err)
	}

	return &OktaClient{client: client, pageLimit: int64(pageLimit)}, nil
}

// ListUsers follows the SDK's next-page links until the listing is complete.
func (c *OktaClient) ListUsers(ctx context.Context) ([]User, *Response, error) {
	_, resp, err := c.client.User.ListUsers(ctx, query.NewQueryParams(query.WithLimit(c.pageLimit)))
	if err != nil {
		return nil, responseFrom(resp), err
	}

	var all []User
	for {
		var page []User
		if err := decodeRetained(resp, &page); err != nil {
			return nil, responseFrom(resp), err
		}
		all = append(all, page...)

		if !resp.HasNextPage() {
			break
		}
		var next []*okta.User
		resp, err = resp.Next(ctx, &next)
		if err != nil {
			return nil, responseFrom(resp), err
		}
	}

	return all, responseFrom(resp), nil
}

func (c *OktaClient) GetUser(ctx context.Context, id string) (*User, *Response, error) {
	_, resp, err := c.client.User.GetUser(ctx, id)
	if err != nil {
		return nil, responseFrom(resp), err
	}

	var u User
	if err := decodeRetained(resp, &u); err != nil {
		return nil, responseFrom(resp), err
	}
	return &u, responseFrom(resp), nil
}

// UpdateUser replaces the user's profile.
func (c *OktaClient) UpdateUser(ctx context.Context, id string, user User) (*User, *Response, error) {
	profile := okta.UserProfile(user.Profile.attributes())

	_, resp, err := c.client.User.UpdateUser(ctx, id, okta.User{Profile: &profile}, nil)
	if err != nil {
		return nil, responseFrom(resp), err
	}

	var u User
	if err := decodeRetained(resp, &u); err != nil {
		return nil, responseFrom(resp), err
	}
	return &u, responseFrom(resp), nil
}

func (c *OktaClient) CreateUser(ctx context.Context, req CreateUserRequest) (*User, *Response, error) {
	profile := okta.UserProfile(req.Profile.attributes())

	_, resp, err := c.client.User.CreateUser(ctx, okta.CreateUserRequest{Profile: &profile}, nil)
	if err != nil {
		return nil, responseFrom(resp), err
	}

	var u User
	if err := decodeRetained(resp, &u); err != nil {
		return nil, responseFrom(resp), err
	}
	return &u, responseFrom(resp), nil
}

// decodeRetained decodes the body the SDK keeps on its response. The SDK's
// own profile maps hold numbers as float64, so the retained body is decoded
// again into Profile to keep large integer attributes exact.
func decodeRetained(resp *okta.Response, out any) error {
	if resp == nil || resp.Response == nil || resp.Body == nil {
		return errors.New("okta: response without body")
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("okta: read body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(b))

	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("okta: decode body: %w", err)
	}
	return nil
}

func responseFrom(r *okta.Response) *Response {
	if r == nil || r.Response == nil {
		return nil
	}
	return &Response{StatusCode: r.StatusCode, Status: r.Status}
}
