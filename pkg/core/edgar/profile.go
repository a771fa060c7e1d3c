package edgar

import (
	"context"
	"fmt"
)

// CompanyProfile carries the registrant metadata reported at the top of the
// submissions blob.
type CompanyProfile struct {
	CIK            string
	Name           string
	SIC            string
	SICDescription string
	Exchanges      []string
}

type profileResponse struct {
	Name           string   `json:"name"`
	SIC            string   `json:"sic"`
	SICDescription string   `json:"sicDescription"`
	Exchanges      []string `json:"exchanges"`
}

// GetCompanyProfile reads registrant metadata for a zero-padded CIK. It
// hits the same submissions endpoint as GetFilings, so after a filings
// fetch this is a cache read.
func (c *Client) GetCompanyProfile(ctx context.Context, cik string) (*CompanyProfile, error) {
	url := fmt.Sprintf(SubmissionsURLTemplate, cik)

	var resp profileResponse
	if err := c.GetJSONInto(ctx, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch company profile for CIK %s: %w", cik, err)
	}
	return &CompanyProfile{
		CIK:            cik,
		Name:           resp.Name,
		SIC:            resp.SIC,
		SICDescription: resp.SICDescription,
		Exchanges:      resp.Exchanges,
	}, nil
}
