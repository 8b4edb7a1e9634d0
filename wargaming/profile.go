// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package wargaming

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// ProfileRecord is an account as returned by the account info endpoint.
// Fields the provider didn't send are left at their zero value; Raw holds the
// record exactly as it was received.
type ProfileRecord struct {
	AccountID      int64  `json:"account_id"`
	Nickname       string `json:"nickname"`
	ClientLanguage string `json:"client_language"`
	GlobalRating   int64  `json:"global_rating"`
	ClanID         *int64 `json:"clan_id"`

	// Unix timestamps.
	CreatedAt      int64 `json:"created_at"`
	UpdatedAt      int64 `json:"updated_at"`
	LastBattleTime int64 `json:"last_battle_time"`
	LogoutAt       int64 `json:"logout_at"`

	// Private is only sent to the owner of a valid access token.
	Private map[string]interface{} `json:"private"`

	Statistics json.RawMessage `json:"statistics,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// HasPrivate returns true when the record carries the account's private data,
// which proves the access token used to fetch it is valid.
func (r *ProfileRecord) HasPrivate() bool {
	return r != nil && r.Private != nil
}

// ClanMembership is an account's clan membership, as returned by the clan
// membership endpoint.
type ClanMembership struct {
	AccountID   int64        `json:"account_id"`
	AccountName string       `json:"account_name"`
	Role        string       `json:"role"`
	RoleI18n    string       `json:"role_i18n"`
	JoinedAt    int64        `json:"joined_at"`
	Clan        *ClanSummary `json:"clan"`

	Raw json.RawMessage `json:"-"`
}

// ClanSummary is the short clan description embedded in a ClanMembership.
type ClanSummary struct {
	ClanID       int64           `json:"clan_id"`
	Name         string          `json:"name"`
	Tag          string          `json:"tag"`
	Color        string          `json:"color"`
	MembersCount int             `json:"members_count"`
	CreatedAt    int64           `json:"created_at"`
	Emblems      json.RawMessage `json:"emblems,omitempty"`
}

// ClanMember is a member of a clan.
type ClanMember struct {
	AccountID   int64  `json:"account_id"`
	AccountName string `json:"account_name"`
	Role        string `json:"role"`
	RoleI18n    string `json:"role_i18n"`
	JoinedAt    int64  `json:"joined_at"`
}

// AccountInfo fetches the account info of accountID. The access token is
// optional; without it the private data isn't returned.
//
// A provider report of an invalid access token returns an error matching
// ErrInvalidAccessToken: the user has to log in again (see Auth.Redirect).
// A missing record is ErrProfileNotFound.
func (p *Provider) AccountInfo(ctx context.Context, accountID, accessToken string) (*ProfileRecord, error) {
	const op = "Provider.AccountInfo"
	if accountID == "" {
		return nil, fmt.Errorf("%s: account id is empty: %w", op, ErrInvalidParameter)
	}
	params := p.apiParams()
	params.Set("account_id", accountID)
	if accessToken != "" {
		params.Set("access_token", accessToken)
	}
	raw, err := p.fetchEntry(ctx, p.config.Endpoints.AccountInfo, params, accountID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rec := &ProfileRecord{Raw: raw}
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrMalformedProviderResponse, err)
	}
	return rec, nil
}

// ClanMembershipInfo fetches the clan membership of accountID.
func (p *Provider) ClanMembershipInfo(ctx context.Context, accountID string) (*ClanMembership, error) {
	const op = "Provider.ClanMembershipInfo"
	if accountID == "" {
		return nil, fmt.Errorf("%s: account id is empty: %w", op, ErrInvalidParameter)
	}
	params := p.apiParams()
	params.Set("account_id", accountID)
	raw, err := p.fetchEntry(ctx, p.config.Endpoints.ClanMembership, params, accountID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	m := &ClanMembership{Raw: raw}
	if err := json.Unmarshal(raw, m); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrMalformedProviderResponse, err)
	}
	return m, nil
}

// ClanMembers fetches the members of clanID. The clan info endpoint returns
// data keyed by clan id; the members are the first value of the first clan
// in the response.
func (p *Provider) ClanMembers(ctx context.Context, clanID string) ([]ClanMember, error) {
	const op = "Provider.ClanMembers"
	if clanID == "" {
		return nil, fmt.Errorf("%s: clan id is empty: %w", op, ErrInvalidParameter)
	}
	params := p.apiParams()
	params.Set("clan_id", clanID)
	params.Set("fields", "members")
	body, err := p.get(ctx, p.config.Endpoints.ClanInfo, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	resp, err := decodeDataResponse(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	clan, err := firstValue(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("%s: clan %s: %w", op, clanID, err)
	}
	rawMembers, err := firstValue(clan)
	if err != nil {
		return nil, fmt.Errorf("%s: clan %s members: %w", op, clanID, err)
	}
	var members []ClanMember
	if err := json.Unmarshal(rawMembers, &members); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrMalformedProviderResponse, err)
	}
	return members, nil
}

// fetchEntry GETs an API endpoint and returns data[key].
func (p *Provider) fetchEntry(ctx context.Context, endpoint string, params url.Values, key string) (json.RawMessage, error) {
	body, err := p.get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	resp, err := decodeDataResponse(body)
	if err != nil {
		p.logger.Warn("provider reported an error", "endpoint", endpoint, "error", err)
		return nil, err
	}
	return resp.entry(key)
}

// apiParams returns the parameters common to every API request.
func (p *Provider) apiParams() url.Values {
	v := url.Values{"application_id": {p.config.ApplicationID}}
	if p.config.Language != "" {
		v.Set("language", p.config.Language)
	}
	return v
}
