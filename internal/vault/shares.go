// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListShares returns the grantees of an artifact in the vault's order.
func (c *Client) ListShares(ctx context.Context, id int64) ([]string, error) {
	resp, err := c.authorized(ctx, request{
		op:     "list shares",
		method: http.MethodGet,
		path:   "/api/files/shares/" + strconv.FormatInt(id, 10),
		scope:  artifactScope,
	})
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		code, msg := failure(resp)
		if code == http.StatusNotFound {
			return nil, fmt.Errorf("list shares: %w", ErrNotFound)
		}
		return nil, &FetchError{Op: "list shares", StatusCode: code, Message: msg}
	}
	defer resp.Body.Close()

	var grantees []string
	if err := json.NewDecoder(resp.Body).Decode(&grantees); err != nil {
		return nil, &FetchError{Op: "list shares", StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding grantees: %w", err)}
	}
	return grantees, nil
}

// GrantShare gives grantee read access to an artifact. A refusal is returned
// as *ShareRejectedError with the vault's own wording.
func (c *Client) GrantShare(ctx context.Context, id int64, grantee string) (string, error) {
	resp, err := c.authorized(ctx, request{
		op:     "grant share",
		method: http.MethodPost,
		path:   "/api/files/share",
		query:  shareQuery(id, grantee),
		scope:  artifactScope,
	})
	if err != nil {
		return "", err
	}
	code, msg := failure(resp)
	if !isSuccess(code) {
		if msg == "" {
			msg = fmt.Sprintf("share rejected (HTTP %d)", code)
		}
		return "", &ShareRejectedError{StatusCode: code, Reason: msg}
	}
	return msg, nil
}

// RevokeShare withdraws grantee's access. Whatever the vault says about a
// grant that did not exist is passed through.
func (c *Client) RevokeShare(ctx context.Context, id int64, grantee string) (string, error) {
	resp, err := c.authorized(ctx, request{
		op:     "revoke share",
		method: http.MethodDelete,
		path:   "/api/files/revoke",
		query:  shareQuery(id, grantee),
		scope:  artifactScope,
	})
	if err != nil {
		return "", refusedMutation("revoke", err)
	}
	code, msg := failure(resp)
	if !isSuccess(code) {
		return "", &MutationError{Op: "revoke", StatusCode: code, Message: msg}
	}
	return msg, nil
}

func shareQuery(id int64, grantee string) url.Values {
	return url.Values{
		"fileId": {strconv.FormatInt(id, 10)},
		"email":  {grantee},
	}
}
