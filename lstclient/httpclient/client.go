// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package httpclient provides an HTTP client of the pools API. It reads
// pools, members, eras and indexed events, and executes operations on
// nodes serving the /tx endpoints.
package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/tangle-network/lst/api/eras"
	"github.com/tangle-network/lst/api/misbehavior"
	"github.com/tangle-network/lst/api/pools"
	"github.com/tangle-network/lst/eventdb"
	"github.com/tangle-network/lst/lstclient/common"
	lstmisbehavior "github.com/tangle-network/lst/misbehavior"
	"github.com/tangle-network/lst/tangle"
)

// Client represents the HTTP client of a node.
type Client struct {
	url string
	c   *http.Client
}

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: url,
		c:   c,
	}
}

// GetPools retrieves the summary of every pool.
func (c *Client) GetPools() ([]*pools.Summary, error) {
	var res []*pools.Summary
	if err := c.getJSON("/pools", &res); err != nil {
		return nil, fmt.Errorf("unable to retrieve pools - %w", err)
	}
	return res, nil
}

// GetPool retrieves a pool, common.ErrNotFound when it does not exist.
func (c *Client) GetPool(id uint32) (*pools.Pool, error) {
	var res pools.Pool
	if err := c.getJSON(poolPath(id), &res); err != nil {
		return nil, fmt.Errorf("unable to retrieve pool - %w", err)
	}
	return &res, nil
}

func (c *Client) GetSubPools(id uint32) (pools.SubPools, error) {
	var res pools.SubPools
	if err := c.getJSON(poolPath(id)+"/subpools", &res); err != nil {
		return nil, fmt.Errorf("unable to retrieve sub pools - %w", err)
	}
	return res, nil
}

func (c *Client) GetMembers(id uint32) ([]tangle.Address, error) {
	var res []tangle.Address
	if err := c.getJSON(poolPath(id)+"/members", &res); err != nil {
		return nil, fmt.Errorf("unable to retrieve members - %w", err)
	}
	return res, nil
}

func (c *Client) GetMember(id uint32, account tangle.Address) (*pools.Member, error) {
	var res pools.Member
	if err := c.getJSON(poolPath(id)+"/members/"+account.String(), &res); err != nil {
		return nil, fmt.Errorf("unable to retrieve member - %w", err)
	}
	return &res, nil
}

func (c *Client) GetParams() (*pools.Params, error) {
	var res pools.Params
	if err := c.getJSON("/pools/params", &res); err != nil {
		return nil, fmt.Errorf("unable to retrieve params - %w", err)
	}
	return &res, nil
}

func (c *Client) GetCurrentEra() (*eras.Era, error) {
	var res eras.Era
	if err := c.getJSON("/eras/current", &res); err != nil {
		return nil, fmt.Errorf("unable to retrieve era - %w", err)
	}
	return &res, nil
}

func (c *Client) GetEraPayout() (*eras.Payout, error) {
	var res eras.Payout
	if err := c.getJSON("/eras/payout", &res); err != nil {
		return nil, fmt.Errorf("unable to retrieve era payout - %w", err)
	}
	return &res, nil
}

// FilterEvents queries the indexed events.
func (c *Client) FilterEvents(filter *eventdb.Filter) ([]*eventdb.Event, error) {
	body, err := c.httpPOST(c.url+"/events", filter)
	if err != nil {
		return nil, fmt.Errorf("unable to filter events - %w", err)
	}
	var res []*eventdb.Event
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("unable to unmarshal events - %w", err)
	}
	return res, nil
}

// Verify submits a misbehavior report and returns the verdict.
func (c *Client) Verify(sub *lstmisbehavior.Submission) (*misbehavior.Verdict, error) {
	body, err := c.httpPOST(c.url+"/misbehavior/verify", sub)
	if err != nil {
		return nil, fmt.Errorf("unable to verify misbehavior - %w", err)
	}
	var res misbehavior.Verdict
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("unable to unmarshal verdict - %w", err)
	}
	return &res, nil
}

// Execute applies an operation. req must be a pointer to one of the api/tx
// request types, the result is decoded into res when not nil.
func (c *Client) Execute(op string, req any, res any) error {
	body, err := c.httpPOST(c.url+"/tx/"+op, req)
	if err != nil {
		return fmt.Errorf("unable to execute %s - %w", op, err)
	}
	if res == nil {
		return nil
	}
	if err := json.Unmarshal(body, res); err != nil {
		return fmt.Errorf("unable to unmarshal %s result - %w", op, err)
	}
	return nil
}

// RawHTTPPost sends a raw HTTP POST request to the specified path with the provided data.
func (c *Client) RawHTTPPost(path string, calldata any) ([]byte, int, error) {
	var data []byte
	var err error

	if b, ok := calldata.([]byte); ok {
		data = b
	} else {
		data, err = json.Marshal(calldata)
		if err != nil {
			return nil, 0, fmt.Errorf("unable to marshal payload - %w", err)
		}
	}

	return c.rawHTTPRequest(http.MethodPost, c.url+path, bytes.NewBuffer(data))
}

// RawHTTPGet sends a raw HTTP GET request to the specified path.
func (c *Client) RawHTTPGet(path string) ([]byte, int, error) {
	return c.rawHTTPRequest(http.MethodGet, c.url+path, nil)
}

func poolPath(id uint32) string {
	return "/pools/" + strconv.FormatUint(uint64(id), 10)
}

func (c *Client) getJSON(path string, v any) error {
	body, err := c.httpGET(c.url + path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("unable to unmarshal response - %w", err)
	}
	return nil
}

func (c *Client) httpGET(url string) ([]byte, error) {
	return c.httpRequest(http.MethodGet, url, nil)
}

func (c *Client) httpPOST(url string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal payload - %w", err)
	}
	return c.httpRequest(http.MethodPost, url, bytes.NewBuffer(data))
}

func (c *Client) httpRequest(method, url string, payload io.Reader) ([]byte, error) {
	body, statusCode, err := c.rawHTTPRequest(method, url, payload)
	if err != nil {
		return nil, err
	}
	switch statusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", bytes.TrimSpace(body), common.ErrNotFound)
	}
	return nil, fmt.Errorf("http error - Status Code %d - %s - %w", statusCode, bytes.TrimSpace(body), common.ErrNot200Status)
}

func (c *Client) rawHTTPRequest(method, url string, payload io.Reader) ([]byte, int, error) {
	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		return nil, 0, fmt.Errorf("error creating request: %w", err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("error reading response body: %w", err)
	}
	return responseBody, resp.StatusCode, nil
}
