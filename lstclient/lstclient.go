// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lstclient is a Go client of an lstd node, over HTTP and websocket.
package lstclient

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/tangle-network/lst/api/eras"
	"github.com/tangle-network/lst/api/misbehavior"
	"github.com/tangle-network/lst/api/pools"
	"github.com/tangle-network/lst/api/subscriptions"
	"github.com/tangle-network/lst/api/tx"
	"github.com/tangle-network/lst/eventdb"
	"github.com/tangle-network/lst/lstclient/httpclient"
	"github.com/tangle-network/lst/lstclient/wsclient"
	lstmisbehavior "github.com/tangle-network/lst/misbehavior"
	"github.com/tangle-network/lst/tangle"
)

type Client struct {
	httpConn *httpclient.Client
	wsConn   *wsclient.Client
}

func New(url string) *Client {
	return &Client{
		httpConn: httpclient.New(url),
	}
}

func NewWithWS(url string) (*Client, error) {
	wsClient, err := wsclient.NewClient(url)
	if err != nil {
		return nil, err
	}

	return &Client{
		httpConn: httpclient.New(url),
		wsConn:   wsClient,
	}, nil
}

func (c *Client) Pools() ([]*pools.Summary, error) {
	return c.httpConn.GetPools()
}

func (c *Client) Pool(id uint32) (*pools.Pool, error) {
	return c.httpConn.GetPool(id)
}

func (c *Client) SubPools(id uint32) (pools.SubPools, error) {
	return c.httpConn.GetSubPools(id)
}

func (c *Client) Members(id uint32) ([]tangle.Address, error) {
	return c.httpConn.GetMembers(id)
}

func (c *Client) Member(id uint32, account tangle.Address) (*pools.Member, error) {
	return c.httpConn.GetMember(id, account)
}

func (c *Client) Params() (*pools.Params, error) {
	return c.httpConn.GetParams()
}

func (c *Client) CurrentEra() (*eras.Era, error) {
	return c.httpConn.GetCurrentEra()
}

func (c *Client) EraPayout() (*eras.Payout, error) {
	return c.httpConn.GetEraPayout()
}

func (c *Client) FilterEvents(filter *eventdb.Filter) ([]*eventdb.Event, error) {
	return c.httpConn.FilterEvents(filter)
}

func (c *Client) Verify(sub *lstmisbehavior.Submission) (*misbehavior.Verdict, error) {
	return c.httpConn.Verify(sub)
}

// Create creates a pool and returns its id.
func (c *Client) Create(req *tx.Create) (uint32, error) {
	var res struct {
		PoolID uint32 `json:"poolId"`
	}
	if err := c.httpConn.Execute("create", req, &res); err != nil {
		return 0, err
	}
	return res.PoolID, nil
}

func (c *Client) Bond(req *tx.Bond) error {
	return c.httpConn.Execute("bond", req, nil)
}

func (c *Client) Unbond(req *tx.Unbond) error {
	return c.httpConn.Execute("unbond", req, nil)
}

func (c *Client) Withdraw(req *tx.Withdraw) error {
	return c.httpConn.Execute("withdraw", req, nil)
}

// AdvanceEra ends the current era and returns the new one.
func (c *Client) AdvanceEra() (uint32, error) {
	var res struct {
		Era uint32 `json:"era"`
	}
	if err := c.httpConn.Execute("advanceEra", &struct{}{}, &res); err != nil {
		return 0, err
	}
	return res.Era, nil
}

// Execute applies any operation, see Bond for the common ones.
func (c *Client) Execute(op string, req any, res any) error {
	return c.httpConn.Execute(op, req, res)
}

func (c *Client) SubscribeBlocks() (*wsclient.Subscription[*subscriptions.BlockMessage], error) {
	if c.wsConn == nil {
		return nil, fmt.Errorf("not a websocket typed client")
	}
	return c.wsConn.SubscribeBlocks()
}

// SubscribeEvents streams the events of pool, of every pool when pool is
// nil. A non nil pos replays the indexed events from that block.
func (c *Client) SubscribeEvents(pool *uint32, names []string, pos *uint64) (*wsclient.Subscription[*eventdb.Event], error) {
	if c.wsConn == nil {
		return nil, fmt.Errorf("not a websocket typed client")
	}
	query := url.Values{}
	if pool != nil {
		query.Set("pool", strconv.FormatUint(uint64(*pool), 10))
	}
	for _, name := range names {
		query.Add("name", name)
	}
	if pos != nil {
		query.Set("pos", strconv.FormatUint(*pos, 10))
	}
	return c.wsConn.SubscribeEvents(query)
}

// RawHTTPClient exposes the underlying HTTP client.
func (c *Client) RawHTTPClient() *httpclient.Client {
	return c.httpConn
}
