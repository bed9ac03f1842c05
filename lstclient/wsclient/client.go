// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wsclient

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tangle-network/lst/api/subscriptions"
	"github.com/tangle-network/lst/eventdb"
	"github.com/tangle-network/lst/lstclient/common"
)

type Client struct {
	host   string
	scheme string
}

func NewClient(url string) (*Client, error) {
	var host string
	var scheme string

	if strings.Contains(url, "https://") || strings.Contains(url, "wss://") {
		host = strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "wss://")
		scheme = "wss"
	} else if strings.Contains(url, "http://") || strings.Contains(url, "ws://") {
		host = strings.TrimPrefix(strings.TrimPrefix(url, "http://"), "ws://")
		scheme = "ws"
	} else {
		return nil, fmt.Errorf("invalid url")
	}

	return &Client{
		host:   strings.TrimSuffix(host, "/"),
		scheme: scheme,
	}, nil
}

// Subscription delivers messages until Unsubscribe is called or the node
// closes the connection.
type Subscription[T any] struct {
	EventChan <-chan common.EventWrapper[T]
	conn      *websocket.Conn
	done      chan struct{}
	once      sync.Once
}

// Unsubscribe closes the connection, EventChan is closed shortly after.
func (s *Subscription[T]) Unsubscribe() {
	s.once.Do(func() {
		close(s.done)
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		s.conn.Close()
	})
}

// SubscribeBlocks streams the sealed blocks.
func (c *Client) SubscribeBlocks() (*Subscription[*subscriptions.BlockMessage], error) {
	conn, err := c.connect("/subscriptions/blocks", "")
	if err != nil {
		return nil, fmt.Errorf("unable to connect - %w", err)
	}
	return subscribe[subscriptions.BlockMessage](conn), nil
}

// SubscribeEvents streams the events matching query, which takes the
// repeatable pool and name parameters and an optional pos to replay from.
func (c *Client) SubscribeEvents(query url.Values) (*Subscription[*eventdb.Event], error) {
	conn, err := c.connect("/subscriptions/events", query.Encode())
	if err != nil {
		return nil, fmt.Errorf("unable to connect - %w", err)
	}
	return subscribe[eventdb.Event](conn), nil
}

func subscribe[T any](conn *websocket.Conn) *Subscription[*T] {
	eventChan := make(chan common.EventWrapper[*T])
	sub := &Subscription[*T]{
		EventChan: eventChan,
		conn:      conn,
		done:      make(chan struct{}),
	}

	go func() {
		defer close(eventChan)
		defer conn.Close()

		for {
			var (
				data T
				msg  common.EventWrapper[*T]
			)
			err := conn.ReadJSON(&data)
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					return
				}
				msg.Error = fmt.Errorf("%w: %w", common.ErrUnexpectedMsg, err)
			} else {
				msg.Data = &data
			}

			select {
			case eventChan <- msg:
			case <-sub.done:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	return sub
}

func (c *Client) connect(endpoint, rawQuery string) (*websocket.Conn, error) {
	u := url.URL{
		Scheme:   c.scheme,
		Host:     c.host,
		Path:     endpoint,
		RawQuery: rawQuery,
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
