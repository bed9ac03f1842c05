// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/tangle-network/lst/api/utils"
	"github.com/tangle-network/lst/eventdb"
	"github.com/tangle-network/lst/log"
	"github.com/tangle-network/lst/runtime"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second
	// send pings to peer with this period, must be less than pongWait
	pingPeriod = (pongWait * 7) / 10
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second
)

type Subscriptions struct {
	rt             *runtime.Runtime
	backtraceLimit uint64
	upgrader       *websocket.Upgrader
	pingPeriod     time.Duration
	done           chan struct{}
	wg             sync.WaitGroup
}

// New creates the subscriptions API. A subscription may replay at most
// backtraceLimit blocks of indexed events.
func New(rt *runtime.Runtime, allowedOrigins []string, backtraceLimit uint64) *Subscriptions {
	return &Subscriptions{
		rt:             rt,
		backtraceLimit: backtraceLimit,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		pingPeriod: pingPeriod,
		done:       make(chan struct{}),
	}
}

// BlockMessage is sent for every sealed block.
type BlockMessage struct {
	Number uint64           `json:"number"`
	Time   uint64           `json:"time"`
	Events []*eventdb.Event `json:"events"`
}

// eventFilter selects the events of an event subscription.
type eventFilter struct {
	pool  *uint32
	names map[string]bool
}

func parseEventFilter(req *http.Request) (*eventFilter, error) {
	query := req.URL.Query()
	f := &eventFilter{}
	if s := query.Get("pool"); s != "" {
		id, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "pool"))
		}
		pool := uint32(id)
		f.pool = &pool
	}
	if names := query["name"]; len(names) > 0 {
		f.names = make(map[string]bool, len(names))
		for _, name := range names {
			f.names[name] = true
		}
	}
	return f, nil
}

func (f *eventFilter) match(ev *eventdb.Event) bool {
	if f.pool != nil && ev.PoolID != *f.pool {
		return false
	}
	return f.names == nil || f.names[ev.Name]
}

func (f *eventFilter) dbFilter(from, to uint64) *eventdb.Filter {
	filter := &eventdb.Filter{Range: &eventdb.Range{Unit: eventdb.Block, From: from, To: to}}
	if f.pool != nil {
		filter.PoolIDs = []uint32{*f.pool}
	}
	for name := range f.names {
		filter.Names = append(filter.Names, name)
	}
	return filter
}

// parsePosition returns the first block to replay events from, or false
// when the subscription starts with the next block.
func (s *Subscriptions) parsePosition(req *http.Request, best uint64) (uint64, bool, error) {
	str := req.URL.Query().Get("pos")
	if str == "" {
		return 0, false, nil
	}
	pos, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, false, utils.BadRequest(errors.WithMessage(err, "pos"))
	}
	if pos > best {
		return 0, false, nil
	}
	if best-pos > s.backtraceLimit {
		return 0, false, utils.Forbidden(errors.New("pos: backtrace limit exceeded"))
	}
	if s.rt.EventDB() == nil {
		return 0, false, utils.Forbidden(errors.New("pos: events are not indexed"))
	}
	return pos, true, nil
}

func (s *Subscriptions) handleSubscribeBlocks(w http.ResponseWriter, req *http.Request) error {
	blocks := make(chan *runtime.Block, 16)
	sub := s.rt.SubscribeBlocks(blocks)
	defer sub.Unsubscribe()

	conn, closed, err := s.upgrade(w, req)
	if err != nil || conn == nil {
		return err
	}
	defer s.close(conn)

	return s.pipe(conn, closed, blocks, sub.Err(), func(blk *runtime.Block) error {
		return s.write(conn, &BlockMessage{Number: blk.Number, Time: blk.Time, Events: blk.Events})
	})
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	filter, err := parseEventFilter(req)
	if err != nil {
		return err
	}

	// subscribe first so that no block is missed between the replay and the live feed
	blocks := make(chan *runtime.Block, 16)
	sub := s.rt.SubscribeBlocks(blocks)
	defer sub.Unsubscribe()

	best := s.rt.BestBlock().Number
	pos, replay, err := s.parsePosition(req, best)
	if err != nil {
		return err
	}

	var backlog []*eventdb.Event
	if replay {
		backlog, err = s.rt.EventDB().Filter(req.Context(), filter.dbFilter(pos, best))
		if err != nil {
			return err
		}
	}

	conn, closed, err := s.upgrade(w, req)
	if err != nil || conn == nil {
		return err
	}
	defer s.close(conn)

	for _, ev := range backlog {
		if err := s.write(conn, ev); err != nil {
			return err
		}
	}
	return s.pipe(conn, closed, blocks, sub.Err(), func(blk *runtime.Block) error {
		if blk.Number <= best {
			return nil
		}
		for _, ev := range blk.Events {
			if !filter.match(ev) {
				continue
			}
			if err := s.write(conn, ev); err != nil {
				return err
			}
		}
		return nil
	})
}

// upgrade switches the connection to websocket. The returned channel is
// closed once the peer goes away.
func (s *Subscriptions) upgrade(w http.ResponseWriter, req *http.Request) (*websocket.Conn, chan struct{}, error) {
	s.wg.Add(1)
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		s.wg.Done()
		logger.Debug("upgrade to websocket", "err", err)
		// the upgrader has already replied
		return nil, nil, nil
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Debug("websocket read", "err", err)
				return
			}
		}
	}()
	return conn, closed, nil
}

func (s *Subscriptions) close(conn *websocket.Conn) {
	if conn == nil {
		return
	}
	defer s.wg.Done()
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	conn.Close()
}

func (s *Subscriptions) write(conn *websocket.Conn, msg any) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

func (s *Subscriptions) pipe(
	conn *websocket.Conn,
	closed chan struct{},
	blocks chan *runtime.Block,
	subErr <-chan error,
	send func(blk *runtime.Block) error,
) error {
	if conn == nil {
		return nil
	}
	ticker := time.NewTicker(s.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case <-subErr:
			return nil
		case blk := <-blocks:
			if err := send(blk); err != nil {
				logger.Debug("websocket write", "err", err)
				return nil
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		}
	}
}

// Close ends all subscriptions and waits for their handlers.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/blocks").
		Methods(http.MethodGet).
		Name("WS /subscriptions/blocks").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeBlocks))
	sub.Path("/events").
		Methods(http.MethodGet).
		Name("WS /subscriptions/events").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvents))
}
