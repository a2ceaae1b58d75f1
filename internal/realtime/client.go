package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/npezzotti/meetup/internal/database"
	"github.com/npezzotti/meetup/internal/meeting"
	"github.com/npezzotti/meetup/internal/notify"
	"github.com/npezzotti/meetup/internal/types"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingInterval    = (pongWait * 9) / 10
	maxMessageSize  = 4096
	sendQueueSize   = 256
	changeQueueSize = 256
	opTimeout       = 10 * time.Second
)

// ChatService stores chat messages sent over the socket.
type ChatService interface {
	SendMessage(ctx context.Context, actorId, meetingId int, content string) (database.MeetingMessage, error)
}

// Notifier keeps the connected participant's counters.
type Notifier interface {
	Refresh(ctx context.Context) (types.Counts, error)
	MarkMessagesRead(ctx context.Context, meetingId int) (types.Counts, error)
	HandleChange(ctx context.Context, change types.Change) (notify.Notification, bool, error)
}

type Client struct {
	conn          *websocket.Conn
	hub           *Hub
	chat          ChatService
	notifier      Notifier
	log           *log.Logger
	participantId int
	send          chan *ServerMessage
	changes       chan types.Change
	subs          map[int]Filter
	subsLock      sync.RWMutex
	stop          chan struct{}
	stopOnce      sync.Once
}

func NewClient(participantId int, conn *websocket.Conn, hub *Hub, chat ChatService, notifier Notifier, l *log.Logger) *Client {
	return &Client{
		conn:          conn,
		hub:           hub,
		chat:          chat,
		notifier:      notifier,
		log:           l,
		participantId: participantId,
		send:          make(chan *ServerMessage, sendQueueSize),
		changes:       make(chan types.Change, changeQueueSize),
		subs:          make(map[int]Filter),
		stop:          make(chan struct{}),
	}
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			bytes, err := json.Marshal(msg)
			if err != nil {
				c.log.Println("failed to serialize message:", err)
				continue
			}

			if !c.sendMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			c.sendMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		case <-ticker.C:
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Println("error parsing message:", err)
			c.queueMessage(ErrInvalidMessage(-1))
			continue
		}

		msg.ParticipantId = c.participantId
		msg.Timestamp = Now()
		c.handle(&msg)
	}
}

// Notify runs the participant's notifier until the client stops: it sends
// the initial counters and then a notification for every relevant change.
func (c *Client) Notify() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-c.stop
		cancel()
	}()

	if counts, err := c.notifier.Refresh(ctx); err != nil {
		c.log.Printf("refresh counters for participant %d: %v", c.participantId, err)
	} else {
		c.queueMessage(NotificationMessage(notify.Notification{Kind: notify.KindCounts, Counts: counts}))
	}

	for {
		select {
		case change := <-c.changes:
			n, ok, err := c.notifier.HandleChange(ctx, change)
			if err != nil {
				c.log.Printf("notify participant %d: %v", c.participantId, err)
				continue
			}
			if ok {
				c.queueMessage(NotificationMessage(n))
			}
		case <-c.stop:
			return
		}
	}
}

func (c *Client) handle(msg *ClientMessage) {
	switch {
	case msg.Subscribe != nil:
		if err := msg.Subscribe.Validate(); err != nil {
			c.queueMessage(ErrResponse(msg.Id, http.StatusBadRequest, err.Error()))
			return
		}
		if msg.Id <= 0 {
			c.queueMessage(ErrResponse(msg.Id, http.StatusBadRequest, "subscribe requires a message id"))
			return
		}
		c.subsLock.Lock()
		c.subs[msg.Id] = *msg.Subscribe
		c.subsLock.Unlock()
		c.queueMessage(NoErrOK(msg.Id, map[string]any{"subscription_id": msg.Id}))
	case msg.Unsubscribe != nil:
		c.subsLock.Lock()
		_, ok := c.subs[msg.Unsubscribe.SubscriptionId]
		delete(c.subs, msg.Unsubscribe.SubscriptionId)
		c.subsLock.Unlock()
		if !ok {
			c.queueMessage(ErrNotFound(msg.Id))
			return
		}
		c.queueMessage(NoErrAccepted(msg.Id))
	case msg.Publish != nil:
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		sent, err := c.chat.SendMessage(ctx, c.participantId, msg.Publish.MeetingId, msg.Publish.Content)
		if err != nil {
			c.queueMessage(c.errorReply(msg.Id, err))
			return
		}
		c.queueMessage(NoErrOK(msg.Id, map[string]any{"message": types.FromMeetingMessage(sent)}))
	case msg.Read != nil:
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		counts, err := c.notifier.MarkMessagesRead(ctx, msg.Read.MeetingId)
		if err != nil {
			c.queueMessage(c.errorReply(msg.Id, err))
			return
		}
		c.queueMessage(NoErrOK(msg.Id, map[string]any{"counts": counts}))
	default:
		c.queueMessage(ErrInvalidMessage(msg.Id))
	}
}

func (c *Client) errorReply(id int, err error) *ServerMessage {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return ErrNotFound(id)
	case errors.Is(err, meeting.ErrNotParticipant):
		return ErrResponse(id, http.StatusForbidden, err.Error())
	case errors.Is(err, meeting.ErrChatClosed):
		return ErrResponse(id, http.StatusConflict, err.Error())
	case errors.Is(err, meeting.ErrEmptyMessage):
		return ErrResponse(id, http.StatusBadRequest, err.Error())
	}
	c.log.Printf("participant %d: %v", c.participantId, err)
	return ErrInternalError(id)
}

// deliver runs on the hub goroutine and must not block.
func (c *Client) deliver(change types.Change) {
	c.subsLock.RLock()
	for id, f := range c.subs {
		if f.Matches(change) {
			c.queueMessage(&ServerMessage{
				BaseMessage: BaseMessage{Timestamp: Now()},
				Change: &Change{
					SubscriptionId: id,
					Table:          change.Table,
					Type:           change.Type,
					Row:            change.Row,
				},
			})
		}
	}
	c.subsLock.RUnlock()

	select {
	case c.changes <- change:
	default:
		c.log.Printf("change queue full for participant %d", c.participantId)
	}
}

func (c *Client) queueMessage(msg *ServerMessage) bool {
	select {
	case c.send <- msg:
	default:
		c.log.Println("failed to send message to client, channel is full")
		return false
	}

	return true
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Client) cleanup() {
	c.hub.deRegister(c)
	c.stopClient()
}
