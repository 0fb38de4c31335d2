package service

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"net/http"
	"sync"
	"time"
	"work_readiness_backend/internal/readiness"
	"work_readiness_backend/pkg/logger"
	"work_readiness_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	shardCount     = 16

	liveChannel = "readiness_live_channel"

	MessageCycleUpdate = "CYCLE_UPDATE"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// CycleUpdate 推送给组长的工作人员周期变化
type CycleUpdate struct {
	WorkerID   string               `json:"workerId"`
	WorkerName string               `json:"workerName"`
	Event      string               `json:"event"`
	Transition string               `json:"transition"`
	Cycle      readiness.CycleState `json:"cycle"`
	At         time.Time            `json:"at"`
}

// Subscriber 一个 websocket 连接，Conn 为空时只通过 Send 收消息
type Subscriber struct {
	Hub     *LiveUpdateHub
	Conn    *websocket.Conn
	Send    chan []byte
	UserID  string
	Limiter *rate.Limiter
}

func NewSubscriber(hub *LiveUpdateHub, conn *websocket.Conn, userID string) *Subscriber {
	return &Subscriber{
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, 64),
		UserID:  userID,
		Limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
}

// readPump 只处理心跳，客户端上行消息被丢弃
func (c *Subscriber) readPump() {
	defer func() {
		c.Hub.Remove(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("Live socket closed unexpectedly", zap.Error(err), zap.String("userId", c.UserID))
			}
			return
		}
		// 超过频率的客户端直接断开
		if !c.Limiter.Allow() {
			logger.Log.Warn("Live socket rate limited", zap.String("userId", c.UserID))
			return
		}
	}
}

func (c *Subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type shard struct {
	subs map[string]map[*Subscriber]struct{}
	mu   sync.RWMutex
}

// LiveUpdateHub 订阅者注册表。配置了 Redis 时通过 pub/sub 在多实例间转发。
type LiveUpdateHub struct {
	shards [shardCount]*shard
	Redis  *redis.Client
}

func NewLiveUpdateHub(rdb *redis.Client) *LiveUpdateHub {
	h := &LiveUpdateHub{Redis: rdb}
	for i := 0; i < shardCount; i++ {
		h.shards[i] = &shard{subs: make(map[string]map[*Subscriber]struct{})}
	}
	return h
}

func (h *LiveUpdateHub) getShard(userID string) *shard {
	f := fnv.New32a()
	f.Write([]byte(userID))
	return h.shards[f.Sum32()%shardCount]
}

func (h *LiveUpdateHub) Register(sub *Subscriber) {
	s := h.getShard(sub.UserID)
	s.mu.Lock()
	set, ok := s.subs[sub.UserID]
	if !ok {
		set = make(map[*Subscriber]struct{})
		s.subs[sub.UserID] = set
	}
	set[sub] = struct{}{}
	s.mu.Unlock()
	monitoring.LiveSubscribers.Inc()
}

// Remove 可重复调用
func (h *LiveUpdateHub) Remove(sub *Subscriber) {
	s := h.getShard(sub.UserID)
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.subs[sub.UserID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(s.subs, sub.UserID)
	}
	close(sub.Send)
	monitoring.LiveSubscribers.Dec()
}

func (h *LiveUpdateHub) Count(userID string) int {
	s := h.getShard(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs[userID])
}

type pubSubMessage struct {
	TargetUsers []string        `json:"targetUsers"`
	Payload     json.RawMessage `json:"payload"`
}

// Broadcast 推送给指定用户的所有连接
func (h *LiveUpdateHub) Broadcast(ctx context.Context, userIDs []string, msg WSMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Error("Live message marshal failed", zap.Error(err))
		return
	}

	if h.Redis == nil {
		h.deliverLocal(userIDs, payload)
		return
	}

	data, _ := json.Marshal(pubSubMessage{TargetUsers: userIDs, Payload: payload})
	if err := h.Redis.Publish(ctx, liveChannel, data).Err(); err != nil {
		logger.Log.Warn("Live publish failed, delivering locally", zap.Error(err))
		h.deliverLocal(userIDs, payload)
	}
}

func (h *LiveUpdateHub) NotifyCycleUpdate(ctx context.Context, teamLeaderID string, update CycleUpdate) {
	h.Broadcast(ctx, []string{teamLeaderID}, WSMessage{Type: MessageCycleUpdate, Data: update})
}

func (h *LiveUpdateHub) deliverLocal(userIDs []string, payload []byte) {
	for _, id := range userIDs {
		s := h.getShard(id)
		s.mu.RLock()
		for sub := range s.subs[id] {
			select {
			case sub.Send <- payload:
			default:
				// 慢消费者丢消息
			}
		}
		s.mu.RUnlock()
	}
}

// Run 订阅其他实例发布的消息，ctx 取消后返回
func (h *LiveUpdateHub) Run(ctx context.Context) {
	if h.Redis == nil {
		return
	}
	pubsub := h.Redis.Subscribe(ctx, liveChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ps pubSubMessage
			if err := json.Unmarshal([]byte(msg.Payload), &ps); err != nil {
				logger.Log.Error("Live pubsub unmarshal error", zap.Error(err))
				continue
			}
			h.deliverLocal(ps.TargetUsers, ps.Payload)
		}
	}
}

// Stop 关闭本实例的所有连接
func (h *LiveUpdateHub) Stop() {
	closed := 0
	for i := 0; i < shardCount; i++ {
		s := h.shards[i]
		s.mu.Lock()
		for userID, set := range s.subs {
			for sub := range set {
				close(sub.Send)
				closed++
			}
			delete(s.subs, userID)
		}
		s.mu.Unlock()
	}
	monitoring.LiveSubscribers.Set(0)
	logger.Log.Info("Live update hub stopped", zap.Int("closedConnections", closed))
}

func ServeLive(hub *LiveUpdateHub, w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err), zap.String("userId", userID))
		return
	}
	sub := NewSubscriber(hub, conn, userID)
	hub.Register(sub)

	go sub.writePump()
	go sub.readPump()
}
