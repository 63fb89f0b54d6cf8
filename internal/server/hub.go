package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/soulbound/soulbound-server/internal/config"
	"github.com/soulbound/soulbound-server/internal/game"
	"github.com/soulbound/soulbound-server/internal/game/rules"
	"github.com/soulbound/soulbound-server/internal/telemetry"
)

// ErrIdentityMismatch rejects a request claiming another player's identity.
var ErrIdentityMismatch = errors.New("request does not belong to this connection")

type requestKind int

const (
	requestJoin requestKind = iota
	requestLeave
	requestPlayCard
	requestEndTurn
	requestView
	requestInvalid
)

var requestNames = map[requestKind]string{
	requestJoin:     "join",
	requestLeave:    "leave",
	requestPlayCard: MessagePlayCard,
	requestEndTurn:  MessageEndTurn,
	requestView:     MessageView,
	requestInvalid:  "invalid",
}

func (k requestKind) String() string {
	if name, ok := requestNames[k]; ok {
		return name
	}
	return fmt.Sprintf("request_%d", int(k))
}

type request struct {
	kind      requestKind
	playerID  string
	claimedID string
	client    *client
	handIndex int
	targetID  string
	reason    string
}

// Hub owns the coordinator and serializes every request through a single
// dispatch goroutine, so each request is validated, applied and broadcast
// before the next one starts.
type Hub struct {
	logger       *zap.Logger
	coord        *game.Coordinator
	cfg          config.WebSocketConfig
	passwordHash []byte
	tracer       trace.Tracer
	upgrader     websocket.Upgrader
	onPhase      func(rules.Phase)

	requests chan request
	done     chan struct{}

	// owned by the dispatch goroutine
	clients map[string]*client
}

// HubOption customizes a Hub.
type HubOption func(*Hub)

// WithPhaseListener is called on the dispatch goroutine whenever the game
// starts, finishes or stalls.
func WithPhaseListener(fn func(rules.Phase)) HubOption {
	return func(h *Hub) {
		h.onPhase = fn
	}
}

// WithTracer overrides the tracer used for request spans.
func WithTracer(tracer trace.Tracer) HubOption {
	return func(h *Hub) {
		h.tracer = tracer
	}
}

// NewHub creates a hub. joinPasswordHash is an optional bcrypt hash.
func NewHub(coord *game.Coordinator, cfg config.WebSocketConfig, joinPasswordHash string, logger *zap.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		logger:   logger,
		coord:    coord,
		cfg:      cfg,
		tracer:   telemetry.Tracer(),
		requests: make(chan request, cfg.RequestBuffer),
		done:     make(chan struct{}),
		clients:  make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	if joinPasswordHash != "" {
		h.passwordHash = []byte(joinPasswordHash)
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handler returns the HTTP routes served next to the game socket.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// HandleWS upgrades a connection and joins it as a new player:
// /ws?name=alice&password=secret
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	if len(h.passwordHash) > 0 {
		password := r.URL.Query().Get("password")
		if err := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(password)); err != nil {
			h.logger.Warn("join rejected: bad password", zap.String("remote", r.RemoteAddr))
			http.Error(w, "invalid join password", http.StatusUnauthorized)
			return
		}
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(ws, uuid.NewString(), r.URL.Query().Get("name"), h.cfg.SendBuffer, h.logger)
	go c.writePump(c.send, h.cfg.WriteTimeout, pingInterval(h.cfg.PongTimeout))
	if !h.submit(request{kind: requestJoin, playerID: c.id, client: c}) {
		_ = ws.Close()
		return
	}
	go c.readPump(h, h.cfg.MaxMessageSize, h.cfg.PongTimeout)
}

// Run processes requests until ctx is cancelled, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) {
	handles := []int{h.coord.Subscribe(h.broadcast)}
	if h.onPhase != nil {
		for eventType, phase := range phaseEvents {
			handles = append(handles, h.coord.SubscribeTyped(eventType, func(rules.Event) {
				h.onPhase(phase)
			}))
		}
	}
	defer func() {
		for _, handle := range handles {
			h.coord.Unsubscribe(handle)
		}
		close(h.done)
		for id, c := range h.clients {
			c.close()
			delete(h.clients, id)
		}
		h.logger.Info("hub stopped")
	}()

	h.logger.Info("hub started")
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-h.requests:
			h.handle(req)
		}
	}
}

// submit queues a request for the dispatch goroutine. It reports false once
// the hub has stopped.
func (h *Hub) submit(req request) bool {
	select {
	case h.requests <- req:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) handle(req request) {
	_, span := h.tracer.Start(context.Background(), "hub."+req.kind.String(),
		trace.WithAttributes(attribute.String("player.id", req.playerID)),
	)
	defer span.End()

	start := time.Now()
	err := h.dispatch(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, game.RejectionCode(err))
		h.reject(req, err)
	}

	h.logger.Debug("request handled",
		zap.String("request", req.kind.String()),
		zap.String("player_id", req.playerID),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)
}

func (h *Hub) dispatch(req request) error {
	switch req.kind {
	case requestJoin:
		return h.join(req.client)
	case requestLeave:
		return h.leave(req.playerID)
	case requestInvalid:
		return fmt.Errorf("invalid request: %s", req.reason)
	}

	if _, ok := h.clients[req.playerID]; !ok {
		return game.ErrUnknownPlayer
	}
	if req.claimedID != "" && req.claimedID != req.playerID {
		return ErrIdentityMismatch
	}

	switch req.kind {
	case requestPlayCard:
		return h.coord.PlayCard(req.playerID, req.handIndex, req.targetID)
	case requestEndTurn:
		return h.coord.EndTurn(req.playerID)
	case requestView:
		view := h.coord.View(req.playerID)
		h.send(req.playerID, ServerMessage{Type: MessageView, View: &view})
		return nil
	default:
		return fmt.Errorf("unhandled request %s", req.kind)
	}
}

func (h *Hub) join(c *client) error {
	h.clients[c.id] = c
	c.enqueue(ServerMessage{Type: MessageWelcome, PlayerID: c.id})

	if err := h.coord.RegisterPlayer(c.id, c.name); err != nil {
		h.logger.Info("join refused", zap.String("player_id", c.id), zap.Error(err))
		c.enqueue(rejection(requestJoin, err))
		delete(h.clients, c.id)
		c.close()
		return nil
	}
	return nil
}

func (h *Hub) leave(playerID string) error {
	if c, ok := h.clients[playerID]; ok {
		delete(h.clients, playerID)
		c.close()
	}
	if err := h.coord.Disconnect(playerID); err != nil {
		return fmt.Errorf("failed to disconnect %s: %w", playerID, err)
	}
	return nil
}

func (h *Hub) reject(req request, err error) {
	if req.kind == requestLeave {
		h.logger.Warn("leave failed", zap.String("player_id", req.playerID), zap.Error(err))
		return
	}
	h.logger.Debug("request rejected",
		zap.String("request", req.kind.String()),
		zap.String("player_id", req.playerID),
		zap.String("code", game.RejectionCode(err)),
		zap.Error(err),
	)
	h.send(req.playerID, rejection(req.kind, err))
}

func rejection(kind requestKind, err error) ServerMessage {
	code := game.RejectionCode(err)
	if errors.Is(err, ErrIdentityMismatch) {
		code = "IDENTITY_MISMATCH"
	}
	return ServerMessage{
		Type:    MessageRejected,
		Request: kind.String(),
		Code:    code,
		Reason:  err.Error(),
	}
}

// phaseEvents maps the events that move the session between phases.
var phaseEvents = map[rules.EventType]rules.Phase{
	rules.EventGameStarted:    rules.PhaseInProgress,
	rules.EventGameOver:       rules.PhaseFinished,
	rules.EventSessionStalled: rules.PhaseStalled,
}

// broadcast runs synchronously on the dispatch goroutine for every committed
// session event.
func (h *Hub) broadcast(evt rules.Event) {
	for id, c := range h.clients {
		if evt.VisibleTo(id) {
			e := evt
			c.enqueue(ServerMessage{Type: MessageEvent, Event: &e})
		}
	}
}

func (h *Hub) send(playerID string, msg ServerMessage) {
	if c, ok := h.clients[playerID]; ok {
		c.enqueue(msg)
	}
}

func pingInterval(pongTimeout time.Duration) time.Duration {
	interval := pongTimeout * 9 / 10
	if interval <= 0 {
		return 30 * time.Second
	}
	return interval
}
