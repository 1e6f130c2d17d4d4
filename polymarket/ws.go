package polymarket

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var wsLog = logrus.WithField("component", "polymarket_user_feed")

// UserChannelURL is the venue's authenticated user-channel endpoint.
const UserChannelURL = "wss://ws-subscriptions-clob.polymarket.com/ws/user"

// MessageHandler receives every non-control message read from the channel.
type MessageHandler func(ctx context.Context, raw []byte)

// FeedConfig configures the user-channel feed.
type FeedConfig struct {
	URL      string
	ProxyURL string
	// Markets limits the subscription to these condition ids; empty
	// subscribes to all of the account's activity.
	Markets        []string
	MaxReconnects  int
	ReconnectDelay time.Duration
	WriteTimeout   time.Duration
	// OnReconnect runs every time a reconnect is triggered, before the
	// dial. Used for counters; may be nil.
	OnReconnect func()
}

// DefaultFeedConfig returns the production settings.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		URL:            UserChannelURL,
		MaxReconnects:  10,
		ReconnectDelay: 5 * time.Second,
		WriteTimeout:   10 * time.Second,
	}
}

// Feed maintains the authenticated user-channel websocket and hands every
// payload message to the handler. It answers venue PINGs, sends its own,
// and reconnects with a growing delay when the connection goes stale.
type Feed struct {
	creds   Credentials
	config  FeedConfig
	handler MessageHandler

	mu     sync.RWMutex
	conn   *websocket.Conn
	closed bool
	cancel context.CancelFunc

	rootCtx context.Context
	wg      sync.WaitGroup
	writeMu sync.Mutex

	reconnectMu    sync.Mutex
	reconnectCount int

	pongMu   sync.RWMutex
	lastPong time.Time
}

// NewFeed builds a feed for the given credentials. handler must not be nil.
func NewFeed(creds Credentials, config FeedConfig, handler MessageHandler) *Feed {
	if handler == nil {
		panic("polymarket: nil feed handler")
	}
	if config.URL == "" {
		config.URL = UserChannelURL
	}
	if config.MaxReconnects == 0 {
		config.MaxReconnects = 10
	}
	if config.ReconnectDelay == 0 {
		config.ReconnectDelay = 5 * time.Second
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = 10 * time.Second
	}
	return &Feed{
		creds:    creds,
		config:   config,
		handler:  handler,
		lastPong: time.Now(),
	}
}

// Start dials the channel, authenticates, and begins streaming. It returns
// once the connection is established; reads run in the background until
// ctx is canceled or Stop is called.
func (f *Feed) Start(ctx context.Context) error {
	f.rootCtx = ctx
	return f.connect(ctx)
}

// Stop tears down the connection and waits for the background loops.
func (f *Feed) Stop() {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	if f.conn != nil {
		f.conn.Close()
		f.conn = nil
	}
	f.closed = true
	f.mu.Unlock()
	f.wg.Wait()
	wsLog.Info("user feed stopped")
}

func (f *Feed) connect(ctx context.Context) error {
	f.mu.Lock()
	if f.conn != nil && !f.closed {
		f.conn.Close()
		f.conn = nil
		f.closed = true
	}
	if f.cancel != nil {
		f.cancel()
	}
	var loopCtx context.Context
	loopCtx, f.cancel = context.WithCancel(ctx)
	f.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: 30 * time.Second}
	if proxy := f.proxyURL(); proxy != "" {
		parsed, err := url.Parse(proxy)
		if err != nil {
			wsLog.Warnf("invalid proxy url %q, dialing direct: %v", proxy, err)
		} else {
			dialer.Proxy = http.ProxyURL(parsed)
			wsLog.Infof("dialing user channel via proxy %s", proxy)
		}
	}

	var conn *websocket.Conn
	var err error
	const maxRetries = 3
	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			wsLog.Infof("redialing user channel (attempt %d/%d)", i+1, maxRetries)
			time.Sleep(time.Duration(i) * 2 * time.Second)
		}
		conn, _, err = dialer.Dial(f.config.URL, nil)
		if err == nil {
			break
		}
		wsLog.Warnf("user channel dial failed (attempt %d/%d): %v", i+1, maxRetries, err)
	}
	if err != nil {
		return fmt.Errorf("dial user channel after %d attempts: %w", maxRetries, err)
	}

	f.mu.Lock()
	f.conn = conn
	f.closed = false
	f.mu.Unlock()

	if err := f.authenticate(conn); err != nil {
		conn.Close()
		f.mu.Lock()
		f.conn = nil
		f.closed = true
		f.mu.Unlock()
		return fmt.Errorf("user channel auth: %w", err)
	}

	f.wg.Add(3)
	go func() {
		defer f.wg.Done()
		f.readLoop(loopCtx, conn)
	}()
	go func() {
		defer f.wg.Done()
		f.pingLoop(loopCtx, conn)
	}()
	go func() {
		defer f.wg.Done()
		f.healthLoop(loopCtx, conn)
	}()

	wsLog.Info("user channel connected")
	return nil
}

func (f *Feed) proxyURL() string {
	if f.config.ProxyURL != "" {
		return f.config.ProxyURL
	}
	for _, key := range []string{"HTTPS_PROXY", "https_proxy", "HTTP_PROXY", "http_proxy"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func (f *Feed) authenticate(conn *websocket.Conn) error {
	authMsg := map[string]interface{}{
		"auth": map[string]string{
			"apikey":     f.creds.APIKey,
			"secret":     f.creds.APISecret,
			"passphrase": f.creds.Passphrase,
		},
		"type": "user",
	}
	if len(f.config.Markets) > 0 {
		authMsg["markets"] = f.config.Markets
	}
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout))
	return conn.WriteJSON(authMsg)
}

func (f *Feed) writeText(conn *websocket.Conn, payload []byte) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, payload)
}

func (f *Feed) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// A finite read deadline keeps the loop responsive to ctx without
		// treating ordinary quiet periods as failures.
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if netErr, ok := err.(interface{ Timeout() bool }); ok && netErr.Timeout() {
				continue
			}
			select {
			case <-ctx.Done():
				wsLog.Debug("user channel closed (context canceled)")
				return
			default:
			}
			f.mu.RLock()
			alreadyClosed := f.closed
			f.mu.RUnlock()
			if alreadyClosed {
				wsLog.Debugf("user channel closed: %v", err)
				return
			}
			wsLog.Warnf("user channel read error: %v", err)
			go f.reconnectFrom(conn)
			return
		}

		switch string(message) {
		case "PING":
			if err := f.writeText(conn, []byte("PONG")); err != nil {
				wsLog.Debugf("PONG write failed: %v", err)
			}
			continue
		case "PONG":
			f.pongMu.Lock()
			f.lastPong = time.Now()
			f.pongMu.Unlock()
			continue
		}

		f.handler(ctx, message)
	}
}

func (f *Feed) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.mu.RLock()
			closed := f.closed
			f.mu.RUnlock()
			if closed {
				return
			}
			if err := f.writeText(conn, []byte("PING")); err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					wsLog.Warnf("PING write failed, reconnecting: %v", err)
					go f.reconnectFrom(conn)
					return
				}
			}
		}
	}
}

func (f *Feed) healthLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.pongMu.RLock()
			lastPong := f.lastPong
			f.pongMu.RUnlock()
			if time.Since(lastPong) > 60*time.Second {
				select {
				case <-ctx.Done():
					return
				default:
					wsLog.Warn("no PONG for 60s, reconnecting")
					go f.reconnectFrom(conn)
					return
				}
			}
		}
	}
}

// reconnectFrom replaces the failed connection. Several loops can observe
// the same failure; the stale-connection check makes the extra triggers
// no-ops once a replacement is up.
func (f *Feed) reconnectFrom(failed *websocket.Conn) {
	f.reconnectMu.Lock()
	defer f.reconnectMu.Unlock()

	ctx := f.rootCtx
	select {
	case <-ctx.Done():
		return
	default:
	}

	f.mu.RLock()
	current := f.conn
	closed := f.closed
	f.mu.RUnlock()
	if current != nil && current != failed && !closed {
		return
	}

	if f.reconnectCount >= f.config.MaxReconnects {
		wsLog.Errorf("giving up after %d reconnect attempts", f.config.MaxReconnects)
		return
	}
	f.reconnectCount++
	delay := f.config.ReconnectDelay * time.Duration(f.reconnectCount)

	if f.config.OnReconnect != nil {
		f.config.OnReconnect()
	}
	wsLog.Infof("reconnecting in %v (attempt %d/%d)", delay, f.reconnectCount, f.config.MaxReconnects)

	f.mu.Lock()
	if f.conn != nil {
		f.conn.Close()
		f.conn = nil
	}
	f.closed = true
	f.mu.Unlock()

	select {
	case <-ctx.Done():
		return
	case <-time.After(delay):
	}

	attempt := f.reconnectCount
	if err := f.connect(ctx); err != nil {
		wsLog.Errorf("reconnect failed: %v", err)
		select {
		case <-ctx.Done():
		default:
			go f.reconnectFrom(nil)
		}
		return
	}
	f.reconnectCount = 0
	wsLog.Infof("reconnected (attempt %d)", attempt)
}
