package ws

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/xPeer/rpc/common"
	"github.com/ValentinKolb/xPeer/rpc/transport"
	"github.com/ValentinKolb/xPeer/rpc/transport/base"
	"github.com/gorilla/websocket"
	"net/http"
	"sync"
	"time"
)

// closeGracePeriod bounds the write of the close control frame
const closeGracePeriod = time.Second

// clientConnector implements the IClientConnector interface for websockets
type clientConnector struct {
	dialer *websocket.Dialer
	header http.Header
}

// frameConn adapts a websocket connection to transport.IFrameConn
type frameConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex // gorilla allows one concurrent writer
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "websocket"
}

func (c *clientConnector) Connect(ctx context.Context, endpoint string) (transport.IFrameConn, error) {
	conn, resp, err := c.dialer.DialContext(ctx, endpoint, c.header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake with %s failed (status %d): %w", endpoint, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial %s failed: %w", endpoint, err)
	}
	return &frameConn{conn: conn}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IFrameConn)
// --------------------------------------------------------------------------

func (f *frameConn) ReadFrame() (string, error) {
	_, data, err := f.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return "", fmt.Errorf("%w: %v", transport.ErrClosed, err)
		}
		return "", err
	}
	return string(data), nil
}

func (f *frameConn) WriteFrame(frame string) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	return f.conn.WriteMessage(websocket.TextMessage, []byte(frame))
}

func (f *frameConn) Close() error {
	f.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = f.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
	f.writeMu.Unlock()
	return f.conn.Close()
}

// --------------------------------------------------------------------------
// Factory Methods
// --------------------------------------------------------------------------

// NewConnector creates a websocket connector. header is sent with the handshake and may be nil.
func NewConnector(config common.ClientConfig, header http.Header) transport.IClientConnector {
	return &clientConnector{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: config.HandshakeTimeout(),
		},
		header: header,
	}
}

// NewWebSocketClientTransport creates a reconnecting websocket client transport
func NewWebSocketClientTransport(config common.ClientConfig, opts ...base.Option) transport.IClientTransport {
	return base.NewBaseClientTransport(NewConnector(config, nil), config, opts...)
}
