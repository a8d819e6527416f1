package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/reactorsim/internal/protocol"
)

const (
	writeTimeout  = 5 * time.Second
	readTimeout   = 60 * time.Second
	clientBacklog = 32
)

// Server upgrades websocket clients and bridges them to the core loop.
type Server struct {
	core *Core
	log  *slog.Logger

	upgrader websocket.Upgrader
}

func NewServer(core *Core, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		core: core,
		log:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		name := s.handshake(conn)
		if name == "" {
			return
		}
		s.log.Info("client connected", "client", name, "remote", conn.RemoteAddr())

		out := s.core.Subscribe(clientBacklog)
		defer s.core.Unsubscribe(out)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop: only schema-valid command frames reach the core.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeCmd {
				continue
			}
			cmd, err := protocol.ValidateCmd(msg)
			if err != nil {
				s.log.Warn("rejected command frame", "client", name, "err", err)
				continue
			}
			if cmd.ProtocolVersion != protocol.Version {
				continue
			}
			if !s.core.Submit(cmd) {
				s.log.Warn("command queue full", "client", name, "action", cmd.Action)
			}
		}

		s.log.Info("client disconnected", "client", name)
	}
}

func (s *Server) handshake(conn *websocket.Conn) string {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return ""
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"),
			time.Now().Add(time.Second))
		return ""
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return ""
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"),
			time.Now().Add(time.Second))
		return ""
	}
	if hello.ClientName == "" {
		hello.ClientName = "operator"
	}

	welcome, err := json.Marshal(s.core.Welcome())
	if err != nil {
		return ""
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, welcome); err != nil {
		return ""
	}
	return hello.ClientName
}
