package dashboard

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/netviz/internal/activation"
	"github.com/ziadkadry99/netviz/internal/diagrams"
	"github.com/ziadkadry99/netviz/internal/probability"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 8
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientMessage is the incoming WebSocket message format.
type clientMessage struct {
	Type          string    `json:"type"` // "simulate", "probabilities" or "select"
	Probabilities []float64 `json:"probabilities,omitempty"`
	Category      string    `json:"category,omitempty"`
}

// streamMessage is the outgoing WebSocket message format.
type streamMessage struct {
	Type    string            `json:"type"` // "frame", "selected" or "error"
	Frame   *activation.Frame `json:"frame,omitempty"`
	SVG     string            `json:"svg,omitempty"`
	Content string            `json:"content,omitempty"`
}

func frameMessage(f *activation.Frame) streamMessage {
	return streamMessage{Type: "frame", Frame: f, SVG: diagrams.SVG(f)}
}

// handleWebSocket sends the current frame on connect and every published
// frame after that. A single writer goroutine owns the connection; slow
// clients drop intermediate frames.
func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	if d.metrics != nil {
		d.metrics.StreamClients.Inc()
		defer d.metrics.StreamClients.Dec()
	}

	send := make(chan streamMessage, sendBuffer)
	done := make(chan struct{})

	push := func(msg streamMessage) {
		select {
		case send <- msg:
		case <-done:
		default:
			// Drop the oldest queued message to make room.
			select {
			case <-send:
			default:
			}
			select {
			case send <- msg:
			default:
			}
		}
	}

	unsubscribe := d.session.Subscribe(func(f *activation.Frame) {
		push(frameMessage(f))
	})

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-send:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(msg); err != nil {
					d.logger.Debug("websocket write", zap.Error(err))
					conn.Close()
					return
				}
			case <-done:
				return
			}
		}
	}()
	defer func() {
		unsubscribe()
		close(done)
		<-writerDone
	}()

	push(frameMessage(d.session.Frame()))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				d.logger.Debug("websocket read", zap.Error(err))
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			push(errorMessage("invalid message format"))
			continue
		}

		switch msg.Type {
		case "simulate":
			// The new frame reaches this client through the subscription.
			d.session.Simulate()
		case "probabilities":
			d.session.SetProbabilities(probability.Vector(msg.Probabilities))
		case "select":
			if err := d.session.Store().Select(msg.Category); err != nil {
				push(errorMessage(err.Error()))
				continue
			}
			sel, _ := d.session.Store().Selected()
			push(streamMessage{Type: "selected", Content: sel.ID})
		default:
			push(errorMessage("unknown message type: " + msg.Type))
		}
	}
}

func errorMessage(content string) streamMessage {
	return streamMessage{Type: "error", Content: content}
}
