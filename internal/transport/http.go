// http.go - HTTP MIDI bridge for controllers that can't hold a raw socket
// open, grounded on Conceptual-Machines-magda-api's gin usage. Accepts a
// JSON array of {status,data1,data2} triples at POST /midi.

package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/charmbracelet/log"
)

type midiEvent struct {
	Status byte `json:"status"`
	Data1  byte `json:"data1"`
	Data2  byte `json:"data2"`
}

// HTTPBridge exposes a gin HTTP server accepting batches of MIDI-like
// events over POST /midi.
type HTTPBridge struct {
	engine *gin.Engine
	sink   EventSink
	logger *log.Logger
	addr   string
}

// NewHTTPBridge builds the bridge's gin router, bound to addr.
func NewHTTPBridge(addr string, sink EventSink, logger *log.Logger) *HTTPBridge {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	b := &HTTPBridge{engine: router, sink: sink, logger: logger, addr: addr}

	router.POST("/midi", b.handleMIDI)
	return b
}

func (b *HTTPBridge) handleMIDI(c *gin.Context) {
	var events []midiEvent
	if err := c.ShouldBindJSON(&events); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sessionID := uuid.New()
	b.logger.Info("transport: http batch received", "session", sessionID, "count", len(events))
	for _, e := range events {
		b.sink.HandleMIDI(e.Status, e.Data1, e.Data2)
	}
	c.JSON(http.StatusOK, gin.H{"accepted": len(events), "session": sessionID})
}

// Serve blocks running the HTTP server until it errors or is shut down.
func (b *HTTPBridge) Serve() error {
	return b.engine.Run(b.addr)
}
