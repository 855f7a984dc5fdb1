// file: internal/server/events.go
// version: 1.0.0
// guid: 7f8a9b0c-1d2e-3f4a-5b6c-7d8e9f0a1b2c

package server

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/jdfalk/music-tagger/internal/batch"
)

// streamEvents streams one batch's progress as Server-Sent Events.
// Each batch has a single consumer: the first client to connect takes
// the channel and later requests get a 404.
func (s *Server) streamEvents(c *gin.Context) {
	id := c.Param("id")

	s.mu.Lock()
	events, ok := s.batches[id]
	delete(s.batches, id)
	s.mu.Unlock()
	if !ok {
		respondNotFound(c, "no pending event stream for batch "+id)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache, no-transform")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	for {
		select {
		case <-c.Request.Context().Done():
			// Client went away; the batch keeps running and can be
			// cancelled explicitly.
			log.Printf("[DEBUG] server: event stream for %s closed by client", id)
			go drainEvents(events)
			return
		case ev, open := <-events:
			if !open {
				return
			}
			writeEvent(c, ev)
			if ev.Kind == batch.EventBatchDone || ev.Kind == batch.EventBatchAborted {
				return
			}
		}
	}
}

func writeEvent(c *gin.Context, ev batch.ProgressEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[ERROR] server: marshal progress event: %v", err)
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Kind, data)
	c.Writer.Flush()
}

// drainEvents keeps an abandoned batch from blocking on its buffered
// channel.
func drainEvents(events <-chan batch.ProgressEvent) {
	for range events {
	}
}
