package controllers_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/agencyportal/internal/pkg/realtime"
)

type sseFrame struct {
	event string
	data  string
}

// readFrames parses an event stream until the body closes or ctx ends
func readFrames(ctx context.Context, body io.Reader) <-chan sseFrame {
	frames := make(chan sseFrame, 16)
	go func() {
		defer close(frames)
		var current sseFrame
		scanner := bufio.NewScanner(body)
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event:"):
				current.event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				current.data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			case line == "" && current.event != "":
				select {
				case frames <- current:
				case <-ctx.Done():
					return
				}
				current = sseFrame{}
			}
		}
	}()
	return frames
}

func nextFrame(t *testing.T, frames <-chan sseFrame) sseFrame {
	t.Helper()
	select {
	case f, ok := <-frames:
		require.True(t, ok, "event stream closed")
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an event")
		return sseFrame{}
	}
}

func TestEventStreamRequiresSession(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/api/events", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEventStreamDeliversOwnAgencyEventsAndHeartbeats(t *testing.T) {
	s := newTestServer(t, nil)
	northstar, cookie := s.agency(t, "northstar")
	southgate, _ := s.agency(t, "southgate")

	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	frames := readFrames(ctx, resp.Body)

	// the subscription exists before the first heartbeat is written
	first := nextFrame(t, frames)
	require.Equal(t, realtime.EventHeartbeat, first.event)

	// events fan out in publish order, so seeing ours first means the other
	// agency's event was never queued for this stream
	s.hub.Publish(realtime.NewEvent(realtime.EventPaymentUpdated, southgate.ID, gin.H{"paymentId": "southgate-payment"}))
	s.hub.Publish(realtime.NewEvent(realtime.EventPaymentUpdated, northstar.ID, gin.H{"paymentId": "northstar-payment"}))

	var got realtime.Event
	for {
		f := nextFrame(t, frames)
		if f.event == realtime.EventHeartbeat {
			continue
		}
		require.Equal(t, realtime.EventPaymentUpdated, f.event)
		require.NoError(t, json.Unmarshal([]byte(f.data), &got))
		break
	}
	assert.Equal(t, northstar.ID, got.AgencyID)
	assert.Equal(t, map[string]interface{}{"paymentId": "northstar-payment"}, got.Data)

	// the stream keeps beating and carries nothing else
	heartbeats := 0
	for heartbeats < 2 {
		f := nextFrame(t, frames)
		require.Equal(t, realtime.EventHeartbeat, f.event, f.data)
		heartbeats++
	}
}

func TestEventStreamAdminSeesEveryAgency(t *testing.T) {
	s := newTestServer(t, nil)
	adminCookie := s.admin(t)
	southgate, _ := s.agency(t, "southgate")

	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	req.AddCookie(adminCookie)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	frames := readFrames(ctx, resp.Body)
	require.Equal(t, realtime.EventHeartbeat, nextFrame(t, frames).event)

	s.hub.Publish(realtime.NewEvent(realtime.EventOfflinePaymentCreated, southgate.ID, nil))
	for {
		f := nextFrame(t, frames)
		if f.event == realtime.EventHeartbeat {
			continue
		}
		assert.Equal(t, realtime.EventOfflinePaymentCreated, f.event)
		assert.Contains(t, f.data, southgate.ID)
		break
	}
}
