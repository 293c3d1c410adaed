// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/gps_navigator/internal/config"
	"github.com/relabs-tech/gps_navigator/internal/gps"
	"github.com/relabs-tech/gps_navigator/internal/status"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboard is served from the device itself
	},
}

const wsWriteTimeout = 2 * time.Second

// statusHub keeps the latest navigation report and fans it out to websocket
// subscribers. Slow subscribers miss updates rather than block the publisher.
// Sends happen under mu so unsubscribe can never close a channel mid-send.
type statusHub struct {
	mu      sync.RWMutex
	last    status.Report
	have    bool
	fix     gps.Fix
	haveFix bool
	subs    map[int]chan status.Report
	nextID  int
}

func newStatusHub() *statusHub {
	return &statusHub{subs: make(map[int]chan status.Report)}
}

func (h *statusHub) Report(r status.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = r
	h.have = true
	for _, ch := range h.subs {
		select {
		case ch <- r:
		default:
		}
	}
}

func (h *statusHub) setFix(f gps.Fix) {
	h.mu.Lock()
	h.fix = f
	h.haveFix = true
	h.mu.Unlock()
}

func (h *statusHub) latest() (status.Report, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.have
}

func (h *statusHub) latestFix() (gps.Fix, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.fix, h.haveFix
}

// subscribe returns a channel primed with the latest report, if any.
func (h *statusHub) subscribe() (int, <-chan status.Report) {
	ch := make(chan status.Report, 4)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	if h.have {
		ch <- h.last
	}
	h.mu.Unlock()
	return id, ch
}

func (h *statusHub) unsubscribe(id int) {
	h.mu.Lock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
	h.mu.Unlock()
}

func newWebMux(hub *statusHub, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/navigation", func(w http.ResponseWriter, r *http.Request) {
		rep, ok := hub.latest()
		if !ok {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, rep)
	})

	mux.HandleFunc("/api/gps", func(w http.ResponseWriter, r *http.Request) {
		fix, ok := hub.latestFix()
		if !ok {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, fix)
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleStatusWS(hub, w, r)
	})

	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	return mux
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

func handleStatusWS(hub *statusHub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	id, ch := hub.subscribe()
	defer hub.unsubscribe(id)

	// The client never sends anything useful; reading detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case rep, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(rep); err != nil {
				log.Printf("web: websocket write error: %v", err)
				return
			}
		}
	}
}

// RunWeb subscribes to the navigator's MQTT topics and serves the latest
// status as JSON, over a websocket, and as a static dashboard from ./web.
func RunWeb(ctx context.Context, cfg config.Config) error {
	if cfg.MQTTBroker == "" {
		return errors.New("web: MQTT_BROKER is not configured")
	}

	client, err := status.ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	hub := newStatusHub()

	token := client.Subscribe(cfg.TopicNavStatus, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var rep status.Report
		if err := json.Unmarshal(msg.Payload(), &rep); err != nil {
			log.Printf("web: status unmarshal error: %v", err)
			return
		}
		hub.Report(rep)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to MQTT topic %s", cfg.TopicNavStatus)

	if cfg.TopicGPS != "" {
		token = client.Subscribe(cfg.TopicGPS, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var f gps.Fix
			if err := json.Unmarshal(msg.Payload(), &f); err != nil {
				log.Printf("web: gps unmarshal error: %v", err)
				return
			}
			hub.setFix(f)
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("web: subscribed to MQTT topic %s", cfg.TopicGPS)
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.WebServerPort),
		Handler:           newWebMux(hub, "web"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("web server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Println("web: shutting down")
	return nil
}
