// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/diffeo/go-geocatalog/catalog"
	"github.com/diffeo/go-geocatalog/restdata"
)

// eventBuffer is the number of events a websocket client may fall
// behind before it is disconnected.
const eventBuffer = 256

// Events streams committed catalog changes to a websocket client,
// one JSON text message per catalog.Event.  Subscriber callbacks may
// not block, so a client that cannot keep up is closed with "try
// again later".
func (api *restAPI) Events(resp http.ResponseWriter, req *http.Request) {
	notifier, ok := api.Catalog.(catalog.Notifier)
	if !ok {
		writeError(api.Log, req, resp, errNotImplemented{Text: "This catalog does not report changes"})
		return
	}
	conn, err := api.Upgrader.Upgrade(resp, req, nil)
	if err != nil {
		// Upgrade has already sent an HTTP error
		return
	}
	defer conn.Close()
	log := api.Log.WithField("remote", req.RemoteAddr)

	events := make(chan catalog.Event, eventBuffer)
	overflow := make(chan struct{})
	var once sync.Once
	cancel := notifier.Subscribe(func(ev catalog.Event) {
		select {
		case events <- ev:
		default:
			once.Do(func() { close(overflow) })
		}
	})
	defer cancel()

	// The client never sends anything we care about, but reading
	// is how a closed connection is noticed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev := <-events:
			b, err := restdata.EncodeBytes(ev)
			if err == nil {
				err = conn.WriteMessage(websocket.TextMessage, b)
			}
			if err != nil {
				log.WithError(err).Debug("dropping event stream")
				return
			}
		case <-overflow:
			log.Warn("event stream client fell behind")
			msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too far behind")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		case <-closed:
			return
		case <-req.Context().Done():
			return
		}
	}
}
