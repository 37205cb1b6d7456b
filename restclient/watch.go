// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/diffeo/go-geocatalog/catalog"
	"github.com/diffeo/go-geocatalog/restdata"
)

// Watch connects to the server's event stream and calls f once for
// each committed change, in order, until ctx is cancelled or the
// connection drops.  A cancelled context returns nil.
func (c *Client) Watch(ctx context.Context, f func(catalog.Event)) error {
	u, err := c.Template(c.Representation.EventsURL, vars{}, nil)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	dialer := *websocket.DefaultDialer
	if c.Client != nil && c.Client.Jar != nil {
		dialer.Jar = c.Client.Jar
	}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			if herr := checkHTTPStatus(resp); herr != nil {
				return herr
			}
		}
		return err
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		var ev catalog.Event
		if err := restdata.DecodeBytes(b, &ev); err != nil {
			return err
		}
		f(ev)
	}
}
