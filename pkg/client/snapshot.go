package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zstd"

	"github.com/dshibkova/intstack/pkg/events"
)

// Snapshot returns the live stack elements, bottom first. With compress set
// the transfer is zstd-encoded and decompressed locally.
func (c *Client) Snapshot(compress bool) ([]int32, error) {
	path := "/stack/snapshot"
	if compress {
		path += "?compress=zstd"
	}

	resp, err := c.do("GET", path, "", nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	defer resp.Body.Close()

	var env struct {
		OK     bool    `json:"ok"`
		Result []int32 `json:"result"`
	}
	if resp.Header.Get("Content-Encoding") == "zstd" {
		dec, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		defer dec.Close()
		if err := json.NewDecoder(dec).Decode(&env); err != nil {
			return nil, fmt.Errorf("failed to parse snapshot response: %w", err)
		}
	} else {
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return nil, fmt.Errorf("failed to parse snapshot response: %w", err)
		}
	}
	return env.Result, nil
}

// Watch subscribes to the server's stack event stream. Events arrive on the
// returned channel until the context is cancelled or the server hangs up;
// the channel is closed either way.
func (c *Client) Watch(ctx context.Context) (<-chan events.Event, error) {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/stack/watch"

	var header http.Header
	if c.apiKey != "" {
		header = http.Header{"Authorization": []string{"Bearer " + c.apiKey}}
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPresent, err)
	}

	ch := make(chan events.Event)
	go func() {
		defer close(ch)
		defer conn.Close()
		for {
			var e events.Event
			if err := conn.ReadJSON(&e); err != nil {
				return
			}
			select {
			case ch <- e:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Tear the connection down when the context ends so the reader above
	// unblocks.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	return ch, nil
}
