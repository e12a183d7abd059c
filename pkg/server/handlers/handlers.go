// Package handlers binds the stack device to HTTP. Push and pop keep the
// byte-oriented contract: payloads are raw little-endian int32, exactly four
// bytes, and an empty pop is zero transfer rather than a failure.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/dshibkova/intstack/pkg/device"
	"github.com/dshibkova/intstack/pkg/events"
)

// Handlers holds the stack device and provides HTTP handlers
type Handlers struct {
	dev    *device.StackDevice
	events *events.Broadcaster
}

// New creates a new Handlers instance. The broadcaster may be nil when
// watch streams are disabled.
func New(dev *device.StackDevice, broadcaster *events.Broadcaster) *Handlers {
	return &Handlers{dev: dev, events: broadcaster}
}

// Push handles POST /stack. The body must be exactly one wire element.
func (h *Handlers) Push(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, device.ErrInvalidArgument)
		return
	}
	defer r.Body.Close()

	if len(body) != device.IntSize {
		writeError(w, device.ErrInvalidArgument)
		return
	}

	n, err := h.dev.Write(body)
	if err != nil {
		writeError(w, err)
		return
	}

	v, _ := device.DecodeInt32(body)
	h.publish(events.OpPush, &v)
	writeSuccess(w, map[string]interface{}{"bytes": n})
}

// Pop handles DELETE /stack. An empty stack answers 204 No Content; a
// popped value goes back as a four-byte octet-stream body.
func (h *Handlers) Pop(w http.ResponseWriter, r *http.Request) {
	buf := make([]byte, device.IntSize)
	n, err := h.dev.Read(buf)
	if err != nil {
		writeError(w, err)
		return
	}

	if n == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	v, _ := device.DecodeInt32(buf)
	h.publish(events.OpPop, &v)

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(buf)
}

// SetSize handles PUT /stack/size. The body carries the desired capacity as
// one wire element, passed through as the resize control command.
func (h *Handlers) SetSize(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, device.ErrInvalidArgument)
		return
	}
	defer r.Body.Close()

	if err := h.dev.Control(device.CmdSetSize, body); err != nil {
		writeError(w, err)
		return
	}

	h.publish(events.OpResize, nil)
	_, capacity := h.dev.Stats()
	writeSuccess(w, map[string]interface{}{"capacity": capacity})
}

// Stats handles GET /stack. Depth and capacity are re-read under the engine
// lock on every request; nothing is cached between calls.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	depth, capacity := h.dev.Stats()
	writeSuccess(w, map[string]interface{}{
		"depth":    depth,
		"capacity": capacity,
	})
}

// Snapshot handles GET /stack/snapshot, returning the live elements bottom
// first. With ?compress=zstd the JSON envelope is zstd-compressed.
func (h *Handlers) Snapshot(w http.ResponseWriter, r *http.Request) {
	values, err := h.dev.Snapshot()
	if err != nil {
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("compress") == "zstd" {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "zstd")
		enc, err := zstd.NewWriter(w)
		if err != nil {
			writeError(w, err)
			return
		}
		defer enc.Close()
		json.NewEncoder(enc).Encode(envelope(values))
		return
	}

	writeSuccess(w, values)
}

// Health returns a handler reporting service liveness and uptime.
func (h *Handlers) Health(startTime time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := time.Since(startTime)
		writeSuccess(w, map[string]interface{}{
			"status": "healthy",
			"uptime": uptime.String(),
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

// publish emits a watch event with the state observed after the operation.
func (h *Handlers) publish(op events.Op, value *int32) {
	if h.events == nil {
		return
	}
	depth, capacity := h.dev.Stats()
	h.events.Publish(events.Event{
		Op:       op,
		Value:    value,
		Depth:    depth,
		Capacity: capacity,
		Time:     time.Now(),
	})
}

// statusFor maps device error codes onto HTTP statuses. The envelope's
// "code" field stays the device code so clients can propagate it as an
// exit status.
func statusFor(code int) (int, string) {
	switch code {
	case device.ErrInvalidArgument.Code:
		return http.StatusBadRequest, "InvalidArgument"
	case device.ErrRange.Code:
		return http.StatusConflict, "StackFull"
	case device.ErrOutOfMemory.Code:
		return http.StatusInsufficientStorage, "OutOfMemory"
	case device.ErrNotSupported.Code:
		return http.StatusBadRequest, "NotSupported"
	case device.ErrNoDevice.Code:
		return http.StatusServiceUnavailable, "Unavailable"
	default:
		return http.StatusInternalServerError, "InternalError"
	}
}

// writeError writes an error response with the device code preserved
func writeError(w http.ResponseWriter, err error) {
	code := 0
	if devErr, ok := err.(*device.Error); ok {
		code = devErr.Code
	}
	status, errorType := statusFor(code)

	response := map[string]interface{}{
		"ok":      false,
		"error":   errorType,
		"message": err.Error(),
		"code":    code,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func envelope(result interface{}) map[string]interface{} {
	return map[string]interface{}{
		"ok":     true,
		"result": result,
	}
}

// writeSuccess writes a success response
func writeSuccess(w http.ResponseWriter, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(envelope(result))
}
