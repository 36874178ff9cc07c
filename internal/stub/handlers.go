package stub

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"airsense-agents/internal/remote"
	"airsense-agents/internal/types"
	"airsense-agents/internal/utils"
)

const maxRequestBytes = 64 << 10

type sensorPush struct {
	Parameter types.Parameter `json:"parameter"`
	Value     *float64        `json:"value"`
}

type handlers struct {
	store *Store
	now   func() time.Time
}

// NewMux registers the stub routes on a fresh mux.
func NewMux(store *Store) *http.ServeMux {
	h := &handlers{store: store, now: time.Now}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.handleHealthz)
	mux.HandleFunc("POST /api/sensor", h.handleSensor)
	mux.HandleFunc("GET /api/device", h.handleDevice)
	mux.HandleFunc("PUT /api/device", h.handleSetDevice)
	return mux
}

func (h *handlers) handleHealthz(w http.ResponseWriter, r *http.Request) {
	utils.WriteOK(w, http.StatusOK)
}

func (h *handlers) handleSensor(w http.ResponseWriter, r *http.Request) {
	serial := r.Header.Get(remote.SerialNumberHeader)
	if serial == "" {
		utils.WriteError(w, http.StatusUnauthorized, "missing "+remote.SerialNumberHeader)
		return
	}

	var in sensorPush
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	switch in.Parameter {
	case types.Temperature, types.Humidity:
	default:
		utils.WriteError(w, http.StatusBadRequest, "parameter must be temperature or humidity")
		return
	}
	if in.Value == nil {
		utils.WriteError(w, http.StatusBadRequest, "value is required")
		return
	}

	h.store.Add(Record{
		SerialNumber: serial,
		ReceivedAt:   h.now(),
		Parameter:    in.Parameter,
		Value:        *in.Value,
	})
	slog.Debug("stub: reading stored", "serial_number", serial, "parameter", in.Parameter, "value", *in.Value)
	utils.WriteOK(w, http.StatusCreated)
}

func (h *handlers) handleDevice(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(remote.SerialNumberHeader) == "" {
		utils.WriteError(w, http.StatusUnauthorized, "missing "+remote.SerialNumberHeader)
		return
	}
	utils.WriteJSON(w, http.StatusOK, types.FanInstruction{FanSpeed: h.store.FanSpeed()})
}

func (h *handlers) handleSetDevice(w http.ResponseWriter, r *http.Request) {
	var in struct {
		FanSpeed *int `json:"fan_speed"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.FanSpeed == nil {
		utils.WriteError(w, http.StatusBadRequest, "fan_speed is required")
		return
	}
	if err := h.store.SetFanSpeed(*in.FanSpeed); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Info("stub: fan speed updated", "fan_speed", *in.FanSpeed)
	utils.WriteJSON(w, http.StatusOK, types.FanInstruction{FanSpeed: *in.FanSpeed})
}
