// Command relay is an in-memory store-and-forward relay for cipherpost.
// It holds device bundles and queued envelopes per address; everything is
// lost on restart. Intended for development and local use.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"

	"cipherpost/internal/domain"
)

type memoryRelay struct {
	mu       sync.RWMutex
	bundles  map[domain.Address]map[domain.DeviceID]domain.DeviceBundle
	queues   map[domain.Address][]domain.Envelope
	presence map[domain.Address]bool
	log      *slog.Logger
}

func newMemoryRelay(log *slog.Logger) *memoryRelay {
	return &memoryRelay{
		bundles:  make(map[domain.Address]map[domain.DeviceID]domain.DeviceBundle),
		queues:   make(map[domain.Address][]domain.Envelope),
		presence: make(map[domain.Address]bool),
		log:      log,
	}
}

func main() {
	addr := flag.String("listen", ":8080", "listen address")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	relay := newMemoryRelay(log)

	log.Info("relay listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, logRequests(log, newMux(relay))); err != nil {
		log.Error("relay stopped", "err", err)
		os.Exit(1)
	}
}

func newMux(relay *memoryRelay) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /bundle", relay.publishBundle)
	mux.HandleFunc("GET /devices/{addr}", relay.deviceList)
	mux.HandleFunc("GET /bundle/{addr}/{dev}", relay.deviceBundle)
	mux.HandleFunc("POST /msg/{addr}", relay.enqueue)
	mux.HandleFunc("GET /msg/{addr}", relay.dequeue)
	mux.HandleFunc("POST /msg/{addr}/ack", relay.ack)
	mux.HandleFunc("POST /presence/{addr}", relay.announce)
	mux.HandleFunc("GET /roster/{addr}", relay.roster)
	return mux
}

func logRequests(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (m *memoryRelay) publishBundle(w http.ResponseWriter, r *http.Request) {
	var b domain.DeviceBundle
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if b.Address == "" || b.DeviceID == 0 {
		http.Error(w, "bundle missing address or device id", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	if m.bundles[b.Address] == nil {
		m.bundles[b.Address] = make(map[domain.DeviceID]domain.DeviceBundle)
	}
	m.bundles[b.Address][b.DeviceID] = b
	m.presence[b.Address] = true
	m.mu.Unlock()

	m.log.Info("bundle published", "address", b.Address, "device", b.DeviceID)
	w.WriteHeader(http.StatusOK)
}

func (m *memoryRelay) deviceList(w http.ResponseWriter, r *http.Request) {
	address := domain.Address(r.PathValue("addr"))

	m.mu.RLock()
	devices := make([]domain.DeviceID, 0, len(m.bundles[address]))
	for id := range m.bundles[address] {
		devices = append(devices, id)
	}
	m.mu.RUnlock()

	sort.Slice(devices, func(i, j int) bool { return devices[i] < devices[j] })
	writeJSON(w, devices)
}

// deviceBundle serves the bundle with at most one one-time pre-key, retiring
// that key from the stored bundle. Each fetch hands out a fresh key; once
// exhausted the bundle is served without one and initiators fall back to the
// 3-DH derivation.
func (m *memoryRelay) deviceBundle(w http.ResponseWriter, r *http.Request) {
	address := domain.Address(r.PathValue("addr"))
	devNum, err := strconv.ParseUint(r.PathValue("dev"), 10, 32)
	if err != nil {
		http.Error(w, "invalid device id", http.StatusBadRequest)
		return
	}
	device := domain.DeviceID(devNum)

	m.mu.Lock()
	bundle, ok := m.bundles[address][device]
	if ok && len(bundle.OneTimePreKeys) > 0 {
		remaining := bundle
		remaining.OneTimePreKeys = bundle.OneTimePreKeys[1:]
		m.bundles[address][device] = remaining

		bundle.OneTimePreKeys = bundle.OneTimePreKeys[:1]
	}
	m.mu.Unlock()

	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, bundle)
}

func (m *memoryRelay) enqueue(w http.ResponseWriter, r *http.Request) {
	address := domain.Address(r.PathValue("addr"))
	var env domain.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	env.To = address

	m.mu.Lock()
	m.queues[address] = append(m.queues[address], env)
	depth := len(m.queues[address])
	m.mu.Unlock()

	m.log.Info("envelope queued", "to", address, "kind", env.Kind, "depth", depth)
	w.WriteHeader(http.StatusOK)
}

func (m *memoryRelay) dequeue(w http.ResponseWriter, r *http.Request) {
	address := domain.Address(r.PathValue("addr"))
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	m.mu.RLock()
	queue := m.queues[address]
	if limit > 0 && limit < len(queue) {
		queue = queue[:limit]
	}
	out := append([]domain.Envelope(nil), queue...)
	m.mu.RUnlock()

	writeJSON(w, out)
}

func (m *memoryRelay) ack(w http.ResponseWriter, r *http.Request) {
	address := domain.Address(r.PathValue("addr"))
	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.Count < 0 {
		http.Error(w, "invalid count", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	queue := m.queues[address]
	if body.Count >= len(queue) {
		delete(m.queues, address)
	} else {
		m.queues[address] = queue[body.Count:]
	}
	m.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

func (m *memoryRelay) announce(w http.ResponseWriter, r *http.Request) {
	address := domain.Address(r.PathValue("addr"))

	m.mu.Lock()
	m.presence[address] = true
	m.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

func (m *memoryRelay) roster(w http.ResponseWriter, r *http.Request) {
	self := domain.Address(r.PathValue("addr"))

	m.mu.RLock()
	roster := make([]domain.Address, 0, len(m.presence))
	for address := range m.presence {
		if address != self {
			roster = append(roster, address)
		}
	}
	m.mu.RUnlock()

	sort.Slice(roster, func(i, j int) bool { return roster[i] < roster[j] })
	writeJSON(w, roster)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
