package handler

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"cinerec/internal/db"
)

var startTime = time.Now()

type healthResponse struct {
	Status     string  `json:"status"`
	Mongo      string  `json:"mongo"`
	UptimeSecs float64 `json:"uptimeSecs"`
	Goroutines int     `json:"goroutines"`
	HeapMB     float64 `json:"heapMb"`
	MemUsedPct float64 `json:"memUsedPct"`
	CPUPct     float64 `json:"cpuPct"`
}

// @Summary Health check
// @Description Estado del servicio, Mongo y recursos del host.
// @Tags health
// @Produce json
// @Success 200 {object} healthResponse
// @Router /health [get]
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:     "ok",
		Mongo:      "ok",
		UptimeSecs: time.Since(startTime).Seconds(),
		Goroutines: runtime.NumGoroutine(),
	}

	if err := db.Ping(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Mongo = "down"
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	resp.HeapMB = float64(ms.HeapAlloc) / 1024 / 1024

	if vm, err := mem.VirtualMemory(); err == nil {
		resp.MemUsedPct = vm.UsedPercent
	}
	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		resp.CPUPct = pcts[0]
	}

	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
