package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/srfrogui/giacomoNsei/internal/domain"
)

// HolidayProvider exposes the configured non-working days.
type HolidayProvider interface {
	Holidays() []time.Time
}

// HandleHolidays serves the holiday set as a sorted array of YYYY-MM-DD
// strings.
func HandleHolidays(svc HolidayProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		days := svc.Holidays()
		resp := make([]string, 0, len(days))
		for _, d := range days {
			resp = append(resp, d.Format(domain.DateLayout))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
