package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/warp/leave-engine/holidays"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// PUBLIC HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns active holidays, filtered by ?country= and ?year=.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year := 0
	if y := q.Get("year"); y != "" {
		var err error
		if year, err = strconv.Atoi(y); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
	}

	list, err := h.Holidays.List(r.Context(), q.Get("country"), year)
	if err != nil {
		h.writeServiceError(w, "Failed to list holidays", err)
		return
	}
	writeJSON(w, http.StatusOK, toHolidayDTOs(list))
}

// ListCountries returns the countries the lookup can generate holidays for.
func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Holidays.Countries())
}

// FetchHolidays imports a country's holidays for a year, skipping dates
// already on record.
func (h *Handler) FetchHolidays(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1900 || year > 2200 {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	created, err := h.Holidays.FetchAndSave(r.Context(), country, year)
	if err != nil {
		h.writeServiceError(w, "Failed to fetch holidays", err)
		return
	}
	all, err := h.Holidays.List(r.Context(), country, year)
	if err != nil {
		h.writeServiceError(w, "Failed to list holidays", err)
		return
	}
	writeJSON(w, http.StatusOK, FetchHolidaysResponse{
		Country:  strings.ToUpper(country),
		Year:     year,
		Created:  len(created),
		Holidays: toHolidayDTOs(all),
	})
}

func (h *Handler) GetHoliday(w http.ResponseWriter, r *http.Request) {
	hol, err := h.Holidays.Get(r.Context(), holidayID(r))
	if err != nil {
		h.writeServiceError(w, "Failed to get holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, toHolidayDTO(*hol))
}

func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req HolidayRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := leave.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	hol, err := h.Holidays.Create(r.Context(), holidays.CreateCommand{
		Name:        req.Name,
		Date:        date,
		Description: req.Description,
		Country:     req.Country,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to create holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(*hol))
}

func (h *Handler) UpdateHoliday(w http.ResponseWriter, r *http.Request) {
	var req UpdateHolidayRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := optionalDate(deref(req.Date))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	hol, err := h.Holidays.Update(r.Context(), holidayID(r), holidays.UpdateCommand{
		Name:        req.Name,
		Date:        date,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to update holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, toHolidayDTO(*hol))
}

func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Holidays.Delete(r.Context(), holidayID(r)); err != nil {
		h.writeServiceError(w, "Failed to delete holiday", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func holidayID(r *http.Request) leave.HolidayID {
	return leave.HolidayID(chi.URLParam(r, "id"))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
