package respond

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
)

// QueryDate parses an optional YYYY-MM-DD query parameter.
func QueryDate(r *http.Request, name string) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, apperr.Invalid(name, "must be YYYY-MM-DD")
	}

	return &t, nil
}

func QueryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return nil, apperr.Invalid(name, "must be a uuid")
	}

	return &id, nil
}

// QueryMonth reads year and month, defaulting each to the month of now.
func QueryMonth(r *http.Request, now time.Time) (int, time.Month, error) {
	year, month := now.Year(), now.Month()

	if s := r.URL.Query().Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 1900 || y > 9999 {
			return 0, 0, apperr.Invalid("year", "must be a four digit year")
		}

		year = y
	}

	if s := r.URL.Query().Get("month"); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, apperr.Invalid("month", "must be between 1 and 12")
		}

		month = time.Month(m)
	}

	return year, month, nil
}
