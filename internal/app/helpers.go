package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/julienschmidt/httprouter"
	"github.com/migodlcrz/mrt-system-sub000/internal/fare"
	"github.com/migodlcrz/mrt-system-sub000/internal/report"
	"github.com/migodlcrz/mrt-system-sub000/internal/route"
)

type envelope map[string]any

func (app *Application) writeJSON(w http.ResponseWriter, status int, data any) {
	js, err := json.Marshal(data)
	if err != nil {
		app.Logger.Error("Failed to encode response", "error", err)
		report.ReportError(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(js, '\n'))
}

func (app *Application) errorResponse(w http.ResponseWriter, status int, message string) {
	app.writeJSON(w, status, envelope{"error": message})
}

// serviceErrorResponse maps errors of the fare and station services to an
// HTTP status.
func (app *Application) serviceErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, fare.ErrNetworkNotFound), errors.Is(err, fare.ErrStationNotFound):
		app.errorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, fare.ErrNoOrigin), errors.Is(err, fare.ErrInvalidLocation):
		app.errorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, fare.ErrOutsideServiceArea):
		app.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, route.ErrInvalidCoordinates):
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			ExtraContext: map[string]interface{}{"path": r.URL.Path},
			Level:        sentry.LevelWarning,
		})
		app.errorResponse(w, http.StatusBadGateway, "station data is malformed: "+err.Error())
	default:
		app.Logger.Error("Station data unavailable", "path", r.URL.Path, "error", err)
		app.errorResponse(w, http.StatusServiceUnavailable, "station data is currently unavailable")
	}
}

// readNetworkID parses the :network path parameter.
func readNetworkID(r *http.Request) (int, error) {
	params := httprouter.ParamsFromContext(r.Context())
	id, err := strconv.Atoi(params.ByName("network"))
	if err != nil || id < 0 {
		return 0, fare.ErrNetworkNotFound
	}
	return id, nil
}
