package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/julianstephens/softworkday/internal/analytics"
	"github.com/julianstephens/softworkday/internal/archive"
	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/models"
	"github.com/julianstephens/softworkday/internal/share"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

type createMessageRequest struct {
	Mood      string `json:"mood"`
	TimeOfDay string `json:"timeOfDay"`
	Context   string `json:"context"`
}

type reflectionRequest struct {
	Reflection string `json:"reflection"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("Cannot encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", "path", r.URL.Path, "error", err)
	} else {
		s.log.Debug("Request rejected", "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error(), RequestID: requestIDFrom(r.Context())})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctrl := s.newController()
	if err := ctrl.Load(r.Context(), r.URL.Query()); err != nil {
		s.log.Error("Cannot load view", "error", err)
	}
	st := ctrl.State()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, newPageData(st, s.deps.Debounce)); err != nil {
		s.log.Error("Cannot render page", "error", err)
	}
}

func (s *Server) handleScheduleGet(w http.ResponseWriter, r *http.Request) {
	sched, err := s.deps.Schedule.Get(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sched)
}

func (s *Server) handleSchedulePut(w http.ResponseWriter, r *http.Request) {
	var sched models.NotificationSchedule
	if err := decodeBody(r, &sched); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if err := s.deps.Schedule.Save(r.Context(), sched); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, models.ErrInvalidSchedule) {
			status = http.StatusBadRequest
		}
		s.writeError(w, r, status, err)
		return
	}
	s.deps.Tracker.Track(analytics.EventSettingsSaved, nil)
	s.writeJSON(w, http.StatusOK, sched)
}

func (s *Server) handleScheduleReset(w http.ResponseWriter, r *http.Request) {
	sched, err := s.deps.Schedule.Reset(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.deps.Tracker.Track(analytics.EventSettingsReset, nil)
	s.writeJSON(w, http.StatusOK, sched)
}

func (s *Server) handleMessageCreate(w http.ResponseWriter, r *http.Request) {
	var req createMessageRequest
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	ctrl := s.newController()
	if req.Mood != "" {
		mood, err := models.ParseMood(req.Mood)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}
		ctrl.SetMood(mood)
	}
	if req.TimeOfDay != "" {
		tod, err := models.ParseTimeOfDay(req.TimeOfDay)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}
		ctrl.SetTimeOfDay(tod)
	}
	ctrl.SetContext(req.Context)
	ctrl.Submit(r.Context())

	st := ctrl.State()
	msg, err := s.deps.Archive.GetMessageByID(r.Context(), st.ActiveID)
	if err != nil || msg == nil {
		// Archiving failed; still hand back what was generated.
		msg = &models.StoredMessage{
			ID:        st.ActiveID,
			Text:      st.Message,
			Mood:      st.Mood,
			TimeOfDay: st.TimeOfDay,
			Timestamp: st.CreatedAt.UnixMilli(),
		}
	}
	s.writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleMessageGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	msg, err := s.deps.Archive.GetMessageByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	if msg == nil {
		s.writeError(w, r, http.StatusNotFound, archive.ErrNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, msg)
}

func (s *Server) handleReflectionPut(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req reflectionRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if err := s.deps.Archive.UpdateReflection(r.Context(), id, req.Reflection); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, archive.ErrNotFound) {
			status = http.StatusNotFound
		}
		s.writeError(w, r, status, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	msg, err := s.deps.Archive.GetMessageByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	if msg == nil {
		s.writeError(w, r, http.StatusNotFound, archive.ErrNotFound)
		return
	}
	s.deps.Tracker.Track(analytics.EventShareButtonClick, analytics.Params{"time_of_day": msg.TimeOfDay})

	img, err := share.RenderCard(msg.Text, msg.TimeOfDay)
	if err != nil {
		s.writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}

	name := share.Filename(msg.TimeOfDay, s.deps.Clock.Now())
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(name))
	if err := png.Encode(w, img); err != nil {
		s.log.Error("Cannot encode share card", "id", id, "error", err)
		return
	}
	s.deps.Tracker.Track(analytics.EventShareCardGenerated, analytics.Params{"time_of_day": msg.TimeOfDay})
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	given := r.Header.Get(constants.DaemonSecretHeader)
	if s.deps.Secret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(s.deps.Secret)) != 1 {
		s.writeError(w, r, http.StatusUnauthorized, errors.New("invalid daemon secret"))
		return
	}
	if s.deps.Reconciler == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, errors.New("alarm scheduler is not running"))
		return
	}

	var sched models.NotificationSchedule
	if err := decodeBody(r, &sched); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if err := s.deps.Reconciler.Reconcile(r.Context(), sched); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, models.ErrInvalidSchedule) {
			status = http.StatusBadRequest
		}
		s.writeError(w, r, status, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
