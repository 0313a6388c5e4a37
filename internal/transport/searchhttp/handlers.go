package searchhttp

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"property_search/internal/domain"
	"property_search/internal/lib/auth"
	"property_search/internal/services/mode"
	"property_search/internal/services/session"

	"github.com/go-chi/chi/v5"
)

// decode читает тело запроса и проверяет его тегами validate.
func (s *serverAPI) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &domain.ValidationError{Field: "body", Message: domain.MsgInvalidValue, Err: err}
	}
	if err := s.validate.Struct(dst); err != nil {
		return &domain.ValidationError{Field: "body", Message: domain.MsgInvalidValue, Err: err}
	}
	return nil
}

// session достаёт сессию по {id}. При ошибке ответ уже записан.
func (s *serverAPI) session(w http.ResponseWriter, r *http.Request, op string) (*session.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, op, err, nil)
		return nil, false
	}
	return sess, true
}

// respond отвечает видом сессии или ошибкой операции.
func (s *serverAPI) respond(w http.ResponseWriter, r *http.Request, op string, sess *session.Session, err error) {
	if err != nil {
		s.writeError(w, r, op, err, sess)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *serverAPI) createSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create(auth.FromContext(r.Context()))
	writeJSON(w, http.StatusCreated, sess.View())
}

func (s *serverAPI) getSession(w http.ResponseWriter, r *http.Request) {
	const op = "searchhttp.getSession"

	sess, ok := s.session(w, r, op)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *serverAPI) deleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *serverAPI) toggleParam(w http.ResponseWriter, r *http.Request) {
	const op = "searchhttp.toggleParam"

	sess, ok := s.session(w, r, op)
	if !ok {
		return
	}

	var req toggleRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, op, err, sess)
		return
	}

	key := domain.ParamKey(req.Key)
	if req.Commit {
		s.respond(w, r, op, sess, sess.CommitToggle(r.Context(), key, req.Value))
		return
	}
	s.respond(w, r, op, sess, sess.ToggleParam(key, req.Value))
}

func (s *serverAPI) toggleAmenity(w http.ResponseWriter, r *http.Request) {
	const op = "searchhttp.toggleAmenity"

	sess, ok := s.session(w, r, op)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "amenityID"), 10, 64)
	if err != nil {
		s.writeError(w, r, op, &domain.ValidationError{Field: "amenity", Message: domain.MsgInvalidValue, Err: err}, sess)
		return
	}
	s.respond(w, r, op, sess, sess.ToggleAmenity(r.Context(), id))
}

func (s *serverAPI) setParams(w http.ResponseWriter, r *http.Request) {
	const op = "searchhttp.setParams"

	sess, ok := s.session(w, r, op)
	if !ok {
		return
	}

	var req paramsRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, op, err, sess)
		return
	}

	if req.Commit {
		s.respond(w, r, op, sess, sess.CommitPatch(r.Context(), req.FilterPatch))
		return
	}
	s.respond(w, r, op, sess, sess.SetParams(req.FilterPatch))
}

func (s *serverAPI) commit(w http.ResponseWriter, r *http.Request) {
	const op = "searchhttp.commit"

	sess, ok := s.session(w, r, op)
	if !ok {
		return
	}
	s.respond(w, r, op, sess, sess.Commit(r.Context()))
}

func (s *serverAPI) apply(w http.ResponseWriter, r *http.Request) {
	const op = "searchhttp.apply"

	sess, ok := s.session(w, r, op)
	if !ok {
		return
	}
	_, err := sess.Apply(r.Context())
	s.respond(w, r, op, sess, err)
}

func (s *serverAPI) reset(w http.ResponseWriter, r *http.Request) {
	const op = "searchhttp.reset"

	sess, ok := s.session(w, r, op)
	if !ok {
		return
	}
	s.respond(w, r, op, sess, sess.Reset(r.Context()))
}

func (s *serverAPI) setText(w http.ResponseWriter, r *http.Request) {
	const op = "searchhttp.setText"

	sess, ok := s.session(w, r, op)
	if !ok {
		return
	}

	var req textRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, op, err, sess)
		return
	}

	if req.Submit {
		_, err := sess.SubmitText(r.Context(), req.Text)
		s.respond(w, r, op, sess, err)
		return
	}

	sess.SetText(req.Text)
	writeJSON(w, http.StatusAccepted, sess.View())
}

func (s *serverAPI) searchAI(w http.ResponseWriter, r *http.Request) {
	const op = "searchhttp.searchAI"

	sess, ok := s.session(w, r, op)
	if !ok {
		return
	}

	var req aiRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, op, err, sess)
		return
	}

	_, err := sess.SearchAI(r.Context(), req.Prompt)
	s.respond(w, r, op, sess, err)
}

func (s *serverAPI) switchMode(w http.ResponseWriter, r *http.Request) {
	const op = "searchhttp.switchMode"

	sess, ok := s.session(w, r, op)
	if !ok {
		return
	}

	var req modeRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, op, err, sess)
		return
	}

	target, err := mode.Parse(req.Mode)
	if err != nil {
		s.writeError(w, r, op, &domain.ValidationError{Field: "mode", Message: domain.MsgInvalidValue, Err: err}, sess)
		return
	}

	sess.SwitchMode(target)
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *serverAPI) clearChip(w http.ResponseWriter, r *http.Request) {
	const op = "searchhttp.clearChip"

	sess, ok := s.session(w, r, op)
	if !ok {
		return
	}

	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		s.writeError(w, r, op, &domain.ValidationError{Field: "chip", Message: domain.MsgInvalidValue, Err: err}, sess)
		return
	}
	s.respond(w, r, op, sess, sess.ClearChip(r.Context(), key))
}
