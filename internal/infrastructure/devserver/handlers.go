package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tesso57/pubdesk/internal/domain/auth"
	"github.com/tesso57/pubdesk/internal/domain/publication"
)

const maxBodyBytes = 1 << 20

type ctxKey struct{}

type listPayload struct {
	Data  []publication.Publication `json:"data"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
	Total int                       `json:"total"`
}

type idsPayload struct {
	IDs []string `json:"ids"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"data": data})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(dest)
}

func userID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// requireUser resolves the bearer token or answers 401.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			writeMessage(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		id, err := s.store.UserForToken(r.Context(), token)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				s.log.Error().Err(err).Msg("token lookup failed")
			}
			writeMessage(w, http.StatusUnauthorized, "Session expired, please log in again")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := decodeBody(w, r, &creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	creds = creds.Normalize()
	if err := auth.ValidateSignup(creds); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	session, err := s.store.Signup(r.Context(), creds)
	if errors.Is(err, ErrConflict) {
		writeMessage(w, http.StatusConflict, "Email is already registered")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeData(w, http.StatusCreated, session)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := decodeBody(w, r, &creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	creds = creds.Normalize()
	if creds.Email == "" || creds.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	session, err := s.store.Login(r.Context(), creds.Email, creds.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeData(w, http.StatusOK, session)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q, ok := parseQuery(w, r)
	if !ok {
		return
	}
	items, total, err := s.store.List(r.Context(), userID(r.Context()), q)
	if err != nil {
		s.internalError(w, err)
		return
	}
	q = q.normalized()
	writeData(w, http.StatusOK, listPayload{Data: items, Page: q.Page, Limit: q.Limit, Total: total})
}

func (s *Server) handleListPublic(w http.ResponseWriter, r *http.Request) {
	q, ok := parseQuery(w, r)
	if !ok {
		return
	}
	items, total, err := s.store.ListPublic(r.Context(), q)
	if err != nil {
		s.internalError(w, err)
		return
	}
	q = q.normalized()
	writeData(w, http.StatusOK, listPayload{Data: items, Page: q.Page, Limit: q.Limit, Total: total})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(r.Context(), userID(r.Context()), chi.URLParam(r, "id"))
	s.respondPublication(w, http.StatusOK, p, err)
}

func (s *Server) handleGetPublic(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetPublic(r.Context(), chi.URLParam(r, "id"))
	s.respondPublication(w, http.StatusOK, p, err)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var draft publication.Draft
	if err := decodeBody(w, r, &draft); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p, err := s.store.Create(r.Context(), userID(r.Context()), draft)
	s.respondPublication(w, http.StatusCreated, p, err)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch publication.Patch
	if err := decodeBody(w, r, &patch); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p, err := s.store.Update(r.Context(), userID(r.Context()), chi.URLParam(r, "id"), patch)
	s.respondPublication(w, http.StatusOK, p, err)
}

func (s *Server) handleDelete(deleted bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := s.store.SetDeleted(r.Context(), userID(r.Context()), []string{chi.URLParam(r, "id")}, deleted)
		if err != nil {
			s.internalError(w, err)
			return
		}
		if n == 0 {
			writeMessage(w, http.StatusNotFound, "Publication not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleBulk(deleted bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body idsPayload
		if err := decodeBody(w, r, &body); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if len(body.IDs) == 0 {
			writeMessage(w, http.StatusBadRequest, "No publications selected")
			return
		}
		n, err := s.store.SetDeleted(r.Context(), userID(r.Context()), body.IDs, deleted)
		if err != nil {
			s.internalError(w, err)
			return
		}
		writeData(w, http.StatusOK, publication.BulkResult{Count: n})
	}
}

func (s *Server) respondPublication(w http.ResponseWriter, status int, p publication.Publication, err error) {
	var verr publication.ValidationError
	switch {
	case err == nil:
		writeData(w, status, p)
	case errors.Is(err, ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Publication not found")
	case errors.As(err, &verr):
		writeMessage(w, http.StatusBadRequest, verr.Error())
	default:
		s.internalError(w, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.log.Error().Err(err).Msg("request failed")
	writeMessage(w, http.StatusInternalServerError, "Internal server error")
}

func parseQuery(w http.ResponseWriter, r *http.Request) (Query, bool) {
	values := r.URL.Query()
	q := Query{
		Search:  values.Get("search"),
		Status:  publication.Status(strings.ToUpper(strings.TrimSpace(values.Get("status")))),
		Deleted: values.Get("showDeleted") == "true",
	}
	if q.Status != "" && !q.Status.Valid() {
		writeMessage(w, http.StatusBadRequest, "Invalid status filter")
		return Query{}, false
	}
	for name, dest := range map[string]*int{"page": &q.Page, "limit": &q.Limit} {
		raw := values.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeMessage(w, http.StatusBadRequest, "Invalid "+name)
			return Query{}, false
		}
		*dest = n
	}
	return q, true
}
