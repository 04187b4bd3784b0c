package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/justestif/go-mood-music/internal/conversation"
	"github.com/justestif/go-mood-music/internal/imageclf"
	"github.com/justestif/go-mood-music/internal/lexicon"
	"github.com/justestif/go-mood-music/internal/playback"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 64 << 10

// ImageClassifier labels a still image with an emotion.
type ImageClassifier interface {
	Classify(ctx context.Context, image io.Reader, filename string) (lexicon.Emotion, error)
}

// Handlers contains the HTTP handlers for the chat API.
type Handlers struct {
	sessions   *SessionStore
	classifier ImageClassifier
	logger     zerolog.Logger
}

// NewHandlers creates a new Handlers instance. A nil classifier disables
// image uploads.
func NewHandlers(sessions *SessionStore, classifier ImageClassifier, logger zerolog.Logger) *Handlers {
	return &Handlers{
		sessions:   sessions,
		classifier: classifier,
		logger:     logger,
	}
}

type sessionResponse struct {
	ID string `json:"id"`
	conversation.Snapshot
}

type createRequest struct {
	Emotion string `json:"emotion"`
}

type messageRequest struct {
	Text string `json:"text"`
}

type emotionRequest struct {
	Emotion string `json:"emotion"`
}

type selectRequest struct {
	ID string `json:"id"`
}

type playbackEvent struct {
	Type    string `json:"type"`
	TrackID string `json:"track_id"`
}

type ctxKey struct{}

// loadSession resolves {id} into the request context.
func (h *Handlers) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs, err := h.sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, cs)))
	})
}

func chatSession(r *http.Request) *ChatSession {
	cs, _ := r.Context().Value(ctxKey{}).(*ChatSession)
	return cs
}

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.sessions.Len(),
	})
}

// CreateSession handles POST /api/sessions. The body is optional.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	var initial *lexicon.Emotion
	if label := strings.TrimSpace(req.Emotion); label != "" {
		e := lexicon.Normalize(label)
		initial = &e
	}

	cs := h.sessions.Create(r.Context(), initial)
	h.logger.Info().Str("session", cs.ID).Bool("seeded", initial != nil).Msg("session created")
	writeSnapshot(w, http.StatusCreated, cs)
}

// GetSession handles GET /api/sessions/{id}.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	writeSnapshot(w, http.StatusOK, chatSession(r))
}

// DeleteSession handles DELETE /api/sessions/{id}.
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	cs := chatSession(r)
	h.sessions.Delete(cs.ID)
	h.logger.Info().Str("session", cs.ID).Msg("session abandoned")
	w.WriteHeader(http.StatusNoContent)
}

// PostMessage handles POST /api/sessions/{id}/messages. The turn runs to
// completion even if the client disconnects.
func (h *Handlers) PostMessage(w http.ResponseWriter, r *http.Request) {
	cs := chatSession(r)

	var req messageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := cs.Session.Submit(context.WithoutCancel(r.Context()), req.Text)
	switch {
	case err == nil, errors.Is(err, conversation.ErrSuperseded):
		writeSnapshot(w, http.StatusOK, cs)
	case errors.Is(err, conversation.ErrEmptyUtterance):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, conversation.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, conversation.ErrClosed):
		writeError(w, http.StatusGone, err.Error())
	default:
		h.logger.Error().Err(err).Str("session", cs.ID).Msg("turn failed")
		writeError(w, http.StatusInternalServerError, "turn failed")
	}
}

// SetEmotion handles POST /api/sessions/{id}/emotion.
func (h *Handlers) SetEmotion(w http.ResponseWriter, r *http.Request) {
	cs := chatSession(r)

	var req emotionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Emotion) == "" {
		writeError(w, http.StatusBadRequest, "emotion is required")
		return
	}

	cs.Session.SetExternalEmotion(r.Context(), req.Emotion)
	writeSnapshot(w, http.StatusOK, cs)
}

// UploadImage handles POST /api/sessions/{id}/image. A classifier failure is
// reported in the conversation and leaves the mood untouched.
func (h *Handlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	cs := chatSession(r)
	if h.classifier == nil {
		writeError(w, http.StatusServiceUnavailable, "image classification is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imageclf.MaxImageSize+maxJSONBody)
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image field")
		return
	}
	defer file.Close()

	emotion, err := h.classifier.Classify(r.Context(), file, header.Filename)
	if err != nil {
		h.logger.Warn().Err(err).Str("session", cs.ID).Msg("image classification failed")
		cs.Session.ExternalEmotionFailed()
		writeSnapshot(w, http.StatusOK, cs)
		return
	}

	cs.Session.SetExternalEmotion(r.Context(), string(emotion))
	writeSnapshot(w, http.StatusOK, cs)
}

// Playback handles POST /api/sessions/{id}/playback/{action}.
func (h *Handlers) Playback(w http.ResponseWriter, r *http.Request) {
	cs := chatSession(r)

	switch chi.URLParam(r, "action") {
	case "next":
		cs.Session.Next()
	case "previous":
		cs.Session.Previous()
	case "toggle":
		cs.Session.TogglePlay()
	default:
		writeError(w, http.StatusNotFound, "unknown playback action")
		return
	}
	writeSnapshot(w, http.StatusOK, cs)
}

// SelectTrack handles POST /api/sessions/{id}/playback/select.
func (h *Handlers) SelectTrack(w http.ResponseWriter, r *http.Request) {
	cs := chatSession(r)

	var req selectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, ok := cs.Session.Select(req.ID); !ok {
		writeError(w, http.StatusNotFound, "track not in queue")
		return
	}
	writeSnapshot(w, http.StatusOK, cs)
}

// PlaybackEvent handles POST /api/sessions/{id}/playback/events, which
// reports what the client's player actually did.
func (h *Handlers) PlaybackEvent(w http.ResponseWriter, r *http.Request) {
	cs := chatSession(r)

	var ev playbackEvent
	if err := decodeJSON(w, r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch ev.Type {
	case "playing":
		cs.Session.ReportPlaying()
	case "ended":
		cs.Session.ReportEnded()
	case "failed":
		cs.Session.ReportFailure(ev.TrackID, playback.FailureMedia)
	case "autoplay_blocked":
		cs.Session.ReportFailure(ev.TrackID, playback.FailureAutoplayBlocked)
	default:
		writeError(w, http.StatusBadRequest, "unknown event type")
		return
	}
	writeSnapshot(w, http.StatusOK, cs)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	return dec.Decode(v)
}

func writeSnapshot(w http.ResponseWriter, status int, cs *ChatSession) {
	writeJSON(w, status, sessionResponse{ID: cs.ID, Snapshot: cs.Session.Snapshot()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
