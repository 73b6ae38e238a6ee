package server

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/trivia/internal/library"
	"github.com/playperu/trivia/internal/quiz"
)

const maxQuizBytes = 1 << 20

func handleListQuizzes(store *library.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func handleGetQuiz(store *library.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def, err := store.Get(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, def)
	}
}

// handlePutQuiz accepts a definition as JSON, or as YAML when the body is
// sent with a YAML content type.
func handlePutQuiz(store *library.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := quiz.FormatJSON
		if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "application/yaml" || mt == "application/x-yaml" || mt == "text/yaml" {
			format = quiz.FormatYAML
		}

		defer r.Body.Close()
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxQuizBytes))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "quiz too large")
			return
		}
		def, err := quiz.Parse(data, format)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := store.Put(r.Context(), chi.URLParam(r, "slug"), def); err != nil {
			if errors.Is(err, library.ErrInvalidSlug) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, def)
	}
}

func handleDeleteQuiz(store *library.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Delete(r.Context(), chi.URLParam(r, "slug")); err != nil {
			writeGameError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
