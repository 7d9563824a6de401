package contact

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/cmda-chisinau/site/internal/database"
)

// maxFormSize limits the size of a posted form
const maxFormSize = 1 << 20

// Store persists contact submissions
type Store interface {
	CreateContactSubmission(ctx context.Context, c *database.ContactSubmission) error
}

// Handler accepts contact form posts and answers with JSON
type Handler struct {
	store     Store
	validator *Validator
	log       logrus.FieldLogger
}

// NewHandler creates a contact form handler
func NewHandler(store Store, log logrus.FieldLogger) *Handler {
	return &Handler{
		store:     store,
		validator: NewValidator(),
		log:       log,
	}
}

type response struct {
	Success bool   `json:"success"`
	Errors  Errors `json:"errors,omitempty"`
}

// ServeHTTP validates and stores the submission
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Errors: Errors{"__all__": {"The submitted form could not be read."}},
		})
		return
	}

	form := FormFromValues(r.PostForm)
	errs, err := h.validator.Validate(form)
	if err != nil {
		h.log.Errorf("Contact form validation failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if errs != nil {
		writeJSON(w, http.StatusBadRequest, response{Errors: errs})
		return
	}

	submission := form.Submission()
	if err := h.store.CreateContactSubmission(r.Context(), submission); err != nil {
		h.log.Errorf("Failed to save contact submission: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.WithField("submission_id", submission.ID).Info("Contact submission received")
	writeJSON(w, http.StatusOK, response{Success: true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
