package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/abdullah0325/crud-neon/apperrors"
	"github.com/abdullah0325/crud-neon/models"
)

const maxBodyBytes = 1 << 20

// StudentStore is the persistence gateway the handlers depend on.
type StudentStore interface {
	Insert(ctx context.Context, in models.StudentInput) (int64, error)
	ListAll(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id int64) (models.Student, error)
	Update(ctx context.Context, id int64, in models.StudentInput) (models.Student, error)
	Delete(ctx context.Context, id int64) error
}

type StudentHandler struct {
	store StudentStore
	log   *zap.Logger
}

func NewStudentHandler(store StudentStore, log *zap.Logger) *StudentHandler {
	return &StudentHandler{store: store, log: log}
}

// CreateStudent handles POST /add-student.
func (h *StudentHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	in, err := h.readInput(w, r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	id, err := h.store.Insert(r.Context(), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.log.Info("student created", zap.Int64("id", id))
	writeJSON(w, h.log, http.StatusOK, models.CreatedResponse{
		Message:   "Student added successfully",
		StudentID: id,
	})
}

// GetStudents handles GET /students.
func (h *StudentHandler) GetStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.store.ListAll(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, students)
}

// GetStudent handles GET /students/{id}.
func (h *StudentHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id, err := studentID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	student, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, student)
}

// UpdateStudent handles PUT /update_students/{id}. Every field is replaced
// by the payload's value.
func (h *StudentHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, err := studentID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	in, err := h.readInput(w, r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	student, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.log.Info("student updated", zap.Int64("id", id))
	writeJSON(w, h.log, http.StatusOK, student)
}

// DeleteStudent handles DELETE /delete_students/{id}.
func (h *StudentHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := studentID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.log.Info("student deleted", zap.Int64("id", id))
	writeJSON(w, h.log, http.StatusOK, models.MessageResponse{
		Message: fmt.Sprintf("Student with ID %d deleted successfully", id),
	})
}

func (h *StudentHandler) readInput(w http.ResponseWriter, r *http.Request) (models.StudentInput, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		verr := &apperrors.ValidationError{}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return models.StudentInput{}, verr.Add([]string{"body"}, "request body too large", "value_error.body_too_large")
		}
		return models.StudentInput{}, verr.Add([]string{"body"}, "cannot read request body", "value_error")
	}
	return models.ParseStudentInput(body)
}

// studentID reads the {id} path variable, which must be a positive integer.
func studentID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id < 1 {
		verr := &apperrors.ValidationError{}
		return 0, verr.Add([]string{"path", "student_id"}, "value is not a valid positive integer", "type_error.integer")
	}
	return id, nil
}
