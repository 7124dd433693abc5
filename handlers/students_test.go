package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abdullah0325/crud-neon/apperrors"
	"github.com/abdullah0325/crud-neon/middleware"
	"github.com/abdullah0325/crud-neon/models"
)

// memStore is an in-memory StudentStore that counts calls so tests can
// assert that rejected requests never reach storage.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]models.StudentInput
	calls   int
	failErr error
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[int64]models.StudentInput)}
}

func (m *memStore) Insert(_ context.Context, in models.StudentInput) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failErr != nil {
		return 0, apperrors.NewStorageError("insert", m.failErr)
	}
	m.nextID++
	m.rows[m.nextID] = in
	return m.nextID, nil
}

func (m *memStore) ListAll(context.Context) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failErr != nil {
		return nil, apperrors.NewStorageError("list", m.failErr)
	}
	out := make([]models.Student, 0, len(m.rows))
	for id, in := range m.rows {
		out = append(out, models.Student{ID: id, StudentInput: in})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) FindByID(_ context.Context, id int64) (models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	in, ok := m.rows[id]
	if !ok {
		return models.Student{}, &apperrors.NotFoundError{ID: id}
	}
	return models.Student{ID: id, StudentInput: in}, nil
}

func (m *memStore) Update(_ context.Context, id int64, in models.StudentInput) (models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if _, ok := m.rows[id]; !ok {
		return models.Student{}, &apperrors.NotFoundError{ID: id}
	}
	m.rows[id] = in
	return models.Student{ID: id, StudentInput: in}, nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if _, ok := m.rows[id]; !ok {
		return &apperrors.NotFoundError{ID: id}
	}
	delete(m.rows, id)
	return nil
}

func (m *memStore) Ping(context.Context) error { return m.failErr }

const adaJSON = `{"name":"Ada","student_class":"10","section":"A","gender":"F","contact":"555-0100","admission_date":"2024-01-15","status":true}`

const graceJSON = `{"name":"Grace","student_class":"12","section":"C","gender":"F","contact":"555-0199","admission_date":"2022-09-05","status":false}`

func newTestRouter(s *memStore) http.Handler {
	log := zap.NewNop()
	cors := middleware.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true}
	return NewRouter(NewStudentHandler(s, log), NewHealthHandler(s, log), cors, log)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func create(t *testing.T, h http.Handler, body string) int64 {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/add-student", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created models.CreatedResponse
	decode(t, rec, &created)
	assert.Equal(t, "Student added successfully", created.Message)
	return created.StudentID
}

func list(t *testing.T, h http.Handler) []models.Student {
	t.Helper()
	rec := do(t, h, http.MethodGet, "/students", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var students []models.Student
	decode(t, rec, &students)
	return students
}

func mustParse(t *testing.T, body string) models.StudentInput {
	t.Helper()
	in, err := models.ParseStudentInput([]byte(body))
	require.NoError(t, err)
	return in
}

func TestListEmptyIsArray(t *testing.T) {
	h := newTestRouter(newMemStore())

	rec := do(t, h, http.MethodGet, "/students", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestCreateThenListRoundTrip(t *testing.T) {
	h := newTestRouter(newMemStore())

	id := create(t, h, adaJSON)
	assert.Positive(t, id)

	students := list(t, h)
	require.Len(t, students, 1)
	assert.Equal(t, id, students[0].ID)
	assert.Equal(t, mustParse(t, adaJSON), students[0].StudentInput)
}

func TestCreateIssuesFreshIDs(t *testing.T) {
	h := newTestRouter(newMemStore())

	seen := make(map[int64]bool)
	for i := 0; i < 5; i++ {
		id := create(t, h, adaJSON)
		assert.False(t, seen[id], "id %d issued twice", id)
		seen[id] = true
	}
	assert.Len(t, list(t, h), 5)
}

func TestCreateValidationNeverReachesStore(t *testing.T) {
	s := newMemStore()
	h := newTestRouter(s)

	rec := do(t, h, http.MethodPost, "/add-student", `{"name":"Ada"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, s.calls)

	var body struct {
		Detail []apperrors.FieldError `json:"detail"`
	}
	decode(t, rec, &body)
	require.NotEmpty(t, body.Detail)
	assert.Equal(t, "body", body.Detail[0].Loc[0])
	assert.Equal(t, "value_error.missing", body.Detail[0].Type)
}

func TestCreateStorageFailure(t *testing.T) {
	s := newMemStore()
	s.failErr = errors.New("duplicate key value violates unique constraint")
	h := newTestRouter(s)

	rec := do(t, h, http.MethodPost, "/add-student", adaJSON)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"duplicate key value violates unique constraint"}`, rec.Body.String())
	assert.Empty(t, s.rows)
}

func TestListStorageFailure(t *testing.T) {
	s := newMemStore()
	s.failErr = errors.New("connection refused")
	h := newTestRouter(s)

	rec := do(t, h, http.MethodGet, "/students", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"connection refused"}`, rec.Body.String())
}

func TestGetStudent(t *testing.T) {
	h := newTestRouter(newMemStore())
	id := create(t, h, adaJSON)

	rec := do(t, h, http.MethodGet, "/students/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Student
	decode(t, rec, &got)
	assert.Equal(t, id, got.ID)

	rec = do(t, h, http.MethodGet, "/students/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateReplacesEveryField(t *testing.T) {
	h := newTestRouter(newMemStore())
	id := create(t, h, adaJSON)

	rec := do(t, h, http.MethodPut, "/update_students/1", graceJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.Student
	decode(t, rec, &updated)
	assert.Equal(t, id, updated.ID)
	assert.Equal(t, mustParse(t, graceJSON), updated.StudentInput)

	students := list(t, h)
	require.Len(t, students, 1)
	assert.Equal(t, mustParse(t, graceJSON), students[0].StudentInput)
}

func TestCreateRejectsOversizedBody(t *testing.T) {
	s := newMemStore()
	h := newTestRouter(s)

	body := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec := do(t, h, http.MethodPost, "/add-student", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, s.calls)

	var resp struct {
		Detail []apperrors.FieldError `json:"detail"`
	}
	decode(t, rec, &resp)
	require.Len(t, resp.Detail, 1)
	assert.Equal(t, "value_error.body_too_large", resp.Detail[0].Type)
}

func TestUpdateRequiresFullPayload(t *testing.T) {
	s := newMemStore()
	h := newTestRouter(s)
	create(t, h, adaJSON)
	calls := s.calls

	rec := do(t, h, http.MethodPut, "/update_students/1", `{"name":"Only"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, calls, s.calls)
	assert.Equal(t, "Ada", list(t, h)[0].Name)
}

func TestUpdateMissingLeavesStoreUnchanged(t *testing.T) {
	h := newTestRouter(newMemStore())
	create(t, h, adaJSON)

	rec := do(t, h, http.MethodPut, "/update_students/42", graceJSON)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Student not found"}`, rec.Body.String())

	students := list(t, h)
	require.Len(t, students, 1)
	assert.Equal(t, "Ada", students[0].Name)
}

func TestDeleteThenDeleteAgain(t *testing.T) {
	h := newTestRouter(newMemStore())
	create(t, h, adaJSON)
	keep := create(t, h, graceJSON)

	rec := do(t, h, http.MethodDelete, "/delete_students/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Student with ID 1 deleted successfully"}`, rec.Body.String())

	students := list(t, h)
	require.Len(t, students, 1)
	assert.Equal(t, keep, students[0].ID)

	rec = do(t, h, http.MethodDelete, "/delete_students/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Student not found"}`, rec.Body.String())
}

func TestInvalidPathID(t *testing.T) {
	s := newMemStore()
	h := newTestRouter(s)

	for _, path := range []string{"/delete_students/abc", "/delete_students/0", "/delete_students/-3"} {
		rec := do(t, h, http.MethodDelete, path, "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, path)
	}
	assert.Zero(t, s.calls)
}

func TestHealth(t *testing.T) {
	s := newMemStore()
	h := newTestRouter(s)

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	s.failErr = errors.New("down")
	rec = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWrongMethod(t *testing.T) {
	h := newTestRouter(newMemStore())

	rec := do(t, h, http.MethodGet, "/add-student", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPreflightThroughRouter(t *testing.T) {
	h := newTestRouter(newMemStore())

	req := httptest.NewRequest(http.MethodOptions, "/update_students/1", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
