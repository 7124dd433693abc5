// Package store is the persistence gateway for student records. Each
// operation runs as one unit of work on its own pooled connection.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/abdullah0325/crud-neon/apperrors"
	"github.com/abdullah0325/crud-neon/models"
)

const studentColumns = `id, name, student_class, section, gender, contact, admission_date, status`

type Store struct {
	db  *sqlx.DB
	log *zap.Logger
}

func New(db *sqlx.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

// unitOfWork runs fn inside a transaction. The transaction holds one
// connection exclusively; it is committed when fn succeeds and rolled back
// on error or panic, which returns the connection to the pool either way.
func (s *Store) unitOfWork(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError(op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			s.rollback(tx, op)
			panic(p)
		}
		if err != nil {
			s.rollback(tx, op)
		}
	}()

	if err = fn(tx); err != nil {
		var notFound *apperrors.NotFoundError
		if errors.As(err, &notFound) {
			return err
		}
		return apperrors.NewStorageError(op, err)
	}

	if err = tx.Commit(); err != nil {
		return apperrors.NewStorageError(op, err)
	}
	return nil
}

func (s *Store) rollback(tx *sqlx.Tx, op string) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		s.log.Warn("rollback failed", zap.String("op", op), zap.Error(err))
	}
}

// Insert persists a new record and returns the identifier the database
// sequence assigned to it.
func (s *Store) Insert(ctx context.Context, in models.StudentInput) (int64, error) {
	var id int64
	err := s.unitOfWork(ctx, "insert", func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO students (name, student_class, section, gender, contact, admission_date, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`
		return tx.QueryRowxContext(ctx, query,
			in.Name,
			in.StudentClass,
			in.Section,
			in.Gender,
			in.Contact,
			in.AdmissionDate,
			in.Status,
		).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ListAll returns every stored record. The slice is empty, not nil, when
// the table has no rows.
func (s *Store) ListAll(ctx context.Context) ([]models.Student, error) {
	students := make([]models.Student, 0)
	err := s.unitOfWork(ctx, "list", func(tx *sqlx.Tx) error {
		query := `SELECT ` + studentColumns + ` FROM students ORDER BY id`
		return tx.SelectContext(ctx, &students, query)
	})
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (models.Student, error) {
	var student models.Student
	err := s.unitOfWork(ctx, "find", func(tx *sqlx.Tx) error {
		query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
		if err := tx.GetContext(ctx, &student, query, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &apperrors.NotFoundError{ID: id}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return models.Student{}, err
	}
	return student, nil
}

// Update overwrites every field of the record with the given values in a
// single statement. Fields are never merged with the stored ones.
func (s *Store) Update(ctx context.Context, id int64, in models.StudentInput) (models.Student, error) {
	var student models.Student
	err := s.unitOfWork(ctx, "update", func(tx *sqlx.Tx) error {
		query := `
			UPDATE students
			SET name = $1, student_class = $2, section = $3, gender = $4,
				contact = $5, admission_date = $6, status = $7
			WHERE id = $8
			RETURNING ` + studentColumns
		err := tx.GetContext(ctx, &student, query,
			in.Name,
			in.StudentClass,
			in.Section,
			in.Gender,
			in.Contact,
			in.AdmissionDate,
			in.Status,
			id,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return &apperrors.NotFoundError{ID: id}
		}
		return err
	})
	if err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.unitOfWork(ctx, "delete", func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return &apperrors.NotFoundError{ID: id}
		}
		return nil
	})
}

// Ping checks that a connection to the database can be established.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
