package repository

import (
	"context"
	"database/sql"

	"github.com/habibb2r/SPEAKIFYR-Server/internal/model"
)

// InstructorRepo is the read-only instructor directory consulted by the
// public listing endpoint.  Instructors are provisioned out of band, so no
// write methods exist here.
type InstructorRepo struct {
	db *sql.DB
}

// NewInstructorRepo returns a new InstructorRepo bound to the given database.
func NewInstructorRepo(db *sql.DB) *InstructorRepo { return &InstructorRepo{db: db} }

// List returns all instructors ordered by name.
func (r *InstructorRepo) List(ctx context.Context) ([]model.Instructor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, photo_url, bio, created_at FROM instructors ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Instructor, 0)
	for rows.Next() {
		var ins model.Instructor
		if err := rows.Scan(&ins.ID, &ins.Name, &ins.Email, &ins.PhotoURL, &ins.Bio, &ins.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ins)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
