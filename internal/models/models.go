package models

import (
	"time"
)

// Model is implemented by every entity stored in the database.
type Model interface {
	ID() string           // ID returns the UUID assigned on create
	CreatedAt() time.Time // CreatedAt returns when the record was created
	UpdatedAt() time.Time // UpdatedAt returns when the record was last written
	Validate() error      // Validate reports the first invalid field
}

// Repository defines CRUD access for one [Model] type.
type Repository[T Model] interface {
	Create(model T) error                      // Create assigns an ID and inserts the model
	Get(id string) (T, error)                  // Get returns the model or an error wrapping shared.ErrRecordNotFound
	Update(model T) error                      // Update writes the mutable fields of an existing model
	Delete(id string) error                    // Delete removes the model and anything that depends on it
	List(criteria map[string]any) ([]T, error) // List returns the models matching criteria
}
