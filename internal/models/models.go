// package models defines the data model for the coursemap client
package models

import "time"

// Model is a record the client keeps in its local database, such as a course draft.
type Model interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error // checked before every insert or update
}

// Repository is the CRUD surface shared by the sqlite stores. List takes column/value pairs
// that are ANDed together.
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}
