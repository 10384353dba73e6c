package collection

import (
	"fmt"

	"catalog-admin/internal/model"
)

type NotFoundError struct {
	Kind model.Kind
	ID   model.ID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}
