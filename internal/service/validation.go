package service

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// validateStatusUpdate rejects unknown ids and states before any row is
// locked. Whether the move itself is allowed is checked against the stored
// state by the repository.
func validateStatusUpdate(upd *domain.StatusUpdate, lifecycle domain.Lifecycle) error {
	upd.Status = strings.ToUpper(strings.TrimSpace(upd.Status))
	upd.User = strings.TrimSpace(upd.User)

	states := make([]interface{}, 0)
	for _, s := range lifecycle.States() {
		states = append(states, s)
	}

	err := validation.ValidateStruct(upd,
		validation.Field(&upd.ID, validation.Required, validation.Min(int64(1))),
		validation.Field(&upd.Status, validation.Required, validation.In(states...)),
		validation.Field(&upd.User, validation.Length(0, 100)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
