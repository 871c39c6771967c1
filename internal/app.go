package internal

import (
	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// AppInternal exposes the wired controllers to the CLI bootstrap.
type AppInternal struct {
	controllers *[]entities.Controller
}

// NewAppInternal creates the application aggregate from the DIG container.
func NewAppInternal(controllers *[]entities.Controller) *AppInternal {
	return &AppInternal{controllers: controllers}
}

// GetControllers returns all registered CLI controllers.
func (it *AppInternal) GetControllers() []entities.Controller {
	return *it.controllers
}
