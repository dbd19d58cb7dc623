package users

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// UpdateForm is the only input the update view accepts. Any other submitted
// field (id, username) has nowhere to bind.
type UpdateForm struct {
	Name string `form:"name" validate:"max=255"`
}

// Normalize trims surrounding whitespace and applies Unicode NFC so the
// length limit counts what the user sees.
func (f *UpdateForm) Normalize() {
	f.Name = norm.NFC.String(strings.TrimSpace(f.Name))
}
