package cart

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/charmcart-backend/pkg/errors"
)

func validationError(msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg)
}

func inventoryError(id, msg string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	details["lineItemId"] = id
	return pkgerrors.New(pkgerrors.CodeInventory, msg).WithDetails(details)
}

func notFoundError(id string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("line item %s not in cart", id))
}

func dependencyError(id string, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("inventory lookup for %s failed", id))
}
