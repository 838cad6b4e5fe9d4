package service

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	apperrors "sitecms/internal/errors"
)

var pageNamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("pagename", func(fl validator.FieldLevel) bool {
		return pageNamePattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidatePageName checks that page is a usable document key.
func ValidatePageName(page string) error {
	if err := validate.Var(page, "required,max=100,pagename"); err != nil {
		return fmt.Errorf("%w: invalid page name %q", apperrors.ErrValidation, page)
	}
	return nil
}

// storageErr classifies err as a storage failure while keeping it in the chain for logs.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, apperrors.ErrStorage, err)
}
