package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wisdomairey/real-estate-listings-app/models"
)

var (
	imageURLPattern = regexp.MustCompile(`^(https?://|/uploads/)`)
	indexSuffix     = regexp.MustCompile(`\[\d+\]`)
)

const earliestYearBuilt = 1800

// FieldMessenger lets a validated struct supply its own client-facing messages.
type FieldMessenger interface {
	FieldMessage(field, tag string) string
}

// Validator satisfies echo.Validator and reports failures as models.ValidationError.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

func NewValidator() *Validator {
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled()), now: time.Now}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.validate.RegisterValidation("imageurl", func(fl validator.FieldLevel) bool {
		return imageURLPattern.MatchString(fl.Field().String())
	})
	_ = v.validate.RegisterValidation("yearbuilt", func(fl validator.FieldLevel) bool {
		year := fl.Field().Int()
		return year >= earliestYearBuilt && year <= int64(v.now().Year()+5)
	})

	return v
}

func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	messenger, _ := i.(FieldMessenger)
	seen := make(map[string]bool)
	fields := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		if seen[field] {
			continue
		}
		seen[field] = true

		msg := fe.Error()
		if messenger != nil {
			msg = messenger.FieldMessage(field, fe.Tag())
		}
		fields = append(fields, models.FieldError{Field: field, Message: msg})
	}
	return models.NewValidationError(fields)
}

// fieldPath turns "Property.images[2]" into "images".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}
	return indexSuffix.ReplaceAllString(namespace, "")
}

func ParseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, models.ErrInvalidID
	}
	return oid, nil
}
