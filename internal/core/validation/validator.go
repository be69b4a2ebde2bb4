// Package validation checks operation inputs against their static schemas.
//
// Schemas are the `validate` struct tags on the ports input types. Validate
// reports every violated rule, in field order, as a single domain error.
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/adminhub/user-accounts/internal/core/domain"
)

// MaxImageBytes is the largest accepted upload.
const MaxImageBytes = 10 << 20

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// messages maps "<StructField>.<tag>" to the message shown to clients.
var messages = map[string]string{
	"UserName.required": "userName is a required field.",

	"Email.required": "Email is a required field.",
	"Email.email":    "Please enter a valid email.",

	"Password.required": "Password is a required field.",
	"Password.min":      "Password must be at least 6 characters long.",
	"Password.max":      "Password must be at most 16 characters long.",

	"Phone.number":        "Phone number must be a number.",
	"Phone.len":           "Phone number must be a 10-digit number.",
	"Phone.startsnotwith": "Phone number must be a 10-digit number.",

	"Role.required": "Role is a required field.",
	"Role.oneof":    "Role must be either 'admin' or 'superadmin'.",

	"OldPassword.required": "Please enter old password.",
	"OldPassword.min":      "Old password must be at least 6 characters long.",
	"OldPassword.max":      "Old password must be at most 16 characters long.",

	"NewPassword.required": "Please enter new password.",
	"NewPassword.min":      "New password must be at least 6 characters long.",
	"NewPassword.max":      "New password must be at most 16 characters long.",

	"ConfirmPassword.required": "Please enter confirm password.",
	"ConfirmPassword.min":      "Confirm password must be at least 6 characters long.",
	"ConfirmPassword.max":      "Confirm password must be at most 16 characters long.",

	"Images.max":     "At most 10 images may be uploaded.",
	"Data.imagefile": "Only image files are allowed.",
	"Data.max":       "Image must be at most 10MB.",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("imagefile", isImageFile); err != nil {
		panic(fmt.Sprintf("validation: register imagefile: %v", err))
	}
	return v
}

// Validate checks s against its struct tags. It returns nil, or a
// *domain.Error of kind KindInvalid whose Details list every violation.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate: %w", err)
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return domain.Invalid(msgs...)
}

// ImageExtension sniffs data and returns the file extension for an accepted
// image type.
func ImageExtension(data []byte) (string, bool) {
	ext, ok := imageTypes[http.DetectContentType(data)]
	return ext, ok
}

func isImageFile(fl validator.FieldLevel) bool {
	data, ok := fl.Field().Interface().([]byte)
	if !ok {
		return false
	}
	_, ok = ImageExtension(data)
	return ok
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	if msg, ok := messages[fe.StructField()+"."+fe.Tag()]; ok {
		return msg
	}

	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is a required field."
	case "email":
		return field + " must be a valid email."
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long.", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s).", field, fe.Tag())
	}
}
