package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/models"
	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^\+?[\d\s\-\(\)]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidationError lists the required fields a submission left empty.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// InvalidFieldsError carries one message per field that failed a format or
// length rule.
type InvalidFieldsError struct {
	Messages []string
}

func (e *InvalidFieldsError) Error() string {
	return "invalid fields: " + strings.Join(e.Messages, "; ")
}

// checkStruct runs the validator over v and converts its failures into an
// *InvalidFieldsError.
func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return &InvalidFieldsError{Messages: msgs}
}

func fieldMessage(fe validator.FieldError) string {
	// Namespace starts with the struct type name.
	_, field, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "phone":
		return fmt.Sprintf("%s must be a valid phone number", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// submissionLimits mirrors the report_cards column sizes.
type submissionLimits struct {
	FullName string  `json:"fullName" validate:"max=255"`
	Phone    string  `json:"phone" validate:"max=50"`
	Email    string  `json:"email" validate:"max=255"`
	IDType   string  `json:"idType" validate:"max=50"`
	FileURL  *string `json:"fileUrl" validate:"omitnil,max=2048"`
}

func checkSubmissionLimits(f models.ReportCardFields) error {
	return checkStruct(submissionLimits{
		FullName: f.FullName,
		Phone:    f.Phone,
		Email:    f.Email,
		IDType:   f.IDType,
		FileURL:  f.FileURL,
	})
}

// profileInput is the trimmed, flattened form of a profile patch. Absent and
// blank fields are both empty and skip their format rules.
type profileInput struct {
	Name        string           `json:"name" validate:"omitempty,min=2,max=255"`
	Email       string           `json:"email" validate:"omitempty,email,max=255"`
	Phone       string           `json:"phone" validate:"omitempty,phone,max=50"`
	Occupation  string           `json:"occupation" validate:"max=255"`
	Bio         string           `json:"bio" validate:"max=500"`
	PhotoURL    string           `json:"photoURL" validate:"max=2048"`
	SocialLinks socialLinksInput `json:"socialLinks"`
}

type socialLinksInput struct {
	Facebook string `json:"facebook" validate:"omitempty,url,max=2048"`
	Twitter  string `json:"twitter" validate:"omitempty,url,max=2048"`
	LinkedIn string `json:"linkedin" validate:"omitempty,url,max=2048"`
	Dribbble string `json:"dribbble" validate:"omitempty,url,max=2048"`
	GitHub   string `json:"github" validate:"omitempty,url,max=2048"`
}

// ValidateProfilePatch checks the fields a patch sets. It returns nil or an
// *InvalidFieldsError.
func ValidateProfilePatch(patch *dto.UpdateProfileRequest) error {
	if patch == nil {
		return nil
	}
	in := profileInput{
		Name:       trimmed(patch.Name),
		Email:      trimmed(patch.Email),
		Phone:      trimmed(patch.Phone),
		Occupation: trimmed(patch.Occupation),
		Bio:        trimmed(patch.Bio),
		PhotoURL:   trimmed(patch.PhotoURL),
	}
	if sl := patch.SocialLinks; sl != nil {
		in.SocialLinks = socialLinksInput{
			Facebook: trimmed(sl.Facebook),
			Twitter:  trimmed(sl.Twitter),
			LinkedIn: trimmed(sl.LinkedIn),
			Dribbble: trimmed(sl.Dribbble),
			GitHub:   trimmed(sl.GitHub),
		}
	}
	return checkStruct(in)
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// ValidateSubmission returns the JSON names of required fields that are
// empty after trimming, in declaration order. An empty result means valid.
func ValidateSubmission(req *dto.CreateReportCardRequest) []string {
	required := []struct {
		name  string
		value string
	}{
		{"fullName", req.FullName},
		{"phone", req.Phone},
		{"email", req.Email},
		{"idType", req.IDType},
		{"idDescription", req.IDDescription},
	}

	missing := []string{}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// normalizeSubmission trims every field and lower-cases the email.
// Blank optional fields become nil.
func normalizeSubmission(req *dto.CreateReportCardRequest) models.ReportCardFields {
	return models.ReportCardFields{
		FullName:        strings.TrimSpace(req.FullName),
		Phone:           strings.TrimSpace(req.Phone),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		IDType:          strings.TrimSpace(req.IDType),
		IDDescription:   strings.TrimSpace(req.IDDescription),
		FileDescription: optionalString(req.FileDescription),
		FileURL:         optionalString(req.FileURL),
	}
}

func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
