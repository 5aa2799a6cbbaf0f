package validators

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{3,30}$`)

// CustomValidator adapts go-playground/validator to echo.Validator
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a CustomValidator with the app's custom tags registered:
//
//	maxwords=N       at most N whitespace-separated words
//	socialsituation  empty or one of the known social situations
//	username         3-30 letters, digits, dot, underscore or dash
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("maxwords", validateMaxWords)
	_ = v.RegisterValidation("socialsituation", validateSocialSituation)
	_ = v.RegisterValidation("username", validateUsername)
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func validateMaxWords(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(strings.Fields(fl.Field().String())) <= limit
}

func validateSocialSituation(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", models.SituationAlone, models.SituationWithOthers, models.SituationCrowd, models.SituationNone:
		return true
	}
	return false
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}
