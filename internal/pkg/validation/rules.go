package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/agencyportal/internal/app/models"
)

// enumRules maps custom tag names to the status check they run
var enumRules = map[string]func(string) bool{
	"role":          func(s string) bool { return models.Role(s).IsValid() },
	"accountstatus": func(s string) bool { return models.AccountStatus(s).IsValid() },
	"appstatus":     func(s string) bool { return models.ApplicationStatus(s).IsValid() },
	"docstatus":     func(s string) bool { return models.DocumentStatus(s).IsValid() },
	"paymentstatus": func(s string) bool { return models.PaymentStatus(s).IsValid() },
	"leadstatus":    func(s string) bool { return models.LeadStatus(s).IsValid() },
	"offlinestatus": func(s string) bool { return models.OfflinePaymentStatus(s).IsValid() },
}

// Register installs the custom rules on v and reports field names by their json tag
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	for tag, check := range enumRules {
		check := check
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		}); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	return nil
}

// RegisterWithGin installs the rules on gin's default binding engine
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}
