// Package validator holds the request validation rules shared by every
// handler, registered on gin's go-playground engine.
package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	hhmmPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

	bloodGroups = map[string]bool{
		"A+": true, "A-": true, "B+": true, "B-": true,
		"AB+": true, "AB-": true, "O+": true, "O-": true,
	}

	roles = map[string]bool{
		"Admin": true, "Doctor": true, "Nurse": true,
		"Receptionist": true, "Patient": true, "Pharmacist": true,
	}
)

// IsHHMM reports whether s is a 24-hour HH:MM clock time
func IsHHMM(s string) bool {
	return hhmmPattern.MatchString(s)
}

func IsBloodGroup(s string) bool {
	return bloodGroups[s]
}

func stringRule(fn func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	}
}

// Rules maps custom binding tags to their checks
var Rules = map[string]validator.Func{
	"hhmm":       stringRule(IsHHMM),
	"bloodgroup": stringRule(IsBloodGroup),
	"role":       stringRule(func(s string) bool { return roles[s] }),
}

// Register installs the custom rules on v and reports field names by
// their json tag.
func Register(v *validator.Validate) error {
	for tag, fn := range Rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return nil
}

var once sync.Once

// RegisterBinding registers the rules on gin's default validator, once
func RegisterBinding() error {
	var err error
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		err = Register(v)
	})
	return err
}
