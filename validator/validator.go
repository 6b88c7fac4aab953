package validator

import (
	"math/big"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/chainrequest/blockchain-api/contract"
	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate

	// dotted lowercase identifiers, e.g. "examples.ownable" or "traits.erc20"
	identifierPattern = regexp.MustCompile(`^[a-z0-9_\-]+(\.[a-z0-9_\-]+)*$`)
)

func validateIdentifier(fl validator.FieldLevel) bool {
	return identifierPattern.MatchString(fl.Field().String())
}

// validateRedirectURL accepts http(s) urls which may contain the request id placeholder.
func validateRedirectURL(fl validator.FieldLevel) bool {
	url := fl.Field().String()
	return url == "" || strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://")
}

func validateNonNegative(fl validator.FieldLevel) bool {
	n, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	value, ok := new(big.Int).SetString(n, 10)
	return ok && value.Sign() >= 0
}

// Validator returns a singleton that can be used to validate various objects
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New()

		if err := v.RegisterValidation("identifier", validateIdentifier); err != nil {
			panic("failed to register validation: " + err.Error())
		}
		if err := v.RegisterValidation("redirect_url", validateRedirectURL); err != nil {
			panic("failed to register validation: " + err.Error())
		}
		if err := v.RegisterValidation("non_negative", validateNonNegative); err != nil {
			panic("failed to register validation: " + err.Error())
		}

		// Validate these types through their string representation
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			switch f := field.Interface().(type) {
			case big.Int:
				return f.String()
			case *big.Int:
				if f == nil {
					return ""
				}
				return f.String()
			}
			panic("not a big.Int")
		}, big.Int{}, &big.Int{})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			switch f := field.Interface().(type) {
			case contract.ID:
				return string(f)
			case contract.InterfaceID:
				return string(f)
			}
			panic("not a contract identifier")
		}, contract.ID(""), contract.InterfaceID(""))
	})
	return v
}
