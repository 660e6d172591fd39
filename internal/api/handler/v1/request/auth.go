package request

import (
	"errors"
	"regexp"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	passwordRegexPattern = `^(?=.*[A-Za-z])(?!.*\s).{8,128}$`
	maxUsernameLength    = 150
)

var (
	usernameExp = regexp.MustCompile(`^[\w.@+-]+$`)
	passwordExp = regexp2.MustCompile(passwordRegexPattern, regexp2.None)

	errInvalidUsername = errors.New("may contain only letters, numbers, and @/./+/-/_ characters")
	errInvalidPassword = errors.New("the password must be 8 to 128 characters, contain a letter and no whitespace")
)

type RegisterRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"mypassword"`
}

func (req *RegisterRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Username,
			validation.Required,
			validation.Length(1, maxUsernameLength),
			validation.Match(usernameExp).Error(errInvalidUsername.Error()),
		),
		validation.Field(&req.Password, validation.Required, validation.By(checkPassword)),
	)
}

func checkPassword(value interface{}) error {
	password, _ := value.(string)
	ok, err := passwordExp.MatchString(password)
	if err != nil || !ok {
		return errInvalidPassword
	}
	return nil
}

type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"mypassword"`
}

func (req *LoginRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Username, validation.Required),
		validation.Field(&req.Password, validation.Required),
	)
}
