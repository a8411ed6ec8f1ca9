package validate

import (
	"errors"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	UsernameMessage = "Username must be 6-20 alphanumeric characters or underscores."
	PasswordMessage = "Password must be 8-72 characters, include uppercase, lowercase, number, and special character."

	NewPasswordMessage = "New password must be 8-72 characters, include uppercase, lowercase, number, and special character."
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{6,20}$`)

// Username 用户名 6-20 位字母、数字或下划线
func Username(s string) bool {
	return usernamePattern.MatchString(s)
}

// MaxPasswordBytes bcrypt 只接受 72 字节以内的密码
const MaxPasswordBytes = 72

// StrongPassword 8-72 字节且同时包含大写、小写、数字和特殊字符
func StrongPassword(s string) bool {
	if len(s) < 8 || len(s) > MaxPasswordBytes {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r):
			special = true
		}
	}
	return upper && lower && digit && special
}

var registerOnce sync.Once

// Register 向 gin 的校验器注册 username、strongpwd 标签
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return Username(fl.Field().String())
		})
		_ = v.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
			return StrongPassword(fl.Field().String())
		})
	})
}

// Message 将绑定错误转换为可展示的提示
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "username":
			msgs = append(msgs, UsernameMessage)
		case "strongpwd":
			msgs = append(msgs, PasswordMessage)
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email")
		case "min", "gte":
			msgs = append(msgs, fe.Field()+" must be at least "+fe.Param())
		case "max", "lte":
			msgs = append(msgs, fe.Field()+" must be at most "+fe.Param())
		case "oneof":
			msgs = append(msgs, fe.Field()+" must be one of "+fe.Param())
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
