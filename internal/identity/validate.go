package identity

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError 字段级错误；"" 键为整单错误
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	for k, v := range e.Fields {
		if k == "" {
			return v
		}
		return fmt.Sprintf("%s: %s", k, v)
	}
	return "validation failed"
}

var (
	// 与注册表单一致：字母（含кирилица）、数字、空格
	namePattern  = regexp.MustCompile(`^[a-zA-Zа-яА-Я0-9\s]+$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

const minPasswordLen = 6

func validateName(fields map[string]string, key, label, v string) {
	if strings.TrimSpace(v) == "" {
		fields[key] = "The " + label + " field is required."
		return
	}
	if !namePattern.MatchString(v) {
		fields[key] = "The " + label + " field can only contain letters, digits, and spaces."
	}
}

func validateEmail(fields map[string]string, v string) {
	if strings.TrimSpace(v) == "" {
		fields["email"] = "The Email field is required."
		return
	}
	if !emailPattern.MatchString(v) {
		fields["email"] = "Please enter a valid email address."
	}
}

func validateRegister(in RegisterInput) error {
	fields := map[string]string{}
	validateName(fields, "firstName", "First Name", in.FirstName)
	validateName(fields, "lastName", "Last Name", in.LastName)
	validateEmail(fields, in.Email)
	if in.Password == "" {
		fields["password"] = "The Password field is required."
	} else if len(in.Password) < minPasswordLen {
		fields["password"] = fmt.Sprintf("Passwords must be at least %d characters.", minPasswordLen)
	}
	if in.ConfirmPassword != in.Password {
		fields["confirmPassword"] = "Passwords do not match."
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validateProfile(in ProfileInput) error {
	fields := map[string]string{}
	validateName(fields, "firstName", "First Name", in.FirstName)
	validateName(fields, "lastName", "Last Name", in.LastName)
	validateEmail(fields, in.Email)
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
