package validator

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

const (
	maxNameLen    = 100
	maxSkillLen   = 200
	maxContentLen = 5000
)

func ValidateRegister(firstName, lastName, email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	validateName("first_name", "First name", firstName, errs)
	validateName("last_name", "Last name", lastName, errs)
	validateEmail(email, errs)
	validatePassword(password, errs)

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	validateEmail(email, errs)
	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

// ValidateProfileUpdate checks only the fields that are being changed.
// Empty strings are left alone since the update ignores them.
func ValidateProfileUpdate(firstName, lastName, password, profilePicture *string) ValidationErrors {
	errs := make(ValidationErrors)

	if firstName != nil && len(strings.TrimSpace(*firstName)) > maxNameLen {
		errs.Add("first_name", "First name is too long")
	}
	if lastName != nil && len(strings.TrimSpace(*lastName)) > maxNameLen {
		errs.Add("last_name", "Last name is too long")
	}
	if password != nil && *password != "" {
		validatePassword(*password, errs)
	}
	if profilePicture != nil && *profilePicture != "" {
		u, err := url.Parse(*profilePicture)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs.Add("profile_picture", "Profile picture must be an http(s) URL")
		}
	}

	return errs
}

func ValidateConnectionRequest(recipientID string) ValidationErrors {
	errs := make(ValidationErrors)
	validateID("recipient_id", "Recipient", recipientID, errs)
	return errs
}

func ValidateBarter(responderID, requestedSkill, offeredSkill string) ValidationErrors {
	errs := make(ValidationErrors)

	validateID("responder_id", "Responder", responderID, errs)
	validateSkill("requested_skill", "Requested skill", requestedSkill, errs)
	validateSkill("offered_skill", "Offered skill", offeredSkill, errs)

	return errs
}

// ValidateBarterUpdate checks the optional fields of a partial update.
func ValidateBarterUpdate(requestedSkill, offeredSkill, status *string) ValidationErrors {
	errs := make(ValidationErrors)

	if requestedSkill != nil {
		validateSkill("requested_skill", "Requested skill", *requestedSkill, errs)
	}
	if offeredSkill != nil {
		validateSkill("offered_skill", "Offered skill", *offeredSkill, errs)
	}
	if status != nil {
		switch *status {
		case "pending", "accepted", "rejected":
		default:
			errs.Add("status", "Status must be pending, accepted, or rejected")
		}
	}

	return errs
}

// ValidateContent is used for posts, comments and messages.
func ValidateContent(field, label, content string) ValidationErrors {
	errs := make(ValidationErrors)

	content = strings.TrimSpace(content)
	if content == "" {
		errs.Add(field, label+" is required")
	} else if len(content) > maxContentLen {
		errs.Add(field, label+" is too long")
	}

	return errs
}

func validateName(field, label, value string, errs ValidationErrors) {
	value = strings.TrimSpace(value)
	if value == "" {
		errs.Add(field, label+" is required")
	} else if len(value) > maxNameLen {
		errs.Add(field, label+" is too long")
	}
}

func validateEmail(email string, errs ValidationErrors) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}
}

func validateID(field, label, value string, errs ValidationErrors) {
	if strings.TrimSpace(value) == "" {
		errs.Add(field, label+" is required")
	} else if _, err := uuid.Parse(value); err != nil {
		errs.Add(field, label+" must be a valid id")
	}
}

func validateSkill(field, label, value string, errs ValidationErrors) {
	value = strings.TrimSpace(value)
	if value == "" {
		errs.Add(field, label+" is required")
	} else if len(value) > maxSkillLen {
		errs.Add(field, label+" is too long")
	}
}

func validatePassword(password string, errs ValidationErrors) {
	if len(password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
		return
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	missing := []string{}
	if !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "one number")
	}

	if len(missing) > 0 {
		errs.Add("password", fmt.Sprintf("Password must contain at least %s", strings.Join(missing, ", ")))
	}
}
