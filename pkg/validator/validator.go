package validator

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

const (
	maxNameLen        = 50
	maxTitleLen       = 100
	maxDescriptionLen = 2000
	maxLocationLen    = 200
	maxApplicationLen = 500
	maxMessageLen     = 2000

	// bcrypt refuses longer inputs.
	maxPasswordBytes = 72

	minPrice = 0
	maxPrice = 100000
	minRooms = 1
	maxRooms = 10
)

func ValidateRegister(email, password, firstName, lastName string) ValidationErrors {
	errs := make(ValidationErrors)

	validateEmail(email, errs)

	if password == "" {
		errs.Add("password", "Password is required")
	} else if len(password) > maxPasswordBytes {
		errs.Add("password", fmt.Sprintf("Password must be at most %d bytes", maxPasswordBytes))
	}

	requiredText("first_name", "First name", firstName, maxNameLen, errs)
	requiredText("last_name", "Last name", lastName, maxNameLen, errs)

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

// Listing carries the listing fields that have boundary rules.
type Listing struct {
	Title       string
	Description string
	Location    string
	Price       float64
	Bedrooms    int
	Bathrooms   int
}

func ValidateListing(l Listing) ValidationErrors {
	errs := make(ValidationErrors)

	requiredText("title", "Title", l.Title, maxTitleLen, errs)
	requiredText("description", "Description", l.Description, maxDescriptionLen, errs)
	requiredText("location", "Location", l.Location, maxLocationLen, errs)

	if l.Price < minPrice || l.Price > maxPrice {
		errs.Add("price", fmt.Sprintf("Price must be between %d and %d", minPrice, maxPrice))
	}
	if l.Bedrooms < minRooms || l.Bedrooms > maxRooms {
		errs.Add("bedrooms", fmt.Sprintf("Bedrooms must be between %d and %d", minRooms, maxRooms))
	}
	if l.Bathrooms < minRooms || l.Bathrooms > maxRooms {
		errs.Add("bathrooms", fmt.Sprintf("Bathrooms must be between %d and %d", minRooms, maxRooms))
	}

	return errs
}

func ValidateApplication(message string) ValidationErrors {
	errs := make(ValidationErrors)

	if utf8.RuneCountInString(strings.TrimSpace(message)) > maxApplicationLen {
		errs.Add("message", "Message is too long")
	}

	return errs
}

func ValidateMessage(content string) ValidationErrors {
	errs := make(ValidationErrors)

	content = strings.TrimSpace(content)
	if content == "" {
		errs.Add("content", "Message content is required")
	} else if utf8.RuneCountInString(content) > maxMessageLen {
		errs.Add("content", "Message is too long")
	}

	return errs
}

func validateEmail(email string, errs ValidationErrors) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		// Only a bare address is accepted, not "Name <addr>".
		errs.Add("email", "Invalid email address")
	}
}

func requiredText(field, label, value string, maxLen int, errs ValidationErrors) {
	value = strings.TrimSpace(value)
	if value == "" {
		errs.Add(field, label+" is required")
	} else if utf8.RuneCountInString(value) > maxLen {
		errs.Add(field, label+" is too long")
	}
}
