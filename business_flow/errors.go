// Package businessflow contains the core business logic and use cases for marketing workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Restaurant-related errors
	ErrRestaurantNotFound     = errors.New("restaurant not found")
	ErrRestaurantNameRequired = errors.New("restaurant name is required")

	// Diner search errors
	ErrInvalidPage      = errors.New("page must be at least 1")
	ErrInvalidPageSize  = errors.New("page size must be at least 1")
	ErrInvalidSeniority = errors.New("invalid seniority value")
	ErrInvalidMatchMode = errors.New("match must be any or all")

	// Campaign-related errors
	ErrCampaignNotFound        = errors.New("campaign not found")
	ErrCampaignNameRequired    = errors.New("campaign name is required")
	ErrCampaignBodyRequired    = errors.New("campaign body is required")
	ErrInvalidCampaignChannel  = errors.New("invalid campaign channel")
	ErrInvalidCampaignStatus   = errors.New("invalid campaign status")
	ErrSubjectRequiredForEmail = errors.New("subject is required for email campaigns")
	ErrEmptyAudience           = errors.New("audience filter matched no eligible diners")
	ErrCampaignUUIDRequired    = errors.New("campaign UUID is required")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsRestaurantNotFound(err error) bool {
	return errors.Is(err, ErrRestaurantNotFound)
}

func IsRestaurantNameRequired(err error) bool {
	return errors.Is(err, ErrRestaurantNameRequired)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsInvalidSeniority(err error) bool {
	return errors.Is(err, ErrInvalidSeniority)
}

func IsInvalidMatchMode(err error) bool {
	return errors.Is(err, ErrInvalidMatchMode)
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsCampaignNameRequired(err error) bool {
	return errors.Is(err, ErrCampaignNameRequired)
}

func IsCampaignBodyRequired(err error) bool {
	return errors.Is(err, ErrCampaignBodyRequired)
}

func IsInvalidCampaignChannel(err error) bool {
	return errors.Is(err, ErrInvalidCampaignChannel)
}

func IsInvalidCampaignStatus(err error) bool {
	return errors.Is(err, ErrInvalidCampaignStatus)
}

func IsSubjectRequiredForEmail(err error) bool {
	return errors.Is(err, ErrSubjectRequiredForEmail)
}

func IsEmptyAudience(err error) bool {
	return errors.Is(err, ErrEmptyAudience)
}

func IsCampaignUUIDRequired(err error) bool {
	return errors.Is(err, ErrCampaignUUIDRequired)
}
