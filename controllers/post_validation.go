package controllers

import (
	"fmt"
	"unicode/utf8"
)

const (
	titleMinLen       = 3
	titleMaxLen       = 200
	descriptionMinLen = 10
	descriptionMaxLen = 50000
	categoryMaxLen    = 100
)

// validateCreatePost checks a creation payload and reports the first failing
// field as a human-readable message.
func validateCreatePost(req createPostRequest) error {
	if req.Title == "" {
		return fmt.Errorf("title is required")
	}
	if err := checkLength("title", req.Title, titleMinLen, titleMaxLen); err != nil {
		return err
	}
	if req.Description == "" {
		return fmt.Errorf("description is required")
	}
	if err := checkLength("description", req.Description, descriptionMinLen, descriptionMaxLen); err != nil {
		return err
	}
	if req.Category != "" {
		return checkLength("category", req.Category, 1, categoryMaxLen)
	}
	return nil
}

// validateUpdatePost checks an update payload; every field is optional but
// validated when present.
func validateUpdatePost(req updatePostRequest) error {
	if req.Title != nil {
		if err := checkLength("title", *req.Title, titleMinLen, titleMaxLen); err != nil {
			return err
		}
	}
	if req.Description != nil {
		if err := checkLength("description", *req.Description, descriptionMinLen, descriptionMaxLen); err != nil {
			return err
		}
	}
	if req.Category != nil && *req.Category != "" {
		return checkLength("category", *req.Category, 1, categoryMaxLen)
	}
	return nil
}

func checkLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		return fmt.Errorf("%s must be between %d and %d characters", field, min, max)
	}
	return nil
}
