package domain

import "errors"

var (
	ErrNotFound = errors.New("resource not found")

	// ErrAllSourcesFailed is returned by the applicant aggregator when neither
	// intake source could be read.
	ErrAllSourcesFailed = errors.New("failed to load applicants")
)
