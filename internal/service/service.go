// Package service holds helpers shared by the resource services.
package service

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/buyerdesk/internal/entity"
	"github.com/Additional-Code/buyerdesk/internal/repository"
	"github.com/Additional-Code/buyerdesk/internal/storage"
	"github.com/Additional-Code/buyerdesk/pkg/errorbank"
)

// NoRecords is the description used for empty lists and missing documents.
const NoRecords = "No record found"

// ParseID converts a hex identifier, rejecting malformed input as a bad request.
func ParseID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, errorbank.BadRequest(field+" must be a valid id", errorbank.WithCause(err))
	}
	return id, nil
}

// Store translates a repository failure. notFound is used when no document matched.
func Store(span trace.Span, err error, notFound, failed string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errorbank.NotFound(notFound)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, failed)
	return errorbank.Internal(failed, errorbank.WithCause(err))
}

// Upload translates an uploader failure.
func Upload(span trace.Span, err error) error {
	switch {
	case errors.Is(err, storage.ErrTooManyFiles), errors.Is(err, storage.ErrInvalidName):
		return errorbank.BadRequest(err.Error(), errorbank.WithCause(err))
	case errors.Is(err, storage.ErrFileTooLarge):
		return errorbank.Unprocessable(err.Error(), errorbank.WithCause(err))
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "storage error")
	return errorbank.Internal("failed to store documents", errorbank.WithCause(err))
}

// Transition maps a rejected status change to a conflict and an unknown
// status to a bad request.
func Transition(err error) error {
	if errors.Is(err, entity.ErrInvalidStatus) {
		return errorbank.BadRequest(err.Error(), errorbank.WithCause(err))
	}
	return errorbank.Conflict(err.Error(), errorbank.WithCause(err))
}
