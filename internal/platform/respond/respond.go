// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// Every response, success or failure, is a flat JSON object carrying
// "success" and "message". Handlers add their own fields beside them
// (liked, like_count, user, post...), which is what browser scripts expect.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/taibuivan/circleblog/internal/platform/apperr"
	"github.com/taibuivan/circleblog/internal/platform/constants"
	"github.com/taibuivan/circleblog/internal/platform/ctxutil"
	"github.com/taibuivan/circleblog/pkg/pagination"
)

// Fields are the response members written next to success and message.
type Fields map[string]any

// ErrorEnvelope is the JSON body of every failed request.
type ErrorEnvelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// JSON writes payload with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

func envelope(message string, fields Fields) Fields {
	body := Fields{constants.FieldSuccess: true, constants.FieldMessage: message}
	for key, value := range fields {
		if key == constants.FieldSuccess || key == constants.FieldMessage {
			continue
		}
		body[key] = value
	}
	return body
}

// OK writes a 200 success envelope.
func OK(writer http.ResponseWriter, message string, fields Fields) {
	JSON(writer, http.StatusOK, envelope(message, fields))
}

// Created writes a 201 success envelope.
func Created(writer http.ResponseWriter, message string, fields Fields) {
	JSON(writer, http.StatusCreated, envelope(message, fields))
}

// Paginated writes a 200 success envelope with the items under key and a meta block.
func Paginated(writer http.ResponseWriter, key string, items any, metadata pagination.Meta) {
	JSON(writer, http.StatusOK, envelope("", Fields{key: items, "meta": metadata}))
}

// Error converts any Go error into the failure envelope.
//
// Non-AppErrors become INTERNAL_ERROR. 5xx causes are logged with the request
// ID and never reach the client.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	logger := ctxutil.GetLogger(request.Context())

	appError := apperr.As(err)
	if appError == nil {
		appError = apperr.Internal(err)
	}

	if appError.HTTPStatus >= http.StatusInternalServerError {
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		)
	}

	JSON(writer, appError.HTTPStatus, ErrorEnvelope{
		Success: false,
		Message: appError.Message,
		Code:    appError.Code,
		Details: appError.Details,
	})
}
