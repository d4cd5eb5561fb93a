// Package api - Request and response types
package api

import (
	"bookmark-engagement/core/batch"
	"bookmark-engagement/core/judgment"
)

// JudgeRequest is the body of POST /judge
type JudgeRequest = judgment.Metrics

// JudgeResponse is the response of POST /judge
type JudgeResponse struct {
	RequestID string            `json:"requestId"`
	Result    judgment.Result   `json:"result"`
	Text      string            `json:"text"`
	Metadata  *ResponseMetadata `json:"metadata,omitempty"`
}

// BatchRequest is the body of POST /judge/batch
type BatchRequest struct {
	Records []batch.Record `json:"records"`
}

// BatchResponse is the response of POST /judge/batch
type BatchResponse struct {
	RequestID string            `json:"requestId"`
	Items     []batch.Item      `json:"items"`
	Summary   batch.Summary     `json:"summary"`
	Metadata  *ResponseMetadata `json:"metadata,omitempty"`
}

// ResponseMetadata describes how a response was produced
type ResponseMetadata struct {
	// InputHash is the SHA-256 of the canonical request body
	InputHash     string `json:"inputHash"`
	EngineVersion string `json:"engineVersion"`
	DurationMs    int64  `json:"durationMs"`
}

// ErrorBody is the payload of every error response
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorBody
type ErrorResponse struct {
	RequestID string    `json:"requestId,omitempty"`
	Error     ErrorBody `json:"error"`
}

// maxBatchRecords bounds a single batch request
const maxBatchRecords = 10000
