package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tubesieve/tubesieve/internal/biz/repo"
	"github.com/tubesieve/tubesieve/internal/biz/usecase"
	"github.com/tubesieve/tubesieve/internal/service"
)

func newHandler(answer string) *filterHandler {
	ev := repo.EvaluatorFunc(func(ctx context.Context, prompt string) (string, error) {
		return answer, nil
	})
	classifier := usecase.NewClassifierUsecase(ev, nil, usecase.DefaultPromptConfig, usecase.ClassifierConfig{})
	return &filterHandler{filter: service.NewFilterService(classifier)}
}

func TestHandle_Decision(t *testing.T) {
	h := newHandler("remove")

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Body:       `{"title":"Hitman 3 Speedrun","preferences":"I hate gaming videos"}`,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"decision":"remove"}`, resp.Body)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
}

func TestHandle_Base64Body(t *testing.T) {
	h := newHandler("keep")

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"title":"Python tutorial","preferences":"I love programming"}`)),
		IsBase64Encoded: true,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"decision":"keep"}`, resp.Body)
}

func TestHandle_Errors(t *testing.T) {
	h := newHandler("remove")

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"No JSON body provided","decision":"keep"}`, resp.Body)

	resp, err = h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Body:       `{"title":"Hitman 3 Speedrun"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Title and preferences are required","decision":"keep"}`, resp.Body)
}

func TestHandle_Preflight(t *testing.T) {
	resp, err := newHandler("keep").Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: "OPTIONS"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, resp.Body)
	assert.Equal(t, "POST", resp.Headers["Access-Control-Allow-Methods"])
	assert.Equal(t, "3600", resp.Headers["Access-Control-Max-Age"])
}
