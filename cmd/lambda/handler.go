package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	json "github.com/goccy/go-json"

	"github.com/tubesieve/tubesieve/internal/service"
)

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "POST",
	"Access-Control-Allow-Headers": "Content-Type",
	"Access-Control-Max-Age":       "3600",
}

// filterHandler serves filter_video behind API Gateway
type filterHandler struct {
	filter *service.FilterService
}

func (h *filterHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if strings.EqualFold(req.HTTPMethod, http.MethodOptions) {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent, Headers: corsHeaders}, nil
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		// undecodable bodies fail JSON decoding and get the 400 envelope
		body, _ = base64.StdEncoding.DecodeString(req.Body)
	}

	status, resp := h.filter.HandleRaw(ctx, body)
	data, err := json.Marshal(resp)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range corsHeaders {
		headers[k] = v
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(data),
	}, nil
}
