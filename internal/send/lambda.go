package send

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// HandleLambda adapts Handle to API Gateway HTTP API and Lambda function URL
// events.
func (h *Handler) HandleLambda(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	var result Result

	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			result = errorResult(http.StatusInternalServerError, fmt.Sprintf("failed to decode request body: %v", err))
		}
		body = decoded
	}

	if result.Status == 0 {
		result = h.Handle(ctx, event.RequestContext.HTTP.Method, body)
	}

	payload, err := json.Marshal(result.Body)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, fmt.Errorf("failed to encode response: %w", err)
	}

	return events.APIGatewayV2HTTPResponse{
		StatusCode: result.Status,
		Headers:    map[string]string{"Content-Type": contentTypeJSON},
		Body:       string(payload),
	}, nil
}
