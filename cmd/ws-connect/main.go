// Package main implements the WebSocket $connect Lambda. It registers the
// connection in the registry keyed by the target whose feed the client wants;
// the broadcaster later fans feed messages out to these rows. No
// authentication: the feed carries only data the target's own pages show.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/ports"
	dynamorepo "github.com/jeonghun43/Prism/infrastructure/persistence/dynamodb"
)

// connectionTTL is how long a registry row lives without a disconnect.
const connectionTTL = 2 * time.Hour

var connections ports.ConnectionRepository

func init() {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	tableName := os.Getenv("CONNECTIONS_TABLE")
	if tableName == "" {
		tableName = "prism-connections"
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	connections = dynamorepo.NewConnectionRepository(
		awsdynamodb.NewFromConfig(cfg), tableName, logger)
}

// handler processes WebSocket connection requests
func handler(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	targetID := request.QueryStringParameters["target_id"]
	if targetID == "" {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusBadRequest,
			Body:       `{"error": "target_id query parameter is required"}`,
		}, nil
	}

	now := time.Now()
	conn := ports.Connection{
		ConnectionID: request.RequestContext.ConnectionID,
		TargetID:     targetID,
		Endpoint:     fmt.Sprintf("https://%s/%s", request.RequestContext.DomainName, request.RequestContext.Stage),
		ConnectedAt:  now,
		TTL:          now.Add(connectionTTL).Unix(),
	}

	if err := connections.Save(ctx, conn); err != nil {
		log.Printf("Failed to store connection %s: %v", conn.ConnectionID, err)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"error": "internal server error"}`,
		}, nil
	}

	log.Printf("Connection %s subscribed to target %s", conn.ConnectionID, targetID)
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

func main() {
	lambda.Start(handler)
}
