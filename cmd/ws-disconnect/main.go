// Package main implements the WebSocket $disconnect Lambda. It removes the
// connection from the registry; the row's TTL covers the case where this
// handler never fires.
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/ports"
	dynamorepo "github.com/jeonghun43/Prism/infrastructure/persistence/dynamodb"
)

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

// handler processes WebSocket disconnection requests
func handler(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID
	if err := connections.Delete(ctx, connectionID); err != nil {
		log.Printf("Failed to delete connection %s: %v", connectionID, err)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"error": "internal server error"}`,
		}, nil
	}

	log.Printf("Connection %s removed", connectionID)
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

func main() {
	lambda.Start(handler)
}
