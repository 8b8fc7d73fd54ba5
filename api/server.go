package api

import (
	"context"
	"fmt"
	"os"

	"github.com/TechTatva-25/m-hash-backend/api/controllers"
	"github.com/TechTatva-25/m-hash-backend/api/transport"
	"github.com/TechTatva-25/m-hash-backend/logging"
	"github.com/TechTatva-25/m-hash-backend/storage"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	config *Config
}

func NewServer(config *Config) *Server {
	return &Server{
		config: config,
	}
}

func (s *Server) Start() {
	r := transport.NewRouter(gin.DebugMode)

	// Create storage
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logging.Log.Errorf("failed to load AWS config: %v", err)
		panic("failed to load AWS config")
	}

	dynamoClient := dynamodb.NewFromConfig(cfg)

	stageStorage := &storage.DynamoStageStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNameStages,
	}
	teamStorage := &storage.DynamoTeamStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNameTeams,
	}
	progressStorage := &storage.DynamoProgressStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNameProgress,
	}
	bugStorage := &storage.DynamoBugStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNameBugs,
	}
	bugTypeStorage := &storage.DynamoBugTypeStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNameBugTypes,
	}
	submissionStorage := &storage.DynamoSubmissionStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNameSubmissions,
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     s.config.RedisAddr,
		Password: s.config.RedisPassword,
		DB:       s.config.RedisDB,
	})
	runtimeConfigStorage := &storage.RedisRuntimeConfigStorage{
		Client: redisClient,
	}

	//Register controllers
	progressController := controllers.NewProgressController(progressStorage, stageStorage, teamStorage)
	progressController.RegisterRoutes(r)
	teamController := controllers.NewTeamController(teamStorage, progressStorage, submissionStorage, stageStorage)
	teamController.RegisterRoutes(r)
	bugsController := controllers.NewBugsController(bugStorage, bugTypeStorage, teamStorage)
	bugsController.RegisterRoutes(r)
	judgeController := controllers.NewJudgeController(teamStorage, submissionStorage)
	judgeController.RegisterRoutes(r)
	submissionController := controllers.NewSubmissionController(submissionStorage, progressStorage, stageStorage, teamStorage, runtimeConfigStorage)
	submissionController.RegisterRoutes(r)
	stageMetaController := controllers.NewStageMetaController(stageStorage)
	stageMetaController.RegisterRoutes(r)
	runtimeConfigController := controllers.NewRuntimeConfigController(runtimeConfigStorage)
	runtimeConfigController.RegisterRoutes(r)

	//Do not run lambda helper locally
	if os.Getenv("APP_ENV") == "local" {
		startLocal(r, s.config.Port)
	} else {
		startLambda(r)
	}
}

// startLambda sets up for AWS Lambda
func startLambda(engine *gin.Engine) {
	ginLambda := ginadapter.NewV2(engine)

	handler := func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		logging.Log.Infof("Lambda handler triggered on path: %s", req.RawPath)
		return ginLambda.ProxyWithContext(ctx, req)
	}

	logging.Log.Info("Starting lambda")
	lambda.Start(handler)
}

// startLocal starts a normal HTTP server on the configured port
func startLocal(engine *gin.Engine, port int) {
	logging.Log.Info(fmt.Sprintf("Starting server on http://localhost:%d", port))

	if err := engine.Run(fmt.Sprintf(":%d", port)); err != nil {
		logging.Log.Fatalf("Failed to run server: %v", err)
	}
}
