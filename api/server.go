package api

import (
	"context"
	"fmt"
	"github.com/alex-pricope/election-ledger/api/controllers"
	"github.com/alex-pricope/election-ledger/api/transport"
	"github.com/alex-pricope/election-ledger/guard"
	"github.com/alex-pricope/election-ledger/ledger"
	"github.com/alex-pricope/election-ledger/logging"
	"github.com/alex-pricope/election-ledger/storage"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"os"
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
	ctx := context.Background()

	store, err := s.openStorage(ctx)
	if err != nil {
		logging.Log.Errorf("failed to open %s storage: %v", s.config.Driver, err)
		panic("failed to open storage")
	}

	r, err := s.Build(ctx, store, ledger.SystemClock{})
	if err != nil {
		logging.Log.Errorf("failed to build ledger: %v", err)
		panic("failed to build ledger")
	}

	//Do not run lambda helper locally
	if os.Getenv("APP_ENV") == "local" {
		startLocal(r, s.config.Port)
	} else {
		startLambda(r)
	}
}

// Build restores the ledger from store and returns the router serving it.
func (s *Server) Build(ctx context.Context, store storage.LedgerStorage, clock ledger.Clock) (*gin.Engine, error) {
	admin, err := guard.ParsePrincipal(s.config.Admin)
	if err != nil {
		return nil, fmt.Errorf("ledger.admin: %w", err)
	}

	l, err := ledger.New(ctx, guard.New(admin), store, clock)
	if err != nil {
		return nil, err
	}
	l.Subscribe(func(e ledger.VoteCast) {
		logging.Log.WithFields(logrus.Fields{
			"election":  e.ElectionID,
			"candidate": e.CandidateID,
			"voter":     e.Voter.String(),
			"receipt":   e.ReceiptID,
		}).Info("VOTE: vote cast")
	})

	r := transport.NewRouter(s.config.GinMode)

	//Register controllers
	caller := transport.CallerMiddleware(s.config.Token)
	electionController := controllers.NewElectionController(l, caller)
	electionController.RegisterRoutes(r)
	votingController := controllers.NewVotingController(l, caller)
	votingController.RegisterRoutes(r)

	return r, nil
}

func (s *Server) openStorage(ctx context.Context) (storage.LedgerStorage, error) {
	switch s.config.Driver {
	case DriverMemory:
		logging.Log.Warn("STORAGE: using in-memory storage, state is lost on restart")
		return storage.NewMemoryLedgerStorage(), nil
	case DriverSQLite:
		return storage.NewSQLiteLedgerStorage(s.config.SQLitePath)
	case DriverDynamoDB:
		return s.openDynamo(ctx)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", s.config.Driver)
	}
}

func (s *Server) openDynamo(ctx context.Context) (storage.LedgerStorage, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if s.config.Region != "" {
		opts = append(opts, awsconfig.WithRegion(s.config.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		logging.Log.Errorf("failed to load AWS config: %v", err)
		return nil, err
	}

	dynamoClient := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if s.config.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.config.Endpoint)
		}
	})

	store := &storage.DynamoLedgerStorage{
		Client:              dynamoClient,
		TableNameElections:  s.config.TableNameElections,
		TableNameCandidates: s.config.TableNameCandidates,
		TableNameVoters:     s.config.TableNameVoters,
		TableNameBallots:    s.config.TableNameBallots,
	}

	// Local stacks start empty.
	if s.config.Endpoint != "" {
		if err := store.EnsureTables(ctx); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// StartLambda sets up for AWS Lambda
func startLambda(engine *gin.Engine) {
	ginLambda := ginadapter.NewV2(engine)

	handler := func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		logging.Log.Infof("Lambda handler triggered on path: %s", req.RawPath)
		return ginLambda.ProxyWithContext(ctx, req)
	}

	logging.Log.Info("Starting lambda")
	lambda.Start(handler)
}

// StartLocal starts a normal HTTP server on the configured port
func startLocal(engine *gin.Engine, port int) {
	logging.Log.Info(fmt.Sprintf("Starting server on http://localhost:%d", port))

	if err := engine.Run(fmt.Sprintf(":%d", port)); err != nil {
		logging.Log.Fatalf("Failed to run server: %v", err)
	}
}
