package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/dmitrijs2005/taskboard/internal/rpc"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/services"
	"google.golang.org/grpc"
)

type userService interface {
	SignUp(ctx context.Context, email, password, username string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	SignOut(ctx context.Context, refreshToken string) error
	GetUser(ctx context.Context, caller models.Caller) (*models.User, *models.Profile, error)
	UpdatePassword(ctx context.Context, caller models.Caller, password string) error
	GetProfile(ctx context.Context, caller models.Caller, id string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, caller models.Caller, id, username string) error
	ListProfiles(ctx context.Context, caller models.Caller) ([]*models.Profile, error)
	DeleteProfile(ctx context.Context, caller models.Caller, id string) error
}

type taskService interface {
	Create(ctx context.Context, caller models.Caller, t *models.Task) (*models.Task, error)
	List(ctx context.Context, caller models.Caller, filter models.TaskFilter) ([]*models.Task, error)
	Update(ctx context.Context, caller models.Caller, id string, patch models.TaskPatch) (*models.Task, error)
}

type notificationService interface {
	Create(ctx context.Context, caller models.Caller, n *models.Notification) (*models.Notification, error)
	List(ctx context.Context, caller models.Caller, filter models.NotificationFilter) ([]*models.Notification, error)
	MarkRead(ctx context.Context, caller models.Caller, id string) error
	MarkAllRead(ctx context.Context, caller models.Caller) (int64, error)
	Delete(ctx context.Context, caller models.Caller, id string) error
	FindTracking(ctx context.Context, caller models.Caller, t models.Tracking) (bool, error)
	InsertTracking(ctx context.Context, caller models.Caller, t models.Tracking) error
}

type auditService interface {
	Insert(ctx context.Context, caller models.Caller, e *models.AuditLogEntry) (*models.AuditLogEntry, error)
	List(ctx context.Context, caller models.Caller, filter models.AuditFilter) ([]*models.AuditLogEntry, error)
	Export(ctx context.Context, caller models.Caller, action string) (*services.ExportResult, error)
}

type GRPCServer struct {
	address       string
	users         userService
	tasks         taskService
	notifications notificationService
	audit         auditService
	logger        logging.Logger
	jwtSecret     []byte
	public        map[string]bool
	admin         map[string]bool
}

func NewGRPCServer(a string, l logging.Logger, us userService, ts taskService, ns notificationService, as auditService, secretKey string) *GRPCServer {
	s := &GRPCServer{
		address:       a,
		logger:        l.With("module", "grpc_server"),
		users:         us,
		tasks:         ts,
		notifications: ns,
		audit:         as,
		jwtSecret:     []byte(secretKey),
		public:        make(map[string]bool),
		admin:         make(map[string]bool),
	}
	for _, m := range rpc.PublicMethods() {
		s.public[m] = true
	}
	for _, m := range rpc.AdminMethods() {
		s.admin[m] = true
	}
	return s
}

// NewServer builds a grpc.Server with the interceptor chain installed and
// the Taskboard service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	srv := grpc.NewServer(opts...)
	srv.RegisterService(&serviceDesc, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
