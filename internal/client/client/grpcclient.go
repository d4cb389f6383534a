package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	public      map[string]bool

	mu           sync.Mutex
	accessToken  string
	refreshToken string

	// refreshMu serializes refreshes so that concurrent callers hitting an
	// expired token rotate the refresh token only once.
	refreshMu sync.Mutex

	onTokens func(refreshToken string)
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	s.accessToken, s.refreshToken = access, refresh
	observer := s.onTokens
	s.mu.Unlock()

	if observer != nil {
		observer(refresh)
	}
}

func (s *GRPCClient) SetTokenObserver(fn func(refreshToken string)) {
	s.mu.Lock()
	s.onTokens = fn
	s.mu.Unlock()
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

// refresh rotates the token pair unless another caller already replaced
// stale, in which case the current access token is returned.
func (s *GRPCClient) refresh(ctx context.Context, stale string, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) (string, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	access, refresh := s.tokens()
	if access != stale {
		return access, nil
	}
	if refresh == "" {
		return "", status.Error(codes.Unauthenticated, "no session")
	}

	var resp rpc.TokenResponse
	err := invoker(ctx, rpc.FullMethod(rpc.MethodRefreshToken), &rpc.RefreshTokenRequest{RefreshToken: refresh}, &resp, cc, opts...)
	if err != nil {
		return "", err
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return resp.AccessToken, nil
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if s.public[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	access, _ := s.tokens()
	if access == "" {
		return status.Error(codes.Unauthenticated, "no session")
	}

	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil || !isTokenExpired(err) {
		return err
	}

	access, err = s.refresh(ctx, access, cc, invoker, opts...)
	if err != nil {
		return err
	}

	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}

func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, public: make(map[string]bool)}
	for _, m := range rpc.PublicMethods() {
		c.public[m] = true
	}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(rpc.CodecName)),
	}, opts...)

	conn, err := grpc.NewClient(c.endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) invoke(ctx context.Context, method string, req, resp any) error {
	if err := s.conn.Invoke(ctx, rpc.FullMethod(method), req, resp); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.PermissionDenied:
		return ErrForbidden
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrValidation, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var resp rpc.PingResponse
	if err := s.invoke(ctx, rpc.MethodPing, &rpc.Empty{}, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) SignUp(ctx context.Context, email, password, username string) error {
	var resp rpc.SignUpResponse
	return s.invoke(ctx, rpc.MethodSignUp, &rpc.SignUpRequest{Email: email, Password: password, Username: username}, &resp)
}

func (s *GRPCClient) SignIn(ctx context.Context, email, password string) error {
	var resp rpc.TokenResponse
	if err := s.invoke(ctx, rpc.MethodSignIn, &rpc.SignInRequest{Email: email, Password: password}, &resp); err != nil {
		return err
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

func (s *GRPCClient) Resume(ctx context.Context, refreshToken string) error {
	var resp rpc.TokenResponse
	if err := s.invoke(ctx, rpc.MethodRefreshToken, &rpc.RefreshTokenRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return err
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

// SignOut revokes the refresh token on the server and forgets the local
// session even when the server call fails.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	_, refresh := s.tokens()
	if refresh == "" {
		return nil
	}
	err := s.invoke(ctx, rpc.MethodSignOut, &rpc.SignOutRequest{RefreshToken: refresh}, &rpc.Empty{})
	s.setTokens("", "")
	return err
}

func (s *GRPCClient) HasSession() bool {
	access, _ := s.tokens()
	return access != ""
}

func (s *GRPCClient) GetUser(ctx context.Context) (*models.User, error) {
	var resp rpc.GetUserResponse
	if err := s.invoke(ctx, rpc.MethodGetUser, &rpc.Empty{}, &resp); err != nil {
		return nil, err
	}
	u := resp.User
	return &models.User{ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role}, nil
}

func (s *GRPCClient) UpdatePassword(ctx context.Context, password string) error {
	return s.invoke(ctx, rpc.MethodUpdatePassword, &rpc.UpdatePasswordRequest{Password: password}, &rpc.Empty{})
}

func fromRPCProfile(p rpc.Profile) *models.Profile {
	return &models.Profile{ID: p.ID, Username: p.Username, Role: p.Role, Email: p.Email, CreatedAt: p.CreatedAt}
}

func (s *GRPCClient) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var resp rpc.ProfileResponse
	if err := s.invoke(ctx, rpc.MethodGetProfile, &rpc.GetProfileRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return fromRPCProfile(resp.Profile), nil
}

func (s *GRPCClient) UpdateProfile(ctx context.Context, id, username string) error {
	return s.invoke(ctx, rpc.MethodUpdateProfile, &rpc.UpdateProfileRequest{ID: id, Username: username}, &rpc.Empty{})
}

func (s *GRPCClient) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	var resp rpc.ListProfilesResponse
	if err := s.invoke(ctx, rpc.MethodListProfiles, &rpc.Empty{}, &resp); err != nil {
		return nil, err
	}
	out := make([]*models.Profile, 0, len(resp.Profiles))
	for _, p := range resp.Profiles {
		out = append(out, fromRPCProfile(p))
	}
	return out, nil
}

func (s *GRPCClient) DeleteProfile(ctx context.Context, id string) error {
	return s.invoke(ctx, rpc.MethodDeleteProfile, &rpc.DeleteProfileRequest{ID: id}, &rpc.Empty{})
}

func fromRPCTask(t rpc.Task) *models.Task {
	return &models.Task{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		DueTime:     t.DueTime,
		IsCompleted: t.IsCompleted,
		IsArchived:  t.IsArchived,
		CreatedAt:   t.CreatedAt,
	}
}

func (s *GRPCClient) CreateTask(ctx context.Context, t *models.Task) (*models.Task, error) {
	req := &rpc.CreateTaskRequest{Title: t.Title, Description: t.Description, DueDate: t.DueDate, DueTime: t.DueTime}
	var resp rpc.TaskResponse
	if err := s.invoke(ctx, rpc.MethodCreateTask, req, &resp); err != nil {
		return nil, err
	}
	return fromRPCTask(resp.Task), nil
}

func (s *GRPCClient) ListTasks(ctx context.Context, pending bool) ([]*models.Task, error) {
	var resp rpc.ListTasksResponse
	if err := s.invoke(ctx, rpc.MethodListTasks, &rpc.ListTasksRequest{Pending: pending}, &resp); err != nil {
		return nil, err
	}
	out := make([]*models.Task, 0, len(resp.Tasks))
	for _, t := range resp.Tasks {
		out = append(out, fromRPCTask(t))
	}
	return out, nil
}

func (s *GRPCClient) UpdateTask(ctx context.Context, id string, p models.TaskPatch) (*models.Task, error) {
	req := &rpc.UpdateTaskRequest{
		ID:          id,
		Title:       p.Title,
		Description: p.Description,
		DueDate:     p.DueDate,
		DueTime:     p.DueTime,
		IsCompleted: p.IsCompleted,
		IsArchived:  p.IsArchived,
	}
	var resp rpc.TaskResponse
	if err := s.invoke(ctx, rpc.MethodUpdateTask, req, &resp); err != nil {
		return nil, err
	}
	return fromRPCTask(resp.Task), nil
}

func fromRPCNotification(n rpc.Notification) *models.Notification {
	return &models.Notification{
		ID:        n.ID,
		TaskID:    n.TaskID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func (s *GRPCClient) CreateNotification(ctx context.Context, n models.NewNotification) (*models.Notification, error) {
	req := &rpc.CreateNotificationRequest{TaskID: n.TaskID, Type: n.Type, Title: n.Title, Message: n.Message}
	var resp rpc.NotificationResponse
	if err := s.invoke(ctx, rpc.MethodCreateNotification, req, &resp); err != nil {
		return nil, err
	}
	return fromRPCNotification(resp.Notification), nil
}

func (s *GRPCClient) ListNotifications(ctx context.Context, unreadOnly bool, limit int) ([]*models.Notification, error) {
	var resp rpc.ListNotificationsResponse
	if err := s.invoke(ctx, rpc.MethodListNotifications, &rpc.ListNotificationsRequest{UnreadOnly: unreadOnly, Limit: limit}, &resp); err != nil {
		return nil, err
	}
	out := make([]*models.Notification, 0, len(resp.Notifications))
	for _, n := range resp.Notifications {
		out = append(out, fromRPCNotification(n))
	}
	return out, nil
}

func (s *GRPCClient) MarkNotificationRead(ctx context.Context, id string) error {
	return s.invoke(ctx, rpc.MethodMarkNotificationRead, &rpc.NotificationIDRequest{ID: id}, &rpc.Empty{})
}

func (s *GRPCClient) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	var resp rpc.MarkAllNotificationsReadResponse
	if err := s.invoke(ctx, rpc.MethodMarkAllNotificationsRead, &rpc.Empty{}, &resp); err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

func (s *GRPCClient) DeleteNotification(ctx context.Context, id string) error {
	return s.invoke(ctx, rpc.MethodDeleteNotification, &rpc.NotificationIDRequest{ID: id}, &rpc.Empty{})
}

func trackingRequest(t models.Tracking) *rpc.TrackingRequest {
	return &rpc.TrackingRequest{TaskID: t.TaskID, NotificationType: t.NotificationType, SentDate: t.SentDate}
}

func (s *GRPCClient) FindTracking(ctx context.Context, t models.Tracking) (bool, error) {
	var resp rpc.FindTrackingResponse
	if err := s.invoke(ctx, rpc.MethodFindTracking, trackingRequest(t), &resp); err != nil {
		return false, err
	}
	return resp.Found, nil
}

func (s *GRPCClient) InsertTracking(ctx context.Context, t models.Tracking) error {
	return s.invoke(ctx, rpc.MethodInsertTracking, trackingRequest(t), &rpc.Empty{})
}

func (s *GRPCClient) InsertAuditLog(ctx context.Context, e *models.AuditEntry) error {
	details := e.Details
	if details == nil {
		details = map[string]any{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("audit details: %w", err)
	}

	req := &rpc.InsertAuditLogRequest{Entry: rpc.AuditLogEntry{
		Username:   e.Username,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Details:    raw,
		CreatedAt:  e.CreatedAt,
	}}
	return s.invoke(ctx, rpc.MethodInsertAuditLog, req, &rpc.Empty{})
}

func (s *GRPCClient) ListAuditLogs(ctx context.Context, action string, limit int) ([]*models.AuditLogEntry, error) {
	var resp rpc.ListAuditLogsResponse
	if err := s.invoke(ctx, rpc.MethodListAuditLogs, &rpc.ListAuditLogsRequest{Action: action, Limit: limit}, &resp); err != nil {
		return nil, err
	}
	out := make([]*models.AuditLogEntry, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		out = append(out, &models.AuditLogEntry{
			ID:         e.ID,
			UserID:     e.UserID,
			Username:   e.Username,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Details:    e.Details,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out, nil
}

func (s *GRPCClient) ExportAuditLogs(ctx context.Context, action string) (*models.ExportResult, error) {
	var resp rpc.ExportAuditLogsResponse
	if err := s.invoke(ctx, rpc.MethodExportAuditLogs, &rpc.ExportAuditLogsRequest{Action: action}, &resp); err != nil {
		return nil, err
	}
	return &models.ExportResult{Key: resp.Key, URL: resp.URL, Count: resp.Count}, nil
}
