package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/rpc"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC status codes. Anything unexpected
// is logged and reported as Internal without leaking details.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *GRPCServer) caller(ctx context.Context) (models.Caller, error) {
	c, ok := CallerFromContext(ctx)
	if !ok {
		return models.Caller{}, status.Error(codes.Unauthenticated, "missing token")
	}
	return c, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *rpc.Empty) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) SignUp(ctx context.Context, req *rpc.SignUpRequest) (*rpc.SignUpResponse, error) {

	s.logger.Info(ctx, "Registration request")

	user, err := s.users.SignUp(ctx, req.Email, req.Password, req.Username)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "user_id", user.ID)
	return &rpc.SignUpResponse{UserID: user.ID}, nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *rpc.SignInRequest) (*rpc.TokenResponse, error) {
	tokens, err := s.users.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *rpc.RefreshTokenRequest) (*rpc.TokenResponse, error) {
	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *rpc.SignOutRequest) (*rpc.Empty, error) {
	if err := s.users.SignOut(ctx, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) GetUser(ctx context.Context, req *rpc.Empty) (*rpc.GetUserResponse, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	user, profile, err := s.users.GetUser(ctx, c)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	out := rpc.User{ID: user.ID, Email: user.Email, Role: common.RoleUser}
	if profile != nil {
		out.Username = profile.Username
		out.Role = profile.Role
	}
	return &rpc.GetUserResponse{User: out}, nil
}

func (s *GRPCServer) UpdatePassword(ctx context.Context, req *rpc.UpdatePasswordRequest) (*rpc.Empty, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdatePassword(ctx, c, req.Password); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, req *rpc.GetProfileRequest) (*rpc.ProfileResponse, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.users.GetProfile(ctx, c, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.ProfileResponse{Profile: toRPCProfile(p)}, nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *rpc.UpdateProfileRequest) (*rpc.Empty, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateProfile(ctx, c, req.ID, req.Username); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) ListProfiles(ctx context.Context, req *rpc.Empty) (*rpc.ListProfilesResponse, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	profiles, err := s.users.ListProfiles(ctx, c)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.ListProfilesResponse{Profiles: mapSlice(profiles, toRPCProfile)}, nil
}

func (s *GRPCServer) DeleteProfile(ctx context.Context, req *rpc.DeleteProfileRequest) (*rpc.Empty, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.users.DeleteProfile(ctx, c, req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "Profile deleted", "id", req.ID, "by", c.UserID)
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) CreateTask(ctx context.Context, req *rpc.CreateTaskRequest) (*rpc.TaskResponse, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.tasks.Create(ctx, c, &models.Task{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		DueTime:     req.DueTime,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.TaskResponse{Task: toRPCTask(t)}, nil
}

func (s *GRPCServer) ListTasks(ctx context.Context, req *rpc.ListTasksRequest) (*rpc.ListTasksResponse, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.List(ctx, c, models.TaskFilter{Pending: req.Pending})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.ListTasksResponse{Tasks: mapSlice(tasks, toRPCTask)}, nil
}

func (s *GRPCServer) UpdateTask(ctx context.Context, req *rpc.UpdateTaskRequest) (*rpc.TaskResponse, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.tasks.Update(ctx, c, req.ID, models.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		DueTime:     req.DueTime,
		IsCompleted: req.IsCompleted,
		IsArchived:  req.IsArchived,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.TaskResponse{Task: toRPCTask(t)}, nil
}

func (s *GRPCServer) CreateNotification(ctx context.Context, req *rpc.CreateNotificationRequest) (*rpc.NotificationResponse, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.notifications.Create(ctx, c, &models.Notification{
		TaskID:  req.TaskID,
		Type:    req.Type,
		Title:   req.Title,
		Message: req.Message,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.NotificationResponse{Notification: toRPCNotification(n)}, nil
}

func (s *GRPCServer) ListNotifications(ctx context.Context, req *rpc.ListNotificationsRequest) (*rpc.ListNotificationsResponse, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.notifications.List(ctx, c, models.NotificationFilter{UnreadOnly: req.UnreadOnly, Limit: req.Limit})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.ListNotificationsResponse{Notifications: mapSlice(items, toRPCNotification)}, nil
}

func (s *GRPCServer) MarkNotificationRead(ctx context.Context, req *rpc.NotificationIDRequest) (*rpc.Empty, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.notifications.MarkRead(ctx, c, req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) MarkAllNotificationsRead(ctx context.Context, req *rpc.Empty) (*rpc.MarkAllNotificationsReadResponse, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.notifications.MarkAllRead(ctx, c)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.MarkAllNotificationsReadResponse{Updated: n}, nil
}

func (s *GRPCServer) DeleteNotification(ctx context.Context, req *rpc.NotificationIDRequest) (*rpc.Empty, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.notifications.Delete(ctx, c, req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}

func trackingFromRequest(req *rpc.TrackingRequest) models.Tracking {
	return models.Tracking{TaskID: req.TaskID, NotificationType: req.NotificationType, SentDate: req.SentDate}
}

func (s *GRPCServer) FindTracking(ctx context.Context, req *rpc.TrackingRequest) (*rpc.FindTrackingResponse, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	found, err := s.notifications.FindTracking(ctx, c, trackingFromRequest(req))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.FindTrackingResponse{Found: found}, nil
}

func (s *GRPCServer) InsertTracking(ctx context.Context, req *rpc.TrackingRequest) (*rpc.Empty, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.notifications.InsertTracking(ctx, c, trackingFromRequest(req)); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) InsertAuditLog(ctx context.Context, req *rpc.InsertAuditLogRequest) (*rpc.Empty, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.audit.Insert(ctx, c, fromRPCAuditEntry(req.Entry)); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) ListAuditLogs(ctx context.Context, req *rpc.ListAuditLogsRequest) (*rpc.ListAuditLogsResponse, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.audit.List(ctx, c, models.AuditFilter{Action: req.Action, Limit: req.Limit})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.ListAuditLogsResponse{Entries: mapSlice(entries, toRPCAuditEntry)}, nil
}

func (s *GRPCServer) ExportAuditLogs(ctx context.Context, req *rpc.ExportAuditLogsRequest) (*rpc.ExportAuditLogsResponse, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.audit.Export(ctx, c, req.Action)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "Audit logs exported", "key", res.Key, "count", res.Count)
	return &rpc.ExportAuditLogsResponse{Key: res.Key, URL: res.URL, Count: res.Count}, nil
}
