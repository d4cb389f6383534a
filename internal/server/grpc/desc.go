package grpc

import (
	"context"

	"github.com/dmitrijs2005/taskboard/internal/rpc"
	"google.golang.org/grpc"
)

// unary adapts a typed handler method to grpc.MethodDesc. Requests are
// decoded with whatever codec the caller negotiated (rpc registers "json").
func unary[Req, Resp any](name string, call func(*GRPCServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(*GRPCServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: rpc.FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: rpc.ServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unary(rpc.MethodPing, (*GRPCServer).Ping),
		unary(rpc.MethodSignUp, (*GRPCServer).SignUp),
		unary(rpc.MethodSignIn, (*GRPCServer).SignIn),
		unary(rpc.MethodRefreshToken, (*GRPCServer).RefreshToken),

		unary(rpc.MethodSignOut, (*GRPCServer).SignOut),
		unary(rpc.MethodGetUser, (*GRPCServer).GetUser),
		unary(rpc.MethodUpdatePassword, (*GRPCServer).UpdatePassword),
		unary(rpc.MethodGetProfile, (*GRPCServer).GetProfile),
		unary(rpc.MethodUpdateProfile, (*GRPCServer).UpdateProfile),
		unary(rpc.MethodCreateTask, (*GRPCServer).CreateTask),
		unary(rpc.MethodListTasks, (*GRPCServer).ListTasks),
		unary(rpc.MethodUpdateTask, (*GRPCServer).UpdateTask),
		unary(rpc.MethodCreateNotification, (*GRPCServer).CreateNotification),
		unary(rpc.MethodListNotifications, (*GRPCServer).ListNotifications),
		unary(rpc.MethodMarkNotificationRead, (*GRPCServer).MarkNotificationRead),
		unary(rpc.MethodMarkAllNotificationsRead, (*GRPCServer).MarkAllNotificationsRead),
		unary(rpc.MethodDeleteNotification, (*GRPCServer).DeleteNotification),
		unary(rpc.MethodFindTracking, (*GRPCServer).FindTracking),
		unary(rpc.MethodInsertTracking, (*GRPCServer).InsertTracking),
		unary(rpc.MethodInsertAuditLog, (*GRPCServer).InsertAuditLog),

		unary(rpc.MethodListProfiles, (*GRPCServer).ListProfiles),
		unary(rpc.MethodDeleteProfile, (*GRPCServer).DeleteProfile),
		unary(rpc.MethodListAuditLogs, (*GRPCServer).ListAuditLogs),
		unary(rpc.MethodExportAuditLogs, (*GRPCServer).ExportAuditLogs),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "taskboard/v1",
}
