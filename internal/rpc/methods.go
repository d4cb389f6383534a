package rpc

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "taskboard.v1.Taskboard"

// Public methods.
const (
	MethodPing         = "Ping"
	MethodSignUp       = "SignUp"
	MethodSignIn       = "SignIn"
	MethodRefreshToken = "RefreshToken"
)

// Methods scoped to the caller's own rows.
const (
	MethodSignOut                  = "SignOut"
	MethodGetUser                  = "GetUser"
	MethodUpdatePassword           = "UpdatePassword"
	MethodGetProfile               = "GetProfile"
	MethodUpdateProfile            = "UpdateProfile"
	MethodCreateTask               = "CreateTask"
	MethodListTasks                = "ListTasks"
	MethodUpdateTask               = "UpdateTask"
	MethodCreateNotification       = "CreateNotification"
	MethodListNotifications        = "ListNotifications"
	MethodMarkNotificationRead     = "MarkNotificationRead"
	MethodMarkAllNotificationsRead = "MarkAllNotificationsRead"
	MethodDeleteNotification       = "DeleteNotification"
	MethodFindTracking             = "FindTracking"
	MethodInsertTracking           = "InsertTracking"
	MethodInsertAuditLog           = "InsertAuditLog"
)

// Methods that require the admin role.
const (
	MethodListProfiles    = "ListProfiles"
	MethodDeleteProfile   = "DeleteProfile"
	MethodListAuditLogs   = "ListAuditLogs"
	MethodExportAuditLogs = "ExportAuditLogs"
)

// FullMethod returns the "/service/method" path used by grpc.Invoke and
// reported in grpc.UnaryServerInfo.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// PublicMethods lists full method names callable without an access token.
func PublicMethods() []string {
	return []string{
		FullMethod(MethodPing),
		FullMethod(MethodSignUp),
		FullMethod(MethodSignIn),
		FullMethod(MethodRefreshToken),
	}
}

// AdminMethods lists full method names restricted to administrators.
func AdminMethods() []string {
	return []string{
		FullMethod(MethodListProfiles),
		FullMethod(MethodDeleteProfile),
		FullMethod(MethodListAuditLogs),
		FullMethod(MethodExportAuditLogs),
	}
}
