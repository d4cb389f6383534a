package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/rpc"
	"github.com/dmitrijs2005/taskboard/internal/server/auth"
	"github.com/dmitrijs2005/taskboard/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer("127.0.0.1:0")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer("127.0.0.1:99999")
	err := srv.Run(context.Background())
	assert.Error(t, err)
}

func dialBufconn(t *testing.T, s *GRPCServer) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := s.NewServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(rpc.CodecName)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestEndToEnd_JSONCodecAndAuth(t *testing.T) {
	s, d := newTestServer("")
	conn := dialBufconn(t, s)
	ctx := context.Background()

	var ping rpc.PingResponse
	require.NoError(t, conn.Invoke(ctx, rpc.FullMethod(rpc.MethodPing), &rpc.Empty{}, &ping))
	assert.Equal(t, "OK", ping.Status)

	access, err := auth.GenerateToken("alice", common.RoleUser, []byte(testSecret), time.Minute)
	require.NoError(t, err)
	d.users.tokens = &services.TokenPair{AccessToken: access, RefreshToken: "r"}

	var tokens rpc.TokenResponse
	require.NoError(t, conn.Invoke(ctx, rpc.FullMethod(rpc.MethodSignIn), &rpc.SignInRequest{Email: "alice@example.com", Password: "secret1"}, &tokens))
	require.Equal(t, access, tokens.AccessToken)

	authed := metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, tokens.AccessToken)
	due := "2024-05-01"
	var created rpc.TaskResponse
	require.NoError(t, conn.Invoke(authed, rpc.FullMethod(rpc.MethodCreateTask), &rpc.CreateTaskRequest{Title: "Buy milk", DueDate: &due}, &created))
	assert.Equal(t, "t1", created.Task.ID)
	assert.Equal(t, "alice", created.Task.UserID)
	assert.Equal(t, &due, created.Task.DueDate)

	err = conn.Invoke(ctx, rpc.FullMethod(rpc.MethodListTasks), &rpc.ListTasksRequest{}, &rpc.ListTasksResponse{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	err = conn.Invoke(authed, rpc.FullMethod(rpc.MethodListAuditLogs), &rpc.ListAuditLogsRequest{}, &rpc.ListAuditLogsResponse{})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestEndToEnd_ExpiredTokenMessage(t *testing.T) {
	s, _ := newTestServer("")
	conn := dialBufconn(t, s)

	expired, err := auth.GenerateToken("alice", common.RoleUser, []byte(testSecret), -time.Minute)
	require.NoError(t, err)
	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, expired)

	err = conn.Invoke(ctx, rpc.FullMethod(rpc.MethodGetUser), &rpc.Empty{}, &rpc.GetUserResponse{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "token expired", status.Convert(err).Message())
}
