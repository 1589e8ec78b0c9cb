package explore_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/oggyb/muzz-matchmaker/internal/server"
	"github.com/oggyb/muzz-matchmaker/internal/service/explore"
)

const adminToken = "let-me-in"

// dialExplore serves the Explore service over bufconn with the full
// interceptor chain.
func dialExplore(t *testing.T) *grpc.ClientConn {
	t.Helper()
	f := setupService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte(adminToken), bcrypt.MinCost)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	srv := server.NewGRPCServer(server.Options{
		Logger:         f.appCtx.Logger,
		Metrics:        f.appCtx.Metrics,
		AdminTokenHash: string(hash),
	}, explore.NewRegistrar(f.appCtx))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(server.CodecName)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestGRPCRecordLike(t *testing.T) {
	conn := dialExplore(t)
	ctx := context.Background()

	var like explore.RecordLikeResponse
	require.NoError(t, conn.Invoke(ctx, explore.FullMethod("RecordLike"),
		&explore.PairRequest{ActorUserId: "1", RecipientUserId: "3"}, &like))
	assert.True(t, like.Matched)

	var count explore.CountResponse
	require.NoError(t, conn.Invoke(ctx, explore.FullMethod("CountPendingLikers"),
		&explore.UserRequest{UserId: "1"}, &count))
	assert.Zero(t, count.Count)

	err := conn.Invoke(ctx, explore.FullMethod("RecordLike"),
		&explore.PairRequest{ActorUserId: "0", RecipientUserId: "3"}, &like)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPCAdminRequiresToken(t *testing.T) {
	conn := dialExplore(t)
	var stats explore.GlobalStatsResponse

	err := conn.Invoke(context.Background(), explore.FullMethod("GetGlobalStats"), &explore.Empty{}, &stats)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := metadata.AppendToOutgoingContext(context.Background(), server.AdminTokenHeader, adminToken)
	require.NoError(t, conn.Invoke(ctx, explore.FullMethod("GetGlobalStats"), &explore.Empty{}, &stats))
	assert.EqualValues(t, 3, stats.Profiles)
	assert.EqualValues(t, 3, stats.Likes)
}

func TestGRPCUnknownMethod(t *testing.T) {
	conn := dialExplore(t)
	var out explore.Empty
	err := conn.Invoke(context.Background(), explore.FullMethod("Nope"), &explore.Empty{}, &out)
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}
